package asm

import (
	"github.com/hallowmantle/i8080asm/expr"
	"github.com/hallowmantle/i8080asm/macro"
	"github.com/hallowmantle/i8080asm/opcode"
	"github.com/hallowmantle/i8080asm/symtab"
)

const (
	maxIncludeDepth  = 1024
	maxMacroExpansions = 65536
)

// orgFrame is one entry of the origin stack: the location a pushorg will
// restore on the matching poporg, plus the origin it relocated to, so the
// size of the relocated span can be folded back into the restored location.
type orgFrame struct {
	savedLocation   int
	relocatedOrigin int
}

// State is the single AssemblerState value the driver threads through every
// operation (spec §4.5.1). Nothing outside of AssembleFile (and the functions it
// calls) ever sees a State directly.
type State struct {
	macros   *macro.Table
	knowns   *symtab.VarSpace[int]
	unknowns *symtab.VarSpace[*pendingEqu]

	cpuMode string // "8080" or "8085"

	orgStack  []orgFrame
	dirStack  []string // pushd/popd, current directory at top
	location  int

	macroExpansions int

	maxIncludeDepth    int
	maxMacroExpansions int

	exprOpts expr.Options

	errs *ErrorList
}

// NewState creates a fresh AssemblerState rooted at baseDir for resolving
// relative include/incbin paths, defaulting to 8080 mode. The resource caps
// default to spec §5's numbers; Options lets a caller (ultimately
// config.Config) tune them.
func NewState(baseDir string, opts Options) *State {
	cpu := opts.CPUMode
	if cpu == "" {
		cpu = "8080"
	}
	includeCap := opts.MaxIncludeDepth
	if includeCap <= 0 {
		includeCap = maxIncludeDepth
	}
	macroCap := opts.MaxMacroExpansions
	if macroCap <= 0 {
		macroCap = maxMacroExpansions
	}
	return &State{
		macros:             macro.New(),
		knowns:             symtab.New[int](),
		unknowns:           symtab.New[*pendingEqu](),
		cpuMode:            cpu,
		dirStack:           []string{baseDir},
		maxIncludeDepth:    includeCap,
		maxMacroExpansions: macroCap,
		exprOpts:           expr.Options{Backtick: opcode.FirstByte},
		errs:               &ErrorList{},
	}
}

func (s *State) currentDir() string {
	return s.dirStack[len(s.dirStack)-1]
}

func (s *State) setScope(anchor string) {
	s.knowns.SetBase(anchor)
	s.unknowns.SetBase(anchor)
}

// evalOrDefer evaluates e against knowns under e's own captured scope
// anchor; ok is false when e still references an undefined name or fails
// to evaluate, the signal first-pass handlers use to choose between
// filling a byte now and deferring it to the second pass.
func (s *State) evalOrDefer(e *expr.Expr, loc int) (value int, ok bool) {
	view := s.knowns.RenameView(e.ScopeAnchor)
	if expr.ContainsUndefinedNames(e, view) {
		return 0, false
	}
	v, err := expr.Eval(e, view, loc)
	if err != nil {
		return 0, false
	}
	return v, true
}
