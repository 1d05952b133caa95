// Package asm implements the assembler driver: the two-pass state machine
// that walks a spliceable line list, binding labels, dispatching directives
// and opcodes, expanding macros and includes in place, and finally filling
// in every deferred byte once forward references resolve (spec §4.5).
package asm

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hallowmantle/i8080asm/line"
	"github.com/hallowmantle/i8080asm/symtab"
)

// Options configures one assembly job. The zero value assembles in 8080
// mode with the spec's default resource caps.
type Options struct {
	CPUMode            string // "8080" (default) or "8085"
	MaxIncludeDepth    int
	MaxMacroExpansions int
}

// Result is everything an external caller (the binary emitter, the listing
// formatter, tools.Lint/Format, the viewer) needs once assembly finishes.
type Result struct {
	Lines    []*line.Line
	Knowns   *symtab.VarSpace[int]
	Warnings []Diagnostic

	// AssertFailed is true if anything failed during the second pass: a
	// deferred assert that evaluated to zero, or a reference that was still
	// unresolved. The failure messages themselves are not carried here.
	// Callers map this to exit code 2 per spec §6.
	AssertFailed bool
}

// AssembleFile reads path and runs both passes to completion, returning a
// Result plus an error. A non-nil *FatalError means an internal invariant
// was violated (exit 255 at the CLI boundary); any other non-nil error is a
// user-facing assembly error that aborted the first pass (exit 1); a nil
// error with Result.AssertFailed set means the first pass succeeded but the
// second pass failed, through an assertion or an unresolved reference (exit 2).
func AssembleFile(path string, opts Options) (*Result, error) {
	src, err := os.ReadFile(path) // #nosec G304 -- user-supplied assembler source
	if err != nil {
		return nil, &FatalError{Message: fmt.Sprintf("%s: %v", path, err)}
	}

	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, &FatalError{Message: fmt.Sprintf("%s: %v", path, err)}
	}

	st := NewState(baseDir, opts)

	ls, err := st.loadSource(filepath.Base(path), string(src))
	if err != nil {
		return nil, err
	}

	ll := newLineList(ls)

	if err := st.firstPass(ll); err != nil {
		return nil, err
	}
	st.resolveAll()

	assertFailed := st.secondPass(ll)

	return &Result{
		Lines:        ll.lines,
		Knowns:       st.knowns,
		Warnings:     st.errs.Warnings(),
		AssertFailed: assertFailed,
	}, nil
}

// loadSource splits raw into Lines via line.SplitLine and pre-scans the
// resulting chunk (spec §4.5.2) before it is spliced into the running list.
// Used both for the top-level source file and for every included file.
func (s *State) loadSource(filename, raw string) ([]*line.Line, error) {
	physical := splitPhysicalLines(raw)
	cls := classifier{cpu8085: s.cpuMode == "8085"}

	out := make([]*line.Line, 0, len(physical))
	anchor := ""
	for i, text := range physical {
		l, err := line.SplitLine(filename, i+1, text, anchor, cls)
		if err != nil {
			return nil, err
		}
		anchor = l.ScopeAnchor
		out = append(out, l)
	}

	if err := preScan(out); err != nil {
		return nil, err
	}
	return out, nil
}

// splitPhysicalLines splits on '\n', trimming a single trailing '\r' from
// each line so CRLF source files split the same as LF ones.
func splitPhysicalLines(raw string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\n' {
			lines = append(lines, trimCR(raw[start:i]))
			start = i + 1
		}
	}
	if start < len(raw) {
		lines = append(lines, trimCR(raw[start:]))
	}
	return lines
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}
