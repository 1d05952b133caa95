package asm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hallowmantle/i8080asm/expr"
	"github.com/hallowmantle/i8080asm/line"
	"github.com/hallowmantle/i8080asm/macro"
)

// stepDirective dispatches one directive line (spec §4.5.4's catalog). The
// returned bool follows stepLine's convention: false means ll was spliced
// at i and the cursor must not advance.
func (s *State) stepDirective(ll *lineList, i int, cur *line.Line) (bool, error) {
	if cur.Mnemonic != "equ" {
		if err := s.bindLabel(cur); err != nil {
			return false, err
		}
	}

	switch cur.Mnemonic {
	case "org":
		return true, s.dirOrg(cur)
	case "db":
		return true, s.dirDB(cur)
	case "dw":
		return true, s.dirDW(cur)
	case "ds":
		return true, s.dirDS(cur)
	case "equ":
		return true, s.dirEqu(cur)
	case "include":
		return false, s.dirInclude(ll, i, cur)
	case "incbin":
		return true, s.dirIncbin(cur)
	case "macro":
		return false, s.dirMacroDef(ll, i, cur)
	case "endm":
		return false, &FatalError{Message: fmt.Sprintf("%s: endm reached outside of macro collection", posOf(cur))}
	case "if", "ifdef", "ifndef":
		return false, s.dirConditional(ll, i, cur)
	case "endif":
		return false, fmt.Errorf("endif without matching if/ifdef/ifndef")
	case "pushd":
		return true, s.dirPushd(cur)
	case "popd":
		return true, s.dirPopd(cur)
	case "pushorg":
		return true, s.dirPushorg(cur)
	case "poporg":
		return true, s.dirPoporg(cur)
	case "align":
		return true, s.dirAlign(cur)
	case "assert":
		return true, s.dirAssert(cur)
	case "cpu":
		return true, nil // reserved, parse-only no-op
	default:
		return false, fmt.Errorf("unimplemented directive %q", cur.Mnemonic)
	}
}

func (s *State) dirOrg(cur *line.Line) error {
	if len(cur.Args) != 1 {
		return fmt.Errorf("org requires exactly one argument")
	}
	ex, err := cur.Args[0].AsExpression(cur.ScopeAnchor, s.exprOpts)
	if err != nil {
		return err
	}
	v, ok := s.evalOrDefer(ex, cur.Location)
	if !ok {
		return fmt.Errorf("org argument must be fully defined")
	}
	if v < 0 || v > 0xFFFF {
		return fmt.Errorf("org address %#x out of range", v)
	}
	cur.Location = v
	if cur.Label != "" {
		s.knowns.Set(cur.Label, v)
	}
	return nil
}

func (s *State) dirDB(cur *line.Line) error {
	if len(cur.Args) == 0 {
		return fmt.Errorf("db requires at least one argument")
	}
	var buf []byte
	for _, a := range cur.Args {
		str, ex, err := a.StringOrExpression(cur.ScopeAnchor, s.exprOpts)
		if err != nil {
			return err
		}
		if str != nil {
			buf = append(buf, str...)
			continue
		}
		offset := len(buf)
		buf = append(buf, 0)
		if v, ok := s.evalOrDefer(ex, cur.Location); ok {
			warnRange(s, cur, v, 1)
			buf[offset] = byte(v)
		} else {
			cur.NeedsSecondPass = true
			cur.Pending = append(cur.Pending, line.PendingFill{Offset: offset, Width: 1, Expr: ex})
		}
	}
	cur.Bytes = buf
	return nil
}

func (s *State) dirDW(cur *line.Line) error {
	if len(cur.Args) == 0 {
		return fmt.Errorf("dw requires at least one argument")
	}
	var buf []byte
	for _, a := range cur.Args {
		ex, err := a.AsExpression(cur.ScopeAnchor, s.exprOpts)
		if err != nil {
			return err
		}
		offset := len(buf)
		buf = append(buf, 0, 0)
		if v, ok := s.evalOrDefer(ex, cur.Location); ok {
			warnRange(s, cur, v, 2)
			writeLE(buf, offset, 2, v)
		} else {
			cur.NeedsSecondPass = true
			cur.Pending = append(cur.Pending, line.PendingFill{Offset: offset, Width: 2, Expr: ex})
		}
	}
	cur.Bytes = buf
	return nil
}

func (s *State) dirDS(cur *line.Line) error {
	if len(cur.Args) != 1 {
		return fmt.Errorf("ds requires exactly one argument")
	}
	ex, err := cur.Args[0].AsExpression(cur.ScopeAnchor, s.exprOpts)
	if err != nil {
		return err
	}
	v, ok := s.evalOrDefer(ex, cur.Location)
	if !ok {
		return fmt.Errorf("ds argument must be fully defined")
	}
	if v < 0 {
		return fmt.Errorf("ds size must be non-negative, got %d", v)
	}
	cur.Bytes = make([]byte, v)
	return nil
}

func (s *State) dirEqu(cur *line.Line) error {
	if cur.Label == "" {
		return fmt.Errorf("equ requires a label")
	}
	if len(cur.Args) != 1 {
		return fmt.Errorf("equ requires exactly one argument")
	}
	if s.knowns.Contains(cur.Label) || s.unknowns.Contains(cur.Label) {
		return fmt.Errorf("label %q already defined", cur.Label)
	}
	ex, err := cur.Args[0].AsExpression(cur.ScopeAnchor, s.exprOpts)
	if err != nil {
		return err
	}
	if v, ok := s.evalOrDefer(ex, cur.Location); ok {
		s.knowns.Set(cur.Label, v)
	} else {
		s.unknowns.Set(cur.Label, &pendingEqu{ln: cur, expr: ex})
	}
	return nil
}

func (s *State) dirInclude(ll *lineList, i int, cur *line.Line) error {
	if len(cur.Args) != 1 {
		return fmt.Errorf("include requires exactly one string argument")
	}
	raw, ok, err := cur.Args[0].AsString()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("include requires a quoted filename")
	}
	name := string(raw)

	fullPath := filepath.Join(s.currentDir(), name)
	src, ferr := os.ReadFile(fullPath) // #nosec G304 -- user-supplied include path under the source tree
	if ferr != nil {
		return fmt.Errorf("include %q: %v", name, ferr)
	}

	included, perr := s.loadSource(fullPath, string(src))
	if perr != nil {
		return perr
	}

	anchor := cur.ScopeAnchor
	for _, l := range included {
		if l.Label != "" && !strings.HasPrefix(l.Label, ".") {
			anchor = l.ScopeAnchor
		} else {
			l.ScopeAnchor = anchor
		}
	}

	spliced := make([]*line.Line, 0, len(included)+2)
	spliced = append(spliced, syntheticLine(cur, "pushd", filepath.Dir(fullPath)))
	spliced = append(spliced, included...)
	spliced = append(spliced, syntheticLine(cur, "popd", ""))

	ll.Replace(i, 1, spliced)
	return nil
}

func (s *State) dirIncbin(cur *line.Line) error {
	if len(cur.Args) != 1 {
		return fmt.Errorf("incbin requires exactly one string argument")
	}
	raw, ok, err := cur.Args[0].AsString()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("incbin requires a quoted filename")
	}
	path := filepath.Join(s.currentDir(), string(raw))
	data, ferr := os.ReadFile(path) // #nosec G304 -- user-supplied include path under the source tree
	if ferr != nil {
		return fmt.Errorf("incbin %q: %v", string(raw), ferr)
	}
	if cur.Location+len(data) > 0x10000 {
		return fmt.Errorf("incbin %q does not fit below 0x10000", string(raw))
	}
	cur.Bytes = data
	return nil
}

func (s *State) dirPushd(cur *line.Line) error {
	if len(cur.Args) != 1 {
		return fmt.Errorf("pushd requires exactly one string argument")
	}
	raw, ok, err := cur.Args[0].AsString()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("pushd requires a quoted path")
	}
	dir := string(raw)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.currentDir(), dir)
	}
	if len(s.dirStack)+1 > s.maxIncludeDepth {
		return &FatalError{Message: "include depth exceeds the configured cap"}
	}
	s.dirStack = append(s.dirStack, dir)
	return nil
}

func (s *State) dirPopd(cur *line.Line) error {
	if len(s.dirStack) <= 1 {
		return &FatalError{Message: "popd without matching pushd"}
	}
	s.dirStack = s.dirStack[:len(s.dirStack)-1]
	return nil
}

func (s *State) dirPushorg(cur *line.Line) error {
	if len(cur.Args) != 1 {
		return fmt.Errorf("pushorg requires exactly one argument")
	}
	ex, err := cur.Args[0].AsExpression(cur.ScopeAnchor, s.exprOpts)
	if err != nil {
		return err
	}
	v, ok := s.evalOrDefer(ex, cur.Location)
	if !ok {
		return fmt.Errorf("pushorg argument must be fully defined")
	}
	if v < 0 || v > 0xFFFF {
		return fmt.Errorf("pushorg address %#x out of range", v)
	}
	s.orgStack = append(s.orgStack, orgFrame{savedLocation: cur.Location, relocatedOrigin: v})
	cur.Location = v
	return nil
}

func (s *State) dirPoporg(cur *line.Line) error {
	if len(s.orgStack) == 0 {
		return &FatalError{Message: "poporg without matching pushorg"}
	}
	frame := s.orgStack[len(s.orgStack)-1]
	s.orgStack = s.orgStack[:len(s.orgStack)-1]
	relocatedSize := cur.Location - frame.relocatedOrigin
	cur.Location = frame.savedLocation + relocatedSize
	return nil
}

func (s *State) dirAlign(cur *line.Line) error {
	if len(cur.Args) < 1 || len(cur.Args) > 2 {
		return fmt.Errorf("align takes one or two arguments")
	}
	exE, err := cur.Args[0].AsExpression(cur.ScopeAnchor, s.exprOpts)
	if err != nil {
		return err
	}
	boundary, ok := s.evalOrDefer(exE, cur.Location)
	if !ok {
		return fmt.Errorf("align boundary must be fully defined")
	}
	if boundary <= 0 {
		return fmt.Errorf("align boundary must be positive, got %d", boundary)
	}

	fill := 0
	if len(cur.Args) == 2 {
		exF, err := cur.Args[1].AsExpression(cur.ScopeAnchor, s.exprOpts)
		if err != nil {
			return err
		}
		f, ok := s.evalOrDefer(exF, cur.Location)
		if !ok {
			return fmt.Errorf("align fill value must be fully defined")
		}
		fill = f
	}
	if fill < -128 || fill > 255 {
		s.errs.Warnf(posOf(cur), "align fill value %d truncated to 8 bits", fill)
	}

	n := 0
	if rem := cur.Location % boundary; rem != 0 {
		n = boundary - rem
	}
	buf := make([]byte, n)
	for k := range buf {
		buf[k] = byte(fill)
	}
	cur.Bytes = buf
	return nil
}

func (s *State) dirAssert(cur *line.Line) error {
	if len(cur.Args) < 1 || len(cur.Args) > 2 {
		return fmt.Errorf("assert takes one or two arguments")
	}
	ex, err := cur.Args[0].AsExpression(cur.ScopeAnchor, s.exprOpts)
	if err != nil {
		return err
	}
	msg := ex.Source
	if len(cur.Args) == 2 {
		str, ok, serr := cur.Args[1].AsString()
		if serr != nil {
			return serr
		}
		if ok {
			msg = string(str)
		}
	}
	cur.NeedsSecondPass = true
	cur.Assert = &line.Assert{Expr: ex, Message: msg}
	return nil
}

func (s *State) dirMacroDef(ll *lineList, i int, cur *line.Line) error {
	name := cur.Label
	if name == "" {
		return fmt.Errorf("macro directive requires a name")
	}
	formals := make([]string, len(cur.Args))
	for j, a := range cur.Args {
		formals[j] = strings.TrimSpace(a.Raw)
	}

	end := -1
	for j := i + 1; j < ll.Len(); j++ {
		l := ll.At(j)
		if l.Class != line.ClassDirective {
			continue
		}
		if l.Mnemonic == "macro" {
			return fmt.Errorf("%s:%d: nested macro definitions are not allowed", l.File, l.Num)
		}
		if l.Mnemonic == "endm" {
			end = j
			break
		}
	}
	if end < 0 {
		return fmt.Errorf("macro %q has no matching endm", name)
	}

	body := make([]macro.BodyLine, 0, end-i-1)
	for j := i + 1; j < end; j++ {
		l := ll.At(j)
		body = append(body, macro.BodyLine{File: l.File, Num: l.Num, Raw: l.Raw})
	}

	if err := s.macros.Define(&macro.Macro{Name: name, Formals: formals, Body: body}); err != nil {
		return err
	}

	ll.Remove(i, end-i+1)
	return nil
}

// dirConditional implements spec §4.5.6: find the matching endif, decide
// accept/reject, and splice accordingly.
func (s *State) dirConditional(ll *lineList, i int, cur *line.Line) error {
	endIdx, err := findEndif(ll, i)
	if err != nil {
		return err
	}
	accept, err := s.evalCondition(cur)
	if err != nil {
		return err
	}
	if accept {
		ll.Remove(endIdx, 1)
		ll.Remove(i, 1)
	} else {
		ll.Remove(i, endIdx-i+1)
	}
	return nil
}

func findEndif(ll *lineList, start int) (int, error) {
	depth := 0
	for j := start; j < ll.Len(); j++ {
		l := ll.At(j)
		if l.Class != line.ClassDirective {
			continue
		}
		switch l.Mnemonic {
		case "if", "ifdef", "ifndef":
			depth++
		case "endif":
			depth--
			if depth == 0 {
				return j, nil
			}
		}
	}
	start0 := ll.At(start)
	return 0, fmt.Errorf("%s:%d: %s without matching endif", start0.File, start0.Num, start0.Mnemonic)
}

func (s *State) evalCondition(cur *line.Line) (bool, error) {
	if len(cur.Args) != 1 {
		return false, fmt.Errorf("%s requires exactly one argument", cur.Mnemonic)
	}
	ex, err := cur.Args[0].AsExpression(cur.ScopeAnchor, s.exprOpts)
	if err != nil {
		return false, err
	}
	switch cur.Mnemonic {
	case "if":
		v, ok := s.evalOrDefer(ex, cur.Location)
		if !ok {
			return false, fmt.Errorf("if condition must be immediately resolvable")
		}
		return v != 0, nil
	case "ifdef":
		view := s.knowns.RenameView(ex.ScopeAnchor)
		return !expr.ContainsUndefinedNames(ex, view), nil
	case "ifndef":
		view := s.knowns.RenameView(ex.ScopeAnchor)
		return expr.ContainsUndefinedNames(ex, view), nil
	default:
		return false, fmt.Errorf("unknown conditional %q", cur.Mnemonic)
	}
}

func (s *State) stepMacroCall(ll *lineList, i int, cur *line.Line) (bool, error) {
	m, ok := s.macros.Lookup(cur.MacroName)
	if !ok {
		return false, fmt.Errorf("unknown macro %q", cur.MacroName)
	}
	s.macroExpansions++
	if s.macroExpansions > s.maxMacroExpansions {
		return false, fmt.Errorf("macro expansion cap (%d) exceeded", s.maxMacroExpansions)
	}
	args := make([]string, len(cur.Args))
	for j, a := range cur.Args {
		args[j] = a.Raw
	}
	cls := classifier{cpu8085: s.cpuMode == "8085"}
	body, err := macro.Expand(m, args, s.macroExpansions, cur.File, cur.Num, cur.ScopeAnchor, cls)
	if err != nil {
		return false, err
	}
	ll.Replace(i, 1, body)
	return false, nil
}

// syntheticLine builds a driver-generated pushd/popd line, inheriting ref's
// file and scope anchor but carrying no source line number (spec §6's
// listing leaves the line-number column blank for synthetic lines).
func syntheticLine(ref *line.Line, mnemonic, arg string) *line.Line {
	l := &line.Line{
		File:        ref.File,
		Num:         0,
		Raw:         mnemonic,
		Class:       line.ClassDirective,
		Mnemonic:    mnemonic,
		ScopeAnchor: ref.ScopeAnchor,
	}
	if arg != "" {
		l.Args = []*line.Argument{{Raw: fmt.Sprintf("%q", arg)}}
	}
	return l
}
