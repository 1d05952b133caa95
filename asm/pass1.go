package asm

import (
	"fmt"

	"github.com/hallowmantle/i8080asm/line"
)

func posOf(l *line.Line) Position { return Position{File: l.File, Line: l.Num} }

// firstPass is the per-line state machine of spec §4.5.3. It walks ll by
// cursor index rather than recursion: macro expansion, include splicing,
// and conditional excision all rewrite ll around the cursor and then
// continue from the same index, so spliced-in content is itself walked by
// the very same loop rather than by a nested call.
func (s *State) firstPass(ll *lineList) error {
	i := 0
	for i < ll.Len() {
		cur := ll.At(i)

		cur.Location = s.location
		s.setScope(cur.ScopeAnchor)

		advance, err := s.stepLine(ll, i, cur)
		if err != nil {
			if _, fatal := err.(*FatalError); fatal {
				return err
			}
			s.errs.Errorf(posOf(cur), "%s", err)
			return s.errs
		}

		s.resolveAll()

		if !advance {
			continue
		}

		s.location = cur.Location + len(cur.Bytes)
		if s.location > 0x10000 {
			s.errs.Errorf(posOf(cur), "location exceeds 64K address space")
			return s.errs
		}
		i++
	}
	return nil
}

// stepLine dispatches one line. The returned bool is false when ll was
// spliced at i (macro expansion, include, conditional excision, or macro
// definition collection) and the loop must re-examine position i rather
// than advance past it.
func (s *State) stepLine(ll *lineList, i int, cur *line.Line) (advance bool, err error) {
	switch cur.Class {
	case line.ClassNone:
		return s.stepNone(cur)
	case line.ClassDirective:
		return s.stepDirective(ll, i, cur)
	case line.ClassMacroCall:
		return s.stepMacroCall(ll, i, cur)
	case line.ClassOpcode:
		return s.stepOpcode(cur)
	default:
		return false, fmt.Errorf("line has no instruction classification")
	}
}

func (s *State) stepNone(cur *line.Line) (bool, error) {
	if err := s.bindLabel(cur); err != nil {
		return false, err
	}
	return true, nil
}

// bindLabel implements spec §4.5.3 step 3: generic label binding, skipped
// for macro invocations and `equ` (each of which binds the label its own
// way, or not at all).
func (s *State) bindLabel(cur *line.Line) error {
	if cur.Label == "" || cur.Class == line.ClassMacroCall {
		return nil
	}
	if cur.Class == line.ClassDirective && cur.Mnemonic == "equ" {
		return nil
	}
	if s.knowns.Contains(cur.Label) || s.unknowns.Contains(cur.Label) {
		return fmt.Errorf("label %q already defined", cur.Label)
	}
	s.knowns.Set(cur.Label, cur.Location)
	return nil
}
