package asm

// secondPass implements spec §4.5.7: fill in every byte range a directive
// or opcode deferred during the first pass, now that resolveAll has run to
// a fix point, plus evaluate every deferred assert. Failures accumulate
// (rather than aborting) in the state's ErrorList; the returned bool is true
// if anything failed. The collected messages are not part of Result and are
// not printed.
func (s *State) secondPass(ll *lineList) bool {
	failed := false
	for i := 0; i < ll.Len(); i++ {
		cur := ll.At(i)
		if !cur.NeedsSecondPass {
			continue
		}
		s.setScope(cur.ScopeAnchor)

		for _, p := range cur.Pending {
			v, ok := s.evalOrDefer(p.Expr, cur.Location)
			if !ok {
				s.errs.Errorf(posOf(cur), "unresolved reference in %q", p.Expr.Source)
				failed = true
				continue
			}
			warnRange(s, cur, v, p.Width)
			writeLE(cur.Bytes, p.Offset, p.Width, v)
		}

		if cur.Assert != nil {
			v, ok := s.evalOrDefer(cur.Assert.Expr, cur.Location)
			switch {
			case !ok:
				s.errs.Errorf(posOf(cur), "assert references undefined name")
				failed = true
			case v == 0:
				s.errs.Errorf(posOf(cur), "assertion failed: %s", cur.Assert.Message)
				failed = true
			}
		}
	}
	return failed
}
