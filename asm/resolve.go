package asm

import (
	"github.com/hallowmantle/i8080asm/expr"
	"github.com/hallowmantle/i8080asm/line"
)

// pendingEqu is what the unknowns table points at: the equ line whose value
// is still undetermined, plus the already-parsed expression (so resolveAll
// never reparses raw text).
type pendingEqu struct {
	ln   *line.Line
	expr *expr.Expr
}

// resolveAll iterates unknowns to a fix point: spec §4.5.8 calls this
// between every directive and once more at the end of the first pass.
// Convergence is monotone since knowns only grows.
func (s *State) resolveAll() {
	for {
		progressed := false
		for _, ent := range s.unknowns.Entries() {
			pending := ent.Value
			v, ok := s.evalOrDefer(pending.expr, pending.ln.Location)
			if !ok {
				// Leave it for a later pass to report as a genuine error; a
				// transient failure here (e.g. division by a value not yet
				// sane) should not abort resolution of independent entries.
				continue
			}
			s.knowns.Set(ent.Name, v)
			s.unknowns.Delete(ent.Name)
			progressed = true
		}
		if !progressed {
			return
		}
	}
}
