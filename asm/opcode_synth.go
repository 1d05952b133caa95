package asm

import (
	"fmt"

	"github.com/hallowmantle/i8080asm/line"
	"github.com/hallowmantle/i8080asm/opcode"
)

// stepOpcode synthesizes the fixed byte layout for an instruction line
// (spec §4.5.3's Opcode dispatch branch). A 1-byte layout is finalized
// immediately; layouts carrying an immediate either fill it now (fully
// defined) or allocate the full length and defer the fill to the second
// pass.
func (s *State) stepOpcode(cur *line.Line) (bool, error) {
	if err := s.bindLabel(cur); err != nil {
		return false, err
	}

	entry, ok := opcode.Lookup(cur.Mnemonic)
	if !ok {
		return false, fmt.Errorf("unknown mnemonic %q", cur.Mnemonic)
	}
	if entry.Is8085 && s.cpuMode != "8085" {
		return false, fmt.Errorf("%q is an 8085-only instruction, not available in 8080 mode", cur.Mnemonic)
	}

	buf := make([]byte, entry.Len)

	var regs []line.Register
	var pairs []line.RegPair
	var vector *int
	var immArg *line.Argument
	immWidth := 0

	need := func(n int) error {
		if len(cur.Args) < n {
			return fmt.Errorf("%s requires %d operand(s)", cur.Mnemonic, n)
		}
		return nil
	}
	asRegister := func(a *line.Argument) (line.Register, error) {
		r, ok := a.AsRegister()
		if !ok {
			return 0, fmt.Errorf("%q is not a register", a.Raw)
		}
		return r, nil
	}
	asRegPair := func(a *line.Argument) (line.RegPair, error) {
		p, ok := a.AsRegPair()
		if !ok {
			return 0, fmt.Errorf("%q is not a register pair", a.Raw)
		}
		return p, nil
	}

	switch entry.Form {
	case opcode.FormImplied:
		// no operands

	case opcode.FormRegReg:
		if err := need(2); err != nil {
			return false, err
		}
		for _, a := range cur.Args[:2] {
			r, err := asRegister(a)
			if err != nil {
				return false, err
			}
			regs = append(regs, r)
		}

	case opcode.FormReg:
		if err := need(1); err != nil {
			return false, err
		}
		r, err := asRegister(cur.Args[0])
		if err != nil {
			return false, err
		}
		regs = append(regs, r)

	case opcode.FormRegImm8:
		if err := need(2); err != nil {
			return false, err
		}
		r, err := asRegister(cur.Args[0])
		if err != nil {
			return false, err
		}
		regs = append(regs, r)
		immArg, immWidth = cur.Args[1], 1

	case opcode.FormRegPair:
		if err := need(1); err != nil {
			return false, err
		}
		p, err := asRegPair(cur.Args[0])
		if err != nil {
			return false, err
		}
		pairs = append(pairs, p)

	case opcode.FormRegPairImm16:
		if err := need(2); err != nil {
			return false, err
		}
		p, err := asRegPair(cur.Args[0])
		if err != nil {
			return false, err
		}
		pairs = append(pairs, p)
		immArg, immWidth = cur.Args[1], 2

	case opcode.FormPushPop, opcode.FormStaxLdax:
		if err := need(1); err != nil {
			return false, err
		}
		p, err := asRegPair(cur.Args[0])
		if err != nil {
			return false, err
		}
		pairs = append(pairs, p)

	case opcode.FormImm8:
		if err := need(1); err != nil {
			return false, err
		}
		immArg, immWidth = cur.Args[0], 1

	case opcode.FormAddr16:
		if err := need(1); err != nil {
			return false, err
		}
		immArg, immWidth = cur.Args[0], 2

	case opcode.FormRst:
		if err := need(1); err != nil {
			return false, err
		}
		ex, err := cur.Args[0].AsExpression(cur.ScopeAnchor, s.exprOpts)
		if err != nil {
			return false, err
		}
		v, ok := s.evalOrDefer(ex, cur.Location)
		if !ok {
			return false, fmt.Errorf("rst vector must be a constant expression")
		}
		if v < 0 || v > 7 {
			return false, fmt.Errorf("rst vector must be in 0..7, got %d", v)
		}
		vector = &v

	default:
		return false, fmt.Errorf("unhandled instruction form for %q", cur.Mnemonic)
	}

	b0, err := opcode.EncodeOpcodeByte(cur.Mnemonic, regs, pairs, vector)
	if err != nil {
		return false, err
	}
	buf[0] = b0

	if immArg != nil {
		ex, err := immArg.AsExpression(cur.ScopeAnchor, s.exprOpts)
		if err != nil {
			return false, err
		}
		if v, ok := s.evalOrDefer(ex, cur.Location); ok {
			warnRange(s, cur, v, immWidth)
			writeLE(buf, 1, immWidth, v)
		} else {
			cur.NeedsSecondPass = true
			cur.Pending = append(cur.Pending, line.PendingFill{Offset: 1, Width: immWidth, Expr: ex})
		}
	}

	cur.Bytes = buf
	return true, nil
}
