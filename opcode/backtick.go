package opcode

import (
	"fmt"

	"github.com/hallowmantle/i8080asm/expr"
	"github.com/hallowmantle/i8080asm/line"
)

// classifier satisfies line.Classifier using only this package's mnemonic
// table; a backtick literal's body is always a single instruction, never a
// directive, so IsDirective is unconditionally false.
type classifier struct{}

func (classifier) IsOpcode(name string) bool { return IsMnemonic(name) }
func (classifier) IsDirective(string) bool   { return false }

var emptyLookup = emptyVars{}

type emptyVars struct{}

func (emptyVars) Get(string) (int, bool) { return 0, false }

// FirstByte assembles a single instruction (the text inside a `...`
// backtick literal) and returns its encoded first byte. It is the concrete
// expr.BacktickEncoder the assembler driver hands to expr.Options so the
// expression engine never imports this package directly.
func FirstByte(instructionText string) (byte, error) {
	// The leading space keeps SplitLine from reading the mnemonic as a label.
	l, err := line.SplitLine("<backtick>", 0, " "+instructionText, "", classifier{})
	if err != nil {
		return 0, err
	}
	if l.Class != line.ClassOpcode {
		return 0, fmt.Errorf("backtick literal %q is not a single instruction", instructionText)
	}

	entry, ok := Lookup(l.Mnemonic)
	if !ok {
		return 0, fmt.Errorf("unknown mnemonic %q", l.Mnemonic)
	}

	var regs []line.Register
	var pairs []line.RegPair
	var vector *int

	need := func(n int) error {
		if len(l.Args) < n {
			return fmt.Errorf("%s requires %d operand(s)", l.Mnemonic, n)
		}
		return nil
	}

	switch entry.Form {
	case FormImplied:
		// no operands
	case FormRegReg:
		if err := need(2); err != nil {
			return 0, err
		}
		for _, a := range l.Args[:2] {
			r, ok := a.AsRegister()
			if !ok {
				return 0, fmt.Errorf("%q is not a register", a.Raw)
			}
			regs = append(regs, r)
		}
	case FormReg, FormRegImm8:
		if err := need(1); err != nil {
			return 0, err
		}
		r, ok := l.Args[0].AsRegister()
		if !ok {
			return 0, fmt.Errorf("%q is not a register", l.Args[0].Raw)
		}
		regs = append(regs, r)
	case FormRegPair, FormRegPairImm16, FormStaxLdax:
		if err := need(1); err != nil {
			return 0, err
		}
		p, ok := l.Args[0].AsRegPair()
		if !ok {
			return 0, fmt.Errorf("%q is not a register pair", l.Args[0].Raw)
		}
		pairs = append(pairs, p)
	case FormPushPop:
		if err := need(1); err != nil {
			return 0, err
		}
		p, ok := l.Args[0].AsRegPair()
		if !ok {
			return 0, fmt.Errorf("%q is not a register pair", l.Args[0].Raw)
		}
		pairs = append(pairs, p)
	case FormImm8, FormAddr16:
		// byte 0 is fixed; operand value (if present) is irrelevant here
	case FormRst:
		if err := need(1); err != nil {
			return 0, err
		}
		ex, err := l.Args[0].AsExpression("", expr.Options{})
		if err != nil {
			return 0, err
		}
		v, err := expr.Eval(ex, emptyLookup, 0)
		if err != nil {
			return 0, fmt.Errorf("rst vector must be a literal constant: %w", err)
		}
		vector = &v
	}

	return EncodeOpcodeByte(l.Mnemonic, regs, pairs, vector)
}
