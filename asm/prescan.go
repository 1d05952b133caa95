package asm

import (
	"fmt"

	"github.com/hallowmantle/i8080asm/line"
)

// preScan walks one freshly-split chunk of lines (a whole file, before any
// include/macro splicing) looking for the structural mistakes spec §4.5.2
// wants caught before assembly proper begins: directives missing their
// required label, labels illegal in position or spelling, and control-word
// nesting that can never balance.
func preScan(ls []*line.Line) error {
	inMacro := false
	for _, l := range ls {
		if l.Class == line.ClassDirective {
			switch l.Mnemonic {
			case "macro":
				if l.Label == "" {
					return fmt.Errorf("%s:%d: macro directive requires a name", l.File, l.Num)
				}
				inMacro = true
			case "endm":
				if l.Label != "" {
					return fmt.Errorf("%s:%d: endm cannot be labeled", l.File, l.Num)
				}
				if !inMacro {
					return fmt.Errorf("%s:%d: endm without matching macro", l.File, l.Num)
				}
				inMacro = false
			case "equ":
				if l.Label == "" {
					return fmt.Errorf("%s:%d: equ directive requires a label", l.File, l.Num)
				}
			case "if", "ifdef", "ifndef", "endif":
				if l.Label != "" {
					return fmt.Errorf("%s:%d: %s cannot be labeled", l.File, l.Num, l.Mnemonic)
				}
			}
		}

		if l.Label != "" {
			if err := checkLabelSyntax(l, inMacro); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkLabelSyntax(l *line.Line, inMacro bool) error {
	name := l.Label
	if len(name) == 0 {
		return nil
	}
	first := name[0]
	legalStart := isLetter(first) || first == '_' || first == '.' || (first == '@' && inMacro)
	if !legalStart {
		if first == '@' && !inMacro {
			return fmt.Errorf("%s:%d: @-prefixed label %q used outside of a macro body", l.File, l.Num, name)
		}
		return fmt.Errorf("%s:%d: illegal label %q", l.File, l.Num, name)
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !(isLetter(c) || isDigit(c) || c == '_' || c == '.') {
			return fmt.Errorf("%s:%d: illegal character %q in label %q", l.File, l.Num, string(c), name)
		}
	}
	return nil
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
