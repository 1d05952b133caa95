package asm

import (
	"github.com/hallowmantle/i8080asm/opcode"
)

// directiveNames is the catalog of §4.5.4, plus "cpu" (reserved, parse-only
// no-op per the spec's own adopted reading of the ambiguous source
// behavior) and the if/ifdef/ifndef/endif control words that must classify
// as directives even though most of their handling happens inline in the
// conditional-assembly scan rather than through stepDirective.
var directiveNames = map[string]bool{
	"org": true, "db": true, "dw": true, "ds": true, "equ": true,
	"include": true, "incbin": true,
	"macro": true, "endm": true,
	"if": true, "ifdef": true, "ifndef": true, "endif": true,
	"pushd": true, "popd": true,
	"pushorg": true, "poporg": true,
	"align": true, "assert": true,
	"cpu": true,
}

// classifier is the line.Classifier the driver supplies to line.SplitLine:
// opcodes come from the opcode table (filtered by cpu_mode for the twelve
// 8085-only mnemonics: dsub, arhl, rdel, rim, ldhi, sim, ldsi, rstv, shlx,
// jnk, lhlx, jk), directives from the fixed catalog above.
type classifier struct {
	cpu8085 bool
}

func (c classifier) IsOpcode(name string) bool {
	e, ok := opcode.Lookup(name)
	if !ok {
		return false
	}
	if e.Is8085 && !c.cpu8085 {
		return false
	}
	return true
}

func (classifier) IsDirective(name string) bool {
	return directiveNames[lowerASCII(name)]
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}
