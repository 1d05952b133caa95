package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hallowmantle/i8080asm/asm"
	"github.com/hallowmantle/i8080asm/expr"
	"github.com/hallowmantle/i8080asm/line"
	"github.com/hallowmantle/i8080asm/opcode"
	"github.com/hallowmantle/i8080asm/symtab"
)

// RefType classifies how a symbol is used at one reference site.
type RefType int

const (
	RefDefinition RefType = iota // the label/equ's own definition
	RefCall                      // call/cz/cnz/... target
	RefBranch                    // jmp/jz/jnz/... target
	RefData                      // operand of db/dw, or any other expression use
)

func (r RefType) String() string {
	switch r {
	case RefDefinition:
		return "definition"
	case RefCall:
		return "call"
	case RefBranch:
		return "branch"
	default:
		return "data"
	}
}

// Reference is one use (or the definition) of a symbol.
type Reference struct {
	Type RefType
	File string
	Line int
}

// Symbol collects every reference to one name across the program.
type Symbol struct {
	Name       string
	Definition *Reference
	References []Reference
	Value      int
	IsConstant bool // true for equ-bound names
	IsFunction bool // true if ever the target of a call-family mnemonic
}

// XRef builds a cross-reference table: every label/equ definition plus
// every site it is used from, classified by how it was used.
func XRef(program *asm.Result) map[string]*Symbol {
	symbols := make(map[string]*Symbol)

	get := func(name string) *Symbol {
		if s, ok := symbols[name]; ok {
			return s
		}
		s := &Symbol{Name: name}
		symbols[name] = s
		return s
	}

	for _, l := range program.Lines {
		if l.Label == "" || l.Class == line.ClassMacroCall {
			continue
		}
		key := symtab.Qualify(l.Label, l.ScopeAnchor)
		sym := get(key)
		sym.Definition = &Reference{Type: RefDefinition, File: l.File, Line: l.Num}
		if l.Class == line.ClassDirective && l.Mnemonic == "equ" {
			sym.IsConstant = true
			if v, ok := program.Knowns.RenameView(l.ScopeAnchor).Get(l.Label); ok {
				sym.Value = v
			}
		}
	}

	exprOpts := expr.Options{Backtick: opcode.FirstByte}

	for _, l := range program.Lines {
		refType := classify(l)
		for _, a := range l.Args {
			ex, err := a.AsExpression(l.ScopeAnchor, exprOpts)
			if err != nil {
				continue
			}
			for _, n := range ex.RPN {
				if n.Kind != expr.KindName {
					continue
				}
				key := symtab.Qualify(n.Text, ex.ScopeAnchor)
				sym := get(key)
				sym.References = append(sym.References, Reference{Type: refType, File: l.File, Line: l.Num})
				if refType == RefCall {
					sym.IsFunction = true
				}
			}
		}
	}

	return symbols
}

// classify reports how a line's operands (if any name a symbol) are being
// used, based on the instruction form.
func classify(l *line.Line) RefType {
	if l.Class != line.ClassOpcode {
		return RefData
	}
	m := strings.ToLower(l.Mnemonic)
	switch m {
	case "call", "cz", "cnz", "cc", "cnc", "cpo", "cpe", "cp", "cm":
		return RefCall
	case "jmp", "jz", "jnz", "jc", "jnc", "jpo", "jpe", "jp", "jm":
		return RefBranch
	default:
		return RefData
	}
}

// XRefReport renders an XRef table as sorted, human-readable text.
type XRefReport struct {
	symbols []*Symbol
}

// NewXRefReport sorts symbols by name for deterministic output.
func NewXRefReport(symbols map[string]*Symbol) *XRefReport {
	sorted := make([]*Symbol, 0, len(symbols))
	for _, s := range symbols {
		sorted = append(sorted, s)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &XRefReport{symbols: sorted}
}

func (r *XRefReport) String() string {
	var sb strings.Builder
	sb.WriteString("Symbol Cross-Reference\n")
	sb.WriteString("=======================\n\n")

	for _, sym := range r.symbols {
		sb.WriteString(fmt.Sprintf("%-24s", sym.Name))
		switch {
		case sym.IsConstant:
			sb.WriteString(fmt.Sprintf(" [constant=%#04x]", uint16(sym.Value)))
		case sym.IsFunction:
			sb.WriteString(" [function]")
		default:
			sb.WriteString(" [label]")
		}
		sb.WriteString("\n")

		if sym.Definition != nil {
			sb.WriteString(fmt.Sprintf("  defined:    %s:%d\n", sym.Definition.File, sym.Definition.Line))
		} else {
			sb.WriteString("  defined:    (undefined)\n")
		}

		if len(sym.References) == 0 {
			sb.WriteString("  referenced: (never)\n")
		} else {
			byType := make(map[RefType][]Reference)
			for _, ref := range sym.References {
				byType[ref.Type] = append(byType[ref.Type], ref)
			}
			for _, t := range []RefType{RefCall, RefBranch, RefData} {
				refs := byType[t]
				if len(refs) == 0 {
					continue
				}
				lines := make([]string, len(refs))
				for i, ref := range refs {
					lines[i] = fmt.Sprintf("%s:%d", ref.File, ref.Line)
				}
				sb.WriteString(fmt.Sprintf("    %-8s %s\n", t.String()+":", strings.Join(lines, ", ")))
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// GenerateXRef is the convenience entry point: build and render the
// cross-reference table for an assembled program in one call.
func GenerateXRef(program *asm.Result) string {
	return NewXRefReport(XRef(program)).String()
}
