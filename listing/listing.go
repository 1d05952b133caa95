// Package listing renders the per-line hex/symbol-table dump spec §6
// describes: for each line, its source line number (blank for the synthetic
// pushd/popd lines the driver puts around an include), its location (or "="
// plus value for an equ), up to four bytes per row, and the original raw
// text with its comment, followed by the symbol table in reverse order of
// definition.
package listing

import (
	"fmt"
	"strings"

	"github.com/hallowmantle/i8080asm/line"
	"github.com/hallowmantle/i8080asm/symtab"
)

const bytesPerRow = 4

// Format renders the full listing for an assembled line list plus its
// final symbol table.
func Format(lines []*line.Line, knowns *symtab.VarSpace[int]) string {
	var sb strings.Builder
	for _, l := range lines {
		writeLine(&sb, l, knowns)
	}
	sb.WriteString("\n")
	writeSymbolTable(&sb, knowns)
	return sb.String()
}

func writeLine(sb *strings.Builder, l *line.Line, knowns *symtab.VarSpace[int]) {
	lineNo := ""
	if l.Num > 0 {
		lineNo = fmt.Sprintf("%5d", l.Num)
	} else {
		lineNo = strings.Repeat(" ", 5)
	}

	loc := locColumn(l, knowns)

	rows := chunkBytes(l.Bytes, bytesPerRow)
	if len(rows) == 0 {
		rows = [][]byte{nil}
	}

	text := l.Raw
	if l.Comment != "" {
		text += ";" + l.Comment
	}

	for i, row := range rows {
		hex := hexRow(row)
		if i == 0 {
			fmt.Fprintf(sb, "%s  %-6s %-11s %s\n", lineNo, loc, hex, text)
		} else {
			fmt.Fprintf(sb, "%s  %-6s %-11s\n", strings.Repeat(" ", 5), "", hex)
		}
	}
}

func locColumn(l *line.Line, knowns *symtab.VarSpace[int]) string {
	if l.Class == line.ClassDirective && l.Mnemonic == "equ" && l.Label != "" {
		if v, ok := knowns.RenameView(l.ScopeAnchor).Get(l.Label); ok {
			return fmt.Sprintf("=%04X", uint16(v))
		}
	}
	return fmt.Sprintf("%04X", uint16(l.Location))
}

func chunkBytes(b []byte, n int) [][]byte {
	if len(b) == 0 {
		return nil
	}
	var out [][]byte
	for len(b) > 0 {
		end := n
		if end > len(b) {
			end = len(b)
		}
		out = append(out, b[:end])
		b = b[end:]
	}
	return out
}

func hexRow(row []byte) string {
	parts := make([]string, len(row))
	for i, b := range row {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

func writeSymbolTable(sb *strings.Builder, knowns *symtab.VarSpace[int]) {
	sb.WriteString("Symbol table:\n")
	for _, e := range knowns.Entries() {
		fmt.Fprintf(sb, "%-24s = %04X\n", e.Name, uint16(e.Value))
	}
}
