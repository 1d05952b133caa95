package tools

import (
	"strings"

	"github.com/hallowmantle/i8080asm/line"
)

// FormatStyle selects a column layout.
type FormatStyle int

const (
	FormatDefault  FormatStyle = iota // teacher-style fixed columns
	FormatCompact                     // minimal whitespace, single space separators
	FormatExpanded                    // wider columns for readability
)

// FormatOptions controls the re-formatter's column layout, mirroring the
// teacher's FormatOptions shape.
type FormatOptions struct {
	Style             FormatStyle
	InstructionColumn int // column the mnemonic/directive name starts at
	OperandColumn     int // column operands start at
	CommentColumn     int // column the comment starts at
	AlignOperands     bool
	AlignComments     bool
}

// DefaultFormatOptions returns the default column layout.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		Style:             FormatDefault,
		InstructionColumn: 8,
		OperandColumn:     16,
		CommentColumn:     40,
		AlignOperands:     true,
		AlignComments:     true,
	}
}

// CompactFormatOptions returns a minimal-whitespace layout.
func CompactFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatCompact
	opts.AlignOperands = false
	opts.AlignComments = false
	return opts
}

// ExpandedFormatOptions returns a wide, readability-first layout.
func ExpandedFormatOptions() *FormatOptions {
	opts := DefaultFormatOptions()
	opts.Style = FormatExpanded
	opts.InstructionColumn = 12
	opts.OperandColumn = 24
	opts.CommentColumn = 50
	return opts
}

// Format re-renders a line list in column-aligned form: label, mnemonic,
// operands, comment. It operates purely on the parsed line list, never on
// the byte output, so it needs no second assembly pass and works even on a
// program whose assembly ultimately failed.
func Format(lines []*line.Line, opts FormatOptions) string {
	var out strings.Builder
	for _, l := range lines {
		if l.Num == 0 {
			// synthetic pushd/popd line the driver inserts around an
			// include; it is not part of the source text, so it is not
			// re-emitted.
			continue
		}
		formatLine(&out, l, opts)
	}
	return out.String()
}

func formatLine(out *strings.Builder, l *line.Line, opts FormatOptions) {
	var sb strings.Builder

	mnemonic := l.Mnemonic
	if l.Class == line.ClassMacroCall {
		mnemonic = l.MacroName
	}

	if l.Label != "" {
		sb.WriteString(l.Label)
		sb.WriteString(":")
		if opts.Style != FormatCompact {
			padToColumn(&sb, opts.InstructionColumn)
		} else if mnemonic != "" {
			sb.WriteString(" ")
		}
	} else if opts.Style != FormatCompact {
		padToColumn(&sb, opts.InstructionColumn)
	}

	sb.WriteString(mnemonic)

	if len(l.Args) > 0 {
		if opts.Style != FormatCompact && opts.AlignOperands {
			padToColumn(&sb, opts.OperandColumn)
		} else {
			sb.WriteString(" ")
		}
		operands := make([]string, len(l.Args))
		for i, a := range l.Args {
			operands[i] = strings.TrimSpace(a.Raw)
		}
		sb.WriteString(strings.Join(operands, ", "))
	}

	if l.Comment != "" {
		comment := strings.TrimSpace(l.Comment)
		if opts.Style == FormatCompact {
			sb.WriteString(" ; ")
			sb.WriteString(comment)
		} else if opts.AlignComments {
			padToColumn(&sb, opts.CommentColumn)
			sb.WriteString("; ")
			sb.WriteString(comment)
		} else {
			sb.WriteString(" ; ")
			sb.WriteString(comment)
		}
	}

	out.WriteString(sb.String())
	out.WriteString("\n")
}

func padToColumn(sb *strings.Builder, column int) {
	current := sb.Len()
	if current < column {
		sb.WriteString(strings.Repeat(" ", column-current))
	} else if current > column {
		sb.WriteString(" ")
	}
}
