// Package tools implements optional, non-assembling analyses over an
// already-produced asm.Result or line.Line list: a lint pass that flags
// unreferenced labels and truncated operands, and a column-aligned
// re-formatter. Neither is required for a plain assemble-and-emit run;
// both are wired into main.go behind -lint/-fmt.
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

// IssueLevel classifies a lint finding. Neither level aborts assembly;
// both are purely advisory.
type IssueLevel int

const (
	IssueWarning IssueLevel = iota
	IssueInfo
)

func (lv IssueLevel) String() string {
	if lv == IssueWarning {
		return "warning"
	}
	return "info"
}

// Issue is one lint finding.
type Issue struct {
	Level   IssueLevel
	File    string
	Line    int
	Message string
	Code    string // "UNUSED_LABEL", "TRUNCATED_VALUE"
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d: %s: %s [%s]", i.File, i.Line, i.Level, i.Message, i.Code)
}

// Lint analyzes an assembled program for labels that are defined but never
// referenced from any expression, and surfaces the second pass's
// truncation warnings (spec §4.5.7) as a structured, filterable list.
func Lint(program *asm.Result) []Issue {
	var issues []Issue

	issues = append(issues, unusedLabelIssues(program)...)
	issues = append(issues, truncationIssues(program)...)

	sort.SliceStable(issues, func(a, b int) bool {
		if issues[a].File != issues[b].File {
			return issues[a].File < issues[b].File
		}
		return issues[a].Line < issues[b].Line
	})

	return issues
}

func unusedLabelIssues(program *asm.Result) []Issue {
	type def struct {
		file string
		num  int
	}
	defined := make(map[string]def)

	for _, l := range program.Lines {
		if l.Label == "" || l.Class == line.ClassMacroCall {
			continue
		}
		key := symtab.Qualify(l.Label, l.ScopeAnchor)
		defined[key] = def{file: l.File, num: l.Num}
	}

	referenced := make(map[string]bool)
	exprOpts := expr.Options{Backtick: opcode.FirstByte}

	noteExpr := func(ex *expr.Expr) {
		if ex == nil {
			return
		}
		for _, n := range ex.RPN {
			if n.Kind == expr.KindName {
				referenced[symtab.Qualify(n.Text, ex.ScopeAnchor)] = true
			}
		}
	}

	for _, l := range program.Lines {
		for _, a := range l.Args {
			if ex, err := a.AsExpression(l.ScopeAnchor, exprOpts); err == nil {
				noteExpr(ex)
			}
		}
		for _, p := range l.Pending {
			noteExpr(p.Expr)
		}
		if l.Assert != nil {
			noteExpr(l.Assert.Expr)
		}
	}

	var issues []Issue
	for name, d := range defined {
		if referenced[name] {
			continue
		}
		issues = append(issues, Issue{
			Level:   IssueInfo,
			File:    d.file,
			Line:    d.num,
			Message: fmt.Sprintf("label %q is never referenced", name),
			Code:    "UNUSED_LABEL",
		})
	}
	return issues
}

func truncationIssues(program *asm.Result) []Issue {
	var issues []Issue
	for _, w := range program.Warnings {
		if !strings.Contains(w.Message, "out of range") && !strings.Contains(w.Message, "truncat") {
			continue
		}
		issues = append(issues, Issue{
			Level:   IssueWarning,
			File:    w.Pos.File,
			Line:    w.Pos.Line,
			Message: w.Message,
			Code:    "TRUNCATED_VALUE",
		})
	}
	return issues
}
