// Package macro implements the macro facility of spec.md §4.5.5: a table of
// parameterized bodies and a hygienic expansion algorithm that renames
// `@`-prefixed labels to a fresh tag per invocation and substitutes formals
// textually, quote-aware, longest-match first.
package macro

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hallowmantle/i8080asm/internal/strutil"
	"github.com/hallowmantle/i8080asm/line"
)

// Macro is one definition collected between a `macro` line and its matching
// `endm`. Body holds the raw, unparsed text of each body line, since
// expansion substitutes text first and reparses afterward (spec §4.5.5).
type Macro struct {
	Name    string
	Formals []string
	Body    []BodyLine
}

// BodyLine is one raw source line captured inside a macro definition,
// carrying the file/line number where it was defined. Expanded copies are
// re-split with the invocation's file and line number instead, so their
// diagnostics point at the invocation.
type BodyLine struct {
	File string
	Num  int
	Raw  string
}

// Table stores macro definitions by name. The expansion counter used for
// hygienic tags and the 65536 recursion cap lives in the asm driver's state
// (spec §4.5.1's macro_expansion_count), not here, since it counts
// invocations across the whole assembly, not per-table.
type Table struct {
	macros map[string]*Macro
}

// New creates an empty macro table.
func New() *Table {
	return &Table{macros: make(map[string]*Macro)}
}

// Define registers a new macro. Redefinition is rejected, matching the
// duplicate-label rejection the rest of the symbol model enforces.
func (t *Table) Define(m *Macro) error {
	if _, exists := t.macros[m.Name]; exists {
		return fmt.Errorf("macro %q already defined", m.Name)
	}
	t.macros[m.Name] = m
	return nil
}

// Lookup finds a macro by name.
func (t *Table) Lookup(name string) (*Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}

// Expand produces the substituted, reparsed body of one invocation.
// expansionCount is the caller's running macro_expansion_count (spec
// §4.5.1), used verbatim to build the hygienic tag so two invocations never
// collide; callerFile and callerLine are attached to every produced body
// line so diagnostics inside the expansion still point somewhere useful;
// classifier is forwarded to line.SplitLine for reclassifying the
// substituted text.
func Expand(m *Macro, args []string, expansionCount int, callerFile string, callerLine int, callerScopeAnchor string, classifier line.Classifier) ([]*line.Line, error) {
	if len(args) != len(m.Formals) {
		return nil, fmt.Errorf("macro %q expects %d argument(s), got %d", m.Name, len(m.Formals), len(args))
	}

	subs := buildSubstitutions(m, args, expansionCount)

	anchor := callerScopeAnchor
	out := make([]*line.Line, 0, len(m.Body))
	for _, bl := range m.Body {
		expandedText := strutil.StringReplace(bl.Raw, subs)
		l, err := line.SplitLine(callerFile, callerLine, expandedText, anchor, classifier)
		if err != nil {
			return nil, fmt.Errorf("expanding macro %q: %w", m.Name, err)
		}
		anchor = l.ScopeAnchor
		out = append(out, l)
	}
	return out, nil
}

// buildSubstitutions builds the slot list per spec §4.5.5: slot 0 is the
// hygienic expansion tag, slots 1..n are the formal/actual pairs, sorted by
// Old-length descending (slot 0 stays first, since "@" is shorter than most
// formals but must never be shadowed by a same-prefixed formal name).
func buildSubstitutions(m *Macro, args []string, expansionCount int) []strutil.Substitution {
	tag := fmt.Sprintf("_%s_%d_", m.Name, expansionCount)
	subs := make([]strutil.Substitution, 0, len(args)+1)
	subs = append(subs, strutil.Substitution{Old: "@", New: tag})
	for i, formal := range m.Formals {
		subs = append(subs, strutil.Substitution{
			Old: "!" + strings.TrimSpace(formal),
			New: stripBrackets(strings.TrimSpace(args[i])),
		})
	}
	rest := subs[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		return len(rest[i].Old) > len(rest[j].Old)
	})
	return subs
}

// stripBrackets removes one enclosing (...) pair wrapping the entire actual,
// so a multi-token actual can participate safely in expression context.
func stripBrackets(s string) string {
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' && parensBalanced(s[1:len(s)-1]) {
		return s[1 : len(s)-1]
	}
	return s
}

func parensBalanced(s string) bool {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
