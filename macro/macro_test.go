package macro_test

import (
	"testing"

	"github.com/hallowmantle/i8080asm/macro"
)

type stubClassifier struct{}

func (stubClassifier) IsOpcode(name string) bool {
	switch name {
	case "mvi", "jmp", "nop":
		return true
	}
	return false
}

func (stubClassifier) IsDirective(name string) bool { return false }

func TestDefineDuplicateRejected(t *testing.T) {
	tbl := macro.New()
	m := &macro.Macro{Name: "delay", Formals: []string{"n"}}
	if err := tbl.Define(m); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Define(m); err == nil {
		t.Error("expected error defining macro twice")
	}
}

func TestExpandArityMismatch(t *testing.T) {
	m := &macro.Macro{Name: "delay", Formals: []string{"n"}}
	if _, err := macro.Expand(m, nil, 1, "f.asm", 1, "", stubClassifier{}); err == nil {
		t.Error("expected arity mismatch error")
	}
}

func TestExpandSubstitutesFormalAndStripsParens(t *testing.T) {
	m := &macro.Macro{
		Name:    "setreg",
		Formals: []string{"x"},
		Body: []macro.BodyLine{
			{Raw: "  mvi a, !x"},
		},
	}
	lines, err := macro.Expand(m, []string{"(1+2)"}, 1, "f.asm", 10, "", stubClassifier{})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines", len(lines))
	}
	if len(lines[0].Args) != 2 || lines[0].Args[1].Raw != "1+2" {
		t.Errorf("args = %+v", lines[0].Args)
	}
}

func TestExpandHygienicLabel(t *testing.T) {
	m := &macro.Macro{
		Name:    "m",
		Formals: []string{"x"},
		Body: []macro.BodyLine{
			{Raw: "@loop: mvi a, !x"},
			{Raw: "  jmp @loop"},
		},
	}
	first, err := macro.Expand(m, []string{"5"}, 1, "f.asm", 1, "", stubClassifier{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := macro.Expand(m, []string{"5"}, 2, "f.asm", 2, "", stubClassifier{})
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Label == second[0].Label {
		t.Errorf("expected distinct hygienic labels, both %q", first[0].Label)
	}
	if first[0].Label != "_m_1_loop" {
		t.Errorf("label = %q", first[0].Label)
	}
	// the jmp target inside each expansion must reference that expansion's
	// own label, not the other one's.
	if len(first[1].Args) != 1 || first[1].Args[0].Raw != first[0].Label {
		t.Errorf("jmp target = %+v, want %q", first[1].Args, first[0].Label)
	}
}

func TestExpandLongestSubstitutionFirst(t *testing.T) {
	m := &macro.Macro{
		Name:    "m",
		Formals: []string{"a", "ab"},
		Body: []macro.BodyLine{
			{Raw: "  mvi a, !ab"},
		},
	}
	lines, err := macro.Expand(m, []string{"1", "2"}, 1, "f.asm", 1, "", stubClassifier{})
	if err != nil {
		t.Fatal(err)
	}
	if lines[0].Args[1].Raw != "2" {
		t.Errorf("expected longest-match !ab substituted first, got %+v", lines[0].Args)
	}
}
