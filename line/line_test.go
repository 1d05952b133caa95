package line_test

import (
	"testing"

	"github.com/hallowmantle/i8080asm/line"
)

type stubClassifier struct {
	opcodes    map[string]bool
	directives map[string]bool
}

func (s stubClassifier) IsOpcode(name string) bool    { return s.opcodes[lower(name)] }
func (s stubClassifier) IsDirective(name string) bool { return s.directives[lower(name)] }

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

func classifier() stubClassifier {
	return stubClassifier{
		opcodes:    map[string]bool{"mov": true, "mvi": true, "nop": true, "jmp": true},
		directives: map[string]bool{"org": true, "db": true, "equ": true, "macro": true, "endm": true},
	}
}

func TestSplitLineLabelAndOpcode(t *testing.T) {
	l, err := line.SplitLine("f.asm", 1, "start: mov a,b ; copy", "", classifier())
	if err != nil {
		t.Fatal(err)
	}
	if l.Label != "start" {
		t.Errorf("label = %q", l.Label)
	}
	if l.Class != line.ClassOpcode || l.Mnemonic != "mov" {
		t.Errorf("class=%v mnemonic=%q", l.Class, l.Mnemonic)
	}
	if len(l.Args) != 2 || l.Args[0].Raw != "a" || l.Args[1].Raw != "b" {
		t.Errorf("args = %+v", l.Args)
	}
	if l.Comment != " copy" {
		t.Errorf("comment = %q", l.Comment)
	}
	if l.ScopeAnchor != "start" {
		t.Errorf("scope anchor = %q", l.ScopeAnchor)
	}
}

func TestSplitLineNoLabel(t *testing.T) {
	l, err := line.SplitLine("f.asm", 2, "  nop", "prevscope", classifier())
	if err != nil {
		t.Fatal(err)
	}
	if l.Label != "" {
		t.Errorf("expected no label, got %q", l.Label)
	}
	if l.ScopeAnchor != "prevscope" {
		t.Errorf("scope anchor should carry forward, got %q", l.ScopeAnchor)
	}
}

func TestSplitLineDottedLabelDoesNotChangeAnchor(t *testing.T) {
	l, err := line.SplitLine("f.asm", 3, ".loop: nop", "outer", classifier())
	if err != nil {
		t.Fatal(err)
	}
	if l.ScopeAnchor != "outer" {
		t.Errorf("dotted label must not replace scope anchor, got %q", l.ScopeAnchor)
	}
}

func TestSplitLineEqualsAliasesEqu(t *testing.T) {
	l, err := line.SplitLine("f.asm", 4, "foo = 1+2", "", classifier())
	if err != nil {
		t.Fatal(err)
	}
	if l.Class != line.ClassDirective || l.Mnemonic != "equ" {
		t.Errorf("class=%v mnemonic=%q", l.Class, l.Mnemonic)
	}
}

func TestSplitLineMacroCall(t *testing.T) {
	l, err := line.SplitLine("f.asm", 5, "  delay 10", "", classifier())
	if err != nil {
		t.Fatal(err)
	}
	if l.Class != line.ClassMacroCall || l.MacroName != "delay" {
		t.Errorf("class=%v macroName=%q", l.Class, l.MacroName)
	}
}

func TestSplitLineArgsRespectParensAndStrings(t *testing.T) {
	l, err := line.SplitLine("f.asm", 6, `  db "a,b", (1,2), 'c'`, "", classifier())
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Args) != 3 {
		t.Fatalf("got %d args: %+v", len(l.Args), l.Args)
	}
	if l.Args[0].Raw != `"a,b"` {
		t.Errorf("arg0 = %q", l.Args[0].Raw)
	}
	if l.Args[1].Raw != "(1,2)" {
		t.Errorf("arg1 = %q", l.Args[1].Raw)
	}
	if l.Args[2].Raw != "'c'" {
		t.Errorf("arg2 = %q", l.Args[2].Raw)
	}
}

func TestSplitLineUnterminatedStringIsError(t *testing.T) {
	if _, err := line.SplitLine("f.asm", 7, `  db "unterminated`, "", classifier()); err == nil {
		t.Error("expected error for unterminated string")
	}
}

func TestSplitLineUnmatchedParenIsError(t *testing.T) {
	if _, err := line.SplitLine("f.asm", 8, `  db (1,2`, "", classifier()); err == nil {
		t.Error("expected error for unmatched paren")
	}
}

func TestArgumentAsRegisterAndRegPair(t *testing.T) {
	a := &line.Argument{Raw: " b "}
	if r, ok := a.AsRegister(); !ok || r != line.RegB {
		t.Errorf("AsRegister = %v, %v", r, ok)
	}
	if p, ok := a.AsRegPair(); !ok || p != line.PairB {
		t.Errorf("AsRegPair = %v, %v", p, ok)
	}
}

func TestArgumentAsStringEscapes(t *testing.T) {
	a := &line.Argument{Raw: `"hi\n"`}
	s, ok, err := a.AsString()
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if string(s) != "hi\n" {
		t.Errorf("got %q", s)
	}
}

func TestArgumentAsStringFallsThroughWhenNotQuoted(t *testing.T) {
	a := &line.Argument{Raw: "42"}
	if _, ok, err := a.AsString(); ok || err != nil {
		t.Errorf("ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestCommentStripIgnoresSemicolonInString(t *testing.T) {
	l, err := line.SplitLine("f.asm", 9, `  db "a;b" ; real comment`, "", classifier())
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Args) != 1 || l.Args[0].Raw != `"a;b"` {
		t.Errorf("args = %+v", l.Args)
	}
	if l.Comment != " real comment" {
		t.Errorf("comment = %q", l.Comment)
	}
}
