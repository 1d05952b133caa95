package asm

import (
	"os"
	"path/filepath"
	"testing"
)

func assemble(t *testing.T, src string) *Result {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.asm")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	res, err := AssembleFile(path, Options{})
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	return res
}

func assembleInDir(t *testing.T, dir, name, src string) *Result {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	res, err := AssembleFile(path, Options{})
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	return res
}

// Scenario 1: equ forward reference (spec §8.1).
func TestEquForwardReference(t *testing.T) {
	src := "foo  equ bar + 1\nbar  equ 41\n"
	res := assemble(t, src)

	foo, ok := res.Knowns.Get("foo")
	if !ok || foo != 42 {
		t.Errorf("expected foo == 42, got %d (ok=%v)", foo, ok)
	}
	bar, ok := res.Knowns.Get("bar")
	if !ok || bar != 41 {
		t.Errorf("expected bar == 41, got %d (ok=%v)", bar, ok)
	}
}

// Scenario 2: conditional excision (spec §8.2).
func TestConditionalExcision(t *testing.T) {
	src := "     if 0\nfoo  equ 1\n     endif\n     if 1\nbar  equ 2\n     endif\n"
	res := assemble(t, src)

	bar, ok := res.Knowns.Get("bar")
	if !ok || bar != 2 {
		t.Errorf("expected bar == 2, got %d (ok=%v)", bar, ok)
	}
	if res.Knowns.Contains("foo") {
		t.Error("expected foo to be undefined after excision")
	}
}

// Scenario 3: macro with hygienic label (spec §8.3).
func TestMacroHygienicLabel(t *testing.T) {
	src := `m       macro x
@loop:  mvi a, !x
        jmp @loop
        endm
        m 1
        m 2
`
	res := assemble(t, src)

	var labels []string
	for _, e := range res.Knowns.Entries() {
		if len(e.Name) >= 4 && e.Name[len(e.Name)-4:] == "loop" {
			labels = append(labels, e.Name)
		}
	}
	if len(labels) != 2 {
		t.Fatalf("expected 2 distinct hygienic @loop labels, got %d: %v", len(labels), labels)
	}
	if labels[0] == labels[1] {
		t.Errorf("expected distinct labels across expansions, got %q twice", labels[0])
	}
}

// Scenario 4: org repositioning (spec §8.4).
func TestOrgRepositioning(t *testing.T) {
	src := "        org 0x0100\n        nop\n        nop\n"
	res := assemble(t, src)

	if len(res.Lines) < 3 {
		t.Fatalf("expected at least 3 lines, got %d", len(res.Lines))
	}
	second := res.Lines[2]
	if second.Location != 0x0101 {
		t.Errorf("expected second nop at 0x0101, got %#04x", second.Location)
	}
}

// Scenario 5: pushorg/poporg (spec §8.5).
func TestPushorgPoporg(t *testing.T) {
	src := "        nop\n        pushorg 0x8000\n        db 1,2,3\n        poporg\n        nop\n"
	res := assemble(t, src)

	last := res.Lines[len(res.Lines)-1]
	if last.Mnemonic != "nop" {
		t.Fatalf("expected last line to be the trailing nop, got %q", last.Mnemonic)
	}
	if last.Location != 0x0004 {
		t.Errorf("expected trailing nop at 0x0004, got %#04x", last.Location)
	}
}

// Scenario 6: include splices relative to the included file's directory.
func TestIncludeRelativeToIncludedFile(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "sub")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("mkdir sub: %v", err)
	}

	if err := os.WriteFile(filepath.Join(subDir, "inner.asm"), []byte("inner equ 7\n"), 0644); err != nil {
		t.Fatalf("write inner.asm: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "sub.asm"), []byte("        include \"inner.asm\"\nouter equ inner + 1\n"), 0644); err != nil {
		t.Fatalf("write sub.asm: %v", err)
	}

	res := assembleInDir(t, dir, "main.asm", "        include \"sub/sub.asm\"\n")

	outer, ok := res.Knowns.Get("outer")
	if !ok || outer != 8 {
		t.Errorf("expected outer == 8, got %d (ok=%v)", outer, ok)
	}
	inner, ok := res.Knowns.Get("inner")
	if !ok || inner != 7 {
		t.Errorf("expected inner == 7, got %d (ok=%v)", inner, ok)
	}
}

func TestDuplicateLabelRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.asm")
	src := "loop: nop\nloop: nop\n"
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	_, err := AssembleFile(path, Options{})
	if err == nil {
		t.Fatal("expected an error for a duplicate label")
	}
}

func TestAssertFailureSetsExitSignal(t *testing.T) {
	src := "foo equ 1\n        assert foo == 2, \"foo must be 2\"\n"
	res := assemble(t, src)
	if !res.AssertFailed {
		t.Error("expected AssertFailed to be true for a failing assertion")
	}
}

func TestAssertSuccessPasses(t *testing.T) {
	src := "foo equ 2\n        assert foo == 2\n"
	res := assemble(t, src)
	if res.AssertFailed {
		t.Error("expected AssertFailed to be false for a passing assertion")
	}
}

func TestDBTruncationWarning(t *testing.T) {
	src := "        db 300\n"
	res := assemble(t, src)
	if len(res.Warnings) == 0 {
		t.Error("expected a truncation warning for db 300")
	}
}

func TestRim8085OnlyRejectedIn8080Mode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.asm")
	if err := os.WriteFile(path, []byte("        rim\n"), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	_, err := AssembleFile(path, Options{CPUMode: "8080"})
	if err == nil {
		t.Fatal("expected rim (8085-only) to be rejected in 8080 mode")
	}
}

func TestRimAllowedIn8085Mode(t *testing.T) {
	res := assemble(t, "        nop\n")
	_ = res
	dir := t.TempDir()
	path := filepath.Join(dir, "test.asm")
	if err := os.WriteFile(path, []byte("        rim\n"), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if _, err := AssembleFile(path, Options{CPUMode: "8085"}); err != nil {
		t.Fatalf("expected rim to assemble in 8085 mode, got error: %v", err)
	}
}
