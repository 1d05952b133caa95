package viewer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hallowmantle/i8080asm/asm"
)

func assemble(t *testing.T, src string) *asm.Result {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.asm")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	res, err := asm.AssembleFile(path, asm.Options{})
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	return res
}

func TestRenderPopulatesPanels(t *testing.T) {
	res := assemble(t, "foo equ 42\n        nop\n")
	v := New(res)
	v.Render()

	if text := v.SourceView.GetText(true); !strings.Contains(text, "foo") {
		t.Errorf("expected the source panel to show the assembled listing, got:\n%s", text)
	}
	if text := v.SymbolView.GetText(true); !strings.Contains(text, "foo") || !strings.Contains(text, "002A") {
		t.Errorf("expected the symbol panel to show foo = 002A, got:\n%s", text)
	}
	if text := v.StatusBar.GetText(true); !strings.Contains(text, "warning") {
		t.Errorf("expected the status bar to report a warning count, got:\n%s", text)
	}
}

func TestCycleFocusTogglesBetweenPanels(t *testing.T) {
	res := assemble(t, "        nop\n")
	v := New(res)
	v.App.SetFocus(v.SourceView)

	v.cycleFocus()
	if v.App.GetFocus() != v.SymbolView {
		t.Error("expected focus to move to the symbol panel")
	}

	v.cycleFocus()
	if v.App.GetFocus() != v.SourceView {
		t.Error("expected focus to move back to the source panel")
	}
}

func TestSplitListingSeparatesSections(t *testing.T) {
	full := "  1  0000  00          nop\n\nSymbol table:\nfoo                      = 002A\n"
	source, symbols := splitListing(full)

	if !strings.Contains(source, "nop") {
		t.Errorf("expected the source section to contain the listing text, got:\n%s", source)
	}
	if !strings.Contains(symbols, "foo") {
		t.Errorf("expected the symbol section to contain the symbol table, got:\n%s", symbols)
	}
}
