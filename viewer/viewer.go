// Package viewer implements a read-only terminal browser over an already
// assembled program: the source listing in one panel, the symbol table in
// another. It never re-enters the assembler and never executes anything —
// spec.md's Non-goals exclude CPU execution and single-stepping of any
// kind, and this package only ever displays what asm.AssembleFile already
// produced.
package viewer

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/hallowmantle/i8080asm/asm"
	"github.com/hallowmantle/i8080asm/listing"
)

// Viewer is the interactive listing/symbol-table browser.
type Viewer struct {
	result *asm.Result

	App  *tview.Application
	Root *tview.Flex

	SourceView *tview.TextView
	SymbolView *tview.TextView
	StatusBar  *tview.TextView
}

// New builds a Viewer over an assembled program's lines and symbol table.
func New(result *asm.Result) *Viewer {
	v := &Viewer{
		result: result,
		App:    tview.NewApplication(),
	}
	v.initializeViews()
	v.buildLayout()
	v.setupKeyBindings()
	return v
}

func (v *Viewer) initializeViews() {
	v.SourceView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	v.SourceView.SetBorder(true).SetTitle(" Listing ")

	v.SymbolView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	v.SymbolView.SetBorder(true).SetTitle(" Symbols ")

	v.StatusBar = tview.NewTextView().
		SetDynamicColors(true)
}

func (v *Viewer) buildLayout() {
	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(v.SourceView, 0, 3, true).
		AddItem(v.SymbolView, 0, 1, false)

	v.Root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(v.StatusBar, 1, 0, false)
}

func (v *Viewer) setupKeyBindings() {
	v.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEsc:
			v.App.Stop()
			return nil
		case tcell.KeyTab:
			v.cycleFocus()
			return nil
		}
		switch event.Rune() {
		case 'q':
			v.App.Stop()
			return nil
		}
		return event
	})
}

func (v *Viewer) cycleFocus() {
	if v.App.GetFocus() == v.SourceView {
		v.App.SetFocus(v.SymbolView)
		return
	}
	v.App.SetFocus(v.SourceView)
}

// Render populates the panels from the assembled result.
func (v *Viewer) Render() {
	full := listing.Format(v.result.Lines, v.result.Knowns)
	sourcePart, symbolPart := splitListing(full)

	fmt.Fprint(v.SourceView, sourcePart)
	fmt.Fprint(v.SymbolView, symbolPart)

	status := fmt.Sprintf(" %d line(s), %d warning(s) — tab: switch panel, q/esc: quit",
		len(v.result.Lines), len(v.result.Warnings))
	fmt.Fprint(v.StatusBar, status)
}

// splitListing separates listing.Format's combined output back into its
// per-line section and its trailing symbol-table section, so each can be
// placed in its own panel.
func splitListing(full string) (source, symbols string) {
	marker := "Symbol table:\n"
	idx := strings.Index(full, marker)
	if idx < 0 {
		return full, ""
	}
	return full[:idx], full[idx+len(marker):]
}

// Run shows the viewer and blocks until the user quits.
func (v *Viewer) Run() error {
	v.Render()
	return v.App.SetRoot(v.Root, true).SetFocus(v.SourceView).Run()
}
