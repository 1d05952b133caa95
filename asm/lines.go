package asm

import "github.com/hallowmantle/i8080asm/line"

// lineList is the index-addressable line container Design Notes §9 asks
// for in place of the original's intrusive linked list: a plain slice plus
// a small edit API (splice, remove, replace) so the driver can track
// "current" as a cursor index instead of a pointer into a list node.
type lineList struct {
	lines []*line.Line
}

func newLineList(ls []*line.Line) *lineList {
	return &lineList{lines: ls}
}

func (ll *lineList) Len() int { return len(ll.lines) }

func (ll *lineList) At(i int) *line.Line { return ll.lines[i] }

// SpliceAt inserts newLines before position pos, without removing anything.
func (ll *lineList) SpliceAt(pos int, newLines []*line.Line) {
	ll.lines = append(ll.lines[:pos:pos], append(append([]*line.Line{}, newLines...), ll.lines[pos:]...)...)
}

// Remove deletes count lines starting at pos.
func (ll *lineList) Remove(pos, count int) {
	ll.lines = append(ll.lines[:pos], ll.lines[pos+count:]...)
}

// Replace removes count lines at pos and splices newLines in their place.
func (ll *lineList) Replace(pos, count int, newLines []*line.Line) {
	ll.Remove(pos, count)
	ll.SpliceAt(pos, newLines)
}
