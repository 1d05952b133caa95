package symtab_test

import (
	"testing"

	"github.com/hallowmantle/i8080asm/symtab"
)

func TestSetGet(t *testing.T) {
	vs := symtab.New[int]()
	vs.Set("foo", 42)
	got, ok := vs.Get("foo")
	if !ok || got != 42 {
		t.Fatalf("got %v, %v", got, ok)
	}
}

func TestDottedScoping(t *testing.T) {
	vs := symtab.New[int]()
	vs.SetBase("loop1")
	vs.Set(".start", 10)

	if _, ok := vs.Get(".start"); !ok {
		t.Fatal("expected .start to resolve under current base")
	}

	vs.SetBase("loop2")
	if _, ok := vs.Get(".start"); ok {
		t.Fatal(".start under a different base must not resolve to loop1's entry")
	}

	vs.Set(".start", 20)
	v1, _ := vs.Get("loop1.start")
	v2, _ := vs.Get("loop2.start")
	if v1 != 10 || v2 != 20 {
		t.Fatalf("expected distinct scoped entries, got %d %d", v1, v2)
	}
}

func TestDottedNameWithEmptyBaseStripsDot(t *testing.T) {
	vs := symtab.New[int]()
	vs.Set(".bare", 7)
	got, ok := vs.Get("bare")
	if !ok || got != 7 {
		t.Fatalf("expected dot stripped when base is empty, got %v %v", got, ok)
	}
}

func TestUnqualifiedNameIgnoresBase(t *testing.T) {
	vs := symtab.New[int]()
	vs.SetBase("loop1")
	vs.Set("top", 1)
	vs.SetBase("loop2")
	got, ok := vs.Get("top")
	if !ok || got != 1 {
		t.Fatal("a non-dotted reference must still resolve the unqualified top-level name")
	}
}

func TestEntriesMostRecentFirst(t *testing.T) {
	vs := symtab.New[int]()
	vs.Set("a", 1)
	vs.Set("b", 2)
	vs.Set("c", 3)

	entries := vs.Entries()
	want := []string{"c", "b", "a"}
	for i, e := range entries {
		if e.Name != want[i] {
			t.Fatalf("entry %d: got %s want %s", i, e.Name, want[i])
		}
	}
}

func TestDeleteKeepsOrderOfOthersStable(t *testing.T) {
	vs := symtab.New[int]()
	vs.Set("a", 1)
	vs.Set("b", 2)
	vs.Set("c", 3)
	vs.Delete("b")

	entries := vs.Entries()
	want := []string{"c", "a"}
	for i, e := range entries {
		if e.Name != want[i] {
			t.Fatalf("entry %d: got %s want %s", i, e.Name, want[i])
		}
	}
}

func TestDeleteHandle(t *testing.T) {
	vs := symtab.New[int]()
	h := vs.Set("a", 1)
	vs.Set("b", 2)
	vs.DeleteHandle(h)
	if vs.Contains("a") {
		t.Fatal("expected a removed via handle")
	}
	if !vs.Contains("b") {
		t.Fatal("b must remain")
	}
}

func TestRenameViewDoesNotMutateStore(t *testing.T) {
	vs := symtab.New[int]()
	vs.SetBase("outer")
	vs.Set(".x", 5)

	view := vs.RenameView("other")
	if view.Contains(".x") {
		t.Fatal("view with a different base must not see outer's .x")
	}
	if vs.Base() != "outer" {
		t.Fatal("RenameView must not mutate the underlying store's base")
	}
	got, ok := vs.Get(".x")
	if !ok || got != 5 {
		t.Fatal("store's own base must still resolve .x")
	}
}
