package ast

import (
	"testing"

	"fglsense/internal/source"
)

func sp(start, end uint32) source.Span { return source.Span{File: 1, Start: start, End: end} }

func TestAddChildKeepsOrderAndFirstWins(t *testing.T) {
	tr := NewTree(1, Hints{})
	root := tr.NewNode(NodeModule, sp(0, 100))
	tr.Root = root
	a := tr.NewNode(NodeLet, sp(10, 20))
	b := tr.NewNode(NodeLet, sp(30, 40))
	c := tr.NewNode(NodeLet, sp(20, 25))
	dup := tr.NewNode(NodeCall, sp(30, 35))

	for _, id := range []NodeID{a, b, c} {
		if !tr.AddChild(root, id) {
			t.Fatalf("AddChild(%d) failed", id)
		}
	}
	if tr.AddChild(root, dup) {
		t.Fatalf("duplicate start must be rejected")
	}
	kids := tr.Node(root).Children
	want := []NodeID{a, c, b}
	if len(kids) != len(want) {
		t.Fatalf("children = %v, want %v", kids, want)
	}
	for i := range want {
		if kids[i] != want[i] {
			t.Fatalf("children = %v, want %v", kids, want)
		}
	}
	if tr.Node(dup).Parent.IsValid() {
		t.Fatalf("rejected child must stay detached")
	}
}

func TestChildAtPredecessor(t *testing.T) {
	tr := NewTree(1, Hints{})
	root := tr.NewNode(NodeModule, sp(0, 100))
	tr.Root = root
	a := tr.NewNode(NodeFunction, sp(10, 40))
	b := tr.NewNode(NodeFunction, sp(50, 90))
	tr.AddChild(root, a)
	tr.AddChild(root, b)
	inner := tr.NewNode(NodeLet, sp(20, 30))
	tr.AddChild(a, inner)

	cases := []struct {
		off  uint32
		want NodeID
	}{
		{5, NoNodeID},
		{10, a},
		{45, a}, // промежуток между детьми: предшественник
		{50, b},
		{99, b},
	}
	for _, tc := range cases {
		if got := tr.ChildAt(root, tc.off); got != tc.want {
			t.Errorf("ChildAt(%d) = %d, want %d", tc.off, got, tc.want)
		}
	}
	if got := tr.FindContaining(root, 25); got != inner {
		t.Fatalf("FindContaining descends into functions: got %d want %d", got, inner)
	}
	if got := tr.EnclosingFunction(45); got.IsValid() {
		t.Fatalf("offset between functions has no enclosing function, got %d", got)
	}
	if got := tr.EnclosingFunction(60); got != b {
		t.Fatalf("EnclosingFunction(60) = %d, want %d", got, b)
	}
}
