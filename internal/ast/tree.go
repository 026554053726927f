package ast

import (
	"sort"

	"fglsense/internal/source"
)

type Hints struct{ Nodes, Exprs uint }

// Tree owns every node and expression of one parsed document. It is built
// by a single parse pass and read-only afterwards.
type Tree struct {
	File source.FileID
	Root NodeID

	Nodes    *Arena[Node]
	Exprs    *Arena[Expr]
	Funcs    *Arena[FuncDecl]
	TypeRefs *Arena[TypeRef]
	Imports  *Arena[ImportDecl]
	Cursors  *Arena[CursorDecl]
}

func NewTree(file source.FileID, hints Hints) *Tree {
	if hints.Nodes == 0 {
		hints.Nodes = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	return &Tree{
		File:     file,
		Nodes:    NewArena[Node](hints.Nodes),
		Exprs:    NewArena[Expr](hints.Exprs),
		Funcs:    NewArena[FuncDecl](1 << 4),
		TypeRefs: NewArena[TypeRef](1 << 6),
		Imports:  NewArena[ImportDecl](1 << 3),
		Cursors:  NewArena[CursorDecl](1 << 3),
	}
}

func (t *Tree) NewNode(kind NodeKind, sp source.Span) NodeID {
	return NodeID(t.Nodes.Allocate(Node{Kind: kind, Span: sp}))
}

func (t *Tree) Node(id NodeID) *Node {
	return t.Nodes.Get(uint32(id))
}

func (t *Tree) NewExpr(e Expr) ExprID {
	return ExprID(t.Exprs.Allocate(e))
}

func (t *Tree) Expr(id ExprID) *Expr {
	return t.Exprs.Get(uint32(id))
}

func (t *Tree) NewFunc(fd FuncDecl) PayloadID {
	return PayloadID(t.Funcs.Allocate(fd))
}

// Func returns the FuncDecl of a Main/Function/Report node.
func (t *Tree) Func(id NodeID) *FuncDecl {
	n := t.Node(id)
	if n == nil || !n.Kind.IsFunctionLike() {
		return nil
	}
	return t.Funcs.Get(uint32(n.Payload))
}

func (t *Tree) NewTypeRef(tr TypeRef) PayloadID {
	return PayloadID(t.TypeRefs.Allocate(tr))
}

func (t *Tree) TypeRef(id NodeID) *TypeRef {
	n := t.Node(id)
	if n == nil || n.Kind != NodeTypeRef {
		return nil
	}
	return t.TypeRefs.Get(uint32(n.Payload))
}

func (t *Tree) NewImport(d ImportDecl) PayloadID {
	return PayloadID(t.Imports.Allocate(d))
}

func (t *Tree) Import(id NodeID) *ImportDecl {
	n := t.Node(id)
	if n == nil || n.Kind != NodeImport {
		return nil
	}
	return t.Imports.Get(uint32(n.Payload))
}

func (t *Tree) NewCursor(d CursorDecl) PayloadID {
	return PayloadID(t.Cursors.Allocate(d))
}

func (t *Tree) Cursor(id NodeID) *CursorDecl {
	n := t.Node(id)
	if n == nil || (n.Kind != NodeDeclareCursor && n.Kind != NodePrepare) {
		return nil
	}
	return t.Cursors.Get(uint32(n.Payload))
}

// AddChild attaches child to parent keeping children ordered by start
// offset. When a sibling with the same start already exists the first one
// wins: child is left detached and false is returned.
func (t *Tree) AddChild(parent, child NodeID) bool {
	p := t.Node(parent)
	c := t.Node(child)
	if p == nil || c == nil {
		return false
	}
	start := c.Span.Start
	kids := p.Children
	n := len(kids)
	// обычный случай: дети приходят в порядке документа
	if n == 0 || t.Node(kids[n-1]).Span.Start < start {
		p.Children = append(kids, child)
		c.Parent = parent
		return true
	}
	i := sort.Search(n, func(i int) bool { return t.Node(kids[i]).Span.Start >= start })
	if i < n && t.Node(kids[i]).Span.Start == start {
		return false
	}
	kids = append(kids, NoNodeID)
	copy(kids[i+1:], kids[i:])
	kids[i] = child
	p.Children = kids
	c.Parent = parent
	return true
}

// Finish closes a node: its span is extended to end and the completion flag
// is set once.
func (t *Tree) Finish(id NodeID, end uint32, complete bool) {
	n := t.Node(id)
	if n == nil {
		return
	}
	if end > n.Span.End {
		n.Span.End = end
	}
	n.Complete = complete
}

// ExprText returns the source text covered by an expression.
func (t *Tree) ExprText(f *source.File, id ExprID) string {
	e := t.Expr(id)
	if e == nil || f == nil {
		return ""
	}
	return f.Slice(e.Span)
}
