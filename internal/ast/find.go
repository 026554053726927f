package ast

import "sort"

// ChildAt returns the child of id whose start is the last one <= offset.
// Children are sorted by start, so this is a binary search; NoNodeID when
// offset precedes every child.
func (t *Tree) ChildAt(id NodeID, offset uint32) NodeID {
	n := t.Node(id)
	if n == nil || len(n.Children) == 0 {
		return NoNodeID
	}
	kids := n.Children
	i := sort.Search(len(kids), func(i int) bool { return t.Node(kids[i]).Span.Start > offset })
	if i == 0 {
		return NoNodeID
	}
	return kids[i-1]
}

// FindContaining returns the child of id selected by ChildAt and descends
// while the result is a composite scope (function, report, main, globals)
// whose span actually contains offset.
func (t *Tree) FindContaining(id NodeID, offset uint32) NodeID {
	found := t.ChildAt(id, offset)
	for found.IsValid() {
		n := t.Node(found)
		if !n.Kind.IsCompositeScope() || !n.Span.Contains(offset) {
			return found
		}
		next := t.ChildAt(found, offset)
		if !next.IsValid() {
			return found
		}
		found = next
	}
	return found
}

// EnclosingFunction returns the Main/Function/Report node containing offset,
// or NoNodeID at module level.
func (t *Tree) EnclosingFunction(offset uint32) NodeID {
	id := t.ChildAt(t.Root, offset)
	if !id.IsValid() {
		return NoNodeID
	}
	n := t.Node(id)
	if n.Kind.IsFunctionLike() && n.Span.Contains(offset) {
		return id
	}
	return NoNodeID
}

// Path returns the chain of nodes from the root down to the innermost node
// whose span contains offset.
func (t *Tree) Path(offset uint32) []NodeID {
	if !t.Root.IsValid() {
		return nil
	}
	path := []NodeID{t.Root}
	cur := t.Root
	for {
		next := t.ChildAt(cur, offset)
		if !next.IsValid() || !t.Node(next).Span.Contains(offset) {
			return path
		}
		path = append(path, next)
		cur = next
	}
}

// Innermost returns the last element of Path.
func (t *Tree) Innermost(offset uint32) NodeID {
	p := t.Path(offset)
	if len(p) == 0 {
		return NoNodeID
	}
	return p[len(p)-1]
}
