package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"fglsense/internal/ast"
	"fglsense/internal/source"
)

// CheckSpanInvariants runs the structural span checks on a parsed tree:
// 1) the root span lies within the file content
// 2) every node span is well-formed and contained in its parent's span
// 3) children are sorted by start offset with unique starts, and point back
// at their parent
func CheckSpanInvariants(tree *ast.Tree, sf *source.File) error {
	if tree == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	root := tree.Node(tree.Root)
	if root == nil {
		return fmt.Errorf("root node not found")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if root.Span.File != sf.ID {
		return fmt.Errorf("root span points to different file id: got=%d want=%d", root.Span.File, sf.ID)
	}
	if root.Span.End > lenContent {
		return fmt.Errorf("root span end beyond content: %d > %d", root.Span.End, lenContent)
	}

	var firstErr error
	tree.Walk(tree.Root, func(id ast.NodeID, n *ast.Node) bool {
		if firstErr != nil {
			return false
		}
		if n.Span.End < n.Span.Start {
			firstErr = fmt.Errorf("node %d (%s) has inverted span %v", id, n.Kind, n.Span)
			return false
		}
		if n.Span.File != sf.ID {
			firstErr = fmt.Errorf("node %d (%s) span file mismatch: got=%d want=%d", id, n.Kind, n.Span.File, sf.ID)
			return false
		}
		var prevStart uint32
		for i, cid := range n.Children {
			c := tree.Node(cid)
			if c == nil {
				firstErr = fmt.Errorf("nil child %d of node %d", cid, id)
				return false
			}
			if c.Parent != id {
				firstErr = fmt.Errorf("child %d of node %d has parent %d", cid, id, c.Parent)
				return false
			}
			// child inside parent
			if c.Span.Start < n.Span.Start || c.Span.End > n.Span.End {
				firstErr = fmt.Errorf("%s span %v is outside %s span %v", c.Kind, c.Span, n.Kind, n.Span)
				return false
			}
			if i > 0 && c.Span.Start <= prevStart {
				firstErr = fmt.Errorf("children of %s are out of order at %d", n.Kind, c.Span.Start)
				return false
			}
			prevStart = c.Span.Start
		}
		return true
	})
	return firstErr
}
