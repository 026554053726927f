package ast

// Walk visits id and its descendants in document order. Returning false
// from fn skips the node's children.
func (t *Tree) Walk(id NodeID, fn func(NodeID, *Node) bool) {
	n := t.Node(id)
	if n == nil {
		return
	}
	if !fn(id, n) {
		return
	}
	for _, c := range n.Children {
		t.Walk(c, fn)
	}
}

// WalkExpr visits an expression tree in pre-order.
func (t *Tree) WalkExpr(id ExprID, fn func(ExprID, *Expr) bool) {
	e := t.Expr(id)
	if e == nil {
		return
	}
	if !fn(id, e) {
		return
	}
	if e.Target.IsValid() {
		t.WalkExpr(e.Target, fn)
	}
	for _, a := range e.Args {
		t.WalkExpr(a, fn)
	}
}

// NameExprs calls fn for every outermost name path (identifier chains with
// members, subscripts and calls) used by the statements under id.
// Subscript and call arguments are visited as separate name paths.
func (t *Tree) NameExprs(id NodeID, fn func(ExprID)) {
	var visit func(ExprID)
	visit = func(eid ExprID) {
		e := t.Expr(eid)
		if e == nil {
			return
		}
		if e.Kind.IsName() {
			fn(eid)
			// аргументы вызовов и индексы - отдельные пути
			for cur := eid; cur.IsValid(); {
				ce := t.Expr(cur)
				if ce == nil || !ce.Kind.IsName() {
					break
				}
				for _, a := range ce.Args {
					visit(a)
				}
				cur = ce.Target
			}
			return
		}
		if e.Target.IsValid() {
			visit(e.Target)
		}
		for _, a := range e.Args {
			visit(a)
		}
	}
	t.Walk(id, func(_ NodeID, n *Node) bool {
		for _, e := range n.Exprs {
			visit(e)
		}
		return true
	})
}

// Ancestor returns the nearest ancestor of id (id excluded) for which match
// returns true.
func (t *Tree) Ancestor(id NodeID, match func(*Node) bool) NodeID {
	n := t.Node(id)
	for n != nil && n.Parent.IsValid() {
		pid := n.Parent
		n = t.Node(pid)
		if match(n) {
			return pid
		}
	}
	return NoNodeID
}
