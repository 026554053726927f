package analysis

import (
	"context"
	"fmt"

	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/resolve"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/trace"
	"fglsense/internal/types"
)

// CheckNames resolves every name path of the document. Unresolved names
// are reported at once; deferred ones go to q for the project-wide second
// pass, or are reported as information when q is nil. Cursor and prepared
// statement references, declared types, RETURN counts and GLOBALS files
// are checked as well. The error is non-nil only when ctx is done.
func (d *Document) CheckNames(ctx context.Context, q *resolve.DeferredQueue) error {
	ctx, span := trace.Start(ctx, trace.ScopeDocument, "check")
	span.Set("path", d.File.Path)
	defer span.End("")

	rep := diag.BagReporter{Bag: d.Diagnostics}
	callees := make(map[ast.ExprID]bool)
	d.Tree.Walk(d.Tree.Root, func(_ ast.NodeID, n *ast.Node) bool {
		if n.Kind == ast.NodeCall && len(n.Exprs) > 0 {
			callees[n.Exprs[0]] = true
		}
		return true
	})

	var (
		err      error
		deferred int
	)
	d.Tree.NameExprs(d.Tree.Root, func(id ast.ExprID) {
		if err != nil {
			return
		}
		e := d.Tree.Expr(id)
		req := resolve.Request{
			Text:   d.Tree.ExprText(d.File, id),
			Span:   e.Span,
			Offset: e.Span.Start,
			Call:   callees[id],
		}
		var res resolve.Result
		res, err = d.resolver.Resolve(ctx, req)
		if err != nil {
			return
		}
		switch res.Outcome {
		case resolve.Unresolved:
			resolve.ReportSuggested(rep, res, d.resolver.Suggest(ctx, res, req.Offset))
		case resolve.Deferred:
			deferred++
			if q == nil {
				resolve.Report(rep, res)
				return
			}
			q.Add(d.resolver, req, res)
		}
	})
	if err != nil {
		return err
	}

	d.checkStatementRefs(rep)
	d.checkTypes(ctx, rep)
	d.checkReturns(rep)
	d.checkIncludes(rep)

	d.ac.log.WithField("path", d.File.Path).
		WithField("deferred", deferred).
		Debug("checked names")
	return ctx.Err()
}

// checkStatementRefs verifies the cursor and statement names of OPEN,
// FETCH, CLOSE, FREE and EXECUTE.
func (d *Document) checkStatementRefs(rep diag.Reporter) {
	mod := d.Module
	d.Tree.Walk(d.Tree.Root, func(_ ast.NodeID, n *ast.Node) bool {
		if n.Name == "" {
			return true
		}
		switch n.Kind {
		case ast.NodeOpenCursor, ast.NodeFetch, ast.NodeCloseCursor:
			if _, ok := mod.Cursors.Lookup(n.Name); !ok {
				diag.ReportError(rep, diag.SemaUnknownCursor, n.NameSpan,
					fmt.Sprintf("cursor %q is not declared", n.Name)).Emit()
			}
		case ast.NodeFree:
			_, isCursor := mod.Cursors.Lookup(n.Name)
			_, isPrepared := mod.Prepared.Lookup(n.Name)
			if !isCursor && !isPrepared {
				diag.ReportError(rep, diag.SemaUnknownCursor, n.NameSpan,
					fmt.Sprintf("%q is neither a cursor nor a prepared statement", n.Name)).Emit()
			}
		case ast.NodeExecute:
			if _, ok := mod.Prepared.Lookup(n.Name); !ok {
				diag.ReportError(rep, diag.SemaUnknownPrepared, n.NameSpan,
					fmt.Sprintf("statement %q is not prepared", n.Name)).Emit()
			}
		}
		return true
	})
}

// checkTypes reports declarations whose named type or LIKE reference
// cannot be bound.
func (d *Document) checkTypes(ctx context.Context, rep diag.Reporter) {
	mod := d.Module
	check := func(sym *symbols.Symbol, env symbols.MemberEnv) {
		if sym.Path != "" && sym.Path != d.File.Path {
			return
		}
		bad := d.unboundType(sym.Type, env, 0)
		if bad == nil {
			return
		}
		sp := d.typeSpan(sym)
		if bad.Kind == types.KindLike {
			diag.ReportError(rep, diag.SemaUnknownTable, sp,
				fmt.Sprintf("table %q is not known", bad.LikeTable)).Emit()
			return
		}
		diag.ReportError(rep, diag.SemaUnresolvedType, sp,
			fmt.Sprintf("type %q is not defined", bad.Name)).Emit()
	}

	env := d.resolver.MemberEnv(ctx, 0)
	for _, t := range []*symbols.Table{mod.Variables, mod.Types, mod.GlobalVariables, mod.GlobalTypes} {
		for _, sym := range t.All() {
			check(sym, env)
		}
	}
	for _, fr := range mod.FunctionScopes() {
		fenv := d.resolver.MemberEnv(ctx, fr.Span.Start)
		for _, t := range []*symbols.Table{fr.Locals, fr.Types} {
			for _, sym := range t.All() {
				check(sym, fenv)
			}
		}
	}
}

// unboundType returns the first named or LIKE type inside t that env
// cannot bind. LIKE is only checked against a known table source.
func (d *Document) unboundType(t *types.Type, env symbols.MemberEnv, depth int) *types.Type {
	if t == nil || depth > 8 {
		return nil
	}
	switch t.Kind {
	case types.KindNamed:
		if env.ResolveType(t) == nil {
			return t
		}
		return nil
	case types.KindLike:
		if d.ac.schema == nil {
			if _, ok := d.Module.Tables.Lookup(t.LikeTable); !ok {
				return nil
			}
		}
		if env.ResolveType(t) == nil {
			return t
		}
		return nil
	}
	if bad := d.unboundType(t.Elem, env, depth+1); bad != nil {
		return bad
	}
	for i := range t.Fields {
		if bad := d.unboundType(t.Fields[i].Type, env, depth+1); bad != nil {
			return bad
		}
	}
	return nil
}

func (d *Document) typeSpan(sym *symbols.Symbol) source.Span {
	if n := d.Tree.Node(sym.Node); n != nil && n.Type.IsValid() {
		if tn := d.Tree.Node(n.Type); tn != nil {
			return tn.Span
		}
	}
	return sym.Span
}

// checkReturns compares the value counts of RETURN statements with the
// RETURNS clause, or with each other when there is none. A bare RETURN is
// always allowed without a RETURNS clause.
func (d *Document) checkReturns(rep diag.Reporter) {
	for _, fr := range d.Module.FunctionScopes() {
		if len(fr.Returns) == 0 || fr.Symbol == nil {
			continue
		}
		if sig := fr.Symbol.Signature; sig != nil && len(sig.Returns) > 0 {
			want := len(sig.Returns)
			for _, rs := range fr.Returns {
				if rs.Count != want {
					diag.ReportWarning(rep, diag.SemaReturnCount, rs.Span,
						fmt.Sprintf("%s returns %d value(s), declared %d", fr.Symbol.Name, rs.Count, want)).Emit()
				}
			}
			continue
		}
		var first *symbols.ReturnSite
		for i := range fr.Returns {
			rs := &fr.Returns[i]
			if rs.Count == 0 {
				continue
			}
			if first == nil {
				first = rs
				continue
			}
			if rs.Count != first.Count {
				diag.ReportWarning(rep, diag.SemaReturnCount, rs.Span,
					fmt.Sprintf("%s returns %d value(s) here", fr.Symbol.Name, rs.Count)).
					WithNote(first.Span, fmt.Sprintf("and %d value(s) here", first.Count)).
					Emit()
			}
		}
	}
}

// checkIncludes reports GLOBALS files the project does not know. Without
// a module provider nothing can be checked.
func (d *Document) checkIncludes(rep diag.Reporter) {
	if d.ac.modules == nil {
		return
	}
	for _, inc := range d.Module.GlobalsFiles {
		if _, ok := d.ac.modules.Include(inc.Path); !ok {
			diag.ReportWarning(rep, diag.SemaUnresolvedInclude, inc.Span,
				fmt.Sprintf("GLOBALS file %q not found", inc.Path)).Emit()
		}
	}
}
