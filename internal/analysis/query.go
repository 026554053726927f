package analysis

import (
	"context"
	"strings"

	"fglsense/internal/ast"
	"fglsense/internal/resolve"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/token"
)

// Location is where a symbol is declared.
type Location struct {
	Path string
	Span source.Span
}

// Hover describes the symbol under the cursor.
type Hover struct {
	Symbol *symbols.Symbol
	// Range is the piece the cursor is on.
	Range source.Span
	Text  string
}

// RequestAt builds the resolve request for the name under offset: the
// smallest name path containing it, truncated after the piece the offset
// falls in. Declaration names (functions, variables, cursors) count as
// name paths too.
func (d *Document) RequestAt(offset uint32) (resolve.Request, bool) {
	node := d.Tree.Innermost(offset)
	if !node.IsValid() {
		return resolve.Request{}, false
	}

	best := ast.NoExprID
	var bestLen uint32
	d.Tree.NameExprs(node, func(id ast.ExprID) {
		e := d.Tree.Expr(id)
		if !e.Span.Contains(offset) {
			return
		}
		if !best.IsValid() || e.Span.Len() < bestLen {
			best, bestLen = id, e.Span.Len()
		}
	})
	if best.IsValid() {
		return d.exprRequest(node, best, offset)
	}

	n := d.Tree.Node(node)
	if n.Name != "" && n.NameSpan.Contains(offset) {
		return resolve.Request{
			Text:   n.Name,
			Span:   n.NameSpan,
			Offset: n.NameSpan.Start,
			Call:   n.Kind.IsFunctionLike(),
		}, true
	}
	return resolve.Request{}, false
}

func (d *Document) exprRequest(node ast.NodeID, id ast.ExprID, offset uint32) (resolve.Request, bool) {
	e := d.Tree.Expr(id)
	text := d.Tree.ExprText(d.File, id)
	pieces := resolve.Split(text, e.Span)
	if len(pieces) == 0 {
		return resolve.Request{}, false
	}
	k := -1
	for i, pc := range pieces {
		if pc.Span.Start > offset {
			break
		}
		k = i
	}
	if k < 0 {
		k = 0
	}
	pc := pieces[k]
	cut := min(int(pc.Span.End-e.Span.Start), len(text))
	return resolve.Request{
		Text:   text[:cut],
		Span:   d.span(e.Span.Start, pc.Span.End),
		Offset: e.Span.Start,
		Call:   pc.Call || (k == len(pieces)-1 && d.isCallee(node, id)),
	}, true
}

// isCallee reports whether id names the routine of a CALL or of a report
// control statement (START REPORT r, OUTPUT TO REPORT r(...)).
func (d *Document) isCallee(node ast.NodeID, id ast.ExprID) bool {
	n := d.Tree.Node(node)
	return n != nil && n.Kind == ast.NodeCall && len(n.Exprs) > 0 && n.Exprs[0] == id
}

// Resolve binds the name under offset. ok is false when offset is not on
// a name.
func (d *Document) Resolve(ctx context.Context, offset uint32) (res resolve.Result, ok bool, err error) {
	req, ok := d.RequestAt(offset)
	if !ok {
		return resolve.Result{}, false, nil
	}
	res, err = d.resolver.Resolve(ctx, req)
	if err != nil {
		return resolve.Result{}, false, err
	}
	return res, true, nil
}

// Definition returns where the name under offset is declared. Built-ins
// and imported classes have no location.
func (d *Document) Definition(ctx context.Context, offset uint32) (Location, bool, error) {
	res, ok, err := d.Resolve(ctx, offset)
	if err != nil || !ok || res.Outcome != resolve.Bound {
		return Location{}, false, err
	}
	sym := res.Symbol
	if sym.IsBuiltin() || sym.Flags&symbols.SymbolFlagImported != 0 {
		return Location{}, false, nil
	}
	loc := Location{Path: sym.Path, Span: sym.Span}
	if loc.Path == "" {
		loc.Path = d.File.Path
	}
	return loc, true, nil
}

// Hover describes the symbol under offset.
func (d *Document) Hover(ctx context.Context, offset uint32) (Hover, bool, error) {
	req, ok := d.RequestAt(offset)
	if !ok {
		return Hover{}, false, nil
	}
	res, err := d.resolver.Resolve(ctx, req)
	if err != nil || res.Outcome != resolve.Bound {
		return Hover{}, false, err
	}
	sym := res.Symbol
	var sb strings.Builder
	sb.WriteString(sym.Detail())
	if sym.Module != "" && !sym.IsBuiltin() {
		sb.WriteString("\nmodule ")
		sb.WriteString(sym.Module)
	}
	if sym.Doc != "" {
		sb.WriteString("\n\n")
		sb.WriteString(sym.Doc)
	}
	pieces := resolve.Split(req.Text, req.Span)
	return Hover{Symbol: sym, Range: pieces[len(pieces)-1].Span, Text: sb.String()}, true, nil
}

// identAt returns the word (identifier or keyword) that ends at or
// contains offset.
func (d *Document) identAt(offset uint32) (token.Token, bool) {
	i := d.tokenIndex(offset)
	if i >= len(d.Tokens) {
		return token.Token{}, false
	}
	tok := d.Tokens[i]
	if tok.Span.Start >= offset || !(tok.IsIdent() || tok.Kind.IsKeyword()) {
		return token.Token{}, false
	}
	return tok, true
}
