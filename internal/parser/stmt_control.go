package parser

import (
	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/token"
)

// IF cond THEN block [ELSE block] END IF
func (p *Parser) parseIf(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	id := p.open(ast.NodeIf, parent)
	opener := p.advance()
	cond, ok := p.parseExpr()
	p.addExprs(id, cond)
	if _, tok := p.expect(token.KwThen, diag.SynExpectKeyword, "expected THEN after IF condition"); !tok && !ok {
		p.close(id, false)
		return Facts{}, false
	}
	p.decorated(id)
	facts := p.parseBlock(id, ctx)
	if p.at(token.KwElse) {
		els := p.advance()
		p.addDecorator(id, els.Span)
		p.tree.Node(id).Flags |= ast.FlagElse
		facts.Merge(p.parseBlock(id, ctx))
	}
	complete := p.parseEnd(token.KwIf, opener) && ok
	p.close(id, complete)
	return facts, true
}

// CASE [expr] {WHEN e {, e} block} [OTHERWISE block] END CASE
func (p *Parser) parseCase(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	id := p.open(ast.NodeCase, parent)
	opener := p.advance()
	ok := true
	if !p.at(token.KwWhen) {
		var e ast.ExprID
		e, ok = p.parseExpr()
		p.addExprs(id, e)
	}
	p.decorated(id)
	inner := ctx.withExit(token.KwCase)
	var facts Facts
	for p.at(token.KwWhen) {
		w := p.open(ast.NodeWhen, id)
		p.advance()
		vals, wok := p.parseExprList()
		p.addExprs(w, vals...)
		p.decorated(w)
		facts.Merge(p.parseBlock(w, inner))
		p.close(w, wok)
	}
	if p.at(token.KwOtherwise) {
		o := p.open(ast.NodeOtherwise, id)
		p.advance()
		p.decorated(o)
		facts.Merge(p.parseBlock(o, inner))
		p.close(o, true)
	}
	complete := p.parseEnd(token.KwCase, opener) && ok
	p.close(id, complete)
	return facts, true
}

// FOR v = from TO to [STEP s] block END FOR
func (p *Parser) parseFor(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	id := p.open(ast.NodeFor, parent)
	opener := p.advance()
	ok := p.atNameStart()
	if ok {
		v, vok := p.parseNamePath()
		p.addExprs(id, v)
		ok = vok
	} else {
		p.err(diag.SynExpectIdentifier, "expected loop variable after FOR")
	}
	if ok {
		_, ok = p.expect(token.Eq, diag.SynUnexpectedToken, "expected '=' in FOR")
	}
	if ok {
		from, fok := p.parseExpr()
		p.addExprs(id, from)
		ok = fok
	}
	if ok {
		_, ok = p.expect(token.KwTo, diag.SynExpectKeyword, "expected TO in FOR")
	}
	if ok {
		to, tok := p.parseExpr()
		p.addExprs(id, to)
		ok = tok
	}
	if ok && p.eat(token.KwStep) {
		step, sok := p.parseExpr()
		p.addExprs(id, step)
		ok = sok
	}
	if !ok {
		p.skipToBoundary()
	}
	p.decorated(id)
	facts := p.parseBlock(id, ctx.withLoop(token.KwFor))
	complete := p.parseEnd(token.KwFor, opener) && ok
	p.close(id, complete)
	return facts, true
}

// FOREACH cursor [USING list] [INTO list] [WITH REOPTIMIZATION] block END FOREACH
func (p *Parser) parseForeach(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	id := p.open(ast.NodeForeach, parent)
	opener := p.advance()
	cur, ok := p.expectIdent("cursor name")
	if ok {
		p.setName(id, cur)
		p.addExprs(id, p.newExpr(ast.Expr{Kind: ast.ExprIdent, Text: cur.Text, Span: cur.Span}))
	}
	if ok && p.eat(token.KwUsing) {
		var args []ast.ExprID
		args, ok = p.parseNameList()
		p.addExprs(id, args...)
	}
	if ok && p.eat(token.KwInto) {
		var targets []ast.ExprID
		targets, ok = p.parseNameList()
		p.addExprs(id, targets...)
	}
	if ok && p.eat(token.KwWith) {
		p.eatWord("reoptimization")
	}
	if !ok {
		p.skipToBoundary()
	}
	p.decorated(id)
	facts := p.parseBlock(id, ctx.withLoop(token.KwForeach))
	complete := p.parseEnd(token.KwForeach, opener) && ok
	p.close(id, complete)
	return facts, true
}

// WHILE cond block END WHILE
func (p *Parser) parseWhile(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	id := p.open(ast.NodeWhile, parent)
	opener := p.advance()
	cond, ok := p.parseExpr()
	p.addExprs(id, cond)
	if !ok {
		p.skipToBoundary()
	}
	p.decorated(id)
	facts := p.parseBlock(id, ctx.withLoop(token.KwWhile))
	complete := p.parseEnd(token.KwWhile, opener) && ok
	p.close(id, complete)
	return facts, true
}

// EXIT kw | EXIT PROGRAM [code]
func (p *Parser) parseExit(parent ast.NodeID, ctx blockContext) bool {
	id := p.open(ast.NodeExit, parent)
	p.advance()
	if p.atWord("program") {
		p.setName(id, p.advance())
		if p.atExprStart() {
			code, ok := p.parseExpr()
			p.addExprs(id, code)
			p.close(id, ok)
			return ok
		}
		p.close(id, true)
		return true
	}
	target := p.ts.Current()
	if _, known := blockTargets[target.Kind]; !known {
		p.err(diag.SynExpectKeyword, "expected block keyword after EXIT, got "+describe(target))
		p.close(id, false)
		return false
	}
	p.advance()
	p.tree.Node(id).Keyword = target.Kind
	if !ctx.canExit(target.Kind) {
		p.report(diag.SynInvalidExit, diag.SevError, target.Span, "EXIT "+target.Kind.String()+" outside of "+target.Kind.String())
	}
	p.close(id, true)
	return true
}

// CONTINUE kw
func (p *Parser) parseContinue(parent ast.NodeID, ctx blockContext) bool {
	id := p.open(ast.NodeContinue, parent)
	p.advance()
	target := p.ts.Current()
	if _, known := blockTargets[target.Kind]; !known {
		p.err(diag.SynExpectKeyword, "expected block keyword after CONTINUE, got "+describe(target))
		p.close(id, false)
		return false
	}
	p.advance()
	p.tree.Node(id).Keyword = target.Kind
	if !ctx.canContinue(target.Kind) {
		p.report(diag.SynInvalidContinue, diag.SevError, target.Span,
			"CONTINUE "+target.Kind.String()+" outside of "+target.Kind.String())
	}
	p.close(id, true)
	return true
}

// TRY block CATCH block END TRY
func (p *Parser) parseTry(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	id := p.open(ast.NodeTry, parent)
	opener := p.advance()
	p.decorated(id)
	facts := p.parseBlock(id, ctx)
	if p.at(token.KwCatch) {
		c := p.open(ast.NodeCatch, id)
		p.advance()
		p.decorated(c)
		facts.Merge(p.parseBlock(c, ctx))
		p.close(c, true)
	}
	complete := p.parseEnd(token.KwTry, opener)
	p.close(id, complete)
	return facts, true
}
