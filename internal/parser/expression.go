package parser

import (
	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/source"
	"fglsense/internal/token"
)

// Уровни приоритета бинарных операторов, от слабого к сильному.
const (
	precNone = iota
	precOr
	precAnd
	precNot
	precCompare
	precConcat
	precAdditive
	precMultiplicative
	precPower
)

func binaryPrec(k token.Kind) int {
	switch k {
	case token.KwOr:
		return precOr
	case token.KwAnd:
		return precAnd
	case token.Eq, token.EqEq, token.NotEq, token.Lt, token.LtEq, token.Gt, token.GtEq,
		token.KwLike, token.KwMatches:
		return precCompare
	case token.Concat:
		return precConcat
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.KwMod:
		return precMultiplicative
	case token.StarStar:
		return precPower
	default:
		return precNone
	}
}

func (p *Parser) newExpr(e ast.Expr) ast.ExprID {
	return p.tree.NewExpr(e)
}

func (p *Parser) exprSpan(id ast.ExprID) source.Span {
	if e := p.tree.Expr(id); e != nil {
		return e.Span
	}
	return p.getDiagnosticSpan()
}

// parseExpr parses a full expression. On failure it reports
// SynExpectExpression and returns a zero-width bad expression without
// consuming input.
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseBinary(precOr)
}

func (p *Parser) parseBinary(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnary()
	if !ok {
		return left, false
	}
	for {
		cur := p.ts.Current()
		switch {
		case cur.Kind == token.KwIs && minPrec <= precCompare:
			p.advance()
			op := token.KwIs
			if p.eat(token.KwNot) {
				op = token.KwNot
			}
			p.expect(token.KwNull, diag.SynExpectKeyword, "expected NULL after IS")
			left = p.newExpr(ast.Expr{Kind: ast.ExprIsNull, Op: op, Target: left,
				Span: p.exprSpan(left).Cover(p.lastSpan)})
			continue
		case cur.Kind == token.KwBetween && minPrec <= precCompare:
			left = p.parseBetween(left, token.KwBetween)
			continue
		case cur.Kind == token.KwNot && minPrec <= precCompare:
			// NOT LIKE / NOT MATCHES / NOT BETWEEN / NOT IN
			next := p.peekKind(1)
			if next == token.KwBetween {
				p.advance()
				left = p.parseBetween(left, token.KwNot)
				continue
			}
			if next == token.KwLike || next == token.KwMatches || (next == token.KwIn && p.peekKind(2) == token.LParen) {
				p.advance()
				left = p.parseComparisonTail(left, true)
				continue
			}
			return left, true
		case cur.Kind == token.KwIn && p.peekKind(1) == token.LParen && minPrec <= precCompare:
			left = p.parseComparisonTail(left, false)
			continue
		}

		prec := binaryPrec(cur.Kind)
		if prec == precNone || prec < minPrec {
			return left, true
		}
		p.advance()
		next := prec + 1
		if cur.Kind == token.StarStar {
			next = prec
		}
		right, ok := p.parseBinary(next)
		left = p.newExpr(ast.Expr{Kind: ast.ExprBinary, Op: cur.Kind, Target: left, Args: []ast.ExprID{right},
			Span: p.exprSpan(left).Cover(p.exprSpan(right))})
		if !ok {
			return left, false
		}
		if cur.Kind == token.KwLike || cur.Kind == token.KwMatches {
			p.parseEscape()
		}
	}
}

// parseComparisonTail handles LIKE/MATCHES/IN after an optional NOT.
func (p *Parser) parseComparisonTail(left ast.ExprID, negated bool) ast.ExprID {
	opTok := p.advance()
	var right ast.ExprID
	if opTok.Kind == token.KwIn {
		right = p.parseParenList()
	} else {
		right, _ = p.parseBinary(precConcat)
		p.parseEscape()
	}
	e := p.newExpr(ast.Expr{Kind: ast.ExprBinary, Op: opTok.Kind, Target: left, Args: []ast.ExprID{right},
		Span: p.exprSpan(left).Cover(p.lastSpan)})
	if negated {
		e = p.newExpr(ast.Expr{Kind: ast.ExprUnary, Op: token.KwNot, Target: e, Span: p.exprSpan(e)})
	}
	return e
}

// ESCAPE 'c' после LIKE/MATCHES
func (p *Parser) parseEscape() {
	if p.atWord("escape") {
		p.advance()
		p.parseUnary()
	}
}

func (p *Parser) parseBetween(left ast.ExprID, op token.Kind) ast.ExprID {
	p.advance() // BETWEEN
	lo, _ := p.parseBinary(precConcat)
	p.expect(token.KwAnd, diag.SynExpectKeyword, "expected AND in BETWEEN")
	hi, _ := p.parseBinary(precConcat)
	return p.newExpr(ast.Expr{Kind: ast.ExprBetween, Op: op, Target: left, Args: []ast.ExprID{lo, hi},
		Span: p.exprSpan(left).Cover(p.lastSpan)})
}

func (p *Parser) parseUnary() (ast.ExprID, bool) {
	cur := p.ts.Current()
	switch cur.Kind {
	case token.KwNot:
		p.advance()
		operand, ok := p.parseBinary(precNot)
		return p.newExpr(ast.Expr{Kind: ast.ExprUnary, Op: cur.Kind, Target: operand,
			Span: cur.Span.Cover(p.exprSpan(operand))}), ok
	case token.Minus, token.Plus:
		p.advance()
		operand, ok := p.parseUnary()
		return p.newExpr(ast.Expr{Kind: ast.ExprUnary, Op: cur.Kind, Target: operand,
			Span: cur.Span.Cover(p.exprSpan(operand))}), ok
	}
	prim, ok := p.parsePrimary()
	if !ok {
		return prim, false
	}
	return p.parsePostfix(prim), true
}

// parsePostfix - CLIPPED, USING fmt, UNITS qualifier.
func (p *Parser) parsePostfix(e ast.ExprID) ast.ExprID {
	for {
		switch p.ts.Current().Kind {
		case token.KwClipped:
			p.advance()
			e = p.newExpr(ast.Expr{Kind: ast.ExprClipped, Target: e, Span: p.exprSpan(e).Cover(p.lastSpan)})
		case token.KwUsing:
			// USING в EXECUTE/OPEN/FOREACH идёт после имени, а не после выражения:
			// там parsePostfix не вызывается для имени курсора.
			p.advance()
			format, _ := p.parsePrimary()
			e = p.newExpr(ast.Expr{Kind: ast.ExprUsing, Target: e, Args: []ast.ExprID{format},
				Span: p.exprSpan(e).Cover(p.lastSpan)})
		case token.KwUnits:
			p.advance()
			p.parseQualifierWord()
			e = p.newExpr(ast.Expr{Kind: ast.ExprBinary, Op: token.KwUnits, Target: e,
				Span: p.exprSpan(e).Cover(p.lastSpan)})
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() (ast.ExprID, bool) {
	cur := p.ts.Current()
	switch cur.Kind {
	case token.IntLit:
		p.advance()
		return p.newExpr(ast.Expr{Kind: ast.ExprIntLit, Text: cur.Text, Span: cur.Span}), true
	case token.DecLit:
		p.advance()
		return p.newExpr(ast.Expr{Kind: ast.ExprDecLit, Text: cur.Text, Span: cur.Span}), true
	case token.StringLit:
		p.advance()
		return p.newExpr(ast.Expr{Kind: ast.ExprStringLit, Text: cur.Text, Span: cur.Span}), true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.newExpr(ast.Expr{Kind: ast.ExprBoolLit, Op: cur.Kind, Text: cur.Text, Span: cur.Span}), true
	case token.KwNull:
		p.advance()
		return p.newExpr(ast.Expr{Kind: ast.ExprNull, Text: cur.Text, Span: cur.Span}), true
	case token.KwToday:
		p.advance()
		return p.newExpr(ast.Expr{Kind: ast.ExprKeywordValue, Op: cur.Kind, Text: cur.Text, Span: cur.Span}), true
	case token.KwCurrent:
		p.advance()
		if isQualifierWord(p.ts.Current().Kind) {
			p.parseQualifierRange()
		}
		return p.newExpr(ast.Expr{Kind: ast.ExprKeywordValue, Op: cur.Kind, Text: cur.Text,
			Span: cur.Span.Cover(p.lastSpan)}), true
	case token.LParen:
		return p.parseParenList(), true
	}
	if p.atNameStart() {
		return p.parseNamePath()
	}
	sp := p.getDiagnosticSpan()
	p.report(diag.SynExpectExpression, diag.SevError, sp, "expected expression, got "+describe(cur))
	return p.newExpr(ast.Expr{Kind: ast.ExprBadToken, Span: source.Span{File: sp.File, Start: sp.Start, End: sp.Start}}), false
}

// atNameStart reports whether the current token starts a name path.
// Statement keywords that are not reserved (CLEAR, MESSAGE, ...) count as a
// name only when followed by '.', '(' or '[': otherwise they most likely
// begin the next statement of incomplete code.
func (p *Parser) atNameStart() bool {
	k := p.ts.Current().Kind
	if !token.CanBeIdent(k) {
		return false
	}
	if k == token.Ident || !isStatementStarter(k) {
		return true
	}
	switch p.peekKind(1) {
	case token.Dot, token.LParen, token.LBracket:
		return true
	default:
		return false
	}
}

// parseParenList parses "( e {, e} )". A single element yields ExprParen.
func (p *Parser) parseParenList() ast.ExprID {
	open := p.advance()
	var items []ast.ExprID
	if !p.at(token.RParen) {
		for {
			e, ok := p.parseExpr()
			items = append(items, e)
			if !ok || !p.eat(token.Comma) {
				break
			}
		}
	}
	if !p.eat(token.RParen) {
		p.report(diag.SynUnclosedParen, diag.SevError, open.Span, "unclosed parenthesis")
	}
	kind := ast.ExprList
	if len(items) == 1 {
		kind = ast.ExprParen
	}
	return p.newExpr(ast.Expr{Kind: kind, Args: items, Span: open.Span.Cover(p.lastSpan)})
}

// parseNamePath parses ident {'.' member | '.*' | '[' idx ']' | '(' args ')'}.
// Members after a dot may be keywords.
func (p *Parser) parseNamePath() (ast.ExprID, bool) {
	first := p.advance()
	e := p.newExpr(ast.Expr{Kind: ast.ExprIdent, Text: first.Text, Span: first.Span})
	for {
		switch p.ts.Current().Kind {
		case token.Dot:
			p.advance()
			switch {
			case p.at(token.Star):
				p.advance()
				e = p.newExpr(ast.Expr{Kind: ast.ExprStar, Target: e, Span: p.exprSpan(e).Cover(p.lastSpan)})
			case p.at(token.Ident) || p.ts.Current().Kind.IsKeyword():
				m := p.advance()
				e = p.newExpr(ast.Expr{Kind: ast.ExprMember, Target: e, Text: m.Text,
					Span: p.exprSpan(e).Cover(m.Span)})
			default:
				// "rec." во время набора: член пустой
				p.err(diag.SynExpectIdentifier, "expected member name after '.'")
				e = p.newExpr(ast.Expr{Kind: ast.ExprMember, Target: e, Span: p.exprSpan(e).Cover(p.lastSpan)})
				return e, false
			}
		case token.LBracket:
			open := p.advance()
			var idx []ast.ExprID
			for {
				ix, ok := p.parseExpr()
				idx = append(idx, ix)
				if !ok || !p.eat(token.Comma) {
					break
				}
			}
			if !p.eat(token.RBracket) {
				p.report(diag.SynUnclosedBracket, diag.SevError, open.Span, "unclosed bracket")
			}
			e = p.newExpr(ast.Expr{Kind: ast.ExprIndex, Target: e, Args: idx, Span: p.exprSpan(e).Cover(p.lastSpan)})
		case token.LParen:
			args := p.parseCallArgs()
			e = p.newExpr(ast.Expr{Kind: ast.ExprCall, Target: e, Args: args, Span: p.exprSpan(e).Cover(p.lastSpan)})
		default:
			return e, true
		}
	}
}

// parseCallArgs parses "( [e {, e}] )"; COUNT(*) is accepted.
func (p *Parser) parseCallArgs() []ast.ExprID {
	open := p.advance()
	var args []ast.ExprID
	if p.at(token.Star) {
		star := p.advance()
		args = append(args, p.newExpr(ast.Expr{Kind: ast.ExprStar, Span: star.Span}))
	} else if !p.at(token.RParen) {
		for {
			a, ok := p.parseExpr()
			args = append(args, a)
			if !ok || !p.eat(token.Comma) {
				break
			}
		}
	}
	if !p.eat(token.RParen) {
		p.report(diag.SynUnclosedParen, diag.SevError, open.Span, "unclosed parenthesis")
	}
	return args
}

// parseExprList parses "e {, e}".
func (p *Parser) parseExprList() ([]ast.ExprID, bool) {
	var out []ast.ExprID
	for {
		e, ok := p.parseExpr()
		out = append(out, e)
		if !ok {
			return out, false
		}
		if !p.eat(token.Comma) {
			return out, true
		}
	}
}

// parseNameList parses "name-path {, name-path}" for INTO/RETURNING/BY NAME
// targets; THRU ranges are accepted.
func (p *Parser) parseNameList() ([]ast.ExprID, bool) {
	var out []ast.ExprID
	for {
		if !p.atNameStart() {
			p.err(diag.SynExpectIdentifier, "expected variable, got "+describe(p.ts.Current()))
			return out, false
		}
		e, ok := p.parseNamePath()
		out = append(out, e)
		if !ok {
			return out, false
		}
		if p.eatWord("thru") || p.eatWord("through") {
			continue
		}
		if !p.eat(token.Comma) {
			return out, true
		}
	}
}

func isQualifierWord(k token.Kind) bool {
	switch k {
	case token.KwYear, token.KwMonth, token.KwDay, token.KwHour, token.KwMinute,
		token.KwSecond, token.KwFraction:
		return true
	default:
		return false
	}
}

// parseQualifierWord parses YEAR | ... | FRACTION[(n)].
func (p *Parser) parseQualifierWord() bool {
	if !isQualifierWord(p.ts.Current().Kind) {
		p.err(diag.SynExpectKeyword, "expected datetime qualifier, got "+describe(p.ts.Current()))
		return false
	}
	p.advance()
	p.skipParens()
	return true
}

// parseQualifierRange parses "q [TO q]" and returns its text.
func (p *Parser) parseQualifierRange() string {
	start := p.ts.Current().Span
	if !p.parseQualifierWord() {
		return ""
	}
	if p.eat(token.KwTo) {
		p.parseQualifierWord()
	}
	return p.file.Slice(start.Cover(p.lastSpan))
}
