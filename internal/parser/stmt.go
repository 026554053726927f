package parser

import (
	"strings"

	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/symbols"
	"fglsense/internal/token"
)

// parseStatement dispatches on the first token of a statement. It returns
// false when the statement was cut short; the caller then resyncs.
func (p *Parser) parseStatement(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	start := p.ts.Current().Span.Start
	switch p.ts.Current().Kind {
	case token.KwDefine:
		_, f, ok := p.parseDefine(parent, 0, start)
		return f, ok
	case token.KwConstant:
		_, f, ok := p.parseConstant(parent, 0, start)
		return f, ok
	case token.KwType:
		_, f, ok := p.parseTypeDecl(parent, 0, start)
		return f, ok
	case token.KwLet:
		return Facts{}, p.parseLet(parent)
	case token.KwCall:
		return Facts{}, p.parseCall(parent)
	case token.KwReturn:
		return p.parseReturn(parent, ctx)
	case token.KwIf:
		return p.parseIf(parent, ctx)
	case token.KwCase:
		return p.parseCase(parent, ctx)
	case token.KwFor:
		return p.parseFor(parent, ctx)
	case token.KwForeach:
		return p.parseForeach(parent, ctx)
	case token.KwWhile:
		return p.parseWhile(parent, ctx)
	case token.KwExit:
		return Facts{}, p.parseExit(parent, ctx)
	case token.KwContinue:
		return Facts{}, p.parseContinue(parent, ctx)
	case token.KwTry:
		return p.parseTry(parent, ctx)
	case token.KwDeclare:
		return p.parseDeclare(parent)
	case token.KwPrepare:
		return p.parsePrepare(parent)
	case token.KwExecute:
		return Facts{}, p.parseExecute(parent)
	case token.KwOpen:
		return Facts{}, p.parseOpen(parent)
	case token.KwFetch:
		return Facts{}, p.parseFetch(parent)
	case token.KwClose:
		return Facts{}, p.parseClose(parent)
	case token.KwFree:
		return Facts{}, p.parseCursorRef(parent, ast.NodeFree)
	case token.KwCreate:
		return p.parseCreate(parent)
	case token.KwSQL:
		return Facts{}, p.parseSQLBlock(parent)
	case token.KwSelect, token.KwInsert, token.KwUpdate, token.KwDelete:
		return Facts{}, p.parseEmbeddedSQL(parent)
	case token.KwDatabase:
		_, ok := p.parseSchema(parent)
		return Facts{}, ok
	case token.KwWhenever:
		return Facts{}, p.parseWhenever(parent)
	case token.KwInitialize:
		return Facts{}, p.parseInitialize(parent)
	case token.KwDisplay:
		return p.parseDisplay(parent, ctx)
	case token.KwInput:
		return p.parseInput(parent, ctx)
	case token.KwConstruct:
		return p.parseConstruct(parent, ctx)
	case token.KwMenu:
		return p.parseMenu(parent, ctx)
	case token.KwDialog:
		if p.peekKind(1) == token.Dot {
			// DIALOG.setActionActive(...) - вызов метода объекта диалога
			return Facts{}, p.parseExprStatement(parent, false)
		}
		return p.parseDialog(parent, ctx)
	case token.KwMessage:
		return Facts{}, p.parseMessage(parent, ast.NodeMessage)
	case token.KwError:
		return Facts{}, p.parseMessage(parent, ast.NodeError)
	case token.KwSleep:
		return Facts{}, p.parseSimpleExpr(parent, ast.NodeSleep)
	case token.KwRun:
		return Facts{}, p.parseRun(parent)
	case token.KwClear:
		return Facts{}, p.parseClear(parent)
	case token.KwPrint:
		return Facts{}, p.parsePrint(parent, ctx)
	case token.KwSkip:
		return Facts{}, p.parseSkip(parent, ctx)
	case token.KwAccept:
		return Facts{}, p.parseAccept(parent, ctx)
	case token.KwNext:
		return Facts{}, p.parseNextField(parent, ctx)
	case token.KwCurrent:
		return Facts{}, p.parseSoft(parent)
	}
	if p.atIdent() {
		return p.parseWordStatement(parent, ctx)
	}
	p.badStatement(parent)
	return Facts{}, true
}

// LET target = expr {, expr}
func (p *Parser) parseLet(parent ast.NodeID) bool {
	id := p.open(ast.NodeLet, parent)
	p.advance()
	ok := true
	if !p.atNameStart() {
		p.err(diag.SynExpectIdentifier, "expected variable after LET, got "+describe(p.ts.Current()))
		p.close(id, false)
		return false
	}
	target, tok := p.parseNamePath()
	p.addExprs(id, target)
	if !tok {
		p.close(id, false)
		return false
	}
	if _, eok := p.expect(token.Eq, diag.SynUnexpectedToken, "expected '=' in LET"); !eok {
		p.close(id, false)
		return false
	}
	p.decorated(id)
	vals, vok := p.parseExprList()
	p.addExprs(id, vals...)
	ok = ok && vok
	p.close(id, ok)
	return ok
}

// CALL f(args) [RETURNING list]
func (p *Parser) parseCall(parent ast.NodeID) bool {
	id := p.open(ast.NodeCall, parent)
	p.advance()
	if !p.atNameStart() {
		p.err(diag.SynExpectIdentifier, "expected function name after CALL, got "+describe(p.ts.Current()))
		p.close(id, false)
		return false
	}
	callee, ok := p.parseNamePath()
	p.addExprs(id, callee)
	if ok {
		if e := p.tree.Expr(callee); e == nil || e.Kind != ast.ExprCall {
			p.err(diag.SynUnexpectedToken, "expected '(' after function name")
			ok = false
		}
	}
	if ok && p.eat(token.KwReturning) {
		var targets []ast.ExprID
		targets, ok = p.parseNameList()
		p.addExprs(id, targets...)
	}
	p.close(id, ok)
	return ok
}

// RETURN [expr {, expr}]
func (p *Parser) parseReturn(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	id := p.open(ast.NodeReturn, parent)
	kw := p.advance()
	if !ctx.inFunction {
		p.report(diag.SynNotAllowedHere, diag.SevError, kw.Span, "RETURN outside of a function")
	}
	count := 0
	ok := true
	if p.atExprStart() {
		var vals []ast.ExprID
		vals, ok = p.parseExprList()
		p.addExprs(id, vals...)
		count = len(vals)
	}
	p.close(id, ok)
	return Facts{Returns: []symbols.ReturnSite{{Span: p.tree.Node(id).Span, Count: count}}}, ok
}

// atExprStart reports whether the current token can begin an expression on
// the same statement.
func (p *Parser) atExprStart() bool {
	switch p.ts.Current().Kind {
	case token.IntLit, token.DecLit, token.StringLit, token.LParen, token.Minus, token.Plus,
		token.KwNot, token.KwTrue, token.KwFalse, token.KwNull, token.KwToday, token.KwCurrent:
		return true
	}
	return p.atNameStart()
}

// MESSAGE/ERROR exprs [ATTRIBUTES(...)]
func (p *Parser) parseMessage(parent ast.NodeID, kind ast.NodeKind) bool {
	id := p.open(kind, parent)
	p.advance()
	vals, ok := p.parseExprList()
	p.addExprs(id, vals...)
	p.skipAttributes()
	p.close(id, ok)
	return ok
}

// parseSimpleExpr handles "KEYWORD expr" statements such as SLEEP.
func (p *Parser) parseSimpleExpr(parent ast.NodeID, kind ast.NodeKind) bool {
	id := p.open(kind, parent)
	p.advance()
	e, ok := p.parseExpr()
	p.addExprs(id, e)
	p.close(id, ok)
	return ok
}

// RUN cmd [IN FORM MODE | IN LINE MODE] [RETURNING v | WITHOUT WAITING]
func (p *Parser) parseRun(parent ast.NodeID) bool {
	id := p.open(ast.NodeRun, parent)
	p.advance()
	e, ok := p.parseExpr()
	p.addExprs(id, e)
	if ok && p.eat(token.KwIn) {
		p.eatWord("form")
		p.eatWord("line")
		p.eatWord("mode")
	}
	switch {
	case !ok:
	case p.eat(token.KwReturning):
		var targets []ast.ExprID
		targets, ok = p.parseNameList()
		p.addExprs(id, targets...)
	case p.eat(token.KwWithout):
		p.eatWord("waiting")
	}
	p.close(id, ok)
	return ok
}

// CLEAR FORM | CLEAR SCREEN | CLEAR WINDOW w | CLEAR field-list
func (p *Parser) parseClear(parent ast.NodeID) bool {
	id := p.open(ast.NodeClear, parent)
	p.advance()
	ok := true
	switch {
	case p.eat(token.KwForm), p.eatWord("screen"):
	case p.eat(token.KwWindow):
		_, ok = p.expectIdent("window name")
	default:
		p.parseFieldList()
	}
	p.close(id, ok)
	return ok
}

// WHENEVER condition action
func (p *Parser) parseWhenever(parent ast.NodeID) bool {
	id := p.open(ast.NodeWhenever, parent)
	p.advance()
	p.eatWord("any")
	// ERROR | SQLERROR | WARNING | NOT FOUND
	p.eat(token.KwNot)
	if !p.eat(token.KwError) && !p.atIdent() {
		p.err(diag.SynExpectKeyword, "expected condition after WHENEVER")
		p.close(id, false)
		return false
	}
	if !p.at(token.KwContinue) && !p.at(token.KwCall) && p.atIdent() {
		p.advance()
	}
	// действие: CONTINUE | STOP | CALL f | GOTO l | RAISE
	switch {
	case p.eat(token.KwContinue), p.eatWord("stop"), p.eatWord("raise"):
	case p.eat(token.KwCall), p.eatWord("goto"):
		p.eat(token.Colon)
		if _, ok := p.expectIdent("name"); !ok {
			p.close(id, false)
			return false
		}
	default:
		p.err(diag.SynExpectKeyword, "expected WHENEVER action, got "+describe(p.ts.Current()))
		p.close(id, false)
		return false
	}
	p.close(id, true)
	return true
}

// INITIALIZE list TO NULL | INITIALIZE list LIKE columns
func (p *Parser) parseInitialize(parent ast.NodeID) bool {
	id := p.open(ast.NodeInitialize, parent)
	p.advance()
	targets, ok := p.parseNameList()
	p.addExprs(id, targets...)
	if ok {
		switch {
		case p.eat(token.KwTo):
			_, ok = p.expect(token.KwNull, diag.SynExpectKeyword, "expected NULL after TO")
		case p.eat(token.KwLike):
			var cols []ast.ExprID
			cols, ok = p.parseNameList()
			p.addExprs(id, cols...)
		default:
			p.err(diag.SynExpectKeyword, "expected TO NULL or LIKE after INITIALIZE")
			ok = false
		}
	}
	p.close(id, ok)
	return ok
}

// parseExprStatement wraps a bare expression. Without a leading keyword the
// statement is unknown; the expression is still kept so that names inside
// it can be resolved.
func (p *Parser) parseExprStatement(parent ast.NodeID, unknown bool) bool {
	id := p.open(ast.NodeExprStmt, parent)
	if unknown {
		p.err(diag.SynUnknownStatement, "unknown statement "+describe(p.ts.Current()))
	}
	e, ok := p.parseExpr()
	p.addExprs(id, e)
	p.close(id, ok && !unknown)
	return ok
}

// softStatements are statements recognised by a leading word that the
// lexer does not treat as a keyword. Their bodies carry no names the
// analysis tracks, so they are consumed up to the next boundary.
var softStatements = map[string]bool{
	"options": true, "defer": true, "goto": true, "label": true, "set": true,
	"lock": true, "unlock": true, "begin": true, "commit": true, "rollback": true,
	"load": true, "unload": true, "drop": true, "alter": true, "grant": true,
	"revoke": true, "need": true, "pause": true, "show": true, "hide": true,
	"scroll": true, "rename": true, "start": true, "finish": true,
	"terminate": true, "output": true, "locate": true, "validate": true,
	"connect": true, "disconnect": true, "flush": true, "put": true,
}

// parseWordStatement handles statements led by non-keyword words and
// falls back to a bare expression.
func (p *Parser) parseWordStatement(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	word := strings.ToLower(p.ts.Current().Text)
	next := p.peekKind(1)
	if next == token.Dot || next == token.LParen || next == token.LBracket {
		// obj.method() или f() без CALL - недописанный код
		return Facts{}, p.parseExprStatement(parent, p.ts.Current().Kind != token.KwDialog)
	}
	switch word {
	case "start", "finish", "terminate":
		if next == token.KwReport {
			return Facts{}, p.parseReportControl(parent)
		}
	case "output":
		if next == token.KwTo {
			return Facts{}, p.parseReportControl(parent)
		}
	}
	if softStatements[word] {
		return Facts{}, p.parseSoft(parent)
	}
	return Facts{}, p.parseExprStatement(parent, true)
}

// parseSoft records a statement whose body is skipped.
func (p *Parser) parseSoft(parent ast.NodeID) bool {
	id := p.open(ast.NodeSQL, parent)
	kw := p.advance()
	p.tree.Node(id).Keyword = kw.Kind
	p.setName(id, kw)
	p.skipToBoundary()
	p.close(id, true)
	return true
}

// START REPORT r [TO ...] | OUTPUT TO REPORT r(args) | FINISH REPORT r |
// TERMINATE REPORT r. The report name is kept as a call expression so it
// resolves like a function reference.
func (p *Parser) parseReportControl(parent ast.NodeID) bool {
	id := p.open(ast.NodeCall, parent)
	verb := p.advance()
	p.tree.Node(id).Keyword = token.KwReport
	p.setName(id, verb)
	p.eat(token.KwTo)
	p.advance() // REPORT
	p.decorated(id)
	if !p.atNameStart() {
		p.err(diag.SynExpectIdentifier, "expected report name, got "+describe(p.ts.Current()))
		p.close(id, false)
		return false
	}
	name, ok := p.parseNamePath()
	p.addExprs(id, name)
	if ok && strings.EqualFold(verb.Text, "start") && p.eat(token.KwTo) {
		// TO FILE "x" | TO PRINTER | TO SCREEN | TO PIPE "cmd" ...
		p.skipToBoundary()
	}
	p.close(id, ok)
	return ok
}
