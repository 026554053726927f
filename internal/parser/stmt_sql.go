package parser

import (
	"strings"

	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/symbols"
	"fglsense/internal/token"
	"fglsense/internal/types"
)

// skipSQL consumes the body of an SQL statement. Unlike skipToBoundary it
// keeps going over UNION [ALL] SELECT.
func (p *Parser) skipSQL() {
	for {
		p.skipToBoundary()
		last := strings.ToLower(p.file.Slice(p.lastSpan))
		if p.at(token.KwSelect) && (last == "union" || last == "all") {
			p.advance()
			continue
		}
		return
	}
}

// DECLARE c [SCROLL] CURSOR [WITH HOLD] FOR {select | stmt-id} | FROM expr
func (p *Parser) parseDeclare(parent ast.NodeID) (Facts, bool) {
	id := p.open(ast.NodeDeclareCursor, parent)
	p.advance()
	name, ok := p.expectIdent("cursor name")
	if !ok {
		p.close(id, false)
		return Facts{}, false
	}
	p.setName(id, name)
	n := p.tree.Node(id)
	if p.eat(token.KwScroll) {
		n.Flags |= ast.FlagScroll
	}
	if _, ok = p.expect(token.KwCursor, diag.SynExpectKeyword, "expected CURSOR"); ok {
		if p.eat(token.KwWith) {
			p.eat(token.KwHold)
			n.Flags |= ast.FlagHold
		}
		p.decorated(id)
		decl := ast.CursorDecl{}
		switch {
		case p.eat(token.KwFor):
			if p.at(token.KwSelect) || p.at(token.KwInsert) {
				start := p.ts.Current().Span
				p.advance()
				p.skipSQL()
				decl.SQL = p.file.Slice(start.Cover(p.lastSpan))
			} else if stmt, sok := p.expectIdent("statement id or SELECT"); sok {
				decl.Prepared = stmt.Text
				decl.PreparedSpan = stmt.Span
				p.addExprs(id, p.newExpr(ast.Expr{Kind: ast.ExprIdent, Text: stmt.Text, Span: stmt.Span}))
			} else {
				ok = false
			}
		case p.eat(token.KwFrom):
			e, eok := p.parseExpr()
			p.addExprs(id, e)
			ok = eok
		default:
			p.err(diag.SynExpectKeyword, "expected FOR or FROM after CURSOR")
			ok = false
		}
		p.tree.Node(id).Payload = p.tree.NewCursor(decl)
	}
	p.close(id, ok)
	sym := p.newSymbol(symbols.SymbolCursor, name, id, 0)
	return Facts{Cursors: []*symbols.Symbol{sym}}, ok
}

// PREPARE s FROM expr
func (p *Parser) parsePrepare(parent ast.NodeID) (Facts, bool) {
	id := p.open(ast.NodePrepare, parent)
	p.advance()
	name, ok := p.expectIdent("statement id")
	if !ok {
		p.close(id, false)
		return Facts{}, false
	}
	p.setName(id, name)
	if _, ok = p.expect(token.KwFrom, diag.SynExpectKeyword, "expected FROM in PREPARE"); ok {
		var e ast.ExprID
		e, ok = p.parseExpr()
		p.addExprs(id, e)
	}
	p.close(id, ok)
	sym := p.newSymbol(symbols.SymbolPrepared, name, id, 0)
	return Facts{Prepared: []*symbols.Symbol{sym}}, ok
}

// EXECUTE s [USING list] [INTO list] | EXECUTE IMMEDIATE expr
func (p *Parser) parseExecute(parent ast.NodeID) bool {
	id := p.open(ast.NodeExecute, parent)
	p.advance()
	if p.eatWord("immediate") {
		e, ok := p.parseExpr()
		p.addExprs(id, e)
		p.close(id, ok)
		return ok
	}
	name, ok := p.expectIdent("statement id")
	if ok {
		p.setName(id, name)
		ok = p.parseUsingInto(id)
	}
	p.close(id, ok)
	return ok
}

// parseUsingInto parses optional USING and INTO lists in either order.
func (p *Parser) parseUsingInto(id ast.NodeID) bool {
	for {
		switch {
		case p.eat(token.KwUsing), p.eat(token.KwInto):
			list, ok := p.parseNameList()
			p.addExprs(id, list...)
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

// OPEN c [USING list] | OPEN WINDOW ... | OPEN FORM ...
func (p *Parser) parseOpen(parent ast.NodeID) bool {
	switch p.peekKind(1) {
	case token.KwWindow:
		return p.parseOpenWindow(parent)
	case token.KwForm:
		return p.parseOpenForm(parent)
	}
	id := p.open(ast.NodeOpenCursor, parent)
	p.advance()
	name, ok := p.expectIdent("cursor name")
	if ok {
		p.setName(id, name)
		ok = p.parseUsingInto(id)
	}
	p.close(id, ok)
	return ok
}

// FETCH [NEXT|PREVIOUS|PRIOR|FIRST|LAST|CURRENT|RELATIVE n|ABSOLUTE n] c [INTO list]
func (p *Parser) parseFetch(parent ast.NodeID) bool {
	id := p.open(ast.NodeFetch, parent)
	p.advance()
	switch {
	case p.eat(token.KwNext), p.eat(token.KwPrevious), p.eatWord("prior"),
		p.eat(token.KwFirst), p.eat(token.KwLast):
	case p.eat(token.KwCurrent):
	case p.eat(token.KwAbsolute), p.eatWord("relative"):
		if _, ok := p.parseUnary(); !ok {
			p.close(id, false)
			return false
		}
	}
	name, ok := p.expectIdent("cursor name")
	if ok {
		p.setName(id, name)
		ok = p.parseUsingInto(id)
	}
	p.close(id, ok)
	return ok
}

// CLOSE c | CLOSE WINDOW w | CLOSE FORM f
func (p *Parser) parseClose(parent ast.NodeID) bool {
	kind := ast.NodeCloseCursor
	if p.peekKind(1) == token.KwWindow || p.peekKind(1) == token.KwForm {
		kind = ast.NodeCloseWindow
	}
	id := p.open(kind, parent)
	p.advance()
	if kind == ast.NodeCloseWindow {
		p.tree.Node(id).Keyword = p.advance().Kind
	}
	name, ok := p.expectIdent("name")
	if ok {
		p.setName(id, name)
	}
	p.close(id, ok)
	return ok
}

// parseCursorRef handles "KEYWORD cursor" statements such as FREE.
func (p *Parser) parseCursorRef(parent ast.NodeID, kind ast.NodeKind) bool {
	id := p.open(kind, parent)
	p.advance()
	name, ok := p.expectIdent("cursor name")
	if ok {
		p.setName(id, name)
	}
	p.close(id, ok)
	return ok
}

// CREATE [TEMP] TABLE t (col type [constraints], ...) [WITH NO LOG].
// Other CREATE statements are skipped.
func (p *Parser) parseCreate(parent ast.NodeID) (Facts, bool) {
	if p.peekKind(1) != token.KwTable && !(p.peekKind(1) == token.KwTemp && p.peekKind(2) == token.KwTable) {
		return Facts{}, p.parseSoft(parent)
	}
	id := p.open(ast.NodeCreateTable, parent)
	p.advance()
	if p.eat(token.KwTemp) {
		p.tree.Node(id).Flags |= ast.FlagTemp
	}
	p.advance() // TABLE
	name, ok := p.expectIdent("table name")
	if !ok {
		p.close(id, false)
		return Facts{}, false
	}
	p.setName(id, name)
	p.decorated(id)
	rec := &types.Type{Kind: types.KindRecord, Name: name.Text}
	if open, pok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after table name"); pok {
		for !p.at(token.RParen) && !p.at(token.EOF) {
			if col, cok := p.parseColumnDef(id); cok && col.Name != "" {
				if !rec.AddField(col) {
					p.report(diag.SynDuplicateField, diag.SevError, col.Span, "duplicate column \""+col.Name+"\"")
				}
			}
			p.skipColumnTail()
			if !p.eat(token.Comma) {
				break
			}
		}
		if !p.eat(token.RParen) {
			p.report(diag.SynUnclosedParen, diag.SevError, open.Span, "unclosed column list")
			ok = false
		}
	} else {
		ok = false
	}
	if ok && p.eat(token.KwWith) {
		p.eatWord("no")
		p.eatWord("log")
	}
	p.close(id, ok)
	sym := p.newSymbol(symbols.SymbolTable, name, id, 0)
	sym.Type = rec
	return Facts{Tables: []*symbols.Symbol{sym}}, ok
}

// tableConstraintWords start a table-level constraint instead of a column.
var tableConstraintWords = map[string]bool{
	"primary": true, "unique": true, "foreign": true, "check": true, "constraint": true, "distinct": true,
}

func (p *Parser) parseColumnDef(table ast.NodeID) (types.Field, bool) {
	if tableConstraintWords[strings.ToLower(p.ts.Current().Text)] {
		return types.Field{}, false
	}
	name, ok := p.expectIdent("column name")
	if !ok {
		return types.Field{}, false
	}
	if !p.atTypeStart() {
		p.err(diag.SynExpectType, "expected column type, got "+describe(p.ts.Current()))
		return types.Field{}, false
	}
	tid, _ := p.parseTypeRef(table)
	return types.Field{Name: name.Text, Type: p.resolveTypeRef(tid), Span: name.Span}, true
}

// skipColumnTail skips NOT NULL, DEFAULT ..., constraints up to the next
// column separator.
func (p *Parser) skipColumnTail() {
	depth := 0
	for !p.at(token.EOF) {
		switch p.ts.Current().Kind {
		case token.LParen:
			depth++
		case token.RParen:
			if depth == 0 {
				return
			}
			depth--
		case token.Comma:
			if depth == 0 {
				return
			}
		}
		p.advance()
	}
}

// SQL ... END SQL
func (p *Parser) parseSQLBlock(parent ast.NodeID) bool {
	id := p.open(ast.NodeSQL, parent)
	opener := p.advance()
	p.tree.Node(id).Keyword = token.KwSQL
	p.decorated(id)
	for !p.at(token.EOF) && !(p.at(token.KwEnd) && p.peekKind(1) == token.KwSQL) {
		if p.at(token.Dollar) {
			// $var - переменная хоста
			p.advance()
			if p.atNameStart() {
				e, _ := p.parseNamePath()
				p.addExprs(id, e)
			}
			continue
		}
		p.advance()
	}
	complete := p.parseEnd(token.KwSQL, opener)
	p.close(id, complete)
	return complete
}

// parseEmbeddedSQL handles SELECT/INSERT/UPDATE/DELETE written directly in
// the program. INTO targets of a SELECT are kept as name expressions.
func (p *Parser) parseEmbeddedSQL(parent ast.NodeID) bool {
	id := p.open(ast.NodeSQL, parent)
	kw := p.advance()
	p.tree.Node(id).Keyword = kw.Kind
	ok := true
	if kw.Kind == token.KwSelect {
		depth := 0
		for !p.at(token.EOF) {
			k := p.ts.Current().Kind
			if depth == 0 && k == token.KwInto {
				p.advance()
				targets, tok := p.parseNameList()
				p.addExprs(id, targets...)
				ok = tok
				break
			}
			if depth == 0 && (k == token.KwFrom || isBlockTerminator(k) ||
				(isStatementStarter(k) && k != token.KwFor)) {
				break
			}
			switch k {
			case token.LParen:
				depth++
			case token.RParen:
				if depth > 0 {
					depth--
				}
			}
			p.advance()
		}
	}
	p.skipSQL()
	p.close(id, ok)
	return ok
}
