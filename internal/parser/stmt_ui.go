package parser

import (
	"strings"

	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/token"
	"fglsense/internal/types"
)

// parseFieldList skips screen field references: f, scr.*, scr[i].f,
// formonly.f THRU f2. Field names live in forms, not in the program, so no
// expressions are produced.
func (p *Parser) parseFieldList() bool {
	for {
		if !p.atIdent() {
			p.err(diag.SynExpectIdentifier, "expected field name, got "+describe(p.ts.Current()))
			return false
		}
		p.advance()
		for {
			switch {
			case p.at(token.Dot):
				p.advance()
				if !p.eat(token.Star) {
					if !p.atIdent() && !p.ts.Current().Kind.IsKeyword() {
						p.err(diag.SynExpectIdentifier, "expected field name after '.'")
						return false
					}
					p.advance()
				}
				continue
			case p.at(token.LBracket):
				p.advance()
				p.parseExpr()
				if !p.eat(token.RBracket) {
					p.err(diag.SynUnclosedBracket, "expected ']'")
					return false
				}
				continue
			}
			break
		}
		if p.eatWord("thru") || p.eatWord("through") {
			continue
		}
		if !p.eat(token.Comma) {
			return true
		}
	}
}

// dialogFact scopes the DIALOG object to an interactive statement.
func (p *Parser) dialogFact(id ast.NodeID) symbols.LimitedVar {
	n := p.tree.Node(id)
	sym := &symbols.Symbol{
		Name:   "DIALOG",
		Kind:   symbols.SymbolVariable,
		Flags:  symbols.SymbolFlagLimited | symbols.SymbolFlagSystem,
		Type:   types.Class("ui.Dialog"),
		Span:   source.Span{File: n.Span.File, Start: n.Span.Start, End: n.DecoratorEnd},
		Path:   p.file.Path,
		Module: p.mod.Name,
		Node:   id,
	}
	return symbols.LimitedVar{Symbol: sym, Scope: n.Span}
}

// parseInteractiveTail parses the optional control blocks of INPUT,
// CONSTRUCT and DISPLAY ARRAY. END is required only when blocks follow.
func (p *Parser) parseInteractiveTail(id ast.NodeID, kw token.Kind, opener token.Token, ctx blockContext) (Facts, bool) {
	hasBlocks := isControlStarter(p.ts.Current().Kind)
	if !hasBlocks && !(p.at(token.KwEnd) && p.peekKind(1) == kw) {
		p.close(id, true)
		return Facts{}, true
	}
	inner := ctx.withLoop(kw)
	inner.interactive = true
	facts := p.parseControlBlocks(id, inner, false)
	complete := p.parseEnd(kw, opener)
	p.close(id, complete)
	return facts, true
}

func isControlStarter(k token.Kind) bool {
	return k == token.KwBefore || k == token.KwAfter || k == token.KwOn || k == token.KwCommand
}

// parseControlBlocks parses BEFORE/AFTER/ON/COMMAND blocks. Inside DIALOG
// sub-dialogs may be mixed with them.
func (p *Parser) parseControlBlocks(owner ast.NodeID, ctx blockContext, subDialogs bool) Facts {
	var facts Facts
	for {
		k := p.ts.Current().Kind
		switch {
		case isControlStarter(k):
			facts.Merge(p.parseControlBlock(owner, ctx))
		case subDialogs && (k == token.KwInput || k == token.KwConstruct || k == token.KwDisplay ||
			k == token.KwMenu || p.atWord("subdialog")):
			if p.atWord("subdialog") {
				p.parseSoft(owner)
				continue
			}
			f, ok := p.parseStatement(owner, ctx)
			facts.Merge(f)
			if !ok {
				p.skipToBoundary()
			}
		case k == token.KwEnd || k == token.EOF || isModuleStarter(k):
			return facts
		default:
			p.badStatement(owner)
		}
	}
}

// parseControlBlock parses one event header and its statements.
func (p *Parser) parseControlBlock(owner ast.NodeID, ctx blockContext) Facts {
	id := p.open(ast.NodeControlBlock, owner)
	kw := p.advance()
	n := p.tree.Node(id)
	n.Keyword = kw.Kind
	ok := true
	switch kw.Kind {
	case token.KwBefore, token.KwAfter:
		// INPUT | CONSTRUCT | DISPLAY | DIALOG | MENU | ROW | INSERT | DELETE | FIELD list | GROUP list
		ev := p.ts.Current()
		if !p.atIdent() && !ev.Kind.IsKeyword() {
			p.err(diag.SynExpectKeyword, "expected event after "+kw.Kind.String())
			ok = false
			break
		}
		p.advance()
		p.setName(id, ev)
		if ev.Kind == token.KwField || strings.EqualFold(ev.Text, "group") {
			ok = p.parseFieldList()
		}
	case token.KwOn:
		ok = p.parseOnEvent(id)
	case token.KwCommand:
		if p.eat(token.KwKey) {
			p.skipParens()
		}
		if p.at(token.StringLit) {
			name := p.advance()
			p.setName(id, name)
			if p.at(token.StringLit) {
				p.advance()
			}
		}
		if p.eatWord("help") {
			p.parseUnary()
		}
	}
	p.decorated(id)
	facts := p.parseBlock(id, ctx)
	p.close(id, ok)
	return facts
}

// ON ACTION a | ON KEY (list) | ON CHANGE fields | ON IDLE n | ON TIMER n |
// ON ROW CHANGE | ON FILL BUFFER | ON APPEND/INSERT/UPDATE/DELETE | ON SORT
func (p *Parser) parseOnEvent(id ast.NodeID) bool {
	ev := p.ts.Current()
	switch {
	case p.eat(token.KwAction):
		name, ok := p.expectIdent("action name")
		if ok {
			p.setName(id, name)
		}
		p.skipAttributes()
		return ok
	case p.eat(token.KwKey):
		p.setName(id, ev)
		p.skipParens()
		return true
	case p.eatWord("change"):
		p.setName(id, ev)
		return p.parseFieldList()
	case p.eatWord("idle"), p.eatWord("timer"):
		p.setName(id, ev)
		_, ok := p.parseUnary()
		return ok
	case p.eat(token.KwRow):
		p.setName(id, ev)
		p.eatWord("change")
		return true
	case p.eatWord("fill"):
		p.setName(id, ev)
		p.eatWord("buffer")
		return true
	case p.atIdent() || ev.Kind.IsKeyword():
		// APPEND, INSERT, UPDATE, DELETE, SORT, EXPAND, COLLAPSE, ...
		p.advance()
		p.setName(id, ev)
		p.skipAttributes()
		return true
	}
	p.err(diag.SynExpectKeyword, "expected event after ON, got "+describe(ev))
	return false
}

// DISPLAY FORM f | DISPLAY ARRAY a TO scr.* | DISPLAY BY NAME list |
// DISPLAY exprs [TO fields | AT r, c] [ATTRIBUTES(...)]
func (p *Parser) parseDisplay(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	switch p.peekKind(1) {
	case token.KwForm:
		id := p.open(ast.NodeDisplayForm, parent)
		p.advance()
		p.advance()
		name, ok := p.expectIdent("form name")
		if ok {
			p.setName(id, name)
		}
		p.skipAttributes()
		p.close(id, ok)
		return Facts{}, ok
	case token.KwArray:
		return p.parseDisplayArray(parent, ctx)
	}
	id := p.open(ast.NodeDisplay, parent)
	p.advance()
	ok := true
	if p.at(token.KwBy) && p.peekKind(1) == token.KwName {
		p.advance()
		p.advance()
		p.tree.Node(id).Flags |= ast.FlagByName
		var list []ast.ExprID
		list, ok = p.parseNameList()
		p.addExprs(id, list...)
	} else {
		var vals []ast.ExprID
		vals, ok = p.parseExprList()
		p.addExprs(id, vals...)
		switch {
		case !ok:
		case p.eat(token.KwTo):
			ok = p.parseFieldList()
		case p.eat(token.KwAt):
			var pos []ast.ExprID
			pos, ok = p.parseExprList()
			p.addExprs(id, pos...)
		}
	}
	p.skipAttributes()
	p.close(id, ok)
	return Facts{}, ok
}

// DISPLAY ARRAY a TO scr.* [ATTRIBUTES(...)] [blocks END DISPLAY]
func (p *Parser) parseDisplayArray(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	id := p.open(ast.NodeDisplayArray, parent)
	opener := p.advance()
	p.advance() // ARRAY
	ok := p.atNameStart()
	if ok {
		arr, aok := p.parseNamePath()
		p.addExprs(id, arr)
		ok = aok
	} else {
		p.err(diag.SynExpectIdentifier, "expected program array after DISPLAY ARRAY")
	}
	if ok {
		if _, ok = p.expect(token.KwTo, diag.SynExpectKeyword, "expected TO in DISPLAY ARRAY"); ok {
			ok = p.parseFieldList()
		}
	}
	p.skipAttributes()
	if !ok {
		p.skipToBoundary()
	}
	p.decorated(id)
	facts, _ := p.parseInteractiveTail(id, token.KwDisplay, opener, ctx)
	facts.Limited = append(facts.Limited, p.dialogFact(id))
	return facts, true
}

// INPUT BY NAME list | INPUT list FROM fields | INPUT ARRAY a FROM scr.*,
// each with [WITHOUT DEFAULTS] [ATTRIBUTES(...)] [HELP n] and optional
// control blocks.
func (p *Parser) parseInput(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	id := p.open(ast.NodeInput, parent)
	opener := p.advance()
	n := p.tree.Node(id)
	byName := false
	switch {
	case p.at(token.KwBy) && p.peekKind(1) == token.KwName:
		p.advance()
		p.advance()
		n.Flags |= ast.FlagByName
		byName = true
	case p.eat(token.KwArray):
		n.Flags |= ast.FlagArray
	}
	list, ok := p.parseNameList()
	p.addExprs(id, list...)
	if ok && p.eat(token.KwWithout) {
		p.eatWord("defaults")
	}
	if ok && !byName {
		if _, ok = p.expect(token.KwFrom, diag.SynExpectKeyword, "expected FROM in INPUT"); ok {
			ok = p.parseFieldList()
		}
	}
	p.skipAttributes()
	if ok && p.eatWord("help") {
		_, ok = p.parseUnary()
	}
	if !ok {
		p.skipToBoundary()
	}
	p.decorated(id)
	facts, _ := p.parseInteractiveTail(id, token.KwInput, opener, ctx)
	facts.Limited = append(facts.Limited, p.dialogFact(id))
	return facts, true
}

// CONSTRUCT BY NAME v ON cols | CONSTRUCT v ON cols FROM fields
func (p *Parser) parseConstruct(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	id := p.open(ast.NodeConstruct, parent)
	opener := p.advance()
	byName := false
	if p.at(token.KwBy) && p.peekKind(1) == token.KwName {
		p.advance()
		p.advance()
		p.tree.Node(id).Flags |= ast.FlagByName
		byName = true
	}
	ok := p.atNameStart()
	if ok {
		v, vok := p.parseNamePath()
		p.addExprs(id, v)
		ok = vok
	} else {
		p.err(diag.SynExpectIdentifier, "expected variable after CONSTRUCT")
	}
	if ok {
		if _, ok = p.expect(token.KwOn, diag.SynExpectKeyword, "expected ON in CONSTRUCT"); ok {
			// колонки таблиц, не переменные программы
			ok = p.parseFieldList()
		}
	}
	if ok && !byName {
		if _, ok = p.expect(token.KwFrom, diag.SynExpectKeyword, "expected FROM in CONSTRUCT"); ok {
			ok = p.parseFieldList()
		}
	}
	p.skipAttributes()
	if !ok {
		p.skipToBoundary()
	}
	p.decorated(id)
	facts, _ := p.parseInteractiveTail(id, token.KwConstruct, opener, ctx)
	facts.Limited = append(facts.Limited, p.dialogFact(id))
	return facts, true
}

// MENU [title] [ATTRIBUTES(...)] blocks END MENU
func (p *Parser) parseMenu(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	id := p.open(ast.NodeMenu, parent)
	opener := p.advance()
	ok := true
	if p.atExprStart() {
		var title ast.ExprID
		title, ok = p.parseExpr()
		p.addExprs(id, title)
	}
	p.skipAttributes()
	p.decorated(id)
	inner := ctx.withLoop(token.KwMenu)
	inner.interactive = true
	facts := p.parseControlBlocks(id, inner, false)
	complete := p.parseEnd(token.KwMenu, opener) && ok
	p.close(id, complete)
	facts.Limited = append(facts.Limited, p.dialogFact(id))
	return facts, true
}

// DIALOG [ATTRIBUTES(...)] {sub-dialog | block} END DIALOG
func (p *Parser) parseDialog(parent ast.NodeID, ctx blockContext) (Facts, bool) {
	id := p.open(ast.NodeDialog, parent)
	opener := p.advance()
	p.skipAttributes()
	p.decorated(id)
	inner := ctx.withLoop(token.KwDialog)
	inner.interactive = true
	facts := p.parseControlBlocks(id, inner, true)
	complete := p.parseEnd(token.KwDialog, opener)
	p.close(id, complete)
	facts.Limited = append(facts.Limited, p.dialogFact(id))
	return facts, true
}

// OPEN WINDOW w [AT r, c] WITH {FORM f | n ROWS, m COLUMNS} [ATTRIBUTES(...)]
func (p *Parser) parseOpenWindow(parent ast.NodeID) bool {
	id := p.open(ast.NodeOpenWindow, parent)
	p.advance()
	p.advance() // WINDOW
	name, ok := p.expectIdent("window name")
	if !ok {
		p.close(id, false)
		return false
	}
	p.setName(id, name)
	if p.eat(token.KwAt) {
		var pos []ast.ExprID
		pos, ok = p.parseExprList()
		p.addExprs(id, pos...)
	}
	if ok {
		if _, ok = p.expect(token.KwWith, diag.SynExpectKeyword, "expected WITH in OPEN WINDOW"); ok {
			if p.eat(token.KwForm) {
				var f ast.ExprID
				f, ok = p.parseExpr()
				p.addExprs(id, f)
			} else {
				// n ROWS, m COLUMNS
				var rows ast.ExprID
				rows, ok = p.parseUnary()
				p.addExprs(id, rows)
				p.eatWord("rows")
				if ok && p.eat(token.Comma) {
					var cols ast.ExprID
					cols, ok = p.parseUnary()
					p.addExprs(id, cols)
					p.eatWord("columns")
				}
			}
		}
	}
	p.skipAttributes()
	p.close(id, ok)
	return ok
}

// OPEN FORM f FROM file
func (p *Parser) parseOpenForm(parent ast.NodeID) bool {
	id := p.open(ast.NodeOpenForm, parent)
	p.advance()
	p.advance() // FORM
	name, ok := p.expectIdent("form name")
	if ok {
		p.setName(id, name)
		if _, ok = p.expect(token.KwFrom, diag.SynExpectKeyword, "expected FROM in OPEN FORM"); ok {
			var f ast.ExprID
			f, ok = p.parseExpr()
			p.addExprs(id, f)
		}
	}
	p.close(id, ok)
	return ok
}

// ACCEPT INPUT | CONSTRUCT | DISPLAY | DIALOG
func (p *Parser) parseAccept(parent ast.NodeID, ctx blockContext) bool {
	id := p.open(ast.NodeAccept, parent)
	kw := p.advance()
	target := p.ts.Current()
	switch target.Kind {
	case token.KwInput, token.KwConstruct, token.KwDisplay, token.KwDialog:
		p.advance()
		p.tree.Node(id).Keyword = target.Kind
	default:
		p.err(diag.SynExpectKeyword, "expected INPUT, CONSTRUCT, DISPLAY or DIALOG after ACCEPT")
		p.close(id, false)
		return false
	}
	if !ctx.interactive {
		p.report(diag.SynNotAllowedHere, diag.SevError, kw.Span.Cover(target.Span), "ACCEPT outside of a dialog")
	}
	p.close(id, true)
	return true
}

// NEXT FIELD {name | NEXT | PREVIOUS | CURRENT} | NEXT OPTION name
func (p *Parser) parseNextField(parent ast.NodeID, ctx blockContext) bool {
	id := p.open(ast.NodeNextField, parent)
	kw := p.advance()
	ok := true
	switch {
	case p.eat(token.KwField):
		switch {
		case p.eat(token.KwNext), p.eat(token.KwPrevious), p.eat(token.KwCurrent):
		default:
			ok = p.parseFieldList()
		}
	case p.eatWord("option"):
		_, ok = p.parseExpr()
	default:
		p.err(diag.SynExpectKeyword, "expected FIELD or OPTION after NEXT")
		ok = false
	}
	if !ctx.interactive {
		p.report(diag.SynNotAllowedHere, diag.SevError, kw.Span, "NEXT FIELD outside of a dialog")
	}
	p.close(id, ok)
	return ok
}
