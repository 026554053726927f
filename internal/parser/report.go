package parser

import (
	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/token"
	"fglsense/internal/types"
)

// [PUBLIC|PRIVATE] REPORT name (params)
//
//	[DEFINE ...] [OUTPUT ...] [ORDER [EXTERNAL] BY ...]
//	FORMAT {EVERY ROW | section ...}
//
// END REPORT
func (p *Parser) parseReport(root ast.NodeID, flags ast.NodeFlags, modSpan source.Span) bool {
	id := p.openAt(ast.NodeReport, root, modSpan.Start)
	opener := p.advance()
	p.tree.Node(id).Flags = flags
	name, ok := p.expectIdent("report name")
	if ok {
		p.setName(id, name)
	}
	fd := ast.FuncDecl{}
	fr := symbols.NewFunctionResult(nil, id, modSpan)
	if p.at(token.LParen) {
		fd.Params = p.parseParams(id, fr)
	} else if ok {
		p.err(diag.SynUnexpectedToken, "expected '(' after report name")
	}
	p.decorated(id)
	bodyStart := p.lastSpan.End

	ctx := blockContext{inFunction: true, inReport: true}.withExit(token.KwReport)
	facts := p.parseReportHeader(id, ctx)
	if p.at(token.KwFormat) {
		facts.Merge(p.parseFormat(id, ctx))
	} else if !p.at(token.KwEnd) {
		p.err(diag.SynExpectKeyword, "expected FORMAT in report, got "+describe(p.ts.Current()))
	}
	fd.Body = spanBetween(p.file.ID, bodyStart, p.ts.Current().Span.Start)
	complete := p.parseEnd(token.KwReport, opener) && ok
	p.tree.Node(id).Payload = p.tree.NewFunc(fd)
	p.close(id, complete)

	p.finishFunction(id, fr, name, flags, symbols.SymbolReport, fd, facts)
	return true
}

// parseReportHeader parses the part of a report before FORMAT.
func (p *Parser) parseReportHeader(id ast.NodeID, ctx blockContext) Facts {
	var facts Facts
	for !p.at(token.KwFormat) && !p.at(token.KwEnd) && !p.at(token.EOF) {
		switch {
		case p.at(token.KwDefine):
			_, f, dok := p.parseDefine(id, 0, p.ts.Current().Span.Start)
			facts.Merge(f)
			if !dok {
				p.skipToBoundary()
			}
		case p.atWord("output"), p.atWord("order"):
			// OUTPUT REPORT TO ... PAGE LENGTH n | ORDER [EXTERNAL] BY cols
			p.skipReportClause(id)
		case isModuleStarter(p.ts.Current().Kind) && !isStatementStarter(p.ts.Current().Kind):
			return facts
		default:
			p.badStatement(id)
		}
	}
	return facts
}

// skipReportClause records OUTPUT/ORDER BY sections. PAGE and FIRST are
// part of them here, so skipToBoundary cannot be used.
func (p *Parser) skipReportClause(parent ast.NodeID) {
	id := p.open(ast.NodeSQL, parent)
	kw := p.advance()
	p.setName(id, kw)
	for !p.at(token.EOF) && !p.at(token.KwFormat) && !p.at(token.KwEnd) && !p.at(token.KwDefine) &&
		!p.atWord("output") && !p.atWord("order") {
		p.advance()
	}
	p.close(id, true)
}

// FORMAT {EVERY ROW | section {section}}
func (p *Parser) parseFormat(report ast.NodeID, ctx blockContext) Facts {
	id := p.open(ast.NodeFormat, report)
	p.advance()
	p.decorated(id)
	var facts Facts
	if p.atWord("every") {
		p.advance()
		p.expect(token.KwRow, diag.SynExpectKeyword, "expected ROW after EVERY")
	} else {
		for p.at(token.KwFirst) || p.at(token.KwPage) || p.at(token.KwOn) ||
			p.at(token.KwBefore) || p.at(token.KwAfter) {
			facts.Merge(p.parseFormatBlock(id, ctx))
		}
		if !p.at(token.KwEnd) && !p.at(token.EOF) {
			p.err(diag.SynUnexpectedToken, "expected report section, got "+describe(p.ts.Current()))
		}
	}
	p.close(id, true)

	// PAGENO и LINENO видны только внутри FORMAT
	scope := p.tree.Node(id).Span
	for _, name := range []string{"PAGENO", "LINENO"} {
		sym := &symbols.Symbol{
			Name:   name,
			Kind:   symbols.SymbolVariable,
			Flags:  symbols.SymbolFlagLimited | symbols.SymbolFlagSystem,
			Type:   types.Integer,
			Span:   source.Span{File: scope.File, Start: scope.Start, End: scope.Start},
			Path:   p.file.Path,
			Module: p.mod.Name,
			Node:   id,
		}
		facts.Limited = append(facts.Limited, symbols.LimitedVar{Symbol: sym, Scope: scope})
	}
	return facts
}

// FIRST PAGE HEADER | PAGE HEADER | PAGE TRAILER | ON EVERY ROW |
// ON LAST ROW | BEFORE GROUP OF e | AFTER GROUP OF e
func (p *Parser) parseFormatBlock(format ast.NodeID, ctx blockContext) Facts {
	id := p.open(ast.NodeFormatBlock, format)
	kw := p.advance()
	p.tree.Node(id).Keyword = kw.Kind
	ok := true
	switch kw.Kind {
	case token.KwFirst:
		_, ok = p.expect(token.KwPage, diag.SynExpectKeyword, "expected PAGE after FIRST")
		ok = ok && p.expectWord("header")
	case token.KwPage:
		if !p.eatWord("header") && !p.eatWord("trailer") {
			p.err(diag.SynExpectKeyword, "expected HEADER or TRAILER after PAGE")
			ok = false
		}
	case token.KwOn:
		if !p.eatWord("every") && !p.eat(token.KwLast) {
			p.err(diag.SynExpectKeyword, "expected EVERY or LAST after ON")
			ok = false
		}
		if ok {
			_, ok = p.expect(token.KwRow, diag.SynExpectKeyword, "expected ROW")
		}
	case token.KwBefore, token.KwAfter:
		ok = p.expectWord("group")
		if ok {
			_, ok = p.expect(token.KwOf, diag.SynExpectKeyword, "expected OF after GROUP")
		}
		if ok {
			var e ast.ExprID
			e, ok = p.parseExpr()
			p.addExprs(id, e)
		}
	}
	p.tree.Node(id).Name = p.file.Slice(kw.Span.Cover(p.lastSpan))
	p.decorated(id)
	facts := p.parseBlock(id, ctx)
	p.close(id, ok)
	return facts
}

func (p *Parser) expectWord(word string) bool {
	if p.eatWord(word) {
		return true
	}
	p.err(diag.SynExpectKeyword, "expected "+word+", got "+describe(p.ts.Current()))
	return false
}

// PRINT [item {, | ; item}] [;]. Items are expressions, COLUMN n,
// n SPACES, e WORDWRAP [RIGHT MARGIN n] or FILE "name".
func (p *Parser) parsePrint(parent ast.NodeID, ctx blockContext) bool {
	id := p.open(ast.NodePrint, parent)
	kw := p.advance()
	if !ctx.inReport {
		p.report(diag.SynNotAllowedHere, diag.SevError, kw.Span, "PRINT outside of a report")
	}
	ok := true
	for ok {
		switch {
		case p.atWord("column"):
			p.advance()
			var e ast.ExprID
			e, ok = p.parseUnary()
			p.addExprs(id, e)
		case p.atWord("file"):
			p.advance()
			var e ast.ExprID
			e, ok = p.parseExpr()
			p.addExprs(id, e)
		case p.atExprStart():
			var e ast.ExprID
			e, ok = p.parseExpr()
			p.addExprs(id, e)
			if p.eatWord("spaces") || p.eatWord("space") {
				break
			}
			if p.eatWord("wordwrap") {
				if p.eatWord("right") {
					p.eatWord("margin")
					_, ok = p.parseUnary()
				}
			}
		}
		if !p.eat(token.Comma) && !p.eat(token.Semicolon) {
			break
		}
	}
	p.close(id, ok)
	return ok
}

// SKIP n {LINE | LINES} | SKIP TO TOP OF PAGE
func (p *Parser) parseSkip(parent ast.NodeID, ctx blockContext) bool {
	id := p.open(ast.NodeSkip, parent)
	kw := p.advance()
	if !ctx.inReport {
		p.report(diag.SynNotAllowedHere, diag.SevError, kw.Span, "SKIP outside of a report")
	}
	ok := true
	if p.eat(token.KwTo) {
		ok = p.expectWord("top")
		if ok {
			p.eat(token.KwOf)
			_, ok = p.expect(token.KwPage, diag.SynExpectKeyword, "expected PAGE")
		}
	} else {
		var n ast.ExprID
		n, ok = p.parseUnary()
		p.addExprs(id, n)
		if ok && !p.eatWord("line") && !p.eatWord("lines") {
			p.err(diag.SynExpectKeyword, "expected LINE or LINES")
			ok = false
		}
	}
	p.close(id, ok)
	return ok
}
