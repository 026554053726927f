package parser

import (
	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/source"
	"fglsense/internal/token"
)

// advance - съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.ts.Advance()
	if tok.Kind != token.EOF {
		p.lastSpan = tok.Span
	}
	return tok
}

// getDiagnosticSpan - на EOF показываем позицию сразу после последнего токена.
func (p *Parser) getDiagnosticSpan() source.Span {
	cur := p.ts.Current()
	if cur.Kind == token.EOF {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return cur.Span
}

// expect - ожидаем конкретный токен. Если нет - репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	sp := p.getDiagnosticSpan()
	p.report(code, diag.SevError, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp}, false
}

// eat consumes the current token when it has kind k.
func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// eatWord consumes an identifier with the given text.
func (p *Parser) eatWord(word string) bool {
	if p.atWord(word) {
		p.advance()
		return true
	}
	return false
}

// expectIdent accepts an identifier or a non-reserved keyword.
func (p *Parser) expectIdent(what string) (token.Token, bool) {
	if p.atIdent() {
		return p.advance(), true
	}
	p.err(diag.SynExpectIdentifier, "expected "+what+", got "+describe(p.ts.Current()))
	return token.Token{Kind: token.Invalid, Span: p.getDiagnosticSpan()}, false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if p.opts.Reporter == nil {
		return false
	}
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.opts.Enough() {
		return false // достигли максимального количества ошибок
	}
	p.opts.Reporter.Report(diag.New(sev, code, sp, msg))
	return true
}

// reportNote reports an error with one secondary location.
func (p *Parser) reportNote(code diag.Code, sp source.Span, msg string, noteSp source.Span, note string) {
	if p.opts.Reporter == nil {
		return
	}
	p.opts.CurrentErrors++
	if p.opts.Enough() {
		return
	}
	diag.ReportError(p.opts.Reporter, code, sp, msg).WithNote(noteSp, note).Emit()
}

// open creates a node starting at the current token and attaches it to
// parent.
func (p *Parser) open(kind ast.NodeKind, parent ast.NodeID) ast.NodeID {
	start := p.ts.Current().Span.Start
	if p.at(token.EOF) {
		start = p.lastSpan.End
	}
	return p.openAt(kind, parent, start)
}

func (p *Parser) openAt(kind ast.NodeKind, parent ast.NodeID, start uint32) ast.NodeID {
	id := p.tree.NewNode(kind, source.Span{File: p.file.ID, Start: start, End: start})
	if parent.IsValid() {
		p.tree.AddChild(parent, id)
	}
	return id
}

// close extends the node to the last consumed token.
func (p *Parser) close(id ast.NodeID, complete bool) {
	p.tree.Finish(id, p.lastSpan.End, complete)
}

// decorated marks the end of the introducing clause of a node.
func (p *Parser) decorated(id ast.NodeID) {
	if n := p.tree.Node(id); n != nil {
		n.DecoratorEnd = p.lastSpan.End
	}
}

func (p *Parser) addDecorator(id ast.NodeID, sp source.Span) {
	if n := p.tree.Node(id); n != nil {
		n.ExtraDecorators = append(n.ExtraDecorators, sp)
	}
}

func (p *Parser) setName(id ast.NodeID, tok token.Token) {
	if n := p.tree.Node(id); n != nil {
		n.Name = tok.Text
		n.NameSpan = tok.Span
	}
}

func (p *Parser) addExprs(id ast.NodeID, exprs ...ast.ExprID) {
	n := p.tree.Node(id)
	if n == nil {
		return
	}
	for _, e := range exprs {
		if e.IsValid() {
			n.Exprs = append(n.Exprs, e)
		}
	}
}

// skipParens consumes a balanced (...) group if the current token opens one.
func (p *Parser) skipParens() {
	if !p.at(token.LParen) {
		return
	}
	open := p.advance()
	depth := 1
	for depth > 0 && !p.at(token.EOF) {
		switch p.advance().Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
		}
	}
	if depth > 0 {
		p.report(diag.SynUnclosedParen, diag.SevError, open.Span, "unclosed parenthesis")
	}
}

// skipAttributes consumes an optional ATTRIBUTES(...) clause.
func (p *Parser) skipAttributes() {
	if p.eat(token.KwAttributes) {
		p.skipParens()
	}
}

// skipToBoundary consumes tokens up to the next statement starter, block
// terminator or EOF, keeping parentheses balanced.
func (p *Parser) skipToBoundary() {
	depth := 0
	for !p.at(token.EOF) {
		k := p.ts.Current().Kind
		if depth == 0 && (isStatementStarter(k) || isBlockTerminator(k) || isModuleStarter(k)) {
			// SELECT ... FOR UPDATE
			if k != token.KwFor || p.peekKind(1) != token.KwUpdate {
				return
			}
			p.advance()
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

// spanBetween builds a span from raw offsets; end never precedes start.
func spanBetween(file source.FileID, start, end uint32) source.Span {
	if end < start {
		end = start
	}
	return source.Span{File: file, Start: start, End: end}
}
