package parser

import (
	"strings"

	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/token"
)

// IMPORT FGL name | IMPORT JAVA a.b.C | IMPORT pkg
func (p *Parser) parseImport(root ast.NodeID) bool {
	id := p.open(ast.NodeImport, root)
	p.advance()
	kind := ast.ImportPackage
	switch {
	case p.eat(token.KwFgl):
		kind = ast.ImportFGL
	case p.eat(token.KwJava):
		kind = ast.ImportJava
	}
	first, ok := p.expectIdent("module name")
	if !ok {
		p.close(id, false)
		return false
	}
	parts := []string{first.Text}
	last := first
	for p.at(token.Dot) {
		p.advance()
		if !p.at(token.Ident) && !p.ts.Current().Kind.IsKeyword() {
			p.err(diag.SynExpectIdentifier, "expected name after '.' in import path")
			ok = false
			break
		}
		last = p.advance()
		parts = append(parts, last.Text)
	}
	path := strings.Join(parts, ".")
	p.setName(id, last)
	p.tree.Node(id).Payload = p.tree.NewImport(ast.ImportDecl{Kind: kind, Path: path, Alias: last.Text})
	p.mod.Imports = append(p.mod.Imports, symbols.Import{Name: last.Text, Path: path, Kind: kind, Span: first.Span.Cover(last.Span)})
	p.close(id, ok)
	return ok
}

// SCHEMA db | DATABASE db[@server]; also valid as a statement.
func (p *Parser) parseSchema(parent ast.NodeID) (ast.NodeID, bool) {
	id := p.open(ast.NodeSchema, parent)
	kw := p.advance()
	p.tree.Node(id).Keyword = kw.Kind
	name, ok := p.expectIdent("database name")
	if ok {
		p.setName(id, name)
		if p.mod.Schema == "" {
			p.mod.Schema = name.Text
		}
		// db@server
		if p.at(token.At) {
			p.advance()
			p.expectIdent("server name")
		}
	}
	p.close(id, ok)
	return id, ok
}

// GLOBALS "file" | GLOBALS decls END GLOBALS
func (p *Parser) parseGlobals(root ast.NodeID) bool {
	if p.peekKind(1) == token.StringLit {
		id := p.open(ast.NodeGlobalsFile, root)
		p.advance()
		file := p.advance()
		path := unquote(file.Text)
		n := p.tree.Node(id)
		n.Name = path
		n.NameSpan = file.Span
		p.mod.GlobalsFiles = append(p.mod.GlobalsFiles, symbols.IncludeRef{Path: path, Span: file.Span})
		p.close(id, true)
		return true
	}
	id := p.open(ast.NodeGlobals, root)
	opener := p.advance()
	p.decorated(id)
	var facts Facts
loop:
	for !p.at(token.EOF) && !p.at(token.KwEnd) {
		start := p.ts.Current().Span.Start
		var f Facts
		switch p.ts.Current().Kind {
		case token.KwDefine:
			_, f, _ = p.parseDefine(id, ast.FlagGlobal, start)
		case token.KwConstant:
			_, f, _ = p.parseConstant(id, ast.FlagGlobal, start)
		case token.KwType:
			_, f, _ = p.parseTypeDecl(id, ast.FlagGlobal, start)
		default:
			if isModuleStarter(p.ts.Current().Kind) {
				break loop
			}
			p.err(diag.SynNotAllowedHere, "only DEFINE, CONSTANT and TYPE are allowed in GLOBALS")
			p.advance()
			p.skipToBoundary()
		}
		facts.Merge(f)
	}
	p.bindGlobals(facts)
	ok := p.parseEnd(token.KwGlobals, opener)
	p.close(id, ok)
	return true
}

// module-level DEFINE/CONSTANT/TYPE; DEFINE is private unless PUBLIC.
func (p *Parser) parseModuleDecl(root ast.NodeID, flags ast.NodeFlags, modSpan source.Span) bool {
	var (
		f  Facts
		ok bool
	)
	switch p.ts.Current().Kind {
	case token.KwDefine:
		_, f, ok = p.parseDefine(root, flags, modSpan.Start)
	case token.KwConstant:
		_, f, ok = p.parseConstant(root, flags, modSpan.Start)
	default:
		_, f, ok = p.parseTypeDecl(root, flags, modSpan.Start)
	}
	p.bindModule(f)
	return ok
}

// [PUBLIC|PRIVATE] FUNCTION name ( params ) [RETURNS ...] body END FUNCTION
func (p *Parser) parseFunction(root ast.NodeID, flags ast.NodeFlags, modSpan source.Span) bool {
	id := p.openAt(ast.NodeFunction, root, modSpan.Start)
	opener := p.advance()
	p.tree.Node(id).Flags = flags
	name, ok := p.expectIdent("function name")
	if ok {
		p.setName(id, name)
	}
	fd := ast.FuncDecl{}
	fr := symbols.NewFunctionResult(nil, id, modSpan)
	if p.at(token.LParen) {
		fd.Params = p.parseParams(id, fr)
	} else if ok {
		p.err(diag.SynUnexpectedToken, "expected '(' after function name")
	}
	if p.eat(token.KwReturns) {
		fd.Returns = p.parseReturns(id)
	}
	p.decorated(id)
	bodyStart := p.lastSpan.End

	facts := p.parseBlock(id, blockContext{inFunction: true})
	fd.Body = spanBetween(p.file.ID, bodyStart, p.ts.Current().Span.Start)
	complete := p.parseEnd(token.KwFunction, opener) && ok
	p.tree.Node(id).Payload = p.tree.NewFunc(fd)
	p.close(id, complete)

	p.finishFunction(id, fr, name, flags, symbols.SymbolFunction, fd, facts)
	return true
}

// parseParams parses "( [p [type] {, p [type]}] )". Inline-typed params are
// declared in fr right away.
func (p *Parser) parseParams(owner ast.NodeID, fr *symbols.FunctionResult) []ast.Param {
	open := p.advance()
	var params []ast.Param
	for !p.at(token.RParen) && !p.at(token.EOF) {
		name, ok := p.expectIdent("parameter name")
		if !ok {
			break
		}
		prm := ast.Param{Name: name.Text, Span: name.Span}
		if !p.atAny(token.Comma, token.RParen) && p.atTypeStart() {
			prm.Type, _ = p.parseTypeRef(owner)
			sym := p.newSymbol(symbols.SymbolParam, name, owner, 0)
			sym.Type = p.resolveTypeRef(prm.Type)
			p.declare(fr.Locals, []*symbols.Symbol{sym})
		}
		params = append(params, prm)
		if !p.eat(token.Comma) {
			break
		}
	}
	if !p.eat(token.RParen) {
		p.report(diag.SynUnclosedParen, diag.SevError, open.Span, "unclosed parameter list")
		// до конца строки параметров дальше не продвигаемся
	}
	return params
}

// RETURNS type | RETURNS ( [type {, type}] )
func (p *Parser) parseReturns(owner ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	if p.at(token.LParen) {
		open := p.advance()
		for !p.at(token.RParen) && !p.at(token.EOF) {
			t, ok := p.parseTypeRef(owner)
			if t.IsValid() {
				out = append(out, t)
			}
			if !ok || !p.eat(token.Comma) {
				break
			}
		}
		if !p.eat(token.RParen) {
			p.report(diag.SynUnclosedParen, diag.SevError, open.Span, "unclosed RETURNS list")
		}
		return out
	}
	if t, _ := p.parseTypeRef(owner); t.IsValid() {
		out = append(out, t)
	}
	return out
}

// finishFunction binds the body facts, completes parameter symbols and
// registers the function.
func (p *Parser) finishFunction(id ast.NodeID, fr *symbols.FunctionResult, name token.Token, flags ast.NodeFlags,
	kind symbols.SymbolKind, fd ast.FuncDecl, facts Facts) {
	fr.Span = p.tree.Node(id).Span
	p.bindFunction(fr, facts)

	sig := &symbols.Signature{}
	for _, prm := range fd.Params {
		sym, found := fr.Locals.Lookup(prm.Name)
		if found {
			// классический стиль: параметр типизирован через DEFINE в теле
			sym.Kind = symbols.SymbolParam
		} else {
			sym = &symbols.Symbol{Name: prm.Name, Kind: symbols.SymbolParam, Span: prm.Span,
				Path: p.file.Path, Module: p.mod.Name, Node: id}
			fr.Locals.Add(sym)
		}
		sig.Params = append(sig.Params, symbols.Param{Name: prm.Name, Type: sym.Type})
	}
	for _, r := range fd.Returns {
		sig.Returns = append(sig.Returns, p.resolveTypeRef(r))
	}

	var symFlags symbols.SymbolFlags
	if !flags.Has(ast.FlagPrivate) {
		symFlags = symbols.SymbolFlagPublic
	}
	fsym := &symbols.Symbol{
		Name:      name.Text,
		Kind:      kind,
		Flags:     symFlags,
		Span:      name.Span,
		Path:      p.file.Path,
		Module:    p.mod.Name,
		Node:      id,
		Signature: sig,
	}
	fr.Symbol = fsym
	p.mod.AddFunctionScope(fr)
	if name.Kind != token.Invalid && name.Text != "" {
		p.declare(p.mod.Functions, []*symbols.Symbol{fsym})
	}
}

// MAIN body END MAIN
func (p *Parser) parseMain(root ast.NodeID) bool {
	id := p.open(ast.NodeMain, root)
	opener := p.advance()
	if p.sawMain {
		p.report(diag.SynDuplicateMain, diag.SevError, opener.Span, "MAIN is already defined in this module")
	}
	p.sawMain = true
	p.setName(id, opener)
	p.decorated(id)
	bodyStart := p.lastSpan.End
	facts := p.parseBlock(id, blockContext{inFunction: true})
	fd := ast.FuncDecl{Body: spanBetween(p.file.ID, bodyStart, p.ts.Current().Span.Start)}
	complete := p.parseEnd(token.KwMain, opener)
	p.tree.Node(id).Payload = p.tree.NewFunc(fd)
	p.close(id, complete)

	fr := symbols.NewFunctionResult(nil, id, p.tree.Node(id).Span)
	p.bindFunction(fr, facts)
	fr.Symbol = &symbols.Symbol{Name: "main", Kind: symbols.SymbolFunction, Span: opener.Span,
		Path: p.file.Path, Module: p.mod.Name, Node: id, Signature: &symbols.Signature{}}
	p.mod.AddFunctionScope(fr)
	return true
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
