package parser

import (
	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/token"
	"fglsense/internal/types"
)

func (p *Parser) symbolFlags(flags ast.NodeFlags) symbols.SymbolFlags {
	var out symbols.SymbolFlags
	if flags.Has(ast.FlagPublic) {
		out |= symbols.SymbolFlagPublic
	}
	if flags.Has(ast.FlagGlobal) {
		out |= symbols.SymbolFlagGlobal
	}
	return out
}

func (p *Parser) newSymbol(kind symbols.SymbolKind, name token.Token, node ast.NodeID, flags ast.NodeFlags) *symbols.Symbol {
	return &symbols.Symbol{
		Name:   name.Text,
		Kind:   kind,
		Flags:  p.symbolFlags(flags),
		Span:   name.Span,
		Path:   p.file.Path,
		Module: p.mod.Name,
		Node:   node,
	}
}

// resolveTypeRef converts a parsed type node, reporting duplicate record
// fields.
func (p *Parser) resolveTypeRef(id ast.NodeID) *types.Type {
	if !id.IsValid() {
		return nil
	}
	return types.FromTypeRef(p.tree, p.file, id, func(name string, sp source.Span) {
		p.report(diag.SynDuplicateField, diag.SevError, sp, "duplicate record field \""+name+"\"")
	})
}

// parseVarGroup parses "name {, name} type" into VarDef nodes sharing one
// TypeRef, all attached to parent.
func (p *Parser) parseVarGroup(parent ast.NodeID, flags ast.NodeFlags) ([]*symbols.Symbol, bool) {
	var defs []ast.NodeID
	var names []token.Token
	for {
		name, ok := p.expectIdent("variable name")
		if !ok {
			return nil, false
		}
		def := p.openAt(ast.NodeVarDef, parent, name.Span.Start)
		p.setName(def, name)
		p.tree.Node(def).Flags = flags
		p.close(def, true)
		defs = append(defs, def)
		names = append(names, name)
		// за именем идёт либо запятая и следующее имя, либо тип
		if !p.eat(token.Comma) {
			break
		}
	}
	typeID, ok := p.parseTypeRef(parent)
	if !ok && !typeID.IsValid() {
		// без типа переменные всё равно объявлены
		for _, def := range defs {
			p.tree.Node(def).Complete = false
		}
	}
	var typ *types.Type
	if pn := p.tree.Node(parent); pn == nil || pn.Kind != ast.NodeTypeRef {
		// поля записи конвертирует внешний тип
		typ = p.resolveTypeRef(typeID)
	}
	out := make([]*symbols.Symbol, 0, len(defs))
	for i, def := range defs {
		p.tree.Node(def).Type = typeID
		sym := p.newSymbol(symbols.SymbolVariable, names[i], def, flags)
		sym.Type = typ
		out = append(out, sym)
	}
	return out, ok
}

// DEFINE group {, group}
func (p *Parser) parseDefine(parent ast.NodeID, flags ast.NodeFlags, start uint32) (ast.NodeID, Facts, bool) {
	id := p.openAt(ast.NodeDefine, parent, start)
	p.tree.Node(id).Flags = flags
	p.advance()
	var facts Facts
	ok := true
	for {
		syms, gok := p.parseVarGroup(id, flags)
		facts.Vars = append(facts.Vars, syms...)
		if !gok {
			ok = false
			break
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	p.close(id, ok)
	return id, facts, ok
}

// CONSTANT name [type] = value {, ...}
func (p *Parser) parseConstant(parent ast.NodeID, flags ast.NodeFlags, start uint32) (ast.NodeID, Facts, bool) {
	id := p.openAt(ast.NodeConstant, parent, start)
	p.tree.Node(id).Flags = flags
	p.advance()
	var facts Facts
	ok := true
	for {
		name, nok := p.expectIdent("constant name")
		if !nok {
			ok = false
			break
		}
		def := p.openAt(ast.NodeConstDef, id, name.Span.Start)
		p.setName(def, name)
		var typeID ast.NodeID
		if !p.at(token.Eq) && p.atTypeStart() {
			typeID, _ = p.parseTypeRef(id)
		}
		var value ast.ExprID
		if _, eok := p.expect(token.Eq, diag.SynUnexpectedToken, "expected '=' in constant definition"); eok {
			var vok bool
			value, vok = p.parseExpr()
			ok = ok && vok
		} else {
			ok = false
		}
		n := p.tree.Node(def)
		n.Type = typeID
		n.Flags = flags
		p.addExprs(def, value)
		p.close(def, ok)

		sym := p.newSymbol(symbols.SymbolConstant, name, def, flags)
		sym.Type = p.constantType(typeID, value)
		sym.Value = p.tree.ExprText(p.file, value)
		facts.Constants = append(facts.Constants, sym)
		if !ok || !p.eat(token.Comma) {
			break
		}
	}
	p.close(id, ok)
	return id, facts, ok
}

func (p *Parser) constantType(typeID ast.NodeID, value ast.ExprID) *types.Type {
	if typeID.IsValid() {
		return p.resolveTypeRef(typeID)
	}
	e := p.tree.Expr(value)
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ast.ExprIntLit:
		return types.Integer
	case ast.ExprDecLit:
		return types.Decimal
	case ast.ExprStringLit:
		return types.String
	case ast.ExprBoolLit:
		return types.Boolean
	}
	return nil
}

// TYPE name type {, name type}
func (p *Parser) parseTypeDecl(parent ast.NodeID, flags ast.NodeFlags, start uint32) (ast.NodeID, Facts, bool) {
	id := p.openAt(ast.NodeTypeDecl, parent, start)
	p.tree.Node(id).Flags = flags
	p.advance()
	var facts Facts
	ok := true
	for {
		name, nok := p.expectIdent("type name")
		if !nok {
			ok = false
			break
		}
		def := p.openAt(ast.NodeTypeDef, id, name.Span.Start)
		p.setName(def, name)
		p.tree.Node(def).Flags = flags
		p.close(def, true)
		typeID, tok := p.parseTypeRef(id)
		p.tree.Node(def).Type = typeID
		sym := p.newSymbol(symbols.SymbolType, name, def, flags)
		sym.Type = p.resolveTypeRef(typeID)
		facts.Types = append(facts.Types, sym)
		if !tok {
			ok = false
			break
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	p.close(id, ok)
	return id, facts, ok
}
