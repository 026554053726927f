package parser

import (
	"strconv"
	"strings"

	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/token"
)

// максимальное число измерений статического массива
const maxArrayDims = 3

func scalarTypeName(k token.Kind) (string, bool) {
	switch k {
	case token.KwInteger, token.KwSmallint, token.KwBigint, token.KwTinyint, token.KwFloat,
		token.KwSmallfloat, token.KwDecimal, token.KwMoney, token.KwChar, token.KwVarchar,
		token.KwString, token.KwDate, token.KwDatetime, token.KwInterval, token.KwBoolean,
		token.KwByte, token.KwText, token.KwSerial:
		return strings.ToLower(k.String()), true
	default:
		return "", false
	}
}

// atTypeStart reports whether the current token may begin a type.
func (p *Parser) atTypeStart() bool {
	k := p.ts.Current().Kind
	if _, ok := scalarTypeName(k); ok {
		return true
	}
	switch k {
	case token.KwDynamic, token.KwArray, token.KwRecord, token.KwLike:
		return true
	}
	return p.atIdent()
}

// parseTypeRef parses a type and attaches its NodeTypeRef to parent.
func (p *Parser) parseTypeRef(parent ast.NodeID) (ast.NodeID, bool) {
	cur := p.ts.Current()
	if name, ok := scalarTypeName(cur.Kind); ok {
		return p.parseScalarType(parent, name)
	}
	switch cur.Kind {
	case token.KwDynamic:
		return p.parseDynamicArray(parent)
	case token.KwArray:
		return p.parseStaticArray(parent)
	case token.KwRecord:
		return p.parseRecordType(parent)
	case token.KwLike:
		id := p.open(ast.NodeTypeRef, parent)
		p.advance()
		table, column, ok := p.parseLikeTarget(false)
		p.tree.Node(id).Payload = p.tree.NewTypeRef(ast.TypeRef{Class: ast.TypeLike, LikeTable: table, LikeColumn: column})
		p.close(id, ok)
		return id, ok
	}
	if p.atIdent() {
		id := p.open(ast.NodeTypeRef, parent)
		first := p.advance()
		name := first.Text
		// pkg.Class, module.type
		for p.at(token.Dot) && (p.peekKind(1) == token.Ident || p.ts.Peek(1).Kind.IsKeyword()) {
			p.advance()
			name += "." + p.advance().Text
		}
		p.tree.Node(id).Payload = p.tree.NewTypeRef(ast.TypeRef{Class: ast.TypeNamed, Name: name,
			NameSpan: first.Span.Cover(p.lastSpan)})
		p.close(id, true)
		return id, true
	}
	p.err(diag.SynExpectType, "expected type, got "+describe(cur))
	return ast.NoNodeID, false
}

func (p *Parser) parseScalarType(parent ast.NodeID, name string) (ast.NodeID, bool) {
	id := p.open(ast.NodeTypeRef, parent)
	kw := p.advance()
	tr := ast.TypeRef{Class: ast.TypeScalar, Name: name, NameSpan: kw.Span}
	ok := true
	switch kw.Kind {
	case token.KwDatetime, token.KwInterval:
		tr.Qualifier = p.parseQualifierRange()
		if tr.Qualifier == "" {
			ok = false
		}
	default:
		if p.at(token.LParen) {
			open := p.advance()
			for {
				e, eok := p.parseExpr()
				tr.Args = append(tr.Args, e)
				if !eok || !p.eat(token.Comma) {
					break
				}
			}
			if !p.eat(token.RParen) {
				p.report(diag.SynUnclosedParen, diag.SevError, open.Span, "unclosed parenthesis")
				ok = false
			}
		}
	}
	p.tree.Node(id).Payload = p.tree.NewTypeRef(tr)
	p.close(id, ok)
	return id, ok
}

// DYNAMIC ARRAY [WITH DIMENSION n] OF type
func (p *Parser) parseDynamicArray(parent ast.NodeID) (ast.NodeID, bool) {
	id := p.open(ast.NodeTypeRef, parent)
	p.advance()
	tr := ast.TypeRef{Class: ast.TypeArray, Array: ast.ArrayDynamic, DimCount: 1}
	ok := true
	if _, aok := p.expect(token.KwArray, diag.SynExpectKeyword, "expected ARRAY after DYNAMIC"); !aok {
		ok = false
	}
	if p.eat(token.KwWith) {
		p.expect(token.KwDimension, diag.SynExpectKeyword, "expected DIMENSION")
		dimTok, dok := p.expect(token.IntLit, diag.SynBadArrayDimension, "expected dimension count")
		if dok {
			n := dimension(dimTok.Text)
			if n < 1 || n > maxArrayDims {
				p.report(diag.SynBadArrayDimension, diag.SevError, dimTok.Span, "array dimension must be between 1 and 3")
			} else {
				tr.DimCount = n
			}
		}
	}
	tr.Array = ast.ArrayDynamic
	ok = p.parseArrayElement(id, &tr) && ok
	return id, ok
}

// ARRAY [d1{,d}] OF type | ARRAY [] OF type
func (p *Parser) parseStaticArray(parent ast.NodeID) (ast.NodeID, bool) {
	id := p.open(ast.NodeTypeRef, parent)
	p.advance()
	tr := ast.TypeRef{Class: ast.TypeArray, Array: ast.ArrayStatic}
	ok := true
	if open, bok := p.expect(token.LBracket, diag.SynExpectKeyword, "expected '[' after ARRAY"); bok {
		if p.at(token.RBracket) {
			tr.Array = ast.ArrayJava
			tr.DimCount = 1
		} else {
			for {
				e, eok := p.parseExpr()
				tr.Dims = append(tr.Dims, e)
				if !eok || !p.eat(token.Comma) {
					break
				}
			}
			tr.DimCount = len(tr.Dims)
			if tr.DimCount > maxArrayDims {
				p.report(diag.SynBadArrayDimension, diag.SevError, open.Span.Cover(p.lastSpan),
					"static arrays have at most 3 dimensions")
			}
		}
		if !p.eat(token.RBracket) {
			p.report(diag.SynUnclosedBracket, diag.SevError, open.Span, "unclosed bracket")
			ok = false
		}
	} else {
		ok = false
	}
	ok = p.parseArrayElement(id, &tr) && ok
	return id, ok
}

// parseArrayElement parses "OF type"; the element type becomes the sole
// child of the array node.
func (p *Parser) parseArrayElement(id ast.NodeID, tr *ast.TypeRef) bool {
	ok := true
	if _, ook := p.expect(token.KwOf, diag.SynExpectKeyword, "expected OF in array type"); ook {
		if _, eok := p.parseTypeRef(id); !eok {
			ok = false
		}
	} else {
		ok = false
	}
	p.tree.Node(id).Payload = p.tree.NewTypeRef(*tr)
	p.close(id, ok)
	return ok
}

// RECORD LIKE t.* | RECORD field type {, field type} END RECORD
func (p *Parser) parseRecordType(parent ast.NodeID) (ast.NodeID, bool) {
	id := p.open(ast.NodeTypeRef, parent)
	opener := p.advance()
	if p.eat(token.KwLike) {
		table, _, ok := p.parseLikeTarget(true)
		p.tree.Node(id).Payload = p.tree.NewTypeRef(ast.TypeRef{Class: ast.TypeRecordLike, LikeTable: table})
		p.close(id, ok)
		return id, ok
	}
	p.tree.Node(id).Payload = p.tree.NewTypeRef(ast.TypeRef{Class: ast.TypeRecord})
	p.decorated(id)
	ok := true
	for !p.at(token.KwEnd) && !p.at(token.EOF) {
		if _, gok := p.parseVarGroup(id, 0); !gok {
			ok = false
			// поле не разобрано: ищем следующую запятую или END
			for !p.atAny(token.Comma, token.KwEnd, token.EOF) && !isStatementStarter(p.ts.Current().Kind) {
				p.advance()
			}
			if !p.at(token.Comma) {
				break
			}
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	if p.at(token.KwEnd) && p.peekKind(1) == token.KwRecord {
		p.addDecorator(id, p.ts.Current().Span.Cover(p.ts.Peek(1).Span))
	}
	ok = p.parseEnd(token.KwRecord, opener) && ok
	p.close(id, ok)
	return id, ok
}

// parseLikeTarget parses "[db:]table.column" or, with star, "table.*".
func (p *Parser) parseLikeTarget(star bool) (table, column string, ok bool) {
	tok, tok1 := p.expectIdent("table name")
	if !tok1 {
		return "", "", false
	}
	if p.eat(token.Colon) {
		tok, tok1 = p.expectIdent("table name")
		if !tok1 {
			return "", "", false
		}
	}
	table = tok.Text
	if _, dok := p.expect(token.Dot, diag.SynExpectIdentifier, "expected '.' after table name"); !dok {
		return table, "", false
	}
	if p.eat(token.Star) {
		return table, "", true
	}
	if star {
		p.err(diag.SynExpectIdentifier, "expected '*' in RECORD LIKE")
		return table, "", false
	}
	if p.at(token.Ident) || p.ts.Current().Kind.IsKeyword() {
		return table, p.advance().Text, true
	}
	p.err(diag.SynExpectIdentifier, "expected column name")
	return table, "", false
}

// dimension parses a small positive integer literal; -1 on failure.
func dimension(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
