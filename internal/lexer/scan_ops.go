package lexer

import (
	"fglsense/internal/diag"
	"fglsense/internal/token"
)

// Жадность: сначала 2-символьные, затем 1-символьные.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()

	switch {
	case lx.try2('*', '*'):
		return lx.emit(token.StarStar, start)
	case lx.try2('=', '='):
		return lx.emit(token.EqEq, start)
	case lx.try2('<', '>'), lx.try2('!', '='):
		return lx.emit(token.NotEq, start)
	case lx.try2('<', '='):
		return lx.emit(token.LtEq, start)
	case lx.try2('>', '='):
		return lx.emit(token.GtEq, start)
	case lx.try2('|', '|'):
		return lx.emit(token.Concat, start)
	}

	var kind token.Kind
	switch lx.cursor.Bump() {
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
	case '*':
		kind = token.Star
	case '/':
		kind = token.Slash
	case '=':
		kind = token.Eq
	case '<':
		kind = token.Lt
	case '>':
		kind = token.Gt
	case ',':
		kind = token.Comma
	case '.':
		kind = token.Dot
	case ':':
		kind = token.Colon
	case ';':
		kind = token.Semicolon
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case '&':
		kind = token.Amp
	case '?':
		kind = token.Question
	case '$':
		kind = token.Dollar
	case '@':
		kind = token.At
	default:
		tok := lx.emit(token.Invalid, start)
		lx.errLex(diag.LexUnknownChar, tok.Span, "unknown character "+quote(tok.Text))
		return tok
	}
	return lx.emit(kind, start)
}

func (lx *Lexer) try2(a, b byte) bool {
	if lx.cursor.Peek() == a && lx.cursor.PeekAt(1) == b {
		lx.cursor.Bump()
		lx.cursor.Bump()
		return true
	}
	return false
}
