package lexer

import (
	"fglsense/internal/diag"
	"fglsense/internal/token"
)

// Strings use either quote; '\' escapes the next byte. A doubled quote
// inside the literal is an escaped quote, as in SQL.
func (lx *Lexer) scanString(quoteByte byte) token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case b == '\\':
			lx.cursor.Bump()
			lx.cursor.Bump()
		case b == quoteByte:
			lx.cursor.Bump()
			if lx.cursor.Peek() == quoteByte {
				lx.cursor.Bump()
				continue
			}
			return lx.emit(token.StringLit, start)
		case b == '\n':
			tok := lx.emit(token.StringLit, start)
			lx.errLex(diag.LexUnterminatedString, tok.Span, "newline in string literal")
			return tok
		default:
			lx.cursor.Bump()
		}
	}
	tok := lx.emit(token.StringLit, start)
	lx.errLex(diag.LexUnterminatedString, tok.Span, "unterminated string literal")
	return tok
}
