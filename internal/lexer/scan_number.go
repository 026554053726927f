package lexer

import (
	"fglsense/internal/diag"
	"fglsense/internal/token"
)

// Поддержка: 123, 1.5, .5, 1e3, 1.5E-2. Никаких префиксов баз и '_'.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	if lx.cursor.Peek() == '.' && isDec(lx.cursor.PeekAt(1)) {
		kind = token.DecLit
		lx.cursor.Bump()
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		next := lx.cursor.PeekAt(1)
		digitAt := uint32(1)
		if next == '+' || next == '-' {
			digitAt = 2
		}
		if isDec(lx.cursor.PeekAt(digitAt)) {
			kind = token.DecLit
			for range digitAt {
				lx.cursor.Bump()
			}
			for isDec(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
		}
	}
	// "12abc" - цифры сразу переходят в идентификатор
	if isIdentStartByte(lx.cursor.Peek()) {
		for isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		tok := lx.emit(token.Invalid, start)
		lx.errLex(diag.LexBadNumber, tok.Span, "malformed number "+quote(tok.Text))
		return tok
	}
	return lx.emit(kind, start)
}
