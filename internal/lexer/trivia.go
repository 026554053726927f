package lexer

import (
	"fglsense/internal/diag"
	"fglsense/internal/token"
)

func (lx *Lexer) scanSpace() token.Token {
	start := lx.cursor.Mark()
	for {
		b := lx.cursor.Peek()
		if b != ' ' && b != '\t' && b != '\f' && b != '\r' {
			break
		}
		lx.cursor.Bump()
	}
	return lx.emit(token.Whitespace, start)
}

// подряд идущие '\n' коалесцируем в один токен
func (lx *Lexer) scanNewlines() token.Token {
	start := lx.cursor.Mark()
	for lx.cursor.Peek() == '\n' {
		lx.cursor.Bump()
	}
	return lx.emit(token.Newline, start)
}

// '#' и '--' комментарии до конца строки; перевод строки не входит в токен.
func (lx *Lexer) scanLineComment(prefix int) token.Token {
	start := lx.cursor.Mark()
	for range prefix {
		lx.cursor.Bump()
	}
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	return lx.emit(token.Comment, start)
}

// '{ ... }' comments do not nest.
func (lx *Lexer) scanBlockComment() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		if lx.cursor.Bump() == '}' {
			return lx.emit(token.Comment, start)
		}
	}
	tok := lx.emit(token.Comment, start)
	lx.errLex(diag.LexUnterminatedBlockComment, tok.Span, "unterminated '{' comment")
	return tok
}
