// Package tokstream adapts a lexed token slice to the two views the front-end
// needs: a forward cursor for the parser and a reverse enumerator for the
// completion context engine. Both skip trivia.
package tokstream

import (
	"fglsense/internal/source"
	"fglsense/internal/token"
)

// Forward is a trivia-free cursor over a token slice.
type Forward struct {
	toks []token.Token // only significant tokens, EOF last
	pos  int
}

// NewForward builds a cursor over toks. Trivia is dropped; an EOF token is
// appended when toks does not end with one.
func NewForward(toks []token.Token) *Forward {
	sig := make([]token.Token, 0, len(toks))
	for _, tok := range toks {
		if tok.IsTrivia() {
			continue
		}
		sig = append(sig, tok)
	}
	if len(sig) == 0 || sig[len(sig)-1].Kind != token.EOF {
		var eof token.Token
		eof.Kind = token.EOF
		if len(toks) > 0 {
			end := toks[len(toks)-1].Span
			eof.Span = source.Span{File: end.File, Start: end.End, End: end.End}
		}
		sig = append(sig, eof)
	}
	return &Forward{toks: sig}
}

// Peek returns the k-th significant token ahead (0 is the current one).
// Past the end it returns EOF.
func (f *Forward) Peek(k int) token.Token {
	i := f.pos + k
	if i >= len(f.toks) {
		return f.toks[len(f.toks)-1]
	}
	return f.toks[i]
}

// Current is Peek(0).
func (f *Forward) Current() token.Token { return f.Peek(0) }

// Advance consumes the current token and returns it. At EOF it stays put.
func (f *Forward) Advance() token.Token {
	tok := f.toks[f.pos]
	if f.pos < len(f.toks)-1 {
		f.pos++
	}
	return tok
}

// Pos and Reset allow a bounded rollback for speculative parses.
func (f *Forward) Pos() int    { return f.pos }
func (f *Forward) Reset(p int) { f.pos = p }

// Prev returns the last consumed token, or the zero token at start.
func (f *Forward) Prev() token.Token {
	if f.pos == 0 {
		return token.Token{}
	}
	return f.toks[f.pos-1]
}
