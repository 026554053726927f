package tokstream

import (
	"sort"

	"fglsense/internal/token"
)

// Reverse enumerates tokens that end at or before an offset, walking
// towards the start of the buffer. Unlike Forward it keeps trivia: the
// context engine decides itself what to skip.
type Reverse struct {
	toks []token.Token
	idx  int // index of the next token to return; -1 when exhausted
}

// NewReverse positions the enumerator on the last token with End <= offset.
func NewReverse(toks []token.Token, offset uint32) *Reverse {
	// первый токен, который заканчивается после offset
	i := sort.Search(len(toks), func(i int) bool { return toks[i].Span.End > offset })
	idx := i - 1
	// EOF имеет нулевую длину и не является "историей"
	for idx >= 0 && toks[idx].Kind == token.EOF {
		idx--
	}
	return &Reverse{toks: toks, idx: idx}
}

// Next returns the next older token. ok is false once the buffer start is
// reached.
func (r *Reverse) Next() (tok token.Token, ok bool) {
	if r.idx < 0 {
		return token.Token{Kind: token.EOF}, false
	}
	tok = r.toks[r.idx]
	r.idx--
	return tok, true
}

// NextSignificant skips trivia.
func (r *Reverse) NextSignificant() (token.Token, bool) {
	for {
		tok, ok := r.Next()
		if !ok || !tok.IsTrivia() {
			return tok, ok
		}
	}
}

// Mark and Restore let callers try a backward match and rewind on failure.
func (r *Reverse) Mark() int     { return r.idx }
func (r *Reverse) Restore(m int) { r.idx = m }

// Clone returns an independent enumerator at the same position.
func (r *Reverse) Clone() *Reverse {
	c := *r
	return &c
}
