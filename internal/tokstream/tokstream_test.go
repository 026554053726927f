package tokstream_test

import (
	"testing"

	"fglsense/internal/lexer"
	"fglsense/internal/source"
	"fglsense/internal/token"
	"fglsense/internal/tokstream"
)

func tokens(t *testing.T, src string) []token.Token {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.4gl", []byte(src))
	return lexer.Tokenize(fs.Get(id), lexer.Options{})
}

func TestForwardSkipsTrivia(t *testing.T) {
	f := tokstream.NewForward(tokens(t, "LET x = 1 # c\n"))
	if f.Peek(1).Kind != token.Ident || f.Peek(3).Kind != token.IntLit {
		t.Fatalf("unexpected lookahead: %v %v", f.Peek(1).Kind, f.Peek(3).Kind)
	}
	for range 4 {
		f.Advance()
	}
	if f.Current().Kind != token.EOF {
		t.Fatalf("expected EOF, got %v", f.Current().Kind)
	}
	f.Advance()
	if f.Current().Kind != token.EOF || f.Peek(10).Kind != token.EOF {
		t.Fatalf("EOF must be sticky")
	}
}

func TestReverseFromOffset(t *testing.T) {
	src := "IF a THEN\n  "
	r := tokstream.NewReverse(tokens(t, src), uint32(len(src)))
	tok, ok := r.NextSignificant()
	if !ok || tok.Kind != token.KwThen {
		t.Fatalf("expected THEN, got %v", tok.Kind)
	}
	tok, _ = r.NextSignificant()
	if tok.Kind != token.Ident {
		t.Fatalf("expected ident, got %v", tok.Kind)
	}
	m := r.Mark()
	tok, _ = r.NextSignificant()
	if tok.Kind != token.KwIf {
		t.Fatalf("expected IF, got %v", tok.Kind)
	}
	if _, ok := r.NextSignificant(); ok {
		t.Fatalf("expected exhaustion")
	}
	r.Restore(m)
	if tok, _ := r.NextSignificant(); tok.Kind != token.KwIf {
		t.Fatalf("restore failed: %v", tok.Kind)
	}
}

func TestReverseMidToken(t *testing.T) {
	// offset внутри "abc": токен не закончился, он не входит в историю
	r := tokstream.NewReverse(tokens(t, "LET abc"), 5)
	tok, _ := r.NextSignificant()
	if tok.Kind != token.KwLet {
		t.Fatalf("expected LET, got %v", tok.Kind)
	}
}
