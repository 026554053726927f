package lexer_test

import (
	"testing"

	"fglsense/internal/diag"
	"fglsense/internal/lexer"
	"fglsense/internal/source"
	"fglsense/internal/token"
)

func lex(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.4gl", []byte(src))
	bag := diag.NewBag(0)
	toks := lexer.Tokenize(fs.Get(id), lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	return toks, bag
}

func kinds(toks []token.Token, skipTrivia bool) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		if skipTrivia && tok.IsTrivia() {
			continue
		}
		out = append(out, tok.Kind)
	}
	return out
}

func TestTokenizeStatement(t *testing.T) {
	toks, bag := lex(t, "IF x <> 1.5 THEN LET s = 'it''s' || \"a\" END IF")
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	want := []token.Kind{
		token.KwIf, token.Ident, token.NotEq, token.DecLit, token.KwThen,
		token.KwLet, token.Ident, token.Eq, token.StringLit, token.Concat, token.StringLit,
		token.KwEnd, token.KwIf, token.EOF,
	}
	got := kinds(toks, true)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v (all %v)", i, got[i], want[i], got)
		}
	}
}

func TestTokenizeKeepsTrivia(t *testing.T) {
	src := "DEFINE x INT # note\n{ block\ncomment } -- tail\n"
	toks, _ := lex(t, src)
	var comments int
	for _, tok := range toks {
		if tok.Kind == token.Comment {
			comments++
		}
		if tok.Span.End > tok.Span.Start && src[tok.Span.Start:tok.Span.End] != tok.Text {
			t.Fatalf("token text %q does not match span %v", tok.Text, tok.Span)
		}
	}
	if comments != 3 {
		t.Fatalf("expected 3 comments, got %d", comments)
	}
	// spans are contiguous
	var pos uint32
	for _, tok := range toks {
		if tok.Span.Start != pos {
			t.Fatalf("gap before %v at %d", tok.Kind, pos)
		}
		pos = tok.Span.End
	}
}

func TestCaseInsensitiveKeywords(t *testing.T) {
	toks, _ := lex(t, "define Foo dynamic Array of integer")
	got := kinds(toks, true)
	want := []token.Kind{token.KwDefine, token.Ident, token.KwDynamic, token.KwArray, token.KwOf, token.KwInteger, token.EOF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexErrors(t *testing.T) {
	_, bag := lex(t, "LET s = 'open\nLET y = 12ab")
	if bag.Count(diag.LexUnterminatedString) != 1 {
		t.Fatalf("expected unterminated string, got %+v", bag.Items())
	}
	if bag.Count(diag.LexBadNumber) != 1 {
		t.Fatalf("expected bad number, got %+v", bag.Items())
	}
}
