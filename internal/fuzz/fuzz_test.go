package fuzztests

import (
	"context"
	"testing"
	"time"

	"fglsense/internal/contextmap"
	"fglsense/internal/diag"
	"fglsense/internal/lexer"
	"fglsense/internal/parser"
	"fglsense/internal/source"
	"fglsense/internal/testkit"
	"fglsense/internal/token"
	"fglsense/internal/tokstream"
)

// parseTimeout отделяет зависание от медленного разбора.
const parseTimeout = 5 * time.Second

func load(input []byte) *source.File {
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("fuzz.4gl", clamp(input)))
}

func FuzzLexer(f *testing.F) {
	addSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		file := load(input)
		toks := lexer.Tokenize(file, lexer.Options{Reporter: diag.NopReporter{}})
		if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
			t.Fatalf("token stream does not end with EOF: %d tokens", len(toks))
		}
		var prev uint32
		for i, tok := range toks {
			if tok.Span.Start < prev || tok.Span.End < tok.Span.Start || int(tok.Span.End) > len(file.Content) {
				t.Fatalf("token %d %v has bad span %v (prev end %d)", i, tok.Kind, tok.Span, prev)
			}
			prev = tok.Span.End
		}
	})
}

func FuzzParser(f *testing.F) {
	addSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		file := load(input)
		done := make(chan error, 1)
		go func() {
			rep := diag.BagReporter{Bag: diag.NewBag(128)}
			toks := lexer.Tokenize(file, lexer.Options{Reporter: rep})
			res := parser.ParseFile(file, toks, parser.Options{Reporter: rep, MaxErrors: 128})
			done <- testkit.CheckSpanInvariants(res.Tree, file)
		}()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("%v\ninput: %q", err, truncate(input, 200))
			}
		case <-time.After(parseTimeout):
			t.Fatalf("parser hang after %v\ninput (%d bytes): %q", parseTimeout, len(input), truncate(input, 200))
		}
	})
}

// FuzzClassify runs the default context table at the end of the input.
func FuzzClassify(f *testing.F) {
	addSeeds(f)
	engine := contextmap.NewEngine(contextmap.Default())
	empty := contextmap.SetProviderFunc(func(context.Context, string) []contextmap.Member { return nil })
	f.Fuzz(func(t *testing.T, input []byte) {
		file := load(input)
		toks := lexer.Tokenize(file, lexer.Options{Reporter: diag.NopReporter{}})
		at := uint32(len(file.Content))
		if _, err := engine.Classify(context.Background(), tokstream.NewReverse(toks, at), empty); err != nil {
			t.Fatalf("classify: %v", err)
		}
	})
}

func truncate(input []byte, n int) []byte {
	if len(input) <= n {
		return input
	}
	return append(input[:n:n], "..."...)
}
