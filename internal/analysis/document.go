package analysis

import (
	"context"
	"sort"

	"fortio.org/safecast"

	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/lexer"
	"fglsense/internal/parser"
	"fglsense/internal/resolve"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/token"
	"fglsense/internal/trace"
)

// Document is the analysis snapshot of one file. Everything except the
// diagnostics bag is read-only once Analyze returns; CheckNames appends
// to the bag and must not run concurrently with itself on one Document.
type Document struct {
	File        *source.File
	Tokens      []token.Token
	Tree        *ast.Tree
	Module      *symbols.ModuleResult
	Diagnostics *diag.Bag

	ac       *Context
	resolver *resolve.Resolver
}

// Analyze lexes and parses file and builds its module result. Name
// checking is a separate step (CheckNames) because it needs the rest of
// the project published first. The error is non-nil only when ctx is
// done.
func Analyze(ctx context.Context, ac *Context, file *source.File) (*Document, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDocument, "analyze")
	span.Set("path", file.Path)

	bag := diag.NewBag(ac.maxDiags)
	rep := diag.BagReporter{Bag: bag}

	toks := lexer.Tokenize(file, lexer.Options{Reporter: rep})
	if err := ctx.Err(); err != nil {
		span.End("canceled")
		return nil, err
	}
	maxErrors, err := safecast.Conv[uint](ac.maxDiags)
	if err != nil {
		maxErrors = 0
	}
	res := parser.ParseFile(file, toks, parser.Options{
		Reporter:  rep,
		MaxErrors: maxErrors,
		Project:   ac.project,
	})

	doc := &Document{
		File:        file,
		Tokens:      toks,
		Tree:        res.Tree,
		Module:      res.Module,
		Diagnostics: bag,
		ac:          ac,
		resolver:    ac.resolver(res.Module),
	}
	ac.log.WithField("path", file.Path).
		WithField("tokens", len(toks)).
		WithField("diagnostics", bag.Len()).
		Debug("analyzed document")
	span.End("")
	return doc, nil
}

// Resolver returns the resolver bound to the document's module.
func (d *Document) Resolver() *resolve.Resolver { return d.resolver }

// Context returns the analysis context the document was built with.
func (d *Document) Context() *Context { return d.ac }

// tokenIndex returns the index of the first token ending at or after
// offset.
func (d *Document) tokenIndex(offset uint32) int {
	return sort.Search(len(d.Tokens), func(i int) bool { return d.Tokens[i].Span.End >= offset })
}

func (d *Document) span(start, end uint32) source.Span {
	return source.Span{File: d.File.ID, Start: start, End: end}
}
