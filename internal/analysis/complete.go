package analysis

import (
	"context"
	"strconv"
	"strings"

	"fglsense/internal/ast"
	"fglsense/internal/contextmap"
	"fglsense/internal/ident"
	"fglsense/internal/resolve"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/token"
	"fglsense/internal/tokstream"
	"fglsense/internal/trace"
)

// Completion is the answer to a completion request.
type Completion struct {
	State contextmap.State
	Items []contextmap.Member
	// Prefix is the part of the word already typed; Replace covers it.
	Prefix  string
	Replace source.Span
	// Member is set for completions after "." (fields, methods, module
	// members).
	Member bool
}

// Complete lists what may be typed at offset. After "." it offers the
// members of the path before the dot; elsewhere the context engine
// classifies the position and the document's scopes fill in the symbol
// sets. Project-wide public functions and database tables come from the
// providers when the engine asks for them.
func (d *Document) Complete(ctx context.Context, offset uint32) (Completion, error) {
	ctx, span := trace.Start(ctx, trace.ScopeRequest, "complete")
	defer span.End("")

	out := Completion{Replace: d.span(offset, offset)}
	at := offset
	if tok, ok := d.identAt(offset); ok {
		out.Prefix = d.File.Slice(d.span(tok.Span.Start, offset))
		out.Replace = d.span(tok.Span.Start, offset)
		at = tok.Span.Start
	} else if d.insideLiteral(offset) {
		return out, nil
	}

	rev := tokstream.NewReverse(d.Tokens, at)
	if prev, ok := rev.Clone().NextSignificant(); ok && prev.Kind == token.Dot {
		return d.completeMembers(ctx, prev, out)
	}

	set, err := d.ac.engine.Classify(ctx, rev, scopeSets{d: d, offset: at})
	if err != nil {
		return out, err
	}
	if set.DeferPublicFunctions && d.ac.functions != nil {
		for _, sym := range d.ac.functions.Functions(ctx) {
			if sym.Path == d.Module.Path {
				continue
			}
			set.Add(contextmap.Member{Name: sym.Name, Kind: contextmap.KindOf(sym), Symbol: sym})
		}
	}
	if set.DeferDatabaseTables {
		for _, sym := range d.Module.Tables.All() {
			set.Add(contextmap.Member{Name: sym.Name, Kind: contextmap.KindTable, Symbol: sym})
		}
		if d.ac.schema != nil {
			for _, sym := range d.ac.schema.Tables(ctx) {
				set.Add(contextmap.Member{Name: sym.Name, Kind: contextmap.KindTable, Symbol: sym})
			}
		}
	}
	out.State = set.State
	out.Items = filterPrefix(set.Members, out.Prefix)
	span.Set("items", strconv.Itoa(len(out.Items)))
	return out, nil
}

// completeMembers handles "path.|": the tokens before the dot are
// collected backwards into a name path and resolved.
func (d *Document) completeMembers(ctx context.Context, dot token.Token, out Completion) (Completion, error) {
	out.Member = true
	start, ok := d.pathStart(dot.Span.Start)
	if !ok {
		return out, nil
	}
	sp := d.span(start, dot.Span.Start)
	req := resolve.Request{Text: d.File.Slice(sp), Span: sp, Offset: start}
	members, res, err := d.resolver.Members(ctx, req)
	if err != nil {
		return out, err
	}
	if res.Outcome != resolve.Bound {
		return out, nil
	}
	out.State = contextmap.MatchedEntry
	var set contextmap.MemberSet
	for _, sym := range members {
		set.Add(contextmap.Member{Name: sym.Name, Kind: contextmap.KindOf(sym), Symbol: sym})
	}
	out.Items = filterPrefix(set.Members, out.Prefix)
	return out, nil
}

// pathStart walks backwards from end over "a.b[i].c" and returns where the
// path begins.
func (d *Document) pathStart(end uint32) (uint32, bool) {
	rev := tokstream.NewReverse(d.Tokens, end)
	start := end
	for {
		tok, ok := rev.NextSignificant()
		if !ok {
			break
		}
		if tok.Kind == token.RBracket || tok.Kind == token.RParen {
			open, ok := skipGroup(rev, tok.Kind)
			if !ok {
				return 0, false
			}
			start = open
			tok, ok = rev.NextSignificant()
			if !ok {
				return 0, false
			}
		}
		if !tok.IsIdent() {
			return 0, false
		}
		start = tok.Span.Start
		m := rev.Mark()
		if next, ok := rev.NextSignificant(); !ok || next.Kind != token.Dot {
			rev.Restore(m)
			break
		}
	}
	return start, start < end
}

// skipGroup consumes tokens back to the bracket opening closer and
// returns its offset.
func skipGroup(rev *tokstream.Reverse, closer token.Kind) (uint32, bool) {
	opener := token.LBracket
	if closer == token.RParen {
		opener = token.LParen
	}
	depth := 1
	for {
		tok, ok := rev.NextSignificant()
		if !ok {
			return 0, false
		}
		switch tok.Kind {
		case closer:
			depth++
		case opener:
			depth--
			if depth == 0 {
				return tok.Span.Start, true
			}
		}
	}
}

// insideLiteral reports whether offset falls inside a string or comment
// token. A line comment runs to the end of its line, so its end offset
// still counts.
func (d *Document) insideLiteral(offset uint32) bool {
	i := d.tokenIndex(offset)
	if i >= len(d.Tokens) {
		return false
	}
	tok := d.Tokens[i]
	if tok.Span.Start >= offset {
		return false
	}
	switch tok.Kind {
	case token.StringLit:
		return offset < tok.Span.End
	case token.Comment:
		return offset < tok.Span.End || !strings.HasPrefix(tok.Text, "{")
	}
	return false
}

func filterPrefix(items []contextmap.Member, prefix string) []contextmap.Member {
	if prefix == "" {
		return items
	}
	var out []contextmap.Member
	for _, m := range items {
		if ident.HasPrefix(m.Name, prefix) {
			out = append(out, m)
		}
	}
	return out
}

// scopeSets expands the grammar's symbol sets from the scopes visible at
// offset.
type scopeSets struct {
	d      *Document
	offset uint32
}

func (s scopeSets) Members(_ context.Context, set string) []contextmap.Member {
	mod := s.d.Module
	fr := mod.FunctionScopeAt(s.offset)
	bi := s.d.ac.builtins
	var syms []*symbols.Symbol
	add := func(tables ...*symbols.Table) {
		for _, t := range tables {
			syms = append(syms, t.All()...)
		}
	}
	includes := s.d.includes()

	switch set {
	case "variables":
		if fr != nil {
			add(fr.Locals)
			syms = append(syms, fr.LimitedAt(s.offset)...)
		}
		add(mod.Variables, mod.GlobalVariables)
		for _, inc := range includes {
			add(inc.Variables, inc.GlobalVariables)
		}
		add(bi.Variables)
	case "constants":
		if fr != nil {
			add(fr.Constants)
		}
		add(mod.Constants, mod.GlobalConstants)
		for _, inc := range includes {
			add(inc.Constants, inc.GlobalConstants)
		}
		add(bi.Constants)
	case "types":
		if fr != nil {
			add(fr.Types)
		}
		add(mod.Types, mod.GlobalTypes)
		for _, inc := range includes {
			add(inc.Types, inc.GlobalTypes)
		}
	case "functions":
		for _, sym := range mod.Functions.All() {
			if sym.Kind == symbols.SymbolFunction {
				syms = append(syms, sym)
			}
		}
		add(bi.Functions)
	case "reports":
		for _, sym := range mod.Functions.All() {
			if sym.Kind == symbols.SymbolReport {
				syms = append(syms, sym)
			}
		}
	case "cursors":
		add(mod.Cursors)
	case "prepared":
		add(mod.Prepared)
	case "modules":
		for _, imp := range mod.Imports {
			if imp.Kind == ast.ImportFGL {
				syms = append(syms, importedName(imp, symbols.SymbolModule, mod.Path))
			}
		}
	case "packages":
		add(bi.Packages)
		for _, imp := range mod.Imports {
			switch imp.Kind {
			case ast.ImportFGL:
			case ast.ImportPackage:
				if _, ok := bi.LookupPackage(imp.Name); !ok {
					syms = append(syms, importedName(imp, symbols.SymbolPackage, mod.Path))
				}
			default:
				syms = append(syms, importedName(imp, symbols.SymbolClass, mod.Path))
			}
		}
	default:
		return nil
	}

	out := make([]contextmap.Member, 0, len(syms))
	for _, sym := range syms {
		out = append(out, contextmap.Member{Name: sym.Name, Kind: contextmap.KindOf(sym), Symbol: sym})
	}
	return out
}

func importedName(imp symbols.Import, kind symbols.SymbolKind, path string) *symbols.Symbol {
	return &symbols.Symbol{Name: imp.Name, Kind: kind, Span: imp.Span, Path: path, Flags: symbols.SymbolFlagImported}
}

// includes returns the published GLOBALS files the module refers to.
func (d *Document) includes() []*symbols.ModuleResult {
	if d.ac.modules == nil {
		return nil
	}
	var out []*symbols.ModuleResult
	for _, inc := range d.Module.GlobalsFiles {
		if m, ok := d.ac.modules.Include(inc.Path); ok {
			out = append(out, m)
		}
	}
	return out
}
