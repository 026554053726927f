// Package resolve binds dotted name paths to symbols. The first piece is
// looked up through the scope chain of the enclosing module; every further
// piece is a member of the symbol bound before it.
package resolve

import (
	"context"

	"fglsense/internal/ast"
	"fglsense/internal/builtins"
	"fglsense/internal/ident"
	"fglsense/internal/provider"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/types"
)

// Outcome classifies a resolution.
type Outcome uint8

const (
	// Bound means every piece resolved.
	Bound Outcome = iota
	// Deferred means a call could only be answered after project indexing.
	Deferred
	// Unresolved means a piece is definitely unknown.
	Unresolved
)

func (o Outcome) String() string {
	switch o {
	case Bound:
		return "bound"
	case Deferred:
		return "deferred"
	default:
		return "unresolved"
	}
}

// Request is one name path to resolve.
type Request struct {
	Text string
	// Span locates Text in its file; piece spans are derived from it.
	Span source.Span
	// Offset selects the enclosing scope. Usually Span.Start.
	Offset uint32
	// Call marks call or definition context: a final piece written without
	// "(" may then bind to a function.
	Call bool
}

// Result of a resolution. On Deferred and Unresolved, Piece is the segment
// that failed and Chain holds the symbols bound before it.
type Result struct {
	Outcome Outcome
	Symbol  *symbols.Symbol
	Piece   Piece
	Chain   []*symbols.Symbol
}

type Options struct {
	Builtins  *builtins.Catalog
	Functions provider.FunctionProvider
	Schema    provider.SchemaProvider
	Modules   provider.ModuleEnumerator
	Mode      provider.Mode
}

// Resolver resolves names inside one module. It only reads the module
// result and the providers, so one Resolver may serve concurrent requests.
type Resolver struct {
	mod  *symbols.ModuleResult
	opts Options
}

func New(mod *symbols.ModuleResult, opts Options) *Resolver {
	if opts.Builtins == nil {
		opts.Builtins = builtins.Default()
	}
	return &Resolver{mod: mod, opts: opts}
}

// Module returns the module this resolver reads.
func (r *Resolver) Module() *symbols.ModuleResult { return r.mod }

// WithMode returns a copy of r using mode for unbound calls.
func (r *Resolver) WithMode(mode provider.Mode) *Resolver {
	cp := *r
	cp.opts.Mode = mode
	return &cp
}

// Resolve binds req. The error is non-nil only when ctx is done.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Result, error) {
	pieces := Split(req.Text, req.Span)
	if len(pieces) == 0 {
		return Result{Outcome: Unresolved, Piece: Piece{Span: req.Span}}, nil
	}
	env := r.env(ctx, req.Offset)

	first := pieces[0]
	wantFunc := first.Call || (req.Call && len(pieces) == 1)
	sym, out := r.lookupFirst(ctx, first.Text, req.Offset, wantFunc)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if out != Bound {
		return Result{Outcome: out, Piece: first}, nil
	}
	chain := []*symbols.Symbol{sym}
	cur := env.elementIf(env.valueOf(sym, first.Call), first.Indexed)

	for i, pc := range pieces[1:] {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if pc.Star {
			break
		}
		if opaque(cur) || env.foreign(cur) {
			// члены Java-классов не известны
			break
		}
		next, ok := cur.Member(pc.Text, env)
		call := pc.Call || (req.Call && i == len(pieces)-2)
		if !ok && call && cur.Kind == symbols.SymbolModule {
			if r.opts.Mode == provider.ModeDeferred {
				return Result{Outcome: Deferred, Piece: pc, Chain: chain}, nil
			}
			next, ok = r.moduleFunction(ctx, cur, pc.Text)
		}
		if !ok {
			return Result{Outcome: Unresolved, Piece: pc, Chain: chain}, nil
		}
		chain = append(chain, next)
		cur = env.elementIf(env.valueOf(next, pc.Call), pc.Indexed)
	}
	return Result{Outcome: Bound, Symbol: chain[len(chain)-1], Chain: chain}, nil
}

// lookupFirst walks the scope chain for the leading piece.
func (r *Resolver) lookupFirst(ctx context.Context, name string, offset uint32, wantFunc bool) (*symbols.Symbol, Outcome) {
	bi := r.opts.Builtins
	mod := r.mod

	if sym, ok := bi.Lookup(name); ok {
		return sym, Bound
	}
	if fr := mod.FunctionScopeAt(offset); fr != nil {
		if sym, ok := fr.Lookup(name, offset); ok {
			return sym, Bound
		}
	}
	if sym, ok := mod.LookupModule(name); ok {
		return sym, Bound
	}
	if wantFunc {
		if sym, ok := mod.Functions.Lookup(name); ok {
			return sym, Bound
		}
	}
	for _, t := range []*symbols.Table{mod.Cursors, mod.Prepared, mod.Tables} {
		if sym, ok := t.Lookup(name); ok {
			return sym, Bound
		}
	}
	if sym, ok := r.lookupSiblings(name, wantFunc); ok {
		return sym, Bound
	}
	if sym, ok := bi.LookupPackage(name); ok {
		return sym, Bound
	}
	if imp, ok := mod.LookupImport(name); ok {
		return importSymbol(imp, bi), Bound
	}
	if sym, ok := r.lookupIncludes(name); ok {
		return sym, Bound
	}
	return r.lookupProviders(ctx, name, wantFunc)
}

// lookupSiblings searches the other modules of the project. Functions must
// be public; module variables, types and constants are visible regardless
// of their modifier.
func (r *Resolver) lookupSiblings(name string, wantFunc bool) (*symbols.Symbol, bool) {
	if wantFunc {
		if sym, ok := r.opts.Builtins.LookupFunction(name); ok {
			return sym, true
		}
	}
	if r.opts.Modules == nil {
		return nil, false
	}
	for _, m := range r.opts.Modules.Modules(r.mod.Project) {
		if m == r.mod || (m.Path == r.mod.Path && m.Project == r.mod.Project) {
			continue
		}
		if wantFunc {
			if sym, ok := m.Functions.Lookup(name); ok && sym.IsPublic() {
				return sym, true
			}
		}
		if sym, ok := m.LookupModule(name); ok {
			return sym, true
		}
	}
	return nil, false
}

func (r *Resolver) lookupIncludes(name string) (*symbols.Symbol, bool) {
	if r.opts.Modules == nil {
		return nil, false
	}
	for _, inc := range r.mod.GlobalsFiles {
		m, ok := r.opts.Modules.Include(inc.Path)
		if !ok {
			continue
		}
		if sym, ok := m.LookupModule(name); ok {
			return sym, true
		}
	}
	return nil, false
}

func (r *Resolver) lookupProviders(ctx context.Context, name string, wantFunc bool) (*symbols.Symbol, Outcome) {
	if r.opts.Schema != nil {
		if sym, ok := r.opts.Schema.Table(ctx, name); ok {
			return sym, Bound
		}
	}
	if !wantFunc {
		return nil, Unresolved
	}
	switch r.opts.Mode {
	case provider.ModeDeferred:
		return nil, Deferred
	case provider.ModeSearch:
		if r.opts.Functions == nil {
			return nil, Unresolved
		}
		for _, sym := range r.opts.Functions.LookupFunction(ctx, name) {
			if sym.Path != r.mod.Path {
				return sym, Bound
			}
		}
	}
	return nil, Unresolved
}

// moduleFunction finds a public function of an imported module: m.f().
func (r *Resolver) moduleFunction(ctx context.Context, ns *symbols.Symbol, name string) (*symbols.Symbol, bool) {
	if r.opts.Functions == nil || r.opts.Mode != provider.ModeSearch {
		return nil, false
	}
	for _, sym := range r.opts.Functions.LookupFunction(ctx, name) {
		if ident.Equal(sym.Module, ns.Name) {
			return sym, true
		}
	}
	return nil, false
}

func importSymbol(imp symbols.Import, bi *builtins.Catalog) *symbols.Symbol {
	sym := &symbols.Symbol{
		Name:  imp.Name,
		Span:  imp.Span,
		Flags: symbols.SymbolFlagImported,
		Type:  types.Module(imp.Path),
	}
	switch imp.Kind {
	case ast.ImportFGL:
		sym.Kind = symbols.SymbolModule
	case ast.ImportPackage:
		if pkg, ok := bi.LookupPackage(imp.Name); ok {
			return pkg
		}
		sym.Kind = symbols.SymbolPackage
	default:
		sym.Kind = symbols.SymbolClass
		sym.Type = types.Class(imp.Path)
	}
	return sym
}

// opaque reports whether members of sym cannot be checked: Java classes
// and unknown packages.
func opaque(sym *symbols.Symbol) bool {
	return sym.Flags&symbols.SymbolFlagImported != 0 &&
		(sym.Kind == symbols.SymbolClass || sym.Kind == symbols.SymbolPackage)
}
