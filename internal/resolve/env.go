package resolve

import (
	"context"

	"fglsense/internal/ast"
	"fglsense/internal/ident"
	"fglsense/internal/symbols"
	"fglsense/internal/types"
)

// maxTypeDepth bounds TYPE a → TYPE b → ... chains, cycles included.
const maxTypeDepth = 16

// env implements symbols.MemberEnv for one request: named types are looked
// up from the request's scope, methods and packages fall back to the
// built-in catalogue.
type env struct {
	r      *Resolver
	ctx    context.Context
	offset uint32
}

var _ symbols.MemberEnv = (*env)(nil)

func (r *Resolver) env(ctx context.Context, offset uint32) *env {
	return &env{r: r, ctx: ctx, offset: offset}
}

// MemberEnv exposes the member environment of a scope position, for
// completion of members.
func (r *Resolver) MemberEnv(ctx context.Context, offset uint32) symbols.MemberEnv {
	return r.env(ctx, offset)
}

func (e *env) ResolveType(t *types.Type) *types.Type {
	for depth := 0; t != nil && depth < maxTypeDepth; depth++ {
		switch t.Kind {
		case types.KindNamed:
			sym, ok := e.lookupType(t.Name)
			if !ok {
				return e.classType(t.Name)
			}
			t = sym.Type
		case types.KindLike:
			return e.likeType(t)
		default:
			return t
		}
	}
	return nil
}

func (e *env) Methods(t *types.Type) *symbols.Table {
	return e.r.opts.Builtins.Methods(t)
}

func (e *env) NamespaceMembers(ns *symbols.Symbol) *symbols.Table {
	if ns == nil {
		return nil
	}
	if ns.Kind != symbols.SymbolModule {
		return e.r.opts.Builtins.NamespaceMembers(ns)
	}
	if e.r.opts.Modules == nil {
		return nil
	}
	m, ok := e.r.opts.Modules.Module(e.r.mod.Project, ns.Name)
	if !ok {
		return nil
	}
	out := symbols.NewTable()
	for _, sym := range symbols.CollectExports(m).Symbols {
		out.Add(sym)
	}
	return out
}

func (e *env) lookupType(name string) (*symbols.Symbol, bool) {
	mod := e.r.mod
	if fr := mod.FunctionScopeAt(e.offset); fr != nil {
		if sym, ok := fr.Types.Lookup(name); ok {
			return sym, true
		}
	}
	if sym, ok := mod.LookupType(name); ok {
		return sym, true
	}
	if e.r.opts.Modules == nil {
		return nil, false
	}
	for _, inc := range mod.GlobalsFiles {
		if m, ok := e.r.opts.Modules.Include(inc.Path); ok {
			if sym, ok := m.LookupType(name); ok {
				return sym, true
			}
		}
	}
	for _, m := range e.r.opts.Modules.Modules(mod.Project) {
		if m.Path == mod.Path {
			continue
		}
		if sym, ok := m.LookupType(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// classType binds built-in classes (ui.Window) and IMPORT JAVA classes,
// written with the simple or the full name.
func (e *env) classType(name string) *types.Type {
	if cls, ok := e.r.opts.Builtins.Class(name); ok {
		return cls.Type
	}
	for _, imp := range e.r.mod.Imports {
		if imp.Kind == ast.ImportJava && (ident.Equal(imp.Name, name) || ident.Equal(imp.Path, name)) {
			return types.Class(imp.Path)
		}
	}
	return nil
}

// foreign reports whether sym is a value of a class the catalogue does not
// describe, such as a Java class; its members cannot be checked.
func (e *env) foreign(sym *symbols.Symbol) bool {
	if sym == nil || sym.Kind.IsCallable() {
		return false
	}
	t := e.ResolveType(sym.Type)
	return t != nil && t.Kind == types.KindClass && e.r.opts.Builtins.Methods(t) == nil
}

// valueOf is what a piece denotes for the piece after it: the value a call
// returns (its first declared return type) or the symbol itself.
func (e *env) valueOf(sym *symbols.Symbol, called bool) *symbols.Symbol {
	if !called || sym == nil || !sym.Kind.IsCallable() {
		return sym
	}
	v := &symbols.Symbol{Name: sym.Name, Kind: symbols.SymbolVariable, Span: sym.Span, Path: sym.Path, Module: sym.Module}
	if sym.Signature != nil && len(sym.Signature.Returns) > 0 {
		v.Type = sym.Signature.Returns[0]
	}
	return v
}

// likeType binds LIKE table.column and RECORD LIKE table.* through
// temporary tables of the module, then the schema.
func (e *env) likeType(t *types.Type) *types.Type {
	tbl, ok := e.r.mod.Tables.Lookup(t.LikeTable)
	if !ok && e.r.opts.Schema != nil {
		tbl, ok = e.r.opts.Schema.Table(e.ctx, t.LikeTable)
	}
	if !ok || tbl.Type == nil {
		return nil
	}
	if t.LikeColumn == "" {
		return tbl.Type
	}
	f, ok := tbl.Type.Field(t.LikeColumn)
	if !ok {
		return nil
	}
	return f.Type
}

// elementIf narrows an indexed array symbol to its element.
func (e *env) elementIf(sym *symbols.Symbol, indexed bool) *symbols.Symbol {
	if !indexed || sym == nil {
		return sym
	}
	t := e.ResolveType(sym.Type)
	if !t.IsArray() || t.Elem == nil {
		return sym
	}
	cp := *sym
	cp.Type = t.Elem
	return &cp
}
