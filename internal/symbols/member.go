package symbols

import (
	"fglsense/internal/ident"
	"fglsense/internal/types"
)

// MemberEnv gives member lookup access to what a symbol alone does not
// know: declared types, database columns, built-in method sets and
// namespaces.
type MemberEnv interface {
	// ResolveType binds named and LIKE types to their definition; other
	// types are returned as is. Nil when the binding is unknown.
	ResolveType(t *types.Type) *types.Type
	// Methods returns the built-in methods applicable to values of t.
	Methods(t *types.Type) *Table
	// NamespaceMembers lists what a module, package or class symbol exports.
	NamespaceMembers(ns *Symbol) *Table
}

// Member resolves name as a member of s: a record field, a table column, a
// method, an array element member or a namespace entry.
func (s *Symbol) Member(name string, env MemberEnv) (*Symbol, bool) {
	if s == nil {
		return nil, false
	}
	switch s.Kind {
	case SymbolModule, SymbolPackage, SymbolClass:
		if env == nil {
			return nil, false
		}
		return env.NamespaceMembers(s).Lookup(name)
	}
	return TypeMember(s.Type, name, env, s)
}

// TypeMember resolves name as a member of a value of type t. owner is used
// for the declaration location of synthesised field symbols.
func TypeMember(t *types.Type, name string, env MemberEnv, owner *Symbol) (*Symbol, bool) {
	t = resolve(t, env)
	if t == nil {
		return nil, false
	}
	if f, ok := t.Field(name); ok {
		return fieldSymbol(f, owner), true
	}
	if env != nil {
		if m, ok := env.Methods(t).Lookup(name); ok {
			return m, true
		}
	}
	// у массива без индекса члены элемента доступны напрямую: arr.field
	if t.IsArray() && t.Elem != nil {
		return TypeMember(t.Elem, name, env, owner)
	}
	return nil, false
}

// Members enumerates all members of s for completion.
func (s *Symbol) Members(env MemberEnv) []*Symbol {
	if s == nil {
		return nil
	}
	switch s.Kind {
	case SymbolModule, SymbolPackage, SymbolClass:
		if env == nil {
			return nil
		}
		return env.NamespaceMembers(s).All()
	}
	return TypeMembers(s.Type, env, s)
}

// TypeMembers enumerates fields and methods of a value of type t.
func TypeMembers(t *types.Type, env MemberEnv, owner *Symbol) []*Symbol {
	t = resolve(t, env)
	if t == nil {
		return nil
	}
	var out []*Symbol
	seen := make(map[string]bool)
	add := func(sym *Symbol) {
		key := ident.Fold(sym.Name)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, sym)
	}
	for i := range t.Fields {
		add(fieldSymbol(&t.Fields[i], owner))
	}
	if env != nil {
		for _, m := range env.Methods(t).All() {
			add(m)
		}
	}
	return out
}

func resolve(t *types.Type, env MemberEnv) *types.Type {
	if t == nil {
		return nil
	}
	if env != nil && (t.Kind == types.KindNamed || t.Kind == types.KindLike) {
		return env.ResolveType(t)
	}
	return t
}

func fieldSymbol(f *types.Field, owner *Symbol) *Symbol {
	sym := &Symbol{Name: f.Name, Kind: SymbolField, Type: f.Type, Span: f.Span}
	if owner != nil {
		sym.Path = owner.Path
		sym.Module = owner.Module
		if owner.Kind == SymbolTable {
			sym.Kind = SymbolColumn
			sym.Span = owner.Span
		}
	}
	return sym
}
