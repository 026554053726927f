// Package builtins holds the language's predefined names: system
// variables, constants, built-in functions, type methods and the
// ui/base/om/util/os class packages.
package builtins

import (
	"strings"
	"sync"

	"fglsense/internal/ident"
	"fglsense/internal/symbols"
	"fglsense/internal/types"
)

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	Variables *symbols.Table
	Constants *symbols.Table
	Functions *symbols.Table
	// Packages are the top-level namespaces: ui, base, om, util, os.
	Packages *symbols.Table

	classes       map[string]*symbols.Table // "ui.dialog" -> методы
	pkgClasses    map[string]*symbols.Table // "ui" -> классы
	arrayMethods  *symbols.Table
	stringMethods *symbols.Table
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the shared catalogue, building it on first use.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCat = build()
	})
	return defaultCat
}

func newCatalog() *Catalog {
	return &Catalog{
		Variables:     symbols.NewTable(),
		Constants:     symbols.NewTable(),
		Functions:     symbols.NewTable(),
		Packages:      symbols.NewTable(),
		classes:       make(map[string]*symbols.Table),
		pkgClasses:    make(map[string]*symbols.Table),
		arrayMethods:  symbols.NewTable(),
		stringMethods: symbols.NewTable(),
	}
}

// Lookup finds a system variable or constant.
func (c *Catalog) Lookup(name string) (*symbols.Symbol, bool) {
	if sym, ok := c.Variables.Lookup(name); ok {
		return sym, true
	}
	return c.Constants.Lookup(name)
}

// LookupFunction finds a built-in function.
func (c *Catalog) LookupFunction(name string) (*symbols.Symbol, bool) {
	return c.Functions.Lookup(name)
}

// LookupPackage finds a namespace (ui, base, ...).
func (c *Catalog) LookupPackage(name string) (*symbols.Symbol, bool) {
	return c.Packages.Lookup(name)
}

// Class returns the symbol of a qualified class name such as "ui.Dialog".
func (c *Catalog) Class(qualified string) (*symbols.Symbol, bool) {
	pkg, cls, ok := strings.Cut(qualified, ".")
	if !ok {
		return nil, false
	}
	return c.pkgClasses[ident.Fold(pkg)].Lookup(cls)
}

// Methods returns built-in methods callable on values of t.
func (c *Catalog) Methods(t *types.Type) *symbols.Table {
	switch {
	case t == nil:
		return nil
	case t.IsArray():
		return c.arrayMethods
	case t.IsStringLike():
		return c.stringMethods
	case t.Kind == types.KindClass:
		return c.classes[ident.Fold(t.Name)]
	}
	return nil
}

// NamespaceMembers lists classes of a package or methods of a class.
func (c *Catalog) NamespaceMembers(ns *symbols.Symbol) *symbols.Table {
	if ns == nil {
		return nil
	}
	switch ns.Kind {
	case symbols.SymbolPackage:
		return c.pkgClasses[ident.Fold(ns.Name)]
	case symbols.SymbolClass:
		if ns.Type != nil {
			return c.classes[ident.Fold(ns.Type.Name)]
		}
	}
	return nil
}

// All returns every top-level built-in name for completion.
func (c *Catalog) All() []*symbols.Symbol {
	out := make([]*symbols.Symbol, 0, c.Variables.Len()+c.Constants.Len()+c.Functions.Len()+c.Packages.Len())
	out = append(out, c.Variables.All()...)
	out = append(out, c.Constants.All()...)
	out = append(out, c.Functions.All()...)
	out = append(out, c.Packages.All()...)
	return out
}

// ResolveType implements symbols.MemberEnv. The catalogue declares no
// named types of its own.
func (c *Catalog) ResolveType(t *types.Type) *types.Type {
	if t == nil || t.Kind == types.KindNamed || t.Kind == types.KindLike {
		return nil
	}
	return t
}
