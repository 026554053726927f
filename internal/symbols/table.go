package symbols

import "fglsense/internal/ident"

// Table is an insertion-ordered name→symbol map with case-insensitive keys.
// The first declaration of a name wins.
type Table struct {
	byKey map[string]*Symbol
	order []*Symbol
}

func NewTable() *Table {
	return &Table{byKey: make(map[string]*Symbol)}
}

// Add registers sym. When the name is taken the existing symbol is returned
// with false and sym is dropped.
func (t *Table) Add(sym *Symbol) (*Symbol, bool) {
	key := ident.Fold(sym.Name)
	if prev, ok := t.byKey[key]; ok {
		return prev, false
	}
	t.byKey[key] = sym
	t.order = append(t.order, sym)
	return sym, true
}

func (t *Table) Lookup(name string) (*Symbol, bool) {
	if t == nil {
		return nil, false
	}
	sym, ok := t.byKey[ident.Fold(name)]
	return sym, ok
}

// All returns symbols in declaration order. READONLY
func (t *Table) All() []*Symbol {
	if t == nil {
		return nil
	}
	return t.order
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}
