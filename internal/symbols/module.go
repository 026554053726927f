package symbols

import (
	"sort"

	"fglsense/internal/ast"
	"fglsense/internal/ident"
	"fglsense/internal/source"
)

type Import struct {
	Name string // имя, под которым модуль виден в коде
	Path string
	Kind ast.ImportKind
	Span source.Span
}

type IncludeRef struct {
	Path string
	Span source.Span
}

// ModuleResult is the scope container of one module. The parser fills it
// while reading declarations; afterwards it is published read-only.
type ModuleResult struct {
	Name    string
	Path    string
	File    source.FileID
	Project string
	Schema  string

	Variables *Table
	Types     *Table
	Constants *Table
	Functions *Table
	Cursors   *Table
	Prepared  *Table
	Tables    *Table

	GlobalVariables *Table
	GlobalTypes     *Table
	GlobalConstants *Table

	Imports      []Import
	GlobalsFiles []IncludeRef

	functions []*FunctionResult // отсортированы по Span.Start
	byNode    map[ast.NodeID]*FunctionResult
}

func NewModuleResult(name, path string, file source.FileID) *ModuleResult {
	return &ModuleResult{
		Name:            name,
		Path:            path,
		File:            file,
		Variables:       NewTable(),
		Types:           NewTable(),
		Constants:       NewTable(),
		Functions:       NewTable(),
		Cursors:         NewTable(),
		Prepared:        NewTable(),
		Tables:          NewTable(),
		GlobalVariables: NewTable(),
		GlobalTypes:     NewTable(),
		GlobalConstants: NewTable(),
		byNode:          make(map[ast.NodeID]*FunctionResult),
	}
}

// AddFunctionScope registers the local scope of a function-like node.
func (m *ModuleResult) AddFunctionScope(fr *FunctionResult) {
	m.byNode[fr.Node] = fr
	i := sort.Search(len(m.functions), func(i int) bool { return m.functions[i].Span.Start > fr.Span.Start })
	m.functions = append(m.functions, nil)
	copy(m.functions[i+1:], m.functions[i:])
	m.functions[i] = fr
}

// FunctionScope returns the local scope of a function node.
func (m *ModuleResult) FunctionScope(node ast.NodeID) *FunctionResult {
	if m == nil {
		return nil
	}
	return m.byNode[node]
}

// FunctionScopeAt finds the function whose span contains offset.
func (m *ModuleResult) FunctionScopeAt(offset uint32) *FunctionResult {
	if m == nil {
		return nil
	}
	i := sort.Search(len(m.functions), func(i int) bool { return m.functions[i].Span.Start > offset })
	if i == 0 {
		return nil
	}
	fr := m.functions[i-1]
	if !fr.Span.Contains(offset) {
		return nil
	}
	return fr
}

// FunctionScopes returns all function scopes in document order.
func (m *ModuleResult) FunctionScopes() []*FunctionResult {
	if m == nil {
		return nil
	}
	return m.functions
}

// LookupModule searches module-level variables, types and constants,
// then the GLOBALS counterparts.
func (m *ModuleResult) LookupModule(name string) (*Symbol, bool) {
	if m == nil {
		return nil, false
	}
	for _, t := range []*Table{m.Variables, m.Types, m.Constants, m.GlobalVariables, m.GlobalTypes, m.GlobalConstants} {
		if sym, ok := t.Lookup(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupGlobals searches only the GLOBALS tables.
func (m *ModuleResult) LookupGlobals(name string) (*Symbol, bool) {
	if m == nil {
		return nil, false
	}
	for _, t := range []*Table{m.GlobalVariables, m.GlobalTypes, m.GlobalConstants} {
		if sym, ok := t.Lookup(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupType finds a declared TYPE visible at module level.
func (m *ModuleResult) LookupType(name string) (*Symbol, bool) {
	if m == nil {
		return nil, false
	}
	if sym, ok := m.Types.Lookup(name); ok {
		return sym, true
	}
	return m.GlobalTypes.Lookup(name)
}

// LookupImport returns the import registered under name.
func (m *ModuleResult) LookupImport(name string) (Import, bool) {
	if m == nil {
		return Import{}, false
	}
	for _, imp := range m.Imports {
		if ident.Equal(imp.Name, name) {
			return imp, true
		}
	}
	return Import{}, false
}

// FunctionResult is the local scope of MAIN, a FUNCTION or a REPORT.
type FunctionResult struct {
	Symbol *Symbol
	Node   ast.NodeID
	Span   source.Span

	Locals    *Table
	Types     *Table
	Constants *Table
	Limited   []LimitedVar
	Returns   []ReturnSite
}

// LimitedVar is visible only inside Scope.
type LimitedVar struct {
	Symbol *Symbol
	Scope  source.Span
}

// ReturnSite records a RETURN statement and how many values it returns.
type ReturnSite struct {
	Span  source.Span
	Count int
}

func NewFunctionResult(sym *Symbol, node ast.NodeID, sp source.Span) *FunctionResult {
	return &FunctionResult{
		Symbol:    sym,
		Node:      node,
		Span:      sp,
		Locals:    NewTable(),
		Types:     NewTable(),
		Constants: NewTable(),
	}
}

// Lookup searches locals, local types and constants, then limited-scope
// variables whose scope contains offset.
func (f *FunctionResult) Lookup(name string, offset uint32) (*Symbol, bool) {
	if f == nil {
		return nil, false
	}
	for _, t := range []*Table{f.Locals, f.Types, f.Constants} {
		if sym, ok := t.Lookup(name); ok {
			return sym, true
		}
	}
	return f.LookupLimited(name, offset)
}

// LookupLimited searches only limited-scope variables.
func (f *FunctionResult) LookupLimited(name string, offset uint32) (*Symbol, bool) {
	if f == nil {
		return nil, false
	}
	for _, lv := range f.Limited {
		if lv.Scope.Contains(offset) && ident.Equal(lv.Symbol.Name, name) {
			return lv.Symbol, true
		}
	}
	return nil, false
}

// LimitedAt returns limited-scope variables visible at offset.
func (f *FunctionResult) LimitedAt(offset uint32) []*Symbol {
	if f == nil {
		return nil
	}
	var out []*Symbol
	for _, lv := range f.Limited {
		if lv.Scope.Contains(offset) {
			out = append(out, lv.Symbol)
		}
	}
	return out
}
