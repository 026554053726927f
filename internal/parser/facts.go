package parser

import (
	"fglsense/internal/diag"
	"fglsense/internal/symbols"
)

// Facts is what a statement tells its enclosing scope about itself:
// declarations, cursor and prepared-statement bindings, RETURN sites and
// limited-scope variables. Statement parsers return Facts upward and the
// owner of the scope merges them; nested statements never reach into an
// ancestor directly.
type Facts struct {
	Vars      []*symbols.Symbol
	Types     []*symbols.Symbol
	Constants []*symbols.Symbol
	Cursors   []*symbols.Symbol
	Prepared  []*symbols.Symbol
	Tables    []*symbols.Symbol
	Limited   []symbols.LimitedVar
	Returns   []symbols.ReturnSite
}

// Merge appends other to f.
func (f *Facts) Merge(other Facts) {
	f.Vars = append(f.Vars, other.Vars...)
	f.Types = append(f.Types, other.Types...)
	f.Constants = append(f.Constants, other.Constants...)
	f.Cursors = append(f.Cursors, other.Cursors...)
	f.Prepared = append(f.Prepared, other.Prepared...)
	f.Tables = append(f.Tables, other.Tables...)
	f.Limited = append(f.Limited, other.Limited...)
	f.Returns = append(f.Returns, other.Returns...)
}

// declare adds syms to t, reporting every name that is already taken at
// the later declaration.
func (p *Parser) declare(t *symbols.Table, syms []*symbols.Symbol) {
	for _, sym := range syms {
		if prev, ok := t.Add(sym); !ok {
			p.reportDuplicate(sym, prev)
		}
	}
}

func (p *Parser) reportDuplicate(sym, prev *symbols.Symbol) {
	p.reportNote(diag.SynDuplicateDefinition, sym.Span, "\""+sym.Name+"\" is already defined",
		prev.Span, "first definition is here")
}

// bindModuleWide registers the facts that are module-scoped wherever they
// occur: cursors, prepared statements and temp tables. Redeclaring a cursor
// is legal, the first declaration stays.
func (p *Parser) bindModuleWide(f Facts) {
	for _, c := range f.Cursors {
		p.mod.Cursors.Add(c)
	}
	for _, s := range f.Prepared {
		p.mod.Prepared.Add(s)
	}
	for _, t := range f.Tables {
		p.mod.Tables.Add(t)
	}
}

// bindModule merges module-level declarations.
func (p *Parser) bindModule(f Facts) {
	p.declare(p.mod.Variables, f.Vars)
	p.declare(p.mod.Types, f.Types)
	p.declare(p.mod.Constants, f.Constants)
	p.bindModuleWide(f)
}

// bindGlobals merges declarations of a GLOBALS block.
func (p *Parser) bindGlobals(f Facts) {
	p.declare(p.mod.GlobalVariables, f.Vars)
	p.declare(p.mod.GlobalTypes, f.Types)
	p.declare(p.mod.GlobalConstants, f.Constants)
	p.bindModuleWide(f)
}

// bindFunction merges the facts of a function body into its scope.
func (p *Parser) bindFunction(fr *symbols.FunctionResult, f Facts) {
	p.declare(fr.Locals, f.Vars)
	p.declare(fr.Types, f.Types)
	p.declare(fr.Constants, f.Constants)
	fr.Limited = append(fr.Limited, f.Limited...)
	fr.Returns = append(fr.Returns, f.Returns...)
	p.bindModuleWide(f)
}
