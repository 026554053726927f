package symbols

// ModuleExports is the serialisable part of a ModuleResult: what other
// modules may see. The workspace caches it between runs so cross-module
// lookups work before a module is re-parsed.
type ModuleExports struct {
	Name    string    `msgpack:"name"`
	Path    string    `msgpack:"path"`
	Project string    `msgpack:"project"`
	Hash    [32]byte  `msgpack:"hash"`
	Symbols []*Symbol `msgpack:"symbols"`
}

// CollectExports gathers public functions and the legacy-visible module
// variables, types and constants, plus GLOBALS entries.
func CollectExports(m *ModuleResult) *ModuleExports {
	if m == nil {
		return nil
	}
	ex := &ModuleExports{Name: m.Name, Path: m.Path, Project: m.Project}
	for _, sym := range m.Functions.All() {
		if sym.IsPublic() {
			ex.Symbols = append(ex.Symbols, sym)
		}
	}
	for _, t := range []*Table{m.Variables, m.Types, m.Constants, m.GlobalVariables, m.GlobalTypes, m.GlobalConstants} {
		ex.Symbols = append(ex.Symbols, t.All()...)
	}
	return ex
}

// Module rebuilds a lookup-only ModuleResult from exports.
func (ex *ModuleExports) Module() *ModuleResult {
	if ex == nil {
		return nil
	}
	m := NewModuleResult(ex.Name, ex.Path, 0)
	m.Project = ex.Project
	for _, sym := range ex.Symbols {
		global := sym.Flags&SymbolFlagGlobal != 0
		switch sym.Kind {
		case SymbolFunction, SymbolReport:
			m.Functions.Add(sym)
		case SymbolVariable:
			if global {
				m.GlobalVariables.Add(sym)
			} else {
				m.Variables.Add(sym)
			}
		case SymbolType:
			if global {
				m.GlobalTypes.Add(sym)
			} else {
				m.Types.Add(sym)
			}
		case SymbolConstant:
			if global {
				m.GlobalConstants.Add(sym)
			} else {
				m.Constants.Add(sym)
			}
		}
	}
	return m
}
