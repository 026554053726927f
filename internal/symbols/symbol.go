package symbols

import (
	"fglsense/internal/ast"
	"fglsense/internal/source"
	"fglsense/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolVariable
	SymbolParam
	SymbolField
	SymbolType
	SymbolConstant
	SymbolFunction
	SymbolReport
	SymbolMethod
	SymbolCursor
	SymbolPrepared
	SymbolTable
	SymbolColumn
	SymbolModule  // IMPORT FGL m
	SymbolPackage // ui, base, om, util, os, Java-пакеты
	SymbolClass
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolParam:
		return "param"
	case SymbolField:
		return "field"
	case SymbolType:
		return "type"
	case SymbolConstant:
		return "constant"
	case SymbolFunction:
		return "function"
	case SymbolReport:
		return "report"
	case SymbolMethod:
		return "method"
	case SymbolCursor:
		return "cursor"
	case SymbolPrepared:
		return "prepared"
	case SymbolTable:
		return "table"
	case SymbolColumn:
		return "column"
	case SymbolModule:
		return "module"
	case SymbolPackage:
		return "package"
	case SymbolClass:
		return "class"
	default:
		return "invalid"
	}
}

// IsCallable reports whether symbols of this kind are invoked with ().
func (k SymbolKind) IsCallable() bool {
	return k == SymbolFunction || k == SymbolReport || k == SymbolMethod
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagPublic SymbolFlags = 1 << iota
	SymbolFlagGlobal
	SymbolFlagBuiltin
	SymbolFlagImported
	SymbolFlagLimited
	SymbolFlagSystem // status, int_flag, sqlca, ...
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if f&SymbolFlagPublic != 0 {
		labels = append(labels, "public")
	}
	if f&SymbolFlagGlobal != 0 {
		labels = append(labels, "global")
	}
	if f&SymbolFlagBuiltin != 0 {
		labels = append(labels, "builtin")
	}
	if f&SymbolFlagImported != 0 {
		labels = append(labels, "imported")
	}
	if f&SymbolFlagLimited != 0 {
		labels = append(labels, "limited")
	}
	if f&SymbolFlagSystem != 0 {
		labels = append(labels, "system")
	}
	return labels
}

type Param struct {
	Name string
	Type *types.Type
}

// Signature describes a callable.
type Signature struct {
	Params  []Param
	Returns []*types.Type
	// Variadic is set for built-ins that take any number of arguments.
	Variadic bool
}

// Symbol describes a named entity. Symbols are immutable once added to a
// Table.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Flags     SymbolFlags
	Type      *types.Type
	Span      source.Span // имя в месте объявления
	Path      string      // файл, где объявлено
	Module    string
	Node      ast.NodeID
	Signature *Signature
	Value     string // текст значения для CONSTANT
	Doc       string
}

func (s *Symbol) IsPublic() bool  { return s != nil && s.Flags&SymbolFlagPublic != 0 }
func (s *Symbol) IsBuiltin() bool { return s != nil && s.Flags&SymbolFlagBuiltin != 0 }

// Detail is a one-line description for hover and completion.
func (s *Symbol) Detail() string {
	if s == nil {
		return ""
	}
	switch s.Kind {
	case SymbolFunction, SymbolReport, SymbolMethod:
		return s.Kind.String() + " " + s.Name + s.Signature.String()
	case SymbolConstant:
		if s.Value != "" {
			return "constant " + s.Name + " = " + s.Value
		}
	}
	if s.Type != nil {
		return s.Kind.String() + " " + s.Name + " " + s.Type.String()
	}
	return s.Kind.String() + " " + s.Name
}

func (sig *Signature) String() string {
	if sig == nil {
		return "()"
	}
	out := "("
	for i, p := range sig.Params {
		if i > 0 {
			out += ", "
		}
		out += p.Name
		if p.Type != nil {
			out += " " + p.Type.String()
		}
	}
	if sig.Variadic {
		if len(sig.Params) > 0 {
			out += ", "
		}
		out += "..."
	}
	out += ")"
	if len(sig.Returns) > 0 {
		out += " RETURNS ("
		for i, r := range sig.Returns {
			if i > 0 {
				out += ", "
			}
			out += r.String()
		}
		out += ")"
	}
	return out
}
