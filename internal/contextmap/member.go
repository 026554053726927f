package contextmap

import (
	"fmt"

	"fglsense/internal/ident"
	"fglsense/internal/symbols"
)

// Kind tags a completion member.
type Kind uint8

const (
	KindKeyword Kind = iota
	KindVariable
	KindConstant
	KindFunction
	KindReport
	KindType
	KindCursor
	KindPrepared
	KindTable
	KindColumn
	KindField
	KindMethod
	KindModule
	KindPackage
	KindClass
)

var kindNames = [...]string{
	KindKeyword:  "keyword",
	KindVariable: "variable",
	KindConstant: "constant",
	KindFunction: "function",
	KindReport:   "report",
	KindType:     "type",
	KindCursor:   "cursor",
	KindPrepared: "prepared",
	KindTable:    "table",
	KindColumn:   "column",
	KindField:    "field",
	KindMethod:   "method",
	KindModule:   "module",
	KindPackage:  "package",
	KindClass:    "class",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// KindByName parses the names used in the grammar document.
func KindByName(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return KindKeyword, false
}

// KindOf maps a symbol to its completion kind.
func KindOf(sym *symbols.Symbol) Kind {
	switch sym.Kind {
	case symbols.SymbolVariable, symbols.SymbolParam:
		return KindVariable
	case symbols.SymbolConstant:
		return KindConstant
	case symbols.SymbolFunction:
		return KindFunction
	case symbols.SymbolReport:
		return KindReport
	case symbols.SymbolType:
		return KindType
	case symbols.SymbolCursor:
		return KindCursor
	case symbols.SymbolPrepared:
		return KindPrepared
	case symbols.SymbolTable:
		return KindTable
	case symbols.SymbolColumn:
		return KindColumn
	case symbols.SymbolField:
		return KindField
	case symbols.SymbolMethod:
		return KindMethod
	case symbols.SymbolModule:
		return KindModule
	case symbols.SymbolPackage:
		return KindPackage
	case symbols.SymbolClass:
		return KindClass
	}
	return KindVariable
}

// Member is one completion candidate. Symbol is nil for keywords.
type Member struct {
	Name   string
	Kind   Kind
	Symbol *symbols.Symbol
}

// IsKeyword reports whether m is a literal keyword.
func (m Member) IsKeyword() bool { return m.Symbol == nil && m.Kind == KindKeyword }

// State of a classification.
type State uint8

const (
	// NoEntry means the table has nothing for the token before the cursor.
	NoEntry State = iota
	// MatchedEntry means an entry was found; Members may still be empty.
	MatchedEntry
)

// MemberSet is the result of a classification. The Defer flags ask the
// caller to add project-wide public functions or database tables itself,
// since those sets are only complete after indexing.
type MemberSet struct {
	State                State
	Members              []Member
	DeferPublicFunctions bool
	DeferDatabaseTables  bool

	seen map[string]bool
}

// Add appends m unless a member with the same name and keyword-ness is
// already present.
func (s *MemberSet) Add(m Member) {
	key := ident.Fold(m.Name)
	if m.IsKeyword() {
		key = "\x00" + key
	}
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.Members = append(s.Members, m)
}

// Names lists member names in order.
func (s *MemberSet) Names() []string {
	out := make([]string, len(s.Members))
	for i, m := range s.Members {
		out[i] = m.Name
	}
	return out
}
