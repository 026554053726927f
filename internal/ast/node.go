package ast

import (
	"fglsense/internal/source"
	"fglsense/internal/token"
)

type NodeFlags uint16

const (
	FlagPublic NodeFlags = 1 << iota
	FlagPrivate
	FlagGlobal // объявлено в GLOBALS
	FlagScroll // SCROLL CURSOR
	FlagHold   // WITH HOLD
	FlagTemp   // CREATE TEMP TABLE
	FlagByName // INPUT/DISPLAY BY NAME
	FlagElse   // у IF есть ветка ELSE
	FlagArray  // INPUT ARRAY
)

func (f NodeFlags) Has(x NodeFlags) bool { return f&x != 0 }

// Node is one element of the syntax tree. Children are kept sorted by start
// offset and their starts are unique at a given level.
type Node struct {
	Kind     NodeKind
	Span     source.Span
	Parent   NodeID
	Children []NodeID
	// Complete is false when the construct was cut short by a syntax error
	// or end of file.
	Complete bool
	// DecoratorEnd is the end of the introducing keyword clause
	// ("FUNCTION name(args)", "IF cond THEN", ...). Zero when unset.
	DecoratorEnd uint32
	// ExtraDecorators hold secondary keyword spans such as the ELSE of an IF.
	ExtraDecorators []source.Span

	Name     string
	NameSpan source.Span
	Exprs    []ExprID
	// Type is the TypeRef node of a declaration (VarDef, TypeDef, ConstDef).
	// Several VarDefs of one "DEFINE a, b INTEGER" group share it.
	Type    NodeID
	Keyword token.Kind
	Flags   NodeFlags
	Payload PayloadID
}

// Visibility helpers for declarations.
func (n *Node) IsPublic() bool  { return n.Flags.Has(FlagPublic) }
func (n *Node) IsPrivate() bool { return n.Flags.Has(FlagPrivate) }
