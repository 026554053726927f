// Package ast is the arena-backed syntax tree of a 4GL module.
//
// Nodes are tagged variants: Node.Kind selects the construct and kind-specific
// data is either stored in the common fields (Name, Exprs, Keyword, Flags) or
// in one of the payload arenas of Tree (FuncDecl, TypeRef, ImportDecl,
// CursorDecl). Parents are NodeID handles, children are NodeID lists sorted
// by start offset so containment lookups are binary searches.
package ast
