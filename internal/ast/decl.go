package ast

import "fglsense/internal/source"

type Param struct {
	Name string
	Span source.Span
	// Type is the inline parameter type (name TYPE form); NoNodeID for the
	// classic form where parameters are typed by DEFINE in the body.
	Type NodeID
}

// FuncDecl is the payload of Main, Function and Report nodes.
type FuncDecl struct {
	Params  []Param
	Returns []NodeID // TypeRef nodes from RETURNS (...)
	Body    source.Span
}

type ImportKind uint8

const (
	ImportFGL ImportKind = iota
	ImportPackage
	ImportJava
)

type ImportDecl struct {
	Kind ImportKind
	// Path is the dotted path as written; Alias is the last segment, the
	// name by which the import is referenced.
	Path  string
	Alias string
}

// CursorDecl is the payload of DECLARE and PREPARE nodes.
type CursorDecl struct {
	// Prepared is the statement id for DECLARE c CURSOR FOR stmt_id.
	Prepared     string
	PreparedSpan source.Span
	// SQL is the raw text of an inline SELECT.
	SQL string
}
