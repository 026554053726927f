package ast

import "fglsense/internal/source"

type TypeClass uint8

const (
	TypeScalar TypeClass = iota
	TypeNamed
	TypeLike       // LIKE table.column
	TypeRecord     // RECORD ... END RECORD, поля - дочерние NodeVarDef
	TypeRecordLike // RECORD LIKE table.*
	TypeArray      // тип элемента - единственный дочерний узел
)

var typeClassNames = [...]string{"scalar", "named", "like", "record", "record-like", "array"}

func (c TypeClass) String() string {
	if int(c) < len(typeClassNames) {
		return typeClassNames[c]
	}
	return "unknown"
}

type ArrayKind uint8

const (
	ArrayNone ArrayKind = iota
	ArrayStatic
	ArrayDynamic
	ArrayJava
)

var arrayKindNames = [...]string{"none", "static", "dynamic", "java"}

func (k ArrayKind) String() string {
	if int(k) < len(arrayKindNames) {
		return arrayKindNames[k]
	}
	return "unknown"
}

// TypeRef is the payload of a NodeTypeRef node.
type TypeRef struct {
	Class TypeClass
	// Name is the lower-cased scalar name ("integer", "char") or the type
	// name as written for TypeNamed (may be dotted: "pkg.Class").
	Name     string
	NameSpan source.Span
	// Args are size/precision arguments: CHAR(10), DECIMAL(10,2).
	Args []ExprID
	// Qualifier is "YEAR TO SECOND" style text for DATETIME/INTERVAL.
	Qualifier string

	Array ArrayKind
	// Dims are the static dimension expressions; dynamic arrays keep
	// DimCount only.
	Dims     []ExprID
	DimCount int

	LikeTable  string
	LikeColumn string
}
