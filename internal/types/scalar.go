package types

import "fglsense/internal/ident"

var scalarKinds = map[string]Kind{
	"integer":    KindInt,
	"smallint":   KindInt,
	"bigint":     KindInt,
	"tinyint":    KindInt,
	"serial":     KindInt,
	"decimal":    KindDecimal,
	"money":      KindDecimal,
	"float":      KindFloat,
	"smallfloat": KindFloat,
	"char":       KindString,
	"varchar":    KindString,
	"string":     KindString,
	"text":       KindString,
	"date":       KindDate,
	"datetime":   KindDatetime,
	"interval":   KindInterval,
	"boolean":    KindBool,
	"byte":       KindByte,
}

// ScalarKind maps a scalar type name to its kind.
func ScalarKind(name string) (Kind, bool) {
	k, ok := scalarKinds[ident.Fold(name)]
	return k, ok
}

// Scalar builds a scalar type; unknown names yield KindInvalid.
func Scalar(name string) *Type {
	key := ident.Fold(name)
	return &Type{Kind: scalarKinds[key], Name: key}
}

var (
	Integer = Scalar("integer")
	String  = Scalar("string")
	Boolean = Scalar("boolean")
	Decimal = Scalar("decimal")
	Date    = Scalar("date")
)

// Named refers to a declared TYPE by name.
func Named(name string) *Type { return &Type{Kind: KindNamed, Name: name} }

// Class is a built-in or Java class type.
func Class(name string) *Type { return &Type{Kind: KindClass, Name: name} }

// Module marks a namespace (imported module or package).
func Module(name string) *Type { return &Type{Kind: KindModule, Name: name} }
