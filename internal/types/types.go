// Package types is the resolved type model of declared variables: scalars,
// named types, LIKE references, arrays and records. Named and LIKE types are
// bound lazily by the resolver.
package types

import (
	"fmt"
	"strings"

	"fglsense/internal/ast"
	"fglsense/internal/ident"
	"fglsense/internal/source"
)

// Kind enumerates the supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindDecimal
	KindFloat
	KindString
	KindDate
	KindDatetime
	KindInterval
	KindBool
	KindByte
	KindNamed // ссылка на TYPE t
	KindLike  // LIKE table.column, RECORD LIKE table.*
	KindArray
	KindRecord
	KindClass  // класс из пакета (ui.Window, base.Channel)
	KindModule // пространство имён IMPORT FGL / пакета
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindDatetime:
		return "datetime"
	case KindInterval:
		return "interval"
	case KindBool:
		return "bool"
	case KindByte:
		return "byte"
	case KindNamed:
		return "named"
	case KindLike:
		return "like"
	case KindArray:
		return "array"
	case KindRecord:
		return "record"
	case KindClass:
		return "class"
	case KindModule:
		return "module"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type describes a declared type. Values are built once while parsing a
// declaration and never mutated afterwards.
type Type struct {
	Kind Kind
	// Name is the canonical scalar name ("integer", "varchar"), the named
	// type or class name, or the table for RECORD LIKE.
	Name      string
	Size      string // "10", "10,2"
	Qualifier string // квалификатор DATETIME/INTERVAL

	Array ast.ArrayKind
	Dims  int
	Elem  *Type

	Fields []Field

	LikeTable  string
	LikeColumn string // пусто для RECORD LIKE t.*
}

type Field struct {
	Name string
	Type *Type
	Span source.Span
}

// AddField appends a record field. Field names are unique ignoring case;
// a duplicate is rejected and false returned.
func (t *Type) AddField(f Field) bool {
	if _, ok := t.Field(f.Name); ok {
		return false
	}
	t.Fields = append(t.Fields, f)
	return true
}

// Field finds a record field by case-insensitive name.
func (t *Type) Field(name string) (*Field, bool) {
	if t == nil {
		return nil, false
	}
	key := ident.Fold(name)
	for i := range t.Fields {
		if ident.Fold(t.Fields[i].Name) == key {
			return &t.Fields[i], true
		}
	}
	return nil, false
}

func (t *Type) IsArray() bool  { return t != nil && t.Kind == KindArray }
func (t *Type) IsRecord() bool { return t != nil && t.Kind == KindRecord }

// IsStringLike reports whether string methods apply to values of t.
func (t *Type) IsStringLike() bool {
	return t != nil && t.Kind == KindString
}

func (t *Type) String() string {
	if t == nil {
		return "<unknown>"
	}
	switch t.Kind {
	case KindArray:
		prefix := "ARRAY"
		switch t.Array {
		case ast.ArrayDynamic:
			prefix = "DYNAMIC ARRAY"
			if t.Dims > 1 {
				prefix += fmt.Sprintf(" WITH DIMENSION %d", t.Dims)
			}
		case ast.ArrayStatic:
			prefix = fmt.Sprintf("ARRAY[%d]", t.Dims)
		case ast.ArrayJava:
			prefix = "ARRAY[]"
		}
		return prefix + " OF " + t.Elem.String()
	case KindRecord:
		var sb strings.Builder
		sb.WriteString("RECORD(")
		for i, f := range t.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(f.Name)
			sb.WriteByte(' ')
			sb.WriteString(f.Type.String())
		}
		sb.WriteByte(')')
		return sb.String()
	case KindLike:
		if t.LikeColumn == "" {
			return "RECORD LIKE " + t.LikeTable + ".*"
		}
		return "LIKE " + t.LikeTable + "." + t.LikeColumn
	case KindNamed, KindClass, KindModule:
		return t.Name
	default:
		s := strings.ToUpper(t.Name)
		if t.Size != "" {
			s += "(" + t.Size + ")"
		}
		if t.Qualifier != "" {
			s += " " + t.Qualifier
		}
		return s
	}
}
