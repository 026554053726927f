package ast

import (
	"fglsense/internal/source"
	"fglsense/internal/token"
)

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprIdent
	ExprIntLit
	ExprDecLit
	ExprStringLit
	ExprBoolLit
	ExprNull
	ExprKeywordValue // CURRENT, TODAY, ...
	ExprBinary       // Target Op Args[0]
	ExprUnary        // Op Target
	ExprMember       // Target.Text
	ExprStar         // Target.*
	ExprIndex        // Target[Args...]
	ExprCall         // Target(Args...)
	ExprParen
	ExprClipped  // Target CLIPPED
	ExprUsing    // Target USING Args[0]
	ExprIsNull   // Target IS [NOT] NULL; Op = KwNot для IS NOT NULL
	ExprBetween  // Target BETWEEN Args[0] AND Args[1]
	ExprList     // a, b THRU c и подобные списки внутри скобок
	ExprBadToken // синтезировано при ошибке
)

var exprKindNames = [...]string{
	ExprInvalid:      "Invalid",
	ExprIdent:        "Ident",
	ExprIntLit:       "Int",
	ExprDecLit:       "Dec",
	ExprStringLit:    "String",
	ExprBoolLit:      "Bool",
	ExprNull:         "Null",
	ExprKeywordValue: "KeywordValue",
	ExprBinary:       "Binary",
	ExprUnary:        "Unary",
	ExprMember:       "Member",
	ExprStar:         "Star",
	ExprIndex:        "Index",
	ExprCall:         "Call",
	ExprParen:        "Paren",
	ExprClipped:      "Clipped",
	ExprUsing:        "Using",
	ExprIsNull:       "IsNull",
	ExprBetween:      "Between",
	ExprList:         "List",
	ExprBadToken:     "Bad",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Unknown"
}

// IsName reports whether k is part of a name path (ident, member, index,
// call or star).
func (k ExprKind) IsName() bool {
	switch k {
	case ExprIdent, ExprMember, ExprIndex, ExprCall, ExprStar:
		return true
	default:
		return false
	}
}

type Expr struct {
	Kind   ExprKind
	Span   source.Span
	Op     token.Kind
	Text   string
	Target ExprID
	Args   []ExprID
}
