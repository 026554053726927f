package token

import "strings"

var keywords = func() map[string]Kind {
	m := make(map[string]Kind, kwEnd-kwBegin)
	for k := kwBegin + 1; k < kwEnd; k++ {
		m[strings.ToLower(kindNames[k])] = k
	}
	// синонимы
	m["int"] = KwInteger
	m["dec"] = KwDecimal
	m["numeric"] = KwDecimal
	m["character"] = KwChar
	m["real"] = KwSmallfloat
	m["double"] = KwFloat
	return m
}()

// LookupKeyword reports whether ident is a keyword. Keywords are
// case-insensitive: "if", "If" and "IF" all map to KwIf.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[strings.ToLower(ident)]
	return k, ok
}

// reserved keywords never act as identifiers.
var reserved = map[Kind]bool{
	KwAnd: true, KwCall: true, KwCase: true, KwCatch: true, KwConstant: true,
	KwConstruct: true, KwContinue: true, KwDeclare: true, KwDefine: true,
	KwDisplay: true, KwElse: true, KwEnd: true, KwExit: true, KwFalse: true,
	KwFor: true, KwForeach: true, KwFunction: true, KwGlobals: true, KwIf: true,
	KwImport: true, KwInput: true, KwLet: true, KwMain: true, KwMenu: true,
	KwNot: true, KwNull: true, KwOr: true, KwOtherwise: true, KwPrivate: true,
	KwPublic: true, KwRecord: true, KwReport: true, KwReturn: true,
	KwReturning: true, KwThen: true, KwTrue: true, KwTry: true, KwWhen: true,
	KwWhile: true, KwPrepare: true, KwSchema: true,
	KwDatabase: true, KwWhenever: true, KwInitialize: true, KwMod: true,
	KwLike: true, KwMatches: true, KwOf: true, KwTo: true, KwStep: true,
	KwUsing: true, KwClipped: true, KwBetween: true, KwIs: true,
}

// IsReserved reports whether k can never be used as an identifier.
func IsReserved(k Kind) bool { return reserved[k] }

// CanBeIdent reports whether a token of kind k may stand for a name.
func CanBeIdent(k Kind) bool {
	return k == Ident || (k.IsKeyword() && !reserved[k])
}
