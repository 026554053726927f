package token

import "strings"

var kindNames = [kindCount]string{
	Invalid:    "invalid",
	EOF:        "eof",
	Whitespace: "whitespace",
	Newline:    "newline",
	Comment:    "comment",
	Ident:      "identifier",
	IntLit:     "integer",
	DecLit:     "decimal",
	StringLit:  "string",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	StarStar:   "**",
	Slash:      "/",
	Eq:         "=",
	EqEq:       "==",
	NotEq:      "<>",
	Lt:         "<",
	LtEq:       "<=",
	Gt:         ">",
	GtEq:       ">=",
	Concat:     "||",
	Comma:      ",",
	Dot:        ".",
	Colon:      ":",
	Semicolon:  ";",
	LParen:     "(",
	RParen:     ")",
	LBracket:   "[",
	RBracket:   "]",
	Amp:        "&",
	Question:   "?",
	Dollar:     "$",
	At:         "@",

	KwAbsolute:   "ABSOLUTE",
	KwAccept:     "ACCEPT",
	KwAction:     "ACTION",
	KwAfter:      "AFTER",
	KwAll:        "ALL",
	KwAnd:        "AND",
	KwArray:      "ARRAY",
	KwAs:         "AS",
	KwAt:         "AT",
	KwAttributes: "ATTRIBUTES",
	KwBefore:     "BEFORE",
	KwBetween:    "BETWEEN",
	KwBigint:     "BIGINT",
	KwBoolean:    "BOOLEAN",
	KwBy:         "BY",
	KwByte:       "BYTE",
	KwCall:       "CALL",
	KwCase:       "CASE",
	KwCatch:      "CATCH",
	KwChar:       "CHAR",
	KwClear:      "CLEAR",
	KwClipped:    "CLIPPED",
	KwClose:      "CLOSE",
	KwCommand:    "COMMAND",
	KwConstant:   "CONSTANT",
	KwConstruct:  "CONSTRUCT",
	KwContinue:   "CONTINUE",
	KwCreate:     "CREATE",
	KwCurrent:    "CURRENT",
	KwCursor:     "CURSOR",
	KwDatabase:   "DATABASE",
	KwDate:       "DATE",
	KwDatetime:   "DATETIME",
	KwDay:        "DAY",
	KwDecimal:    "DECIMAL",
	KwDeclare:    "DECLARE",
	KwDefine:     "DEFINE",
	KwDelete:     "DELETE",
	KwDialog:     "DIALOG",
	KwDimension:  "DIMENSION",
	KwDisplay:    "DISPLAY",
	KwDynamic:    "DYNAMIC",
	KwElse:       "ELSE",
	KwEnd:        "END",
	KwError:      "ERROR",
	KwExecute:    "EXECUTE",
	KwExit:       "EXIT",
	KwFalse:      "FALSE",
	KwFetch:      "FETCH",
	KwFgl:        "FGL",
	KwField:      "FIELD",
	KwFirst:      "FIRST",
	KwFloat:      "FLOAT",
	KwFor:        "FOR",
	KwForeach:    "FOREACH",
	KwForm:       "FORM",
	KwFormat:     "FORMAT",
	KwFraction:   "FRACTION",
	KwFree:       "FREE",
	KwFrom:       "FROM",
	KwFunction:   "FUNCTION",
	KwGlobals:    "GLOBALS",
	KwHold:       "HOLD",
	KwHour:       "HOUR",
	KwIf:         "IF",
	KwImport:     "IMPORT",
	KwIn:         "IN",
	KwInitialize: "INITIALIZE",
	KwInput:      "INPUT",
	KwInsert:     "INSERT",
	KwInteger:    "INTEGER",
	KwInterval:   "INTERVAL",
	KwInto:       "INTO",
	KwIs:         "IS",
	KwJava:       "JAVA",
	KwKey:        "KEY",
	KwLast:       "LAST",
	KwLet:        "LET",
	KwLike:       "LIKE",
	KwMain:       "MAIN",
	KwMatches:    "MATCHES",
	KwMenu:       "MENU",
	KwMessage:    "MESSAGE",
	KwMinute:     "MINUTE",
	KwMod:        "MOD",
	KwMoney:      "MONEY",
	KwMonth:      "MONTH",
	KwName:       "NAME",
	KwNext:       "NEXT",
	KwNot:        "NOT",
	KwNull:       "NULL",
	KwOf:         "OF",
	KwOn:         "ON",
	KwOpen:       "OPEN",
	KwOr:         "OR",
	KwOtherwise:  "OTHERWISE",
	KwPage:       "PAGE",
	KwPrepare:    "PREPARE",
	KwPrevious:   "PREVIOUS",
	KwPrint:      "PRINT",
	KwPrivate:    "PRIVATE",
	KwPublic:     "PUBLIC",
	KwRecord:     "RECORD",
	KwReport:     "REPORT",
	KwReturn:     "RETURN",
	KwReturning:  "RETURNING",
	KwReturns:    "RETURNS",
	KwRow:        "ROW",
	KwRun:        "RUN",
	KwSchema:     "SCHEMA",
	KwScroll:     "SCROLL",
	KwSecond:     "SECOND",
	KwSelect:     "SELECT",
	KwSerial:     "SERIAL",
	KwSkip:       "SKIP",
	KwSleep:      "SLEEP",
	KwSmallfloat: "SMALLFLOAT",
	KwSmallint:   "SMALLINT",
	KwSQL:        "SQL",
	KwStep:       "STEP",
	KwString:     "STRING",
	KwTable:      "TABLE",
	KwTemp:       "TEMP",
	KwText:       "TEXT",
	KwThen:       "THEN",
	KwTinyint:    "TINYINT",
	KwTo:         "TO",
	KwToday:      "TODAY",
	KwTrue:       "TRUE",
	KwTry:        "TRY",
	KwType:       "TYPE",
	KwUnits:      "UNITS",
	KwUpdate:     "UPDATE",
	KwUsing:      "USING",
	KwValues:     "VALUES",
	KwVarchar:    "VARCHAR",
	KwWhen:       "WHEN",
	KwWhenever:   "WHENEVER",
	KwWhere:      "WHERE",
	KwWhile:      "WHILE",
	KwWindow:     "WINDOW",
	KwWith:       "WITH",
	KwWithout:    "WITHOUT",
	KwYear:       "YEAR",
}

var nameToKind = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k := Kind(0); k < kindCount; k++ {
		if kindNames[k] != "" {
			m[strings.ToLower(kindNames[k])] = k
		}
	}
	return m
}()

func (k Kind) String() string {
	if k < kindCount && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// KindByName looks up a kind by its display name ("IF", "identifier", "<>").
// Used by the context grammar loader; case-insensitive.
func KindByName(name string) (Kind, bool) {
	k, ok := nameToKind[strings.ToLower(name)]
	return k, ok
}
