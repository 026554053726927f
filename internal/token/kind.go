package token

// Kind represents the concrete type of a source token.
type Kind uint16

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Whitespace
	Newline
	Comment

	Ident
	IntLit
	DecLit
	StringLit

	Plus      // +
	Minus     // -
	Star      // *
	StarStar  // **
	Slash     // /
	Eq        // =
	EqEq      // ==
	NotEq     // <> or !=
	Lt        // <
	LtEq      // <=
	Gt        // >
	GtEq      // >=
	Concat    // ||
	Comma     // ,
	Dot       // .
	Colon     // :
	Semicolon // ;
	LParen    // (
	RParen    // )
	LBracket  // [
	RBracket  // ]
	Amp       // &
	Question  // ?
	Dollar    // $
	At        // @

	kwBegin
	KwAbsolute
	KwAccept
	KwAction
	KwAfter
	KwAll
	KwAnd
	KwArray
	KwAs
	KwAt
	KwAttributes
	KwBefore
	KwBetween
	KwBigint
	KwBoolean
	KwBy
	KwByte
	KwCall
	KwCase
	KwCatch
	KwChar
	KwClear
	KwClipped
	KwClose
	KwCommand
	KwConstant
	KwConstruct
	KwContinue
	KwCreate
	KwCurrent
	KwCursor
	KwDatabase
	KwDate
	KwDatetime
	KwDay
	KwDecimal
	KwDeclare
	KwDefine
	KwDelete
	KwDialog
	KwDimension
	KwDisplay
	KwDynamic
	KwElse
	KwEnd
	KwError
	KwExecute
	KwExit
	KwFalse
	KwFetch
	KwFgl
	KwField
	KwFirst
	KwFloat
	KwFor
	KwForeach
	KwForm
	KwFormat
	KwFraction
	KwFree
	KwFrom
	KwFunction
	KwGlobals
	KwHold
	KwHour
	KwIf
	KwImport
	KwIn
	KwInitialize
	KwInput
	KwInsert
	KwInteger
	KwInterval
	KwInto
	KwIs
	KwJava
	KwKey
	KwLast
	KwLet
	KwLike
	KwMain
	KwMatches
	KwMenu
	KwMessage
	KwMinute
	KwMod
	KwMoney
	KwMonth
	KwName
	KwNext
	KwNot
	KwNull
	KwOf
	KwOn
	KwOpen
	KwOr
	KwOtherwise
	KwPage
	KwPrepare
	KwPrevious
	KwPrint
	KwPrivate
	KwPublic
	KwRecord
	KwReport
	KwReturn
	KwReturning
	KwReturns
	KwRow
	KwRun
	KwSchema
	KwScroll
	KwSecond
	KwSelect
	KwSerial
	KwSkip
	KwSleep
	KwSmallfloat
	KwSmallint
	KwSQL
	KwStep
	KwString
	KwTable
	KwTemp
	KwText
	KwThen
	KwTinyint
	KwTo
	KwToday
	KwTrue
	KwTry
	KwType
	KwUnits
	KwUpdate
	KwUsing
	KwValues
	KwVarchar
	KwWhen
	KwWhenever
	KwWhere
	KwWhile
	KwWindow
	KwWith
	KwWithout
	KwYear
	kwEnd

	kindCount
)

// IsKeyword reports whether k is a language keyword.
func (k Kind) IsKeyword() bool { return k > kwBegin && k < kwEnd }

// IsTrivia reports whether k carries no syntactic meaning.
func (k Kind) IsTrivia() bool {
	return k == Whitespace || k == Newline || k == Comment
}

// Keywords returns every keyword kind in declaration order.
func Keywords() []Kind {
	out := make([]Kind, 0, kwEnd-kwBegin-1)
	for k := kwBegin + 1; k < kwEnd; k++ {
		out = append(out, k)
	}
	return out
}
