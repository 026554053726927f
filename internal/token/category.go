package token

// Category groups token kinds; the context grammar table may key on either.
type Category uint8

const (
	CatInvalid Category = iota
	CatEOF
	CatWhitespace
	CatNewline
	CatComment
	CatKeyword
	CatIdentifier
	CatNumber
	CatString
	CatOperator
	CatPunctuation
)

var categoryNames = [...]string{
	CatInvalid:     "invalid",
	CatEOF:         "eof",
	CatWhitespace:  "whitespace",
	CatNewline:     "newline",
	CatComment:     "comment",
	CatKeyword:     "keyword",
	CatIdentifier:  "identifier",
	CatNumber:      "number",
	CatString:      "string",
	CatOperator:    "operator",
	CatPunctuation: "punctuation",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// CategoryByName resolves the textual form used in grammar documents.
func CategoryByName(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return CatInvalid, false
}

// CategoryOf returns the category of a kind.
func CategoryOf(k Kind) Category {
	switch {
	case k == EOF:
		return CatEOF
	case k == Whitespace:
		return CatWhitespace
	case k == Newline:
		return CatNewline
	case k == Comment:
		return CatComment
	case k == Ident:
		return CatIdentifier
	case k == IntLit || k == DecLit:
		return CatNumber
	case k == StringLit:
		return CatString
	case k.IsKeyword():
		return CatKeyword
	case k == Comma || k == Dot || k == Colon || k == Semicolon || k == LParen ||
		k == RParen || k == LBracket || k == RBracket:
		return CatPunctuation
	case k >= Plus && k <= At:
		return CatOperator
	default:
		return CatInvalid
	}
}
