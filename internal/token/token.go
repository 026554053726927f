package token

import (
	"fglsense/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// Category returns the category of the token kind.
func (t Token) Category() Category { return CategoryOf(t.Kind) }

// IsLiteral reports whether the token is a numeric or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, DecLit, StringLit:
		return true
	default:
		return false
	}
}

// IsTrivia reports whether the token is whitespace, a newline or a comment.
func (t Token) IsTrivia() bool { return t.Kind.IsTrivia() }

// IsIdent reports whether the token may be read as a name in this position.
func (t Token) IsIdent() bool { return CanBeIdent(t.Kind) }
