// Package token defines lexical token kinds and categories for the 4GL
// language front-end.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Keywords are case-insensitive; Token.Text keeps the original spelling.
//   - Trivia (whitespace, newlines, comments) are ordinary tokens with their
//     own kinds so that a reverse view of the buffer can see them; forward
//     cursors skip them.
//   - Non-reserved keywords (NAME, KEY, TEXT, ...) may also act as identifiers;
//     the parser decides by position, see IsReserved.
package token
