package lsp

import (
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// applyChanges applies didChange events in order. glsp decodes each event
// either as a ranged edit or as a whole-document replacement.
func applyChanges(text string, changes []any) string {
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				text = c.Text
				continue
			}
			start := offsetForPosition(text, c.Range.Start)
			end := offsetForPosition(text, c.Range.End)
			if end < start {
				end = start
			}
			text = text[:start] + c.Text + text[end:]
		}
	}
	return text
}

// offsetForPosition maps a UTF-16 position to a byte offset in text,
// clamped to len(text).
func offsetForPosition(text string, pos protocol.Position) int {
	line := 0
	i := 0
	for i < len(text) && line < int(pos.Line) {
		if text[i] == '\n' {
			line++
		}
		i++
	}
	if line < int(pos.Line) {
		return len(text)
	}
	want := int(pos.Character)
	utf16Units := 0
	for i < len(text) && utf16Units < want {
		if text[i] == '\n' {
			break
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if utf16Units+need > want {
			break
		}
		utf16Units += need
		i += size
	}
	return i
}
