package resolve

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"fglsense/internal/source"
)

// Piece is one dot-separated segment of a name path.
type Piece struct {
	Text string
	Span source.Span
	// Indexed is set when the segment carried a subscript: arr[i].
	Indexed bool
	// Call is set for the segment truncated at "(".
	Call bool
	// Star marks the trailing rec.* segment.
	Star bool
}

// Split cuts a name path into pieces on '.' outside brackets. Subscripts
// are kept in the span but not in Text. A piece ends its name at a
// top-level '(' and the argument list is skipped, so f(x).a gives f (Call)
// and a. Leading and repeated dots are skipped. at is the span of text in
// its file.
func Split(text string, at source.Span) []Piece {
	var (
		out   []Piece
		depth int
		start = 0
		idx   bool
		args  = -1 // начало списка аргументов текущего куска
	)
	flush := func(end int) {
		call := args >= 0
		if call {
			end = args
		}
		raw := text[start:end]
		name := raw
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			idx = false
			return
		}
		lead := strings.Index(raw, trimmed)
		s := at.Start + off(start+lead)
		e := s + off(len(trimmed))
		if idx {
			e = at.Start + off(len(strings.TrimRight(text[:end], " \t")))
		}
		out = append(out, Piece{
			Text:    trimmed,
			Span:    source.Span{File: at.File, Start: s, End: e},
			Indexed: idx,
			Call:    call,
			Star:    trimmed == "*",
		})
		idx = false
	}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '[':
			if depth == 0 {
				idx = true
			}
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '(':
			if depth == 0 && args < 0 {
				args = i
			}
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				flush(i)
				start, args = i+1, -1
			}
		}
	}
	flush(len(text))
	return out
}

func off(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("piece offset overflow: %w", err))
	}
	return v
}
