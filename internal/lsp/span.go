package lsp

import (
	"slices"
	"unicode/utf16"
	"unicode/utf8"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"fglsense/internal/source"
)

// u32 saturates: negative gives 0, too large gives MaxUint32.
func u32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return ^uint32(0)
	}
	return v
}

// lineRange returns the byte range of a 0-based line without its newline.
// LineIdx holds the offset of every '\n'.
func lineRange(f *source.File, line int) (start, end uint32) {
	size := u32(len(f.Content))
	if line > len(f.LineIdx) {
		return size, size
	}
	if line > 0 {
		start = f.LineIdx[line-1] + 1
	}
	end = size
	if line < len(f.LineIdx) {
		end = f.LineIdx[line]
	}
	return min(start, end), end
}

// utf16Cols counts the UTF-16 code units in text.
func utf16Cols(text []byte) int {
	n := 0
	for len(text) > 0 {
		r, size := utf8.DecodeRune(text)
		n += max(utf16.RuneLen(r), 1)
		text = text[size:]
	}
	return n
}

// offsetForPositionInFile maps an LSP position to a byte offset. A column
// past the line end, or inside a surrogate pair, stops at the rune before.
func offsetForPositionInFile(f *source.File, pos protocol.Position) uint32 {
	if f == nil || len(f.Content) == 0 {
		return 0
	}
	start, end := lineRange(f, int(pos.Line))
	off, cols := start, uint32(0)
	for off < end {
		r, size := utf8.DecodeRune(f.Content[off:end])
		w := u32(max(utf16.RuneLen(r), 1))
		if cols+w > pos.Character {
			break
		}
		cols += w
		off += u32(size)
	}
	return off
}

func positionForOffsetInFile(f *source.File, offset uint32) protocol.Position {
	if f == nil {
		return protocol.Position{}
	}
	offset = min(offset, u32(len(f.Content)))
	line, _ := slices.BinarySearch(f.LineIdx, offset)
	start, _ := lineRange(f, line)
	start = min(start, offset)
	return protocol.Position{
		Line:      u32(line),
		Character: u32(utf16Cols(f.Content[start:offset])),
	}
}

func rangeForSpan(f *source.File, sp source.Span) protocol.Range {
	if f == nil {
		return protocol.Range{}
	}
	return protocol.Range{
		Start: positionForOffsetInFile(f, sp.Start),
		End:   positionForOffsetInFile(f, sp.End),
	}
}
