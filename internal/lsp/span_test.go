package lsp

import (
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"fglsense/internal/source"
)

func TestPositionsCountUTF16(t *testing.T) {
	fs := source.NewFileSet()
	// "é" is one UTF-16 unit in two bytes, "😀" two units in four bytes.
	id := fs.AddVirtual("u.4gl", []byte("LET a = 1\nDISPLAY \"é😀\", x\n"))
	f := fs.Get(id)

	x := uint32(len("LET a = 1\nDISPLAY \"é😀\", "))
	pos := positionForOffsetInFile(f, x)
	if pos.Line != 1 || pos.Character != 15 {
		t.Fatalf("position of x = %+v", pos)
	}
	if got := offsetForPositionInFile(f, pos); got != x {
		t.Errorf("offset = %d, want %d", got, x)
	}

	emoji := uint32(len("LET a = 1\nDISPLAY \"é"))
	if got := offsetForPositionInFile(f, protocol.Position{Line: 1, Character: 11}); got != emoji {
		t.Errorf("column inside a surrogate pair gave %d, want %d", got, emoji)
	}
	if got := offsetForPositionInFile(f, protocol.Position{Line: 0, Character: 99}); got != 9 {
		t.Errorf("column past line end gave %d", got)
	}
	if got := offsetForPositionInFile(f, protocol.Position{Line: 7}); got != uint32(len(f.Content)) {
		t.Errorf("line past end gave %d", got)
	}
}
