package source

import "testing"

func TestFileSetLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("main.4gl", []byte("MAIN\r\n  DISPLAY 1\r\nEND MAIN\r\n"))
	f := fs.Get(id)
	if f == nil {
		t.Fatalf("file not registered")
	}
	if f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("expected CRLF normalization flag")
	}
	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{4, LineCol{1, 5}},
		{5, LineCol{2, 1}},
		{7, LineCol{2, 3}},
		{17, LineCol{3, 1}},
	}
	for _, tt := range tests {
		if got := f.LineCol(tt.off); got != tt.want {
			t.Errorf("LineCol(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
	if got := f.GetLine(2); got != "  DISPLAY 1" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.Offset(1, 2); got != 7 {
		t.Fatalf("Offset(1,2) = %d, want 7", got)
	}
	if got := f.BaseName(); got != "main" {
		t.Fatalf("BaseName = %q", got)
	}
}

func TestFileSetLatestRevision(t *testing.T) {
	fs := NewFileSet()
	first := fs.AddVirtual("a.4gl", []byte("MAIN END MAIN"))
	second := fs.AddVirtual("a.4gl", []byte("MAIN\nEND MAIN"))
	if first == second {
		t.Fatalf("expected a fresh id for the new revision")
	}
	latest, ok := fs.GetLatest("a.4gl")
	if !ok || latest != second {
		t.Fatalf("GetLatest = %d,%v want %d", latest, ok, second)
	}
	if fs.Get(0) != nil {
		t.Fatalf("file id 0 must stay reserved")
	}
}

func TestSpanContainsAndCover(t *testing.T) {
	sp := Span{File: 1, Start: 10, End: 20}
	if !sp.Contains(10) || !sp.Contains(20) || sp.Contains(21) {
		t.Fatalf("unexpected Contains results for %v", sp)
	}
	got := sp.Cover(Span{File: 1, Start: 5, End: 12})
	if got.Start != 5 || got.End != 20 {
		t.Fatalf("Cover = %v", got)
	}
	if !got.Encloses(sp) {
		t.Fatalf("expected %v to enclose %v", got, sp)
	}
}
