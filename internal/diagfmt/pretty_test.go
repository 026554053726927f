package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"fglsense/internal/diag"
	"fglsense/internal/source"
)

func unresolvedBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	content := []byte("FUNCTION f()\n    CALL nowhere()\nEND FUNCTION\n")
	id := fs.AddVirtual("/home/user/project/src/main.4gl", content)
	start := uint32(bytes.Index(content, []byte("nowhere")))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol,
		source.Span{File: id, Start: start, End: start + 7},
		"unresolved symbol \"nowhere\"").
		WithNote(source.Span{File: id, Start: 9, End: 10}, "in function f"))
	return bag, fs
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	bag, fs := unresolvedBag(t)
	tests := []struct {
		name     string
		mode     PathMode
		contains string
		absent   string
	}{
		{name: "Absolute path", mode: PathModeAbsolute, contains: "/home/user/project/src/main.4gl:2:10:"},
		{name: "Relative path", mode: PathModeRelative, contains: "\nsrc/main.4gl:2:10:", absent: "/home"},
		{name: "Auto path", mode: PathModeAuto, contains: "src/main.4gl:2:10:", absent: "/home"},
		{name: "Basename only", mode: PathModeBasename, contains: "main.4gl:2:10:", absent: "src/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode, BaseDir: "/home/user/project"})
			out := "\n" + buf.String()
			if !strings.Contains(out, tt.contains) {
				t.Errorf("expected output to contain %q, got:\n%s", tt.contains, out)
			}
			if tt.absent != "" && strings.Contains(out, tt.absent) {
				t.Errorf("output should not contain %q, got:\n%s", tt.absent, out)
			}
		})
	}
}

func TestPrettyUnderline(t *testing.T) {
	bag, fs := unresolvedBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 4 {
		t.Fatalf("short output:\n%s", buf.String())
	}
	if !strings.HasSuffix(lines[0], "ERROR SEM3001: unresolved symbol \"nowhere\"") {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2 |     CALL nowhere()" {
		t.Errorf("source line = %q", lines[1])
	}
	if lines[2] != "  |          ^~~~~~~" {
		t.Errorf("underline = %q", lines[2])
	}
	if !strings.Contains(lines[3], "= note:") || !strings.Contains(lines[3], "in function f") {
		t.Errorf("note = %q", lines[3])
	}
}

func TestPrettyWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("LET s = \"日本\" || x\n")
	id := fs.AddVirtual("w.4gl", content)
	start := uint32(bytes.Index(content, []byte("x")))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: id, Start: start, End: start + 1}, "x"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	// два широких символа занимают по две колонки
	want := "  | " + strings.Repeat(" ", len("LET s = \"")+4+len("\" || ")) + "^"
	if lines[2] != want {
		t.Errorf("underline = %q, want %q", lines[2], want)
	}
}

func TestPrettyContextAndFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("MAIN\n    DISPLAY x\nEND MAIN\n")
	id := fs.AddVirtual("m.4gl", content)
	start := uint32(bytes.Index(content, []byte("x")))
	span := source.Span{File: id, Start: start, End: start + 1}
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevWarning, diag.SemaUnresolvedSymbol, span, "x").
		WithFix("rename", diag.FixEdit{Span: span, NewText: "y"}))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, ShowFixes: true, ShowPreview: true})
	out := buf.String()
	for _, want := range []string{"1 | MAIN", "2 |     DISPLAY x", "3 | END MAIN", "= fix: rename", "- " + "    DISPLAY x", "+ " + "    DISPLAY y"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatPath(t *testing.T) {
	if got := formatPath("/other/x.4gl", PathModeAuto, "/proj"); got != "/other/x.4gl" {
		t.Errorf("auto outside base = %q", got)
	}
	if got := formatPath("/proj/a/x.4gl", PathModeAuto, "/proj"); got != "a/x.4gl" {
		t.Errorf("auto inside base = %q", got)
	}
	if _, ok := ParsePathMode("weird"); ok {
		t.Error("ParsePathMode accepted an unknown mode")
	}
}
