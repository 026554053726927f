package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"fglsense/internal/ast"
	"fglsense/internal/diag"
	"fglsense/internal/source"
	"fglsense/internal/token"
)

// TestJSONBasic: заголовок, позиции и заметки одной диагностики.
func TestJSONBasic(t *testing.T) {
	bag, fs := unresolvedBag(t)

	var buf bytes.Buffer
	opts := JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
	}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output Output
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %+v", output)
	}
	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "SEM3001" || d.Title != "Unresolved symbol" {
		t.Errorf("unexpected header fields: %+v", d)
	}
	want := Location{File: "main.4gl", StartByte: 22, EndByte: 29, StartLine: 2, StartCol: 10, EndLine: 2, EndCol: 17}
	if d.Location != want {
		t.Errorf("location = %+v, want %+v", d.Location, want)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "in function f" {
		t.Errorf("notes = %+v", d.Notes)
	}
}

func TestJSONWithoutPositionsAndMax(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.4gl", []byte("CALL a()\nCALL b()\n"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: id, Start: 5, End: 6}, "a"))
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: id, Start: 14, End: 15}, "b"))

	out := BuildOutput(bag, fs, JSONOpts{Max: 1})
	if out.Count != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	loc := out.Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 {
		t.Errorf("positions without IncludePositions: %+v", loc)
	}
	if out.Diagnostics[0].Notes != nil {
		t.Errorf("notes without IncludeNotes: %+v", out.Diagnostics[0].Notes)
	}
}

func TestJSONFixPreview(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("MAIN\n    DISPLAY x\nEND MAIN\n")
	id := fs.AddVirtual("m.4gl", content)
	start := uint32(bytes.Index(content, []byte("x")))
	span := source.Span{File: id, Start: start, End: start + 1}
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.SemaUnresolvedSymbol, span, "x").
		WithFix("rename", diag.FixEdit{Span: span, NewText: "y"}))

	out := BuildOutput(bag, fs, JSONOpts{IncludeFixes: true, IncludePreviews: true})
	fixes := out.Diagnostics[0].Fixes
	if len(fixes) != 1 || len(fixes[0].Edits) != 1 {
		t.Fatalf("fixes = %+v", fixes)
	}
	edit := fixes[0].Edits[0]
	if edit.OldText != "x" || edit.NewText != "y" {
		t.Errorf("edit = %+v", edit)
	}
	if len(edit.BeforeLines) != 1 || edit.BeforeLines[0] != "    DISPLAY x" || edit.AfterLines[0] != "    DISPLAY y" {
		t.Errorf("preview = %q -> %q", edit.BeforeLines, edit.AfterLines)
	}
}

func TestFormatTokensJSON(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.4gl", []byte("LET a\n= 1"))
	file := fs.Get(id)
	toks := []token.Token{
		{Kind: token.Ident, Span: source.Span{File: id, Start: 4, End: 5}, Text: "a"},
		{Kind: token.IntLit, Span: source.Span{File: id, Start: 8, End: 9}, Text: "1"},
		{Kind: token.EOF, Span: source.Span{File: id, Start: 9, End: 9}},
		{Kind: token.Ident, Span: source.Span{File: id, Start: 9, End: 9}},
	}
	var buf bytes.Buffer
	if err := FormatTokensJSON(&buf, toks, file); err != nil {
		t.Fatal(err)
	}
	var got []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("tokens after EOF were printed: %+v", got)
	}
	if got[1].Line != 2 || got[1].Col != 3 {
		t.Errorf("position of 1 = %d:%d", got[1].Line, got[1].Col)
	}
}

func TestFormatASTPretty(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("MAIN\nEND MAIN\n")
	id := fs.AddVirtual("m.4gl", content)
	tree := ast.NewTree(id, ast.Hints{})
	root := tree.NewNode(ast.NodeModule, source.Span{File: id, Start: 0, End: 14})
	tree.Root = root
	main := tree.NewNode(ast.NodeMain, source.Span{File: id, Start: 0, End: 13})
	tree.AddChild(root, main)
	tree.Finish(main, 13, true)

	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, tree, fs.Get(id)); err != nil {
		t.Fatal(err)
	}
	want := "m.4gl (span: 1:1-3:1)\n└─ " + ast.NodeMain.String() + " (span: 1:1-2:9)\n"
	if buf.String() != want {
		t.Errorf("dump = %q, want %q", buf.String(), want)
	}
}
