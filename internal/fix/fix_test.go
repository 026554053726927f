package fix

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fglsense/internal/diag"
	"fglsense/internal/source"
)

func span(id source.FileID, start, end uint32) source.Span {
	return source.Span{File: id, Start: start, End: end}
}

func rename(sp source.Span, to string) diag.Diagnostic {
	return diag.New(diag.SevError, diag.SemaUnresolvedSymbol, sp, "unknown name").
		WithFix("rename to "+to, diag.FixEdit{Span: sp, NewText: to})
}

func TestBuildAppliesBackToFront(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("/p/main.4gl", []byte("CALL fo()\nCALL ba()\n"), 0)

	plan, err := Build(fs, []diag.Diagnostic{
		rename(span(id, 15, 17), "bar"),
		rename(span(id, 5, 7), "foo"),
	})
	require.NoError(t, err)
	require.Len(t, plan.Files, 1)
	assert.Equal(t, "CALL foo()\nCALL bar()\n", string(plan.Files[0].Content))
	assert.Equal(t, 2, plan.Files[0].Edits)
	assert.Len(t, plan.Applied, 2)
}

func TestBuildSkipsConflictsAndVirtual(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("/p/main.4gl", []byte("CALL fo()\n"), 0)
	buf := fs.AddVirtual("draft.4gl", []byte("CALL fo()\n"))

	plan, err := Build(fs, []diag.Diagnostic{
		rename(span(id, 5, 7), "foo"),
		rename(span(id, 6, 8), "oops"),
		rename(span(buf, 5, 7), "foo"),
	})
	require.NoError(t, err)
	assert.Len(t, plan.Applied, 1)
	require.Len(t, plan.Skipped, 2)
	reasons := []string{plan.Skipped[0].Reason, plan.Skipped[1].Reason}
	assert.Contains(t, reasons, "conflicts with an earlier fix")
	assert.Contains(t, reasons, "target file is virtual")
}

func TestBuildNoFixes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("/p/main.4gl", []byte("x"), 0)
	_, err := Build(fs, []diag.Diagnostic{diag.New(diag.SevError, diag.SemaUnresolvedSymbol, span(id, 0, 1), "unknown")})
	assert.ErrorIs(t, err, ErrNoFixes)
}

func TestWrite(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/p/main.4gl", []byte("old"), 0o600))

	err := Write(mem, &Plan{Files: []FileChange{{Path: "/p/main.4gl", Content: []byte("new")}}})
	require.NoError(t, err)
	got, err := afero.ReadFile(mem, "/p/main.4gl")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}
