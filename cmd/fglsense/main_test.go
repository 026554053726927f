package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fglsense/internal/token"
)

const (
	mainSrc = `FUNCTION process_all()
    CALL remote_fn()
    CALL nowhere()
END FUNCTION
`
	draftSrc = `MAIN
    CALL rem
END MAIN
`
	libSrc = `PUBLIC FUNCTION remote_fn()
END FUNCTION
`
	typoSrc = `FUNCTION typo()
    CALL remote_fm()
END FUNCTION
`
)

func useMemProject(t *testing.T) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range map[string]string{
		"/proj/fglsense.toml": "[project]\nname = \"orders\"\n",
		"/proj/main.4gl":      mainSrc,
		"/proj/draft.4gl":     draftSrc,
		"/proj/lib.4gl":       libSrc,
		"/proj/typo.4gl":      typoSrc,
	} {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	prev := sourceFs
	sourceFs = fs
	t.Cleanup(func() { sourceFs = prev })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	useMemProject(t)
	out, err := execute(t, "resolve", "/proj/main.4gl", "--at", "2:12", "--format", "json")
	require.NoError(t, err)

	var got resolvePayload
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, "bound", got.Outcome)
	assert.Contains(t, got.Symbol, "remote_fn")
	assert.Equal(t, "/proj/lib.4gl:1:17", got.Definition)
}

func TestResolveCommandUnresolved(t *testing.T) {
	useMemProject(t)
	out, err := execute(t, "resolve", "/proj/main.4gl", "--at", "3:11", "--format", "json")
	require.NoError(t, err)

	var got resolvePayload
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, "unresolved", got.Outcome)
	assert.True(t, got.Deferred, "default provider mode defers unknown calls")
	assert.Equal(t, "nowhere", got.Piece)
	assert.Equal(t, "3:10", got.PieceStart)
}

func TestCompleteCommand(t *testing.T) {
	useMemProject(t)
	out, err := execute(t, "complete", "/proj/draft.4gl", "--at", "2:13", "--format", "json")
	require.NoError(t, err)

	var got completionPayload
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, "rem", got.Prefix)
	names := make([]string, 0, len(got.Items))
	for _, it := range got.Items {
		names = append(names, it.Name)
	}
	assert.Contains(t, names, "remote_fn")
}

func TestDiagApplyFixes(t *testing.T) {
	useMemProject(t)
	_, err := execute(t, "diag", "/proj/typo.4gl", "--apply-fixes", "--format", "json")
	require.ErrorIs(t, err, errDiagnostics)

	got, err := afero.ReadFile(sourceFs, "/proj/typo.4gl")
	require.NoError(t, err)
	assert.Contains(t, string(got), "CALL remote_fn()")
}

func TestParsePosition(t *testing.T) {
	line, col, err := parsePosition("12:4")
	require.NoError(t, err)
	assert.Equal(t, uint32(12), line)
	assert.Equal(t, uint32(4), col)

	for _, bad := range []string{"", "12", "0:1", "1:0", "a:b", "1:-2"} {
		_, _, err := parsePosition(bad)
		assert.Error(t, err, bad)
	}
}

func TestReadUIMode(t *testing.T) {
	mode, err := readUIMode(" ON ")
	require.NoError(t, err)
	assert.Equal(t, uiModeOn, mode)
	assert.False(t, shouldUseTUI(uiModeOff, false))
	assert.True(t, shouldUseTUI(uiModeOn, true))

	_, err = readUIMode("sometimes")
	assert.Error(t, err)
}

func TestDropTrivia(t *testing.T) {
	toks := []token.Token{
		{Kind: token.KwMain},
		{Kind: token.Newline},
		{Kind: token.Ident, Text: "x"},
		{Kind: token.EOF},
	}
	got := dropTrivia(toks)
	require.Len(t, got, 3)
	assert.Equal(t, token.Ident, got[1].Kind)
	assert.Equal(t, token.Newline, toks[1].Kind, "input slice must stay intact")
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json", "--hash")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got), out)
	assert.Equal(t, "fglsense", got["tool"])
	assert.Contains(t, got, "git_commit")
	assert.NotContains(t, got, "build_date")
}
