package lsp

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	mainSrc = `FUNCTION process_all()
    CALL remote_fn()
    CALL nowhere()
END FUNCTION
`
	libSrc = `PUBLIC FUNCTION remote_fn()
END FUNCTION
`
)

type notifications struct {
	mu   sync.Mutex
	sent []protocol.PublishDiagnosticsParams
}

func (n *notifications) notify(method string, params any) {
	if method != protocol.ServerTextDocumentPublishDiagnostics {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, params.(protocol.PublishDiagnosticsParams))
}

func (n *notifications) last(t *testing.T, uri string) protocol.PublishDiagnosticsParams {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].URI == uri {
			return n.sent[i]
		}
	}
	t.Fatalf("no diagnostics published for %s", uri)
	return protocol.PublishDiagnosticsParams{}
}

// startServer initializes a server over an in-memory project and waits
// for the initial index.
func startServer(t *testing.T) (*Server, *notifications) {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/proj/fglsense.toml": "[project]\nname = \"orders\"\n",
		"/proj/main.4gl":      mainSrc,
		"/proj/lib.4gl":       libSrc,
	}
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	s := NewServer(ServerOptions{Version: "test", Fs: fs, Debounce: time.Hour})
	n := &notifications{}
	ctx := &glsp.Context{Notify: n.notify}
	root := pathToURI("/proj")
	if _, err := s.initialize(ctx, &protocol.InitializeParams{RootURI: &root}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := s.initialized(ctx, &protocol.InitializedParams{}); err != nil {
		t.Fatalf("initialized: %v", err)
	}
	select {
	case <-s.indexed:
	case <-time.After(10 * time.Second):
		t.Fatal("index did not finish")
	}
	t.Cleanup(func() {
		_ = s.shutdownHandler(ctx)
	})
	return s, n
}

func open(t *testing.T, s *Server, path, text string) string {
	t.Helper()
	uri := pathToURI(path)
	err := s.didOpen(nil, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "4gl", Version: 1, Text: text},
	})
	if err != nil {
		t.Fatalf("didOpen: %v", err)
	}
	return uri
}

// positionOf returns the position of the first occurrence of needle
// (ASCII text only).
func positionOf(t *testing.T, text, needle string) protocol.Position {
	t.Helper()
	off := strings.Index(text, needle)
	if off < 0 {
		t.Fatalf("%q not found", needle)
	}
	line := strings.Count(text[:off], "\n")
	col := off - (strings.LastIndex(text[:off], "\n") + 1)
	return protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)}
}

func TestPublishDiagnosticsOnOpen(t *testing.T) {
	s, n := startServer(t)
	uri := open(t, s, "/proj/main.4gl", mainSrc)

	got := n.last(t, uri)
	if got.Version == nil || *got.Version != 1 {
		t.Fatalf("version = %v", got.Version)
	}
	if len(got.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %+v", got.Diagnostics)
	}
	d := got.Diagnostics[0]
	if d.Code == nil || d.Code.Value != "SEM3001" {
		t.Fatalf("code = %+v", d.Code)
	}
	if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
		t.Fatalf("severity = %v", d.Severity)
	}
	start := positionOf(t, mainSrc, "nowhere")
	if d.Range.Start != start || d.Range.End.Character != start.Character+7 {
		t.Fatalf("range = %+v", d.Range)
	}
}

func TestIncrementalChangeRepublishes(t *testing.T) {
	s, n := startServer(t)
	uri := open(t, s, "/proj/main.4gl", mainSrc)

	at := positionOf(t, mainSrc, "nowhere")
	end := at
	end.Character += 7
	err := s.didChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEvent{
				Range: &protocol.Range{Start: at, End: end},
				Text:  "remote_fn",
			},
		},
	})
	if err != nil {
		t.Fatalf("didChange: %v", err)
	}
	// запрос сбрасывает отложенный анализ
	if doc := s.document(uri); doc == nil {
		t.Fatal("no document")
	}
	got := n.last(t, uri)
	if got.Version == nil || *got.Version != 2 {
		t.Fatalf("version = %v", got.Version)
	}
	if len(got.Diagnostics) != 0 {
		t.Fatalf("diagnostics after fix = %+v", got.Diagnostics)
	}
}

func TestCompletionOffersProjectFunctions(t *testing.T) {
	s, _ := startServer(t)
	text := "FUNCTION f()\n    CALL rem\nEND FUNCTION\n"
	uri := open(t, s, "/proj/scratch.4gl", text)

	at := positionOf(t, text, "rem\n")
	at.Character += 3
	res, err := s.completion(nil, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     at,
		},
	})
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	list, ok := res.(protocol.CompletionList)
	if !ok {
		t.Fatalf("completion result = %T", res)
	}
	var found *protocol.CompletionItem
	for i := range list.Items {
		if list.Items[i].Label == "remote_fn" {
			found = &list.Items[i]
		}
	}
	if found == nil {
		t.Fatalf("remote_fn not offered: %+v", list.Items)
	}
	if found.Kind == nil || *found.Kind != protocol.CompletionItemKindFunction {
		t.Fatalf("kind = %v", found.Kind)
	}
	edit, ok := found.TextEdit.(protocol.TextEdit)
	if !ok || edit.Range.Start.Character != at.Character-3 || edit.Range.End != at {
		t.Fatalf("text edit = %+v", found.TextEdit)
	}
}

func TestDefinitionAndHover(t *testing.T) {
	s, _ := startServer(t)
	uri := open(t, s, "/proj/main.4gl", mainSrc)
	at := positionOf(t, mainSrc, "remote_fn")
	at.Character += 2
	pos := protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     at,
	}

	res, err := s.definition(nil, &protocol.DefinitionParams{TextDocumentPositionParams: pos})
	if err != nil {
		t.Fatalf("definition: %v", err)
	}
	loc, ok := res.(protocol.Location)
	if !ok {
		t.Fatalf("definition result = %T", res)
	}
	if loc.URI != pathToURI("/proj/lib.4gl") || loc.Range.Start != positionOf(t, libSrc, "remote_fn") {
		t.Fatalf("location = %+v", loc)
	}

	h, err := s.hover(nil, &protocol.HoverParams{TextDocumentPositionParams: pos})
	if err != nil || h == nil {
		t.Fatalf("hover: %v %v", h, err)
	}
	content, ok := h.Contents.(protocol.MarkupContent)
	if !ok || !strings.Contains(content.Value, "remote_fn()") {
		t.Fatalf("hover contents = %+v", h.Contents)
	}
}

func TestCloseClearsDiagnostics(t *testing.T) {
	s, n := startServer(t)
	uri := open(t, s, "/proj/scratch.4gl", "FUNCTION f()\n    CALL missing()\nEND FUNCTION\n")
	if got := n.last(t, uri); len(got.Diagnostics) == 0 {
		t.Fatal("expected diagnostics before close")
	}
	if err := s.didClose(nil, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}); err != nil {
		t.Fatalf("didClose: %v", err)
	}
	if got := n.last(t, uri); len(got.Diagnostics) != 0 {
		t.Fatalf("diagnostics after close = %+v", got.Diagnostics)
	}
	if _, ok := s.currentWorkspace().Document("/proj/scratch.4gl"); ok {
		t.Fatal("unsaved buffer still in workspace")
	}
}

func TestApplyChanges(t *testing.T) {
	text := "ab🙂c\nxyz\n"
	got := applyChanges(text, []any{
		protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 4},
				End:   protocol.Position{Line: 1, Character: 1},
			},
			Text: "-",
		},
	})
	if got != "ab🙂-yz\n" {
		t.Fatalf("applyChanges = %q", got)
	}
	got = applyChanges(got, []any{protocol.TextDocumentContentChangeEventWhole{Text: "new"}})
	if got != "new" {
		t.Fatalf("whole replace = %q", got)
	}
}

func TestCanonicalURI(t *testing.T) {
	cases := map[string]string{
		"file:///proj/src/../main.4gl": "file:///proj/main.4gl",
		"file:///proj/a%20b.4gl":       "file:///proj/a%20b.4gl",
		"untitled:Untitled-1":          "",
	}
	for in, want := range cases {
		if got := canonicalURI(in); got != want {
			t.Errorf("canonicalURI(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCodeActionOffersRename(t *testing.T) {
	s, _ := startServer(t)
	text := "FUNCTION typo()\n    CALL remote_fm()\nEND FUNCTION\n"
	uri := open(t, s, "/proj/typo.4gl", text)

	at := positionOf(t, text, "remote_fm")
	res, err := s.codeAction(nil, &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Range:        protocol.Range{Start: at, End: at},
	})
	if err != nil {
		t.Fatalf("codeAction: %v", err)
	}
	actions, _ := res.([]protocol.CodeAction)
	if len(actions) != 1 {
		t.Fatalf("actions = %+v", res)
	}
	edits := actions[0].Edit.Changes[uri]
	if len(edits) != 1 || edits[0].NewText != "remote_fn" || edits[0].Range.Start != at {
		t.Fatalf("edits = %+v", edits)
	}
	if actions[0].IsPreferred == nil || !*actions[0].IsPreferred {
		t.Error("first fix should be preferred")
	}
}
