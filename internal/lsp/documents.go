package lsp

import (
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"fglsense/internal/analysis"
)

func (s *Server) didOpen(_ *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.openDocs[uri] = params.TextDocument.Text
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()
	s.refresh(uri)
	return nil
}

func (s *Server) didChange(_ *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.openDocs[uri] = applyChanges(s.openDocs[uri], params.ContentChanges)
	s.versions[uri] = params.TextDocument.Version
	s.mu.Unlock()
	s.scheduleDiagnostics(uri)
	return nil
}

func (s *Server) didSave(_ *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	if params.Text != nil {
		s.openDocs[uri] = *params.Text
	}
	s.stopTimerLocked(uri)
	s.mu.Unlock()
	s.refresh(uri)
	return nil
}

// didClose drops the buffer; the module goes back to its content on disk,
// or out of the workspace when there is none.
func (s *Server) didClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := canonicalURI(params.TextDocument.URI)
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	s.stopTimerLocked(uri)
	delete(s.openDocs, uri)
	delete(s.versions, uri)
	_, hadDiagnostics := s.published[uri]
	delete(s.published, uri)
	s.mu.Unlock()

	if ws := s.currentWorkspace(); ws != nil {
		path := uriToPath(uri)
		if _, err := ws.Refresh(s.baseCtx, path); err != nil {
			ws.Remove(path)
		}
	}
	if hadDiagnostics {
		s.sendPublish(uri, nil, nil)
	}
	return nil
}

// scheduleDiagnostics debounces reanalysis of uri.
func (s *Server) scheduleDiagnostics(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdown {
		return
	}
	s.stopTimerLocked(uri)
	s.timers[uri] = time.AfterFunc(s.opts.Debounce, func() {
		s.mu.Lock()
		delete(s.timers, uri)
		s.mu.Unlock()
		s.refresh(uri)
	})
}

func (s *Server) stopTimerLocked(uri string) {
	if t, ok := s.timers[uri]; ok {
		t.Stop()
		delete(s.timers, uri)
	}
}

// runDiagnostics reanalyses the buffer of uri and publishes its
// diagnostics.
func (s *Server) runDiagnostics(uri string) *analysis.Document {
	s.mu.Lock()
	text, open := s.openDocs[uri]
	version := s.versions[uri]
	ws := s.ws
	s.mu.Unlock()
	if !open || ws == nil {
		return nil
	}
	doc, err := ws.Update(s.baseCtx, uriToPath(uri), []byte(text))
	if err != nil {
		s.log.WithError(err).WithField("uri", uri).Debug("analysis canceled")
		return nil
	}
	s.sendPublish(uri, &version, toDiagnostics(ws, doc))
	return doc
}

// refresh reanalyses uri and then the open modules importing it, whose
// names may bind differently now.
func (s *Server) refresh(uri string) {
	if s.runDiagnostics(uri) == nil {
		return
	}
	ws := s.currentWorkspace()
	if ws == nil {
		return
	}
	for _, path := range ws.Dependents(uriToPath(uri)) {
		dep := canonicalURI(pathToURI(path))
		s.mu.Lock()
		_, open := s.openDocs[dep]
		s.mu.Unlock()
		if open {
			s.runDiagnostics(dep)
		}
	}
}

// document returns an analysis of uri that reflects the latest buffer.
// A pending debounced run is done now.
func (s *Server) document(uri protocol.DocumentUri) *analysis.Document {
	key := canonicalURI(uri)
	s.mu.Lock()
	_, pending := s.timers[key]
	s.stopTimerLocked(key)
	ws := s.ws
	s.mu.Unlock()
	if ws == nil {
		return nil
	}
	if pending {
		return s.runDiagnostics(key)
	}
	if doc, ok := ws.Document(uriToPath(key)); ok {
		return doc
	}
	return s.runDiagnostics(key)
}

// recheckOpen reanalyses every open buffer after indexing, since names
// from modules indexed meanwhile may now resolve.
func (s *Server) recheckOpen() {
	s.mu.Lock()
	uris := make([]string, 0, len(s.openDocs))
	for uri := range s.openDocs {
		uris = append(uris, uri)
	}
	s.mu.Unlock()
	for _, uri := range uris {
		s.runDiagnostics(uri)
	}
}

func (s *Server) sendPublish(uri string, version *int32, list []protocol.Diagnostic) {
	if list == nil {
		list = []protocol.Diagnostic{}
	}
	s.mu.Lock()
	notify := s.notify
	if len(list) > 0 {
		s.published[uri] = struct{}{}
	}
	s.mu.Unlock()
	if notify == nil {
		return
	}
	params := protocol.PublishDiagnosticsParams{URI: uri, Diagnostics: list}
	if version != nil {
		v := protocol.UInteger(*version)
		params.Version = &v
	}
	notify(protocol.ServerTextDocumentPublishDiagnostics, params)
}
