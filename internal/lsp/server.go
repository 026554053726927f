// Package lsp serves a workspace over the Language Server Protocol:
// diagnostics on open/change/save, completion, go-to-definition and hover.
package lsp

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"fglsense/internal/workspace"
)

const lsName = "fglsense"

// ErrNotInitialized is returned for requests that arrive before initialize.
var ErrNotInitialized = errors.New("lsp: server not initialized")

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	Version string
	Fs      afero.Fs
	Env     workspace.Env
	Logger  logrus.FieldLogger
	// Debounce delays diagnostics after a change; zero means 300ms.
	Debounce time.Duration
	// Debug makes glsp log every message.
	Debug bool
}

// Server handles LSP requests for one workspace.
type Server struct {
	opts    ServerOptions
	handler protocol.Handler
	server  *server.Server
	log     logrus.FieldLogger
	baseCtx context.Context
	cancel  context.CancelFunc

	mu        sync.Mutex
	ws        *workspace.Workspace
	notify    glsp.NotifyFunc
	openDocs  map[string]string // uri -> text
	versions  map[string]int32
	published map[string]struct{}
	timers    map[string]*time.Timer
	indexed   chan struct{}
	shutdown  bool
}

// NewServer constructs a new LSP server.
func NewServer(opts ServerOptions) *Server {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 300 * time.Millisecond
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		opts:      opts,
		log:       log.WithField("component", "lsp"),
		baseCtx:   ctx,
		cancel:    cancel,
		openDocs:  make(map[string]string),
		versions:  make(map[string]int32),
		published: make(map[string]struct{}),
		timers:    make(map[string]*time.Timer),
		indexed:   make(chan struct{}),
	}
	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdownHandler,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.didOpen,
		TextDocumentDidChange:  s.didChange,
		TextDocumentDidSave:    s.didSave,
		TextDocumentDidClose:   s.didClose,
		TextDocumentCompletion: s.completion,
		TextDocumentDefinition: s.definition,
		TextDocumentHover:      s.hover,
		TextDocumentCodeAction: s.codeAction,
	}
	s.server = server.NewServer(&s.handler, lsName, opts.Debug)
	return s
}

// RunStdio serves requests on stdin/stdout until the client exits.
func (s *Server) RunStdio() error {
	defer s.cancel()
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	root := "."
	switch {
	case params.RootURI != nil && *params.RootURI != "":
		if p := uriToPath(*params.RootURI); p != "" {
			root = p
		}
	case params.RootPath != nil && *params.RootPath != "":
		root = *params.RootPath
	case len(params.WorkspaceFolders) > 0:
		if p := uriToPath(params.WorkspaceFolders[0].URI); p != "" {
			root = p
		}
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	ws, err := s.openWorkspace(root)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.ws = ws
	s.notify = ctx.Notify
	s.mu.Unlock()
	s.log.WithField("root", root).WithField("project", ws.Config().Project).Info("workspace opened")

	capabilities := s.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindIncremental),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}
	capabilities.HoverProvider = true
	capabilities.DefinitionProvider = true
	capabilities.CodeActionProvider = &protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix},
	}

	version := s.opts.Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func (s *Server) openWorkspace(root string) (*workspace.Workspace, error) {
	cfg, m, err := workspace.LoadConfig(s.opts.Fs, root, s.opts.Env)
	if err != nil {
		return nil, err
	}
	if len(m.Unknown) > 0 {
		s.log.WithField("keys", m.Unknown).Warn("unknown manifest keys")
	}
	return workspace.Open(workspace.Options{
		Fs:     s.opts.Fs,
		Config: cfg,
		Logger: s.log,
	})
}

// initialized warms the registry from the export cache and indexes the
// project in the background; open documents are re-checked afterwards.
func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	ws := s.currentWorkspace()
	if ws == nil {
		return ErrNotInitialized
	}
	go func() {
		defer close(s.indexed)
		if _, err := ws.Warm(s.baseCtx); err != nil {
			s.log.WithError(err).Debug("warm failed")
		}
		if _, err := ws.Index(s.baseCtx); err != nil {
			s.log.WithError(err).Warn("index failed")
			return
		}
		s.recheckOpen()
	}()
	return nil
}

func (s *Server) shutdownHandler(_ *glsp.Context) error {
	s.mu.Lock()
	s.shutdown = true
	for uri, t := range s.timers {
		t.Stop()
		delete(s.timers, uri)
	}
	s.mu.Unlock()
	s.cancel()
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) currentWorkspace() *workspace.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
