// Package workspace indexes a project: it reads fglsense.toml, scans the
// source directories, analyses every module in parallel, publishes the
// results to the provider registry and finally re-resolves the names the
// first pass deferred. Editors use it as the store of open documents.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"fglsense/internal/analysis"
	"fglsense/internal/contextmap"
	"fglsense/internal/diag"
	"fglsense/internal/ident"
	"fglsense/internal/provider"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/trace"
)

// Options configure Open.
type Options struct {
	Fs     afero.Fs
	Config Config
	// Registry is shared with other workspaces when given.
	Registry *provider.Registry
	// Table overrides Config.Grammar.
	Table    *contextmap.Table
	Logger   logrus.FieldLogger
	Progress ProgressSink
}

// Workspace owns the documents of one project. Its methods are safe for
// concurrent use.
type Workspace struct {
	fs       afero.Fs
	cfg      Config
	reg      *provider.Registry
	ac       *analysis.Context
	cache    *ExportCache
	log      logrus.FieldLogger
	progress ProgressSink

	mu       sync.RWMutex
	files    *source.FileSet
	docs     map[string]*analysis.Document
	includes map[string]*analysis.Document // GLOBALS path as written -> document
	// Diagnostics holds findings that belong to no document: unreadable
	// files and duplicate module names.
	diags *diag.Bag
}

// Report summarises one Index run.
type Report struct {
	Documents []*analysis.Document
	// Referenced counts modules indexed from referenced projects.
	Referenced int
	Deferred   int
	Escalated  int
	Elapsed    time.Duration
}

// Open prepares a workspace without reading any source file.
func Open(opts Options) (*Workspace, error) {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	log := opts.Logger
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	reg := opts.Registry
	if reg == nil {
		reg = provider.NewRegistry()
	}
	cfg := opts.Config
	if cfg.Project == "" {
		return nil, errors.New("workspace: project name is empty")
	}

	table := opts.Table
	if table == nil && cfg.Grammar != "" {
		var err error
		if table, err = contextmap.LoadFile(fs, cfg.Grammar); err != nil {
			return nil, err
		}
	}

	acfg := analysis.Config{
		Table:          table,
		Functions:      reg,
		Modules:        reg,
		Project:        cfg.Project,
		Mode:           cfg.Mode,
		MaxDiagnostics: cfg.MaxDiagnostics,
		Logger:         log,
	}
	if cfg.SchemaFile != "" {
		db, tables, err := provider.LoadSchema(fs, cfg.SchemaFile)
		if err != nil {
			return nil, err
		}
		reg.SetSchema(tables)
		acfg.Schema = reg
		log.WithField("database", db).WithField("tables", len(tables)).Info("schema loaded")
	}

	var cache *ExportCache
	if cfg.CacheDir != "" {
		var err error
		if cache, err = OpenExportCache(fs, cfg.CacheDir); err != nil {
			return nil, err
		}
	}

	return &Workspace{
		fs:       fs,
		cfg:      cfg,
		reg:      reg,
		ac:       analysis.NewContext(acfg),
		cache:    cache,
		log:      log.WithField("project", cfg.Project),
		progress: opts.Progress,
		files:    source.NewFileSet(),
		docs:     make(map[string]*analysis.Document),
		includes: make(map[string]*analysis.Document),
		diags:    diag.NewBag(cfg.MaxDiagnostics),
	}, nil
}

func (w *Workspace) Config() Config               { return w.cfg }
func (w *Workspace) Registry() *provider.Registry { return w.reg }
func (w *Workspace) Context() *analysis.Context   { return w.ac }
func (w *Workspace) Logger() logrus.FieldLogger   { return w.log }

// Diagnostics returns a copy of the project-level findings.
func (w *Workspace) Diagnostics() []diag.Diagnostic {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]diag.Diagnostic(nil), w.diags.Items()...)
}

func cleanPath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}

// Document returns the latest analysis of path.
func (w *Workspace) Document(path string) (*analysis.Document, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	doc, ok := w.docs[cleanPath(path)]
	return doc, ok
}

// Documents returns every document sorted by path.
func (w *Workspace) Documents() []*analysis.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*analysis.Document, 0, len(w.docs))
	for _, doc := range w.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File.Path < out[j].File.Path })
	return out
}

// Files returns the file set the documents were read into. It is not
// safe to use while the workspace is being indexed or updated; use File
// then.
func (w *Workspace) Files() *source.FileSet {
	return w.files
}

// File returns the file revision id refers to, or nil.
func (w *Workspace) File(id source.FileID) *source.File {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files.Get(id)
}

// Index analyses the whole project. Referenced projects are published
// first, then every source module; names are checked only after all
// modules are visible, and deferred names are resolved once at the end.
func (w *Workspace) Index(ctx context.Context) (*Report, error) {
	started := time.Now()
	ctx, span := trace.Start(ctx, trace.ScopeWorkspace, "index")
	span.Set("project", w.cfg.Project)
	defer span.End("")

	rep := &Report{}
	var err error
	if rep.Referenced, err = w.indexReferences(ctx); err != nil {
		return nil, err
	}

	emit(w.progress, Event{Stage: StageScan, Status: StatusWorking})
	paths, err := listSources(w.fs, w.cfg.Sources)
	if err != nil {
		emit(w.progress, Event{Stage: StageScan, Status: StatusError, Err: err})
		return nil, err
	}
	for _, p := range paths {
		emit(w.progress, Event{File: p, Stage: StageScan, Status: StatusQueued})
	}

	files := w.load(paths)
	docs, err := w.analyzeAll(ctx, w.ac, files)
	if err != nil {
		return nil, err
	}
	w.publish(docs)
	if err := w.linkIncludes(ctx, docs); err != nil {
		return nil, err
	}

	q, err := w.checkAll(ctx, docs)
	if err != nil {
		return nil, err
	}
	rep.Deferred = q.Len()
	if rep.Escalated, err = w.flush(ctx, q, docs); err != nil {
		return nil, err
	}

	for _, doc := range docs {
		emit(w.progress, Event{File: doc.File.Path, Stage: StageCheck, Status: StatusDone})
	}
	rep.Documents = docs
	rep.Elapsed = time.Since(started)
	emit(w.progress, Event{Stage: StageResolve, Status: StatusDone, Elapsed: rep.Elapsed})
	w.log.WithFields(logrus.Fields{
		"modules":    len(docs),
		"referenced": rep.Referenced,
		"deferred":   rep.Deferred,
		"escalated":  rep.Escalated,
		"elapsed":    rep.Elapsed.String(),
	}).Info("indexed project")
	return rep, nil
}

// load reads paths into the file set. Unreadable files are reported on
// the workspace bag and skipped.
func (w *Workspace) load(paths []string) []*source.File {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*source.File, 0, len(paths))
	for _, p := range paths {
		data, err := afero.ReadFile(w.fs, p)
		if err != nil {
			diag.ReportError(diag.BagReporter{Bag: w.diags}, diag.IOLoadFileError, source.Span{},
				fmt.Sprintf("%s: %v", p, err)).Emit()
			emit(w.progress, Event{File: p, Stage: StageParse, Status: StatusError, Err: err})
			continue
		}
		out = append(out, w.files.Get(w.files.Add(p, data, 0)))
	}
	return out
}

// publish makes the first-pass results visible, stores their exports and
// records duplicate module names.
func (w *Workspace) publish(docs []*analysis.Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	seen := make(map[string]*analysis.Document, len(docs))
	for _, doc := range docs {
		key := ident.Fold(doc.Module.Name)
		if prev, ok := seen[key]; ok {
			diag.ReportWarning(diag.BagReporter{Bag: w.diags}, diag.ProjModuleDuplicate, source.Span{},
				fmt.Sprintf("module %s is defined by %s and %s", doc.Module.Name, prev.File.Path, doc.File.Path)).Emit()
		}
		seen[key] = doc
		w.docs[doc.File.Path] = doc
		w.reg.Publish(doc.Module)

		ex := symbols.CollectExports(doc.Module)
		ex.Hash = doc.File.Hash
		if err := w.cache.Put(ex); err != nil {
			w.log.WithError(err).WithField("path", doc.File.Path).Warn("export cache write failed")
		}
	}
}

// Warm publishes cached exports for every source file whose content has
// not changed since it was cached, so cross-module names resolve before
// Index finishes. It returns the number of modules published.
func (w *Workspace) Warm(ctx context.Context) (int, error) {
	if w.cache == nil {
		return 0, nil
	}
	paths, err := listSources(w.fs, w.cfg.Sources)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		data, err := afero.ReadFile(w.fs, p)
		if err != nil {
			continue
		}
		f := source.NewFileSet()
		file := f.Get(f.Add(p, data, 0))
		ex, ok, err := w.cache.Get(w.cfg.Project, file.Path, file.Hash)
		if err != nil {
			w.log.WithError(err).WithField("path", p).Debug("export cache read failed")
			continue
		}
		if ok {
			w.reg.Publish(ex.Module())
			n++
		}
	}
	w.log.WithField("modules", n).Debug("warmed from export cache")
	return n, nil
}
