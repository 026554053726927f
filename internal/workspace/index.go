package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"fglsense/internal/analysis"
	"fglsense/internal/diag"
	"fglsense/internal/resolve"
	"fglsense/internal/source"
	"fglsense/internal/symbols"
	"fglsense/internal/trace"
)

// SourceExt is the extension of 4GL modules.
const SourceExt = ".4gl"

// listSources возвращает отсортированный список всех *.4gl файлов в директориях
func listSources(fs afero.Fs, dirs []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, dir := range dirs {
		err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if path != dir && strings.HasPrefix(info.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.EqualFold(filepath.Ext(path), SourceExt) {
				return nil
			}
			path = cleanPath(path)
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

func (w *Workspace) jobs(n int) int {
	jobs := w.cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

// analyzeAll runs Analyze over files in parallel. The result keeps the
// order of files.
func (w *Workspace) analyzeAll(ctx context.Context, ac *analysis.Context, files []*source.File) ([]*analysis.Document, error) {
	if len(files) == 0 {
		return nil, nil
	}
	ctx, span := trace.Start(ctx, trace.ScopePass, "analyze")
	span.Set("files", strconv.Itoa(len(files)))
	defer span.End("")
	// индексы уникальны для каждой горутины, мьютекс не нужен
	docs := make([]*analysis.Document, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.jobs(len(files)))
	for i, file := range files {
		g.Go(func() error {
			started := time.Now()
			emit(w.progress, Event{File: file.Path, Stage: StageParse, Status: StatusWorking})
			doc, err := analysis.Analyze(gctx, ac, file)
			if err != nil {
				emit(w.progress, Event{File: file.Path, Stage: StageParse, Status: StatusError, Err: err})
				return err
			}
			docs[i] = doc
			emit(w.progress, Event{File: file.Path, Stage: StageParse, Status: StatusDone, Elapsed: time.Since(started)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// checkAll runs CheckNames over docs in parallel, collecting deferred
// names in one queue.
func (w *Workspace) checkAll(ctx context.Context, docs []*analysis.Document) (*resolve.DeferredQueue, error) {
	q := resolve.NewDeferredQueue()
	if len(docs) == 0 {
		return q, nil
	}
	ctx, span := trace.Start(ctx, trace.ScopePass, "check")
	defer span.End("")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.jobs(len(docs)))
	for _, doc := range docs {
		g.Go(func() error {
			emit(w.progress, Event{File: doc.File.Path, Stage: StageCheck, Status: StatusWorking})
			if err := doc.CheckNames(gctx, q); err != nil {
				emit(w.progress, Event{File: doc.File.Path, Stage: StageCheck, Status: StatusError, Err: err})
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return q, nil
}

// flush resolves the deferred names against everything published and
// reports the ones that still fail on their own documents.
func (w *Workspace) flush(ctx context.Context, q *resolve.DeferredQueue, docs []*analysis.Document) (int, error) {
	ctx, span := trace.Start(ctx, trace.ScopePass, "deferred")
	span.Set("queued", strconv.Itoa(q.Len()))
	emit(w.progress, Event{Stage: StageResolve, Status: StatusWorking})

	byModule := make(map[*symbols.ModuleResult]*analysis.Document, len(docs))
	for _, doc := range docs {
		byModule[doc.Module] = doc
	}
	escalated := 0
	err := q.Flush(ctx, func(d resolve.Deferral, res resolve.Result) {
		doc := byModule[d.Resolver.Module()]
		if doc == nil {
			return
		}
		hint := d.Resolver.Suggest(ctx, res, d.Request.Offset)
		resolve.ReportSuggested(diag.BagReporter{Bag: doc.Diagnostics}, res, hint)
		escalated++
	})
	for _, doc := range docs {
		doc.Diagnostics.Sort()
	}
	span.End(strconv.Itoa(escalated))
	return escalated, err
}

// indexReferences publishes the modules of referenced projects. Their
// names are not checked.
func (w *Workspace) indexReferences(ctx context.Context) (int, error) {
	if len(w.cfg.References) == 0 {
		return 0, nil
	}
	ctx, span := trace.Start(ctx, trace.ScopePass, "references")
	defer span.End("")

	names := make([]string, 0, len(w.cfg.References))
	total := 0
	for _, dir := range w.cfg.References {
		m, err := w.referenceManifest(dir)
		if err != nil {
			return total, err
		}
		cfg, err := m.Settings(Env{})
		if err != nil {
			return total, err
		}
		if cfg.Project == w.cfg.Project {
			return total, fmt.Errorf("referenced project %s has the same name as the workspace", dir)
		}
		paths, err := listSources(w.fs, cfg.Sources)
		if err != nil {
			return total, err
		}
		docs, err := w.analyzeAll(ctx, w.ac.WithProject(cfg.Project), w.load(paths))
		if err != nil {
			return total, err
		}
		for _, doc := range docs {
			w.reg.Publish(doc.Module)
		}
		names = append(names, cfg.Project)
		total += len(docs)
		w.log.WithField("reference", cfg.Project).WithField("modules", len(docs)).Debug("indexed referenced project")
	}
	w.reg.SetReferences(w.cfg.Project, names)
	return total, nil
}

func (w *Workspace) referenceManifest(dir string) (*Manifest, error) {
	p := filepath.Join(dir, ManifestName)
	ok, err := afero.Exists(w.fs, p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return DefaultManifest(dir), nil
	}
	return LoadManifest(w.fs, p)
}

// linkIncludes publishes the GLOBALS files docs refer to. A file found
// among the project's documents is reused; others are read and analysed
// here. Keys are the paths as written in the GLOBALS statement.
func (w *Workspace) linkIncludes(ctx context.Context, docs []*analysis.Document) error {
	for _, doc := range docs {
		for _, inc := range doc.Module.GlobalsFiles {
			w.mu.RLock()
			_, done := w.includes[inc.Path]
			w.mu.RUnlock()
			if done {
				continue
			}
			p, ok := w.locateInclude(doc.File.Path, inc.Path)
			if !ok {
				continue
			}
			target, ok := w.Document(p)
			if !ok {
				files := w.load([]string{p})
				if len(files) == 0 {
					continue
				}
				var err error
				if target, err = analysis.Analyze(ctx, w.ac, files[0]); err != nil {
					return err
				}
			}
			w.reg.PublishInclude(inc.Path, target.Module)
			w.mu.Lock()
			w.includes[inc.Path] = target
			w.mu.Unlock()
		}
	}
	return nil
}

// locateInclude looks for a GLOBALS file next to the including module,
// then in the include and source directories. ".4gl" is appended to
// names without an extension.
func (w *Workspace) locateInclude(from, name string) (string, bool) {
	var candidates []string
	if filepath.IsAbs(name) {
		candidates = append(candidates, name)
	} else {
		candidates = append(candidates, filepath.Join(filepath.Dir(from), name))
		for _, dir := range w.cfg.Includes {
			candidates = append(candidates, filepath.Join(dir, name))
		}
		for _, dir := range w.cfg.Sources {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	for _, c := range candidates {
		if filepath.Ext(c) == "" {
			c += SourceExt
		}
		if ok, _ := afero.Exists(w.fs, c); ok {
			return cleanPath(c), true
		}
	}
	return "", false
}
