package workspace

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"fglsense/internal/analysis"
	"fglsense/internal/resolve"
	"fglsense/internal/source"
)

// Update replaces the content of path with an editor buffer and
// reanalyses it. The new module is published before its names are
// checked, and deferred names are resolved right away.
func (w *Workspace) Update(ctx context.Context, path string, content []byte) (*analysis.Document, error) {
	w.mu.Lock()
	file := w.files.Get(w.files.Add(path, content, source.FileVirtual))
	w.mu.Unlock()
	return w.reanalyze(ctx, file)
}

// Refresh rereads path from disk, e.g. after an editor closes the buffer.
func (w *Workspace) Refresh(ctx context.Context, path string) (*analysis.Document, error) {
	data, err := afero.ReadFile(w.fs, path)
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", path, err)
	}
	w.mu.Lock()
	file := w.files.Get(w.files.Add(path, data, 0))
	w.mu.Unlock()
	return w.reanalyze(ctx, file)
}

func (w *Workspace) reanalyze(ctx context.Context, file *source.File) (*analysis.Document, error) {
	doc, err := analysis.Analyze(ctx, w.ac, file)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.docs[file.Path] = doc
	var republish []string
	for key, inc := range w.includes {
		if inc.File.Path == file.Path {
			w.includes[key] = doc
			republish = append(republish, key)
		}
	}
	w.mu.Unlock()

	w.reg.Publish(doc.Module)
	for _, key := range republish {
		w.reg.PublishInclude(key, doc.Module)
	}
	if err := w.linkIncludes(ctx, []*analysis.Document{doc}); err != nil {
		return nil, err
	}

	q := resolve.NewDeferredQueue()
	if err := doc.CheckNames(ctx, q); err != nil {
		return nil, err
	}
	if _, err := w.flush(ctx, q, []*analysis.Document{doc}); err != nil {
		return nil, err
	}
	w.log.WithField("path", file.Path).
		WithField("diagnostics", doc.Diagnostics.Len()).
		Debug("reanalyzed document")
	return doc, nil
}

// Remove forgets path and withdraws its module from the registry.
func (w *Workspace) Remove(path string) {
	key := cleanPath(path)
	w.mu.Lock()
	doc, ok := w.docs[key]
	delete(w.docs, key)
	w.mu.Unlock()
	if ok {
		w.reg.Remove(w.cfg.Project, doc.Module.Name)
	}
}
