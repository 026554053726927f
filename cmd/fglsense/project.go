package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"fglsense/internal/analysis"
	"fglsense/internal/diag"
	"fglsense/internal/diagfmt"
	"fglsense/internal/source"
	"fglsense/internal/workspace"
)

// sourceFs is where commands read projects from.
var sourceFs afero.Fs = afero.NewOsFs()

// loadSource reads a single file into a fresh file set.
func loadSource(fs afero.Fs, path string) (*source.FileSet, *source.File, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	files := source.NewFileSet()
	id := files.Add(path, content, 0)
	return files, files.Get(id), nil
}

// openProject loads the project containing path (a file or a directory)
// and indexes it. sink may be nil.
func openProject(ctx context.Context, cmd *cobra.Command, fs afero.Fs, path string, sink workspace.ProgressSink) (*workspace.Workspace, *workspace.Report, error) {
	ws, err := loadWorkspace(cmd, fs, path, sink)
	if err != nil {
		return nil, nil, err
	}
	report, err := ws.Index(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("indexing failed: %w", err)
	}
	return ws, report, nil
}

// loadWorkspace reads the manifest of the project containing path without
// indexing anything.
func loadWorkspace(cmd *cobra.Command, fs afero.Fs, path string, sink workspace.ProgressSink) (*workspace.Workspace, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir := abs
	if info, statErr := fs.Stat(abs); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	env, err := workspace.LoadEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	cfg, manifest, err := workspace.LoadConfig(fs, dir, env)
	if err != nil {
		return nil, err
	}
	for _, key := range manifest.Unknown {
		logger.WithField("key", key).Warn("unknown manifest key")
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if maxDiagnostics > 0 {
		cfg.MaxDiagnostics = maxDiagnostics
	}
	if cfg.CacheDir == "" {
		if cfg.CacheDir, err = cacheDirFlag(cmd); err != nil {
			return nil, err
		}
	}

	return workspace.Open(workspace.Options{
		Fs:       fs,
		Config:   cfg,
		Logger:   logger,
		Progress: sink,
	})
}

// cacheDirFlag returns the export cache directory asked for with --cache,
// or "" for commands without the flag.
func cacheDirFlag(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Lookup("cache") == nil {
		return "", nil
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return "", fmt.Errorf("failed to get cache flag: %w", err)
	}
	if !useCache {
		return "", nil
	}
	return workspace.DefaultCacheDir()
}

// projectDocument indexes the project of path and returns the document of
// path itself.
func projectDocument(cmd *cobra.Command, path string) (*workspace.Workspace, *analysis.Document, error) {
	ws, _, err := openProject(cmd.Context(), cmd, sourceFs, path, nil)
	if err != nil {
		return nil, nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}
	doc, ok := ws.Document(abs)
	if !ok {
		return nil, nil, fmt.Errorf("%s is not a source of project %q", path, ws.Config().Project)
	}
	return ws, doc, nil
}

// parsePosition parses a 1-based "line:col" pair; col counts bytes.
func parsePosition(s string) (line, col uint32, err error) {
	l, c, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid position %q (expected line:col)", s)
	}
	lv, err := strconv.ParseUint(l, 10, 32)
	if err != nil || lv == 0 {
		return 0, 0, fmt.Errorf("invalid line in %q", s)
	}
	cv, err := strconv.ParseUint(c, 10, 32)
	if err != nil || cv == 0 {
		return 0, 0, fmt.Errorf("invalid column in %q", s)
	}
	return uint32(lv), uint32(cv), nil
}

// offsetAt reads the --at flag and converts it into a byte offset in file.
func offsetAt(cmd *cobra.Command, file *source.File) (uint32, error) {
	at, err := cmd.Flags().GetString("at")
	if err != nil {
		return 0, fmt.Errorf("failed to get at flag: %w", err)
	}
	line, col, err := parsePosition(at)
	if err != nil {
		return 0, err
	}
	return file.Offset(line-1, col-1), nil
}

// printDiagnostics writes bag to stderr the way every command does.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, files *source.FileSet) error {
	if bag.Len() == 0 {
		return nil
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := pathMode(cmd)
	if err != nil {
		return err
	}
	base, _ := os.Getwd()
	bag.Sort()
	diagfmt.Pretty(os.Stderr, bag, files, diagfmt.PrettyOpts{
		Color:     useColor(colorFlag, os.Stderr),
		Context:   2,
		PathMode:  mode,
		BaseDir:   base,
		ShowNotes: true,
	})
	return nil
}

func pathMode(cmd *cobra.Command) (diagfmt.PathMode, error) {
	s, err := cmd.Root().PersistentFlags().GetString("path-mode")
	if err != nil {
		return diagfmt.PathModeAuto, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	mode, ok := diagfmt.ParsePathMode(s)
	if !ok {
		return diagfmt.PathModeAuto, fmt.Errorf("unknown path mode: %s", s)
	}
	return mode, nil
}
