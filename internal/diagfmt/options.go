package diagfmt

import (
	"path/filepath"
	"strings"
)

// PathMode selects how file names are printed.
type PathMode uint8

const (
	// PathModeAuto prints paths under BaseDir relative to it and any other
	// path unchanged.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

var pathModeNames = map[string]PathMode{
	"": PathModeAuto, "auto": PathModeAuto,
	"absolute": PathModeAbsolute, "abs": PathModeAbsolute,
	"relative": PathModeRelative, "rel": PathModeRelative,
	"basename": PathModeBasename, "base": PathModeBasename,
}

// ParsePathMode reads the --path-mode flag; matching ignores case.
func ParsePathMode(s string) (PathMode, bool) {
	m, ok := pathModeNames[strings.ToLower(s)]
	return m, ok
}

type PrettyOpts struct {
	Color       bool
	Context     int8 // строк контекста вокруг подсвеченной
	PathMode    PathMode
	BaseDir     string
	Width       uint8 // 0 - без обрезки
	ShowNotes   bool
	ShowFixes   bool
	ShowPreview bool
}

type JSONOpts struct {
	IncludePositions bool
	PathMode         PathMode
	BaseDir          string
	Max              int // режет вывод, Bag не трогает
	IncludeNotes     bool
	IncludeFixes     bool
	IncludePreviews  bool
}

func formatPath(path string, mode PathMode, base string) string {
	switch mode {
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeAbsolute:
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		return filepath.ToSlash(abs)
	}
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	if mode == PathModeAuto && (rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return path
	}
	return filepath.ToSlash(rel)
}
