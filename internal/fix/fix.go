// Package fix applies the edits suggested by diagnostics to source files.
//
// Plan picks at most one fix per diagnostic, drops the ones overlapping an
// edit already taken and computes the new file contents; Write stores them.
// Editor buffers (virtual files) are never planned.
package fix

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/afero"

	"fglsense/internal/diag"
	"fglsense/internal/source"
)

// ErrNoFixes is returned when no diagnostic carries an applicable fix.
var ErrNoFixes = errors.New("no applicable fixes found")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Applied is a fix taken into the plan.
type Applied struct {
	Title string
	Code  diag.Code
	Path  string
	Edits int
}

// Skipped is a fix left out, with the reason.
type Skipped struct {
	Title  string
	Path   string
	Reason string
}

// FileChange is the new content of one file.
type FileChange struct {
	Path    string
	Content []byte
	Edits   int
}

type Plan struct {
	Applied []Applied
	Skipped []Skipped
	Files   []FileChange
}

type candidate struct {
	diag diag.Diagnostic
	fix  diag.Fix
}

// Build plans the fixes of diagnostics against the contents in files.
func Build(files *source.FileSet, diagnostics []diag.Diagnostic) (*Plan, error) {
	if files == nil {
		return nil, fmt.Errorf("fix: FileSet is nil")
	}
	var cands []candidate
	for _, d := range diagnostics {
		if len(d.Fixes) > 0 && len(d.Fixes[0].Edits) > 0 {
			cands = append(cands, candidate{diag: d, fix: d.Fixes[0]})
		}
	}
	if len(cands) == 0 {
		return &Plan{}, ErrNoFixes
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i].diag.Primary, cands[j].diag.Primary
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Start < b.Start
	})

	plan := &Plan{}
	taken := make(map[source.FileID][]diag.FixEdit)
	for _, c := range cands {
		path := filePath(files, c.diag.Primary.File)
		if reason := check(files, taken, c.fix.Edits); reason != "" {
			plan.Skipped = append(plan.Skipped, Skipped{Title: c.fix.Title, Path: path, Reason: reason})
			continue
		}
		for _, e := range c.fix.Edits {
			taken[e.Span.File] = append(taken[e.Span.File], e)
		}
		plan.Applied = append(plan.Applied, Applied{
			Title: c.fix.Title,
			Code:  c.diag.Code,
			Path:  path,
			Edits: len(c.fix.Edits),
		})
	}
	if len(plan.Applied) == 0 {
		return plan, ErrNoFixes
	}

	ids := make([]source.FileID, 0, len(taken))
	for id := range taken {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		f := files.Get(id)
		content := apply(f.Content, taken[id])
		if f.Flags&source.FileHadBOM != 0 {
			content = append(append([]byte(nil), utf8BOM...), content...)
		}
		plan.Files = append(plan.Files, FileChange{Path: f.Path, Content: content, Edits: len(taken[id])})
	}
	return plan, nil
}

// check returns why edits cannot join the plan, or "".
func check(files *source.FileSet, taken map[source.FileID][]diag.FixEdit, edits []diag.FixEdit) string {
	for i, e := range edits {
		f := files.Get(e.Span.File)
		switch {
		case f == nil:
			return "unknown file"
		case f.Flags&source.FileVirtual != 0:
			return "target file is virtual"
		case e.Span.Start > e.Span.End || int(e.Span.End) > len(f.Content):
			return "edit span out of range"
		}
		for _, prev := range taken[e.Span.File] {
			if overlaps(prev.Span, e.Span) {
				return "conflicts with an earlier fix"
			}
		}
		for _, other := range edits[:i] {
			if other.Span.File == e.Span.File && overlaps(other.Span, e.Span) {
				return "fix edits overlap"
			}
		}
	}
	return ""
}

// overlaps treats spans as half-open; two insertions at one point do not
// overlap, an insertion inside a replaced range does.
func overlaps(a, b source.Span) bool {
	switch {
	case a.Start == a.End && b.Start == b.End:
		return false
	case a.Start == a.End:
		return b.Start <= a.Start && a.Start < b.End
	case b.Start == b.End:
		return a.Start <= b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// apply rewrites content back to front so earlier offsets stay valid.
func apply(content []byte, edits []diag.FixEdit) []byte {
	sorted := append([]diag.FixEdit(nil), edits...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Span.Start > sorted[j].Span.Start })
	out := append([]byte(nil), content...)
	for _, e := range sorted {
		tail := append([]byte(e.NewText), out[e.Span.End:]...)
		out = append(out[:e.Span.Start], tail...)
	}
	return out
}

// Write stores the planned contents, keeping each file's mode.
func Write(fs afero.Fs, plan *Plan) error {
	for _, fc := range plan.Files {
		mode := os.FileMode(0o644)
		if info, err := fs.Stat(fc.Path); err == nil {
			mode = info.Mode()
		}
		if err := afero.WriteFile(fs, fc.Path, fc.Content, mode); err != nil {
			return fmt.Errorf("write %s: %w", fc.Path, err)
		}
	}
	return nil
}

func filePath(files *source.FileSet, id source.FileID) string {
	if f := files.Get(id); f != nil {
		return f.Path
	}
	return ""
}
