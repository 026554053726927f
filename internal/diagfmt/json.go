package diagfmt

import (
	"encoding/json"
	"io"

	"fglsense/internal/diag"
	"fglsense/internal/source"
)

// Output is the document written by JSON.
type Output struct {
	Diagnostics []Item `json:"diagnostics"`
	Count       int    `json:"count"`
}

// Item is one diagnostic. Severity and code are rendered as strings so
// that the numbering inside diag can change without breaking consumers.
type Item struct {
	Severity string   `json:"severity"`
	Code     string   `json:"code"`
	Title    string   `json:"title,omitempty"`
	Message  string   `json:"message"`
	Location Location `json:"location"`
	Notes    []Note   `json:"notes,omitempty"`
	Fixes    []Fix    `json:"fixes,omitempty"`
}

// Location always carries byte offsets; line and column (1-based) only
// with JSONOpts.IncludePositions.
type Location struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type Note struct {
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

type Fix struct {
	Title string `json:"title"`
	Edits []Edit `json:"edits,omitempty"`
}

// Edit shows the replaced text and, with previews on, the affected lines
// before and after.
type Edit struct {
	Location    Location `json:"location"`
	NewText     string   `json:"new_text"`
	OldText     string   `json:"old_text,omitempty"`
	BeforeLines []string `json:"before_lines,omitempty"`
	AfterLines  []string `json:"after_lines,omitempty"`
}

type jsonBuilder struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (b jsonBuilder) location(sp source.Span) Location {
	loc := Location{StartByte: sp.Start, EndByte: sp.End}
	f := b.fs.Get(sp.File)
	if f == nil {
		return loc
	}
	loc.File = formatPath(f.Path, b.opts.PathMode, b.opts.BaseDir)
	if b.opts.IncludePositions {
		from, to := f.LineCol(sp.Start), f.LineCol(sp.End)
		loc.StartLine, loc.StartCol = from.Line, from.Col
		loc.EndLine, loc.EndCol = to.Line, to.Col
	}
	return loc
}

func (b jsonBuilder) edit(e diag.FixEdit) Edit {
	out := Edit{Location: b.location(e.Span), NewText: e.NewText}
	if f := b.fs.Get(e.Span.File); f != nil {
		out.OldText = f.Slice(e.Span)
	}
	if b.opts.IncludePreviews {
		if pv, err := previewEdit(b.fs, e); err == nil {
			out.BeforeLines, out.AfterLines = pv.before, pv.after
		}
	}
	return out
}

func (b jsonBuilder) item(d diag.Diagnostic) Item {
	it := Item{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Title:    d.Code.Title(),
		Message:  d.Message,
		Location: b.location(d.Primary),
	}
	if b.opts.IncludeNotes {
		for _, n := range d.Notes {
			it.Notes = append(it.Notes, Note{Message: n.Msg, Location: b.location(n.Span)})
		}
	}
	if b.opts.IncludeFixes {
		for _, fx := range d.Fixes {
			out := Fix{Title: fx.Title}
			for _, e := range fx.Edits {
				out.Edits = append(out.Edits, b.edit(e))
			}
			it.Fixes = append(it.Fixes, out)
		}
	}
	return it
}

// BuildOutput converts at most opts.Max diagnostics of bag (all when Max
// is zero) without encoding them.
func BuildOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) Output {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	b := jsonBuilder{fs: fs, opts: opts}
	out := Output{Diagnostics: make([]Item, 0, len(items))}
	for _, d := range items {
		out.Diagnostics = append(out.Diagnostics, b.item(d))
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes BuildOutput as indented JSON.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildOutput(bag, fs, opts))
}
