package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"fglsense/internal/diag"
	"fglsense/internal/source"
)

type palette struct {
	sev      map[diag.Severity]*color.Color
	location *color.Color
	gutter   *color.Color
	note     *color.Color
	added    *color.Color
	removed  *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   mk(color.FgRed, color.Bold),
			diag.SevWarning: mk(color.FgYellow, color.Bold),
			diag.SevInfo:    mk(color.FgCyan, color.Bold),
		},
		location: mk(color.Bold),
		gutter:   mk(color.FgBlue),
		note:     mk(color.FgGreen),
		added:    mk(color.FgGreen),
		removed:  mk(color.FgRed),
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строки исходника с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := prettyPrinter{w: w, fs: fs, opts: opts, pal: newPalette(opts.Color)}
	for _, d := range bag.Items() {
		p.diagnostic(&d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
	pal  palette
}

func (p *prettyPrinter) diagnostic(d *diag.Diagnostic) {
	sev := p.pal.sev[d.Severity]
	if sev == nil {
		sev = p.pal.sev[diag.SevInfo]
	}
	if loc := p.location(d.Primary); loc != "" {
		fmt.Fprintf(p.w, "%s: ", p.pal.location.Sprint(loc))
	}
	fmt.Fprintf(p.w, "%s %s: %s\n", sev.Sprint(d.Severity.String()), d.Code.ID(), d.Message)
	p.snippet(d.Primary, sev)

	if p.opts.ShowNotes {
		for _, note := range d.Notes {
			fmt.Fprintf(p.w, "  %s ", p.pal.note.Sprint("= note:"))
			if loc := p.location(note.Span); loc != "" {
				fmt.Fprintf(p.w, "%s: ", loc)
			}
			fmt.Fprintln(p.w, note.Msg)
		}
	}
	if p.opts.ShowFixes {
		for _, fix := range d.Fixes {
			fmt.Fprintf(p.w, "  %s %s\n", p.pal.note.Sprint("= fix:"), fix.Title)
			if !p.opts.ShowPreview {
				continue
			}
			for _, edit := range fix.Edits {
				preview, err := previewEdit(p.fs, edit)
				if err != nil {
					continue
				}
				for _, line := range preview.before {
					fmt.Fprintf(p.w, "    %s\n", p.pal.removed.Sprint("- "+line))
				}
				for _, line := range preview.after {
					fmt.Fprintf(p.w, "    %s\n", p.pal.added.Sprint("+ "+line))
				}
			}
		}
	}
}

func (p *prettyPrinter) location(span source.Span) string {
	if p.fs == nil {
		return ""
	}
	f := p.fs.Get(span.File)
	if f == nil {
		return ""
	}
	pos := f.LineCol(span.Start)
	return fmt.Sprintf("%s:%d:%d", formatPath(f.Path, p.opts.PathMode, p.opts.BaseDir), pos.Line, pos.Col)
}

// snippet prints the lines of span with context and a caret underline
// below every covered line.
func (p *prettyPrinter) snippet(span source.Span, sev *color.Color) {
	if p.fs == nil {
		return
	}
	f := p.fs.Get(span.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := f.LineCol(span.Start), f.LineCol(span.End)
	if end.Line < start.Line {
		end = start
	}
	lineCount := uint32(len(f.LineIdx)) + 1 // #nosec G115 -- bounded by file size
	ctx := uint32(max(p.opts.Context, 0))
	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := min(end.Line+ctx, lineCount)
	gutterWidth := len(strconv.FormatUint(uint64(last), 10))
	blank := strings.Repeat(" ", gutterWidth)

	for n := first; n <= last; n++ {
		line := f.GetLine(n)
		fmt.Fprintf(p.w, "%s %s\n", p.pal.gutter.Sprintf("%*d |", gutterWidth, n), p.clip(line))
		if n < start.Line || n > end.Line {
			continue
		}
		from, to := 1, len(line)+1
		if n == start.Line {
			from = min(int(start.Col), len(line)+1)
		}
		if n == end.Line {
			to = min(int(end.Col), len(line)+1)
		}
		pad, mark := underline(line, from, to)
		if p.opts.Width > 0 {
			limit := int(p.opts.Width)
			if runewidth.StringWidth(pad) >= limit {
				continue
			}
			mark = runewidth.Truncate(mark, limit-runewidth.StringWidth(pad), "")
		}
		fmt.Fprintf(p.w, "%s %s%s\n", p.pal.gutter.Sprint(blank+" |"), pad, sev.Sprint(mark))
	}
}

func (p *prettyPrinter) clip(line string) string {
	if p.opts.Width == 0 || runewidth.StringWidth(line) <= int(p.opts.Width) {
		return line
	}
	width := int(p.opts.Width)
	if width <= 3 {
		return runewidth.Truncate(line, width, "")
	}
	return runewidth.Truncate(line, width, "...")
}

// underline returns the padding before byte column from (1-based) and the
// ^~~~ mark up to column to. Tabs in the prefix are kept so the mark lines
// up with the source in any tab width.
func underline(line string, from, to int) (string, string) {
	var pad strings.Builder
	for _, r := range line[:from-1] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := 1
	if to > from {
		width = max(runewidth.StringWidth(strings.ReplaceAll(line[from-1:to-1], "\t", "    ")), 1)
	}
	return pad.String(), "^" + strings.Repeat("~", width-1)
}
