package diagfmt

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"fglsense/internal/diag"
	"fglsense/internal/source"
)

// editPreview holds the whole lines an edit touches, before and after it.
type editPreview struct {
	before []string
	after  []string
}

var errNoFile = errors.New("edit points outside the file set")

func previewEdit(fs *source.FileSet, edit diag.FixEdit) (editPreview, error) {
	var f *source.File
	if fs != nil {
		f = fs.Get(edit.Span.File)
	}
	if f == nil {
		return editPreview{}, errNoFile
	}
	text := f.Content
	sp := edit.Span
	if sp.Start > sp.End || int(sp.End) > len(text) {
		return editPreview{}, fmt.Errorf("edit %d..%d outside %d bytes", sp.Start, sp.End, len(text))
	}
	from := bytes.LastIndexByte(text[:sp.Start], '\n') + 1
	to := len(text)
	if i := bytes.IndexByte(text[sp.End:], '\n'); i >= 0 {
		to = int(sp.End) + i + 1
	}

	var after bytes.Buffer
	after.Write(text[from:sp.Start])
	after.WriteString(edit.NewText)
	after.Write(text[sp.End:to])
	return editPreview{
		before: previewLines(text[from:to]),
		after:  previewLines(after.Bytes()),
	}, nil
}

// previewLines splits without producing an empty line for the final newline.
func previewLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}
