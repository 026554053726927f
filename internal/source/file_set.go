package source

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// FileSet owns the source files of one analysis session. A file that is
// re-added under the same path gets a fresh FileID; the path index always
// points at the latest revision.
type FileSet struct {
	files []File
	index map[string]FileID // path -> latest id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		// FileID 0 зарезервирован, чтобы нулевой Span не указывал на реальный файл.
		files: make([]File, 1),
		index: make(map[string]FileID),
	}
}

// Add stores normalized content and returns its new FileID.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}

	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set overflow: %w", err))
	}
	id := FileID(n)
	normalized := normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.index[normalized] = id
	return id
}

// AddVirtual adds an in-memory buffer with the FileVirtual flag.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns the file for id or nil when id is unknown.
func (fs *FileSet) Get(id FileID) *File {
	if id == 0 || int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// GetLatest returns the latest file ID registered for path.
func (fs *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fs.index[normalizePath(path)]
	return id, ok
}

// Len returns the number of files, revisions included.
func (fs *FileSet) Len() int {
	return len(fs.files) - 1
}

// Resolve converts a span into line and column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{Line: 1, Col: 1}, LineCol{Line: 1, Col: 1}
	}
	return f.LineCol(span.Start), f.LineCol(span.End)
}

// LineCol converts a byte offset into a 1-based line/column pair.
func (f *File) LineCol(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// Offset converts a 0-based line and byte column into an offset, clamped to
// the line and the file bounds.
func (f *File) Offset(line, col uint32) uint32 {
	size := f.size()
	var start uint32
	if line > 0 {
		if int(line-1) >= len(f.LineIdx) {
			return size
		}
		start = f.LineIdx[line-1] + 1
	}
	end := size
	if int(line) < len(f.LineIdx) {
		end = f.LineIdx[line]
	}
	off := start + col
	if off > end {
		off = end
	}
	return off
}

// GetLine returns the text of the 1-based line without the trailing newline.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	size := f.size()
	var start uint32
	if lineNum > 1 {
		if int(lineNum-2) >= len(f.LineIdx) {
			return ""
		}
		start = f.LineIdx[lineNum-2] + 1
	}
	end := size
	if int(lineNum-1) < len(f.LineIdx) {
		end = f.LineIdx[lineNum-1]
	}
	if start >= size || start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// Slice returns the text covered by sp, clamped to the content.
func (f *File) Slice(sp Span) string {
	size := f.size()
	start, end := sp.Start, sp.End
	if end > size {
		end = size
	}
	if start >= end {
		return ""
	}
	return string(f.Content[start:end])
}

// BaseName returns the last path element without the extension.
func (f *File) BaseName() string {
	name := f.Path
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}

func (f *File) size() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}
	return n
}
