package diag

import "fglsense/internal/source"

// Diagnostic is one finding anchored at Primary.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
}

// Note points at a secondary location.
type Note struct {
	Span source.Span
	Msg  string
}

// Fix is a titled set of replacements; edits of one fix never overlap.
type Fix struct {
	Title string
	Edits []FixEdit
}

type FixEdit struct {
	Span    source.Span
	NewText string
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// WithNote returns d with one more note; d itself is not changed.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], Note{Span: sp, Msg: msg})
	return d
}

// WithFix returns d with one more fix; d itself is not changed.
func (d Diagnostic) WithFix(title string, edits ...FixEdit) Diagnostic {
	d.Fixes = append(d.Fixes[:len(d.Fixes):len(d.Fixes)], Fix{Title: title, Edits: edits})
	return d
}

// identity is what two reports must share to count as the same finding.
type identity struct {
	code       Code
	sev        Severity
	file       source.FileID
	start, end uint32
	msg        string
}

func (d Diagnostic) identity() identity {
	return identity{d.Code, d.Severity, d.Primary.File, d.Primary.Start, d.Primary.End, d.Message}
}
