package resolve

import (
	"fmt"

	"fglsense/internal/diag"
	"fglsense/internal/source"
)

// Report emits the diagnostic for an Unresolved or Deferred result at the
// failing piece. Bound results report nothing.
func Report(rep diag.Reporter, res Result) {
	ReportSuggested(rep, res, "")
}

// ReportSuggested is Report with a replacement name from Suggest; a
// non-empty suggestion adds a note and a fix renaming the piece.
func ReportSuggested(rep diag.Reporter, res Result, suggestion string) {
	if rep == nil {
		return
	}
	var b *diag.ReportBuilder
	switch {
	case res.Outcome == Bound:
		return
	case res.Outcome == Deferred:
		diag.ReportInfo(rep, diag.SemaDeferredSymbol, res.Piece.Span,
			fmt.Sprintf("%q will be looked up after indexing", res.Piece.Text)).Emit()
		return
	case len(res.Chain) > 0:
		owner := res.Chain[len(res.Chain)-1]
		b = diag.ReportError(rep, diag.SemaUnresolvedMember, res.Piece.Span,
			fmt.Sprintf("%s %q has no member %q", owner.Kind, owner.Name, res.Piece.Text))
	default:
		b = diag.ReportError(rep, diag.SemaUnresolvedSymbol, res.Piece.Span,
			fmt.Sprintf("unknown name %q", res.Piece.Text))
	}
	if suggestion != "" {
		name := source.Span{
			File:  res.Piece.Span.File,
			Start: res.Piece.Span.Start,
			End:   res.Piece.Span.Start + off(len(res.Piece.Text)),
		}
		b.WithNote(name, fmt.Sprintf("did you mean %q?", suggestion)).
			WithFix(fmt.Sprintf("rename to %s", suggestion), diag.FixEdit{Span: name, NewText: suggestion})
	}
	b.Emit()
}
