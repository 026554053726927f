package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// codeAction offers the fixes of diagnostics touching the requested range
// as quick fixes. Edits outside the document are addressed to their own
// files.
func (s *Server) codeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	doc := s.document(params.TextDocument.URI)
	ws := s.currentWorkspace()
	if doc == nil || ws == nil || doc.Diagnostics == nil {
		return nil, nil
	}
	start := offsetForPositionInFile(doc.File, params.Range.Start)
	end := offsetForPositionInFile(doc.File, params.Range.End)

	kind := protocol.CodeActionKindQuickFix
	var out []protocol.CodeAction
	items := doc.Diagnostics.Items()
	for i := range items {
		d := &items[i]
		if d.Primary.End < start || d.Primary.Start > end {
			continue
		}
		for j, f := range d.Fixes {
			changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
			for _, e := range f.Edits {
				file := doc.File
				if e.Span.File != file.ID {
					file = ws.File(e.Span.File)
				}
				if file == nil {
					continue
				}
				uri := pathToURI(file.Path)
				changes[uri] = append(changes[uri], protocol.TextEdit{
					Range:   rangeForSpan(file, e.Span),
					NewText: e.NewText,
				})
			}
			if len(changes) == 0 {
				continue
			}
			out = append(out, protocol.CodeAction{
				Title:       f.Title,
				Kind:        &kind,
				Diagnostics: []protocol.Diagnostic{toDiagnostic(ws, doc, d)},
				IsPreferred: boolPtr(j == 0),
				Edit:        &protocol.WorkspaceEdit{Changes: changes},
			})
		}
	}
	return out, nil
}
