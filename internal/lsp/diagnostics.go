package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"fglsense/internal/analysis"
	"fglsense/internal/diag"
	"fglsense/internal/workspace"
)

// toDiagnostics converts the findings of doc. Notes pointing into other
// files become related information.
func toDiagnostics(ws *workspace.Workspace, doc *analysis.Document) []protocol.Diagnostic {
	if doc == nil || doc.Diagnostics == nil {
		return nil
	}
	items := doc.Diagnostics.Items()
	out := make([]protocol.Diagnostic, 0, len(items))
	for i := range items {
		out = append(out, toDiagnostic(ws, doc, &items[i]))
	}
	return out
}

func toDiagnostic(ws *workspace.Workspace, doc *analysis.Document, d *diag.Diagnostic) protocol.Diagnostic {
	severity := lspSeverity(d.Severity)
	source := lsName
	lspDiag := protocol.Diagnostic{
		Range:    rangeForSpan(doc.File, d.Primary),
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: d.Code.ID()},
		Source:   &source,
		Message:  d.Message,
	}
	for _, note := range d.Notes {
		file := doc.File
		if note.Span.File != doc.File.ID {
			file = ws.File(note.Span.File)
		}
		if file == nil {
			continue
		}
		lspDiag.RelatedInformation = append(lspDiag.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{
				URI:   pathToURI(file.Path),
				Range: rangeForSpan(file, note.Span),
			},
			Message: note.Msg,
		})
	}
	return lspDiag
}

func lspSeverity(sev diag.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diag.SevError:
		return protocol.DiagnosticSeverityError
	case diag.SevWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}
