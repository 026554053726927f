package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) definition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	loc, ok, err := doc.Definition(s.baseCtx, offsetForPositionInFile(doc.File, params.Position))
	if err != nil || !ok {
		return nil, err
	}
	file := doc.File
	if loc.Span.File != file.ID {
		if ws := s.currentWorkspace(); ws != nil {
			file = ws.File(loc.Span.File)
		}
	}
	if file == nil {
		return nil, nil
	}
	return protocol.Location{
		URI:   pathToURI(loc.Path),
		Range: rangeForSpan(file, loc.Span),
	}, nil
}
