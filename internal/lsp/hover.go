package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func (s *Server) hover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	h, ok, err := doc.Hover(s.baseCtx, offsetForPositionInFile(doc.File, params.Position))
	if err != nil || !ok {
		return nil, err
	}
	rng := rangeForSpan(doc.File, h.Range)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: hoverMarkdown(h.Text),
		},
		Range: &rng,
	}, nil
}

// hoverMarkdown fences the first line (the declaration); the rest is
// prose.
func hoverMarkdown(text string) string {
	head, rest, _ := strings.Cut(text, "\n")
	var sb strings.Builder
	sb.WriteString("```4gl\n")
	sb.WriteString(head)
	sb.WriteString("\n```")
	if rest = strings.TrimLeft(rest, "\n"); rest != "" {
		sb.WriteString("\n\n")
		sb.WriteString(rest)
	}
	return sb.String()
}
