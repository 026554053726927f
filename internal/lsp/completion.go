package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"fglsense/internal/contextmap"
)

func (s *Server) completion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	offset := offsetForPositionInFile(doc.File, params.Position)
	res, err := doc.Complete(s.baseCtx, offset)
	if err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, nil
	}
	replace := rangeForSpan(doc.File, res.Replace)
	items := make([]protocol.CompletionItem, 0, len(res.Items))
	for i, m := range res.Items {
		kind := completionKind(m.Kind)
		// порядок движка сохраняем: ключевые слова контекста идут первыми
		sortText := fmt.Sprintf("%05d", i)
		item := protocol.CompletionItem{
			Label:    m.Name,
			Kind:     &kind,
			SortText: &sortText,
			TextEdit: protocol.TextEdit{Range: replace, NewText: m.Name},
		}
		if m.Symbol != nil {
			detail := m.Symbol.Detail()
			item.Detail = &detail
			if m.Symbol.Doc != "" {
				item.Documentation = m.Symbol.Doc
			}
		}
		items = append(items, item)
	}
	return protocol.CompletionList{Items: items}, nil
}

func completionKind(kind contextmap.Kind) protocol.CompletionItemKind {
	switch kind {
	case contextmap.KindKeyword:
		return protocol.CompletionItemKindKeyword
	case contextmap.KindVariable:
		return protocol.CompletionItemKindVariable
	case contextmap.KindConstant:
		return protocol.CompletionItemKindConstant
	case contextmap.KindFunction, contextmap.KindReport:
		return protocol.CompletionItemKindFunction
	case contextmap.KindType:
		return protocol.CompletionItemKindStruct
	case contextmap.KindCursor, contextmap.KindPrepared:
		return protocol.CompletionItemKindReference
	case contextmap.KindTable:
		return protocol.CompletionItemKindStruct
	case contextmap.KindColumn, contextmap.KindField:
		return protocol.CompletionItemKindField
	case contextmap.KindMethod:
		return protocol.CompletionItemKindMethod
	case contextmap.KindModule, contextmap.KindPackage:
		return protocol.CompletionItemKindModule
	case contextmap.KindClass:
		return protocol.CompletionItemKindClass
	default:
		return protocol.CompletionItemKindText
	}
}
