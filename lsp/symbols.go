// Copyright © 2018 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol request.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	_, _, funcs, _ := doc.snapshot()

	symbols := []protocol.DocumentSymbol{}
	for _, info := range funcs {
		if info.NameSource == nil || info.NameSource.Line == 0 {
			continue
		}
		r := raspToLSPRange(info.NameSource, len(info.Name))
		var detail *string
		if info.Err == nil {
			sig := info.Signature()
			detail = &sig
		}
		symbols = append(symbols, protocol.DocumentSymbol{
			Name:           info.Name,
			Detail:         detail,
			Kind:           protocol.SymbolKindFunction,
			Range:          r,
			SelectionRange: r,
		})
	}

	// Return as []DocumentSymbol (the preferred hierarchical form).
	return symbols, nil
}
