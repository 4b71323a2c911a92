// Copyright © 2018 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentReferences handles the textDocument/references request.  Every
// occurrence of the symbol under the cursor in the document is a reference,
// including occurrences inside quoted data.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	content, forms, _, _ := doc.snapshot()
	name := wordAtPosition(content, int(params.Position.Line), int(params.Position.Character))
	if name == "" {
		return nil, nil
	}

	var decl *protocol.Range
	if info := doc.lookupFunction(name); info != nil && info.NameSource != nil {
		r := raspToLSPRange(info.NameSource, len(name))
		decl = &r
	}

	locs := []protocol.Location{}
	for _, sym := range symbolsNamed(forms, name) {
		r := raspToLSPRange(sym.Source, len(name))
		if !params.Context.IncludeDeclaration && decl != nil && r == *decl {
			continue
		}
		locs = append(locs, protocol.Location{
			URI:   params.TextDocument.URI,
			Range: r,
		})
	}
	return locs, nil
}
