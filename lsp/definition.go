// Copyright © 2018 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDefinition handles the textDocument/definition request.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	content, _, _, _ := doc.snapshot()
	name := wordAtPosition(content, int(params.Position.Line), int(params.Position.Character))
	if name == "" {
		return nil, nil
	}

	// Builtins and special ops have no navigable source.
	info := doc.lookupFunction(name)
	if info == nil || info.NameSource == nil || info.NameSource.Pos < 0 {
		return nil, nil
	}
	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: raspToLSPRange(info.NameSource, len(name)),
	}, nil
}
