// Copyright © 2018 The ELPS authors

package lsp

import (
	"sort"
	"strings"

	"github.com/iBelieve/rasp/lisp"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCompletion handles the textDocument/completion request.
// Candidates are the functions and macros defined in the document followed
// by the names bound in the server environment.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	content, _, funcs, _ := doc.snapshot()
	prefix := prefixAtPosition(content, int(params.Position.Line), int(params.Position.Character))

	seen := make(map[string]bool)
	items := []protocol.CompletionItem{}
	for _, info := range funcs {
		if seen[info.Name] || !strings.HasPrefix(info.Name, prefix) || info.Err != nil {
			continue
		}
		seen[info.Name] = true
		kind := protocol.CompletionItemKindFunction
		if info.Kind == "defmacro" {
			kind = protocol.CompletionItemKindKeyword
		}
		detail := info.Signature()
		items = append(items, protocol.CompletionItem{
			Label:  info.Name,
			Kind:   &kind,
			Detail: &detail,
		})
	}

	names := append([]string{lisp.NilSymbol, lisp.TrueSymbol, lisp.FalseSymbol}, s.env.Names()...)
	sort.Strings(names)
	for _, name := range names {
		if seen[name] || !strings.HasPrefix(name, prefix) {
			continue
		}
		seen[name] = true
		items = append(items, s.envCompletion(name))
	}
	return items, nil
}

func (s *Server) envCompletion(name string) protocol.CompletionItem {
	item := protocol.CompletionItem{Label: name}
	def, label := s.builtin(name)
	if def == nil {
		kind := protocol.CompletionItemKindConstant
		item.Kind = &kind
		return item
	}
	kind := protocol.CompletionItemKindFunction
	if label == "special operator" {
		kind = protocol.CompletionItemKindKeyword
	}
	item.Kind = &kind
	detail := lisp.FormalsString(def)
	item.Detail = &detail
	if docstring := lisp.Docstring(def); docstring != "" {
		item.Documentation = &protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: docstring,
		}
	}
	return item
}
