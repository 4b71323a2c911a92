// Copyright © 2018 The ELPS authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/iBelieve/rasp/lisp"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	content, _, _, _ := doc.snapshot()
	name := wordAtPosition(content, int(params.Position.Line), int(params.Position.Character))
	if name == "" {
		return nil, nil
	}

	text := s.buildHoverContent(doc, name)
	if text == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
	}, nil
}

// buildHoverContent builds Markdown hover text for the symbol name.
// Definitions in the document take precedence over builtins.
func (s *Server) buildHoverContent(doc *Document, name string) string {
	var sb strings.Builder
	if info := doc.lookupFunction(name); info != nil && info.Err == nil {
		kind := "function"
		if info.Kind == "defmacro" {
			kind = "macro"
		}
		fmt.Fprintf(&sb, "**%s** `%s`", kind, name)
		fmt.Fprintf(&sb, "\n\n```lisp\n%s\n```", info.Signature())
		if info.Source != nil && info.Source.Line > 0 {
			fmt.Fprintf(&sb, "\n\n*Defined in %s:%d*", info.Source.File, info.Source.Line)
		}
		return sb.String()
	}

	switch {
	case name == lisp.NilSymbol || name == lisp.TrueSymbol || name == lisp.FalseSymbol:
		fmt.Fprintf(&sb, "**literal** `%s`", name)
		return sb.String()
	case strings.HasPrefix(name, lisp.KeywordPrefix) && len(name) > len(lisp.KeywordPrefix):
		fmt.Fprintf(&sb, "**keyword** `%s`", name)
		return sb.String()
	}

	def, kind := s.builtin(name)
	if def == nil {
		return ""
	}
	fmt.Fprintf(&sb, "**%s** `%s`", kind, name)
	fmt.Fprintf(&sb, "\n\n```lisp\n%s\n```", lisp.FormalsString(def))
	if docstring := lisp.Docstring(def); docstring != "" {
		fmt.Fprintf(&sb, "\n\n%s", docstring)
	}
	return sb.String()
}

// builtin returns the native definition bound to name in the server
// environment and a label for its kind.
func (s *Server) builtin(name string) (lisp.LBuiltinDef, string) {
	v := s.env.Get(lisp.Symbol(name))
	switch v.Type {
	case lisp.LNativeFun:
		return s.env.Runtime.Native(v.Int), "builtin"
	case lisp.LNativeMacro:
		return s.env.Runtime.Native(v.Int), "special operator"
	}
	return nil, ""
}
