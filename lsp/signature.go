// Copyright © 2018 The ELPS authors

package lsp

import (
	"strings"

	"github.com/iBelieve/rasp/lisp"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentSignatureHelp handles textDocument/signatureHelp requests.
// It finds the enclosing call at the cursor position, looks up its
// signature, and returns parameter hints.
func (s *Server) textDocumentSignatureHelp(_ *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	content, _, _, _ := doc.snapshot()
	offset := positionOffset(content, int(params.Position.Line), int(params.Position.Character))
	name, argIdx := enclosingCall(content[:offset])
	if name == "" {
		return nil, nil
	}

	var label string
	var paramLabels []string
	if info := doc.lookupFunction(name); info != nil && info.Err == nil {
		label = info.Signature()
		for _, p := range info.Params {
			paramLabels = append(paramLabels, paramLabel(p))
		}
	} else if def, _ := s.builtin(name); def != nil {
		label = lisp.FormalsString(def)
		cells, _ := lisp.ListCells(def.Formals())
		for _, c := range cells {
			paramLabels = append(paramLabels, c.String())
		}
	} else {
		return nil, nil
	}
	return buildSignatureHelp(label, paramLabels, argIdx), nil
}

func paramLabel(p lisp.ParamInfo) string {
	switch p.Kind {
	case lisp.ParamOptional:
		return "(" + p.Name + ")"
	case lisp.ParamRest:
		return lisp.RestPrefix + p.Name
	case lisp.ParamKey:
		return lisp.KeywordPrefix + p.Name
	}
	return p.Name
}

// buildSignatureHelp highlights the parameter receiving argument argIdx.  A
// trailing rest parameter receives every remaining argument.
func buildSignatureHelp(label string, params []string, argIdx int) *protocol.SignatureHelp {
	info := protocol.SignatureInformation{Label: label}
	for _, p := range params {
		info.Parameters = append(info.Parameters, protocol.ParameterInformation{Label: p})
	}
	active := argIdx
	if n := len(params); n > 0 && active >= n && strings.HasPrefix(params[n-1], lisp.RestPrefix) {
		active = n - 1
	}
	activeParam := protocol.UInteger(0)
	if active >= 0 && active < len(params) {
		activeParam = safeUint(active)
	}
	activeSig := protocol.UInteger(0)
	return &protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{info},
		ActiveSignature: &activeSig,
		ActiveParameter: &activeParam,
	}
}

// positionOffset converts a 0-based line and character to a byte offset in
// content, clamped to the content length.
func positionOffset(content string, line, col int) int {
	offset := 0
	for i := 0; i < line; i++ {
		nl := strings.IndexByte(content[offset:], '\n')
		if nl < 0 {
			return len(content)
		}
		offset += nl + 1
	}
	end := strings.IndexByte(content[offset:], '\n')
	if end < 0 {
		end = len(content) - offset
	}
	if col > end {
		col = end
	}
	return offset + col
}

// enclosingCall scans text, the document up to the cursor, and returns the
// head symbol of the innermost unclosed list and the 0-based index of the
// argument being written.  Strings, pipe symbols and comments are skipped.
func enclosingCall(text string) (string, int) {
	type frame struct {
		head  strings.Builder
		items int
		inTok bool
	}
	var stack []*frame
	var quote byte
	comment, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		var top *frame
		if len(stack) > 0 {
			top = stack[len(stack)-1]
		}
		switch {
		case comment:
			if c == '\n' {
				comment = false
			}
			continue
		case escaped:
			escaped = false
			continue
		case c == '\\':
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			}
			continue
		case c == ';':
			comment = true
			if top != nil {
				top.inTok = false
			}
			continue
		case c == '(':
			if top != nil {
				top.inTok = false
				top.items++
			}
			stack = append(stack, &frame{})
			continue
		case c == ')':
			if top != nil {
				stack = stack[:len(stack)-1]
			}
			continue
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if top != nil {
				top.inTok = false
			}
			continue
		case c == '"' || c == '|':
			quote = c
		}
		if top == nil {
			continue
		}
		if !top.inTok {
			top.inTok = true
			top.items++
		}
		if top.items == 1 && c != '"' && c != '|' && c != '\\' {
			top.head.WriteByte(c)
		}
	}
	if len(stack) == 0 {
		return "", 0
	}
	top := stack[len(stack)-1]
	if top.items == 0 {
		return "", 0
	}
	argIdx := top.items - 2
	if !top.inTok {
		argIdx++
	}
	if argIdx < 0 {
		argIdx = 0
	}
	return top.head.String(), argIdx
}
