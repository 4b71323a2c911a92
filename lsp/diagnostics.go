// Copyright © 2018 The ELPS authors

package lsp

import (
	"errors"
	"fmt"
	"time"

	"github.com/iBelieve/rasp/diagnostic"
	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/parser/token"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const debounceDelay = 300 * time.Millisecond

const diagnosticSource = "rasp"

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.publishDiagnostics(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)

	// Debounce: delay publishing to avoid thrashing during rapid edits.
	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	s.debounce[doc.URI] = time.AfterFunc(debounceDelay, func() {
		if d := s.docs.Get(doc.URI); d != nil {
			s.publishDiagnostics(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.cancelDebounce(params.TextDocument.URI)
	if doc := s.docs.Get(params.TextDocument.URI); doc != nil {
		s.publishDiagnostics(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.cancelDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// publishDiagnostics checks a document and publishes the resulting
// diagnostics to the client.
func (s *Server) publishDiagnostics(doc *Document) {
	diags := s.checkDocument(doc)
	s.log.WithField("uri", doc.URI).WithField("diagnostics", len(diags)).Debug("publish diagnostics")
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: diags,
	})
}

// checkDocument reports syntax errors, invalid parameter lists, attempts to
// define reserved names and functions defined more than once.
func (s *Server) checkDocument(doc *Document) []protocol.Diagnostic {
	_, _, funcs, parseErr := doc.snapshot()
	diags := []protocol.Diagnostic{}

	if parseErr != nil {
		diags = append(diags, protocol.Diagnostic{
			Range:    parseErrorRange(parseErr),
			Severity: severity(protocol.DiagnosticSeverityError),
			Source:   strPtr(diagnosticSource),
			Message:  errorMessage(parseErr),
		})
	}

	defined := make(map[string]*lisp.FunctionInfo)
	for _, info := range funcs {
		nameRange := functionNameRange(info)
		if info.Err != nil {
			r := nameRange
			if info.Err.Source != nil && info.Err.Source.Line > 0 {
				r = raspToLSPRange(info.Err.Source, 1)
			}
			diags = append(diags, protocol.Diagnostic{
				Range:    r,
				Severity: severity(protocol.DiagnosticSeverityError),
				Source:   strPtr(diagnosticSource),
				Message:  diagnostic.FromError(info.Err).Summary(),
			})
		}
		switch info.Name {
		case lisp.NilSymbol, lisp.TrueSymbol, lisp.FalseSymbol:
			diags = append(diags, protocol.Diagnostic{
				Range:    nameRange,
				Severity: severity(protocol.DiagnosticSeverityError),
				Source:   strPtr(diagnosticSource),
				Message:  fmt.Sprintf("%s: cannot bind reserved symbol: %s", lisp.CondTypeError, info.Name),
			})
			continue
		}
		if prev, ok := defined[info.Name]; ok {
			msg := fmt.Sprintf("%s redefines %s", info.Kind, info.Name)
			if prev.Source != nil {
				msg += fmt.Sprintf(" (previous definition at line %d)", prev.Source.Line)
			}
			diags = append(diags, protocol.Diagnostic{
				Range:    nameRange,
				Severity: severity(protocol.DiagnosticSeverityWarning),
				Source:   strPtr(diagnosticSource),
				Message:  msg,
			})
		}
		defined[info.Name] = info
	}
	return diags
}

func functionNameRange(info *lisp.FunctionInfo) protocol.Range {
	if info.NameSource != nil && info.NameSource.Line > 0 {
		return raspToLSPRange(info.NameSource, len(info.Name))
	}
	if info.Source != nil && info.Source.Line > 0 {
		return raspToLSPRange(info.Source, 1)
	}
	return protocol.Range{}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

// errorMessage renders err without its source location, which the
// diagnostic range already conveys.
func errorMessage(err error) string {
	var errVal *lisp.ErrorVal
	if errors.As(err, &errVal) {
		return diagnostic.FromError((*lisp.LVal)(errVal)).Summary()
	}
	var locErr *token.LocationError
	if errors.As(err, &locErr) {
		return locErr.Err.Error()
	}
	return err.Error()
}

// parseErrorRange extracts source position from a parse error, returning
// a non-zero LSP range when possible. It tries *lisp.ErrorVal (reader
// errors) and *token.LocationError in that order.
func parseErrorRange(err error) protocol.Range {
	var errVal *lisp.ErrorVal
	if errors.As(err, &errVal) && errVal.Source != nil && errVal.Source.Line > 0 {
		return raspToLSPRange(errVal.Source, 1)
	}
	var locErr *token.LocationError
	if errors.As(err, &locErr) && locErr.Source != nil && locErr.Source.Line > 0 {
		return raspToLSPRange(locErr.Source, 1)
	}
	return protocol.Range{}
}

func strPtr(s string) *string {
	return &s
}
