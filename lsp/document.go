// Copyright © 2018 The ELPS authors

package lsp

import (
	"errors"
	"sync"

	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/parser"
)

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu       sync.Mutex
	URI      string
	Version  int32
	Content  string
	forms    []*lisp.LVal
	funcs    []*lisp.FunctionInfo
	parseErr error
}

// parse reads the document content and caches the forms and the function
// definitions they contain.  When the content has a syntax error the forms
// preceding the error are kept.
func (d *Document) parse() {
	name := uriToPath(d.URI)
	forms, err := parser.Parse(name, []byte(d.Content))
	d.parseErr = err
	if err != nil {
		forms = nil
		var lerr *lisp.ErrorVal
		if errors.As(err, &lerr) && lerr.Source != nil && lerr.Source.Pos > 0 {
			partial, perr := parser.Parse(name, []byte(d.Content[:lerr.Source.Pos]))
			if perr == nil {
				forms = partial
			}
		}
	}
	d.forms = forms
	d.funcs = lisp.InspectForms(forms)
}

// snapshot returns the document state under its lock.
func (d *Document) snapshot() (content string, forms []*lisp.LVal, funcs []*lisp.FunctionInfo, parseErr error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Content, d.forms, d.funcs, d.parseErr
}

// lookupFunction returns the last definition of name in the document.
func (d *Document) lookupFunction(name string) *lisp.FunctionInfo {
	_, _, funcs, _ := d.snapshot()
	var found *lisp.FunctionInfo
	for _, info := range funcs {
		if info.Name == name {
			found = info
		}
	}
	return found
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store and parses it.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
	doc.parse()
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync) and re-parses it.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.parse()
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns the open documents.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	return docs
}
