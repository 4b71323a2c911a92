// Copyright © 2018 The ELPS authors

// Package diagnostic provides Rust-style annotated error rendering for
// rasp command output.  The lisp package does not import diagnostic, so
// errors are converted here with FromError.
package diagnostic

import (
	"fmt"

	"github.com/iBelieve/rasp/parser/token"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column (0 = extent of the form at Col)
	Label  string // text shown under the underline
}

// SpanAt returns the span of the form starting at loc.  The physical path of
// loc is preferred so that the renderer can read the source text.  The zero
// Span is returned when loc has no source text.
func SpanAt(loc *token.Location) (Span, bool) {
	if loc == nil || loc.Pos < 0 || loc.Line <= 0 {
		return Span{}, false
	}
	span := Span{File: loc.File, Line: loc.Line, Col: loc.Col}
	if loc.Path != "" {
		span.File = loc.Path
	}
	return span, true
}

// Frame is one call in the stack trace of an error, innermost first.
type Frame struct {
	Name   string
	Source *token.Location
}

func (f Frame) note(outer bool) string {
	loc := "unknown"
	if f.Source != nil && f.Source.Pos >= 0 {
		loc = f.Source.String()
	}
	kind := "in"
	if outer {
		kind = "called from"
	}
	return fmt.Sprintf("%s %s at %s", kind, f.Name, loc)
}

// Diagnostic represents a single error, warning, or note with optional
// source annotations, a call trace, and trailing notes.
type Diagnostic struct {
	Severity  Severity
	Condition string // lisp condition name, e.g. "type-error"
	Message   string
	Spans     []Span
	Trace     []Frame
	Notes     []string
}

// Summary is the one line description of d: its condition, if any, followed
// by its message.
func (d Diagnostic) Summary() string {
	if d.Condition == "" {
		return d.Message
	}
	return d.Condition + ": " + d.Message
}

// TraceNotes renders the call trace of d as it appears in "= note:" lines.
func (d Diagnostic) TraceNotes() []string {
	notes := make([]string, len(d.Trace))
	for i, f := range d.Trace {
		notes[i] = f.note(i > 0)
	}
	return notes
}

func (d Diagnostic) gutterWidth() int {
	w := 1
	for _, span := range d.Spans {
		if n := len(fmt.Sprint(span.Line)); n > w {
			w = n
		}
	}
	return w
}
