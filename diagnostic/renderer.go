// Copyright © 2018 The ELPS authors

package diagnostic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Renderer formats diagnostics as Rust-style annotated source snippets.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	return r.RenderAll(w, []Diagnostic{d})
}

// RenderAll writes all diagnostics to w separated by blank lines.  Each
// source file is read at most once.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	bw := bufio.NewWriter(w)
	out := &output{
		ew:      &errWriter{w: bw},
		p:       choosePalette(r.Color, fileFromWriter(w)),
		sources: newSourceCache(r.SourceReader),
	}
	for i, d := range diags {
		if i > 0 {
			out.ew.print("\n")
		}
		out.diagnostic(d)
	}
	if out.ew.err != nil {
		return out.ew.err
	}
	return bw.Flush()
}

type output struct {
	ew      *errWriter
	p       palette
	sources *sourceCache
}

func (o *output) diagnostic(d Diagnostic) {
	gutter := strings.Repeat(" ", d.gutterWidth())
	o.header(d)
	for _, span := range d.Spans {
		o.span(span, gutter)
	}
	for _, note := range d.TraceNotes() {
		o.note(gutter, note)
	}
	for _, note := range d.Notes {
		o.note(gutter, note)
	}
}

// header writes "error: type-error: message".  The condition is colored
// separately from the message.
func (o *output) header(d Diagnostic) {
	p := o.p
	var sevColor string
	switch d.Severity {
	case SeverityError:
		sevColor = p.boldRed
	case SeverityWarning:
		sevColor = p.yellow
	case SeverityNote:
		sevColor = p.boldCyan
	}
	o.ew.printf("%s%s%s%s: ", sevColor, p.bold, d.Severity, p.reset)
	if d.Condition != "" {
		o.ew.printf("%s%s%s: ", p.red, d.Condition, p.reset)
	}
	o.ew.printf("%s%s%s\n", p.bold, d.Message, p.reset)
}

func (o *output) note(gutter, note string) {
	o.ew.printf(" %s %s=%s note: %s\n", gutter, o.p.boldCyan, o.p.reset, note)
}

func (o *output) span(span Span, gutter string) {
	p := o.p
	loc := span.File
	if span.Line > 0 {
		loc = fmt.Sprintf("%s:%d", span.File, span.Line)
		if span.Col > 0 {
			loc = fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
		}
	}
	o.ew.printf(" %s%s-->%s %s\n", gutter, p.boldBlue, p.reset, loc)

	source, ok := o.sources.line(span.File, span.Line)
	if !ok {
		o.ew.printf(" %s %s|%s\n", gutter, p.boldBlue, p.reset)
		return
	}
	lineNum := fmt.Sprintf("%*d", len(gutter), span.Line)
	o.ew.printf(" %s %s|%s\n", gutter, p.boldBlue, p.reset)
	o.ew.printf(" %s%s |%s  %s\n", p.boldBlue, lineNum, p.reset, expandTabs(source))

	col := span.Col
	if col <= 0 {
		col = 1
	}
	endCol := span.EndCol
	if endCol <= 0 {
		endCol = formEnd(source, col)
	}
	if endCol < col {
		endCol = col
	}
	prefix := ""
	if col-1 <= len(source) {
		prefix = source[:col-1]
	}
	o.ew.printf(" %s %s|%s  %s%s%s%s",
		gutter, p.boldBlue, p.reset,
		strings.Repeat(" ", len(expandTabs(prefix))),
		p.boldRed, strings.Repeat("^", endCol-col+1), p.reset)
	if span.Label != "" {
		o.ew.printf(" %s%s%s", p.boldRed, span.Label, p.reset)
	}
	o.ew.print("\n")
	o.ew.printf(" %s %s|%s\n", gutter, p.boldBlue, p.reset)
}

// formEnd returns the 1-based column of the last byte of the form starting
// at col in line.  A list extends to its closing paren and a string or pipe
// symbol to its closing delimiter when they are on the same line.  Any other
// form ends before the next delimiter.
func formEnd(line string, col int) int {
	start := col - 1
	if start < 0 || start >= len(line) {
		return col
	}
	switch line[start] {
	case '(':
		depth := 0
		for i := start; i < len(line); i++ {
			switch line[i] {
			case '\\':
				i++
			case '"', '|':
				end := closing(line, i)
				if end < 0 {
					return len(line)
				}
				i = end
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return i + 1
				}
			}
		}
		return len(line)
	case '"', '|':
		if end := closing(line, start); end >= 0 {
			return end + 1
		}
		return len(line)
	}
	end := start
	for end < len(line) && !isDelimiter(line[end]) {
		if line[end] == '\\' {
			end++
		}
		end++
	}
	if end == start {
		return col
	}
	if end > len(line) {
		end = len(line)
	}
	return end
}

// closing returns the index of the unescaped delimiter closing the string
// or pipe symbol opened at line[open], or -1.
func closing(line string, open int) int {
	delim := line[open]
	for i := open + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case delim:
			return i
		}
	}
	return -1
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '(', ')', '"', '\'', '`', ',', ';', '|':
		return true
	}
	return false
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

// sourceCache holds the lines of every source file read while rendering.
type sourceCache struct {
	read  func(string) ([]byte, error)
	files map[string][]string
}

func newSourceCache(read func(string) ([]byte, error)) *sourceCache {
	if read == nil {
		read = func(name string) ([]byte, error) {
			return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
		}
	}
	return &sourceCache{read: read, files: make(map[string][]string)}
}

func (c *sourceCache) line(file string, n int) (string, bool) {
	if n <= 0 || file == "" {
		return "", false
	}
	lines, ok := c.files[file]
	if !ok {
		data, err := c.read(file)
		if err == nil {
			lines = strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		}
		c.files[file] = lines
	}
	if n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

// errWriter wraps a writer and captures the first error, short-circuiting
// subsequent writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

// fileFromWriter extracts an *os.File from a writer for terminal detection.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
