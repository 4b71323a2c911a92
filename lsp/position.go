// Copyright © 2018 The ELPS authors

package lsp

import (
	"strings"

	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/parser/token"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// raspToLSPPosition converts a 1-based source location to a 0-based LSP
// position.
func raspToLSPPosition(loc *token.Location) protocol.Position {
	line := loc.Line
	col := loc.Col
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(col),
	}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// raspToLSPRange converts a source location to an LSP range nameLen
// characters wide on the same line.
func raspToLSPRange(loc *token.Location, nameLen int) protocol.Range {
	start := raspToLSPPosition(loc)
	end := protocol.Position{
		Line:      start.Line,
		Character: start.Character + safeUint(nameLen),
	}
	return protocol.Range{Start: start, End: end}
}

// locContainsCol checks whether a 1-based column falls within the token
// named name starting at loc.
func locContainsCol(loc *token.Location, name string, col int) bool {
	start := loc.Col
	if start == 0 {
		return false
	}
	end := start + len(name)
	return col >= start && col < end
}

// wordAtPosition extracts the symbol-like word at the given 0-based LSP
// position from the document content. The cursor can be inside or at the
// end of a word; in both cases the full word is returned.
func wordAtPosition(content string, line, col int) string {
	start, end, ln := wordBounds(content, line, col)
	return ln[start:end]
}

// prefixAtPosition returns the part of the word at the position which
// precedes the cursor.
func prefixAtPosition(content string, line, col int) string {
	start, _, ln := wordBounds(content, line, col)
	if col > len(ln) {
		col = len(ln)
	}
	if start > col {
		return ""
	}
	return ln[start:col]
}

func wordBounds(content string, line, col int) (int, int, string) {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return 0, 0, ""
	}
	ln := lines[line]
	if col < 0 || col > len(ln) {
		return 0, 0, ""
	}
	// Scan backwards from cursor.
	start := col
	for start > 0 && isSymbolChar(ln[start-1]) {
		start--
	}
	// Scan forwards from cursor.
	end := col
	for end < len(ln) && isSymbolChar(ln[end]) {
		end++
	}
	return start, end, ln
}

// isSymbolChar reports whether c may appear in an unescaped atom.
func isSymbolChar(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '(', ')', '"', '\'', '`', ',', ';', '|', '#', '\\':
		return false
	}
	return true
}

// symbolsNamed returns every symbol named name which appears in forms and
// has a source location, in source order.
func symbolsNamed(forms []*lisp.LVal, name string) []*lisp.LVal {
	var found []*lisp.LVal
	var walk func(v *lisp.LVal)
	walk = func(v *lisp.LVal) {
		switch v.Type {
		case lisp.LSymbol:
			if v.Str == name && v.Source != nil && v.Source.Line > 0 {
				found = append(found, v)
			}
		case lisp.LCons:
			for c := v; c.Type == lisp.LCons; c = c.Cells[1] {
				walk(c.Cells[0])
			}
		}
	}
	for _, form := range forms {
		walk(form)
	}
	return found
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
