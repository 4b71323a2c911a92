// Copyright © 2018 The ELPS authors

package repl

import (
	"sort"
	"strings"

	"github.com/iBelieve/rasp/lisp"
)

// symbolCompleter implements readline.AutoCompleter by enumerating symbols
// bound in the REPL environment.
type symbolCompleter struct {
	env *lisp.LEnv
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the word being typed (backwards from cursor to whitespace or open paren).
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '(' || ch == '\n' || ch == '\'' || ch == '`' || ch == ',' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collectSymbols(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}

	// Build completions: each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, sym := range candidates {
		suffix := sym[len(prefix):]
		result = append(result, []rune(suffix))
	}
	return result, len(prefix)
}

// collectSymbols returns the sorted names with the given prefix, including
// the reserved literals.
func (c *symbolCompleter) collectSymbols(prefix string) []string {
	var result []string
	names := c.env.Names()
	reserved := []string{lisp.FalseSymbol, lisp.NilSymbol, lisp.TrueSymbol}
	for _, name := range append(reserved, names...) {
		if strings.HasPrefix(name, prefix) {
			result = append(result, name)
		}
	}
	return sortedUnique(result)
}

func sortedUnique(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
