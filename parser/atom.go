// Copyright © 2018 The ELPS authors

package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/iBelieve/rasp/lisp"
)

var (
	intRegexp   = regexp.MustCompile(`^[+-]?[0-9]+$`)
	floatRegexp = regexp.MustCompile(`^[+-]?(?:[0-9]+\.[0-9]*|\.[0-9]+|[0-9]+)(?:[eE][+-]?[0-9]+)?$`)
)

// parseAtom classifies the text of an atom token as an integer, a float or a
// symbol.
func parseAtom(text string) (*lisp.LVal, error) {
	if strings.ContainsRune(text, '\\') {
		s, err := unescape(text)
		if err != nil {
			return nil, err
		}
		return lisp.Symbol(s), nil
	}
	if intRegexp.MatchString(text) {
		x, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("integer literal out of range: %s", text)
		}
		return lisp.Int(x), nil
	}
	if floatRegexp.MatchString(text) {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float literal: %s", text)
		}
		return lisp.Float(f), nil
	}
	return lisp.Symbol(text), nil
}

var escapes = map[byte]byte{
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
	'\'': '\'',
	'"':  '"',
	'?':  '?',
	'\\': '\\',
	'|':  '|',
}

// unescape replaces the escape sequences in s.  Besides the usual control
// character escapes a backslash may quote any character which is not
// alphanumeric.
func unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '\\') {
		return s, nil
	}
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			buf.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", fmt.Errorf("unterminated escape sequence")
		}
		if e, ok := escapes[s[i]]; ok {
			buf.WriteByte(e)
			continue
		}
		if isAlnum(s[i]) {
			return "", fmt.Errorf("invalid escape sequence: \\%c", s[i])
		}
		buf.WriteByte(s[i])
	}
	return buf.String(), nil
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
