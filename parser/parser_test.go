// Copyright © 2018 The ELPS authors

package parser

import (
	"strings"
	"testing"

	"github.com/iBelieve/rasp/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, src string) []*lisp.LVal {
	t.Helper()
	vals, err := Parse("test", []byte(src))
	require.NoError(t, err, "source: %s", src)
	return vals
}

func TestReader(t *testing.T) {
	r := NewReader()
	exprs, err := r.Read("test", strings.NewReader("(+ 1 2) 42"))
	require.NoError(t, err)
	require.Len(t, exprs, 2)
	assert.Equal(t, lisp.LCons, exprs[0].Type)
	assert.Equal(t, lisp.LInt, exprs[1].Type)
	assert.Equal(t, 42, exprs[1].Int)
}

func TestParseTopLevelForms(t *testing.T) {
	tests := []struct {
		src  string
		strs []string
	}{
		{"42", []string{"42"}},
		{"(+ 1 2)", []string{"(+ 1 2)"}},
		{"a 'b (c)", []string{"a", "'b", "(c)"}},
		{"(f 'x (g ,@nil))", nil},
		{"; only a comment\n", []string{}},
		{"(f 'x (g \"s\") |p q|)", []string{"(f 'x (g \"s\") p q)"}},
	}
	for _, test := range tests {
		vals, err := Parse("test", []byte(test.src))
		if test.strs == nil {
			assert.Error(t, err, test.src)
			continue
		}
		require.NoError(t, err, test.src)
		strs := make([]string, len(vals))
		for i, v := range vals {
			strs[i] = v.String()
		}
		assert.Equal(t, test.strs, strs, test.src)
	}
}

func TestParseAtoms(t *testing.T) {
	tests := []struct {
		src string
		typ lisp.LType
		str string
	}{
		{"42", lisp.LInt, "42"},
		{"-7", lisp.LInt, "-7"},
		{"+3", lisp.LInt, "3"},
		{"2.5", lisp.LFloat, "2.5"},
		{"1e3", lisp.LFloat, "1000.0"},
		{".5", lisp.LFloat, "0.5"},
		{"-", lisp.LSymbol, "-"},
		{"...rest", lisp.LSymbol, "...rest"},
		{":key", lisp.LSymbol, ":key"},
		{"1+", lisp.LSymbol, "1+"},
		{"nil", lisp.LSymbol, "nil"},
		{`"hello"`, lisp.LString, `"hello"`},
		{`"a\nb\t\"c\""`, lisp.LString, `"a\nb\t\"c\""`},
		{`"semi;colon"`, lisp.LString, `"semi;colon"`},
		{`|two words|`, lisp.LSymbol, "two words"},
		{`|a\|b|`, lisp.LSymbol, "a|b"},
		{`a\ b`, lisp.LSymbol, "a b"},
		{`\(x`, lisp.LSymbol, "(x"},
	}
	for _, test := range tests {
		vals := parseString(t, test.src)
		if assert.Len(t, vals, 1, test.src) {
			assert.Equal(t, test.typ, vals[0].Type, test.src)
			assert.Equal(t, test.str, vals[0].String(), test.src)
		}
	}
}

func TestParseLists(t *testing.T) {
	tests := []struct {
		src string
		str string
	}{
		{"()", "nil"},
		{"(a)", "(a)"},
		{"(a (b c) ())", "(a (b c) nil)"},
		{"(a ; comment\n b)", "(a b)"},
		{"(  a\n\tb  )", "(a b)"},
		{"'a", "'a"},
		{"'(1 2)", "'(1 2)"},
		{"''a", "''a"},
		{"'()", "'nil"},
		{"`(a ,b)", "(append (list 'a) (list b) nil)"},
		{"`(a ,@b)", "(append (list 'a) b nil)"},
		{"`a", "'a"},
	}
	for _, test := range tests {
		vals := parseString(t, test.src)
		if assert.Len(t, vals, 1, test.src) {
			assert.Equal(t, test.str, vals[0].String(), test.src)
		}
	}
}

func TestParseEmptyList(t *testing.T) {
	vals := parseString(t, "()")
	require.Len(t, vals, 1)
	assert.Equal(t, lisp.LNil, vals[0].Type)
}

func TestParseComments(t *testing.T) {
	vals := parseString(t, "; leading\n1 ; trailing\n;; final")
	require.Len(t, vals, 1)
	assert.Equal(t, 1, vals[0].Int)

	vals = parseString(t, "; only a comment")
	assert.Len(t, vals, 0)

	vals = parseString(t, "")
	assert.Len(t, vals, 0)
}

func TestParseHashBang(t *testing.T) {
	vals := parseString(t, "#!/usr/bin/env rasp run\n(foo)")
	require.Len(t, vals, 1)
	assert.Equal(t, "(foo)", vals[0].String())
	assert.Equal(t, 2, vals[0].Source.Line)
	assert.Equal(t, 1, vals[0].Source.Col)
}

func TestParseLocations(t *testing.T) {
	vals := parseString(t, "(a\n  (b c))\n  x")
	require.Len(t, vals, 2)

	list := vals[0]
	require.NotNil(t, list.Source)
	assert.Equal(t, "test", list.Source.File)
	assert.Equal(t, 1, list.Source.Line)
	assert.Equal(t, 1, list.Source.Col)
	assert.Equal(t, 0, list.Source.Pos)

	a := list.Cells[0]
	assert.Equal(t, 1, a.Source.Line)
	assert.Equal(t, 2, a.Source.Col)

	inner := list.Cells[1].Cells[0]
	assert.Equal(t, "(b c)", inner.String())
	assert.Equal(t, 2, inner.Source.Line)
	assert.Equal(t, 3, inner.Source.Col)
	assert.Equal(t, 5, inner.Source.Pos)

	x := vals[1]
	assert.Equal(t, "test:3:3", x.Source.String())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"(+ 1", "test:1:1: syntax-error: unmatched '(' starting: (+ 1"},
		{"1 )", "test:1:3: syntax-error: unexpected ')'"},
		{"(a)\n\"abc", `test:2:1: syntax-error: unterminated string starting: "abc`},
		{"|abc", "test:1:1: syntax-error: unterminated symbol starting: |abc"},
		{"'", `test:1:1: syntax-error: expected expression after '\''`},
		{"99999999999999999999", "test:1:1: syntax-error: integer literal out of range: 99999999999999999999"},
		{`"\q"`, `test:1:1: syntax-error: invalid escape sequence: \q`},
		{",x", "test:1:1: syntax-error: comma not inside backquote"},
		{"(a ,@b)", "test:1:4: syntax-error: comma not inside backquote"},
		{"#x", "test:1:1: syntax-error: unexpected source text starting: #x"},
	}
	for _, test := range tests {
		_, err := Parse("test", []byte(test.src))
		if assert.Error(t, err, test.src) {
			assert.Equal(t, test.msg, err.Error(), test.src)
			lerr, ok := err.(*lisp.ErrorVal)
			if assert.True(t, ok, test.src) {
				assert.Equal(t, lisp.CondSyntaxError, lerr.Condition())
			}
		}
	}
}

func TestParseSnippetTruncated(t *testing.T) {
	_, err := Parse("test", []byte("(defun long-function-name (x) x"))
	require.Error(t, err)
	assert.Equal(t, "test:1:1: syntax-error: unmatched '(' starting: (defun long-func...", err.Error())
}
