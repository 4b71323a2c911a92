// Copyright © 2018 The ELPS authors

package profiler

import (
	"testing"

	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/parser/token"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected string
	}{
		{
			name:     "empty",
			label:    "",
			expected: "",
		},
		{
			name:     "normal",
			label:    " Add-It ",
			expected: "Add-It",
		},
		{
			name:     "predicate",
			label:    "user-exists?",
			expected: "user-exists?",
		},
		{
			name:     "spaces",
			label:    "Add  It",
			expected: "Add_It",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			actual := sanitizeLabel(tc.label)
			assert.Equal(t, tc.expected, actual, "sanitizeLabel(%s)", tc.label)
		})
	}
}

func TestSourceFunLabeler(t *testing.T) {
	fun := lisp.Fun("fib", &lisp.Params{}, lisp.Nil(), nil)
	fun.Source = &token.Location{File: "examples/my fib.lisp", Line: 3, Col: 1}
	assert.Equal(t, "my_fib.lisp:fib", sourceFunLabeler(nil, fun))
	assert.Equal(t, "native:car", sourceFunLabeler(nil, lisp.NativeFun("car", 0)))
}
