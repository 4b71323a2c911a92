// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/parser"
	"github.com/iBelieve/rasp/rasptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readForm(t *testing.T, source string) *lisp.LVal {
	t.Helper()
	forms, err := parser.Parse("test", []byte(source))
	require.NoError(t, err)
	require.Len(t, forms, 1)
	return forms[0]
}

func TestParseParams(t *testing.T) {
	tests := []struct {
		spec     string
		required []string
		optional []string
		rest     string
		keywords []string
	}{
		{"()", nil, nil, "", nil},
		{"(a b)", []string{"a", "b"}, nil, "", nil},
		{"(a (b 1) ...rest :k)", []string{"a"}, []string{"b"}, "rest", []string{"k"}},
		{"((a 1) (b 2))", nil, []string{"a", "b"}, "", nil},
		{"(...args)", nil, nil, "args", nil},
		{"(:x (:y 2))", nil, nil, "", []string{"x", "y"}},
		{"(a ...more (:k 1))", []string{"a"}, nil, "more", []string{"k"}},
	}
	for _, test := range tests {
		t.Run(test.spec, func(t *testing.T) {
			p, lerr := lisp.ParseParams(readForm(t, test.spec))
			require.Nil(t, lerr)
			assert.Equal(t, test.required, p.Required)
			var optional []string
			for _, param := range p.Optional {
				optional = append(optional, param.Name)
			}
			assert.Equal(t, test.optional, optional)
			assert.Equal(t, test.rest, p.Rest)
			var keywords []string
			for _, param := range p.Keywords {
				keywords = append(keywords, param.Name)
			}
			assert.Equal(t, test.keywords, keywords)
			assert.Equal(t, test.spec, p.String())
		})
	}
}

func TestParseParamsInvalid(t *testing.T) {
	tests := []string{
		"(a ...rest b)",
		"((a 1) b)",
		"(:k a)",
		"(:k ...rest)",
		"(...a ...b)",
		"(...rest (b 1))",
		"(1)",
		"((1 2))",
		"((a))",
		"((a 1 2))",
		"(nil)",
		"(...)",
		"(:)",
		"(:true)",
		"(a a)",
		"(a :a)",
		"((...rest nil))",
		"x",
	}
	for _, spec := range tests {
		t.Run(spec, func(t *testing.T) {
			p, lerr := lisp.ParseParams(readForm(t, spec))
			assert.Nil(t, p)
			require.NotNil(t, lerr)
			assert.Equal(t, lisp.CondParamSpecError, lerr.Str, "%v", lerr)
		})
	}
}

func TestParamsApply(t *testing.T) {
	tests := rasptest.TestSuite{
		{"positional", rasptest.TestSequence{
			{"(defun f (a (b 1) ...rest :k) (list a b rest k))", "nil", ""},
			{"(f 1 :k 3)", "(1 1 nil 3)", ""},
			{"(f 1 2 :k 3)", "(1 2 nil 3)", ""},
			{"(f 1 2 3 4 :k 5)", "(1 2 (3 4) 5)", ""},
		}},
		{"optional defaults", rasptest.TestSequence{
			{"(defun g (a (b (+ a 1)) (c (* b 2))) (list a b c))", "nil", ""},
			{"(g 1)", "(1 2 4)", ""},
			{"(g 1 5)", "(1 5 10)", ""},
			{"(g 1 5 0)", "(1 5 0)", ""},
		}},
		{"keywords", rasptest.TestSequence{
			{"(defun kw (p :a (:b (+ p 1))) (list p a b))", "nil", ""},
			{"(kw 1 :a 1)", "(1 1 2)", ""},
			{"(kw 1 :b 0 :a 3)", "(1 3 0)", ""},
			{"(defun kwdep (:a (:b a)) b)", "nil", ""},
			{"(kwdep :b 2 :a 1)", "2", ""},
			{"(defun open (:x) (list x extra))", "nil", ""},
			{"(open :x 1 :extra 2)", "(1 2)", ""},
			{"(defun kwval (:x) x)", "nil", ""},
			{"(kwval :x :y)", ":y", ""},
		}},
		{"rest", rasptest.TestSequence{
			{"(defun r (...xs) xs)", "nil", ""},
			{"(r)", "nil", ""},
			{"(r 1 2 3)", "(1 2 3)", ""},
		}},
		{"macro arguments", rasptest.TestSequence{
			{"(defmacro m (a ...rest) (list a rest))", "nil", ""},
			{"(m (+ 1 2) x y)", "((+ 1 2) (x y))", ""},
		}},
	}
	rasptest.RunTestSuite(t, tests)
}

func TestParamsApplyErrors(t *testing.T) {
	tests := []struct {
		name      string
		args      string
		condition string
		message   string
	}{
		{"missing required", "()", lisp.CondArityError, "missing required arguments: a, b"},
		{"extra argument", "(1 2 3 4)", lisp.CondArityError, "unexpected additional argument: 4"},
		{"value after keyword", "(1 2 :k 1 5)", lisp.CondArityError, "unexpected value after keyword arguments: 5"},
		{"keyword without value", "(1 2 :k)", lisp.CondArityError, "keyword argument missing value: :k"},
		{"duplicate keyword", "(1 2 :k 1 :k 2)", lisp.CondDuplicateKeyword, "duplicate keyword argument: :k"},
		{"missing keyword", "(1 2)", lisp.CondMissingKeywordArg, "missing required keyword argument: :k"},
		{"missing before keyword", "(1 :k 2)", lisp.CondArityError, "missing required arguments: b"},
	}
	params, lerr := lisp.ParseParams(readForm(t, "(a b (c 0) :k)"))
	require.Nil(t, lerr)
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			env := lisp.NewEnv(rasptest.NewEnv(t, nil))
			v := params.Apply(env, readForm(t, test.args))
			require.Equal(t, lisp.LError, v.Type)
			assert.Equal(t, test.condition, v.Str)
			assert.Equal(t, test.message, lisp.GoError(v).(*lisp.ErrorVal).ErrorMessage())
		})
	}
}

func TestParamsApplyBindings(t *testing.T) {
	params, lerr := lisp.ParseParams(readForm(t, "(a (b 10) ...more (:k a))"))
	require.Nil(t, lerr)
	env := lisp.NewEnv(rasptest.NewEnv(t, nil))
	v := params.Apply(env, readForm(t, "(1 2 3 :other 4)"))
	require.Equal(t, lisp.LNil, v.Type, "%v", v)
	assert.Equal(t, "1", env.Scope["a"].String())
	assert.Equal(t, "2", env.Scope["b"].String())
	assert.Equal(t, "(3)", env.Scope["more"].String())
	assert.Equal(t, "1", env.Scope["k"].String())
	assert.Equal(t, "4", env.Scope["other"].String())
	assert.Equal(t, []string{"a", "b", "more", "k"}, params.Names())
	assert.Equal(t, 4, params.Len())
}
