// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/rasptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	tests := rasptest.TestSuite{
		{"literals", rasptest.TestSequence{
			{"42", "42", ""},
			{"3.5", "3.5", ""},
			{`"hi"`, `"hi"`, ""},
			{"true", "true", ""},
			{"false", "false", ""},
			{"nil", "nil", ""},
			{"()", "nil", ""},
			{":key", ":key", ""},
			{":", ":", ""},
			{"(list : :a)", "(: :a)", ""},
			{"-7", "-7", ""},
			{"2.0", "2.0", ""},
		}},
		{"arithmetic", rasptest.TestSequence{
			{"(+ 1 2)", "3", ""},
			{"(+ 1 2.4)", "3.4", ""},
			{"(+ (+ 3.1 1) 2.4)", "6.5", ""},
			{"(+ 1 2 3 4)", "10", ""},
			{"(- 10 3 2)", "5", ""},
			{"(- 4)", "-4", ""},
			{"(* 2 3.0)", "6.0", ""},
			{"(/ 7 2)", "3", ""},
			{"(/ 7.0 2)", "3.5", ""},
			{"(= 1 1.0)", "true", ""},
			{"(< 1 2 3)", "true", ""},
			{"(< 1 3 2)", "false", ""},
			{"(>= 2 2)", "true", ""},
			{"(> 2.5 2)", "true", ""},
		}},
		{"set", rasptest.TestSequence{
			{"(set a 2 b 3)", "nil", ""},
			{"(+ a b)", "5", ""},
			{"(set c (+ a 1) d c)", "nil", ""},
			{"d", "3", ""},
		}},
		{"let", rasptest.TestSequence{
			{"(let ((a 2) (b 3)) (+ a b))", "5", ""},
			{"(set a 10 b 20)", "nil", ""},
			{"(let ((a 2) (b 3)) (+ a b))", "5", ""},
			{"(+ a b)", "30", ""},
			{"(let ((a 1) (b a)) b)", "10", ""},
			{"(let (x) x)", "nil", ""},
			{"(let ())", "nil", ""},
			{"(let ((x 1)) (set x 2) x)", "2", ""},
		}},
		{"if", rasptest.TestSequence{
			{"(if true 1 2)", "1", ""},
			{"(if false 1 2)", "2", ""},
			{"(if false 1 2 3)", "3", ""},
			{"(if false 1)", "nil", ""},
			{"(if (< 1 2) (println 1) (println 2))", "nil", "1\n"},
		}},
		{"progn", rasptest.TestSequence{
			{"(progn)", "nil", ""},
			{"(progn 1 2)", "2", ""},
			{`(progn (print "a") (println "b"))`, "nil", "ab\n"},
		}},
		{"quote", rasptest.TestSequence{
			{"(quote (a b))", "(a b)", ""},
			{"'x", "x", ""},
			{"''x", "'x", ""},
			{"'(1 \"two\" 3.0)", `(1 "two" 3.0)`, ""},
		}},
		{"defun", rasptest.TestSequence{
			{"(defun plus (a b) (+ a b))", "nil", ""},
			{"(plus 4 6)", "10", ""},
			{"plus", "#<function plus>", ""},
			{"(defun no-body ())", "nil", ""},
			{"(no-body)", "nil", ""},
			{"(defun fact (n) (if (<= n 1) 1 (* n (fact (- n 1)))))", "nil", ""},
			{"(fact 10)", "3628800", ""},
		}},
		{"closures", rasptest.TestSequence{
			{"(set n 1)", "nil", ""},
			{"(defun get-n () n)", "nil", ""},
			{"(set n 5)", "nil", ""},
			{"(get-n)", "5", ""},
			{"(defun make-adder (x) (defun adder (y) (+ x y)) adder)", "nil", ""},
			{"(set add2 (make-adder 2))", "nil", ""},
			{"(add2 40)", "42", ""},
			{"(defun shadow (n) n)", "nil", ""},
			{"(shadow 9)", "9", ""},
			{"n", "5", ""},
		}},
		{"defmacro", rasptest.TestSequence{
			{"(defmacro form-of (x) x)", "nil", ""},
			{"(form-of (+ 1 2))", "(+ 1 2)", ""},
			{"(defmacro twice (x) (eval x) (eval x))", "nil", ""},
			{`(twice (print "x"))`, "nil", "xx"},
			{"form-of", "#<macro form-of>", ""},
			{"(defmacro unless (c ...body) (if (eval c) nil (eval (append (list 'progn) body))))", "nil", ""},
			{"(unless false 1 2)", "2", ""},
			{"(unless true (println 1))", "nil", ""},
		}},
		{"eval", rasptest.TestSequence{
			{"(eval '(+ 1 2))", "3", ""},
			{"(set form (list '+ 1 2))", "nil", ""},
			{"(eval form)", "3", ""},
		}},
		{"natives", rasptest.TestSequence{
			{"(list 1 2 3)", "(1 2 3)", ""},
			{"(list)", "nil", ""},
			{"(append (list 1) (list 2 3) nil)", "(1 2 3)", ""},
			{"(append (list 1) 2)", "(1 . 2)", ""},
			{"(append)", "nil", ""},
			{"(cons 1 (list 2))", "(1 2)", ""},
			{"(cons 1 2)", "(1 . 2)", ""},
			{"(car '(a b))", "a", ""},
			{"(cdr '(a b))", "(b)", ""},
			{"(car nil)", "nil", ""},
			{"(length '(a b c))", "3", ""},
			{`(length "abcd")`, "4", ""},
			{"(not false)", "true", ""},
			{"(nil? ())", "true", ""},
			{"(nil? '(1))", "false", ""},
			{"(apply + 1 '(2 3))", "6", ""},
			{"(apply list nil)", "nil", ""},
			{`(println "hi" 1 'sym "a\tb")`, "nil", "hi 1 sym a\tb\n"},
			{"+", "#<native-function +>", ""},
			{"let", "#<native-macro let>", ""},
		}},
	}
	rasptest.RunTestSuite(t, tests)
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		condition string
	}{
		{"unbound symbol", "undefined-thing", lisp.CondUnboundSymbol},
		{"unbound function", "(undefined-fun 1)", lisp.CondUnboundSymbol},
		{"call nil", "(nil)", lisp.CondTypeError},
		{"call int", "(1 2)", lisp.CondTypeError},
		{"too few arguments", "(defun plus (a b) (+ a b)) (plus 1)", lisp.CondArityError},
		{"too many arguments", "(defun plus (a b) (+ a b)) (plus 1 2 3)", lisp.CondArityError},
		{"if condition", "(if 1 2 3)", lisp.CondTypeError},
		{"set odd", "(set a)", lisp.CondArityError},
		{"set non-symbol", `(set "a" 1)`, lisp.CondTypeError},
		{"set reserved", "(set true 1)", lisp.CondTypeError},
		{"set bare colon", "(set : 1)", lisp.CondTypeError},
		{"let reserved", "(let ((nil 1)) nil)", lisp.CondTypeError},
		{"misordered params", "(defun f (a ...rest b) a)", lisp.CondParamSpecError},
		{"quote arity", "(quote a b)", lisp.CondArityError},
		{"add string", `(+ 1 "2")`, lisp.CondTypeError},
		{"add nothing", `(+)`, lisp.CondArityError},
		{"divide by zero", `(/ 1 0)`, lisp.CondTypeError},
		{"car of int", `(car 1)`, lisp.CondTypeError},
		{"not of int", `(not 1)`, lisp.CondTypeError},
		{"append non-list", `(append 1 nil)`, lisp.CondTypeError},
		{"length improper", `(length (cons 1 2))`, lisp.CondImproperList},
		{"append improper", `(append (cons 1 2) nil)`, lisp.CondImproperList},
		{"apply improper", `(apply list (cons 1 2))`, lisp.CondImproperList},
		{"duplicate keyword", "(defun f (:a) a) (f :a 1 :a 2)", lisp.CondDuplicateKeyword},
		{"missing keyword", "(defun f (:a) a) (f)", lisp.CondMissingKeywordArg},
		{"error in argument", "(list 1 (car 2))", lisp.CondTypeError},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			v, _ := rasptest.EvalString(t, test.source)
			require.Equal(t, lisp.LError, v.Type, "result: %v", v)
			assert.Equal(t, test.condition, v.Str, "error: %v", v)
		})
	}
}

func TestEvalErrorAbortsRun(t *testing.T) {
	v, out := rasptest.EvalString(t, `(println "before") (undefined) (println "after")`)
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, lisp.CondUnboundSymbol, v.Str)
	assert.Equal(t, "before\n", out)
}

func TestEvalErrorTrace(t *testing.T) {
	v, _ := rasptest.EvalString(t, "(defun inner (x) (car x))\n(defun outer (x) (inner x))\n(outer 3)")
	require.Equal(t, lisp.LError, v.Type)
	lerr := lisp.GoError(v).(*lisp.ErrorVal)
	assert.Equal(t, lisp.CondTypeError, lerr.Condition())
	stack := lerr.Stack()
	require.NotNil(t, stack)
	require.Len(t, stack.Frames, 3)
	assert.Equal(t, "outer", stack.Frames[0].Name)
	assert.Equal(t, "inner", stack.Frames[1].Name)
	assert.Equal(t, "car", stack.Frames[2].Name)
	assert.Equal(t, 3, stack.Frames[0].Source.Line)
	assert.Equal(t, 1, stack.Frames[2].Source.Line)
	assert.Equal(t, 1, v.Source.Line)
}

func TestStackOverflow(t *testing.T) {
	source := "(defun spin (n) (spin n)) (spin 1)"
	v, _ := rasptest.EvalString(t, source, lisp.WithMaximumStackHeight(100))
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, lisp.CondStackOverflow, v.Str)

	v, _ = rasptest.EvalString(t, "(defun down (n) (if (= n 0) 0 (down (- n 1)))) (down 20)",
		lisp.WithMaximumStackHeight(100))
	assert.Equal(t, "0", v.String())
}

func TestImproperArguments(t *testing.T) {
	env := rasptest.NewEnv(t, nil)
	v := env.Eval(lisp.Cons(lisp.Symbol("list"), lisp.Int(1)))
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, lisp.CondImproperList, v.Str)

	v = env.Eval(lisp.Cons(lisp.Symbol("progn"), lisp.Int(1)))
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, lisp.CondImproperList, v.Str)
}

func TestCall(t *testing.T) {
	env := rasptest.NewEnv(t, nil)
	lerr := env.LoadString("test", "(defun pair (a b) (list a b)) (defmacro form (x) x)")
	require.NotEqual(t, lisp.LError, lerr.Type, "%v", lerr)

	pair := env.Get(lisp.Symbol("pair"))
	// arguments are not evaluated again
	v := env.Call(pair, lisp.List(lisp.Symbol("x"), lisp.Int(2)))
	assert.Equal(t, "(x 2)", v.String())

	form := env.Get(lisp.Symbol("form"))
	v = env.Call(form, lisp.List(lisp.List(lisp.Symbol("+"), lisp.Int(1))))
	assert.Equal(t, "(+ 1)", v.String())

	v = env.Call(lisp.Nil(), lisp.Nil())
	assert.Equal(t, lisp.CondTypeError, v.Str)
}
