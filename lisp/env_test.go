// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"path/filepath"
	"testing"

	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/rasptest"
	"github.com/iBelieve/rasp/rasputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvRead(t *testing.T) {
	env := rasptest.NewEnv(t, nil)

	v := env.Read("test", "")
	assert.Equal(t, lisp.LNil, v.Type)

	v = env.Read("test", "; only a comment\n")
	assert.Equal(t, lisp.LNil, v.Type)

	v = env.Read("test", "(+ 1 2)")
	assert.Equal(t, "(+ 1 2)", v.String())

	v = env.Read("test", "(set x 1)\n(+ x 2)")
	assert.Equal(t, "(progn (set x 1) (+ x 2))", v.String())
	assert.Equal(t, "3", env.Eval(v).String())

	v = env.Read("test", "(+ 1")
	require.Equal(t, lisp.LError, v.Type)
	assert.Equal(t, lisp.CondSyntaxError, v.Str)
}

func TestEnvGetPut(t *testing.T) {
	env := rasptest.NewEnv(t, nil)
	child := lisp.NewEnv(env)

	lerr := env.Put(lisp.Symbol("x"), lisp.Int(1))
	require.Equal(t, lisp.LNil, lerr.Type)
	lerr = child.Put(lisp.Symbol("x"), lisp.Int(2))
	require.Equal(t, lisp.LNil, lerr.Type)
	assert.Equal(t, "2", child.Get(lisp.Symbol("x")).String())
	assert.Equal(t, "1", env.Get(lisp.Symbol("x")).String())

	assert.Equal(t, "true", child.Get(lisp.Symbol("true")).String())
	assert.Equal(t, "nil", child.Get(lisp.Symbol("nil")).String())
	assert.Equal(t, ":k", child.Get(lisp.Symbol(":k")).String())

	v := child.Get(lisp.Symbol("y"))
	assert.True(t, v.IsError(lisp.CondUnboundSymbol))

	for _, name := range []string{"nil", "true", "false", ":k"} {
		lerr := env.Put(lisp.Symbol(name), lisp.Int(1))
		assert.True(t, lerr.IsError(lisp.CondTypeError), "%s: %v", name, lerr)
	}
	lerr = env.Put(lisp.Int(1), lisp.Int(1))
	assert.True(t, lerr.IsError(lisp.CondTypeError))
}

func TestEnvNames(t *testing.T) {
	env := rasptest.NewEnv(t, nil)
	names := env.Names()
	for _, name := range []string{"set", "let", "if", "defun", "defmacro", "progn", "quote", "+", "append", "list"} {
		assert.Contains(t, names, name)
	}
	child := lisp.NewEnv(env)
	child.Put(lisp.Symbol("zzz"), lisp.Int(1))
	assert.Contains(t, child.Names(), "zzz")
	assert.NotContains(t, env.Names(), "zzz")
	assert.Same(t, env, child.Root())
}

func TestEnvIDs(t *testing.T) {
	env := rasptest.NewEnv(t, nil)
	a := lisp.NewEnv(env)
	b := lisp.NewEnv(a)
	assert.NotEqual(t, env.ID, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Same(t, env.Runtime, b.Runtime)
}

func TestRootEnvsIndependent(t *testing.T) {
	answer := rasputil.Function("answer", func(env *lisp.LEnv, args *lisp.LVal) *lisp.LVal {
		return lisp.Int(42)
	})
	withAnswer := rasptest.NewEnv(t, nil, rasputil.WithBuiltins(answer))
	plain := rasptest.NewEnv(t, nil)

	assert.Equal(t, "42", withAnswer.LoadString("test", "(answer)").String())
	v := plain.LoadString("test", "(answer)")
	assert.True(t, v.IsError(lisp.CondUnboundSymbol), "%v", v)
	assert.Len(t, plain.Runtime.Natives(), len(lisp.DefaultSpecialOps())+len(lisp.DefaultBuiltins()))
	assert.Len(t, withAnswer.Runtime.Natives(), len(plain.Runtime.Natives())+1)

	// rebinding a native in one environment leaves other runtimes untouched
	withAnswer.LoadString("test", "(set car cdr)")
	assert.Equal(t, "1", plain.LoadString("test", "(car '(1 2))").String())
}

func TestEnvLoadFile(t *testing.T) {
	env := rasptest.NewEnv(t, nil)
	v := env.LoadFile(filepath.Join("testdata", "does-not-exist.lisp"))
	assert.True(t, v.IsError(lisp.CondIOError), "%v", v)

	v = env.LoadFile(filepath.Join("testdata", "closures.lisp"))
	require.NotEqual(t, lisp.LError, v.Type, "%v", v)
	assert.Equal(t, "(3 13)", v.String())
}

func BenchmarkEnvGet(b *testing.B) {
	rasptest.RunBenchmark(b, `
	  (defun loop (n)
	    (if (= n 0)
	      nil
	      (let ((a0 0))
	      (let ((a1 1))
	      (let ((a2 2))
	      (let ((a3 3))
	      (let ((a4 4))
	        (+ a0 a1 a2 a3 a4)
	        (loop (- n 1))))))))))
	  (loop 1000)
	`)
}

func BenchmarkEnvFunCallBuiltin(b *testing.B) {
	rasptest.RunBenchmark(b, `
	  (defun loop (n)
	    (if (= n 0)
	      nil
	      (+ 0 1 2 3 4 5 6 7 8 9)
	      (loop (- n 1))))
	  (loop 1000)
	`)
}

func BenchmarkEnvFunCallLambda(b *testing.B) {
	rasptest.RunBenchmark(b, `
	  (defun add (a (b 0) :c) (+ a b c))
	  (defun loop (n)
	    (if (= n 0)
	      nil
	      (add 1 2 :c 3)
	      (loop (- n 1))))
	  (loop 1000)
	`)
}
