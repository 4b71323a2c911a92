// Copyright © 2018 The ELPS authors

// Package rasputil helps Go programs embedding rasp define native functions.
package rasputil

import (
	"github.com/iBelieve/rasp/lisp"
)

// Function is a helper to construct builtins.  Formals are given as symbol
// names, e.g. Function("greet", fn, "name", "...more").
func Function(name string, fun lisp.LBuiltin, formals ...string) *Builtin {
	return &Builtin{
		name:    name,
		formals: lisp.Formals(formals...),
		fun:     fun,
	}
}

// Builtin captures Go functions that are callable from rasp.
type Builtin struct {
	name    string
	formals *lisp.LVal
	fun     lisp.LBuiltin
	doc     string
}

var _ lisp.LBuiltinDoc = (*Builtin)(nil)

// WithDoc sets the documentation shown by rasp doc and editor hovers.
func (fun *Builtin) WithDoc(doc string) *Builtin {
	fun.doc = doc
	return fun
}

// Name returns the name of a function.
func (fun *Builtin) Name() string {
	return fun.name
}

// Formals returns the formal arguments of a function.
func (fun *Builtin) Formals() *lisp.LVal {
	return fun.formals
}

// Docstring returns the function documentation.
func (fun *Builtin) Docstring() string {
	return fun.doc
}

// Eval evaluates a function on an environment.
func (fun *Builtin) Eval(env *lisp.LEnv, args *lisp.LVal) *lisp.LVal {
	return fun.fun(env, args)
}

// WithBuiltins returns a lisp.Config which binds funs in the root
// environment.
func WithBuiltins(funs ...*Builtin) lisp.Config {
	return func(env *lisp.LEnv) *lisp.LVal {
		defs := make([]lisp.LBuiltinDef, len(funs))
		for i, f := range funs {
			defs[i] = f
		}
		env.AddBuiltins(defs...)
		return lisp.Nil()
	}
}
