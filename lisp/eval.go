// Copyright © 2018 The ELPS authors

package lisp

import (
	"github.com/iBelieve/rasp/parser/token"
)

// DefaultMaxStackHeight is the call stack height limit of a StandardRuntime.
const DefaultMaxStackHeight = 10000

// Eval evaluates v in the context (scope) of env and returns the resulting
// LVal.  Eval does not modify v.
//
// Symbols resolve through env.Get.  A cons is a call: its head is evaluated
// to a callable and the remaining forms are passed to it according to the
// callable's type.  All other values evaluate to themselves.
func (env *LEnv) Eval(v *LVal) *LVal {
	switch v.Type {
	case LSymbol:
		return env.Get(v)
	case LCons:
		return env.evalCall(v)
	default:
		return v
	}
}

func (env *LEnv) evalCall(form *LVal) *LVal {
	loc := env.Loc
	if form.Source != nil && form.Source.Pos >= 0 {
		env.Loc = form.Source
	}
	defer func() { env.Loc = loc }()

	fun := env.Eval(form.Cells[0])
	if fun.Type == LError {
		return fun
	}
	return env.call(fun, form.Cells[1], form.Source, true)
}

// Call invokes fun with args.  When fun is a function args are bound without
// further evaluation.  When fun is a macro args are passed to it as forms.
func (env *LEnv) Call(fun *LVal, args *LVal) *LVal {
	return env.call(fun, args, env.Loc, false)
}

// call dispatches over the callable kinds.  When evalArgs is false args have
// already been evaluated by the caller.
func (env *LEnv) call(fun *LVal, args *LVal, src *token.Location, evalArgs bool) *LVal {
	switch fun.Type {
	case LNil:
		return env.ErrorConditionf(CondTypeError, "cannot call nil")
	case LNativeFun, LNativeMacro, LFun, LMacro:
	default:
		return env.ErrorConditionf(CondTypeError, "expected function: %v", fun)
	}
	if !args.IsProperList() {
		return env.ErrorConditionf(CondImproperList, "arguments are not a proper list: %v", args)
	}

	err := env.Runtime.Stack.Push(src, fun)
	if err != nil {
		return env.ErrorCondition(CondStackOverflow, err)
	}
	defer env.Runtime.Stack.Pop()

	if p := env.Runtime.Profiler; p != nil && p.IsEnabled() {
		end := p.Start(fun)
		defer end()
	}

	var ret *LVal
	switch fun.Type {
	case LNativeFun, LNativeMacro:
		ret = env.callNative(fun, args, evalArgs && fun.Type == LNativeFun)
	case LFun, LMacro:
		if evalArgs && fun.Lambda().EvalArgs {
			args = env.evalArgs(args)
			if args.Type == LError {
				return args
			}
		}
		ret = env.callLambda(fun.Lambda(), args)
	}
	if ret.Type == LError {
		env.ErrorAssociate(ret)
	}
	return ret
}

func (env *LEnv) callNative(fun *LVal, args *LVal, evalArgs bool) *LVal {
	def := env.Runtime.Native(fun.Int)
	if def == nil {
		return env.Errorf("unknown native dispatch id %d: %v", fun.Int, fun.Str)
	}
	if evalArgs {
		args = env.evalArgs(args)
		if args.Type == LError {
			return args
		}
	}
	return def.Eval(env, args)
}

// callLambda binds args in a fresh child of the closure's defining
// environment and evaluates the body there.
func (env *LEnv) callLambda(lam *Lambda, args *LVal) *LVal {
	child := NewEnv(lam.Env)
	child.Loc = env.Loc
	lerr := lam.Params.Apply(child, args)
	if lerr.Type == LError {
		return lerr
	}
	return child.progn(lam.Body.Cells[1])
}

// evalArgs evaluates each form in the proper list args from left to right and
// returns a list of the results.
func (env *LEnv) evalArgs(args *LVal) *LVal {
	var cells []*LVal
	for c := args; c.Type == LCons; c = c.Cells[1] {
		v := env.Eval(c.Cells[0])
		if v.Type == LError {
			return v
		}
		cells = append(cells, v)
	}
	return List(cells...)
}

// progn evaluates the proper list of forms in order and returns the value of
// the last one, or nil when there are no forms.
func (env *LEnv) progn(forms *LVal) *LVal {
	ret := Nil()
	for c := forms; c.Type == LCons; c = c.Cells[1] {
		ret = env.Eval(c.Cells[0])
		if ret.Type == LError {
			return ret
		}
	}
	return ret
}
