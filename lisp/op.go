// Copyright © 2018 The ELPS authors

package lisp

var langSpecialOps = []*langBuiltin{
	{"set", Formals("...pairs"), opSet,
		`Binds each symbol to the value of the expression following it.
		Expressions are evaluated in order in the current scope and the
		bindings are made in that same scope, so later expressions observe
		earlier bindings. Requires an even number of arguments. Returns
		nil.`},
	{"let", Formals("bindings", "...body"), opLet,
		`Creates local variable bindings and evaluates the body in the new
		scope. Each binding is either a symbol, bound to nil, or a
		(symbol value) pair. All value expressions are evaluated in the
		enclosing scope before any bindings are established. Returns the
		last body value or nil.`},
	{"if", Formals("condition", "then", "...else"), opIf,
		`Conditional branch. The condition must evaluate to a bool. When it
		is true the then form is evaluated and returned. Otherwise the
		remaining forms are evaluated in order and the last value, or nil,
		is returned.`},
	{"defun", Formals("name", "params", "...body"), opDefun,
		`Defines a function bound to name in the current scope. The
		function closes over the current scope. Params is a parameter
		specification: required names, then (name default) optional
		parameters, then at most one ...rest parameter, then :keyword
		parameters which may also have defaults. Returns nil.`},
	{"defmacro", Formals("name", "params", "...body"), opDefmacro,
		`Defines a macro bound to name in the current scope. A macro is
		called like a function but receives its argument forms
		unevaluated, binding them with the same parameter rules as defun.
		The body decides what to evaluate. Returns nil.`},
	{"progn", Formals("...body"), opProgn,
		`Evaluates its body forms sequentially and returns the value of
		the last form. Returns nil if no forms are given.`},
	{"quote", Formals("expr"), opQuote,
		`Returns its argument unevaluated. This is the operator behind
		the ' prefix syntax.`},
	{"eval", Formals("expr"), opEval,
		`Evaluates expr in the current scope and then evaluates the
		resulting value in the current scope. Macros use eval to evaluate
		the argument forms they receive.`},
}

// DefaultSpecialOps returns the special operators added to LEnv objects when
// LEnv.AddSpecialOps is called without arguments.
func DefaultSpecialOps() []LBuiltinDef {
	ops := make([]LBuiltinDef, len(langSpecialOps))
	for i := range langSpecialOps {
		ops[i] = langSpecialOps[i]
	}
	return ops
}

func opSet(env *LEnv, args *LVal) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if len(cells)%2 != 0 {
		return env.ErrorConditionf(CondArityError, "set requires symbol/value pairs: %d arguments", len(cells))
	}
	for i := 0; i < len(cells); i += 2 {
		if cells[i].Type != LSymbol {
			return env.ErrorConditionf(CondTypeError, "set target is not a symbol: %v", cells[i])
		}
		v := env.Eval(cells[i+1])
		if v.Type == LError {
			return v
		}
		lerr := env.Put(cells[i], v)
		if lerr.Type == LError {
			return lerr
		}
	}
	return Nil()
}

func opLet(env *LEnv, args *LVal) *LVal {
	if args.Type != LCons {
		return env.ErrorConditionf(CondArityError, "let requires a binding list")
	}
	bindings, lerr := ListCells(args.Cells[0])
	if lerr != nil {
		return lerr
	}
	child := newEnvN(env, len(bindings))
	for _, b := range bindings {
		sym, init := b, Nil()
		if b.Type == LCons {
			pair, lerr := ListCells(b)
			if lerr != nil || len(pair) > 2 {
				return env.ErrorConditionf(CondArityError, "let binding is not a (symbol value) pair: %v", b)
			}
			sym = pair[0]
			if len(pair) == 2 {
				init = env.Eval(pair[1])
				if init.Type == LError {
					return init
				}
			}
		}
		if sym.Type != LSymbol {
			return env.ErrorConditionf(CondTypeError, "let binding is not a symbol: %v", sym)
		}
		lerr := child.Put(sym, init)
		if lerr.Type == LError {
			return lerr
		}
	}
	return child.progn(args.Cells[1])
}

func opIf(env *LEnv, args *LVal) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if len(cells) < 2 {
		return env.ErrorConditionf(CondArityError, "if requires a condition and a then form")
	}
	c := env.Eval(cells[0])
	if c.Type == LError {
		return c
	}
	if c.Type != LBool {
		return env.ErrorConditionf(CondTypeError, "if condition is not a bool: %v", c)
	}
	if c.Bool {
		return env.Eval(cells[1])
	}
	return env.progn(List(cells[2:]...))
}

func opDefun(env *LEnv, args *LVal) *LVal {
	return env.defineLambda(LFun, args)
}

func opDefmacro(env *LEnv, args *LVal) *LVal {
	return env.defineLambda(LMacro, args)
}

func (env *LEnv) defineLambda(typ LType, args *LVal) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if len(cells) < 2 {
		return env.ErrorConditionf(CondArityError, "definition requires a name and a parameter list")
	}
	name := cells[0]
	if name.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "definition name is not a symbol: %v", name)
	}
	params, lerr := ParseParams(cells[1])
	if lerr != nil {
		env.ErrorAssociate(lerr)
		return lerr
	}
	body := Cons(Symbol("progn"), List(cells[2:]...))
	var fun *LVal
	if typ == LMacro {
		fun = Macro(name.Str, params, body, env)
	} else {
		fun = Fun(name.Str, params, body, env)
	}
	fun.Source = env.Loc
	return env.Put(name, fun)
}

func opProgn(env *LEnv, args *LVal) *LVal {
	return env.progn(args)
}

func opQuote(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ErrorConditionf(CondArityError, "quote requires exactly one argument")
	}
	return args.Cells[0]
}

func opEval(env *LEnv, args *LVal) *LVal {
	if args.Len() != 1 {
		return env.ErrorConditionf(CondArityError, "eval requires exactly one argument")
	}
	v := env.Eval(args.Cells[0])
	if v.Type == LError {
		return v
	}
	return env.Eval(v)
}
