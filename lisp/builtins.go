// Copyright © 2018 The ELPS authors

package lisp

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// LBuiltin is a function that performs executes a lisp function.
type LBuiltin func(env *LEnv, args *LVal) *LVal

// LBuiltinDef is a built-in function
type LBuiltinDef interface {
	Name() string
	Formals() *LVal
	Eval(env *LEnv, args *LVal) *LVal
}

// LBuiltinDoc is implemented by an LBuiltinDef which carries documentation.
type LBuiltinDoc interface {
	Docstring() string
}

type langBuiltin struct {
	name    string
	formals *LVal
	fun     LBuiltin
	docs    string
}

func (fun *langBuiltin) Name() string {
	return fun.name
}

func (fun *langBuiltin) Formals() *LVal {
	return fun.formals
}

func (fun *langBuiltin) Eval(env *LEnv, args *LVal) *LVal {
	return fun.fun(env, args)
}

func (fun *langBuiltin) Docstring() string {
	return fun.docs
}

// Formals returns a parameter specification listing the given symbols.
func Formals(argSymbols ...string) *LVal {
	cells := make([]*LVal, len(argSymbols))
	for i, sym := range argSymbols {
		cells[i] = Symbol(sym)
	}
	return List(cells...)
}

// Docstring returns the documentation of def with indentation removed, or an
// empty string if def is undocumented.
func Docstring(def LBuiltinDef) string {
	doc, ok := def.(LBuiltinDoc)
	if !ok {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(doc.Docstring()), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, " ")
}

var langBuiltins = []*langBuiltin{
	{"println", Formals("...values"), builtinPrintln,
		`Writes the values to standard output separated by spaces and
		followed by a newline. Strings are written without quotes.
		Returns nil.`},
	{"print", Formals("...values"), builtinPrint,
		`Writes the values to standard output separated by spaces.
		Strings are written without quotes. Returns nil.`},
	{"+", Formals("x", "...more"), builtinAdd,
		`Returns the sum of its arguments. The result is a float if any
		argument is a float.`},
	{"-", Formals("x", "...more"), builtinSub,
		`Subtracts the remaining arguments from the first. With a single
		argument returns its negation.`},
	{"*", Formals("x", "...more"), builtinMul,
		`Returns the product of its arguments. The result is a float if
		any argument is a float.`},
	{"/", Formals("x", "...more"), builtinDiv,
		`Divides the first argument by the remaining arguments. Integer
		division truncates and signals a type-error on division by zero.
		With a single argument returns its reciprocal.`},
	{"=", Formals("a", "b", "...more"), builtinEq,
		`Returns true if all arguments are structurally equal. Integers
		and floats compare numerically.`},
	{"<", Formals("a", "b", "...more"), builtinLT,
		`Returns true if the numeric arguments are strictly increasing.`},
	{">", Formals("a", "b", "...more"), builtinGT,
		`Returns true if the numeric arguments are strictly decreasing.`},
	{"<=", Formals("a", "b", "...more"), builtinLEq,
		`Returns true if the numeric arguments are non-decreasing.`},
	{">=", Formals("a", "b", "...more"), builtinGEq,
		`Returns true if the numeric arguments are non-increasing.`},
	{"list", Formals("...values"), builtinList,
		`Returns a new list containing the given values.`},
	{"append", Formals("...lists"), builtinAppend,
		`Concatenates lists. Every argument but the last must be a proper
		list and is copied. The last argument becomes the tail of the
		result and is not copied. Returns nil with no arguments.`},
	{"cons", Formals("head", "tail"), builtinCons,
		`Returns a new pair of head and tail. When tail is a list the
		result is that list with head prepended.`},
	{"car", Formals("lis"), builtinCar,
		`Returns the head of a pair, or nil for nil.`},
	{"cdr", Formals("lis"), builtinCdr,
		`Returns the tail of a pair, or nil for nil.`},
	{"length", Formals("seq"), builtinLength,
		`Returns the number of elements in a proper list or the number of
		bytes in a string.`},
	{"not", Formals("bool"), builtinNot,
		`Returns the boolean negation of its argument, which must be a
		bool.`},
	{"nil?", Formals("value"), builtinIsNil,
		`Returns true if value is nil, the empty list.`},
	{"apply", Formals("fun", "...args"), builtinApply,
		`Calls fun with the given arguments. The last argument must be a
		list and its elements are passed as individual arguments.
		Arguments are not evaluated again.`},
}

// DefaultBuiltins returns the native function library added to LEnv objects
// when LEnv.AddBuiltins is called without arguments.  Additional natives are
// installed per environment with AddBuiltins, typically through a Config.
func DefaultBuiltins() []LBuiltinDef {
	ops := make([]LBuiltinDef, len(langBuiltins))
	for i := range langBuiltins {
		ops[i] = langBuiltins[i]
	}
	return ops
}

// AddSpecialOps registers ops in the runtime dispatch table and binds each
// as a native macro in env.  When called without arguments
// DefaultSpecialOps() is used.
func (env *LEnv) AddSpecialOps(ops ...LBuiltinDef) {
	if len(ops) == 0 {
		ops = DefaultSpecialOps()
	}
	for _, op := range ops {
		id := env.Runtime.register(op)
		env.put(op.Name(), NativeMacro(op.Name(), id))
	}
}

// AddBuiltins registers funs in the runtime dispatch table and binds each as
// a native function in env.  When called without arguments DefaultBuiltins()
// is used.
func (env *LEnv) AddBuiltins(funs ...LBuiltinDef) {
	if len(funs) == 0 {
		funs = DefaultBuiltins()
	}
	for _, f := range funs {
		id := env.Runtime.register(f)
		env.put(f.Name(), NativeFun(f.Name(), id))
	}
}

func checkArity(env *LEnv, name string, cells []*LVal, min, max int) *LVal {
	if len(cells) < min {
		return env.ErrorConditionf(CondArityError, "%s: expected at least %d arguments, got %d", name, min, len(cells))
	}
	if max >= 0 && len(cells) > max {
		return env.ErrorConditionf(CondArityError, "%s: expected at most %d arguments, got %d", name, max, len(cells))
	}
	return nil
}

func builtinPrintln(env *LEnv, args *LVal) *LVal {
	return writeValues(env, args, "\n")
}

func builtinPrint(env *LEnv, args *LVal) *LVal {
	return writeValues(env, args, "")
}

func writeValues(env *LEnv, args *LVal, end string) *LVal {
	var buf bytes.Buffer
	for c := args; c.Type == LCons; c = c.Cells[1] {
		if c != args {
			buf.WriteString(" ")
		}
		buf.WriteString(c.Cells[0].Display())
	}
	buf.WriteString(end)
	_, err := io.Copy(env.Runtime.Stdout, &buf)
	if err != nil {
		return env.ErrorCondition(CondIOError, err)
	}
	return Nil()
}

type arithOp struct {
	name    string
	intOp   func(a, b int) (int, bool)
	floatOp func(a, b float64) float64
}

var (
	opAdd = &arithOp{"+",
		func(a, b int) (int, bool) { return a + b, true },
		func(a, b float64) float64 { return a + b }}
	opSub = &arithOp{"-",
		func(a, b int) (int, bool) { return a - b, true },
		func(a, b float64) float64 { return a - b }}
	opMul = &arithOp{"*",
		func(a, b int) (int, bool) { return a * b, true },
		func(a, b float64) float64 { return a * b }}
	opDiv = &arithOp{"/",
		func(a, b int) (int, bool) {
			if b == 0 {
				return 0, false
			}
			return a / b, true
		},
		func(a, b float64) float64 { return a / b }}
)

// fold applies op across the numeric arguments from left to right.  If unit is
// non-nil a single argument x is treated as (op unit x).
func (op *arithOp) fold(env *LEnv, args *LVal, unit *LVal) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if lerr := checkArity(env, op.name, cells, 1, -1); lerr != nil {
		return lerr
	}
	for _, v := range cells {
		if !v.IsNumeric() {
			return env.ErrorConditionf(CondTypeError, "%s: argument is not a number: %v", op.name, v)
		}
	}
	if len(cells) == 1 && unit != nil {
		cells = []*LVal{unit, cells[0]}
	}
	acc := cells[0]
	for _, v := range cells[1:] {
		if acc.Type == LInt && v.Type == LInt {
			x, ok := op.intOp(acc.Int, v.Int)
			if !ok {
				return env.ErrorConditionf(CondTypeError, "%s: integer division by zero", op.name)
			}
			acc = Int(x)
			continue
		}
		acc = Float(op.floatOp(toFloat(acc), toFloat(v)))
	}
	return acc
}

func builtinAdd(env *LEnv, args *LVal) *LVal {
	return opAdd.fold(env, args, nil)
}

func builtinSub(env *LEnv, args *LVal) *LVal {
	return opSub.fold(env, args, Int(0))
}

func builtinMul(env *LEnv, args *LVal) *LVal {
	return opMul.fold(env, args, nil)
}

func builtinDiv(env *LEnv, args *LVal) *LVal {
	return opDiv.fold(env, args, Int(1))
}

func builtinEq(env *LEnv, args *LVal) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if lerr := checkArity(env, "=", cells, 2, -1); lerr != nil {
		return lerr
	}
	for i := 1; i < len(cells); i++ {
		if !cells[i-1].Equal(cells[i]) {
			return Bool(false)
		}
	}
	return Bool(true)
}

func compareChain(env *LEnv, name string, args *LVal, ok func(a, b float64) bool) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if lerr := checkArity(env, name, cells, 2, -1); lerr != nil {
		return lerr
	}
	for _, v := range cells {
		if !v.IsNumeric() {
			return env.ErrorConditionf(CondTypeError, "%s: argument is not a number: %v", name, v)
		}
	}
	for i := 1; i < len(cells); i++ {
		a, b := cells[i-1], cells[i]
		if a.Type == LInt && b.Type == LInt {
			if !ok(float64(compareInt(a.Int, b.Int)), 0) {
				return Bool(false)
			}
			continue
		}
		if !ok(toFloat(a), toFloat(b)) {
			return Bool(false)
		}
	}
	return Bool(true)
}

// compareInt avoids precision loss converting large integers to float.
func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func builtinLT(env *LEnv, args *LVal) *LVal {
	return compareChain(env, "<", args, func(a, b float64) bool { return a < b })
}

func builtinGT(env *LEnv, args *LVal) *LVal {
	return compareChain(env, ">", args, func(a, b float64) bool { return a > b })
}

func builtinLEq(env *LEnv, args *LVal) *LVal {
	return compareChain(env, "<=", args, func(a, b float64) bool { return a <= b })
}

func builtinGEq(env *LEnv, args *LVal) *LVal {
	return compareChain(env, ">=", args, func(a, b float64) bool { return a >= b })
}

func builtinList(env *LEnv, args *LVal) *LVal {
	return args
}

func builtinAppend(env *LEnv, args *LVal) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if len(cells) == 0 {
		return Nil()
	}
	var elems []*LVal
	for _, lis := range cells[:len(cells)-1] {
		if lis.Type != LCons && lis.Type != LNil {
			return env.ErrorConditionf(CondTypeError, "append: argument is not a list: %v", lis)
		}
		more, lerr := ListCells(lis)
		if lerr != nil {
			env.ErrorAssociate(lerr)
			return lerr
		}
		elems = append(elems, more...)
	}
	return ListTail(elems, cells[len(cells)-1])
}

func builtinCons(env *LEnv, args *LVal) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if lerr := checkArity(env, "cons", cells, 2, 2); lerr != nil {
		return lerr
	}
	return Cons(cells[0], cells[1])
}

func builtinCar(env *LEnv, args *LVal) *LVal {
	return listPart(env, "car", args, 0)
}

func builtinCdr(env *LEnv, args *LVal) *LVal {
	return listPart(env, "cdr", args, 1)
}

func listPart(env *LEnv, name string, args *LVal, i int) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if lerr := checkArity(env, name, cells, 1, 1); lerr != nil {
		return lerr
	}
	switch lis := cells[0]; lis.Type {
	case LNil:
		return Nil()
	case LCons:
		return lis.Cells[i]
	default:
		return env.ErrorConditionf(CondTypeError, "%s: argument is not a list: %v", name, lis)
	}
}

func builtinLength(env *LEnv, args *LVal) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if lerr := checkArity(env, "length", cells, 1, 1); lerr != nil {
		return lerr
	}
	switch seq := cells[0]; seq.Type {
	case LString:
		return Int(len(seq.Str))
	case LNil, LCons:
		n := seq.Len()
		if n < 0 {
			return env.ErrorConditionf(CondImproperList, "length: not a proper list: %v", seq)
		}
		return Int(n)
	default:
		return env.ErrorConditionf(CondTypeError, "length: argument is not a sequence: %v", seq)
	}
}

func builtinNot(env *LEnv, args *LVal) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if lerr := checkArity(env, "not", cells, 1, 1); lerr != nil {
		return lerr
	}
	if cells[0].Type != LBool {
		return env.ErrorConditionf(CondTypeError, "not: argument is not a bool: %v", cells[0])
	}
	return Bool(!cells[0].Bool)
}

func builtinIsNil(env *LEnv, args *LVal) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if lerr := checkArity(env, "nil?", cells, 1, 1); lerr != nil {
		return lerr
	}
	return Bool(cells[0].IsNil())
}

func builtinApply(env *LEnv, args *LVal) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		return lerr
	}
	if lerr := checkArity(env, "apply", cells, 1, -1); lerr != nil {
		return lerr
	}
	fun := cells[0]
	if len(cells) == 1 {
		return env.Call(fun, Nil())
	}
	last := cells[len(cells)-1]
	if last.Type != LCons && last.Type != LNil {
		return env.ErrorConditionf(CondTypeError, "apply: last argument is not a list: %v", last)
	}
	if !last.IsProperList() {
		return env.ErrorConditionf(CondImproperList, "apply: last argument is not a proper list: %v", last)
	}
	return env.Call(fun, ListTail(cells[1:len(cells)-1], last))
}

// DocString returns the documentation for the native or special operator
// bound to name in the runtime, if there is one.
func (r *Runtime) DocString(name string) (string, bool) {
	for _, def := range r.natives {
		if def.Name() == name {
			return fmt.Sprintf("%s\n\n%s", FormalsString(def), Docstring(def)), true
		}
	}
	return "", false
}

// FormalsString renders the call signature of def, e.g. "(cons head tail)".
func FormalsString(def LBuiltinDef) string {
	cells, _ := ListCells(def.Formals())
	parts := []string{def.Name()}
	for _, c := range cells {
		parts = append(parts, c.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}
