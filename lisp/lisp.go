// Copyright © 2018 The ELPS authors

package lisp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/iBelieve/rasp/parser/token"
)

// LType is the type of an LVal
type LType uint

// Possible LType values
const (
	// LInvalid (0) is not a valid lisp type.
	LInvalid LType = iota
	// LFloat values store a float64 in the LVal.Float field.
	LFloat
	// LInt values store an int in the LVal.Int field.
	LInt
	// LBool values store their truth value in the LVal.Bool field.
	LBool
	// LString values store a string in the LVal.Str field.
	LString
	// LSymbol values store the symbol name in the LVal.Str field.  Symbols
	// beginning with a colon are keywords and evaluate to themselves.
	LSymbol
	// LCons values are pairs.  LVal.Cells[0] is the head and LVal.Cells[1]
	// is the tail.
	LCons
	// LNil is the empty list and the absent value.
	LNil
	// LNativeFun values store the function name in LVal.Str and a dispatch
	// id into the Runtime's native table in LVal.Int.  Arguments are
	// evaluated before the native implementation is invoked.
	LNativeFun
	// LNativeMacro values are laid out like LNativeFun but the native
	// implementation receives unevaluated argument forms.
	LNativeMacro
	// LFun values store a *Lambda in LVal.Native.
	LFun
	// LMacro values store a *Lambda in LVal.Native.  A macro is a fexpr, it
	// receives its arguments unevaluated at call time.
	LMacro
	// LError values use LVal.Str for the condition name and LVal.Cells for
	// error data.  LVal.Native holds a *CallStack copied when the error was
	// created.
	LError
	// LTypeMax is not a real type but represents a value numerically greater
	// than all valid LType values.
	LTypeMax
)

var lvalTypeStrings = []string{
	LInvalid:     "INVALID",
	LFloat:       "float",
	LInt:         "int",
	LBool:        "bool",
	LString:      "string",
	LSymbol:      "symbol",
	LCons:        "cons",
	LNil:         "nil",
	LNativeFun:   "native-function",
	LNativeMacro: "native-macro",
	LFun:         "function",
	LMacro:       "macro",
	LError:       "error",
}

func (t LType) String() string {
	if t >= LType(len(lvalTypeStrings)) {
		return lvalTypeStrings[LInvalid]
	}
	return lvalTypeStrings[t]
}

// Reserved symbols which always resolve to literal values.
const (
	NilSymbol   = "nil"
	TrueSymbol  = "true"
	FalseSymbol = "false"
)

// KeywordPrefix marks keyword symbols and keyword parameters.
const KeywordPrefix = ":"

// RestPrefix marks the rest parameter in a parameter specification.
const RestPrefix = "..."

// LVal is a lisp value
type LVal struct {
	// Native is generic storage for data which cannot be represented as an
	// LVal (and thus can't be stored in Cells).
	Native interface{}

	// Source is the value's originating location in source code.  Programs
	// should not modify the contents of Source as the reference may be shared
	// by multiple LVals.
	Source *token.Location

	// Str used by LSymbol, LString, native callables and LError values.
	Str string

	// Cells used by LCons and LError values.
	Cells []*LVal

	// Type is the native type for a value in lisp.
	Type LType

	// Fields used for numeric types.  Native callables keep their dispatch
	// id in Int.
	Int   int
	Float float64

	Bool bool
}

// Lambda is the closure record shared by user defined functions and macros.
// The two differ only in EvalArgs.
type Lambda struct {
	Name   string
	Params *Params
	Body   *LVal
	Env    *LEnv
	// EvalArgs is true for functions.  Macros receive argument forms
	// unevaluated.
	EvalArgs bool
}

// Singleton LVals for nil, true, and false.  Callers MUST NOT mutate them.
var (
	singletonNil   = &LVal{Source: nativeSource(), Type: LNil}
	singletonTrue  = &LVal{Source: nativeSource(), Type: LBool, Bool: true}
	singletonFalse = &LVal{Source: nativeSource(), Type: LBool, Bool: false}
)

// Nil returns an LVal representing nil, an empty list, an absent value.
//
// The returned value is a shared singleton.  Callers MUST NOT mutate it.
func Nil() *LVal {
	return singletonNil
}

// Bool returns the boolean LVal for b.
//
// The returned value is a shared singleton.  Callers MUST NOT mutate it.
func Bool(b bool) *LVal {
	if b {
		return singletonTrue
	}
	return singletonFalse
}

// Int returns an LVal representing the number x.
func Int(x int) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LInt,
		Int:    x,
	}
}

// Float returns an LVal representation of the number x
func Float(x float64) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LFloat,
		Float:  x,
	}
}

// String returns an LVal representing the string str.
func String(str string) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LString,
		Str:    str,
	}
}

// Symbol returns an LVal representing the symbol s
func Symbol(s string) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LSymbol,
		Str:    s,
	}
}

// Cons returns a pair with the given head and tail.
func Cons(head, tail *LVal) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LCons,
		Cells:  []*LVal{head, tail},
	}
}

// List returns a proper list containing cells.
func List(cells ...*LVal) *LVal {
	return ListTail(cells, Nil())
}

// ListTail returns a list of cells terminated by tail.  When tail is not nil
// the returned list is improper.
func ListTail(cells []*LVal, tail *LVal) *LVal {
	lis := tail
	for i := len(cells) - 1; i >= 0; i-- {
		lis = Cons(cells[i], lis)
	}
	return lis
}

// NativeFun returns a native function value which dispatches through id.
func NativeFun(name string, id int) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LNativeFun,
		Str:    name,
		Int:    id,
	}
}

// NativeMacro returns a native macro value which dispatches through id.
func NativeMacro(name string, id int) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LNativeMacro,
		Str:    name,
		Int:    id,
	}
}

// Fun returns a function closing over env.
func Fun(name string, params *Params, body *LVal, env *LEnv) *LVal {
	return closure(LFun, name, params, body, env)
}

// Macro returns a macro closing over env.
func Macro(name string, params *Params, body *LVal, env *LEnv) *LVal {
	return closure(LMacro, name, params, body, env)
}

func closure(typ LType, name string, params *Params, body *LVal, env *LEnv) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   typ,
		Str:    name,
		Native: &Lambda{
			Name:     name,
			Params:   params,
			Body:     body,
			Env:      env,
			EvalArgs: typ == LFun,
		},
	}
}

// Error returns an LError representing err.
//
// Errors generated during expression evaluation typically have a non-nil
// call stack.  The Env.Error() method is typically the preferred method for
// creating error LVal objects because it initializes the stack.
func Error(err error) *LVal {
	return ErrorCondition(CondError, err)
}

// ErrorCondition returns an LError representing err with the given
// condition type.
func ErrorCondition(condition string, err error) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LError,
		Str:    condition,
		Cells:  []*LVal{String(err.Error())},
	}
}

// Errorf returns an LError with a formatted error message.
func Errorf(format string, v ...interface{}) *LVal {
	return ErrorConditionf(CondError, format, v...)
}

// ErrorConditionf returns an LError with a formatted error message and the
// given condition type.
func ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LError,
		Str:    condition,
		Cells:  []*LVal{String(fmt.Sprintf(format, v...))},
	}
}

// Lambda returns the closure record of an LFun or LMacro.  Lambda panics if
// v is neither.
func (v *LVal) Lambda() *Lambda {
	if v.Type != LFun && v.Type != LMacro {
		panic("not a function: " + v.Type.String())
	}
	return v.Native.(*Lambda)
}

// Car returns the head of a cons.  Car panics if v is not LCons.
func (v *LVal) Car() *LVal {
	if v.Type != LCons {
		panic("not a cons: " + v.Type.String())
	}
	return v.Cells[0]
}

// Cdr returns the tail of a cons.  Cdr panics if v is not LCons.
func (v *LVal) Cdr() *LVal {
	if v.Type != LCons {
		panic("not a cons: " + v.Type.String())
	}
	return v.Cells[1]
}

// IsNil returns true if v represents a nil value.
func (v *LVal) IsNil() bool {
	return v.Type == LNil
}

// IsKeyword returns true if v is a keyword symbol.
func (v *LVal) IsKeyword() bool {
	return v.Type == LSymbol && isKeyword(v.Str)
}

// IsNumeric returns true if v has a primitive numeric type (int, float64).
func (v *LVal) IsNumeric() bool {
	return v.Type == LInt || v.Type == LFloat
}

// IsCallable returns true if v can appear at the head of a call.
func (v *LVal) IsCallable() bool {
	switch v.Type {
	case LNativeFun, LNativeMacro, LFun, LMacro:
		return true
	}
	return false
}

// IsProperList returns true if v is a chain of conses terminated by nil.
func (v *LVal) IsProperList() bool {
	for v.Type == LCons {
		v = v.Cells[1]
	}
	return v.Type == LNil
}

// ListCells returns the elements of the proper list v.  If v is an improper
// list an improper-list error is returned.
func ListCells(v *LVal) ([]*LVal, *LVal) {
	var cells []*LVal
	for c := v; ; c = c.Cells[1] {
		switch c.Type {
		case LNil:
			return cells, nil
		case LCons:
			cells = append(cells, c.Cells[0])
		default:
			return nil, ErrorConditionf(CondImproperList, "not a proper list: %v", v)
		}
	}
}

// Len returns the number of elements in the proper list v or -1 if v is not
// a proper list.
func (v *LVal) Len() int {
	n := 0
	for ; v.Type == LCons; v = v.Cells[1] {
		n++
	}
	if v.Type != LNil {
		return -1
	}
	return n
}

// Equal returns true if v and other are structurally equal.  Integers and
// floats compare numerically.
func (v *LVal) Equal(other *LVal) bool {
	if v.IsNumeric() && other.IsNumeric() {
		if v.Type == LInt && other.Type == LInt {
			return v.Int == other.Int
		}
		return toFloat(v) == toFloat(other)
	}
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case LNil:
		return true
	case LBool:
		return v.Bool == other.Bool
	case LString, LSymbol:
		return v.Str == other.Str
	case LCons:
		return v.Cells[0].Equal(other.Cells[0]) && v.Cells[1].Equal(other.Cells[1])
	case LNativeFun, LNativeMacro:
		return v.Int == other.Int
	case LFun, LMacro:
		return v.Native == other.Native
	}
	return v == other
}

// Copy creates a copy of the receiver.  Cons cells are copied deeply while
// closures keep sharing their Lambda.
func (v *LVal) Copy() *LVal {
	if v == nil {
		return nil
	}
	cp := &LVal{}
	*cp = *v
	if len(v.Cells) > 0 {
		cp.Cells = make([]*LVal, len(v.Cells))
		for i := range v.Cells {
			cp.Cells[i] = v.Cells[i].Copy()
		}
	}
	return cp
}

func (v *LVal) String() string {
	switch v.Type {
	case LInt:
		return strconv.Itoa(v.Int)
	case LFloat:
		return formatFloat(v.Float)
	case LBool:
		if v.Bool {
			return TrueSymbol
		}
		return FalseSymbol
	case LString:
		return quoteString(v.Str)
	case LSymbol:
		return v.Str
	case LNil:
		return NilSymbol
	case LCons:
		return consString(v)
	case LNativeFun:
		return fmt.Sprintf("#<native-function %s>", v.Str)
	case LNativeMacro:
		return fmt.Sprintf("#<native-macro %s>", v.Str)
	case LFun, LMacro:
		name := v.Lambda().Name
		if name == "" {
			return fmt.Sprintf("#<%s>", v.Type)
		}
		return fmt.Sprintf("#<%s %s>", v.Type, name)
	case LError:
		return GoError(v).Error()
	default:
		return fmt.Sprintf("#<%s %#v>", v.Type, v)
	}
}

// Display returns the text println writes for v.  Strings are written
// without quotes or escapes.
func (v *LVal) Display() string {
	if v.Type == LString {
		return v.Str
	}
	return v.String()
}

func consString(v *LVal) string {
	if v.Cells[0].Type == LSymbol && v.Cells[0].Str == "quote" {
		arg := v.Cells[1]
		if arg.Type == LCons && arg.Cells[1].Type == LNil {
			return "'" + arg.Cells[0].String()
		}
	}
	var buf bytes.Buffer
	buf.WriteString("(")
	for c := v; ; {
		buf.WriteString(c.Cells[0].String())
		c = c.Cells[1]
		if c.Type == LNil {
			break
		}
		if c.Type != LCons {
			buf.WriteString(" . ")
			buf.WriteString(c.String())
			break
		}
		buf.WriteString(" ")
	}
	buf.WriteString(")")
	return buf.String()
}

// NOTE:  The 'g' format renders 2.0 as 2 which would read back as an int.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEn") {
		return s
	}
	return s + ".0"
}

var stringEscapes = strings.NewReplacer(
	"\\", `\\`,
	"\"", `\"`,
	"\a", `\a`,
	"\b", `\b`,
	"\f", `\f`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\v", `\v`,
)

func quoteString(s string) string {
	return `"` + stringEscapes.Replace(s) + `"`
}

func isKeyword(sym string) bool {
	return strings.HasPrefix(sym, KeywordPrefix)
}

func isReserved(sym string) bool {
	switch sym {
	case NilSymbol, TrueSymbol, FalseSymbol:
		return true
	}
	return false
}

func toFloat(v *LVal) float64 {
	if v.Type == LInt {
		return float64(v.Int)
	}
	return v.Float
}

var defaultSourceLocation = &token.Location{
	File: "<native code>",
	Pos:  -1,
}

func nativeSource() *token.Location {
	return defaultSourceLocation
}
