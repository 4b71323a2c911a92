// Copyright © 2018 The ELPS authors

package lisp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iBelieve/rasp/parser/token"
	"github.com/sirupsen/logrus"
)

// LEnv is a lisp environment.
type LEnv struct {
	Loc     *token.Location
	Scope   map[string]*LVal
	Parent  *LEnv
	Runtime *Runtime
	ID      uint
}

// NewRootEnv constructs a runtime and a root environment containing the
// special operators and the native function library.  Each call builds a
// fresh dispatch table.  Configs are applied in order after the library is
// installed and the first error returned by a Config is returned.
func NewRootEnv(config ...Config) (*LEnv, *LVal) {
	env := NewEnvRuntime(StandardRuntime())
	env.AddSpecialOps()
	env.AddBuiltins()
	for _, fn := range config {
		lerr := fn(env)
		if lerr.Type == LError {
			return nil, lerr
		}
	}
	env.Runtime.logger().WithFields(logrus.Fields{
		"env":     env.ID,
		"natives": len(env.Runtime.natives),
	}).Debug("root environment initialized")
	return env, Nil()
}

// NewEnvRuntime initializes a new LEnv, like NewEnv, but it explicitly
// specifies the runtime to use.  NewEnvRuntime is only suitable for creating
// root LEnv object, so it does not take a parent argument.  When rt is nil
// StandardRuntime() called to create a new Runtime for the returned LEnv.  It
// is an error to use the same runtime object in multiple calls to
// NewEnvRuntime if the two envs are not in the same tree and doing so will
// have unspecified results.
func NewEnvRuntime(rt *Runtime) *LEnv {
	if rt == nil {
		rt = StandardRuntime()
	}
	return &LEnv{
		ID:      rt.GenEnvID(),
		Loc:     nativeSource(),
		Scope:   make(map[string]*LVal),
		Runtime: rt,
	}
}

// NewEnv returns initializes and returns a new LEnv.
func NewEnv(parent *LEnv) *LEnv {
	return newEnvN(parent, 0)
}

// newEnvN creates a child LEnv with its Scope map pre-sized to hold n
// bindings.
func newEnvN(parent *LEnv, n int) *LEnv {
	if parent == nil {
		return NewEnvRuntime(nil)
	}
	return &LEnv{
		ID:      parent.Runtime.GenEnvID(),
		Loc:     parent.Loc,
		Scope:   make(map[string]*LVal, n),
		Parent:  parent,
		Runtime: parent.Runtime,
	}
}

// Root returns the environment at the top of env's parent chain.
func (env *LEnv) Root() *LEnv {
	for env.Parent != nil {
		env = env.Parent
	}
	return env
}

// Get takes an LSymbol k and returns the LVal it is bound to in env or the
// nearest ancestor binding it.  Reserved literals and keywords are resolved
// before bindings are consulted.  If k is not bound an unbound-symbol error is
// returned.
func (env *LEnv) Get(k *LVal) *LVal {
	if k.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "key is not a symbol: %v", k.Type)
	}
	switch k.Str {
	case NilSymbol:
		return Nil()
	case TrueSymbol:
		return Bool(true)
	case FalseSymbol:
		return Bool(false)
	}
	if isKeyword(k.Str) {
		return k
	}
	v, ok := env.lookup(k.Str)
	if !ok {
		lerr := env.ErrorConditionf(CondUnboundSymbol, "unbound symbol: %v", k.Str)
		if k.Source != nil && k.Source.Pos >= 0 {
			lerr.Source = k.Source
		}
		return lerr
	}
	return v
}

func (env *LEnv) lookup(name string) (*LVal, bool) {
	for e := env; e != nil; e = e.Parent {
		if v, ok := e.Scope[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Put takes an LSymbol k and binds it to v in env.  Bindings in ancestor
// environments are shadowed, never modified.  Reserved literals and keywords
// cannot be bound.
func (env *LEnv) Put(k, v *LVal) *LVal {
	if k.Type != LSymbol {
		return env.ErrorConditionf(CondTypeError, "key is not a symbol: %v", k.Type)
	}
	if isReserved(k.Str) {
		return env.ErrorConditionf(CondTypeError, "cannot bind reserved symbol: %v", k.Str)
	}
	if isKeyword(k.Str) {
		return env.ErrorConditionf(CondTypeError, "cannot bind keyword: %v", k.Str)
	}
	env.put(k.Str, v)
	return Nil()
}

func (env *LEnv) put(name string, v *LVal) {
	env.Scope[name] = v
}

// Names returns the sorted set of names bound in env and its ancestors.
func (env *LEnv) Names() []string {
	seen := make(map[string]bool)
	for e := env; e != nil; e = e.Parent {
		for name := range e.Scope {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Read parses text with the runtime Reader.  Zero forms read as nil, a
// single form is returned as is, and multiple forms are wrapped in a progn.
func (env *LEnv) Read(name, text string) *LVal {
	exprs, lerr := env.read(name, strings.NewReader(text))
	if lerr != nil {
		return lerr
	}
	switch len(exprs) {
	case 0:
		return Nil()
	case 1:
		return exprs[0]
	}
	progn := ListTail(exprs, Nil())
	progn = Cons(Symbol("progn"), progn)
	progn.Source = exprs[0].Source
	return progn
}

func (env *LEnv) read(name string, r io.Reader) ([]*LVal, *LVal) {
	if env.Runtime.Reader == nil {
		return nil, env.Errorf("no reader for environment runtime")
	}
	exprs, err := env.Runtime.Reader.Read(name, r)
	if err != nil {
		var lerr *ErrorVal
		if errors.As(err, &lerr) {
			return nil, (*LVal)(lerr)
		}
		return nil, env.ErrorCondition(CondSyntaxError, err)
	}
	return exprs, nil
}

// LoadString reads exprs and evaluates the forms it contains.
func (env *LEnv) LoadString(name, exprs string) *LVal {
	return env.Load(name, strings.NewReader(exprs))
}

// LoadFile reads the file at path and evaluates the forms it contains.
func (env *LEnv) LoadFile(path string) *LVal {
	f, err := os.Open(path) //#nosec G304
	if err != nil {
		return env.ErrorCondition(CondIOError, err)
	}
	defer f.Close() //nolint:errcheck
	return env.Load(path, f)
}

// Load reads LVals from r and evaluates them as if in a progn.  The value
// returned by the last evaluated LVal will be retured.  Any error encountered
// stops evaluation and is returned.  If env.Runtime.Reader has not been set
// then an error will be returned by Load.
func (env *LEnv) Load(name string, r io.Reader) *LVal {
	log := env.Runtime.logger().WithField("source", name)
	exprs, lerr := env.read(name, r)
	if lerr != nil {
		log.WithError(GoError(lerr)).Debug("read failed")
		return lerr
	}
	log.WithField("forms", len(exprs)).Debug("loading source")
	ret := env.load(exprs)
	if ret.Type == LError {
		log.WithField("condition", ret.Str).Debug("evaluation failed")
	}
	return ret
}

func (env *LEnv) load(exprs []*LVal) *LVal {
	ret := Nil()
	for _, expr := range exprs {
		ret = env.Eval(expr)
		if ret.Type == LError {
			return ret
		}
	}
	return ret
}

// Error returns an LError value with an error message given by rendering msg.
//
// Error may be called either with an error or with any number of *LVal
// values.  It is invalid to pass Error an error argument with any other values
// and doing so will result in a runtime panic.
//
// Unlike the exported function, the Error method returns an LVal with a copy
// env.Runtime.Stack.
func (env *LEnv) Error(msg ...interface{}) *LVal {
	return env.ErrorCondition(CondError, msg...)
}

// ErrorCondition returns an LError the given condition type and an error
// message computed by rendering msg.
//
// ErrorCondition may be called either with an error or with any number of
// *LVal values.  It is invalid to pass ErrorCondition an error argument with
// any other values and doing so will result in a runtime panic.
//
// Unlike the exported function, the ErrorCondition method returns an LVal with
// a copy env.Runtime.Stack.
func (env *LEnv) ErrorCondition(condition string, v ...interface{}) *LVal {
	narg := len(v)
	cells := make([]*LVal, 0, len(v))
	for _, v := range v {
		switch v := v.(type) {
		case *LVal:
			cells = append(cells, v)
		case error:
			if narg > 1 {
				panic("invalid error argument")
			}
			cells = append(cells, String(v.Error()))
		case string:
			cells = append(cells, String(v))
		default:
			cells = append(cells, String(fmt.Sprint(v)))
		}
	}
	return &LVal{
		Source: env.Loc,
		Type:   LError,
		Str:    condition,
		Native: env.Runtime.Stack.Copy(),
		Cells:  cells,
	}
}

// Errorf returns an LError value with a formatted error message.
//
// Unlike the exported function, the Errorf method returns an LVal with a copy
// env.Runtime.Stack.
func (env *LEnv) Errorf(format string, v ...interface{}) *LVal {
	return env.ErrorConditionf(CondError, format, v...)
}

// ErrorConditionf returns an LError value with the given condition type and a
// a formatted error message rendered using fmt.Sprintf.
//
// Unlike the exported function, the ErrorConditionf method returns an LVal
// with a copy env.Runtime.Stack.
func (env *LEnv) ErrorConditionf(condition string, format string, v ...interface{}) *LVal {
	return &LVal{
		Source: env.Loc,
		Type:   LError,
		Str:    condition,
		Native: env.Runtime.Stack.Copy(),
		Cells:  []*LVal{String(fmt.Sprintf(format, v...))},
	}
}

// ErrorAssociate associates the LError value lerr with env's current call
// stack and source location.  ErrorAssociate panics if lerr is not LError.
func (env *LEnv) ErrorAssociate(lerr *LVal) {
	if lerr.Type != LError {
		panic("not an error: " + lerr.Type.String())
	}
	if lerr.CallStack() == nil {
		lerr.SetCallStack(env.Runtime.Stack.Copy())
	}
	// All objects are given a source which may be a nativeSource() value
	// with an invalid position (-1).  The env's current location is at least
	// as accurate.
	if lerr.Source == nil || lerr.Source.Pos < 0 {
		lerr.Source = env.Loc
	}
}
