// Copyright © 2018 The ELPS authors

package profiler

import (
	"regexp"

	"github.com/iBelieve/rasp/lisp"
)

// SkipFilter returns true for callables which should not be traced.
type SkipFilter func(fun *lisp.LVal) bool

func defaultSkipFilter(fun *lisp.LVal) bool {
	switch fun.Type {
	case lisp.LFun, lisp.LMacro, lisp.LNativeFun:
		return false
	default:
		// special operators appear in nearly every expression and would
		// drown out calls in the trace
		return true
	}
}

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}

// WithUserFilter restricts tracing to functions and macros defined by the
// program, skipping calls to natives.
func WithUserFilter() Option {
	return WithSkipFilter(func(fun *lisp.LVal) bool {
		return fun.Type == lisp.LNativeFun
	})
}

// WithNameFilter restricts tracing to callables whose name matches re.
func WithNameFilter(re *regexp.Regexp) Option {
	return WithSkipFilter(func(fun *lisp.LVal) bool {
		return !re.MatchString(defaultFunName(fun))
	})
}
