// Copyright © 2018 The ELPS authors

// Package profiler implements lisp.Profiler backends which record the calls
// made by a lisp program as trace spans or as a callgrind profile.
package profiler

import (
	"fmt"

	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/parser/token"
)

// profiler is a minimal lisp.Profiler
type profiler struct {
	runtime    *lisp.Runtime
	enabled    bool
	skipFilter SkipFilter
	funLabeler FunLabeler
}

var _ lisp.Profiler = &profiler{}

func (p *profiler) IsEnabled() bool {
	return p.enabled
}

type Option func(*profiler)

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) Enable() error {
	if p.enabled {
		return fmt.Errorf("profiler already enabled")
	}
	p.enabled = true
	return nil
}

func (p *profiler) Complete() error {
	return nil
}

func (p *profiler) Start(fun *lisp.LVal) func() {
	return func() {}
}

// defaultFunName returns the name a callable was defined with.  Anonymous
// functions are named "lambda".
func defaultFunName(fun *lisp.LVal) string {
	if !fun.IsCallable() {
		return ""
	}
	if fun.Str == "" {
		return "lambda"
	}
	return fun.Str
}

// prettyFunName returns a pretty name and original name for a fun. If there is
// no pretty name, then the pretty name is the original name.
func (p *profiler) prettyFunName(fun *lisp.LVal) (string, string) {
	origLabel := defaultFunName(fun)
	if origLabel == "" {
		return "", ""
	}
	prettyLabel := origLabel
	if p.funLabeler != nil {
		prettyLabel = p.funLabeler(p.runtime, fun)
	}
	if prettyLabel == "" {
		prettyLabel = origLabel
	}
	return prettyLabel, origLabel
}

// skipTrace is a helper function to decide whether to skip tracing.
func (p *profiler) skipTrace(v *lisp.LVal) bool {
	return !p.enabled || defaultSkipFilter(v) || p.skipFilter != nil && p.skipFilter(v)
}

// getSourceLoc returns the location where fun was defined, or nil for
// natives.
func getSourceLoc(fun *lisp.LVal) *token.Location {
	if fun.Source == nil || fun.Source.Pos < 0 {
		return nil
	}
	return fun.Source
}
