// Copyright © 2018 The ELPS authors

package profiler

import (
	"context"
	"errors"

	"github.com/golang-collections/collections/stack"
	"github.com/iBelieve/rasp/lisp"
	"go.opencensus.io/trace"
)

var _ lisp.Profiler = &ocAnnotator{}

type ocAnnotator struct {
	profiler
	currentContext context.Context
	currentSpan    *trace.Span
	contexts       *stack.Stack
}

// NewOpenCensusAnnotator returns a profiler which records an OpenCensus span
// for each traced call as a child of the span in parentContext.
func NewOpenCensusAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) lisp.Profiler {
	p := &ocAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		currentContext: parentContext,
		contexts:       stack.New(),
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *ocAnnotator) Enable() error {
	p.runtime.Profiler = p
	if p.currentContext == nil {
		return errors.New("we can only append spans to a context that is linked to opencensus")
	}
	return p.profiler.Enable()
}

func (p *ocAnnotator) Complete() error {
	for p.contexts.Len() > 0 {
		p.pop()
	}
	return nil
}

func (p *ocAnnotator) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	prettyLabel, funName := p.prettyFunName(fun)
	p.contexts.Push(p.currentContext)
	p.currentContext, p.currentSpan = trace.StartSpan(p.currentContext, prettyLabel)
	attrs := []trace.Attribute{
		trace.StringAttribute("code.function", funName),
		trace.StringAttribute("code.namespace", fun.Type.String()),
	}
	if loc := getSourceLoc(fun); loc != nil {
		attrs = append(attrs,
			trace.StringAttribute("code.filepath", loc.File),
			trace.Int64Attribute("code.lineno", int64(loc.Line)),
		)
	}
	p.currentSpan.AddAttributes(attrs...)
	return p.pop
}

func (p *ocAnnotator) pop() {
	if p.currentSpan != nil {
		p.currentSpan.End()
	}
	// And pop the current context back
	p.currentContext = p.contexts.Pop().(context.Context)
	p.currentSpan = trace.FromContext(p.currentContext)
}
