// Copyright © 2018 The ELPS authors

package diagnostic

import (
	"fmt"

	"github.com/iBelieve/rasp/lisp"
)

// FromError converts an LError value to a Diagnostic.  The condition of
// lerr becomes the diagnostic condition, or the failing function name for
// plain errors.  The call stack of lerr becomes the trace, innermost first.
func FromError(lerr *lisp.LVal) Diagnostic {
	if lerr.Type != lisp.LError {
		return Diagnostic{
			Severity: SeverityError,
			Message:  fmt.Sprintf("not an error: %v", lerr),
		}
	}
	ev := (*lisp.ErrorVal)(lerr)
	d := Diagnostic{
		Severity:  SeverityError,
		Condition: lerr.Str,
		Message:   ev.ErrorMessage(),
	}
	if lerr.Str == lisp.CondError {
		d.Condition = ev.FunName()
	}
	if span, ok := SpanAt(lerr.Source); ok {
		d.Spans = append(d.Spans, span)
	}
	stack := lerr.CallStack()
	if stack == nil {
		return d
	}
	for i := len(stack.Frames) - 1; i >= 0; i-- {
		frame := &stack.Frames[i]
		d.Trace = append(d.Trace, Frame{Name: frame.FunName(), Source: frame.Source})
	}
	return d
}
