// Copyright © 2018 The ELPS authors

package lisp

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// ErrorVal implements the error interface so that errors can be first class lisp
// objects.  The condition name is stored in the Str field and the message in
// the Cells slice.  The call stack at the time of the error is stored in the
// Native field.
type ErrorVal LVal

// GoError returns an error that represents lerr.  GoError panics if lerr is
// not an LError.
func GoError(lerr *LVal) error {
	if lerr.Type != LError {
		panic("not an error: " + lerr.Type.String())
	}
	return (*ErrorVal)(lerr)
}

// Error implements the error interface.  When the error condition is not
// “error” it wil be printed preceding the error message.  Otherwise, the
// name of the function that generated the error will be printed preceding the
// error, if the function can be determined.
func (e *ErrorVal) Error() string {
	if e.Source != nil && e.Source.Pos >= 0 {
		return fmt.Sprintf("%s: %s", e.Source, e.baseMessage())
	}
	return e.baseMessage()
}

func (e *ErrorVal) baseMessage() string {
	msg := e.ErrorMessage()
	if e.Str != CondError {
		return fmt.Sprintf("%s: %s", e.Str, msg)
	}
	fname := e.FunName()
	if fname == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", fname, msg)
}

// Condition returns the error condition name (e.g., "arity-error").
func (e *ErrorVal) Condition() string {
	return e.Str
}

// FunName returns the name of the function on the top of the call stack when
// the error occurred.
func (e *ErrorVal) FunName() string {
	return (*LVal)(e).CallStack().Top().FunName()
}

// ErrorMessage returns the underlying message in the error.
func (e *ErrorVal) ErrorMessage() string {
	var buf bytes.Buffer
	for i, cell := range e.Cells {
		if i > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(cell.Display())
	}
	return buf.String()
}

// Stack returns the call stack captured when the error was created, or nil.
func (e *ErrorVal) Stack() *CallStack {
	return (*LVal)(e).CallStack()
}

// WriteTrace writes the error and a stack trace to w
func (e *ErrorVal) WriteTrace(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	var n int
	var err error
	wrote := func(_n int, _err error) bool {
		n += _n
		err = _err
		return err == nil
	}
	if !wrote(bw.WriteString(e.Error())) {
		return n, err
	}
	if !wrote(bw.WriteString("\n")) {
		return n, err
	}
	stack := e.Stack()
	if stack != nil && len(stack.Frames) > 0 {
		if !wrote(stack.DebugPrint(bw)) {
			return n, err
		}
	}
	return n, bw.Flush()
}

// CallStack returns the call stack attached to an LError value, or nil.
func (v *LVal) CallStack() *CallStack {
	if v.Type != LError {
		return nil
	}
	stack, _ := v.Native.(*CallStack)
	return stack
}

// SetCallStack attaches stack to the LError value v.
func (v *LVal) SetCallStack(stack *CallStack) {
	if v.Type != LError {
		panic("not an error: " + v.Type.String())
	}
	v.Native = stack
}

// IsError returns true if v is an LError with the given condition.  An empty
// condition matches any error.
func (v *LVal) IsError(condition string) bool {
	return v.Type == LError && (condition == "" || v.Str == condition)
}
