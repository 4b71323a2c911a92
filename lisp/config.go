// Copyright © 2018 The ELPS authors

package lisp

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Config is a function that configures a root environment or its runtime.
type Config func(env *LEnv) *LVal

// WithMaximumStackHeight returns a Config that will prevent an execution
// environment from allowing the call stack height to exceed n.  A value of 0
// means unlimited.
func WithMaximumStackHeight(n int) Config {
	return func(env *LEnv) *LVal {
		if n < 0 {
			return env.Errorf("negative maximum stack height: %d", n)
		}
		env.Runtime.Stack.MaxHeight = n
		return Nil()
	}
}

// WithReader returns a Config that makes environments use r to parse source
// streams.  There is no default Reader for an environment.
func WithReader(r Reader) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Reader = r
		return Nil()
	}
}

// WithStdout returns a Config that makes environments write program output
// to w instead of the default, os.Stdout.
func WithStdout(w io.Writer) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stdout = w
		return Nil()
	}
}

// WithStderr returns a Config that makes environments write debugging output
// to w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Stderr = w
		return Nil()
	}
}

// WithLogger returns a Config that makes the runtime log through logger.
func WithLogger(logger *logrus.Logger) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Logger = logger
		return Nil()
	}
}

// WithProfiler returns a Config that attaches p to the runtime.  The profiler
// is enabled if it is not already.
func WithProfiler(p Profiler) Config {
	return func(env *LEnv) *LVal {
		env.Runtime.Profiler = p
		if !p.IsEnabled() {
			if err := p.Enable(); err != nil {
				return env.Error(err)
			}
		}
		return Nil()
	}
}
