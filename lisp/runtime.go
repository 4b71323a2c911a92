// Copyright © 2018 The ELPS authors

package lisp

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Runtime is an object underlying a family of tree of LEnv values.  It is
// responsible for holding shared environment state, generating identifiers,
// dispatching native callables, and writing program output.
type Runtime struct {
	Stdout   io.Writer
	Stderr   io.Writer
	Stack    *CallStack
	Reader   Reader
	Profiler Profiler
	Logger   *logrus.Logger
	natives  []LBuiltinDef
	numenv   atomicCounter
}

// StandardRuntime returns a new Runtime with an empty native dispatch table.
// Program output is written to os.Stdout and os.Stderr.  The runtime logger
// discards entries below the warning level.
func StandardRuntime() *Runtime {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return &Runtime{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stack:  &CallStack{MaxHeight: DefaultMaxStackHeight},
		Logger: logger,
	}
}

// GenEnvID returns a new identifier for an LEnv in the runtime.
func (r *Runtime) GenEnvID() uint {
	return r.numenv.Add(1)
}

// Native returns the native definition registered with id, or nil if id is
// not a valid dispatch id.
func (r *Runtime) Native(id int) LBuiltinDef {
	if id < 0 || id >= len(r.natives) {
		return nil
	}
	return r.natives[id]
}

// Natives returns the runtime's native dispatch table.  The returned slice
// must not be modified.
func (r *Runtime) Natives() []LBuiltinDef {
	return r.natives
}

func (r *Runtime) register(def LBuiltinDef) int {
	r.natives = append(r.natives, def)
	return len(r.natives) - 1
}

func (r *Runtime) logger() logrus.FieldLogger {
	if r.Logger == nil {
		return logrus.StandardLogger()
	}
	return r.Logger
}

type atomicCounter uint64

func (c *atomicCounter) Add(n uint) uint {
	return uint(atomic.AddUint64((*uint64)(c), uint64(n)))
}
