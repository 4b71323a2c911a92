// Copyright © 2018 The ELPS authors

// Package rasptest runs lisp expressions and programs under go test.
package rasptest

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/parser"
	"github.com/sirupsen/logrus"
)

// TestSequence is a sequence of lisp expressions which are evaluated
// sequentially in the same environment.
type TestSequence []struct {
	Expr   string // a lisp expression
	Result string // the evaluated result
	Output string // program output written to Runtime.Stdout
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// NewEnv returns a root environment for use in test t.  Program output is
// written to stdout, or discarded if stdout is nil, and runtime logs are
// written to the test log.
func NewEnv(t testing.TB, stdout io.Writer, config ...lisp.Config) *lisp.LEnv {
	if stdout == nil {
		stdout = io.Discard
	}
	logger := logrus.New()
	logger.SetOutput(NewLogger(t))
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	base := []lisp.Config{
		lisp.WithReader(parser.NewReader()),
		lisp.WithStdout(stdout),
		lisp.WithStderr(NewLogger(t)),
		lisp.WithLogger(logger),
	}
	env, lerr := lisp.NewRootEnv(append(base, config...)...)
	if lerr.Type == lisp.LError {
		t.Fatalf("failed to initialize lisp environment: %v", lerr)
	}
	return env
}

// RunTestSuite runs each TestSequence in tests on isolated root environments.
// An expression which fails to parse has the text of its syntax error as its
// result.
func RunTestSuite(t *testing.T, tests TestSuite) {
	for i, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			var out bytes.Buffer
			env := NewEnv(t, &out)
			for j, expr := range test.TestSequence {
				out.Reset()
				v := env.Read("test", expr.Expr)
				if v.Type != lisp.LError {
					v = env.Eval(v)
				}
				result := v.String()
				if result != expr.Result {
					t.Errorf("test %d %q: expr %d: expected result %s (got %s)", i, test.Name, j, expr.Result, result)
				}
				if out.String() != expr.Output {
					t.Errorf("test %d %q: expr %d: expected output %q (got %q)", i, test.Name, j, expr.Output, out.String())
				}
			}
		})
	}
}

// EvalString reads and evaluates source in a fresh root environment and
// returns the result along with the program output.
func EvalString(t testing.TB, source string, config ...lisp.Config) (*lisp.LVal, string) {
	var out bytes.Buffer
	env := NewEnv(t, &out, config...)
	v := env.LoadString("test", source)
	return v, out.String()
}

// RunFile loads the program at path in a fresh root environment and fails
// the test if evaluation produces an error.  The program output is returned.
func RunFile(t *testing.T, path string) string {
	var out bytes.Buffer
	env := NewEnv(t, &out)
	lerr := env.LoadFile(path)
	if lerr.Type == lisp.LError {
		LispError(t, lisp.GoError(lerr))
	}
	return out.String()
}

// LispError reports err as a test failure.  When err is a lisp error its
// stack trace is logged.
func LispError(t testing.TB, err error) {
	t.Helper()
	if lerr, ok := err.(*lisp.ErrorVal); ok {
		var buf bytes.Buffer
		_, _ = lerr.WriteTrace(&buf)
		t.Error(strings.TrimSpace(buf.String()))
		return
	}
	t.Error(err)
}

// BenchmarkParse returns a benchmark which reads the source file at path.
func BenchmarkParse(path string) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.SetBytes(int64(len(buf)))
		r := parser.NewReader()
		for i := 0; i < b.N; i++ {
			_, err := r.Read("test", bytes.NewReader(buf))
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
		}
	}
}

// RunBenchmark runs a standard benchmark that evaluates source in a fresh
// root environment on each iteration.  Source is read only once.
func RunBenchmark(b *testing.B, source string) {
	b.StopTimer()
	loader, err := lisp.TextLoader(parser.NewReader(), "benchmark", strings.NewReader(source))
	if err != nil {
		b.Fatalf("parse error: %v", err)
	}
	for i := 0; i < b.N; i++ {
		env := NewEnv(b, io.Discard)
		b.StartTimer()
		lerr := loader(env)
		b.StopTimer()
		if lerr.Type == lisp.LError {
			LispError(b, lisp.GoError(lerr))
			return
		}
	}
}
