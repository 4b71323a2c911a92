// Copyright © 2018 The ELPS authors

// Package repl implements an interactive read-eval-print loop for rasp.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/parser"
	"github.com/sirupsen/logrus"
)

type config struct {
	stdin       io.ReadCloser
	stderr      io.WriteCloser
	historyFile string
	envConfig   []lisp.Config
}

func newConfig(opts ...Option) *config {
	c := &config{historyFile: historyPath()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output to the REPL.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithHistoryFile sets the file input history is saved to.  An empty path
// disables history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.historyFile = path
	}
}

// WithEnvConfig adds configuration applied to the root environment created
// by RunRepl.
func WithEnvConfig(cfgs ...lisp.Config) Option {
	return func(c *config) {
		c.envConfig = append(c.envConfig, cfgs...)
	}
}

// RunRepl runs a simple repl in a fresh root environment.
func RunRepl(prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	envOpts := []lisp.Config{lisp.WithReader(parser.NewReader())}
	envOpts = append(envOpts, cfg.envConfig...)
	if cfg.stderr != nil {
		envOpts = append(envOpts, lisp.WithStdout(cfg.stderr), lisp.WithStderr(cfg.stderr))
	}
	env, lerr := lisp.NewRootEnv(envOpts...)
	if lerr.Type == lisp.LError {
		return fmt.Errorf("language initialization failure: %w", lisp.GoError(lerr))
	}
	return RunEnv(env, prompt, strings.Repeat(" ", len(prompt)), opts...)
}

// RunEnv runs a simple repl with env as a root environment.  Input is read
// until every open list is closed and then each complete form is evaluated
// in turn.  Errors are reported and the session continues.  RunEnv returns
// when input is exhausted.
func RunEnv(env *lisp.LEnv, prompt, cont string, opts ...Option) error {
	if env.Parent != nil {
		return errors.New("REPL environment is not a root environment")
	}

	cfg := newConfig(opts...)
	if cfg.stderr != nil {
		env.Runtime.Stderr = cfg.stderr
	}
	ensureHistoryFilePermissions(cfg.historyFile)

	rlCfg := &readline.Config{
		Stdout:            env.Runtime.Stderr,
		Stderr:            env.Runtime.Stderr,
		Prompt:            prompt,
		HistoryFile:       cfg.historyFile,
		HistorySearchFold: true,
		AutoComplete:      &symbolCompleter{env: env},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	logger := env.Runtime.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	log := logger.WithField("env", env.ID)
	s := &session{env: env, out: env.Runtime.Stderr}
	for {
		if s.pending() {
			rl.SetPrompt(cont)
		} else {
			rl.SetPrompt(prompt)
		}
		line, err := rl.ReadSlice()
		if err == readline.ErrInterrupt {
			s.reset()
			continue
		}
		if err != nil {
			if err != io.EOF {
				log.WithError(err).Debug("input closed")
			}
			s.flush()
			return nil
		}
		s.input(string(line))
	}
}

// session accumulates input lines until they form complete expressions.
type session struct {
	env  *lisp.LEnv
	out  io.Writer
	buf  strings.Builder
	line int
}

func (s *session) pending() bool {
	return strings.TrimSpace(s.buf.String()) != ""
}

func (s *session) reset() {
	s.buf.Reset()
}

func (s *session) input(line string) {
	s.buf.WriteString(line)
	s.buf.WriteString("\n")
	if incomplete(s.buf.String()) {
		return
	}
	s.flush()
}

// flush evaluates any buffered text.
func (s *session) flush() {
	text := s.buf.String()
	s.reset()
	if strings.TrimSpace(text) == "" {
		return
	}
	s.line++
	exprs, err := parser.Parse(fmt.Sprintf("stdin:%d", s.line), []byte(text))
	if err != nil {
		var lerr *lisp.ErrorVal
		if errors.As(err, &lerr) {
			renderError(s.out, (*lisp.LVal)(lerr), text)
		} else {
			fmt.Fprintln(s.out, err) //nolint:errcheck // best-effort error display
		}
		return
	}
	for _, expr := range exprs {
		val := s.env.Eval(expr)
		if val.Type == lisp.LError {
			renderError(s.out, val, text)
			return
		}
		fmt.Fprintln(s.out, val) //nolint:errcheck // best-effort REPL output
	}
}

// incomplete reports whether text ends inside an unterminated string or
// symbol, or with a list left open.  Text containing an unmatched ')' is
// complete so that the reader can report it.
func incomplete(text string) bool {
	depth := 0
	var quote rune
	escaped := false
	comment := false
	for _, c := range text {
		switch {
		case comment:
			if c == '\n' {
				comment = false
			}
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '|':
			quote = c
		case c == ';':
			comment = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return quote != 0 || depth > 0
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".rasp_history")
}

// ensureHistoryFilePermissions creates the history file if necessary and
// restricts it to the current user.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600) //#nosec G304
	if err != nil {
		logrus.WithError(err).Debug("unable to create history file")
		return
	}
	_ = f.Close()
	if err := os.Chmod(path, 0600); err != nil {
		logrus.WithError(err).Debug("unable to restrict history file")
	}
}
