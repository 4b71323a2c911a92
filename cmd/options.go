// Copyright © 2018 The ELPS authors

package cmd

import (
	"github.com/iBelieve/rasp/lisp"
	"github.com/sirupsen/logrus"
)

// Option configures an exported command factory (DocCommand, LSPCommand,
// DAPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	env    *lisp.LEnv
	logger *logrus.Logger
}

// WithEnv injects a fully configured LEnv.  For the doc command this is
// the environment used for documentation queries.  For the lsp command it
// supplies hover documentation and completion candidates.
func WithEnv(env *lisp.LEnv) Option {
	return func(c *cmdConfig) { c.env = env }
}

// WithLogger overrides the logger built from the log-level and log-format
// configuration.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *cmdConfig) { c.logger = logger }
}

func newCmdConfig(opts []Option) *cmdConfig {
	var cfg cmdConfig
	for _, o := range opts {
		o(&cfg)
	}
	return &cfg
}

// resolveLogger returns the injected logger or one built from configuration.
func (c *cmdConfig) resolveLogger() (*logrus.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	return newLogger()
}

// envConfig returns the runtime configuration shared by commands which
// evaluate lisp code.
func envConfig(logger *logrus.Logger, maxStackHeight int) []lisp.Config {
	return []lisp.Config{
		lisp.WithLogger(logger),
		lisp.WithMaximumStackHeight(maxStackHeight),
	}
}
