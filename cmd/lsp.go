// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/iBelieve/rasp/lsp"
	"github.com/spf13/cobra"
)

// LSPCommand creates the "lsp" cobra command with optional embedder
// configuration.  Embedders can pass WithEnv so that hover and completion
// cover their own natives.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the rasp Language Server Protocol server",
		Long: `Start an LSP server for rasp source files.

The language server provides diagnostics for syntax errors and invalid
parameter lists, hover documentation, go-to-definition, find references,
completion, signature help and document symbols.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  rasp lsp                           Start with stdio transport
  rasp lsp --port 7998               Start with TCP on port 7998`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			logger, err := cfg.resolveLogger()
			if err != nil {
				return err
			}
			serverOpts := []lsp.Option{lsp.WithLogger(logger.WithField("component", "lsp"))}
			if cfg.env != nil {
				serverOpts = append(serverOpts, lsp.WithEnv(cfg.env))
			}
			srv := lsp.New(serverOpts...)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				logger.WithField("addr", addr).Info("lsp server listening")
				return srv.RunTCP(addr)
			}
			return srv.RunStdio()
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
