// Copyright © 2018 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/iBelieve/rasp/dap"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// DAPCommand creates the "dap" cobra command.
func DAPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var port int

	cmd := &cobra.Command{
		Use:   "dap [flags]",
		Short: "Start a Debug Adapter Protocol server",
		Long: `Start a debug adapter for editors (VS Code, Neovim, Helix, etc.).

Sessions are run-only: the program named by the launch request runs to
completion while its output is streamed to the editor.

Transport modes:
  (default)    Use stdin/stdout, for editors which launch the adapter as a
               child process
  --port N     Listen for a DAP client on TCP port N

Launch configuration:
  {"type": "rasp", "request": "launch", "program": "${file}"}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := cfg.resolveLogger()
			if err != nil {
				return err
			}
			srv := dap.New(
				dap.WithLogger(logger.WithField("component", "dap")),
				dap.WithEnvConfig(envConfig(logger, viper.GetInt(keyMaxStackHeight))...),
			)
			if port > 0 {
				return srv.ServeTCP(fmt.Sprintf("localhost:%d", port))
			}
			return srv.ServeStdio(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for the DAP server (default is stdio)")

	return cmd
}

func init() {
	rootCmd.AddCommand(DAPCommand())
}
