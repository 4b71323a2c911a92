// Copyright © 2018 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"

	"github.com/iBelieve/rasp/repl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var replHistoryFile string

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive rasp REPL",
	Long: `Start an interactive read-eval-print loop.

Line editing, symbol completion and command history are supported via
readline. Input continues over multiple lines until its parentheses
balance. Errors are reported and the session continues. Use Ctrl-D to exit.

Example REPL session:
  rasp> (+ 1 2)
  3
  rasp> (defun square (x) (* x x))
  nil
  rasp> (square 5)
  25`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		opts := []repl.Option{
			repl.WithEnvConfig(envConfig(logger, viper.GetInt(keyMaxStackHeight))...),
		}
		if replHistoryFile != "" {
			opts = append(opts, repl.WithHistoryFile(replHistoryFile))
		}
		return repl.RunRepl(filepath.Base(os.Args[0])+"> ", opts...)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)

	replCmd.Flags().StringVar(&replHistoryFile, "history-file", "",
		"File used to persist REPL history (default is $HOME/.rasp_history)")
}
