// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Configuration keys shared by flags, the config file and RASP_ environment
// variables.
const (
	keyLogLevel       = "log-level"
	keyLogFormat      = "log-format"
	keyColor          = "color"
	keyMaxStackHeight = "max-stack-height"
	keyTrace          = "trace"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rasp",
	Short: "rasp: a minimal lisp interpreter",
	Long: `rasp is a small lisp interpreter implemented in Go.

Getting started:
  rasp run file.lisp           Run a lisp source file
  rasp run -e '(+ 1 2)' -p     Evaluate an expression and print the result
  rasp repl                    Start an interactive REPL
  rasp doc defun               Show documentation for a builtin

Language overview:
  Values are integers, floats, strings, symbols, booleans (true and false),
  nil and cons lists. Variables are introduced with set and let, functions
  with defun and macros with defmacro. Parameter lists may declare optional
  parameters (name default), a ...rest parameter and :keyword parameters.
  Backquote templates build lists with , and ,@ substitutions.

Configuration is read from $HOME/.rasp.yaml and RASP_ environment variables,
for example RASP_LOG_LEVEL=debug.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rasp.yaml)")
	flags.String(keyLogLevel, "warning", "Runtime log level: debug, info, warning or error")
	flags.String(keyLogFormat, "text", `Log format: "text" or "json"`)
	flags.String(keyColor, "auto", `Control colored output: "auto", "always", or "never".`)
	flags.Int(keyMaxStackHeight, 10000, "Maximum call stack height (0 means unlimited)")
	flags.String(keyTrace, "none", `Trace function calls: "none", "otel" or "opencensus"`)
	for _, key := range []string{keyLogLevel, keyLogFormat, keyColor, keyMaxStackHeight, keyTrace} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		// Search config in home directory with name ".rasp" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".rasp")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("rasp")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logrus.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger returns the logger configured by log-level and log-format.
func newLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(viper.GetString(keyLogLevel))
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)
	switch format := viper.GetString(keyLogFormat); format {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("invalid log format: %q", format)
	}
	return logger, nil
}
