// Copyright © 2018 The ELPS authors

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/iBelieve/rasp/diagnostic"
	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/lisp/x/profiler"
	"github.com/iBelieve/rasp/parser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errRunFailed is returned after a lisp error has been reported to the user.
var errRunFailed = errors.New("run failed")

type runOptions struct {
	expression bool
	print      bool
	json       bool
	callgrind  string
}

var runOpts runOptions

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] [file.lisp ...]",
	Short: "Run lisp code",
	Long: `Run lisp code supplied via the command line, files or stdin.

Each file is evaluated in a fresh root environment. With no arguments the
program is read from stdin. Evaluation stops at the first error, which is
reported with its source location and call stack.

Examples:
  rasp run main.lisp
  rasp run -e '(+ 1 2)' -p
  rasp run --json -e '(list 1 "two" (quote three))'
  rasp run --callgrind callgrind.out main.lisp
  rasp run --trace otel --log-level info main.lisp`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		runID := uuid.NewString()
		log := logger.WithField("run", runID)

		traceMode := viper.GetString(keyTrace)
		if runOpts.callgrind != "" && traceMode != "" && traceMode != traceNone {
			return fmt.Errorf("--callgrind cannot be combined with --trace %s", traceMode)
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		tr, err := startTracing(ctx, traceMode, runID, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := tr.shutdown(ctx); err != nil {
				log.WithError(err).Warn("failed to shut down tracing")
			}
		}()

		sources, err := readSources(args, runOpts.expression, cmd.InOrStdin())
		if err != nil {
			return err
		}
		r := &runner{
			runOptions: runOpts,
			log:        log,
			config:     envConfig(logger, viper.GetInt(keyMaxStackHeight)),
			tracer:     tr,
			stdout:     cmd.OutOrStdout(),
			stderr:     cmd.ErrOrStderr(),
			color:      colorMode(),
		}
		return r.run(sources)
	},
}

// source is a named program text.  A source with a path is read from the
// file system when it is about to run.
type source struct {
	name string
	path string
	text []byte
}

func (src *source) load() error {
	if src.path == "" {
		return nil
	}
	b, err := os.ReadFile(src.path) //#nosec G304
	if err != nil {
		return err
	}
	src.text = b
	return nil
}

// readSources returns the programs named by args.  Args are expressions when
// expression is true and file paths otherwise.  Without args the program is
// read from stdin.  Files are not read until they run.
func readSources(args []string, expression bool, stdin io.Reader) ([]source, error) {
	if len(args) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		return []source{{name: "stdin", text: b}}, nil
	}
	sources := make([]source, len(args))
	for i, arg := range args {
		if expression {
			sources[i] = source{name: "expr", text: []byte(arg)}
			continue
		}
		sources[i] = source{name: arg, path: arg}
	}
	return sources, nil
}

// runner evaluates sources, each in its own root environment.
type runner struct {
	runOptions
	log    logrus.FieldLogger
	config []lisp.Config
	tracer *tracer
	stdout io.Writer
	stderr io.Writer
	color  diagnostic.ColorMode
}

func (r *runner) run(sources []source) error {
	if r.callgrind != "" && len(sources) != 1 {
		return fmt.Errorf("--callgrind requires exactly one program, got %d", len(sources))
	}
	for _, src := range sources {
		log := r.log.WithField("source", src.name)
		if err := src.load(); err != nil {
			log.WithError(err).Debug("source unreadable")
			r.renderError(lisp.ErrorCondition(lisp.CondIOError, err), src)
			return errRunFailed
		}
		log.Debug("running source")
		lerr, err := r.runSource(src)
		if err != nil {
			return err
		}
		if lerr != nil {
			log.WithField("condition", lerr.Str).Debug("source failed")
			r.renderError(lerr, src)
			return errRunFailed
		}
	}
	return nil
}

// runSource evaluates the forms of src in order.  A lisp error stops
// evaluation and is returned as the first result.
func (r *runner) runSource(src source) (*lisp.LVal, error) {
	config := []lisp.Config{
		lisp.WithReader(parser.NewReader()),
		lisp.WithStdout(r.stdout),
		lisp.WithStderr(r.stderr),
	}
	config = append(config, r.config...)
	env, lerr := lisp.NewRootEnv(config...)
	if lerr.Type == lisp.LError {
		return lerr, nil
	}

	prof, err := r.profiler(env.Runtime)
	if err != nil {
		return nil, err
	}
	if prof != nil {
		if lerr := lisp.WithProfiler(prof)(env); lerr.Type == lisp.LError {
			return nil, lisp.GoError(lerr)
		}
		defer func() {
			if err := prof.Complete(); err != nil {
				r.log.WithError(err).Warn("failed to complete profile")
			}
		}()
	}

	exprs, err := env.Runtime.Reader.Read(src.name, bytes.NewReader(src.text))
	if err != nil {
		var errVal *lisp.ErrorVal
		if errors.As(err, &errVal) {
			return (*lisp.LVal)(errVal), nil
		}
		return nil, err
	}
	for _, expr := range exprs {
		v := env.Eval(expr)
		if v.Type == lisp.LError {
			return v, nil
		}
		if r.print || r.json {
			if err := r.printValue(v); err != nil {
				return nil, err
			}
		}
	}
	return nil, nil
}

func (r *runner) profiler(runtime *lisp.Runtime) (lisp.Profiler, error) {
	if r.callgrind != "" {
		p := profiler.NewCallgrindProfiler(runtime)
		if err := p.SetFile(r.callgrind); err != nil {
			return nil, err
		}
		return p, nil
	}
	if r.tracer == nil {
		return nil, nil
	}
	return r.tracer.profiler(runtime), nil
}

func (r *runner) printValue(v *lisp.LVal) error {
	if !r.json {
		_, err := fmt.Fprintln(r.stdout, v)
		return err
	}
	b, err := json.Marshal(lisp.GoValue(v))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.stdout, "%s\n", b)
	return err
}

// renderError reports lerr with a source snippet taken from src.
func (r *runner) renderError(lerr *lisp.LVal, src source) {
	renderer := &diagnostic.Renderer{
		Color: r.color,
		SourceReader: func(name string) ([]byte, error) {
			if name == src.name {
				return src.text, nil
			}
			return os.ReadFile(name) //#nosec G304
		},
	}
	_ = renderer.Render(r.stderr, diagnostic.FromError(lerr))
}

func init() {
	rootCmd.AddCommand(runCmd)

	// Here flags for the run command are defined
	runCmd.Flags().BoolVarP(&runOpts.expression, "expression", "e", false,
		"Interpret arguments as lisp expressions")
	runCmd.Flags().BoolVarP(&runOpts.print, "print", "p", false,
		"Print expression values to stdout")
	runCmd.Flags().BoolVar(&runOpts.json, "json", false,
		"Print expression values to stdout as JSON")
	runCmd.Flags().StringVar(&runOpts.callgrind, "callgrind", "",
		"Write a callgrind profile of the program to the given file")
}
