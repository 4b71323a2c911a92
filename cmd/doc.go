// Copyright © 2018 The ELPS authors

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iBelieve/rasp/docs"
	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/parser"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

const docWidth = 72

// DocCommand creates the "doc" cobra command.  Embedders can pass WithEnv to
// document the natives registered in their own environment.
func DocCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	var (
		sourceFile string
		list       bool
		guide      bool
	)
	cmd := &cobra.Command{
		Use:   "doc [flags] [NAME]",
		Short: "Show documentation for special operators and builtins",
		Long: `Show built-in documentation for rasp special operators and builtin
functions. Without a NAME, or with -l, every documented name is listed.

Use -f to read a source file first. Functions and macros defined in the file
can then be looked up by name.

Examples:
  rasp doc defun                   Show docs for the defun operator
  rasp doc -l                      List all builtins
  rasp doc --guide                 Print the language guide
  rasp doc -f mylib.lisp my-func   Show the signature of my-func`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := cfg.docEnv()
			if err != nil {
				return err
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush() //nolint:errcheck // best-effort flush on exit
			if guide {
				_, err := io.WriteString(out, docs.LangGuide)
				return err
			}
			if list || len(args) == 0 {
				return renderBuiltinList(out, env)
			}
			var funcs []*lisp.FunctionInfo
			if sourceFile != "" {
				funcs, err = inspectFile(cmd.ErrOrStderr(), sourceFile)
				if err != nil {
					return err
				}
			}
			return renderDoc(out, env, funcs, args[0])
		},
	}
	cmd.Flags().StringVarP(&sourceFile, "source-file", "f", "",
		"Read a lisp source file and document the functions it defines.")
	cmd.Flags().BoolVarP(&list, "list", "l", false,
		"List all documented builtins.")
	cmd.Flags().BoolVar(&guide, "guide", false,
		"Print the language guide.")
	return cmd
}

func (c *cmdConfig) docEnv() (*lisp.LEnv, error) {
	if c.env != nil {
		return c.env, nil
	}
	env, lerr := lisp.NewRootEnv(lisp.WithReader(parser.NewReader()))
	if lerr.Type == lisp.LError {
		return nil, lisp.GoError(lerr)
	}
	return env, nil
}

// inspectFile reads the functions and macros defined in path.  Syntax
// errors are rendered to stderr.
func inspectFile(stderr io.Writer, path string) ([]*lisp.FunctionInfo, error) {
	b, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		return nil, err
	}
	forms, err := parser.Parse(path, b)
	if err != nil {
		if errVal, ok := err.(*lisp.ErrorVal); ok {
			renderLispError(stderr, (*lisp.LVal)(errVal))
			return nil, errRunFailed
		}
		return nil, err
	}
	return lisp.InspectForms(forms), nil
}

// renderDoc writes documentation for name.  Definitions in funcs take
// precedence over natives, and the last definition of a name wins.
func renderDoc(w io.Writer, env *lisp.LEnv, funcs []*lisp.FunctionInfo, name string) error {
	for i := len(funcs) - 1; i >= 0; i-- {
		info := funcs[i]
		if info.Name != name {
			continue
		}
		if info.Err != nil {
			return fmt.Errorf("%s: %w", name, lisp.GoError(info.Err))
		}
		kind := "function"
		if info.Kind == "defmacro" {
			kind = "macro"
		}
		_, err := fmt.Fprintf(w, "%s %s\n", kind, info.Signature())
		if err != nil {
			return err
		}
		if info.Source != nil {
			_, err = fmt.Fprintln(w, cleanDocstring("Defined at "+info.Source.String()+"."))
		}
		return err
	}

	kind, def := nativeDef(env, name)
	if def == nil {
		return fmt.Errorf("no documentation for %s", name)
	}
	_, err := fmt.Fprintf(w, "%s %s\n", kind, lisp.FormalsString(def))
	if err != nil {
		return err
	}
	if doc := cleanDocstring(lisp.Docstring(def)); doc != "" {
		_, err = fmt.Fprintln(w, doc)
	}
	return err
}

// renderBuiltinList writes the signature of every native bound in env.
func renderBuiltinList(w io.Writer, env *lisp.LEnv) error {
	var names []string
	for _, name := range env.Names() {
		if _, def := nativeDef(env, name); def != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		kind, def := nativeDef(env, name)
		if _, err := fmt.Fprintf(w, "%-16s %s\n", kind, lisp.FormalsString(def)); err != nil {
			return err
		}
	}
	return nil
}

// nativeDef returns the kind and definition of the native bound to name.
func nativeDef(env *lisp.LEnv, name string) (string, lisp.LBuiltinDef) {
	v := env.Get(lisp.Symbol(name))
	switch v.Type {
	case lisp.LNativeFun:
		return "builtin", env.Runtime.Native(v.Int)
	case lisp.LNativeMacro:
		return "special", env.Runtime.Native(v.Int)
	}
	return "", nil
}

func cleanDocstring(doc string) string {
	if doc == "" {
		return ""
	}
	doc = indent.String(wordwrap.String(doc, docWidth), 2)
	return strings.TrimSuffix(doc, "\n")
}

func init() {
	rootCmd.AddCommand(DocCommand())
}
