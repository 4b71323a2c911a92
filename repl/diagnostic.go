// Copyright © 2018 The ELPS authors

package repl

import (
	"io"

	"github.com/iBelieve/rasp/diagnostic"
	"github.com/iBelieve/rasp/lisp"
)

// renderError renders a lisp error using the diagnostic renderer.  The
// source snippet comes from the input text being evaluated rather than a
// file.
func renderError(w io.Writer, lerr *lisp.LVal, text string) {
	d := diagnostic.FromError(lerr)
	d.Notes = append(d.Notes, "try: rasp doc NAME to read about a builtin")
	r := &diagnostic.Renderer{
		Color: diagnostic.ColorAuto,
		SourceReader: func(string) ([]byte, error) {
			return []byte(text), nil
		},
	}
	_ = r.Render(w, d)
}
