// Copyright © 2018 The ELPS authors

package cmd

import (
	"io"

	"github.com/iBelieve/rasp/diagnostic"
	"github.com/iBelieve/rasp/lisp"
	"github.com/spf13/viper"
)

func colorMode() diagnostic.ColorMode {
	mode, err := diagnostic.ParseColorMode(viper.GetString(keyColor))
	if err != nil {
		return diagnostic.ColorAuto
	}
	return mode
}

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode()}
}

// renderLispError writes lerr to w as an annotated source snippet followed by
// its call stack.
func renderLispError(w io.Writer, lerr *lisp.LVal) {
	_ = newRenderer().Render(w, diagnostic.FromError(lerr))
}
