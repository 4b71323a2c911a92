// Copyright © 2018 The ELPS authors

package profiler

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/iBelieve/rasp/lisp"
)

// FunLabeler provides an alternative name for a function label in the trace.
type FunLabeler func(runtime *lisp.Runtime, fun *lisp.LVal) string

// WithFunLabeler sets the labeler for tracing spans.
func WithFunLabeler(funLabeler FunLabeler) Option {
	return func(p *profiler) {
		p.funLabeler = funLabeler
	}
}

// WithSourceLabeler labels spans with the base name of the file defining a
// function followed by the function name, e.g. "fib.lisp:fib".  Natives are
// labeled "native:name".
func WithSourceLabeler() Option {
	return WithFunLabeler(sourceFunLabeler)
}

var (
	sanitizeRegExp   = regexp.MustCompile(`[\s_]+`)
	validLabelRegExp = regexp.MustCompile(`[[:graph:]]*`)
)

func sanitizeLabel(userLabel string) string {
	if userLabel == "" {
		return ""
	}

	// Replace spaces with underscores
	userLabel = sanitizeRegExp.ReplaceAllString(strings.TrimSpace(userLabel), "_")

	// Find the first valid label match
	matches := validLabelRegExp.FindStringSubmatch(userLabel)
	if len(matches) > 0 {
		return matches[0]
	}

	return ""
}

func sourceFunLabeler(runtime *lisp.Runtime, fun *lisp.LVal) string {
	name := defaultFunName(fun)
	loc := getSourceLoc(fun)
	if loc == nil {
		return "native:" + name
	}
	return sanitizeLabel(filepath.Base(loc.File)) + ":" + name
}
