// Copyright © 2018 The ELPS authors

// Package token defines the syntax classes recognized by the reader and the
// source locations attached to values.
package token

import "fmt"

type Type uint

// Type constants used for the rasp reader.  These constants aren't
// necessary to use the package.
const (
	INVALID Type = iota
	ERROR
	EOF

	HASH_BANG

	// Atomic expressions & literals
	ATOM
	PIPE_SYMBOL
	STRING

	COMMENT

	// Operators
	QUOTE
	BACKQUOTE
	UNQUOTE
	UNQUOTE_SPLICE

	// Delimiters
	PAREN_L
	PAREN_R

	numTokenTypes
)

var typeStrings = [numTokenTypes]string{
	INVALID:        "invalid",
	ERROR:          "error",
	EOF:            "EOF",
	HASH_BANG:      "#!",
	ATOM:           "atom",
	PIPE_SYMBOL:    "|symbol|",
	STRING:         "string",
	COMMENT:        ";",
	QUOTE:          "'",
	BACKQUOTE:      "`",
	UNQUOTE:        ",",
	UNQUOTE_SPLICE: ",@",
	PAREN_L:        "(",
	PAREN_R:        ")",
}

func (typ Type) String() string {
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// Lookup returns the Type whose String is s, or INVALID.
func Lookup(s string) Type {
	for typ := Type(0); typ < numTokenTypes; typ++ {
		if typeStrings[typ] == s {
			return typ
		}
	}
	return INVALID
}

// Location is a position in a source stream.
type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int    // byte offset, or -1 for values without source text
	Line int    // line number (starting at 1 when tracked)
	Col  int    // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

// LocationError is an error which occurred at a source location.
type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
