// Copyright © 2018 The ELPS authors

package lisp

import (
	"github.com/iBelieve/rasp/parser/token"
)

// TemplateKind distinguishes the nodes of a backquote template.
type TemplateKind uint

// Possible TemplateKind values
const (
	// TemplateDatum is an atom which is reproduced literally.
	TemplateDatum TemplateKind = iota
	// TemplateList is a list whose items are templates.
	TemplateList
	// TemplateUnquote is an expression, written ,expr, whose value is
	// inserted in place.
	TemplateUnquote
	// TemplateSplice is an expression, written ,@expr, whose value must be a
	// list.  The list elements are inserted in place.
	TemplateSplice
	// TemplateBackquote is a backquote template nested inside another.
	TemplateBackquote
)

// Template is the parsed form of a backquoted expression.
type Template struct {
	Kind TemplateKind
	// Value holds the atom of a TemplateDatum and the expression of a
	// TemplateUnquote or TemplateSplice.
	Value *LVal
	// Items holds the children of a TemplateList.
	Items []*Template
	// Inner holds the content of a TemplateBackquote.
	Inner  *Template
	Source *token.Location
}

// CompileTemplate translates t into an ordinary expression whose evaluation
// constructs the data t describes.  A symbol compiles to (quote sym), an
// unquote compiles to its expression, and a list compiles to
//
//	(append E1 ... En nil)
//
// where Ei is (list Ci) for an ordinary child Ci and the bare expression of a
// splice.  A nested backquote is compiled as a separate top-level template.
func CompileTemplate(t *Template) (*LVal, *LVal) {
	if t.Kind == TemplateSplice {
		lerr := ErrorConditionf(CondSyntaxError, "cannot expand list at top level of template")
		lerr.Source = t.Source
		return nil, lerr
	}
	return compileTemplate(t)
}

func compileTemplate(t *Template) (*LVal, *LVal) {
	var expr *LVal
	switch t.Kind {
	case TemplateDatum:
		expr = t.Value
		if expr.Type == LSymbol {
			expr = List(Symbol("quote"), t.Value)
		}
	case TemplateUnquote, TemplateSplice:
		return t.Value, nil
	case TemplateBackquote:
		return CompileTemplate(t.Inner)
	case TemplateList:
		parts := make([]*LVal, 0, len(t.Items)+2)
		parts = append(parts, Symbol("append"))
		for _, item := range t.Items {
			if item.Kind == TemplateSplice {
				parts = append(parts, item.Value)
				continue
			}
			part, lerr := compileTemplate(item)
			if lerr != nil {
				return nil, lerr
			}
			parts = append(parts, withSource(List(Symbol("list"), part), item.Source))
		}
		parts = append(parts, Nil())
		expr = List(parts...)
	default:
		lerr := Errorf("invalid template kind: %d", t.Kind)
		lerr.Source = t.Source
		return nil, lerr
	}
	return withSource(expr, t.Source), nil
}

func withSource(v *LVal, loc *token.Location) *LVal {
	if loc != nil && v.Type == LCons {
		v.Source = loc
	}
	return v
}
