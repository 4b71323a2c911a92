// Copyright © 2018 The ELPS authors

package lisp

import "github.com/iBelieve/rasp/parser/token"

// ParamKind classifies a function parameter.
type ParamKind int

const (
	ParamRequired ParamKind = iota
	ParamOptional
	ParamRest
	ParamKey
)

func (k ParamKind) String() string {
	switch k {
	case ParamRequired:
		return "required"
	case ParamOptional:
		return "optional"
	case ParamRest:
		return "rest"
	case ParamKey:
		return "key"
	default:
		return "unknown"
	}
}

// ParamInfo describes a single parameter in a function signature.
type ParamInfo struct {
	Name string
	Kind ParamKind
}

// FunctionInfo holds metadata extracted from a defun or defmacro form
// without evaluating it.
type FunctionInfo struct {
	Name   string
	Kind   string // "defun" or "defmacro"
	Params []ParamInfo
	Source *token.Location
	// NameSource is the location of the name symbol in the form.
	NameSource *token.Location
	// Err is the parameter-spec-error produced by the form's parameter
	// list, if any.
	Err *LVal
}

// Signature renders info as a call template, e.g. "(f a (b) ...c :d)".
func (info *FunctionInfo) Signature() string {
	s := "(" + info.Name
	for _, p := range info.Params {
		switch p.Kind {
		case ParamOptional:
			s += " (" + p.Name + ")"
		case ParamRest:
			s += " " + RestPrefix + p.Name
		case ParamKey:
			s += " " + KeywordPrefix + p.Name
		default:
			s += " " + p.Name
		}
	}
	return s + ")"
}

// InspectFunction extracts metadata from a defun or defmacro form.  Returns
// nil if node is not a recognized form.
func InspectFunction(node *LVal) *FunctionInfo {
	if node == nil || node.Type != LCons {
		return nil
	}
	head := node.Cells[0]
	if head.Type != LSymbol || (head.Str != "defun" && head.Str != "defmacro") {
		return nil
	}
	cells, lerr := ListCells(node)
	if lerr != nil || len(cells) < 3 || cells[1].Type != LSymbol {
		return nil
	}
	info := &FunctionInfo{
		Name:       cells[1].Str,
		Kind:       head.Str,
		Source:     node.Source,
		NameSource: cells[1].Source,
	}
	params, lerr := ParseParams(cells[2])
	if lerr != nil {
		lerr.Source = cells[2].Source
		if lerr.Source == nil {
			lerr.Source = node.Source
		}
		info.Err = lerr
		return info
	}
	info.Params = ParamInfos(params)
	return info
}

// InspectForms walks forms, descending into nested lists, and returns
// metadata for every defun and defmacro found.
func InspectForms(forms []*LVal) []*FunctionInfo {
	var infos []*FunctionInfo
	var walk func(v *LVal)
	walk = func(v *LVal) {
		if v.Type != LCons {
			return
		}
		if info := InspectFunction(v); info != nil {
			infos = append(infos, info)
		}
		for c := v; c.Type == LCons; c = c.Cells[1] {
			walk(c.Cells[0])
		}
	}
	for _, form := range forms {
		walk(form)
	}
	return infos
}

// ParamInfos flattens p into a list of parameters in declaration order.
func ParamInfos(p *Params) []ParamInfo {
	infos := make([]ParamInfo, 0, p.Len())
	for _, name := range p.Required {
		infos = append(infos, ParamInfo{name, ParamRequired})
	}
	for _, param := range p.Optional {
		infos = append(infos, ParamInfo{param.Name, ParamOptional})
	}
	if p.Rest != "" {
		infos = append(infos, ParamInfo{p.Rest, ParamRest})
	}
	for _, param := range p.Keywords {
		infos = append(infos, ParamInfo{param.Name, ParamKey})
	}
	return infos
}
