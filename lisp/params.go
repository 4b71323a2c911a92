// Copyright © 2018 The ELPS authors

package lisp

import (
	"bytes"
	"strings"
)

// Param is a named parameter with an optional default expression.  A nil
// Default means no default was declared.
type Param struct {
	Name    string
	Default *LVal
}

// Params is a compiled parameter specification.  Params are created once, when
// a function or macro is defined, and applied on every call.
//
// A specification lists required parameters, then optional parameters, then
// at most one rest parameter, then keyword parameters:
//
//	(a b (c 1) ...more :key (:other 2))
//
// Keyword parameter names are stored without the leading colon and the rest
// parameter name without the leading ellipsis.
type Params struct {
	Required []string
	Optional []Param
	Rest     string
	Keywords []Param
}

type paramStage int

const (
	stageRequired paramStage = iota
	stageOptional
	stageRest
	stageKeyword
)

// ParseParams compiles the parameter specification spec.  A malformed or
// misordered specification results in a parameter-spec-error.
func ParseParams(spec *LVal) (*Params, *LVal) {
	cells, lerr := ListCells(spec)
	if lerr != nil {
		return nil, ErrorConditionf(CondParamSpecError, "parameter specification is not a proper list: %v", spec)
	}
	p := &Params{}
	seen := make(map[string]bool, len(cells))
	stage := stageRequired
	for _, cell := range cells {
		name, dflt, lerr := paramEntry(cell)
		if lerr != nil {
			return nil, lerr
		}
		var next paramStage
		switch {
		case isKeyword(name):
			next = stageKeyword
			name = strings.TrimPrefix(name, KeywordPrefix)
		case strings.HasPrefix(name, RestPrefix):
			if dflt != nil {
				return nil, ErrorConditionf(CondParamSpecError, "rest parameter cannot have a default: %v", cell)
			}
			if p.Rest != "" {
				return nil, ErrorConditionf(CondParamSpecError, "multiple rest parameters: %v", cell)
			}
			next = stageRest
			name = strings.TrimPrefix(name, RestPrefix)
		case dflt != nil:
			next = stageOptional
		default:
			next = stageRequired
		}
		if next < stage {
			return nil, ErrorConditionf(CondParamSpecError,
				"%s parameter follows %s parameter: %v", next, stage, cell)
		}
		stage = next
		if name == "" || isReserved(name) || isKeyword(name) {
			return nil, ErrorConditionf(CondParamSpecError, "invalid parameter name: %v", cell)
		}
		if seen[name] {
			return nil, ErrorConditionf(CondParamSpecError, "duplicate parameter: %v", name)
		}
		seen[name] = true
		switch stage {
		case stageRequired:
			p.Required = append(p.Required, name)
		case stageOptional:
			p.Optional = append(p.Optional, Param{name, dflt})
		case stageRest:
			p.Rest = name
		case stageKeyword:
			p.Keywords = append(p.Keywords, Param{name, dflt})
		}
	}
	return p, nil
}

// paramEntry returns the name and default expression of a single parameter
// specification entry, either a bare symbol or a (name default) pair.
func paramEntry(cell *LVal) (string, *LVal, *LVal) {
	switch cell.Type {
	case LSymbol:
		return cell.Str, nil, nil
	case LCons:
		pair, lerr := ListCells(cell)
		if lerr != nil || len(pair) != 2 {
			return "", nil, ErrorConditionf(CondParamSpecError, "parameter must be a (name default) pair: %v", cell)
		}
		if pair[0].Type != LSymbol {
			return "", nil, ErrorConditionf(CondParamSpecError, "parameter name is not a symbol: %v", pair[0])
		}
		return pair[0].Str, pair[1], nil
	default:
		return "", nil, ErrorConditionf(CondParamSpecError, "invalid parameter: %v", cell)
	}
}

func (s paramStage) String() string {
	switch s {
	case stageRequired:
		return "required"
	case stageOptional:
		return "optional"
	case stageRest:
		return "rest"
	default:
		return "keyword"
	}
}

// Apply binds args into env according to p.  Optional and keyword default
// expressions are evaluated in env, after the supplied arguments have been
// bound, so defaults may refer to earlier parameters.  Keyword arguments
// which p does not declare are bound as well.
func (p *Params) Apply(env *LEnv, args *LVal) *LVal {
	cells, lerr := ListCells(args)
	if lerr != nil {
		env.ErrorAssociate(lerr)
		return lerr
	}

	var (
		required []*LVal
		optional []*LVal
		rest     []*LVal
		kwnames  []string
		kwvals   = make(map[string]*LVal)
		kwmode   bool
	)
	for i := 0; i < len(cells); i++ {
		v := cells[i]
		if !kwmode && v.IsKeyword() {
			kwmode = true
		}
		if kwmode {
			if !v.IsKeyword() {
				return env.ErrorConditionf(CondArityError, "unexpected value after keyword arguments: %v", v)
			}
			if i+1 >= len(cells) {
				return env.ErrorConditionf(CondArityError, "keyword argument missing value: %v", v)
			}
			name := strings.TrimPrefix(v.Str, KeywordPrefix)
			if _, ok := kwvals[name]; ok {
				return env.ErrorConditionf(CondDuplicateKeyword, "duplicate keyword argument: %v", v)
			}
			i++
			kwnames = append(kwnames, name)
			kwvals[name] = cells[i]
			continue
		}
		switch {
		case len(required) < len(p.Required):
			required = append(required, v)
		case len(optional) < len(p.Optional):
			optional = append(optional, v)
		case p.Rest != "":
			rest = append(rest, v)
		default:
			return env.ErrorConditionf(CondArityError, "unexpected additional argument: %v", v)
		}
	}

	if len(required) < len(p.Required) {
		missing := p.Required[len(required):]
		return env.ErrorConditionf(CondArityError, "missing required arguments: %s", strings.Join(missing, ", "))
	}
	for i, v := range required {
		env.put(p.Required[i], v)
	}
	for i, v := range optional {
		env.put(p.Optional[i].Name, v)
	}
	for _, param := range p.Optional[len(optional):] {
		v := env.Eval(param.Default)
		if v.Type == LError {
			return v
		}
		env.put(param.Name, v)
	}
	if p.Rest != "" {
		env.put(p.Rest, List(rest...))
	}
	for _, param := range p.Keywords {
		if _, ok := kwvals[param.Name]; ok {
			continue
		}
		if param.Default == nil {
			return env.ErrorConditionf(CondMissingKeywordArg, "missing required keyword argument: %s%s", KeywordPrefix, param.Name)
		}
		v := env.Eval(param.Default)
		if v.Type == LError {
			return v
		}
		env.put(param.Name, v)
	}
	for _, name := range kwnames {
		env.put(name, kwvals[name])
	}
	return Nil()
}

// Len returns the number of declared parameters.
func (p *Params) Len() int {
	n := len(p.Required) + len(p.Optional) + len(p.Keywords)
	if p.Rest != "" {
		n++
	}
	return n
}

// Names returns the names bound by p, in declaration order.
func (p *Params) Names() []string {
	names := make([]string, 0, p.Len())
	names = append(names, p.Required...)
	for _, param := range p.Optional {
		names = append(names, param.Name)
	}
	if p.Rest != "" {
		names = append(names, p.Rest)
	}
	for _, param := range p.Keywords {
		names = append(names, param.Name)
	}
	return names
}

// String renders p as a parameter specification.
func (p *Params) String() string {
	var buf bytes.Buffer
	buf.WriteString("(")
	sep := func() {
		if buf.Len() > 1 {
			buf.WriteString(" ")
		}
	}
	for _, name := range p.Required {
		sep()
		buf.WriteString(name)
	}
	writeParam := func(prefix string, param Param) {
		sep()
		if param.Default == nil {
			buf.WriteString(prefix + param.Name)
			return
		}
		buf.WriteString("(" + prefix + param.Name + " " + param.Default.String() + ")")
	}
	for _, param := range p.Optional {
		writeParam("", param)
	}
	if p.Rest != "" {
		sep()
		buf.WriteString(RestPrefix + p.Rest)
	}
	for _, param := range p.Keywords {
		writeParam(KeywordPrefix, param)
	}
	buf.WriteString(")")
	return buf.String()
}
