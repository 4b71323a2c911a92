// Copyright © 2018 The ELPS authors

// Package parser provides the lisp reader.
//
//	expr     := <term> | <list> | <prefixed>
//	list     := '(' (<expr> | <comment>)* ')'
//	prefixed := ('\'' | '`' | ',@' | ',') <expr>
//	term     := <string> | <pipesym> | <atom>
//	string   := '"' (/[^"\\]/ | '\' /./)* '"'
//	pipesym  := '|' (/[^|\\]/ | '\' /./)* '|'
//	atom     := (/[^\s\\"'`(),;|#]/ | '\' /./)+
//	comment  := ';' /[^\n]*/
//
// An atom is an integer when it matches /[+-]?[0-9]+/, a float when it is a
// decimal number with a fraction or exponent, and a symbol otherwise.  An atom
// containing a backslash escape is always a symbol.  The empty list reads as
// nil.  A backquoted expression is compiled during reading into ordinary list
// construction calls.
package parser

import (
	"io"
	"sort"

	"github.com/iBelieve/rasp/lisp"
	"github.com/iBelieve/rasp/parser/token"
	parsec "github.com/prataprc/goparsec"
)

// NewReader returns a lisp.Reader.
func NewReader() lisp.Reader {
	return &parsecReader{}
}

type parsecReader struct{}

func (p *parsecReader) Read(name string, r io.Reader) ([]*lisp.LVal, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(name, b)
}

// Parse reads all forms in text.  The returned error is a *lisp.ErrorVal with
// the syntax-error condition and the location of the offending text.
func Parse(name string, text []byte) ([]*lisp.LVal, error) {
	text = blankHashBang(text)
	b := newBuilder(name, text)
	var vals []*lisp.LVal
	s := parsec.NewScanner(text)
	parser := newParsecParser()
	root, s := parser(s)
	for root != nil {
		n := root.(*node)
		if n.typ != token.COMMENT {
			v, lerr := b.expr(n)
			if lerr != nil {
				return nil, lisp.GoError(lerr)
			}
			vals = append(vals, v)
		}
		root, s = parser(s)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		return nil, lisp.GoError(b.unexpected(s))
	}
	return vals, nil
}

// blankHashBang replaces an interpreter line at the start of text with
// spaces so that source positions are unaffected.
func blankHashBang(text []byte) []byte {
	if len(text) < 2 || text[0] != '#' || text[1] != '!' {
		return text
	}
	cp := make([]byte, len(text))
	copy(cp, text)
	for i := 0; i < len(cp) && cp[i] != '\n'; i++ {
		cp[i] = ' '
	}
	return cp
}

// node is the syntax tree produced by the parsec grammar.  Values are built
// from nodes in a separate pass so that unquotes can be checked against their
// enclosing backquote.  A list node has type PAREN_L.
type node struct {
	typ      token.Type
	text     string
	pos      int
	children []*node
}

func newParsecParser() parsec.Parser {
	openP := parsec.Atom("(", token.PAREN_L.String())
	closeP := parsec.Atom(")", token.PAREN_R.String())
	prefix := parsec.OrdChoice(first,
		parsec.Atom("'", token.QUOTE.String()),
		parsec.Atom("`", token.BACKQUOTE.String()),
		parsec.Atom(",@", token.UNQUOTE_SPLICE.String()), // must precede ","
		parsec.Atom(",", token.UNQUOTE.String()),
	)
	comment := parsec.Token(`;[^\n]*`, token.COMMENT.String())
	str := parsec.Token(`"(?:[^"\\]|\\(?s:.))*"`, token.STRING.String())
	pipesym := parsec.Token(`\|(?:[^|\\]|\\(?s:.))*\|`, token.PIPE_SYMBOL.String())
	atom := parsec.Token(`(?:[^\s\\"'`+"`"+`(),;|#]|\\(?s:.))+`, token.ATOM.String())
	term := parsec.OrdChoice(termNode, str, pipesym, atom)

	var expr parsec.Parser // forward declaration allows for recursive parsing
	item := parsec.OrdChoice(first, parsec.OrdChoice(termNode, comment), &expr)
	items := parsec.Kleene(nil, item)
	list := parsec.And(listNode, openP, items, closeP)
	prefixed := parsec.And(prefixNode, prefix, &expr)
	expr = parsec.OrdChoice(first, term, list, prefixed)
	return item
}

// first unwraps the single match of an OrdChoice, which goparsec otherwise
// passes along as a []parsec.ParsecNode.
func first(nodes []parsec.ParsecNode) parsec.ParsecNode {
	return nodes[0]
}

func termNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	term := nodes[0].(*parsec.Terminal)
	return &node{
		typ:  token.Lookup(term.GetName()),
		text: term.GetValue(),
		pos:  term.GetPosition(),
	}
}

func listNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	open := nodes[0].(*parsec.Terminal)
	n := &node{typ: token.PAREN_L, pos: open.GetPosition()}
	for _, c := range nodes[1].([]parsec.ParsecNode) {
		c := c.(*node)
		if c.typ != token.COMMENT {
			n.children = append(n.children, c)
		}
	}
	return n
}

func prefixNode(nodes []parsec.ParsecNode) parsec.ParsecNode {
	mark := nodes[0].(*parsec.Terminal)
	return &node{
		typ:      token.Lookup(mark.GetName()),
		text:     mark.GetValue(),
		pos:      mark.GetPosition(),
		children: []*node{nodes[1].(*node)},
	}
}

// builder converts syntax nodes into lisp values.
type builder struct {
	name  string
	text  []byte
	lines []int // byte offset of the first byte of each line
}

func newBuilder(name string, text []byte) *builder {
	lines := []int{0}
	for i, c := range text {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &builder{name: name, text: text, lines: lines}
}

func (b *builder) loc(pos int) *token.Location {
	line := sort.Search(len(b.lines), func(i int) bool { return b.lines[i] > pos }) - 1
	if line < 0 {
		line = 0
	}
	return &token.Location{
		File: b.name,
		Pos:  pos,
		Line: line + 1,
		Col:  pos - b.lines[line] + 1,
	}
}

func (b *builder) errorf(pos int, format string, v ...interface{}) *lisp.LVal {
	lerr := lisp.ErrorConditionf(lisp.CondSyntaxError, format, v...)
	lerr.Source = b.loc(pos)
	return lerr
}

func (b *builder) unexpected(s parsec.Scanner) *lisp.LVal {
	pos := s.GetCursor()
	switch b.text[pos] {
	case '(':
		return b.errorf(pos, "unmatched '(' starting: %s", b.snippet(pos))
	case ')':
		return b.errorf(pos, "unexpected ')'")
	case '"':
		return b.errorf(pos, "unterminated string starting: %s", b.snippet(pos))
	case '|':
		return b.errorf(pos, "unterminated symbol starting: %s", b.snippet(pos))
	case '\'', '`', ',':
		return b.errorf(pos, "expected expression after %q", b.text[pos])
	}
	return b.errorf(pos, "unexpected source text starting: %s", b.snippet(pos))
}

func (b *builder) snippet(pos int) string {
	end := pos + 16
	if end >= len(b.text) {
		return string(b.text[pos:])
	}
	return string(b.text[pos:end]) + "..."
}

// expr builds the value of an ordinary expression.
func (b *builder) expr(n *node) (*lisp.LVal, *lisp.LVal) {
	var v *lisp.LVal
	switch n.typ {
	case token.STRING:
		s, err := unescape(n.text[1 : len(n.text)-1])
		if err != nil {
			return nil, b.errorf(n.pos, "%v", err)
		}
		v = lisp.String(s)
	case token.PIPE_SYMBOL:
		s, err := unescape(n.text[1 : len(n.text)-1])
		if err != nil {
			return nil, b.errorf(n.pos, "%v", err)
		}
		v = lisp.Symbol(s)
	case token.ATOM:
		var err error
		v, err = parseAtom(n.text)
		if err != nil {
			return nil, b.errorf(n.pos, "%v", err)
		}
	case token.PAREN_L:
		if len(n.children) == 0 {
			return lisp.Nil(), nil
		}
		cells := make([]*lisp.LVal, len(n.children))
		for i, c := range n.children {
			var lerr *lisp.LVal
			cells[i], lerr = b.expr(c)
			if lerr != nil {
				return nil, lerr
			}
		}
		v = lisp.List(cells...)
	case token.QUOTE:
		x, lerr := b.expr(n.children[0])
		if lerr != nil {
			return nil, lerr
		}
		v = lisp.List(lisp.Symbol("quote"), x)
	case token.BACKQUOTE:
		t, lerr := b.template(n.children[0])
		if lerr != nil {
			return nil, lerr
		}
		v, lerr = lisp.CompileTemplate(t)
		if lerr != nil {
			return nil, lerr
		}
		if v.Type != lisp.LCons {
			return v, nil
		}
	case token.UNQUOTE, token.UNQUOTE_SPLICE:
		return nil, b.errorf(n.pos, "comma not inside backquote")
	default:
		return nil, b.errorf(n.pos, "invalid syntax node: %v", n.typ)
	}
	v.Source = b.loc(n.pos)
	return v, nil
}

// template builds the template of a backquoted expression.
func (b *builder) template(n *node) (*lisp.Template, *lisp.LVal) {
	t := &lisp.Template{Source: b.loc(n.pos)}
	switch n.typ {
	case token.PAREN_L:
		if len(n.children) == 0 {
			t.Kind = lisp.TemplateDatum
			t.Value = lisp.Nil()
			return t, nil
		}
		t.Kind = lisp.TemplateList
		for _, c := range n.children {
			item, lerr := b.template(c)
			if lerr != nil {
				return nil, lerr
			}
			t.Items = append(t.Items, item)
		}
	case token.QUOTE:
		quoted, lerr := b.template(n.children[0])
		if lerr != nil {
			return nil, lerr
		}
		t.Kind = lisp.TemplateList
		t.Items = []*lisp.Template{
			{Kind: lisp.TemplateDatum, Value: lisp.Symbol("quote"), Source: t.Source},
			quoted,
		}
	case token.BACKQUOTE:
		inner, lerr := b.template(n.children[0])
		if lerr != nil {
			return nil, lerr
		}
		t.Kind = lisp.TemplateBackquote
		t.Inner = inner
	case token.UNQUOTE, token.UNQUOTE_SPLICE:
		x, lerr := b.expr(n.children[0])
		if lerr != nil {
			return nil, lerr
		}
		t.Kind = lisp.TemplateUnquote
		if n.typ == token.UNQUOTE_SPLICE {
			t.Kind = lisp.TemplateSplice
		}
		t.Value = x
	default:
		x, lerr := b.expr(n)
		if lerr != nil {
			return nil, lerr
		}
		t.Kind = lisp.TemplateDatum
		t.Value = x
	}
	return t, nil
}
