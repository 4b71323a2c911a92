// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/iBelieve/rasp/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	tests := []struct {
		v   *lisp.LVal
		str string
	}{
		{lisp.Int(-12), "-12"},
		{lisp.Float(2), "2.0"},
		{lisp.Float(0.25), "0.25"},
		{lisp.Float(1e21), "1e+21"},
		{lisp.String("a\"b\n"), `"a\"b\n"`},
		{lisp.Symbol("x"), "x"},
		{lisp.Bool(true), "true"},
		{lisp.Bool(false), "false"},
		{lisp.Nil(), "nil"},
		{lisp.List(), "nil"},
		{lisp.List(lisp.Int(1), lisp.List(lisp.Int(2)), lisp.Nil()), "(1 (2) nil)"},
		{lisp.Cons(lisp.Int(1), lisp.Int(2)), "(1 . 2)"},
		{lisp.ListTail([]*lisp.LVal{lisp.Int(1), lisp.Int(2)}, lisp.Int(3)), "(1 2 . 3)"},
		{lisp.List(lisp.Symbol("quote"), lisp.Symbol("x")), "'x"},
		{lisp.List(lisp.Symbol("quote"), lisp.Symbol("x"), lisp.Symbol("y")), "(quote x y)"},
		{lisp.NativeFun("car", 3), "#<native-function car>"},
		{lisp.NativeMacro("if", 2), "#<native-macro if>"},
		{lisp.Fun("f", &lisp.Params{}, lisp.Nil(), nil), "#<function f>"},
		{lisp.Macro("", &lisp.Params{}, lisp.Nil(), nil), "#<macro>"},
	}
	for _, test := range tests {
		assert.Equal(t, test.str, test.v.String())
	}
	assert.Equal(t, "a\"b\n", lisp.String("a\"b\n").Display())
}

func TestEqual(t *testing.T) {
	assert.True(t, lisp.Int(1).Equal(lisp.Float(1)))
	assert.False(t, lisp.Int(1).Equal(lisp.Int(2)))
	assert.True(t, lisp.Symbol("a").Equal(lisp.Symbol("a")))
	assert.False(t, lisp.Symbol("a").Equal(lisp.String("a")))
	assert.True(t, lisp.Nil().Equal(lisp.List()))
	assert.True(t, lisp.List(lisp.Int(1), lisp.String("s")).Equal(lisp.List(lisp.Int(1), lisp.String("s"))))
	assert.False(t, lisp.List(lisp.Int(1)).Equal(lisp.List(lisp.Int(1), lisp.Int(2))))
	assert.True(t, lisp.NativeFun("car", 3).Equal(lisp.NativeFun("car", 3)))
	assert.False(t, lisp.Bool(true).Equal(lisp.Bool(false)))
}

func TestListHelpers(t *testing.T) {
	lis := lisp.List(lisp.Int(1), lisp.Int(2))
	assert.Equal(t, 2, lis.Len())
	assert.True(t, lis.IsProperList())
	assert.Equal(t, "1", lis.Car().String())
	assert.Equal(t, "(2)", lis.Cdr().String())
	assert.Panics(t, func() { lisp.Int(1).Car() })

	improper := lisp.Cons(lisp.Int(1), lisp.Int(2))
	assert.Equal(t, -1, improper.Len())
	assert.False(t, improper.IsProperList())
	_, lerr := lisp.ListCells(improper)
	require.NotNil(t, lerr)
	assert.Equal(t, lisp.CondImproperList, lerr.Str)

	cells, lerr := lisp.ListCells(lisp.Nil())
	assert.Nil(t, lerr)
	assert.Empty(t, cells)

	cp := lis.Copy()
	cp.Cells[0] = lisp.Int(9)
	assert.Equal(t, "(1 2)", lis.String())
	assert.Equal(t, "(9 2)", cp.String())
}

func TestPredicates(t *testing.T) {
	assert.True(t, lisp.Symbol(":k").IsKeyword())
	assert.True(t, lisp.Symbol(":").IsKeyword())
	assert.False(t, lisp.String(":k").IsKeyword())
	assert.True(t, lisp.Float(1).IsNumeric())
	assert.False(t, lisp.String("1").IsNumeric())
	assert.True(t, lisp.NativeMacro("if", 0).IsCallable())
	assert.False(t, lisp.Symbol("if").IsCallable())
	assert.True(t, lisp.Nil().IsNil())
	assert.Same(t, lisp.Nil(), lisp.Nil())
	assert.Same(t, lisp.Bool(true), lisp.Bool(true))
}
