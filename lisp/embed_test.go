// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"errors"
	"testing"

	"github.com/iBelieve/rasp/lisp"
	"github.com/stretchr/testify/assert"
)

func TestGoValue(t *testing.T) {
	v := readForm(t, `(1 2.5 "s" sym (true) ())`)
	assert.Equal(t, []interface{}{1, 2.5, "s", "sym", []interface{}{"true"}, nil}, lisp.GoValue(v))
	assert.Nil(t, lisp.GoValue(lisp.Nil()))
	assert.Equal(t, true, lisp.GoValue(lisp.Bool(true)))
	assert.Equal(t, []interface{}{1, 2}, lisp.GoValue(lisp.Cons(lisp.Int(1), lisp.Int(2))))
	assert.Equal(t, "#<native-function car>", lisp.GoValue(lisp.NativeFun("car", 0)))

	n, ok := lisp.GoInt(lisp.Float(2.7))
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	f, ok := lisp.GoFloat64(lisp.Int(3))
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)
	_, ok = lisp.GoString(lisp.Symbol("x"))
	assert.False(t, ok)
	name, ok := lisp.SymbolName(lisp.Symbol("x"))
	assert.True(t, ok)
	assert.Equal(t, "x", name)
}

func TestValue(t *testing.T) {
	v := lisp.Value([]interface{}{1, "a", 1.5, false, nil, []interface{}{int64(2)}})
	assert.Equal(t, `(1 "a" 1.5 false nil (2))`, v.String())
	assert.True(t, lisp.Value(struct{}{}).IsError(lisp.CondTypeError))
	assert.True(t, lisp.Value(errors.New("x")).IsError(lisp.CondError))
	assert.True(t, lisp.True(lisp.Int(0)))
	assert.False(t, lisp.True(lisp.Bool(false)))
}
