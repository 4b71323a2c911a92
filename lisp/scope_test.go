// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"testing"

	"github.com/iBelieve/rasp/rasptest"
)

func TestScope(t *testing.T) {
	tests := rasptest.TestSuite{
		{"lexical scope", rasptest.TestSequence{
			// simple lexical scoping tests
			{"(let ((x 1)) x)", "1", ""},
			{"x", "test:1:1: unbound-symbol: unbound symbol: x", ""},
			{"(set x 1)", "nil", ""},
			{"(let ((x 2)) x)", "2", ""},
			{"x", "1", ""},
			{"(set fn (let ((x 3)) (defun add-x (y) (+ x y)) add-x))", "nil", ""},
			{"(let ((x 2)) (fn 2))", "5", ""},
			{"add-x", "test:1:1: unbound-symbol: unbound symbol: add-x", ""},
		}},
		{"dynamic callers are not visible", rasptest.TestSequence{
			{"(defun get-y () y)", "nil", ""},
			{"(let ((y 1)) (get-y))", "test:1:17: unbound-symbol: unbound symbol: y", ""},
		}},
		{"set binds locally", rasptest.TestSequence{
			{"(set x 1)", "nil", ""},
			{"(defun local () (set x 2) x)", "nil", ""},
			{"(local)", "2", ""},
			{"x", "1", ""},
			{"(let ((y 1)) (set y 5) y)", "5", ""},
		}},
		{"special operators", rasptest.TestSequence{
			{"(let ((x 1) (y 2)) (if (< x y) (+ x y) y))", "3", ""},
			{"(let ((x 1)) (let ((x 2) (y x)) (list x y)))", "(2 1)", ""},
		}},
		{"docs", rasptest.TestSequence{
			{"(let ((x 1) (y 2)) (defun add-y (x) (+ x y)))", "nil", ""},
			{"(let ((x 1) (y 2)) (add-y 3))", "test:1:21: unbound-symbol: unbound symbol: add-y", ""},
		}},
	}
	rasptest.RunTestSuite(t, tests)
}
