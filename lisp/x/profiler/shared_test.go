// Copyright © 2018 The ELPS authors

package profiler_test

const testLisp = `
(defun add-it (x y)
  (+ x y))

(defun recurse-it (x)
  (if (< x 4)
    (add-it x 3)
    (recurse-it (- x 1))))

(recurse-it 5)
`
