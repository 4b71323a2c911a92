// Copyright © 2018 The ELPS authors

package lisp

// True interprets v as a boolean and returns the result.  Only the value
// false is false.
func True(v *LVal) bool {
	return v.Type != LBool || v.Bool
}

// GoValue converts v to its natural representation in Go.  Proper lists are
// turned into slices and improper lists into a slice whose final element is
// the tail.  Symbols are converted to strings.  The value Nil() is converted
// to nil.  Callables are rendered as strings.
func GoValue(v *LVal) interface{} {
	switch v.Type {
	case LNil:
		return nil
	case LError:
		return GoError(v)
	case LSymbol, LString:
		return v.Str
	case LBool:
		return v.Bool
	case LInt:
		return v.Int
	case LFloat:
		return v.Float
	case LCons:
		s, _ := GoSlice(v)
		return s
	}
	return v.String()
}

// GoString returns the string that v represents and the value true.  If v does
// not represent a string GoString returns a false second argument
func GoString(v *LVal) (string, bool) {
	if v.Type != LString {
		return "", false
	}
	return v.Str, true
}

// SymbolName returns the name of the symbol that v represents and the value
// true.  If v does not represent a symbol SymbolName returns a false second
// argument
func SymbolName(v *LVal) (string, bool) {
	if v.Type != LSymbol {
		return "", false
	}
	return v.Str, true
}

// GoInt converts the numeric value that v represents to and int and returns it
// with the value true.  If v does not represent a number GoInt returns a
// false second argument
func GoInt(v *LVal) (int, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	if v.Type == LFloat {
		return int(v.Float), true
	}
	return v.Int, true
}

// GoFloat64 converts the numeric value that v represents to a float64 and
// returns it with the value true.  If v does not represent a number GoFloat64
// returns a false second argument
func GoFloat64(v *LVal) (float64, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	return toFloat(v), true
}

// GoSlice converts the list v to a slice of Go values and returns it with the
// value true.  If v is not a list GoSlice returns a false second argument.
func GoSlice(v *LVal) ([]interface{}, bool) {
	if v.Type != LCons && v.Type != LNil {
		return nil, false
	}
	vs := make([]interface{}, 0, 4)
	c := v
	for ; c.Type == LCons; c = c.Cells[1] {
		vs = append(vs, GoValue(c.Cells[0]))
	}
	if c.Type != LNil {
		vs = append(vs, GoValue(c))
	}
	return vs, true
}

// Value converts a Go value into an LVal.  Slices of interface{} become
// lists.  Values of other types produce a type-error.
func Value(x interface{}) *LVal {
	switch x := x.(type) {
	case nil:
		return Nil()
	case *LVal:
		return x
	case *ErrorVal:
		return (*LVal)(x)
	case bool:
		return Bool(x)
	case int:
		return Int(x)
	case int64:
		return Int(int(x))
	case float64:
		return Float(x)
	case string:
		return String(x)
	case []interface{}:
		cells := make([]*LVal, len(x))
		for i := range x {
			cells[i] = Value(x[i])
			if cells[i].Type == LError {
				return cells[i]
			}
		}
		return List(cells...)
	case error:
		return Error(x)
	}
	return ErrorConditionf(CondTypeError, "cannot convert go value of type %T", x)
}
