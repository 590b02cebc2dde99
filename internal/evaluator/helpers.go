package evaluator

import (
	"github.com/funvibe/ljson/internal/diagnostics"
)

func newError(code diagnostics.ErrorCode, args ...interface{}) *Error {
	d := diagnostics.NewError(code, diagnostics.Position{}, "", args...)
	return &Error{Code: code, Message: d.Message}
}

// NewError builds a runtime error object from a diagnostics template.
func NewError(code diagnostics.ErrorCode, args ...interface{}) *Error {
	return newError(code, args...)
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

// IsError reports whether obj is a runtime error.
func IsError(obj Object) bool { return isError(obj) }

func literalToObject(v interface{}) Object {
	switch val := v.(type) {
	case nil:
		return NIL
	case bool:
		return nativeBoolToBooleanObject(val)
	case float64:
		return &Number{Value: val}
	case string:
		return &String{Value: val}
	default:
		return &HostObject{Value: v}
	}
}

// Truthy follows JSON-ish truthiness: null, false, 0, "" and NaN are false.
func Truthy(obj Object) bool {
	switch o := obj.(type) {
	case *Nil:
		return false
	case *Boolean:
		return o.Value
	case *Number:
		return o.Value != 0 && o.Value == o.Value
	case *String:
		return o.Value != ""
	case *Error:
		return false
	default:
		return true
	}
}

// Equal compares data values structurally. Functions and host values are
// equal only to themselves.
func Equal(a, b Object) bool {
	switch x := a.(type) {
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.Value == y.Value
	case *Number:
		y, ok := b.(*Number)
		return ok && x.Value == y.Value
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Record:
		y, ok := b.(*Record)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for _, f := range x.Fields {
			other := y.Get(f.Key)
			if other == nil || !Equal(f.Value, other) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
