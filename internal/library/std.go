package library

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/funvibe/ljson/internal/config"
	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/evaluator"
)

// Std returns the standard primitives. loop runs at most loopLimit
// iterations; loopLimit <= 0 means config.DefaultLoopLimit. When allow is
// non-empty only the named primitives are included.
func Std(loopLimit int, allow ...string) Lib {
	if loopLimit <= 0 {
		loopLimit = config.DefaultLoopLimit
	}
	all := Lib{
		config.PrimAdd:    builtin(config.PrimAdd, 2, primAdd),
		config.PrimSub:    arith(config.PrimSub, func(a, b float64) float64 { return a - b }),
		config.PrimMul:    arith(config.PrimMul, func(a, b float64) float64 { return a * b }),
		config.PrimDiv:    arith(config.PrimDiv, func(a, b float64) float64 { return a / b }),
		config.PrimMod:    arith(config.PrimMod, math.Mod),
		config.PrimSqrt:   builtin(config.PrimSqrt, 1, primSqrt),
		config.PrimEq:     builtin(config.PrimEq, 2, primEq),
		config.PrimNeq:    builtin(config.PrimNeq, 2, primNeq),
		config.PrimLt:     compare(config.PrimLt, func(c int) bool { return c < 0 }),
		config.PrimLte:    compare(config.PrimLte, func(c int) bool { return c <= 0 }),
		config.PrimGt:     compare(config.PrimGt, func(c int) bool { return c > 0 }),
		config.PrimGte:    compare(config.PrimGte, func(c int) bool { return c >= 0 }),
		config.PrimNot:    builtin(config.PrimNot, 1, primNot),
		config.PrimNeg:    builtin(config.PrimNeg, 1, primNeg),
		config.PrimLength: builtin(config.PrimLength, 1, primLength),
		config.PrimGet:    builtin(config.PrimGet, 2, primGet),
		config.PrimConcat: builtin(config.PrimConcat, -1, primConcat),
		config.PrimIf:     builtin(config.PrimIf, 3, primIf),
		config.PrimLoop:   builtin(config.PrimLoop, 3, primLoop(loopLimit)),
	}
	if len(allow) == 0 {
		return all
	}
	lib := make(Lib, len(allow))
	for _, name := range allow {
		if prim, ok := all[name]; ok {
			lib[name] = prim
		}
	}
	return lib
}

func builtin(name string, arity int, fn evaluator.BuiltinFunction) *evaluator.Builtin {
	return &evaluator.Builtin{Name: name, ArgCount: arity, Fn: fn}
}

func badArgs(name string, args ...evaluator.Object) *evaluator.Error {
	types := make([]interface{}, len(args))
	for i, a := range args {
		types[i] = a.Type()
	}
	return evaluator.NewError(diagnostics.ErrR003, fmt.Sprintf("%s: unsupported arguments %v", name, types))
}

func arith(name string, op func(a, b float64) float64) *evaluator.Builtin {
	return builtin(name, 2, func(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
		a, okA := args[0].(*evaluator.Number)
		b, okB := args[1].(*evaluator.Number)
		if !okA || !okB {
			return badArgs(name, args...)
		}
		return &evaluator.Number{Value: op(a.Value, b.Value)}
	})
}

func primAdd(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
	switch a := args[0].(type) {
	case *evaluator.Number:
		if b, ok := args[1].(*evaluator.Number); ok {
			return &evaluator.Number{Value: a.Value + b.Value}
		}
	case *evaluator.String:
		if b, ok := args[1].(*evaluator.String); ok {
			return &evaluator.String{Value: a.Value + b.Value}
		}
	}
	return badArgs(config.PrimAdd, args...)
}

func primSqrt(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
	x, ok := args[0].(*evaluator.Number)
	if !ok {
		return badArgs(config.PrimSqrt, args...)
	}
	return &evaluator.Number{Value: math.Sqrt(x.Value)}
}

func primEq(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
	return evaluator.NewBoolean(evaluator.Equal(args[0], args[1]))
}

func primNeq(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
	return evaluator.NewBoolean(!evaluator.Equal(args[0], args[1]))
}

// compare orders two numbers or two strings.
func compare(name string, test func(int) bool) *evaluator.Builtin {
	return builtin(name, 2, func(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
		var c int
		switch a := args[0].(type) {
		case *evaluator.Number:
			b, ok := args[1].(*evaluator.Number)
			if !ok {
				return badArgs(name, args...)
			}
			if a.Value != a.Value || b.Value != b.Value {
				return evaluator.FALSE
			}
			c = cmp(a.Value < b.Value, a.Value > b.Value)
		case *evaluator.String:
			b, ok := args[1].(*evaluator.String)
			if !ok {
				return badArgs(name, args...)
			}
			c = cmp(a.Value < b.Value, a.Value > b.Value)
		default:
			return badArgs(name, args...)
		}
		return evaluator.NewBoolean(test(c))
	})
}

func cmp(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func primNot(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
	return evaluator.NewBoolean(!evaluator.Truthy(args[0]))
}

func primNeg(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
	x, ok := args[0].(*evaluator.Number)
	if !ok {
		return badArgs(config.PrimNeg, args...)
	}
	return &evaluator.Number{Value: -x.Value}
}

func primLength(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
	switch x := args[0].(type) {
	case *evaluator.String:
		return &evaluator.Number{Value: float64(utf8.RuneCountInString(x.Value))}
	case *evaluator.Array:
		return &evaluator.Number{Value: float64(x.Len())}
	case *evaluator.Record:
		return &evaluator.Number{Value: float64(len(x.Fields))}
	}
	return badArgs(config.PrimLength, args...)
}

// primGet indexes an array by number or a record by key. Missing entries
// are null.
func primGet(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
	switch c := args[0].(type) {
	case *evaluator.Array:
		idx, ok := args[1].(*evaluator.Number)
		if !ok {
			return badArgs(config.PrimGet, args...)
		}
		i := int(idx.Value)
		if float64(i) != idx.Value || i < 0 || i >= c.Len() {
			return evaluator.NIL
		}
		return c.Elements[i]
	case *evaluator.Record:
		key, ok := args[1].(*evaluator.String)
		if !ok {
			return badArgs(config.PrimGet, args...)
		}
		if val := c.Get(key.Value); val != nil {
			return val
		}
		return evaluator.NIL
	}
	return badArgs(config.PrimGet, args...)
}

// primConcat joins strings or arrays. All arguments must be the same kind.
func primConcat(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
	if len(args) == 0 {
		return &evaluator.String{}
	}
	switch args[0].(type) {
	case *evaluator.String:
		var out string
		for _, a := range args {
			s, ok := a.(*evaluator.String)
			if !ok {
				return badArgs(config.PrimConcat, args...)
			}
			out += s.Value
		}
		return &evaluator.String{Value: out}
	case *evaluator.Array:
		var out []evaluator.Object
		for _, a := range args {
			arr, ok := a.(*evaluator.Array)
			if !ok {
				return badArgs(config.PrimConcat, args...)
			}
			out = append(out, arr.Elements...)
		}
		return evaluator.NewArray(out)
	}
	return badArgs(config.PrimConcat, args...)
}

// primIf selects between two already evaluated values. Pass thunks and
// call the result to delay work.
func primIf(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
	if evaluator.Truthy(args[0]) {
		return args[1]
	}
	return args[2]
}

// primLoop applies update to state limit times, capped at maxIter.
func primLoop(maxIter int) evaluator.BuiltinFunction {
	return func(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
		n, ok := args[0].(*evaluator.Number)
		if !ok {
			return badArgs(config.PrimLoop, args...)
		}
		limit := maxIter
		if n.Value != n.Value {
			limit = 0
		} else if n.Value < float64(maxIter) {
			limit = int(n.Value)
		}
		state := args[1]
		for i := 0; i < limit; i++ {
			state = e.Apply(args[2], []evaluator.Object{state})
			if evaluator.IsError(state) {
				return state
			}
		}
		return state
	}
}
