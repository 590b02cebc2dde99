// Package library attaches named host primitives to a materialized
// function through a reserved first argument, the accessor.
//
// A function written against a library takes the accessor first:
//
//	($,x)=>($("*",x,x))
//
// WithLib supplies the accessor, so callers see a one-argument function.
package library

import (
	"sort"

	"github.com/funvibe/ljson/internal/config"
	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/evaluator"
)

// Lib maps primitive names to callables.
type Lib map[string]evaluator.Object

// Names returns the primitive names in sorted order.
func (l Lib) Names() []string {
	names := make([]string, 0, len(l))
	for name := range l {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Accessor returns the callable passed as the reserved first argument.
// Its first argument names the primitive and the rest are forwarded.
func (l Lib) Accessor() *evaluator.Builtin {
	return &evaluator.Builtin{
		Name:     config.AccessorName,
		ArgCount: -1,
		Fn: func(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
			if len(args) == 0 {
				return evaluator.NewError(diagnostics.ErrR003, "accessor needs a primitive name")
			}
			name, ok := args[0].(*evaluator.String)
			if !ok {
				return evaluator.NewError(diagnostics.ErrR003, "primitive name must be a string, got "+args[0].Inspect())
			}
			prim, ok := l[name.Value]
			if !ok {
				return evaluator.NewError(diagnostics.ErrR002, name.Value)
			}
			return e.Apply(prim, args[1:])
		},
	}
}

// WithLib wraps fn so that the accessor for lib is passed as its first
// argument. The result takes one argument fewer than fn.
func WithLib(lib Lib, fn evaluator.Object) *evaluator.Builtin {
	arity := -1
	if c, ok := fn.(evaluator.Callable); ok && c.Arity() >= 0 {
		arity = c.Arity() - 1
		if arity < 0 {
			arity = 0
		}
	}
	accessor := lib.Accessor()
	return &evaluator.Builtin{
		Name:     "withLib",
		ArgCount: arity,
		Fn: func(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
			full := make([]evaluator.Object, 0, len(args)+1)
			full = append(full, accessor)
			full = append(full, args...)
			return e.Apply(fn, full)
		},
	}
}

// FromSettings builds the library selected by the library section of
// ljson.yaml.
func FromSettings(s config.Library) Lib {
	if !s.UseStd() {
		return Lib{}
	}
	return Std(s.LoopLimit, s.Allow...)
}
