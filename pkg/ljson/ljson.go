// Package ljson serializes functions as text and turns that text back into
// callable values without ever evaluating host code.
//
// A function is serialized by calling it with placeholder arguments and
// recording how it uses them:
//
//	s := ljson.Stringify(func(x ljson.Value) ljson.Value { return x })
//	// s == "(v0)=>(v0)"
//
// Parse accepts only closed terms. Every name in the text must be bound by
// an enclosing lambda, so a parsed term can reach nothing the caller did
// not pass in. Functions that need host operations take an accessor as
// their first argument and are wrapped with WithLib or WithStdLib.
package ljson

import (
	"fmt"

	"github.com/funvibe/ljson/internal/config"
	"github.com/funvibe/ljson/internal/evaluator"
	"github.com/funvibe/ljson/internal/library"
	"github.com/funvibe/ljson/internal/parser"
	"github.com/funvibe/ljson/internal/reify"
	"github.com/funvibe/ljson/internal/term"
)

// Value is a runtime value: data, a materialized function, a host
// function, or a placeholder used while serializing.
type Value = evaluator.Object

// Lib maps primitive names to Go functions or Values. Go functions are
// bound by reflection and take as many arguments as they declare.
type Lib map[string]interface{}

var defaultMarshaller = NewMarshaller()

// Stringify serializes v. Go functions are serialized through their
// parameters; values with no textual form become null.
func Stringify(v interface{}) string {
	return reify.Stringify(ValueOf(v))
}

// ValueOf converts a Go value, yielding null when it cannot be converted.
func ValueOf(v interface{}) Value {
	obj, err := defaultMarshaller.ToValue(v)
	if err != nil {
		return evaluator.NIL
	}
	return obj
}

// Parse validates text and materializes it.
func Parse(text string) (Value, error) {
	t, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	return evaluator.Materialize(t, nil), nil
}

// UnsafeParse materializes text whose free names are resolved against
// globals when evaluated. Only use it for trusted text.
func UnsafeParse(text string, globals map[string]interface{}) (Value, error) {
	opts := parser.DefaultOptions()
	opts.AllowFree = true
	t, err := parser.ParseWith(text, opts)
	if err != nil {
		return nil, err
	}
	env := make(map[string]evaluator.Object, len(globals))
	for name, g := range globals {
		obj, err := defaultMarshaller.ToValue(g)
		if err != nil {
			return nil, fmt.Errorf("global %s: %w", name, err)
		}
		env[name] = obj
	}
	for _, name := range term.FreeVariables(t) {
		if _, ok := env[name]; !ok {
			return nil, fmt.Errorf("global %s is not provided", name)
		}
	}
	return evaluator.Materialize(t, env), nil
}

// Func builds a host function with an explicit arity. Arguments beyond
// arity are dropped and missing ones are null.
func Func(arity int, fn func(args ...Value) Value) Value {
	return &evaluator.Builtin{
		Name:     "func",
		ArgCount: arity,
		Fn: func(_ *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
			return fn(args...)
		},
	}
}

// Apply calls fn with Values. Failures are returned as error Values, which
// serialize as null.
func Apply(fn Value, args ...Value) Value {
	return evaluator.New().Apply(fn, args)
}

// Call converts args from Go, calls fn and converts the result back.
// Runtime errors are returned as *diagnostics.DiagnosticError.
func Call(fn Value, args ...interface{}) (interface{}, error) {
	objs := make([]evaluator.Object, len(args))
	for i, a := range args {
		obj, err := defaultMarshaller.ToValue(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		objs[i] = obj
	}
	result := evaluator.New().Apply(fn, objs)
	if errObj, ok := result.(*evaluator.Error); ok {
		return nil, errObj.Err()
	}
	return defaultMarshaller.FromValue(result, nil)
}

// WithLib passes an accessor for lib as the first argument of fn. The
// returned function takes one argument fewer than fn.
func WithLib(lib Lib, fn Value) (Value, error) {
	prims, err := lib.compile()
	if err != nil {
		return nil, err
	}
	return library.WithLib(prims, fn), nil
}

// WithStdLib is WithLib with the standard primitives.
func WithStdLib(fn Value) Value {
	return library.WithLib(library.Std(config.DefaultLoopLimit), fn)
}

// ParseWithLib parses text and attaches lib.
func ParseWithLib(lib Lib, text string) (Value, error) {
	fn, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return WithLib(lib, fn)
}

// ParseWithStdLib parses text and attaches the standard primitives.
func ParseWithStdLib(text string) (Value, error) {
	fn, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return WithStdLib(fn), nil
}

func (l Lib) compile() (library.Lib, error) {
	prims := make(library.Lib, len(l))
	for name, impl := range l {
		obj, err := defaultMarshaller.ToValue(impl)
		if err != nil {
			return nil, fmt.Errorf("primitive %s: %w", name, err)
		}
		if _, ok := obj.(evaluator.Callable); !ok {
			return nil, fmt.Errorf("primitive %s: %T is not a function", name, impl)
		}
		prims[name] = obj
	}
	return prims, nil
}
