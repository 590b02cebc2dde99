// Package evaluator materializes terms into callable runtime values by
// interpreting them directly over a level-indexed environment.
package evaluator

import (
	"context"

	"github.com/funvibe/ljson/internal/config"
	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/term"
)

type Evaluator struct {
	// Context for cancellation
	Context context.Context

	// MaxDepth bounds the nesting of Eval calls. 0 disables the limit.
	MaxDepth int

	// Globals resolves free variables, which only unsafe parsing produces.
	Globals map[string]Object

	depth int
}

func New() *Evaluator {
	return &Evaluator{
		Context:  context.Background(),
		MaxDepth: config.DefaultMaxEvalDepth,
	}
}

// Fork returns an evaluator with the same settings and a fresh depth count.
func (e *Evaluator) Fork() *Evaluator {
	return &Evaluator{
		Context:  e.Context,
		MaxDepth: e.MaxDepth,
		Globals:  e.Globals, // shared, read-only
	}
}

// Materialize evaluates a closed term (or, with globals, an unsafe one)
// in an empty environment.
func Materialize(t term.Term, globals map[string]Object) Object {
	e := New()
	e.Globals = globals
	return e.Materialize(t)
}

func (e *Evaluator) Materialize(t term.Term) Object {
	return e.Eval(t, NewEnvironment())
}

func (e *Evaluator) Eval(node term.Term, env *Environment) Object {
	e.depth++
	defer func() { e.depth-- }()
	if e.MaxDepth > 0 && e.depth > e.MaxDepth {
		return newError(diagnostics.ErrR004, e.MaxDepth)
	}
	if e.Context != nil {
		if err := e.Context.Err(); err != nil {
			return newError(diagnostics.ErrR006, err)
		}
	}

	switch node := node.(type) {
	case *term.Literal:
		return literalToObject(node.Value)

	case *term.Sequence:
		elements := make([]Object, len(node.Items))
		for i, item := range node.Items {
			val := e.Eval(item, env)
			if isError(val) {
				return val
			}
			elements[i] = val
		}
		return &Array{Elements: elements}

	case *term.Record:
		fields := make([]RecordField, len(node.Fields))
		for i, f := range node.Fields {
			val := e.Eval(f.Value, env)
			if isError(val) {
				return val
			}
			fields[i] = RecordField{Key: f.Key, Value: val}
		}
		return NewRecord(fields)

	case *term.Lambda:
		return &Function{Params: node.Params, Body: node.Body, Env: env, Eval: e}

	case *term.Variable:
		return e.evalVariable(node, env)

	case *term.Application:
		fn := e.Eval(node.Func, env)
		if isError(fn) {
			return fn
		}
		args, errObj := e.evalArgs(node.Args, env)
		if errObj != nil {
			return errObj
		}
		return e.Apply(fn, args)
	}

	return newError(diagnostics.ErrR003, "cannot evaluate term")
}

func (e *Evaluator) evalVariable(node *term.Variable, env *Environment) Object {
	if node.IsFree() {
		if val, ok := e.Globals[node.Name]; ok {
			return val
		}
		return newError(diagnostics.ErrR005, node.Name)
	}
	if val, ok := env.Get(node.Index); ok {
		return val
	}
	return newError(diagnostics.ErrR005, node.Name)
}

func (e *Evaluator) evalArgs(items []term.Term, env *Environment) ([]Object, Object) {
	args := make([]Object, len(items))
	for i, item := range items {
		val := e.Eval(item, env)
		if isError(val) {
			return nil, val
		}
		args[i] = val
	}
	return args, nil
}
