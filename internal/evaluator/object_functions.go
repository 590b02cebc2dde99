package evaluator

import (
	"fmt"
	"strings"

	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/term"
)

// Function is a materialized lambda: its parameters, body and the
// environment captured where it was created.
type Function struct {
	Params []string
	Body   term.Term
	Env    *Environment
	// Evaluator the function was created by. Call forks it.
	Eval *Evaluator
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	return fmt.Sprintf("fn(%s) { ... }", strings.Join(f.Params, ", "))
}

func (f *Function) Arity() int { return len(f.Params) }

func (f *Function) Call(args []Object) Object {
	e := f.Eval
	if e == nil {
		e = New()
	}
	return e.Fork().Apply(f, args)
}

// BuiltinFunction receives the running evaluator so it can apply
// callbacks without resetting the depth budget.
type BuiltinFunction func(e *Evaluator, args ...Object) Object

// Builtin is a host-provided primitive.
type Builtin struct {
	Name     string
	ArgCount int // negative: variadic
	Fn       BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "builtin function " + b.Name }

func (b *Builtin) Arity() int { return b.ArgCount }

func (b *Builtin) Call(args []Object) Object {
	return New().Apply(b, args)
}

// Error is a runtime failure travelling through evaluation as a value.
type Error struct {
	Code    diagnostics.ErrorCode
	Message string
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "ERROR [" + string(e.Code) + "]: " + e.Message }

// Err converts the error object into a DiagnosticError.
func (e *Error) Err() *diagnostics.DiagnosticError {
	return &diagnostics.DiagnosticError{Code: e.Code, Message: e.Message}
}
