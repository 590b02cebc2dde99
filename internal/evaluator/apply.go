package evaluator

import (
	"github.com/funvibe/ljson/internal/diagnostics"
)

// Apply calls fn with args. Missing arguments are null and extra
// arguments are dropped, except for variadic callables which see all of
// them.
func (e *Evaluator) Apply(fn Object, args []Object) Object {
	switch fn := fn.(type) {
	case *Function:
		env := NewEnclosedEnvironment(fn.Env, fitArgs(args, len(fn.Params)))
		return e.Eval(fn.Body, env)

	case *Builtin:
		if fn.ArgCount >= 0 {
			args = fitArgs(args, fn.ArgCount)
		}
		result := fn.Fn(e, args...)
		if result == nil {
			return NIL
		}
		return result

	case Callable:
		result := fn.Call(args)
		if result == nil {
			return NIL
		}
		return result

	case *Error:
		return fn
	}

	if fn == nil {
		return newError(diagnostics.ErrR001, "null")
	}
	return newError(diagnostics.ErrR001, fn.Inspect())
}

// fitArgs pads args with null or truncates them to exactly n values.
func fitArgs(args []Object, n int) []Object {
	if len(args) == n {
		return args
	}
	out := make([]Object, n)
	copy(out, args)
	for i := len(args); i < n; i++ {
		out[i] = NIL
	}
	return out
}
