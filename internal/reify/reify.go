// Package reify converts runtime values into terms by applying every
// function to probes and normalizing whatever comes back.
package reify

import (
	"strconv"

	"github.com/funvibe/ljson/internal/config"
	"github.com/funvibe/ljson/internal/evaluator"
	"github.com/funvibe/ljson/internal/probe"
	"github.com/funvibe/ljson/internal/term"
)

// Reifier holds the state of one reification pass. It is not safe for
// concurrent use; create one per value.
type Reifier struct {
	// MaxDepth bounds the nesting of normalized values. Anything deeper
	// renders as null. 0 disables the limit.
	MaxDepth int

	nextID int // next fresh variable number
	level  int // binders enclosing the value being normalized
	depth  int
}

func New() *Reifier {
	return &Reifier{MaxDepth: config.DefaultMaxDepth}
}

// Reify normalizes obj with a fresh Reifier.
func Reify(obj evaluator.Object) term.Term {
	return New().Normalize(obj)
}

// Stringify renders obj as term text.
func Stringify(obj evaluator.Object) string {
	return Reify(obj).String()
}

// Normalize converts obj into a term. Values with no term form (host
// objects, runtime errors) become null.
func (r *Reifier) Normalize(obj evaluator.Object) term.Term {
	r.depth++
	defer func() { r.depth-- }()
	if r.MaxDepth > 0 && r.depth > r.MaxDepth {
		return term.Null
	}

	switch o := obj.(type) {
	case nil:
		return term.Null
	case *probe.Probe:
		return o.Force()
	case evaluator.Callable:
		return r.lambda(o)
	case *evaluator.Array:
		items := make([]term.Term, len(o.Elements))
		for i, el := range o.Elements {
			items[i] = r.Normalize(el)
		}
		return &term.Sequence{Items: items}
	case *evaluator.Record:
		fields := make([]term.Field, len(o.Fields))
		for i, f := range o.Fields {
			fields[i] = term.Field{Key: f.Key, Value: r.Normalize(f.Value)}
		}
		return &term.Record{Fields: fields}
	case *evaluator.Boolean:
		return term.NewBool(o.Value)
	case *evaluator.Number:
		return term.NewNumber(o.Value)
	case *evaluator.String:
		return term.NewString(o.Value)
	}
	return term.Null
}

func (r *Reifier) lambda(fn evaluator.Callable) term.Term {
	n := fn.Arity()
	if n < 0 {
		n = 0
	}
	params := make([]string, n)
	args := make([]evaluator.Object, n)
	for i := 0; i < n; i++ {
		name := config.VarPrefix + strconv.Itoa(r.nextID)
		r.nextID++
		params[i] = name
		args[i] = probe.New(name, r.level+i, r.Normalize)
	}

	r.level += n
	defer func() { r.level -= n }()

	body := r.Normalize(fn.Call(args))
	return &term.Lambda{Params: params, Body: body}
}
