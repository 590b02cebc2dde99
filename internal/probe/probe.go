// Package probe implements the symbolic stand-in values the reifier passes
// to functions in place of real arguments.
//
// A probe starts as a bare variable. Applying it records the normalized
// argument list and yields a new probe; the original is unchanged, so a
// probe can be applied along several independent paths. Force ends the
// chain and returns the accumulated application term.
package probe

import (
	"github.com/funvibe/ljson/internal/evaluator"
	"github.com/funvibe/ljson/internal/term"
)

const PROBE_OBJ = "PROBE"

// Normalizer converts an argument value into a term when a probe is applied.
type Normalizer func(evaluator.Object) term.Term

type Probe struct {
	variable  *term.Variable
	calls     [][]term.Term
	normalize Normalizer
}

// New returns an unapplied probe for the variable name bound at index.
func New(name string, index int, normalize Normalizer) *Probe {
	return &Probe{
		variable:  &term.Variable{Name: name, Index: index},
		normalize: normalize,
	}
}

func (p *Probe) Type() evaluator.ObjectType { return PROBE_OBJ }
func (p *Probe) Inspect() string            { return p.Force().String() }

// Arity is negative: a probe accepts any number of arguments.
func (p *Probe) Arity() int { return -1 }

func (p *Probe) Call(args []evaluator.Object) evaluator.Object {
	return p.Apply(args...)
}

// Apply records one call. Each argument is normalized now, in order.
func (p *Probe) Apply(args ...evaluator.Object) *Probe {
	terms := make([]term.Term, len(args))
	for i, arg := range args {
		if p.normalize != nil {
			terms[i] = p.normalize(arg)
		} else {
			terms[i] = term.Null
		}
	}
	calls := make([][]term.Term, len(p.calls), len(p.calls)+1)
	copy(calls, p.calls)
	return &Probe{
		variable:  p.variable,
		calls:     append(calls, terms),
		normalize: p.normalize,
	}
}

// Force returns the variable applied to every recorded argument list.
func (p *Probe) Force() term.Term {
	return term.Apply(p.variable, p.calls...)
}

var _ evaluator.Callable = (*Probe)(nil)
