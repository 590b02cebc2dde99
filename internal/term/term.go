// Package term defines the symbolic representation exchanged between the
// reifier, the parser and the evaluator.
//
// A term is one of:
//
//	Literal      null, true, 7.5, "text"
//	Sequence     [t0,t1,...]
//	Record       {"k0":t0,"k1":t1,...}
//	Lambda       (v0,v1)=>(body)
//	Variable     v0
//	Application  v0(a,b)(c)
//
// Terms are trees and are never mutated after construction.
package term

type Kind string

const (
	LITERAL     Kind = "LITERAL"
	SEQUENCE    Kind = "SEQUENCE"
	RECORD      Kind = "RECORD"
	LAMBDA      Kind = "LAMBDA"
	VARIABLE    Kind = "VARIABLE"
	APPLICATION Kind = "APPLICATION"
)

// Term is the base interface for all term nodes.
type Term interface {
	Kind() Kind
	// String renders the term in its canonical text form.
	String() string
	render(b *builder)
}

// Literal wraps a unit value: nil, bool, float64 or string.
type Literal struct {
	Value interface{}
}

func (l *Literal) Kind() Kind { return LITERAL }

// Sequence is an ordered list of terms.
type Sequence struct {
	Items []Term
}

func (s *Sequence) Kind() Kind { return SEQUENCE }

// Field is one key of a Record.
type Field struct {
	Key   string
	Value Term
}

// Record maps string keys to terms, in insertion order.
type Record struct {
	Fields []Field
}

func (r *Record) Kind() Kind { return RECORD }

// Get returns the value stored under key.
func (r *Record) Get(key string) (Term, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Lambda binds Params inside Body.
type Lambda struct {
	Params []string
	Body   Term
}

func (l *Lambda) Kind() Kind { return LAMBDA }

// Variable references a binder by name.
// Index is the binder level assigned by the parser, or -1 for a name that
// no enclosing lambda binds (only produced in unsafe mode).
type Variable struct {
	Name  string
	Index int
}

func (v *Variable) Kind() Kind { return VARIABLE }

// IsFree reports whether no enclosing lambda binds v.
func (v *Variable) IsFree() bool { return v.Index < 0 }

// Application applies Func (a Variable or another Application) to one
// argument list. Curried chains nest: f(a,b)(c) is
// Application{Application{f, [a b]}, [c]}.
type Application struct {
	Func Term
	Args []Term
}

func (a *Application) Kind() Kind { return APPLICATION }

var (
	Null  = &Literal{Value: nil}
	True  = &Literal{Value: true}
	False = &Literal{Value: false}
)

func NewNumber(f float64) *Literal { return &Literal{Value: f} }

func NewString(s string) *Literal { return &Literal{Value: s} }

func NewBool(b bool) *Literal {
	if b {
		return True
	}
	return False
}

// Apply builds the application chain fn(calls[0])(calls[1])...
// With no calls it returns fn unchanged.
func Apply(fn Term, calls ...[]Term) Term {
	for _, args := range calls {
		fn = &Application{Func: fn, Args: args}
	}
	return fn
}

// FreeVariables returns the names of all free variables in t, in order of
// first appearance.
func FreeVariables(t Term) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Term)
	walk = func(t Term) {
		switch n := t.(type) {
		case *Sequence:
			for _, item := range n.Items {
				walk(item)
			}
		case *Record:
			for _, f := range n.Fields {
				walk(f.Value)
			}
		case *Lambda:
			walk(n.Body)
		case *Variable:
			if n.IsFree() && !seen[n.Name] {
				seen[n.Name] = true
				names = append(names, n.Name)
			}
		case *Application:
			walk(n.Func)
			for _, arg := range n.Args {
				walk(arg)
			}
		}
	}
	walk(t)
	return names
}
