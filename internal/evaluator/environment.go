package evaluator

// Environment holds the values of every enclosing binder, indexed by binder
// level: slot 0 is the outermost parameter. An Environment is never mutated
// once built, so closures may share it.
type Environment struct {
	slots []Object
}

func NewEnvironment() *Environment {
	return &Environment{}
}

// NewEnclosedEnvironment returns outer extended with one slot per value.
func NewEnclosedEnvironment(outer *Environment, values []Object) *Environment {
	n := 0
	if outer != nil {
		n = len(outer.slots)
	}
	slots := make([]Object, n, n+len(values))
	if outer != nil {
		copy(slots, outer.slots)
	}
	return &Environment{slots: append(slots, values...)}
}

// Get returns the value bound at level index.
func (e *Environment) Get(index int) (Object, bool) {
	if index < 0 || index >= len(e.slots) {
		return nil, false
	}
	return e.slots[index], true
}
