package parser

// scope is an immutable chain of bindings from source names to binder
// levels. Extending it never affects the scopes it was built from, so
// sibling lambdas see only their own parameters.
type scope struct {
	name  string
	index int
	outer *scope
}

// bind returns s extended with name at index.
func (s *scope) bind(name string, index int) *scope {
	return &scope{name: name, index: index, outer: s}
}

// lookup finds the innermost binding of name.
func (s *scope) lookup(name string) (int, bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if cur.name == name {
			return cur.index, true
		}
	}
	return 0, false
}
