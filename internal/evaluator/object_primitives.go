package evaluator

import (
	"fmt"
	"strconv"
)

// Nil
type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "null" }

// Boolean
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }

// Number is a JSON number.
type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// String
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return strconv.Quote(s.Value) }

// HostObject wraps a Go value the term language cannot represent.
// It can be passed through functions but reifies to null.
type HostObject struct {
	Value interface{}
}

func (h *HostObject) Type() ObjectType { return HOST_OBJ }
func (h *HostObject) Inspect() string  { return fmt.Sprintf("<host %T>", h.Value) }
