package evaluator

import (
	"strconv"
	"strings"
)

// Array is an ordered, immutable list of values.
type Array struct {
	Elements []Object
}

func NewArray(elements []Object) *Array {
	return &Array{Elements: elements}
}

func (a *Array) Type() ObjectType { return ARRAY_OBJ }
func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		parts[i] = el.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (a *Array) Len() int { return len(a.Elements) }

// RecordField is one key of a Record.
type RecordField struct {
	Key   string
	Value Object
}

// Record maps string keys to values in insertion order.
type Record struct {
	Fields []RecordField
}

// NewRecord builds a record from ordered fields. A repeated key keeps the
// position of its first occurrence and the value of its last.
func NewRecord(fields []RecordField) *Record {
	r := &Record{Fields: make([]RecordField, 0, len(fields))}
	for _, f := range fields {
		r.set(f.Key, f.Value)
	}
	return r
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = strconv.Quote(f.Key) + ": " + f.Value.Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get returns the value stored under key, or nil.
func (r *Record) Get(key string) Object {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

func (r *Record) set(key string, val Object) {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			r.Fields[i].Value = val
			return
		}
	}
	r.Fields = append(r.Fields, RecordField{Key: key, Value: val})
}
