package evaluator

type ObjectType string

const (
	NIL_OBJ      = "NIL"
	BOOLEAN_OBJ  = "BOOLEAN"
	NUMBER_OBJ   = "NUMBER"
	STRING_OBJ   = "STRING"
	ARRAY_OBJ    = "ARRAY"
	RECORD_OBJ   = "RECORD"
	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"
	ERROR_OBJ    = "ERROR"
	HOST_OBJ     = "HOST" // Opaque Go value, never serialized
)

type Object interface {
	Type() ObjectType
	Inspect() string
}

// Callable is implemented by every value that can be applied to arguments.
// Arity is the declared parameter count; a negative arity accepts any number
// of arguments.
type Callable interface {
	Object
	Arity() int
	// Call applies the value in a fresh evaluation.
	Call(args []Object) Object
}

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// NewBoolean returns the shared Boolean for b.
func NewBoolean(b bool) *Boolean {
	return nativeBoolToBooleanObject(b)
}
