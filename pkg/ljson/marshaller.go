package ljson

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/evaluator"
)

var (
	valueType = reflect.TypeOf((*evaluator.Object)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	timeType  = reflect.TypeOf(time.Time{})
)

// Marshaller handles conversion between Go and ljson values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a Value.
//
// Numbers, bools, strings, slices, string-keyed maps and structs convert
// structurally. Go functions become callables whose arity is their
// parameter count. Pointers, channels and time values are kept as opaque
// host objects, which serialize as null.
func (m *Marshaller) ToValue(val interface{}) (Value, error) {
	if val == nil {
		return evaluator.NIL, nil
	}

	// Check if already a Value
	if obj, ok := val.(evaluator.Object); ok {
		return obj, nil
	}

	v := reflect.ValueOf(val)
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return evaluator.NIL, nil
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &evaluator.Number{Value: float64(v.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &evaluator.Number{Value: float64(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return &evaluator.Number{Value: v.Float()}, nil
	case reflect.Bool:
		return evaluator.NewBoolean(v.Bool()), nil
	case reflect.String:
		return &evaluator.String{Value: v.String()}, nil
	case reflect.Slice:
		if v.IsNil() {
			return evaluator.NIL, nil
		}
		return m.sliceToArray(v)
	case reflect.Array:
		return m.sliceToArray(v)
	case reflect.Map:
		if v.IsNil() {
			return evaluator.NIL, nil
		}
		return m.mapToRecord(v)
	case reflect.Struct:
		if v.Type() == timeType {
			return &evaluator.HostObject{Value: val}, nil
		}
		// Struct by value -> Record (copy)
		return m.structToRecord(v)
	case reflect.Func:
		if v.IsNil() {
			return evaluator.NIL, nil
		}
		return m.funcToBuiltin(v), nil
	case reflect.Ptr:
		if v.IsNil() {
			return evaluator.NIL, nil
		}
		// Pointer -> HostObject (reference)
		return &evaluator.HostObject{Value: val}, nil
	default:
		return &evaluator.HostObject{Value: val}, nil
	}
}

// FromValue converts a Value to a Go value.
// targetType is optional; if provided, tries to convert to that type.
func (m *Marshaller) FromValue(obj Value, targetType reflect.Type) (interface{}, error) {
	if obj == nil {
		return nil, nil
	}

	// If target type is Value, return as is
	if targetType != nil && targetType == valueType {
		return obj, nil
	}

	switch o := obj.(type) {
	case *evaluator.Nil:
		return nil, nil
	case *evaluator.Number:
		if targetType != nil {
			switch targetType.Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
				reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
				reflect.Float32, reflect.Float64:
				return reflect.ValueOf(o.Value).Convert(targetType).Interface(), nil
			case reflect.Interface:
			default:
				return nil, fmt.Errorf("cannot convert number to %s", targetType)
			}
		}
		return o.Value, nil
	case *evaluator.Boolean:
		return o.Value, nil
	case *evaluator.String:
		return o.Value, nil
	case *evaluator.Array:
		return m.arrayToSlice(o, targetType)
	case *evaluator.Record:
		if targetType != nil && targetType.Kind() == reflect.Struct {
			return m.recordToStruct(o, targetType)
		}
		if targetType != nil && targetType.Kind() == reflect.Map {
			return m.recordToGoMap(o, targetType)
		}
		// Default to map[string]interface{}
		return m.recordToMap(o)
	case *evaluator.HostObject:
		return o.Value, nil
	case *evaluator.Error:
		return nil, o.Err()
	default:
		if _, ok := obj.(evaluator.Callable); ok {
			return obj, nil
		}
		return nil, fmt.Errorf("unsupported type for conversion: %s", o.Type())
	}
}

func (m *Marshaller) sliceToArray(v reflect.Value) (*evaluator.Array, error) {
	elements := make([]evaluator.Object, v.Len())
	for i := 0; i < v.Len(); i++ {
		val, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		elements[i] = val
	}
	return evaluator.NewArray(elements), nil
}

// mapToRecord sorts keys so the resulting record is deterministic.
func (m *Marshaller) mapToRecord(v reflect.Value) (*evaluator.Record, error) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("map key must be a string, got %s", v.Type().Key())
	}
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	fields := make([]evaluator.RecordField, 0, len(keys))
	for _, k := range keys {
		val, err := m.ToValue(v.MapIndex(k).Interface())
		if err != nil {
			return nil, fmt.Errorf("map value %q: %w", k.String(), err)
		}
		fields = append(fields, evaluator.RecordField{Key: k.String(), Value: val})
	}
	return evaluator.NewRecord(fields), nil
}

func (m *Marshaller) structToRecord(v reflect.Value) (*evaluator.Record, error) {
	t := v.Type()
	fields := make([]evaluator.RecordField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" { // Skip unexported fields
			continue
		}
		name, skip := fieldName(field)
		if skip {
			continue
		}
		val, err := m.ToValue(v.Field(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		fields = append(fields, evaluator.RecordField{Key: name, Value: val})
	}
	return evaluator.NewRecord(fields), nil
}

// fieldName honours the json tag so records match encoding/json output.
func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return f.Name, false
}

func (m *Marshaller) arrayToSlice(a *evaluator.Array, targetType reflect.Type) (interface{}, error) {
	// If targetType is nil, default to []interface{}
	elemType := reflect.TypeOf((*interface{})(nil)).Elem()
	if targetType != nil && targetType.Kind() == reflect.Slice {
		elemType = targetType.Elem()
	}

	slice := reflect.MakeSlice(reflect.SliceOf(elemType), 0, a.Len())
	for _, el := range a.Elements {
		rv, err := m.convert(el, elemType)
		if err != nil {
			return nil, err
		}
		slice = reflect.Append(slice, rv)
	}
	return slice.Interface(), nil
}

func (m *Marshaller) recordToMap(r *evaluator.Record) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(r.Fields))
	for _, f := range r.Fields {
		val, err := m.FromValue(f.Value, nil)
		if err != nil {
			return nil, err
		}
		result[f.Key] = val
	}
	return result, nil
}

func (m *Marshaller) recordToGoMap(r *evaluator.Record, targetType reflect.Type) (interface{}, error) {
	if targetType.Key().Kind() != reflect.String {
		return nil, fmt.Errorf("cannot convert record to %s", targetType)
	}
	result := reflect.MakeMapWithSize(targetType, len(r.Fields))
	for _, f := range r.Fields {
		vv, err := m.convert(f.Value, targetType.Elem())
		if err != nil {
			return nil, fmt.Errorf("record field %q: %w", f.Key, err)
		}
		result.SetMapIndex(reflect.ValueOf(f.Key).Convert(targetType.Key()), vv)
	}
	return result.Interface(), nil
}

func (m *Marshaller) recordToStruct(r *evaluator.Record, targetType reflect.Type) (interface{}, error) {
	out := reflect.New(targetType).Elem()
	for i := 0; i < targetType.NumField(); i++ {
		field := targetType.Field(i)
		if field.PkgPath != "" {
			continue
		}
		name, skip := fieldName(field)
		if skip {
			continue
		}
		val := r.Get(name)
		if val == nil {
			continue
		}
		fv, err := m.convert(val, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		out.Field(i).Set(fv)
	}
	return out.Interface(), nil
}

// convert produces a reflect.Value assignable to target.
func (m *Marshaller) convert(obj Value, target reflect.Type) (reflect.Value, error) {
	val, err := m.FromValue(obj, target)
	if err != nil {
		return reflect.Value{}, err
	}
	if val == nil {
		return reflect.Zero(target), nil
	}
	rv := reflect.ValueOf(val)
	switch {
	case rv.Type().AssignableTo(target):
		return rv, nil
	case rv.Type().ConvertibleTo(target) && rv.Kind() == target.Kind():
		return rv.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", rv.Type(), target)
}

// funcToBuiltin wraps a Go function. A trailing error result that is non-nil
// becomes a runtime error value.
func (m *Marshaller) funcToBuiltin(fn reflect.Value) *evaluator.Builtin {
	fnType := fn.Type()
	arity := fnType.NumIn()
	if fnType.IsVariadic() {
		arity = -1
	}
	return &evaluator.Builtin{
		Name:     fnType.String(),
		ArgCount: arity,
		Fn: func(e *evaluator.Evaluator, args ...evaluator.Object) evaluator.Object {
			result, err := m.hostCall(fn, args)
			if err != nil {
				var diag *diagnostics.DiagnosticError
				if errors.As(err, &diag) && diag.Code != "" {
					return &evaluator.Error{Code: diag.Code, Message: diag.Message}
				}
				return evaluator.NewError(diagnostics.ErrR003, err.Error())
			}
			return result
		},
	}
}

func (m *Marshaller) hostCall(fn reflect.Value, args []evaluator.Object) (evaluator.Object, error) {
	fnType := fn.Type()
	numIn := fnType.NumIn()
	isVariadic := fnType.IsVariadic()

	if isVariadic && len(args) < numIn-1 {
		return nil, fmt.Errorf("expected at least %d arguments, got %d", numIn-1, len(args))
	}

	goArgs := make([]reflect.Value, len(args))
	for i, arg := range args {
		var targetType reflect.Type
		if isVariadic && i >= numIn-1 {
			targetType = fnType.In(numIn - 1).Elem()
		} else {
			targetType = fnType.In(i)
		}
		rv, err := m.convert(arg, targetType)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		goArgs[i] = rv
	}

	results := fn.Call(goArgs)

	if n := len(results); n > 0 && fnType.Out(n-1) == errorType {
		if err, _ := results[n-1].Interface().(error); err != nil {
			return nil, err
		}
		results = results[:n-1]
	}

	switch len(results) {
	case 0:
		return evaluator.NIL, nil
	case 1:
		return m.ToValue(results[0].Interface())
	}
	// Multiple returns -> Array
	elements := make([]evaluator.Object, len(results))
	for i, res := range results {
		val, err := m.ToValue(res.Interface())
		if err != nil {
			return nil, err
		}
		elements[i] = val
	}
	return evaluator.NewArray(elements), nil
}
