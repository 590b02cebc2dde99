package term

import (
	"math"
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	v0 := &Variable{Name: "v0", Index: 0}
	v1 := &Variable{Name: "v1", Index: 1}

	tests := []struct {
		name string
		term Term
		want string
	}{
		{"null", Null, "null"},
		{"true", True, "true"},
		{"false", False, "false"},
		{"integer", NewNumber(42), "42"},
		{"fraction", NewNumber(7.5), "7.5"},
		{"negative", NewNumber(-0.25), "-0.25"},
		{"large", NewNumber(1e21), "1e+21"},
		{"million", NewNumber(1e6), "1000000"},
		{"tiny", NewNumber(1e-7), "1e-7"},
		{"nan", NewNumber(math.NaN()), "null"},
		{"string", NewString("hi"), `"hi"`},
		{"escapes", NewString("a\"b\\c\n\t"), `"a\"b\\c\n\t"`},
		{"no html escaping", NewString("<a&b>"), `"<a&b>"`},
		{"control", NewString("\x01"), `"\u0001"`},
		{"unsupported literal", &Literal{Value: 3}, "null"},
		{"empty sequence", &Sequence{}, "[]"},
		{"sequence", &Sequence{Items: []Term{Null, True, False}}, "[null,true,false]"},
		{"empty record", &Record{}, "{}"},
		{
			"record keeps order",
			&Record{Fields: []Field{{"name", NewString("J")}, {"atk", NewNumber(17)}}},
			`{"name":"J","atk":17}`,
		},
		{"identity", &Lambda{Params: []string{"v0"}, Body: v0}, "(v0)=>(v0)"},
		{"nullary lambda", &Lambda{Body: NewNumber(1)}, "()=>(1)"},
		{
			"curried application",
			&Lambda{
				Params: []string{"v0", "v1"},
				Body:   Apply(v0, []Term{v1, NewNumber(2)}, []Term{v1}),
			},
			"(v0,v1)=>(v0(v1,2)(v1))",
		},
		{"empty call", Apply(v0, []Term{}), "v0()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.term.String(); got != tt.want {
				t.Errorf("String() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestApplyNests(t *testing.T) {
	f := &Variable{Name: "f", Index: 0}
	app := Apply(f, []Term{Null}, []Term{True}, []Term{False}).(*Application)
	inner, ok := app.Func.(*Application)
	if !ok || inner.Func.(*Application).Func != Term(f) {
		t.Errorf("Apply should nest calls left to right, got %s", app)
	}
	if Apply(f) != Term(f) {
		t.Error("Apply with no calls should return the function unchanged")
	}
}

func TestRecordGet(t *testing.T) {
	r := &Record{Fields: []Field{{"a", NewNumber(1)}, {"b", NewNumber(2)}}}
	if v, ok := r.Get("b"); !ok || v.String() != "2" {
		t.Errorf("Get(b) = %v, %v", v, ok)
	}
	if _, ok := r.Get("c"); ok {
		t.Error("Get(c) should miss")
	}
}

func TestFreeVariables(t *testing.T) {
	x := &Variable{Name: "x", Index: 0}
	print := &Variable{Name: "print", Index: -1}
	os := &Variable{Name: "os", Index: -1}

	lam := &Lambda{
		Params: []string{"x"},
		Body: &Sequence{Items: []Term{
			Apply(print, []Term{x}),
			&Record{Fields: []Field{{"k", os}}},
			print,
		}},
	}
	got := FreeVariables(lam)
	if want := []string{"print", "os"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FreeVariables = %v, want %v", got, want)
	}
	if got := FreeVariables(&Lambda{Params: []string{"x"}, Body: x}); len(got) != 0 {
		t.Errorf("closed term reported free variables %v", got)
	}
}
