package ljson_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/pkg/ljson"
)

func identity(x ljson.Value) ljson.Value { return x }

func str(s string) ljson.Value { return ljson.ValueOf(s) }

func mustParse(t *testing.T, text string) ljson.Value {
	t.Helper()
	fn, err := ljson.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%s): %v", text, err)
	}
	return fn
}

func mustCall(t *testing.T, fn ljson.Value, args ...interface{}) interface{} {
	t.Helper()
	got, err := ljson.Call(fn, args...)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	return got
}

func TestIdentityRoundTrip(t *testing.T) {
	s := ljson.Stringify(identity)
	if s != "(v0)=>(v0)" {
		t.Fatalf("Stringify = %s", s)
	}
	if got := mustCall(t, mustParse(t, s), 42); got != 42.0 {
		t.Errorf("result = %v, want 42", got)
	}
}

func TestStringifyConstants(t *testing.T) {
	fn := func(x ljson.Value) []interface{} { return []interface{}{nil, true, false} }
	if s := ljson.Stringify(fn); s != "(v0)=>([null,true,false])" {
		t.Errorf("Stringify = %s", s)
	}
}

func TestFreeVariableRejected(t *testing.T) {
	_, err := ljson.Parse("(a)=>(b)")
	if !diagnostics.Is(err, diagnostics.ErrP002) {
		t.Fatalf("Parse = %v, want P002", err)
	}
	var diag *diagnostics.DiagnosticError
	if !errors.As(err, &diag) || diag.Token != "b" {
		t.Errorf("error token = %+v", diag)
	}
}

func TestNestedFunctionInRecord(t *testing.T) {
	fn := func(x ljson.Value) map[string]interface{} {
		return map[string]interface{}{
			"name":  "J",
			"greet": identity,
		}
	}
	s := ljson.Stringify(fn)
	if s != `(v0)=>({"greet":(v1)=>(v1),"name":"J"})` {
		t.Fatalf("Stringify = %s", s)
	}

	rec := mustCall(t, mustParse(t, s), nil)
	m, ok := rec.(map[string]interface{})
	if !ok {
		t.Fatalf("result = %T", rec)
	}
	greet, ok := m["greet"].(ljson.Value)
	if !ok {
		t.Fatalf("greet = %T", m["greet"])
	}
	if got := mustCall(t, greet, "hi"); got != "hi" {
		t.Errorf("greet = %v", got)
	}
}

func TestHypotenuse(t *testing.T) {
	hypot := func(L, a, b ljson.Value) ljson.Value {
		sq := func(x ljson.Value) ljson.Value { return ljson.Apply(L, str("*"), x, x) }
		return ljson.Apply(L, str("sqrt"), ljson.Apply(L, str("+"), sq(a), sq(b)))
	}
	s := ljson.Stringify(hypot)
	want := `(v0,v1,v2)=>(v0("sqrt",v0("+",v0("*",v1,v1),v0("*",v2,v2))))`
	if s != want {
		t.Fatalf("Stringify = %s\nwant       %s", s, want)
	}

	fn, err := ljson.ParseWithStdLib(s)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustCall(t, fn, 3, 4); got != 5.0 {
		t.Errorf("hypot(3, 4) = %v", got)
	}
}

func TestChurchNumeral(t *testing.T) {
	two := func(f ljson.Value) ljson.Value {
		return ljson.Func(1, func(args ...ljson.Value) ljson.Value {
			return ljson.Apply(f, ljson.Apply(f, args[0]))
		})
	}
	s := ljson.Stringify(two)
	if s != "(v0)=>((v1)=>(v0(v0(v1))))" {
		t.Fatalf("Stringify = %s", s)
	}

	inc := ljson.ValueOf(func(x float64) float64 { return x + 1 })
	applied := ljson.Apply(mustParse(t, s), inc)
	if got := mustCall(t, applied, 0); got != 2.0 {
		t.Errorf("two(inc)(0) = %v", got)
	}
}

func TestFibonacciWithLoop(t *testing.T) {
	fib, err := ljson.ParseWithStdLib(`($,n)=>($("get",$("loop",n,[0,1],(p)=>([$("get",p,1),$("+",$("get",p,0),$("get",p,1))])),0))`)
	if err != nil {
		t.Fatal(err)
	}
	if got := mustCall(t, fib, 10); got != 55.0 {
		t.Errorf("fib(10) = %v", got)
	}
}

func TestGoLibrary(t *testing.T) {
	lib := ljson.Lib{
		"greet": func(name string) string { return "hi " + name },
		"fail":  func() (int, error) { return 0, errors.New("boom") },
		"pair":  func(a, b float64) (float64, float64) { return b, a },
	}
	fn, err := ljson.ParseWithLib(lib, `($,n)=>([$("greet",n),$("pair",1,2)])`)
	if err != nil {
		t.Fatal(err)
	}
	got := mustCall(t, fn, "bo")
	want := []interface{}{"hi bo", []interface{}{2.0, 1.0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("result = %#v", got)
	}

	failing, err := ljson.ParseWithLib(lib, `($)=>($("fail"))`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ljson.Call(failing); !diagnostics.Is(err, diagnostics.ErrR003) {
		t.Errorf("host error = %v, want R003", err)
	}

	unknown, err := ljson.ParseWithLib(lib, `($)=>($("exec"))`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ljson.Call(unknown); !diagnostics.Is(err, diagnostics.ErrR002) {
		t.Errorf("unknown primitive = %v, want R002", err)
	}

	if _, err := ljson.WithLib(ljson.Lib{"n": 1}, unknown); err == nil {
		t.Error("non-function primitive should be rejected")
	}
}

func TestUnsafeParse(t *testing.T) {
	add := func(a, b float64) float64 { return a + b }
	fn, err := ljson.UnsafeParse(`(x)=>(add(x,1))`, map[string]interface{}{"add": add})
	if err != nil {
		t.Fatal(err)
	}
	if got := mustCall(t, fn, 2); got != 3.0 {
		t.Errorf("result = %v", got)
	}

	if _, err := ljson.UnsafeParse(`(x)=>(missing(x))`, nil); err == nil {
		t.Error("missing global should fail")
	}
}

type player struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Secret string `json:"-"`
	hidden int
}

func TestStringifyGoValues(t *testing.T) {
	when := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, "null"},
		{"number", 1.5, "1.5"},
		{"int", 7, "7"},
		{"string", "a\"b", `"a\"b"`},
		{"slice", []int{1, 2}, "[1,2]"},
		{"map", map[string]bool{"b": true, "a": false}, `{"a":false,"b":true}`},
		{"struct", player{Name: "p", Score: 3, Secret: "x", hidden: 1}, `{"name":"p","score":3}`},
		{"time", when, "null"},
		{"pointer", &player{}, "null"},
		{"variadic", func(xs ...ljson.Value) ljson.Value { return nil }, "()=>(null)"},
		{"typed params", func(x float64) float64 { return x }, "(v0)=>(null)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ljson.Stringify(tt.in); got != tt.want {
				t.Errorf("Stringify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMarshallerStructs(t *testing.T) {
	m := ljson.NewMarshaller()
	obj, err := m.ToValue(player{Name: "p", Score: 3})
	if err != nil {
		t.Fatal(err)
	}
	back, err := m.FromValue(obj, reflect.TypeOf(player{}))
	if err != nil {
		t.Fatal(err)
	}
	if p := back.(player); p.Name != "p" || p.Score != 3 {
		t.Errorf("FromValue = %+v", p)
	}

	scores, err := m.FromValue(mustParse(t, `{"a":1,"b":2}`), reflect.TypeOf(map[string]int{}))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(scores, map[string]int{"a": 1, "b": 2}) {
		t.Errorf("FromValue map = %#v", scores)
	}

	if _, err := m.ToValue(map[int]string{1: "x"}); err == nil {
		t.Error("non-string map keys should be rejected")
	}
}

func TestStringifyIsIdempotentOnParsed(t *testing.T) {
	for _, text := range []string{
		"(v0)=>(v0)",
		"(v0,v1)=>(v0(v1)(v1,[1,{\"k\":v0}]))",
		"(v0)=>((v1)=>(v0))",
		"[1,\"x\",null]",
	} {
		if got := ljson.Stringify(mustParse(t, text)); got != text {
			t.Errorf("Stringify(Parse(%s)) = %s", text, got)
		}
	}
}

func TestConcurrentUse(t *testing.T) {
	const text = `($,a,b)=>($("sqrt",$("+",$("*",a,a),$("*",b,b))))`
	shared := mustParse(t, text)
	hypot := ljson.WithStdLib(shared)
	const want = `(v0,v1,v2)=>(v0("sqrt",v0("+",v0("*",v1,v1),v0("*",v2,v2))))`

	const workers, rounds = 16, 50
	var wg sync.WaitGroup
	errs := make(chan string, workers*rounds)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				if got := ljson.Stringify(shared); got != want {
					errs <- "Stringify(shared) = " + got
				}
				fn, err := ljson.Parse("(a)=>((b)=>(a(b)))")
				if err != nil {
					errs <- "Parse: " + err.Error()
					continue
				}
				if got := ljson.Stringify(fn); got != "(v0)=>((v1)=>(v0(v1)))" {
					errs <- "Stringify(parsed) = " + got
				}
				if got, err := ljson.Call(hypot, 3, 4); err != nil || got != 5.0 {
					errs <- "Call(hypot, 3, 4) failed"
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}
