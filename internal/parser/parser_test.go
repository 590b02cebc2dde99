package parser

import (
	"strings"
	"testing"

	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/term"
)

func TestParseCanonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// JSON data
		{`null`, `null`},
		{`true`, `true`},
		{`false`, `false`},
		{`0`, `0`},
		{`-0.5`, `-0.5`},
		{`12e3`, `12000`},
		{`1E+2`, `100`},
		{`2.5e-3`, `0.0025`},
		{`"hi"`, `"hi"`},
		{`[]`, `[]`},
		{`{}`, `{}`},
		{`[ 1 , "a" , [ null ] ]`, `[1,"a",[null]]`},
		{`{ "a" : 1 , "b" : [true] }`, `{"a":1,"b":[true]}`},

		// lambdas and applications
		{`(x)=>(x)`, `(v0)=>(v0)`},
		{`( x , y ) => ( [ x , y ] )`, `(v0,v1)=>([v0,v1])`},
		{`()=>(1)`, `()=>(1)`},
		{`(f)=>(f(1)(2,3))`, `(v0)=>(v0(1)(2,3))`},
		{`(f)=>(f ( 1 ) ( ))`, `(v0)=>(v0(1)())`},
		{`(f)=>(f())`, `(v0)=>(v0())`},
		{`(a)=>((b)=>(a(b)))`, `(v0)=>((v1)=>(v0(v1)))`},
		{`(f)=>([(a)=>(a),(b)=>(f(b))])`, `(v0)=>([(v1)=>(v1),(v1)=>(v0(v1))])`},
		{`(x)=>((x)=>(x))`, `(v0)=>((v1)=>(v1))`},
		{`(x,x)=>(x)`, `(v0,v1)=>(v1)`},
		{`($,_a1)=>($("+",_a1,2))`, `(v0,v1)=>(v0("+",v1,2))`},
		{`(r)=>({"k":r,"f":(y)=>(r)})`, `(v0)=>({"k":v0,"f":(v1)=>(v0)})`},
		{`  (x)=>(x)  `, `(v0)=>(v0)`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Validate(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Validate(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseStrings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"a\"b"`, `a"b`},
		{`"\\\/"`, `\/`},
		{`"\b\f\n\r\t"`, "\b\f\n\r\t"},
		{`"\u00e9"`, "é"},
		{`"\u00E9x"`, "éx"},
		{`"\ud83d\ude00"`, "😀"},
		{`"\ud83d"`, "�"},
		{`"\ud83dx"`, "�x"},
		{`"\ud800\udc00"`, "\U00010000"},
		{`"\ud800"`, "�"},
		{`"\udc00"`, "�"},
		{`"\ud800\u0041"`, "\uFFFDA"},
		{`"héllo"`, "héllo"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			lit, ok := got.(*term.Literal)
			if !ok || lit.Value != tt.want {
				t.Errorf("Parse(%s) = %#v, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		code  diagnostics.ErrorCode
		token string
	}{
		// unresolved variables
		{`(a)=>(b)`, diagnostics.ErrP002, "b"},
		{`x`, diagnostics.ErrP002, "x"},
		{`(a)=>(a(b))`, diagnostics.ErrP002, "b"},
		{`[(a)=>(a),a]`, diagnostics.ErrP002, "a"},
		{`(f)=>([(a)=>(a),(b)=>(a)])`, diagnostics.ErrP002, "a"},
		{`{"k":(x)=>(y)}`, diagnostics.ErrP002, "y"},
		{`(a)=>(eval("1"))`, diagnostics.ErrP002, "eval"},

		// syntax
		{``, diagnostics.ErrP001, ""},
		{`[1,]`, diagnostics.ErrP001, "]"},
		{`[1 2]`, diagnostics.ErrP001, "2"},
		{`{"a" 1}`, diagnostics.ErrP001, "1"},
		{`{a:1}`, diagnostics.ErrP001, "a"},
		{`(x)=>x`, diagnostics.ErrP001, "x"},
		{`(x)->(x)`, diagnostics.ErrP001, "-"},
		{`(x)=>(x`, diagnostics.ErrP001, ""},
		{`(1)=>(1)`, diagnostics.ErrP001, "1"},
		{`(null)=>(1)`, diagnostics.ErrP001, "null"},
		{`1 2`, diagnostics.ErrP001, "2"},
		{`"abc`, diagnostics.ErrP001, ""},
		{"\"a\nb\"", diagnostics.ErrP001, ""},
		{"[1,\t2]", diagnostics.ErrP001, "\t"},
		{`null(1)`, diagnostics.ErrP001, "("},

		// escapes
		{`"\x"`, diagnostics.ErrP003, `\x`},
		{`"\u12g4"`, diagnostics.ErrP003, `\u`},
		{`"\`, diagnostics.ErrP003, `\`},

		// numbers
		{`01`, diagnostics.ErrP004, "01"},
		{`-`, diagnostics.ErrP004, "-"},
		{`1.`, diagnostics.ErrP004, "1."},
		{`1e`, diagnostics.ErrP004, "1e"},
		{`.5`, diagnostics.ErrP001, "."},
		{`1e400`, diagnostics.ErrP004, "1e400"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("expected error, got %s", got)
			}
			if got != nil {
				t.Errorf("failed parse returned a term: %s", got)
			}
			de, ok := err.(*diagnostics.DiagnosticError)
			if !ok {
				t.Fatalf("expected DiagnosticError, got %T", err)
			}
			if de.Code != tt.code {
				t.Errorf("code = %s, want %s (%v)", de.Code, tt.code, err)
			}
			if de.Token != tt.token {
				t.Errorf("token = %q, want %q", de.Token, tt.token)
			}
		})
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := Parse(`(a)=>(b)`)
	de := err.(*diagnostics.DiagnosticError)
	if de.Pos.Offset != 6 || de.Pos.Line != 1 || de.Pos.Column != 7 {
		t.Errorf("position = %+v, want offset 6 at 1:7", de.Pos)
	}
	if !strings.Contains(err.Error(), "b is not defined") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestDuplicateKeys(t *testing.T) {
	got, err := Validate(`{"a":1,"b":2,"a":3}`)
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"a":3,"b":2}` {
		t.Errorf("Validate = %s", got)
	}
}

func TestVariableLevels(t *testing.T) {
	got, err := Parse(`(a,b)=>((c)=>(a(c,b)))`)
	if err != nil {
		t.Fatal(err)
	}
	inner := got.(*term.Lambda).Body.(*term.Lambda)
	app := inner.Body.(*term.Application)
	if a := app.Func.(*term.Variable); a.Index != 0 {
		t.Errorf("a index = %d, want 0", a.Index)
	}
	if c := app.Args[0].(*term.Variable); c.Index != 2 {
		t.Errorf("c index = %d, want 2", c.Index)
	}
	if b := app.Args[1].(*term.Variable); b.Index != 1 {
		t.Errorf("b index = %d, want 1", b.Index)
	}
}

func TestAllowFree(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowFree = true
	got, err := ParseWith(`(a)=>(print(a, b))`, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != `(v0)=>(print(v0,b))` {
		t.Errorf("String = %s", got)
	}
	free := term.FreeVariables(got)
	if len(free) != 2 || free[0] != "print" || free[1] != "b" {
		t.Errorf("FreeVariables = %v", free)
	}
}

func TestLimits(t *testing.T) {
	deep := strings.Repeat("[", 20) + strings.Repeat("]", 20)

	opts := DefaultOptions()
	opts.MaxDepth = 10
	_, err := ParseWith(deep, opts)
	if !diagnostics.Is(err, diagnostics.ErrP005) {
		t.Errorf("deep input: %v, want P005", err)
	}

	opts.MaxDepth = 0
	if _, err := ParseWith(deep, opts); err != nil {
		t.Errorf("unlimited depth: %v", err)
	}

	opts = DefaultOptions()
	opts.MaxInputBytes = 4
	opts.File = "big.ljson"
	_, err = ParseWith(`[1,2,3]`, opts)
	if !diagnostics.Is(err, diagnostics.ErrP006) {
		t.Errorf("large input: %v, want P006", err)
	}
	if !strings.HasPrefix(err.Error(), "big.ljson") {
		t.Errorf("error should name the file: %v", err)
	}
}

func TestParseIsRepeatable(t *testing.T) {
	// Parsing canonical output again yields the same text.
	inputs := []string{
		`(f,x)=>(f(f(x)))`,
		`(a)=>([(b)=>(b(a)),{"k":(c)=>(c)}])`,
		`{"\u0000":"\n"}`,
	}
	for _, in := range inputs {
		once, err := Validate(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		twice, err := Validate(once)
		if err != nil {
			t.Fatalf("%s: %v", once, err)
		}
		if once != twice {
			t.Errorf("%s: %s != %s", in, once, twice)
		}
	}
}

func FuzzParse(f *testing.F) {
	seeds := []string{
		`(x)=>(x)`,
		`(a)=>(b)`,
		`[1,{"a":null},"é"]`,
		`(f)=>(f(1)()(2,3))`,
		`(a)=>([(b)=>(b),(c)=>(a(c))])`,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		got, err := Parse(input)
		if err != nil {
			return
		}
		if free := term.FreeVariables(got); len(free) > 0 {
			t.Fatalf("parse of %q left free variables %v", input, free)
		}
		text := got.String()
		again, err := Validate(text)
		if err != nil {
			t.Fatalf("canonical text %q does not parse: %v", text, err)
		}
		if again != text {
			t.Fatalf("canonical text is not stable: %q -> %q", text, again)
		}
	})
}
