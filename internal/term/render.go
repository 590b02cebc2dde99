package term

import (
	"bytes"
	"encoding/json"
	"strings"
)

type builder struct {
	strings.Builder
}

func (b *builder) list(open, close byte, items []Term) {
	b.WriteByte(open)
	for i, item := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		item.render(b)
	}
	b.WriteByte(close)
}

func render(t Term) string {
	var b builder
	t.render(&b)
	return b.String()
}

func (l *Literal) String() string     { return render(l) }
func (s *Sequence) String() string    { return render(s) }
func (r *Record) String() string      { return render(r) }
func (l *Lambda) String() string      { return render(l) }
func (v *Variable) String() string    { return v.Name }
func (a *Application) String() string { return render(a) }
func (v *Variable) render(b *builder) { b.WriteString(v.Name) }
func (l *Literal) render(b *builder)  { b.WriteString(EncodeLiteral(l.Value)) }
func (s *Sequence) render(b *builder) { b.list('[', ']', s.Items) }

func (a *Application) render(b *builder) {
	a.Func.render(b)
	b.list('(', ')', a.Args)
}

func (r *Record) render(b *builder) {
	b.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Quote(f.Key))
		b.WriteByte(':')
		f.Value.render(b)
	}
	b.WriteByte('}')
}

func (l *Lambda) render(b *builder) {
	b.WriteByte('(')
	b.WriteString(strings.Join(l.Params, ","))
	b.WriteString(")=>(")
	l.Body.render(b)
	b.WriteByte(')')
}

// EncodeLiteral renders a unit value with JSON text encoding. Values JSON
// cannot represent (NaN, infinities, other Go types) render as null.
func EncodeLiteral(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool, float64, string:
	default:
		return "null"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "null"
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Quote renders s as a JSON string literal.
func Quote(s string) string {
	return EncodeLiteral(s)
}
