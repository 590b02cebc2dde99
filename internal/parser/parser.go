// Package parser reads term text back into terms. Every variable must be
// bound by an enclosing lambda: an unbound name fails the whole parse and
// nothing is returned.
//
// Bound names are rewritten to v<level>, where level counts the binders
// enclosing the parameter. Source names never reach the output.
package parser

import (
	"fmt"
	"strconv"

	"github.com/funvibe/ljson/internal/config"
	"github.com/funvibe/ljson/internal/cursor"
	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/term"
)

// Options control a single parse.
type Options struct {
	// MaxDepth bounds value nesting. 0 disables the limit.
	MaxDepth int
	// MaxInputBytes rejects longer texts before parsing. 0 disables the limit.
	MaxInputBytes int
	// AllowFree keeps unbound names as free variables instead of failing.
	// Only for trusted text.
	AllowFree bool
	// File is reported in errors.
	File string
}

// DefaultOptions returns the safe defaults.
func DefaultOptions() Options {
	return Options{
		MaxDepth:      config.DefaultMaxDepth,
		MaxInputBytes: config.DefaultMaxInputBytes,
	}
}

type Parser struct {
	cur   *cursor.Cursor
	opts  Options
	depth int
}

func New(input string, opts Options) *Parser {
	return &Parser{cur: cursor.New(input), opts: opts}
}

// Parse reads a closed term with the default options.
func Parse(input string) (term.Term, error) {
	return ParseWith(input, DefaultOptions())
}

// ParseWith reads a term with explicit options.
func ParseWith(input string, opts Options) (term.Term, error) {
	return New(input, opts).Parse()
}

// Validate parses input and returns its canonical text.
func Validate(input string) (string, error) {
	t, err := Parse(input)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

// Parse consumes the whole input as one value.
func (p *Parser) Parse() (term.Term, error) {
	if n := len(p.cur.Input()); p.opts.MaxInputBytes > 0 && n > p.opts.MaxInputBytes {
		return nil, p.withFile(diagnostics.NewError(diagnostics.ErrP006, diagnostics.Position{}, "", n, p.opts.MaxInputBytes))
	}

	p.cur.SkipSpaces()
	t, err := p.parseValue(0, nil)
	if err != nil {
		return nil, p.withFile(err)
	}
	p.cur.SkipSpaces()
	if !p.cur.AtEOF() {
		return nil, p.withFile(p.unexpected("end of input"))
	}
	return t, nil
}

func (p *Parser) withFile(err error) error {
	if de, ok := err.(*diagnostics.DiagnosticError); ok && de.File == "" {
		de.File = p.opts.File
	}
	return err
}

// parseValue dispatches on the current character. binders is the number
// of enclosing lambda parameters, which is also the level the next
// parameter receives.
func (p *Parser) parseValue(binders int, s *scope) (term.Term, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return nil, p.errorf(diagnostics.ErrP005, "", p.opts.MaxDepth)
	}

	switch ch := p.cur.Ch(); {
	case ch == '"':
		return p.parseString()
	case ch == '-' || cursor.IsDigit(ch):
		return p.parseNumber()
	case ch == '[':
		return p.parseArray(binders, s)
	case ch == '{':
		return p.parseObject(binders, s)
	case ch == '(':
		return p.parseLambda(binders, s)
	case cursor.IsWordChar(ch):
		return p.parseWord(binders, s)
	}
	return nil, p.unexpected("a value")
}

// parseWord reads a keyword literal or an application chain headed by a
// bound variable.
func (p *Parser) parseWord(binders int, s *scope) (term.Term, error) {
	pos := p.pos()
	name, ok := p.cur.Word()
	if !ok {
		return nil, p.unexpected("a value")
	}

	switch name {
	case config.NullKeyword:
		return term.Null, nil
	case config.TrueKeyword:
		return term.True, nil
	case config.FalseKeyword:
		return term.False, nil
	}

	var head term.Term
	if index, ok := s.lookup(name); ok {
		head = &term.Variable{Name: varName(index), Index: index}
	} else if p.opts.AllowFree {
		head = &term.Variable{Name: name, Index: -1}
	} else {
		return nil, diagnostics.NewError(diagnostics.ErrP002, pos, name, name)
	}

	for {
		mark := p.cur.Mark()
		p.cur.SkipSpaces()
		if p.cur.Ch() != '(' {
			p.cur.Reset(mark)
			return head, nil
		}
		args, err := p.parseList('(', ')', binders, s)
		if err != nil {
			return nil, err
		}
		head = &term.Application{Func: head, Args: args}
	}
}

func (p *Parser) parseArray(binders int, s *scope) (term.Term, error) {
	items, err := p.parseList('[', ']', binders, s)
	if err != nil {
		return nil, err
	}
	return &term.Sequence{Items: items}, nil
}

// parseList reads open (value (',' value)*)? close.
func (p *Parser) parseList(open, close rune, binders int, s *scope) ([]term.Term, error) {
	if err := p.expect(open); err != nil {
		return nil, err
	}
	items := []term.Term{}
	p.cur.SkipSpaces()
	if p.cur.Accept(close) {
		return items, nil
	}
	for {
		p.cur.SkipSpaces()
		item, err := p.parseValue(binders, s)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		p.cur.SkipSpaces()
		if p.cur.Accept(close) {
			return items, nil
		}
		if !p.cur.Accept(',') {
			return nil, p.unexpected(fmt.Sprintf("',' or '%c'", close))
		}
	}
}

// parseObject reads a JSON object. A repeated key keeps its first position
// and takes the last value.
func (p *Parser) parseObject(binders int, s *scope) (term.Term, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	rec := &term.Record{Fields: []term.Field{}}
	seen := make(map[string]int)
	p.cur.SkipSpaces()
	if p.cur.Accept('}') {
		return rec, nil
	}
	for {
		p.cur.SkipSpaces()
		if p.cur.Ch() != '"' {
			return nil, p.unexpected("a string key")
		}
		key, err := p.parseStringValue()
		if err != nil {
			return nil, err
		}
		p.cur.SkipSpaces()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		p.cur.SkipSpaces()
		val, err := p.parseValue(binders, s)
		if err != nil {
			return nil, err
		}
		if i, dup := seen[key]; dup {
			rec.Fields[i].Value = val
		} else {
			seen[key] = len(rec.Fields)
			rec.Fields = append(rec.Fields, term.Field{Key: key, Value: val})
		}
		p.cur.SkipSpaces()
		if p.cur.Accept('}') {
			return rec, nil
		}
		if !p.cur.Accept(',') {
			return nil, p.unexpected("',' or '}'")
		}
	}
}

func (p *Parser) expect(ch rune) error {
	if !p.cur.Accept(ch) {
		return p.unexpected(fmt.Sprintf("'%c'", ch))
	}
	return nil
}

func (p *Parser) pos() diagnostics.Position {
	return diagnostics.Position{Offset: p.cur.Offset(), Line: p.cur.Line(), Column: p.cur.Column()}
}

func (p *Parser) errorf(code diagnostics.ErrorCode, token string, args ...interface{}) *diagnostics.DiagnosticError {
	return diagnostics.NewError(code, p.pos(), token, args...)
}

// unexpected reports a syntax error at the current character.
func (p *Parser) unexpected(want string) *diagnostics.DiagnosticError {
	if p.cur.AtEOF() {
		return p.errorf(diagnostics.ErrP001, "", "expected "+want+", found end of input")
	}
	found := string(p.cur.Ch())
	return p.errorf(diagnostics.ErrP001, found, "expected "+want+", found "+strconv.Quote(found))
}

func varName(index int) string {
	return config.VarPrefix + strconv.Itoa(index)
}
