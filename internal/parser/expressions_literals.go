package parser

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/funvibe/ljson/internal/cursor"
	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/term"
)

// parseNumber reads a JSON number:
// '-'? ('0' | [1-9][0-9]*) ('.' [0-9]+)? ([eE] [+-]? [0-9]+)?
func (p *Parser) parseNumber() (term.Term, error) {
	pos := p.pos()
	start := p.cur.Offset()
	bad := func() error {
		text := p.cur.From(start)
		return diagnostics.NewError(diagnostics.ErrP004, pos, text, strconv.Quote(text))
	}

	p.cur.Accept('-')
	switch {
	case p.cur.Accept('0'):
		if cursor.IsDigit(p.cur.Ch()) {
			p.cur.Next()
			return nil, bad()
		}
	case cursor.IsDigit(p.cur.Ch()):
		p.cur.Digits()
	default:
		return nil, bad()
	}

	if p.cur.Accept('.') {
		if p.cur.Digits() == "" {
			return nil, bad()
		}
	}
	if p.cur.Accept('e') || p.cur.Accept('E') {
		if !p.cur.Accept('+') {
			p.cur.Accept('-')
		}
		if p.cur.Digits() == "" {
			return nil, bad()
		}
	}

	text := p.cur.From(start)
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, diagnostics.NewError(diagnostics.ErrP004, pos, text, strconv.Quote(text)+" is out of range")
	}
	return term.NewNumber(f), nil
}

func (p *Parser) parseString() (term.Term, error) {
	s, err := p.parseStringValue()
	if err != nil {
		return nil, err
	}
	return term.NewString(s), nil
}

// parseStringValue reads a JSON string literal and returns its contents.
func (p *Parser) parseStringValue() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	var sb strings.Builder
	for {
		ch := p.cur.Ch()
		switch {
		case ch == cursor.EOF:
			return "", p.errorf(diagnostics.ErrP001, "", "unterminated string")
		case ch == '"':
			p.cur.Next()
			return sb.String(), nil
		case ch < 0x20:
			return "", p.errorf(diagnostics.ErrP001, "", "control character "+strconv.QuoteRune(ch)+" in string")
		case ch == '\\':
			r, err := p.parseEscape()
			if err != nil {
				return "", err
			}
			sb.WriteRune(r)
		default:
			sb.WriteRune(p.cur.Next())
		}
	}
}

// parseEscape reads one backslash escape.
func (p *Parser) parseEscape() (rune, error) {
	pos := p.pos()
	p.cur.Next() // '\\'
	ch := p.cur.Next()
	switch ch {
	case '"', '\\', '/':
		return ch, nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'u':
		r, ok := p.cur.Hex(4)
		if !ok {
			return 0, diagnostics.NewError(diagnostics.ErrP003, pos, "\\u", `\u must be followed by 4 hex digits`)
		}
		if utf16.IsSurrogate(r) {
			return p.lowSurrogate(r), nil
		}
		return r, nil
	case cursor.EOF:
		return 0, diagnostics.NewError(diagnostics.ErrP003, pos, "\\", "unterminated escape")
	}
	text := "\\" + string(ch)
	return 0, diagnostics.NewError(diagnostics.ErrP003, pos, text, strconv.Quote(text))
}

// lowSurrogate completes a UTF-16 pair started by high. An unpaired
// surrogate decodes to U+FFFD and the following text is left unread.
func (p *Parser) lowSurrogate(high rune) rune {
	mark := p.cur.Mark()
	if p.cur.AcceptString(`\u`) {
		if low, ok := p.cur.Hex(4); ok {
			if r := utf16.DecodeRune(high, low); r != utf8.RuneError {
				return r
			}
		}
	}
	p.cur.Reset(mark)
	return utf8.RuneError
}
