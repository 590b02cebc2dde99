package parser

import (
	"github.com/funvibe/ljson/internal/config"
	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/term"
)

// parseLambda reads '(' params ')' '=>' '(' value ')'. The parameters get
// levels binders, binders+1, ... and shadow outer names for the body only.
func (p *Parser) parseLambda(binders int, s *scope) (term.Term, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}

	var params []string
	inner := s
	p.cur.SkipSpaces()
	if !p.cur.Accept(')') {
		for {
			p.cur.SkipSpaces()
			pos := p.pos()
			name, ok := p.cur.Word()
			if !ok {
				return nil, p.unexpected("a parameter name")
			}
			if isKeyword(name) {
				return nil, diagnostics.NewError(diagnostics.ErrP001, pos, name, "reserved word "+name+" cannot be a parameter")
			}
			index := binders + len(params)
			inner = inner.bind(name, index)
			params = append(params, varName(index))

			p.cur.SkipSpaces()
			if p.cur.Accept(')') {
				break
			}
			if !p.cur.Accept(',') {
				return nil, p.unexpected("',' or ')'")
			}
		}
	}

	p.cur.SkipSpaces()
	if !p.cur.AcceptString(config.Arrow) {
		return nil, p.unexpected("'" + config.Arrow + "'")
	}
	p.cur.SkipSpaces()
	if err := p.expect('('); err != nil {
		return nil, err
	}
	p.cur.SkipSpaces()
	body, err := p.parseValue(binders+len(params), inner)
	if err != nil {
		return nil, err
	}
	p.cur.SkipSpaces()
	if err := p.expect(')'); err != nil {
		return nil, err
	}

	if params == nil {
		params = []string{}
	}
	return &term.Lambda{Params: params, Body: body}, nil
}

func isKeyword(name string) bool {
	switch name {
	case config.NullKeyword, config.TrueKeyword, config.FalseKeyword:
		return true
	}
	return false
}
