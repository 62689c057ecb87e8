package parser

import (
	"fmt"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/token"
)

// ParseGenerics parses a `<...>` parameter list. Empty input yields an empty list.
func ParseGenerics(input string, base token.Pos) (*ast.Generics, error) {
	p := New(input, base)
	if p.curTokenIs(token.EOF) {
		return &ast.Generics{}, nil
	}
	if !p.curTokenIs(token.LT) {
		p.unexpected(p.curToken, "expected '<' to start a generic parameter list")
		return nil, p.err()
	}
	g := p.parseGenerics()
	if g == nil || !p.expectEnd("generic parameter list") {
		return nil, p.err()
	}
	return g, nil
}

// ParseWhereClause parses `where P, P, ...`. Empty input yields nil.
func ParseWhereClause(input string, base token.Pos) (*ast.WhereClause, error) {
	p := New(input, base)
	if p.curTokenIs(token.EOF) {
		return nil, nil
	}
	if !p.curTokenIs(token.WHERE) {
		p.unexpected(p.curToken, "expected 'where'")
		return nil, p.err()
	}
	w := p.parseWhereClause(never)
	if w == nil || !p.expectEnd("where clause") {
		return nil, p.err()
	}
	return w, nil
}

// parseGenerics parses from '<' through the matching '>'.
func (p *Parser) parseGenerics() *ast.Generics {
	lt, ok := p.expect(token.LT, "expected '<'")
	if !ok {
		return nil
	}
	g := &ast.Generics{Token: lt}
	for !p.curTokenIs(token.GT) {
		param := p.parseGenericParam()
		if param == nil {
			return nil
		}
		g.Params = append(g.Params, param)

		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.curTokenIs(token.GT) {
			p.unexpected(p.curToken, fmt.Sprintf("expected ',' or '>' after generic parameter '%s'", param.ParamName()))
			return nil
		}
	}
	p.nextToken() // '>'
	return g
}

func (p *Parser) parseGenericParam() ast.GenericParam {
	switch p.curToken.Type {
	case token.LIFETIME:
		return p.parseLifetimeParam()
	case token.CONST:
		return p.parseConstParam()
	case token.IDENT:
		return p.parseTypeParam()
	default:
		p.unexpected(p.curToken, "expected lifetime, type or const parameter")
		return nil
	}
}

// 'a or 'a: 'b + 'c
func (p *Parser) parseLifetimeParam() ast.GenericParam {
	tok := p.nextToken()
	param := &ast.LifetimeParam{Token: tok, Name: tok.Literal}
	if !p.curTokenIs(token.COLON) {
		return param
	}
	p.nextToken()
	for p.curTokenIs(token.LIFETIME) {
		param.Bounds = append(param.Bounds, p.nextToken())
		if !p.curTokenIs(token.PLUS) {
			break
		}
		p.nextToken()
	}
	return param
}

// const N: Type [= Default]
func (p *Parser) parseConstParam() ast.GenericParam {
	kw := p.nextToken()
	ident, ok := p.expect(token.IDENT, "expected const parameter name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.COLON, fmt.Sprintf("expected ':' after const parameter '%s'", ident.Literal)); !ok {
		return nil
	}
	ty, ok := p.parseRun(stopAt(token.COMMA, token.GT, token.ASSIGN))
	if !ok {
		return nil
	}
	if len(ty) == 0 {
		p.unexpected(p.curToken, fmt.Sprintf("expected type of const parameter '%s'", ident.Literal))
		return nil
	}
	param := &ast.ConstParam{Token: kw, Ident: ident, Name: ident.Literal, Type: ty}
	if p.curTokenIs(token.ASSIGN) {
		param.Default = p.parseDefault(ident.Literal)
		if param.Default == nil {
			return nil
		}
	}
	return param
}

// T [: Bound + Bound] [= Default]
func (p *Parser) parseTypeParam() ast.GenericParam {
	ident := p.nextToken()
	param := &ast.TypeParam{Token: ident, Name: ident.Literal}
	if p.curTokenIs(token.COLON) {
		p.nextToken()
		bounds, ok := p.parseBounds(stopAt(token.COMMA, token.GT, token.ASSIGN))
		if !ok {
			return nil
		}
		param.Bounds = bounds
	}
	if p.curTokenIs(token.ASSIGN) {
		param.Default = p.parseDefault(ident.Literal)
		if param.Default == nil {
			return nil
		}
	}
	return param
}

func (p *Parser) parseDefault(name string) ast.TokenRun {
	p.nextToken() // '='
	run, ok := p.parseRun(stopAt(token.COMMA, token.GT))
	if !ok {
		return nil
	}
	if len(run) == 0 {
		p.unexpected(p.curToken, fmt.Sprintf("expected default for parameter '%s'", name))
		return nil
	}
	return run
}

// parseBounds parses `A + 'a + ?Sized`, allowing a trailing '+'.
func (p *Parser) parseBounds(stop stopFunc) ([]ast.Bound, bool) {
	var bounds []ast.Bound
	withPlus := func(cur, peek token.Token) bool {
		return cur.Type == token.PLUS || stop(cur, peek)
	}
	for !p.curTokenIs(token.EOF) && !stop(p.curToken, p.peekToken) {
		if p.curTokenIs(token.LIFETIME) && (p.peekTokenIs(token.EOF) || withPlus(p.peekToken, token.Token{})) {
			bounds = append(bounds, &ast.LifetimeBound{Token: p.nextToken()})
		} else {
			run, ok := p.parseRun(withPlus)
			if !ok {
				return nil, false
			}
			if len(run) == 0 {
				p.unexpected(p.curToken, "expected bound")
				return nil, false
			}
			bounds = append(bounds, &ast.TraitBound{Tokens: run})
		}
		if !p.curTokenIs(token.PLUS) {
			break
		}
		p.nextToken()
	}
	return bounds, true
}

// parseWhereClause parses from 'where' until end, a depth-zero ';' or '{',
// or a position where end(cur, peek) reports the clause is over.
func (p *Parser) parseWhereClause(end stopFunc) *ast.WhereClause {
	kw, ok := p.expect(token.WHERE, "expected 'where'")
	if !ok {
		return nil
	}
	w := &ast.WhereClause{Token: kw}
	done := func(cur, peek token.Token) bool {
		switch cur.Type {
		case token.EOF, token.SEMICOLON, token.LBRACE:
			return true
		}
		return cur.Type != token.COMMA && end(cur, peek)
	}
	for !done(p.curToken, p.peekToken) {
		run, ok := p.parseRun(func(cur, peek token.Token) bool {
			return cur.Type == token.COMMA || done(cur, peek)
		})
		if !ok {
			return nil
		}
		if len(run) == 0 {
			p.unexpected(p.curToken, "expected where predicate")
			return nil
		}
		w.Predicates = append(w.Predicates, &ast.Predicate{Tokens: run})
		if !p.curTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return w
}
