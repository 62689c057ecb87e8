package parser

import (
	"fmt"
	"strings"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/token"
)

// ParseBoundDecls parses the body of a registration:
//
//	Name => <GenericParams> [where Predicate, ...] [;|,]
//	...
//
// Separators between entries are optional, as long as each entry can be told apart.
func ParseBoundDecls(input string, base token.Pos) ([]*ast.BoundDecl, error) {
	p := New(input, base)
	var decls []*ast.BoundDecl
	for !p.curTokenIs(token.EOF) {
		decl := p.parseBoundDecl()
		if decl == nil {
			return nil, p.err()
		}
		decls = append(decls, decl)

		if p.curTokenIs(token.SEMICOLON) || p.curTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.curTokenIs(token.EOF) && !startsEntry(p.curToken, p.peekToken) {
			p.unexpected(p.curToken, fmt.Sprintf("expected ';' after bound '%s'", decl.Name))
			return nil, p.err()
		}
	}
	return decls, nil
}

// startsEntry reports whether `Name =>` begins at cur.
func startsEntry(cur, peek token.Token) bool {
	return cur.Type == token.IDENT && peek.Type == token.FAT_ARROW
}

func (p *Parser) parseBoundDecl() *ast.BoundDecl {
	name, ok := p.expect(token.IDENT, "expected bound name")
	if !ok {
		return nil
	}
	if p.curTokenIs(token.COMMA) && p.peekTokenIs(token.IDENT) {
		p.errorf(p.curToken, "bound '%s': several names for one entry are not supported, declare each bound set separately", name.Literal)
		return nil
	}
	if _, ok := p.expect(token.FAT_ARROW, fmt.Sprintf("expected '=>' after bound name '%s'", name.Literal)); !ok {
		return nil
	}
	if !p.curTokenIs(token.LT) {
		p.unexpected(p.curToken, fmt.Sprintf("expected '<' to start the generic parameters of '%s'", name.Literal))
		return nil
	}
	generics := p.parseGenerics()
	if generics == nil {
		return nil
	}
	if p.curTokenIs(token.WHERE) {
		generics.Where = p.parseWhereClause(startsEntry)
		if generics.Where == nil {
			return nil
		}
	}
	return &ast.BoundDecl{Token: name, Name: name.Literal, Generics: generics}
}

// ParseBoundNames parses the argument list of an application: `A, B, C`.
func ParseBoundNames(input string, base token.Pos) ([]*ast.BoundRef, error) {
	p := New(input, base)
	var refs []*ast.BoundRef
	for !p.curTokenIs(token.EOF) {
		tok, ok := p.expect(token.IDENT, "expected bound name")
		if !ok {
			return nil, p.err()
		}
		refs = append(refs, &ast.BoundRef{Token: tok, Name: tok.Literal})
		if p.curTokenIs(token.EOF) {
			break
		}
		if _, ok := p.expect(token.COMMA, "expected ',' between bound names"); !ok {
			return nil, p.err()
		}
	}
	return refs, nil
}

// ParseSignature parses a function-like declaration header, from its first
// qualifier up to (not including) the body or terminating ';'. A trailing
// '{' or ';' in input is accepted and ignored.
func ParseSignature(input string, base token.Pos) (*ast.Signature, error) {
	p := New(input, base)
	sig := p.parseSignature()
	if sig == nil {
		return nil, p.err()
	}
	sig.Terminator = p.curToken
	if p.curTokenIs(token.LBRACE) || p.curTokenIs(token.SEMICOLON) {
		return sig, nil
	}
	if !p.expectEnd("function signature") {
		return nil, p.err()
	}
	return sig, nil
}

func (p *Parser) parseSignature() *ast.Signature {
	first := p.curToken
	for !p.curTokenIs(token.FN) {
		switch p.curToken.Type {
		case token.EOF, token.LBRACE, token.SEMICOLON:
			p.unexpected(p.curToken, "expected 'fn'")
			return nil
		}
		p.nextToken()
	}
	sig := &ast.Signature{Token: p.curToken}
	if first.Offset < sig.Token.Offset {
		sig.Prefix = p.input[first.Offset-p.base.Offset : sig.Token.Offset-p.base.Offset]
	}
	p.nextToken() // fn

	name, ok := p.expect(token.IDENT, "expected function name")
	if !ok {
		return nil
	}
	sig.Name = name

	sig.Generics = &ast.Generics{}
	if p.curTokenIs(token.LT) {
		if sig.Generics = p.parseGenerics(); sig.Generics == nil {
			return nil
		}
	}

	if !p.curTokenIs(token.LPAREN) {
		p.unexpected(p.curToken, fmt.Sprintf("expected '(' after function name '%s'", name.Literal))
		return nil
	}
	params, ok := p.parseRun(func(cur, _ token.Token) bool { return cur.Type != token.LPAREN })
	if !ok {
		return nil
	}
	// the run stops right after the balanced group
	sig.Params = p.slice(params[0], params[len(params)-1])

	if p.curTokenIs(token.ARROW) {
		p.nextToken()
		result, ok := p.parseRun(stopAt(token.WHERE, token.LBRACE, token.SEMICOLON))
		if !ok {
			return nil
		}
		if len(result) == 0 {
			p.unexpected(p.curToken, "expected return type after '->'")
			return nil
		}
		sig.Result = strings.TrimSpace(p.slice(result[0], result[len(result)-1]))
	}

	if p.curTokenIs(token.WHERE) {
		if sig.Generics.Where = p.parseWhereClause(never); sig.Generics.Where == nil {
			return nil
		}
	}
	return sig
}
