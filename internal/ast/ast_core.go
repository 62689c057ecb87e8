package ast

import (
	"github.com/funvibe/boundstore/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// TokenRun is an uninterpreted run of tokens: a bound expression, a type,
// a const default or a where-predicate. It is only ever copied and printed.
type TokenRun []token.Token

func (r TokenRun) GetToken() token.Token {
	if len(r) == 0 {
		return token.Token{}
	}
	return r[0]
}

// Span covers the whole run.
func (r TokenRun) Span() token.Span {
	if len(r) == 0 {
		return token.Span{}
	}
	return token.SpanOf(r[0], r[len(r)-1])
}

// Generics is a generic parameter list plus its optional where-clause,
// the part of a declaration that bound sets are spliced into.
type Generics struct {
	Token  token.Token // the '<' token, zero when the list was absent
	Params []GenericParam
	Where  *WhereClause
}

func (g *Generics) GetToken() token.Token {
	if g == nil {
		return token.Token{}
	}
	return g.Token
}

// TypeParam returns the type parameter called name, or nil.
func (g *Generics) TypeParam(name string) *TypeParam {
	for _, p := range g.Params {
		if tp, ok := p.(*TypeParam); ok && tp.Name == name {
			return tp
		}
	}
	return nil
}

// LifetimesFirst returns the parameters in declaration order for emission:
// lifetimes first, then type and const parameters in their relative order.
// Params itself is left in splice order.
func (g *Generics) LifetimesFirst() []GenericParam {
	if g == nil {
		return nil
	}
	out := make([]GenericParam, 0, len(g.Params))
	for _, p := range g.Params {
		if _, ok := p.(*LifetimeParam); ok {
			out = append(out, p)
		}
	}
	for _, p := range g.Params {
		if _, ok := p.(*LifetimeParam); !ok {
			out = append(out, p)
		}
	}
	return out
}

// MakeWhereClause returns the where-clause, creating an empty one if absent.
func (g *Generics) MakeWhereClause() *WhereClause {
	if g.Where == nil {
		g.Where = &WhereClause{Token: token.Token{Type: token.WHERE, Lexeme: "where", Literal: "where"}}
	}
	return g.Where
}

// WhereClause is an ordered list of opaque predicates.
type WhereClause struct {
	Token      token.Token // the 'where' token
	Predicates []*Predicate
}

func (w *WhereClause) GetToken() token.Token {
	if w == nil {
		return token.Token{}
	}
	return w.Token
}

// Predicate is one where-clause constraint such as `F: 'a + Float` or
// `for<'a> &'a P: IntoIterator<Item = &'a Point<F>>`. It is never decomposed.
type Predicate struct {
	Tokens TokenRun
}

func (p *Predicate) GetToken() token.Token { return p.Tokens.GetToken() }

// BoundDecl is one `Name => <...> where ...` entry of a registration.
type BoundDecl struct {
	Token    token.Token // the name identifier
	Name     string
	Generics *Generics
}

func (d *BoundDecl) GetToken() token.Token {
	if d == nil {
		return token.Token{}
	}
	return d.Token
}

// BoundRef is a bound-set name used by an application.
type BoundRef struct {
	Token token.Token
	Name  string
}

func (r *BoundRef) GetToken() token.Token {
	if r == nil {
		return token.Token{}
	}
	return r.Token
}

// Signature is a function-like declaration header:
//
//	pub unsafe fn name<...>(params) -> Result where ...
//
// Only the generics are structured; the rest is kept as source text so the
// emitter can reproduce it unchanged.
type Signature struct {
	Token    token.Token // the 'fn' token
	Prefix   string      // visibility and qualifiers before 'fn', with trailing space
	Name     token.Token
	Generics *Generics
	Params   string // "(...)" as written
	Result   string // return type without the arrow, empty if none

	// Terminator is the '{' or ';' that ended the header, or EOF.
	Terminator token.Token
}

func (s *Signature) GetToken() token.Token {
	if s == nil {
		return token.Token{}
	}
	return s.Token
}
