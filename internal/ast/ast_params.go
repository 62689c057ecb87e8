package ast

import (
	"github.com/funvibe/boundstore/internal/token"
)

// GenericParam is the closed set of generic parameter kinds:
// *LifetimeParam, *TypeParam and *ConstParam.
type GenericParam interface {
	TokenProvider
	ParamName() string
	genericParam()
}

// LifetimeParam is `'a` or `'a: 'b + 'c`.
type LifetimeParam struct {
	Token  token.Token // the lifetime token
	Name   string      // without the leading quote
	Bounds []token.Token
}

func (p *LifetimeParam) genericParam()         {}
func (p *LifetimeParam) ParamName() string     { return p.Name }
func (p *LifetimeParam) GetToken() token.Token { return p.Token }

// TypeParam is `T`, `T: A + B` or `T: A = Default`.
type TypeParam struct {
	Token   token.Token // the identifier
	Name    string
	Bounds  []Bound
	Default TokenRun
}

func (p *TypeParam) genericParam()         {}
func (p *TypeParam) ParamName() string     { return p.Name }
func (p *TypeParam) GetToken() token.Token { return p.Token }

// ConstParam is `const N: usize` or `const N: usize = 3`.
type ConstParam struct {
	Token   token.Token // the 'const' keyword
	Ident   token.Token
	Name    string
	Type    TokenRun
	Default TokenRun
}

func (p *ConstParam) genericParam()         {}
func (p *ConstParam) ParamName() string     { return p.Name }
func (p *ConstParam) GetToken() token.Token { return p.Token }

// Bound is one `+`-separated element of a type parameter's bound list.
type Bound interface {
	TokenProvider
	bound()
}

// LifetimeBound is `'a` in `T: 'a + Trait`.
type LifetimeBound struct {
	Token token.Token
}

func (b *LifetimeBound) bound()                {}
func (b *LifetimeBound) GetToken() token.Token { return b.Token }

// TraitBound is any other bound: `Float`, `?Sized`, `for<'a> Fn(&'a T)`,
// `Polygon<'a, F>`. Kept as an opaque run.
type TraitBound struct {
	Tokens TokenRun
}

func (b *TraitBound) bound()                {}
func (b *TraitBound) GetToken() token.Token { return b.Tokens.GetToken() }
