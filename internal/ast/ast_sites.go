package ast

import (
	"github.com/funvibe/boundstore/internal/token"
)

// Site is a place in a host file the expander has to act on.
type Site interface {
	SiteSpan() token.Span
	site()
}

// MacroSite is a registration macro invocation, e.g. `bounds! { ... }`.
type MacroSite struct {
	Span      token.Span // whole invocation, including a trailing ';'
	Macro     string
	Body      string // text between the delimiters
	BodyStart token.Pos
}

func (s *MacroSite) site()                {}
func (s *MacroSite) SiteSpan() token.Span { return s.Span }

// AliasAttr is one `#[bound_alias(...)]` attribute.
type AliasAttr struct {
	Span      token.Span // the whole attribute item, `#` through `]`
	Args      string     // text between the parentheses
	ArgsStart token.Pos
}

// AliasSite is a function-like item carrying one or more alias attributes.
type AliasSite struct {
	Attrs      []*AliasAttr
	Header     string     // item text from its first token up to the body or ';'
	HeaderSpan token.Span // span of Header
	Indent     string     // leading whitespace of the item's first line
	HasBody    bool       // '{' follows the header, otherwise ';'
}

func (s *AliasSite) site() {}

func (s *AliasSite) SiteSpan() token.Span {
	if len(s.Attrs) > 0 {
		return token.Span{Start: s.Attrs[0].Span.Start, End: s.HeaderSpan.End}
	}
	return s.HeaderSpan
}
