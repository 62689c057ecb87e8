package prettyprinter

import (
	"bytes"
	"fmt"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/token"
)

// --- Code Printer (Output looks like source code) ---

// Tokens after which no space is written.
var glueAfter = map[token.TokenType]bool{
	token.LPAREN:    true,
	token.LBRACKET:  true,
	token.LT:        true,
	token.PATHSEP:   true,
	token.AMPERSAND: true,
	token.HASH:      true,
	token.DOLLAR:    true,
	token.QUESTION:  true,
	token.BANG:      true,
	token.TILDE:     true,
	token.DOT:       true,
	token.ASTERISK:  true,
}

// Tokens before which no space is written.
var glueBefore = map[token.TokenType]bool{
	token.COMMA:     true,
	token.SEMICOLON: true,
	token.COLON:     true,
	token.RPAREN:    true,
	token.RBRACKET:  true,
	token.GT:        true,
	token.PATHSEP:   true,
	token.DOT:       true,
}

// Tokens that take generic arguments or a parenthesised list without a space.
var callable = map[token.TokenType]bool{
	token.IDENT: true,
	token.FOR:   true,
	token.FN:    true,
}

func needsSpace(prev, next token.Token) bool {
	// keep `- >` and `= >` from gluing into arrows
	if next.Type == token.GT && (prev.Type == token.MINUS || prev.Type == token.ASSIGN) {
		return true
	}
	if glueAfter[prev.Type] || glueBefore[next.Type] {
		return false
	}
	if next.Type == token.LT || next.Type == token.LPAREN {
		return !callable[prev.Type]
	}
	return true
}

type CodePrinter struct {
	buf    bytes.Buffer
	indent string
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// NewCodePrinterWithIndent prints multi-line constructs relative to indent.
func NewCodePrinterWithIndent(indent string) *CodePrinter {
	return &CodePrinter{indent: indent}
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteByte('\n')
}

func (p *CodePrinter) PrintRun(run ast.TokenRun) {
	for i, tok := range run {
		if i > 0 && needsSpace(run[i-1], tok) {
			p.write(" ")
		}
		p.write(tok.Lexeme)
	}
}

// PrintGenerics writes `<...>`, or nothing for an empty list. Lifetime
// parameters are written before all others.
func (p *CodePrinter) PrintGenerics(g *ast.Generics) {
	if g == nil || len(g.Params) == 0 {
		return
	}
	p.write("<")
	for i, param := range g.LifetimesFirst() {
		if i > 0 {
			p.write(", ")
		}
		p.PrintParam(param)
	}
	p.write(">")
}

func (p *CodePrinter) PrintParam(param ast.GenericParam) {
	switch n := param.(type) {
	case *ast.LifetimeParam:
		p.write(n.Token.Lexeme)
		for i, b := range n.Bounds {
			if i == 0 {
				p.write(": ")
			} else {
				p.write(" + ")
			}
			p.write(b.Lexeme)
		}
	case *ast.TypeParam:
		p.write(n.Token.Lexeme)
		for i, b := range n.Bounds {
			if i == 0 {
				p.write(": ")
			} else {
				p.write(" + ")
			}
			p.PrintBound(b)
		}
		if len(n.Default) > 0 {
			p.write(" = ")
			p.PrintRun(n.Default)
		}
	case *ast.ConstParam:
		p.write("const ")
		p.write(n.Ident.Lexeme)
		p.write(": ")
		p.PrintRun(n.Type)
		if len(n.Default) > 0 {
			p.write(" = ")
			p.PrintRun(n.Default)
		}
	default:
		panic(fmt.Sprintf("prettyprinter: unhandled generic parameter %T", param))
	}
}

func (p *CodePrinter) PrintBound(b ast.Bound) {
	switch n := b.(type) {
	case *ast.LifetimeBound:
		p.write(n.Token.Lexeme)
	case *ast.TraitBound:
		p.PrintRun(n.Tokens)
	default:
		panic(fmt.Sprintf("prettyprinter: unhandled bound %T", b))
	}
}

// PrintWhereClause writes the single-line form `where A, B`.
func (p *CodePrinter) PrintWhereClause(w *ast.WhereClause) {
	if w == nil {
		return
	}
	p.write("where")
	for i, pred := range w.Predicates {
		if i == 0 {
			p.write(" ")
		} else {
			p.write(", ")
		}
		p.PrintRun(pred.Tokens)
	}
}

// PrintSignature writes a declaration header the way rustfmt lays it out:
// everything on one line, then a where-clause with one predicate per line.
// The prefix, parameter list and return type are copied as written; the
// generics and where-clause are rebuilt from tokens, so comments inside them
// are not kept.
// With hasBody the output ends where the opening '{' belongs, otherwise
// where the terminating ';' belongs.
func (p *CodePrinter) PrintSignature(sig *ast.Signature, hasBody bool) {
	p.write(sig.Prefix)
	p.write("fn ")
	p.write(sig.Name.Lexeme)
	p.PrintGenerics(sig.Generics)
	p.write(sig.Params)
	if sig.Result != "" {
		p.write(" -> ")
		p.write(sig.Result)
	}

	var preds []*ast.Predicate
	if sig.Generics != nil && sig.Generics.Where != nil {
		preds = sig.Generics.Where.Predicates
	}
	if len(preds) == 0 {
		if hasBody {
			p.write(" ")
		}
		return
	}

	p.writeln()
	p.write(p.indent)
	p.write("where")
	for i, pred := range preds {
		p.writeln()
		p.write(p.indent)
		p.write("    ")
		p.PrintRun(pred.Tokens)
		if hasBody || i < len(preds)-1 {
			p.write(",")
		}
	}
	if hasBody {
		p.writeln()
		p.write(p.indent)
	}
}

// Generics returns the canonical single-line text of g's parameter list.
func Generics(g *ast.Generics) string {
	p := NewCodePrinter()
	p.PrintGenerics(g)
	return p.String()
}

// WhereClause returns the canonical single-line text of w, or "" for nil.
func WhereClause(w *ast.WhereClause) string {
	p := NewCodePrinter()
	p.PrintWhereClause(w)
	return p.String()
}

// Run returns the canonical text of an opaque token run.
func Run(run ast.TokenRun) string {
	p := NewCodePrinter()
	p.PrintRun(run)
	return p.String()
}

// Signature renders sig for re-emission at the given indentation.
func Signature(sig *ast.Signature, indent string, hasBody bool) string {
	p := NewCodePrinterWithIndent(indent)
	p.PrintSignature(sig, hasBody)
	return p.String()
}
