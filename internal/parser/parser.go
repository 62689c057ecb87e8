package parser

import (
	"fmt"

	"github.com/funvibe/boundstore/internal/ast"
	"github.com/funvibe/boundstore/internal/diagnostics"
	"github.com/funvibe/boundstore/internal/lexer"
	"github.com/funvibe/boundstore/internal/token"
)

// Parser is a recursive-descent parser over a pre-lexed token slice.
// curToken is always the next token to consume.
type Parser struct {
	input  string
	base   token.Pos
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	errors []*diagnostics.DiagnosticError
}

// New creates a parser for input, which starts at base in its file.
func New(input string, base token.Pos) *Parser {
	p := &Parser{
		input:  input,
		base:   base,
		tokens: lexer.Tokenize(input, base),
	}
	p.pos = -1
	p.nextToken()
	return p
}

// Errors returns the diagnostics collected so far.
func (p *Parser) Errors() []*diagnostics.DiagnosticError {
	return p.errors
}

func (p *Parser) err() error {
	if len(p.errors) == 0 {
		return nil
	}
	return p.errors[0]
}

func (p *Parser) nextToken() token.Token {
	prev := p.curToken
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
	if p.pos+1 < len(p.tokens) {
		p.peekToken = p.tokens[p.pos+1]
	} else {
		p.peekToken = p.curToken
	}
	return prev
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// expect consumes the current token if it has type t, otherwise records an error.
func (p *Parser) expect(t token.TokenType, what string) (token.Token, bool) {
	if !p.curTokenIs(t) {
		p.unexpected(p.curToken, what)
		return p.curToken, false
	}
	return p.nextToken(), true
}

// unexpected records "what, found X" at tok.
func (p *Parser) unexpected(tok token.Token, what string) {
	p.errorf(tok, "%s%s", what, found(tok))
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, diagnostics.NewError(diagnostics.ErrB001, tok, "%s", msg))
}

func found(tok token.Token) string {
	if tok.Type == token.EOF {
		return ", found end of input"
	}
	return ", found '" + tok.Lexeme + "'"
}

// expectEnd records an error unless every token has been consumed.
func (p *Parser) expectEnd(what string) bool {
	if p.curTokenIs(token.EOF) {
		return true
	}
	p.unexpected(p.curToken, "unexpected token after "+what)
	return false
}

// slice returns the source text from the start of first to the end of last.
func (p *Parser) slice(first, last token.Token) string {
	start := first.Offset - p.base.Offset
	end := last.End() - p.base.Offset
	if start < 0 || end > len(p.input) || start > end {
		return ""
	}
	return p.input[start:end]
}

// readBlock folds a `{ ... }` group starting at curToken into one BLOCK token.
func (p *Parser) readBlock() (token.Token, bool) {
	open := p.curToken
	depth := 0
	for {
		switch p.curToken.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		case token.EOF:
			p.errorf(open, "unclosed '{'")
			return token.Token{}, false
		}
		last := p.nextToken()
		if depth == 0 {
			text := p.slice(open, last)
			return token.Token{
				Type:    token.BLOCK,
				Lexeme:  text,
				Literal: text,
				Line:    open.Line,
				Column:  open.Column,
				Offset:  open.Offset,
			}, true
		}
	}
}

var closers = map[token.TokenType]token.TokenType{
	token.LT:       token.GT,
	token.LPAREN:   token.RPAREN,
	token.LBRACKET: token.RBRACKET,
}

// stopFunc decides, at nesting depth zero, whether a run ends before cur.
type stopFunc func(cur, peek token.Token) bool

func never(_, _ token.Token) bool { return false }

func stopAt(types ...token.TokenType) stopFunc {
	return func(cur, _ token.Token) bool {
		for _, t := range types {
			if cur.Type == t {
				return true
			}
		}
		return false
	}
}

// parseRun collects an uninterpreted token run up to a depth-zero stop token
// or end of input. Angle brackets, parentheses and square brackets must balance.
func (p *Parser) parseRun(stop stopFunc) (ast.TokenRun, bool) {
	var run ast.TokenRun
	var stack []token.Token
	for !p.curTokenIs(token.EOF) {
		if len(stack) == 0 && stop(p.curToken, p.peekToken) {
			break
		}
		tok := p.curToken
		switch tok.Type {
		case token.LBRACE:
			block, ok := p.readBlock()
			if !ok {
				return nil, false
			}
			run = append(run, block)
			continue
		case token.RBRACE:
			p.errorf(tok, "unexpected '}'")
			return nil, false
		case token.LT, token.LPAREN, token.LBRACKET:
			stack = append(stack, tok)
		case token.GT, token.RPAREN, token.RBRACKET:
			if len(stack) == 0 {
				p.errorf(tok, "unbalanced '%s'", tok.Lexeme)
				return nil, false
			}
			open := stack[len(stack)-1]
			if closers[open.Type] != tok.Type {
				p.errorf(tok, "mismatched '%s' for '%s' at %d:%d", tok.Lexeme, open.Lexeme, open.Line, open.Column)
				return nil, false
			}
			stack = stack[:len(stack)-1]
		case token.ILLEGAL:
			p.errorf(tok, "invalid character")
			return nil, false
		}
		run = append(run, p.nextToken())
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		p.errorf(p.curToken, "expected '%s' to close '%s' at %d:%d", closers[open.Type], open.Lexeme, open.Line, open.Column)
		return nil, false
	}
	return run, true
}
