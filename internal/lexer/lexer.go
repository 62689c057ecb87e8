package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/boundstore/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number, relative to input
	column       int  // current column number, relative to input
	base         token.Pos
}

func New(input string) *Lexer {
	return NewAt(input, token.Pos{Line: 1, Column: 1})
}

// NewAt creates a lexer for a fragment that starts at base in some larger file.
// Token positions are reported in the coordinates of that file.
func NewAt(input string, base token.Pos) *Lexer {
	if base.Line < 1 {
		base.Line = 1
	}
	if base.Column < 1 {
		base.Column = 1
	}
	l := &Lexer{input: input, line: 1, column: 0, base: base}
	l.readChar()
	return l
}

// Tokenize lexes the whole input. The returned slice always ends with an EOF token.
func Tokenize(input string, base token.Pos) []token.Token {
	l := NewAt(input, base)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.position = l.readPosition
		l.readPosition += w
		l.column++
		return
	}

	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	start, line, col := l.position, l.line, l.column
	if l.atEOF() {
		return l.emit(token.EOF, len(l.input), line, col)
	}

	var typ token.TokenType
	switch l.ch {
	case '=':
		if l.peekChar() == '>' {
			l.readChar()
			typ = token.FAT_ARROW
		} else {
			typ = token.ASSIGN
		}
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			typ = token.ARROW
		} else {
			typ = token.MINUS
		}
	case ':':
		if l.peekChar() == ':' {
			l.readChar()
			typ = token.PATHSEP
		} else {
			typ = token.COLON
		}
	case '\'':
		return l.readQuote(start, line, col)
	case '"':
		l.readString()
		return l.emit(token.STRING, start, line, col)
	default:
		if single, ok := punctuation[l.ch]; ok {
			typ = single
			break
		}
		if isLetter(l.ch) {
			return l.readWord(start, line, col)
		}
		if isDigit(l.ch) {
			return l.readNumber(start, line, col)
		}
		typ = token.ILLEGAL
	}
	l.readChar()
	return l.emit(typ, start, line, col)
}

var punctuation = map[rune]token.TokenType{
	'<': token.LT,
	'>': token.GT,
	',': token.COMMA,
	';': token.SEMICOLON,
	'+': token.PLUS,
	'*': token.ASTERISK,
	'/': token.SLASH,
	'%': token.PERCENT,
	'^': token.CARET,
	'&': token.AMPERSAND,
	'|': token.PIPE,
	'!': token.BANG,
	'?': token.QUESTION,
	'~': token.TILDE,
	'.': token.DOT,
	'#': token.HASH,
	'$': token.DOLLAR,
	'@': token.AT,
	'(': token.LPAREN,
	')': token.RPAREN,
	'[': token.LBRACKET,
	']': token.RBRACKET,
	'{': token.LBRACE,
	'}': token.RBRACE,
}

// emit builds a token from input[start:l.position].
func (l *Lexer) emit(typ token.TokenType, start, line, col int) token.Token {
	end := l.position
	if end > len(l.input) {
		end = len(l.input)
	}
	lexeme := l.input[start:end]
	if typ == token.EOF {
		lexeme = ""
	}
	absCol := col
	if line == 1 {
		absCol = l.base.Column + col - 1
	}
	return token.Token{
		Type:    typ,
		Lexeme:  lexeme,
		Literal: lexeme,
		Line:    l.base.Line + line - 1,
		Column:  absCol,
		Offset:  l.base.Offset + start,
	}
}

// readQuote distinguishes lifetimes ('a, 'static) from char literals ('a', '\n').
func (l *Lexer) readQuote(start, line, col int) token.Token {
	next := l.peekChar()
	if isLetter(next) {
		rest := l.input[l.readPosition:]
		n := 0
		runes := 0
		for n < len(rest) {
			r, w := utf8.DecodeRuneInString(rest[n:])
			if !isLetter(r) && !isDigit(r) {
				break
			}
			n += w
			runes++
		}
		isChar := runes == 1 && n < len(rest) && rest[n] == '\''
		if !isChar {
			l.readChar() // '
			for isLetter(l.ch) || isDigit(l.ch) {
				l.readChar()
			}
			tok := l.emit(token.LIFETIME, start, line, col)
			tok.Literal = tok.Lexeme[1:]
			return tok
		}
	}

	l.readChar() // opening '
	if l.ch == '\\' {
		l.readChar()
		l.readChar()
		for !l.atEOF() && l.ch != '\'' && l.ch != '\n' {
			l.readChar()
		}
	} else if !l.atEOF() && l.ch != '\'' {
		l.readChar()
	}
	if l.ch != '\'' {
		return l.emit(token.ILLEGAL, start, line, col)
	}
	l.readChar() // closing '
	return l.emit(token.CHAR, start, line, col)
}

// readString consumes a double-quoted string including escapes. l.ch is the opening quote.
func (l *Lexer) readString() {
	l.readChar()
	for !l.atEOF() && l.ch != '"' {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	l.readChar() // closing "
}

// readRawString consumes r"..." / r#"..."#. l.ch is the first '#' or '"'.
func (l *Lexer) readRawString() {
	hashes := 0
	for l.ch == '#' {
		hashes++
		l.readChar()
	}
	if l.ch != '"' {
		return
	}
	l.readChar()
	for !l.atEOF() {
		if l.ch == '"' {
			closing := 0
			for closing < hashes && l.readPosition+closing < len(l.input) && l.input[l.readPosition+closing] == '#' {
				closing++
			}
			if closing == hashes {
				l.readChar()
				for i := 0; i < hashes; i++ {
					l.readChar()
				}
				return
			}
		}
		l.readChar()
	}
}

// readWord reads identifiers, keywords, raw identifiers (r#type) and prefixed
// string literals (r"..", b"..", br#".."#).
func (l *Lexer) readWord(start, line, col int) token.Token {
	switch {
	case l.ch == 'r' && l.peekChar() == '#' && isLetter(l.peekChar2()):
		l.readChar() // r
		l.readChar() // #
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		tok := l.emit(token.IDENT, start, line, col)
		tok.Literal = tok.Lexeme[2:]
		return tok
	case l.ch == 'r' && (l.peekChar() == '"' || l.peekChar() == '#'):
		l.readChar()
		l.readRawString()
		return l.emit(token.STRING, start, line, col)
	case l.ch == 'b' && l.peekChar() == '"':
		l.readChar()
		l.readString()
		return l.emit(token.STRING, start, line, col)
	case l.ch == 'b' && l.peekChar() == 'r' && (l.peekChar2() == '"' || l.peekChar2() == '#'):
		l.readChar()
		l.readChar()
		l.readRawString()
		return l.emit(token.STRING, start, line, col)
	case l.ch == 'b' && l.peekChar() == '\'':
		l.readChar()
		tok := l.readQuote(l.position, line, col+1)
		tok.Type = token.CHAR
		tok.Lexeme = l.input[start : tok.Offset-l.base.Offset+len(tok.Lexeme)]
		tok.Literal = tok.Lexeme
		tok.Offset = l.base.Offset + start
		tok.Column--
		return tok
	}

	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	tok := l.emit(token.IDENT, start, line, col)
	tok.Type = token.LookupIdent(tok.Lexeme)
	return tok
}

func (l *Lexer) readNumber(start, line, col int) token.Token {
	isFloat := false
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'o' || l.peekChar() == 'b') {
		l.readChar()
		l.readChar()
	}
	for isDigit(l.ch) || isLetter(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) || isLetter(l.ch) {
			l.readChar()
		}
	}
	if isFloat {
		return l.emit(token.FLOAT, start, line, col)
	}
	return l.emit(token.INT, start, line, col)
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekChar2() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	_, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	pos2 := l.readPosition + w
	if pos2 >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos2:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		if l.ch == '/' {
			if l.peekChar() == '/' {
				for !l.atEOF() && l.ch != '\n' {
					l.readChar()
				}
				continue
			} else if l.peekChar() == '*' {
				l.readChar() // consume /
				l.readChar() // consume *
				depth := 1
				for !l.atEOF() && depth > 0 {
					if l.ch == '/' && l.peekChar() == '*' {
						depth++
						l.readChar()
					} else if l.ch == '*' && l.peekChar() == '/' {
						depth--
						l.readChar()
					}
					l.readChar()
				}
				continue
			}
		}
		break
	}
}
