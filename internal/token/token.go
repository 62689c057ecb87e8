package token

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string // exact source text
	Literal string // decoded value for identifiers and literals
	Line    int
	Column  int
	Offset  int // byte offset of the first character
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Offset + len(t.Lexeme)
}

// Pos is a position in a source file. Line and Column are 1-based, Offset is 0-based.
type Pos struct {
	Line   int
	Column int
	Offset int
}

// Start is the position of the first character of the token.
func (t Token) Start() Pos {
	return Pos{Line: t.Line, Column: t.Column, Offset: t.Offset}
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT    TokenType = "IDENT"
	LIFETIME TokenType = "LIFETIME" // 'a, 'static, '_
	INT      TokenType = "INT"
	FLOAT    TokenType = "FLOAT"
	STRING   TokenType = "STRING"
	CHAR     TokenType = "CHAR"

	// BLOCK is a whole `{ ... }` group folded into one token by the parser,
	// used for const expressions whose operators are not otherwise tokenized.
	BLOCK TokenType = "BLOCK"

	// Punctuation
	LT        TokenType = "<"
	GT        TokenType = ">"
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	PATHSEP   TokenType = "::"
	PLUS      TokenType = "+"
	MINUS     TokenType = "-"
	ASTERISK  TokenType = "*"
	SLASH     TokenType = "/"
	PERCENT   TokenType = "%"
	CARET     TokenType = "^"
	ASSIGN    TokenType = "="
	FAT_ARROW TokenType = "=>"
	ARROW     TokenType = "->"
	AMPERSAND TokenType = "&"
	PIPE      TokenType = "|"
	BANG      TokenType = "!"
	QUESTION  TokenType = "?"
	TILDE     TokenType = "~"
	DOT       TokenType = "."
	HASH      TokenType = "#"
	DOLLAR    TokenType = "$"
	AT        TokenType = "@"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"

	// Keywords the grammar cares about
	WHERE  TokenType = "WHERE"
	FOR    TokenType = "FOR"
	CONST  TokenType = "CONST"
	FN     TokenType = "FN"
	DYN    TokenType = "DYN"
	IMPL   TokenType = "IMPL"
	MUT    TokenType = "MUT"
	AS     TokenType = "AS"
	PUB    TokenType = "PUB"
	UNSAFE TokenType = "UNSAFE"
	EXTERN TokenType = "EXTERN"
	ASYNC  TokenType = "ASYNC"
)

var keywords = map[string]TokenType{
	"where":  WHERE,
	"for":    FOR,
	"const":  CONST,
	"fn":     FN,
	"dyn":    DYN,
	"impl":   IMPL,
	"mut":    MUT,
	"as":     AS,
	"pub":    PUB,
	"unsafe": UNSAFE,
	"extern": EXTERN,
	"async":  ASYNC,
}

// LookupIdent maps an identifier to its keyword token type, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether the token type is one of the reserved words above.
func (t TokenType) IsKeyword() bool {
	for _, kw := range keywords {
		if kw == t {
			return true
		}
	}
	return false
}

// Span is a half-open source range [Start, End).
type Span struct {
	Start Pos
	End   Pos
}

// SpanOf covers the tokens from first through last inclusive.
func SpanOf(first, last Token) Span {
	end := Pos{Line: last.Line, Column: last.Column + len([]rune(last.Lexeme)), Offset: last.End()}
	return Span{Start: first.Start(), End: end}
}
