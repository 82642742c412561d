package token

type TokenType string

type Position struct {
	Line   int
	Column int
	Offset int
}

type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
	End     int // byte offset just past the token
}

const (
	// Special
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers + literals
	IDENT    TokenType = "IDENT"
	INT      TokenType = "INT"
	FLOAT    TokenType = "FLOAT"
	STRING   TokenType = "STRING"
	TEMPLATE TokenType = "TEMPLATE"

	// Operators
	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	BANG     TokenType = "!"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	QUESTION TokenType = "?"
	NULLISH  TokenType = "??"
	OPTCHAIN TokenType = "?."
	SPREAD   TokenType = "..."

	// Comparison
	EQ         TokenType = "=="
	NOT_EQ     TokenType = "!="
	STRICT_EQ  TokenType = "==="
	STRICT_NEQ TokenType = "!=="
	LT         TokenType = "<"
	GT         TokenType = ">"
	LT_EQ      TokenType = "<="
	GT_EQ      TokenType = ">="

	// Logical
	AND TokenType = "&&"
	OR  TokenType = "||"

	// Delimiters
	COLON     TokenType = ":"
	SEMICOLON TokenType = ";"
	COMMA     TokenType = ","
	DOT       TokenType = "."

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACE   TokenType = "{"
	RBRACE   TokenType = "}"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"

	// Keywords
	TRUE      TokenType = "TRUE"
	FALSE     TokenType = "FALSE"
	NULL      TokenType = "NULL"
	TYPEOF    TokenType = "TYPEOF"
	AS        TokenType = "AS"
	SATISFIES TokenType = "SATISFIES"
)

var keywords = map[string]TokenType{
	"true":      TRUE,
	"false":     FALSE,
	"null":      NULL,
	"typeof":    TYPEOF,
	"as":        AS,
	"satisfies": SATISFIES,
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether t is a contextual keyword that may still be used as
// a property name after '.'.
func IsKeyword(t TokenType) bool {
	switch t {
	case TRUE, FALSE, NULL, TYPEOF, AS, SATISFIES:
		return true
	}
	return false
}
