package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/btouchard/tmplexpr/internal/compiler/ast"
	"github.com/btouchard/tmplexpr/internal/compiler/token"
)

// Literals carried by ILLEGAL tokens for input that started a construct but
// never finished it.
const (
	UnterminatedString   = "unterminated string constant"
	UnterminatedTemplate = "unterminated template"
	UnterminatedComment  = "unterminated comment"
)

type Lexer struct {
	input        string
	position     int  // current offset in input (bytes)
	readPosition int  // next reading position (bytes)
	ch           rune // current character
	line         int  // current line (1-based)
	column       int  // current column (1-based)

	comments     []ast.Comment
	unterminated int // start of an unterminated block comment, -1 if none
}

func New(input string) *Lexer {
	return NewAt(input, 0)
}

// NewAt returns a lexer that starts reading input at the byte offset. Token
// positions stay absolute offsets into input.
func NewAt(input string, offset int) *Lexer {
	if offset < 0 {
		offset = 0
	}
	if offset > len(input) {
		offset = len(input)
	}
	before := input[:offset]
	l := &Lexer{
		input:        input,
		readPosition: offset,
		line:         strings.Count(before, "\n") + 1,
		column:       utf8.RuneCountInString(before[strings.LastIndexByte(before, '\n')+1:]),
		unterminated: -1,
	}
	l.readChar()
	return l
}

// Input returns the full text being lexed.
func (l *Lexer) Input() string {
	return l.input
}

// Comments returns every comment skipped so far, in source order.
func (l *Lexer) Comments() []ast.Comment {
	return l.comments
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.position = l.readPosition
		l.readPosition += size

		if l.ch == '\n' {
			l.line++
			l.column = 0
		} else {
			l.column++
		}
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekCharAt(n int) rune {
	pos := l.readPosition
	for i := 0; i < n; i++ {
		if pos >= len(l.input) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(l.input[pos:])
		pos += size
	}
	if pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.column,
		Offset: l.position,
	}
}

func (l *Lexer) NextToken() token.Token {
	tok := l.next()
	tok.End = l.position
	return tok
}

func (l *Lexer) next() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	if l.unterminated >= 0 {
		pos.Offset = l.unterminated
		l.unterminated = -1
		return token.Token{Type: token.ILLEGAL, Literal: UnterminatedComment, Pos: pos}
	}

	var tok token.Token

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			if l.peekCharAt(1) == '=' {
				return l.readOperator(token.STRICT_EQ, 3)
			}
			return l.readOperator(token.EQ, 2)
		}
		tok = l.makeToken(token.ASSIGN, string(l.ch))
	case '!':
		if l.peekChar() == '=' {
			if l.peekCharAt(1) == '=' {
				return l.readOperator(token.STRICT_NEQ, 3)
			}
			return l.readOperator(token.NOT_EQ, 2)
		}
		tok = l.makeToken(token.BANG, string(l.ch))
	case '&':
		if l.peekChar() == '&' {
			return l.readOperator(token.AND, 2)
		}
		tok = l.makeToken(token.ILLEGAL, string(l.ch))
	case '|':
		if l.peekChar() == '|' {
			return l.readOperator(token.OR, 2)
		}
		tok = l.makeToken(token.ILLEGAL, string(l.ch))
	case '<':
		if l.peekChar() == '=' {
			return l.readOperator(token.LT_EQ, 2)
		}
		tok = l.makeToken(token.LT, string(l.ch))
	case '>':
		if l.peekChar() == '=' {
			return l.readOperator(token.GT_EQ, 2)
		}
		tok = l.makeToken(token.GT, string(l.ch))
	case '?':
		if l.peekChar() == '?' {
			return l.readOperator(token.NULLISH, 2)
		}
		// a?.5:1 is a conditional, not optional chaining
		if l.peekChar() == '.' && !isDigit(l.peekCharAt(1)) {
			return l.readOperator(token.OPTCHAIN, 2)
		}
		tok = l.makeToken(token.QUESTION, string(l.ch))
	case '.':
		if l.peekChar() == '.' && l.peekCharAt(1) == '.' {
			return l.readOperator(token.SPREAD, 3)
		}
		if isDigit(l.peekChar()) {
			lit, _ := l.readNumber()
			return token.Token{Type: token.FLOAT, Literal: lit, Pos: pos}
		}
		tok = l.makeToken(token.DOT, string(l.ch))
	case '+':
		tok = l.makeToken(token.PLUS, string(l.ch))
	case '-':
		tok = l.makeToken(token.MINUS, string(l.ch))
	case '*':
		tok = l.makeToken(token.ASTERISK, string(l.ch))
	case '/':
		tok = l.makeToken(token.SLASH, string(l.ch))
	case '%':
		tok = l.makeToken(token.PERCENT, string(l.ch))
	case ':':
		tok = l.makeToken(token.COLON, string(l.ch))
	case ';':
		tok = l.makeToken(token.SEMICOLON, string(l.ch))
	case ',':
		tok = l.makeToken(token.COMMA, string(l.ch))
	case '(':
		tok = l.makeToken(token.LPAREN, string(l.ch))
	case ')':
		tok = l.makeToken(token.RPAREN, string(l.ch))
	case '{':
		tok = l.makeToken(token.LBRACE, string(l.ch))
	case '}':
		tok = l.makeToken(token.RBRACE, string(l.ch))
	case '[':
		tok = l.makeToken(token.LBRACKET, string(l.ch))
	case ']':
		tok = l.makeToken(token.RBRACKET, string(l.ch))
	case '"', '\'':
		lit, ok := l.readString(l.ch)
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: UnterminatedString, Pos: pos}
		}
		return token.Token{Type: token.STRING, Literal: lit, Pos: pos}
	case '`':
		lit, ok := l.readTemplate()
		if !ok {
			return token.Token{Type: token.ILLEGAL, Literal: UnterminatedTemplate, Pos: pos}
		}
		return token.Token{Type: token.TEMPLATE, Literal: lit, Pos: pos}
	case 0:
		if l.position >= len(l.input) {
			return token.Token{Type: token.EOF, Literal: "", Pos: pos}
		}
		tok = l.makeToken(token.ILLEGAL, string(l.ch))
	default:
		if isLetter(l.ch) {
			lit := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(lit), Literal: lit, Pos: pos}
		}
		if isDigit(l.ch) {
			lit, isFloat := l.readNumber()
			if isFloat {
				return token.Token{Type: token.FLOAT, Literal: lit, Pos: pos}
			}
			return token.Token{Type: token.INT, Literal: lit, Pos: pos}
		}
		tok = l.makeToken(token.ILLEGAL, string(l.ch))
	}

	l.readChar()
	return tok
}

func (l *Lexer) makeToken(typ token.TokenType, lit string) token.Token {
	return token.Token{
		Type:    typ,
		Literal: lit,
		Pos:     l.currentPos(),
	}
}

// readOperator consumes an n-character operator starting at the current char.
func (l *Lexer) readOperator(typ token.TokenType, n int) token.Token {
	pos := l.currentPos()
	start := l.position
	for i := 0; i < n; i++ {
		l.readChar()
	}
	return token.Token{Type: typ, Literal: l.input[start:l.position], Pos: pos}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch != 0 && IsWhitespace(l.ch) {
			l.readChar()
		}

		if l.ch == '/' && l.peekChar() == '/' {
			start := l.position
			l.readChar() // consume /
			l.readChar() // consume /
			valueStart := l.position
			for l.ch != '\n' && l.ch != '\r' && l.position < len(l.input) {
				l.readChar()
			}
			l.comments = append(l.comments, ast.Comment{
				Kind:  ast.LineComment,
				Value: l.input[valueStart:l.position],
				Span:  ast.Span{Start: start, Stop: l.position},
			})
			continue
		}

		if l.ch == '/' && l.peekChar() == '*' {
			start := l.position
			l.readChar() // consume /
			l.readChar() // consume *
			valueStart := l.position
			for {
				if l.position >= len(l.input) {
					l.unterminated = start
					return
				}
				if l.ch == '*' && l.peekChar() == '/' {
					valueEnd := l.position
					l.readChar() // consume *
					l.readChar() // consume /
					l.comments = append(l.comments, ast.Comment{
						Kind:  ast.BlockComment,
						Value: l.input[valueStart:valueEnd],
						Span:  ast.Span{Start: start, Stop: l.position},
					})
					break
				}
				l.readChar()
			}
			continue
		}

		break
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position

	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}

	return l.input[start:l.position]
}

func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	isFloat := false

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar() // consume .
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) ||
		((l.peekChar() == '+' || l.peekChar() == '-') && isDigit(l.peekCharAt(1)))) {
		isFloat = true
		l.readChar() // consume e
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.position], isFloat
}

// readString reads a quoted string. Strings may not span lines.
func (l *Lexer) readString(quote rune) (string, bool) {
	l.readChar() // consume opening quote
	start := l.position

	for l.ch != quote {
		if l.position >= len(l.input) || l.ch == '\n' {
			return "", false
		}
		if l.ch == '\\' {
			l.readChar() // consume backslash
		}
		l.readChar()
	}

	str := l.input[start:l.position]
	l.readChar() // consume closing quote
	return str, true
}

// readTemplate reads a template literal verbatim, skipping over ${...}
// substitutions with balanced braces.
func (l *Lexer) readTemplate() (string, bool) {
	l.readChar() // consume opening `
	start := l.position
	depth := 0

	for {
		if l.position >= len(l.input) {
			return "", false
		}
		switch {
		case l.ch == '\\':
			l.readChar()
		case depth == 0 && l.ch == '`':
			str := l.input[start:l.position]
			l.readChar() // consume closing `
			return str, true
		case l.ch == '$' && l.peekChar() == '{':
			depth++
			l.readChar()
		case depth > 0 && l.ch == '{':
			depth++
		case depth > 0 && l.ch == '}':
			depth--
		}
		l.readChar()
	}
}

// IsWhitespace matches the JavaScript whitespace and line terminator set:
// unicode.IsSpace plus U+FEFF, minus U+0085.
func IsWhitespace(r rune) bool {
	if r == '\ufeff' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_' || ch == '$'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
