package script

import (
	"fmt"

	"github.com/btouchard/tmplexpr/internal/compiler/ast"
	cerrors "github.com/btouchard/tmplexpr/internal/compiler/errors"
	"github.com/btouchard/tmplexpr/internal/compiler/lexer"
	"github.com/btouchard/tmplexpr/internal/compiler/token"
)

// Precedence levels for Pratt parser
const (
	_ int = iota
	LOWEST
	ASSIGN      // =
	CONDITIONAL // ?:
	NULLISH     // ??
	OR          // ||
	AND         // &&
	EQUALS      // == != === !==
	LESSGREATER // < > <= >=
	AS          // as satisfies
	SUM         // + -
	PRODUCT     // * / %
	UNARY       // ! - + typeof
	POSTFIX     // x!
	CALL        // . ?. () []
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:     ASSIGN,
	token.QUESTION:   CONDITIONAL,
	token.NULLISH:    NULLISH,
	token.OR:         OR,
	token.AND:        AND,
	token.EQ:         EQUALS,
	token.NOT_EQ:     EQUALS,
	token.STRICT_EQ:  EQUALS,
	token.STRICT_NEQ: EQUALS,
	token.LT:         LESSGREATER,
	token.GT:         LESSGREATER,
	token.LT_EQ:      LESSGREATER,
	token.GT_EQ:      LESSGREATER,
	token.AS:         AS,
	token.SATISFIES:  AS,
	token.PLUS:       SUM,
	token.MINUS:      SUM,
	token.ASTERISK:   PRODUCT,
	token.SLASH:      PRODUCT,
	token.PERCENT:    PRODUCT,
	token.BANG:       POSTFIX,
	token.DOT:        CALL,
	token.OPTCHAIN:   CALL,
	token.LPAREN:     CALL,
	token.LBRACKET:   CALL,
}

// Mode selects grammar extensions.
type Mode struct {
	TypeScript bool
}

// Result is what one grammar invocation produces. Comments holds every comment
// the lexer passed over, in source order, and is populated even when parsing
// fails.
type Result struct {
	Node     ast.Expression
	Comments []ast.Comment
}

type Parser struct {
	l         *lexer.Lexer
	curToken  token.Token
	peekToken token.Token
	mode      Mode
	err       *cerrors.CompileError

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expression
	// start is the offset where the left operand began, including any
	// grouping parentheses the operand itself does not span.
	infixParseFn func(left ast.Expression, start int) ast.Expression
)

// Grammar adapts ParseExpressionAt to an interface value.
type Grammar struct{}

func (Grammar) ParseExpressionAt(template string, offset int, mode Mode) (Result, error) {
	return ParseExpressionAt(template, offset, mode)
}

// ParseExpressionAt parses the longest expression that starts at offset and
// stops at the first token that cannot continue it; trailing input is left for
// the caller. Grouping parentheses around the whole expression are not part of
// the returned node's span.
func ParseExpressionAt(template string, offset int, mode Mode) (Result, error) {
	p := newParser(lexer.NewAt(template, offset), mode)

	node := p.parseExpression(LOWEST)
	if p.err == nil && unterminated(p.peekToken) {
		p.unexpected(p.peekToken)
	}

	result := Result{Comments: p.l.Comments()}
	if p.err != nil {
		return result, p.err
	}
	result.Node = node
	return result, nil
}

func newParser(l *lexer.Lexer, mode Mode) *Parser {
	p := &Parser{
		l:    l,
		mode: mode,
	}

	// Initialize prefix parsers
	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.AS, p.parseIdentifier) // contextual keywords are plain identifiers here
	p.registerPrefix(token.SATISFIES, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TEMPLATE, p.parseTemplateLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.NULL, p.parseNullLiteral)
	p.registerPrefix(token.BANG, p.parseUnaryExpression)
	p.registerPrefix(token.MINUS, p.parseUnaryExpression)
	p.registerPrefix(token.PLUS, p.parseUnaryExpression)
	p.registerPrefix(token.TYPEOF, p.parseUnaryExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(token.LBRACE, p.parseObjectLiteral)

	// Initialize infix parsers
	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, op := range []token.TokenType{
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
		token.EQ, token.NOT_EQ, token.STRICT_EQ, token.STRICT_NEQ,
		token.LT, token.GT, token.LT_EQ, token.GT_EQ,
		token.AND, token.OR, token.NULLISH,
	} {
		p.registerInfix(op, p.parseBinaryExpression)
	}
	p.registerInfix(token.ASSIGN, p.parseAssignExpression)
	p.registerInfix(token.QUESTION, p.parseConditionalExpression)
	p.registerInfix(token.DOT, p.parseMemberExpression)
	p.registerInfix(token.OPTCHAIN, p.parseOptionalChain)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)

	if mode.TypeScript {
		p.registerInfix(token.AS, p.parseAsExpression)
		p.registerInfix(token.SATISFIES, p.parseAsExpression)
		p.registerInfix(token.BANG, p.parseNonNullExpression)
	}

	// Read two tokens to initialize curToken and peekToken
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// fail records the first error only; later failures are consequences of it.
func (p *Parser) fail(offset int, msg string) {
	if p.err == nil {
		p.err = cerrors.JSParseError(offset, msg)
	}
}

// unterminated reports a string, template or comment that runs to the end of
// input. The lookahead token can be one even when the expression is complete.
func unterminated(tok token.Token) bool {
	if tok.Type != token.ILLEGAL {
		return false
	}
	switch tok.Literal {
	case lexer.UnterminatedString, lexer.UnterminatedTemplate, lexer.UnterminatedComment:
		return true
	}
	return false
}

func (p *Parser) unexpected(tok token.Token) {
	switch {
	case unterminated(tok):
		p.fail(tok.Pos.Offset, capitalize(tok.Literal))
	case tok.Type == token.ILLEGAL:
		p.fail(tok.Pos.Offset, fmt.Sprintf("Unexpected character '%s'", tok.Literal))
	default:
		p.fail(tok.Pos.Offset, "Unexpected token")
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.unexpected(p.peekToken)
	return false
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// span closes a node that began at start on the current token.
func (p *Parser) span(start int) ast.Span {
	return ast.Span{Start: start, Stop: p.curToken.End}
}

// ============ EXPRESSIONS ============

func (p *Parser) parseExpression(precedence int) ast.Expression {
	if p.err != nil {
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.unexpected(p.curToken)
		return nil
	}

	start := p.curToken.Pos.Offset
	leftExp := prefix()

	for p.err == nil && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp, start)
	}

	if p.err != nil {
		return nil
	}
	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Ident{
		Name: p.curToken.Literal,
		Span: p.span(p.curToken.Pos.Offset),
	}
}

func (p *Parser) parseIntLiteral() ast.Expression {
	return &ast.IntLit{
		Value: p.curToken.Literal,
		Span:  p.span(p.curToken.Pos.Offset),
	}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	return &ast.FloatLit{
		Value: p.curToken.Literal,
		Span:  p.span(p.curToken.Pos.Offset),
	}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	start := p.curToken.Pos.Offset
	return &ast.StringLit{
		Value: p.curToken.Literal,
		Quote: p.l.Input()[start],
		Span:  p.span(start),
	}
}

func (p *Parser) parseTemplateLiteral() ast.Expression {
	return &ast.TemplateLit{
		Value: p.curToken.Literal,
		Span:  p.span(p.curToken.Pos.Offset),
	}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BoolLit{
		Value: p.curToken.Type == token.TRUE,
		Span:  p.span(p.curToken.Pos.Offset),
	}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLit{Span: p.span(p.curToken.Pos.Offset)}
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	start := p.curToken.Pos.Offset
	expr := &ast.UnaryExpr{Op: p.curToken.Literal}

	p.nextToken()

	expr.Operand = p.parseExpression(UNARY)
	expr.Span = p.span(start)

	return expr
}

// parseGroupedExpression returns the inner expression with its own span; the
// parentheses only show up in the start offset of an enclosing node.
func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	start := p.curToken.Pos.Offset
	lit := &ast.ArrayLit{Elements: []ast.Expression{}}

	for !p.peekTokenIs(token.RBRACKET) {
		if p.peekTokenIs(token.COMMA) {
			// hole: [a, , b]
			p.nextToken()
			continue
		}
		p.nextToken()
		lit.Elements = append(lit.Elements, p.parseElement())
		if p.err != nil {
			return nil
		}
		if !p.peekTokenIs(token.RBRACKET) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}
	p.nextToken() // consume ']'

	lit.Span = p.span(start)
	return lit
}

// parseElement parses an array element or call argument, which may be spread.
func (p *Parser) parseElement() ast.Expression {
	if !p.curTokenIs(token.SPREAD) {
		return p.parseExpression(LOWEST)
	}
	start := p.curToken.Pos.Offset
	p.nextToken()
	spread := &ast.SpreadExpr{Argument: p.parseExpression(LOWEST)}
	spread.Span = p.span(start)
	return spread
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	start := p.curToken.Pos.Offset
	lit := &ast.ObjectLit{Properties: []*ast.Property{}}

	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		prop := p.parseProperty()
		if p.err != nil {
			return nil
		}
		lit.Properties = append(lit.Properties, prop)
		if !p.peekTokenIs(token.RBRACE) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}
	p.nextToken() // consume '}'

	lit.Span = p.span(start)
	return lit
}

func (p *Parser) parseProperty() *ast.Property {
	start := p.curToken.Pos.Offset

	if p.curTokenIs(token.SPREAD) {
		spread := p.parseElement()
		return &ast.Property{Key: "...", Value: spread, Span: p.span(start)}
	}

	keyTok := p.curToken
	switch {
	case keyTok.Type == token.IDENT, token.IsKeyword(keyTok.Type),
		keyTok.Type == token.STRING, keyTok.Type == token.INT:
	default:
		p.unexpected(keyTok)
		return nil
	}

	prop := &ast.Property{Key: keyTok.Literal}

	if keyTok.Type == token.IDENT && (p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.RBRACE)) {
		prop.Shorthand = true
		prop.Value = &ast.Ident{Name: keyTok.Literal, Span: p.span(start)}
		prop.Span = p.span(start)
		return prop
	}

	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	prop.Value = p.parseExpression(LOWEST)
	prop.Span = p.span(start)
	return prop
}

func (p *Parser) parseBinaryExpression(left ast.Expression, start int) ast.Expression {
	expr := &ast.BinaryExpr{
		Left: left,
		Op:   p.curToken.Literal,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	expr.Span = p.span(start)

	return expr
}

// parseAssignExpression is right-associative: a = b = c is a = (b = c).
func (p *Parser) parseAssignExpression(left ast.Expression, start int) ast.Expression {
	switch left.(type) {
	case *ast.Ident, *ast.MemberExpr, *ast.IndexExpr:
	default:
		p.fail(start, "Assigning to rvalue")
		return nil
	}

	expr := &ast.AssignExpr{Target: left}
	p.nextToken()
	expr.Value = p.parseExpression(LOWEST)
	expr.Span = p.span(start)
	return expr
}

func (p *Parser) parseConditionalExpression(test ast.Expression, start int) ast.Expression {
	expr := &ast.ConditionalExpr{Test: test}

	p.nextToken()
	expr.Consequent = p.parseExpression(LOWEST)

	if !p.expectPeek(token.COLON) {
		return nil
	}

	p.nextToken()
	expr.Alternate = p.parseExpression(ASSIGN)
	expr.Span = p.span(start)

	return expr
}

func (p *Parser) parseMemberExpression(left ast.Expression, start int) ast.Expression {
	if !p.peekTokenIs(token.IDENT) && !token.IsKeyword(p.peekToken.Type) {
		p.unexpected(p.peekToken)
		return nil
	}
	p.nextToken()

	return &ast.MemberExpr{
		Object:   left,
		Property: p.curToken.Literal,
		Span:     p.span(start),
	}
}

// parseOptionalChain handles a?.b, a?.[k] and a?.(args).
func (p *Parser) parseOptionalChain(left ast.Expression, start int) ast.Expression {
	switch {
	case p.peekTokenIs(token.LPAREN):
		p.nextToken()
		call, ok := p.parseCallExpression(left, start).(*ast.CallExpr)
		if !ok {
			return nil
		}
		call.Optional = true
		return call
	case p.peekTokenIs(token.LBRACKET):
		p.nextToken()
		index, ok := p.parseIndexExpression(left, start).(*ast.IndexExpr)
		if !ok {
			return nil
		}
		index.Optional = true
		return index
	}

	member, ok := p.parseMemberExpression(left, start).(*ast.MemberExpr)
	if !ok {
		return nil
	}
	member.Optional = true
	return member
}

func (p *Parser) parseIndexExpression(left ast.Expression, start int) ast.Expression {
	expr := &ast.IndexExpr{Object: left}

	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)

	if !p.expectPeek(token.RBRACKET) {
		return nil
	}

	expr.Span = p.span(start)
	return expr
}

func (p *Parser) parseCallExpression(left ast.Expression, start int) ast.Expression {
	expr := &ast.CallExpr{
		Function: left,
		Args:     []ast.Expression{},
	}

	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		expr.Args = append(expr.Args, p.parseElement())
		if p.err != nil {
			return nil
		}
		if !p.peekTokenIs(token.RPAREN) && !p.expectPeek(token.COMMA) {
			return nil
		}
	}
	p.nextToken() // consume ')'

	expr.Span = p.span(start)
	return expr
}

// ============ TYPESCRIPT ============

func (p *Parser) parseAsExpression(left ast.Expression, start int) ast.Expression {
	expr := &ast.AsExpr{
		Expr:      left,
		Satisfies: p.curTokenIs(token.SATISFIES),
	}

	typeName, ok := p.parseTypeName()
	if !ok {
		return nil
	}
	expr.TypeName = typeName
	expr.Span = p.span(start)
	return expr
}

// parseTypeName reads a dotted type reference with optional [] suffixes.
func (p *Parser) parseTypeName() (string, bool) {
	if !p.peekTokenIs(token.IDENT) && !p.peekTokenIs(token.NULL) {
		p.unexpected(p.peekToken)
		return "", false
	}
	p.nextToken()
	name := p.curToken.Literal

	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return "", false
		}
		name += "." + p.curToken.Literal
	}

	for p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		if !p.expectPeek(token.RBRACKET) {
			return "", false
		}
		name += "[]"
	}

	return name, true
}

func (p *Parser) parseNonNullExpression(left ast.Expression, start int) ast.Expression {
	return &ast.NonNullExpr{
		Expr: left,
		Span: p.span(start),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
