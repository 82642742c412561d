package parser

import (
	"github.com/btouchard/tmplexpr/internal/compiler/ast"
)

// ExpressionTag is a `{ expression }` tag in template text.
type ExpressionTag struct {
	Expression ast.Expression
	ast.Span
}

// ReadExpressionTag reads a complete `{ expression }` tag at the cursor. In
// loose mode a broken expression becomes a placeholder and the closing brace
// is still consumed. On error the cursor is restored.
func (p *Parser) ReadExpressionTag() (*ExpressionTag, error) {
	start := p.Index

	if _, err := p.Eat("{", true); err != nil {
		return nil, err
	}
	p.AllowWhitespace()

	expr, err := p.ReadExpression()
	if err != nil {
		p.Index = start
		return nil, err
	}

	p.AllowWhitespace()
	if _, err := p.Eat("}", true); err != nil {
		p.Index = start
		return nil, err
	}

	return &ExpressionTag{
		Expression: expr,
		Span:       ast.Span{Start: start, Stop: p.Index},
	}, nil
}
