package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btouchard/tmplexpr/internal/compiler/ast"
	cerrors "github.com/btouchard/tmplexpr/internal/compiler/errors"
)

func TestReadExpressionTag(t *testing.T) {
	p := New("{ a + b } rest", Options{})

	tag, err := p.ReadExpressionTag()
	require.NoError(t, err)
	assert.Equal(t, "BinaryExpression", tag.Expression.Type())
	assert.Equal(t, 0, tag.Start)
	assert.Equal(t, 9, tag.Stop)
	assert.Equal(t, 9, p.Index)
}

func TestReadExpressionTagGrouped(t *testing.T) {
	p := New("{(count)}", Options{})

	tag, err := p.ReadExpressionTag()
	require.NoError(t, err)
	assert.Equal(t, "Identifier", tag.Expression.Type())
	assert.Equal(t, 9, p.Index)
}

func TestReadExpressionTagLoose(t *testing.T) {
	p := New("{ a + }<p>", Options{Loose: true})

	tag, err := p.ReadExpressionTag()
	require.NoError(t, err)
	assert.True(t, ast.IsPlaceholder(tag.Expression))
	assert.Equal(t, 2, tag.Expression.Pos())
	assert.Equal(t, 6, tag.Expression.End())
	assert.Equal(t, 7, p.Index)
}

func TestReadExpressionTagErrors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		code     string
		at       int
	}{
		{"missing open brace", "a + b}", cerrors.CodeExpectedToken, 0},
		{"broken expression", "{ a + }", cerrors.CodeJSParseError, 6},
		{"missing close brace", "{ a b }", cerrors.CodeExpectedToken, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.template, Options{})

			tag, err := p.ReadExpressionTag()
			ce := requireCompileError(t, err)
			assert.Nil(t, tag)
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, tt.at, ce.Offset())
			assert.Equal(t, 0, p.Index)
		})
	}
}
