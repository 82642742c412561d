package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/btouchard/tmplexpr/internal/compiler/ast"
	cerrors "github.com/btouchard/tmplexpr/internal/compiler/errors"
	"github.com/btouchard/tmplexpr/internal/compiler/lexer"
)

type readConfig struct {
	openingToken  string
	disallowLoose bool
}

// ReadOption adjusts a single ReadExpression call.
type ReadOption func(*readConfig)

// WithOpeningToken names the delimiter that opened the enclosing tag. Loose
// recovery searches for its match. The default is "{".
func WithOpeningToken(tok string) ReadOption {
	return func(c *readConfig) {
		c.openingToken = tok
	}
}

// DisallowLoose turns off loose recovery for this call even when the parser
// is in loose mode.
func DisallowLoose() ReadOption {
	return func(c *readConfig) {
		c.disallowLoose = true
	}
}

// ReadExpression reads the expression that starts at the cursor and moves the
// cursor to where template parsing should resume: past the expression, past
// any trailing comment the grammar consumed, and past the closing parentheses
// of any grouping that opened before the expression.
//
// On failure the cursor is left where it was. In loose mode (unless
// DisallowLoose is given) a failure is replaced by a placeholder identifier
// reaching up to the matching closing delimiter.
func (p *Parser) ReadExpression(opts ...ReadOption) (ast.Expression, error) {
	cfg := readConfig{openingToken: "{"}
	for _, opt := range opts {
		opt(&cfg)
	}

	node, end, err := p.readExpression()
	if err == nil {
		p.Index = end
		return node, nil
	}

	cerr := cerrors.Wrap(err, p.Index)

	if p.Loose && !cfg.disallowLoose {
		if placeholder, ok := p.GetLooseIdentifier(cfg.openingToken); ok {
			p.log.Debug().
				Int("offset", placeholder.Start).
				Int("end", placeholder.Stop).
				Str("code", cerr.Code).
				Msg("expression replaced by placeholder")
			return placeholder, nil
		}
		p.log.Debug().
			Int("offset", p.Index).
			Str("open", cfg.openingToken).
			Str("code", cerr.Code).
			Msg("no matching delimiter, loose recovery failed")
	}

	return nil, cerr
}

// readExpression runs the grammar at the cursor and returns the node together
// with the offset the cursor should move to. It never moves the cursor itself.
func (p *Parser) readExpression() (ast.Expression, int, error) {
	baseline := len(p.Root.Comments)

	result, err := p.grammar.ParseExpressionAt(p.Template, p.Index, p.mode())
	p.Root.Comments = append(p.Root.Comments, result.Comments...)
	if err != nil {
		return nil, 0, err
	}
	node := result.Node
	if node == nil {
		return nil, 0, cerrors.JSParseError(p.Index, "Unexpected token")
	}

	// The grammar skips leading comments silently. Resume the paren scan after
	// the last one that ends before the node.
	scanStart := p.Index
	for i := len(p.Root.Comments) - 1; i >= baseline; i-- {
		if c := p.Root.Comments[i]; c.Stop < node.Pos() {
			scanStart = c.Stop
			break
		}
	}

	numParens := 0
	if scanStart < node.Pos() && node.Pos() <= len(p.Template) {
		numParens = strings.Count(p.Template[scanStart:node.Pos()], "(")
	}

	end := node.End()
	if last, ok := p.Root.LastComment(); ok && last.Stop > end {
		end = last.Stop
	}

	for numParens > 0 {
		if end >= len(p.Template) {
			return nil, 0, cerrors.ExpectedToken(end, ")")
		}
		r, size := utf8.DecodeRuneInString(p.Template[end:])
		switch {
		case r == ')':
			numParens--
		case lexer.IsWhitespace(r):
		default:
			return nil, 0, cerrors.ExpectedToken(end, ")")
		}
		end += size
	}

	return node, end, nil
}

// GetLooseIdentifier finds the delimiter closing openingToken from the cursor.
// If there is one, the cursor moves onto it (not past it) and a placeholder
// spanning the skipped text is returned.
func (p *Parser) GetLooseIdentifier(openingToken string) (*ast.Ident, bool) {
	if openingToken == "" {
		openingToken = "{"
	}

	end, ok := p.matcher.FindMatching(p.Template, p.Index, openingToken)
	if !ok || end < p.Index || end > len(p.Template) {
		return nil, false
	}

	start := p.Index
	p.Index = end
	return ast.Placeholder(start, end), true
}
