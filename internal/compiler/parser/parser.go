// Package parser holds the template cursor and the reader that extracts
// embedded expressions from template text.
package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/btouchard/tmplexpr/internal/compiler/ast"
	"github.com/btouchard/tmplexpr/internal/compiler/bracket"
	cerrors "github.com/btouchard/tmplexpr/internal/compiler/errors"
	"github.com/btouchard/tmplexpr/internal/compiler/lexer"
	"github.com/btouchard/tmplexpr/internal/compiler/script"
)

// ExpressionParser parses one host-language expression starting at offset.
// Comments it passes over are returned in source order, also when err is set.
type ExpressionParser interface {
	ParseExpressionAt(template string, offset int, mode script.Mode) (script.Result, error)
}

// DelimiterMatcher finds the delimiter closing open, searching from offset.
type DelimiterMatcher interface {
	FindMatching(template string, offset int, open string) (int, bool)
}

// Options configure a Parser. Zero values select the built-in grammar and
// matcher and a disabled logger.
type Options struct {
	Loose      bool
	TypeScript bool
	Logger     *zerolog.Logger
	Grammar    ExpressionParser
	Matcher    DelimiterMatcher
}

// Parser is the cursor state for one parse session over a template. Index is
// where parsing resumes next; Root accumulates comments for the whole session.
type Parser struct {
	Template string
	Index    int
	Loose    bool
	TS       bool
	Root     *ast.Root

	grammar ExpressionParser
	matcher DelimiterMatcher
	log     zerolog.Logger
}

func New(template string, opts Options) *Parser {
	p := &Parser{
		Template: template,
		Loose:    opts.Loose,
		TS:       opts.TypeScript,
		Root:     &ast.Root{},
		grammar:  opts.Grammar,
		matcher:  opts.Matcher,
		log:      zerolog.Nop(),
	}
	if p.grammar == nil {
		p.grammar = script.Grammar{}
	}
	if p.matcher == nil {
		p.matcher = bracket.Matcher{}
	}
	if opts.Logger != nil {
		p.log = *opts.Logger
	}
	return p
}

// Match reports whether the template continues with str at the cursor.
func (p *Parser) Match(str string) bool {
	return strings.HasPrefix(p.Template[p.Index:], str)
}

// Eat consumes str if it is next. When required and str is absent it returns
// an expected_token error at the cursor and leaves the cursor alone.
func (p *Parser) Eat(str string, required bool) (bool, error) {
	if p.Match(str) {
		p.Index += len(str)
		return true, nil
	}
	if required {
		return false, cerrors.ExpectedToken(p.Index, str)
	}
	return false, nil
}

// AllowWhitespace advances the cursor past any whitespace.
func (p *Parser) AllowWhitespace() {
	for p.Index < len(p.Template) {
		r, size := utf8.DecodeRuneInString(p.Template[p.Index:])
		if !lexer.IsWhitespace(r) {
			return
		}
		p.Index += size
	}
}

func (p *Parser) mode() script.Mode {
	return script.Mode{TypeScript: p.TS}
}
