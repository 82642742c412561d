// Package extract runs the expression reader over a template at chosen
// offsets and turns each run into a serialisable report.
package extract

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/btouchard/tmplexpr/internal/compiler/ast"
	cerrors "github.com/btouchard/tmplexpr/internal/compiler/errors"
	"github.com/btouchard/tmplexpr/internal/compiler/parser"
)

// Options mirror the parse section of the configuration.
type Options struct {
	Loose         bool   `json:"loose" yaml:"loose"`
	TypeScript    bool   `json:"typescript" yaml:"typescript"`
	OpeningToken  string `json:"opening-token" yaml:"opening-token"`
	DisallowLoose bool   `json:"disallow-loose" yaml:"disallow-loose"`

	Logger *zerolog.Logger `json:"-" yaml:"-"`
}

// Outcome is the result of reading one expression.
type Outcome struct {
	Offset   int
	Node     ast.Expression
	Index    int // where parsing resumes; equals Offset on error
	Comments []ast.Comment
	Err      *cerrors.CompileError
}

// Run reads the expression at offset in a fresh parse session.
func Run(template string, offset int, opts Options) Outcome {
	p := parser.New(template, parser.Options{
		Loose:      opts.Loose,
		TypeScript: opts.TypeScript,
		Logger:     opts.Logger,
	})
	p.Index = offset

	var readOpts []parser.ReadOption
	if opts.OpeningToken != "" {
		readOpts = append(readOpts, parser.WithOpeningToken(opts.OpeningToken))
	}
	if opts.DisallowLoose {
		readOpts = append(readOpts, parser.DisallowLoose())
	}

	node, err := p.ReadExpression(readOpts...)

	out := Outcome{
		Offset:   offset,
		Node:     node,
		Index:    p.Index,
		Comments: p.Root.Comments,
	}
	if err != nil {
		out.Err = cerrors.Wrap(err, offset).Located(template, "")
	}
	return out
}

// RunAll reads an expression at every offset. Failures are folded into the
// returned error; every outcome is still returned.
func RunAll(template string, offsets []int, opts Options) ([]Outcome, error) {
	errs := cerrors.NewErrorList()
	outcomes := make([]Outcome, 0, len(offsets))

	for _, offset := range offsets {
		out := Run(template, offset, opts)
		if out.Err != nil {
			errs.Add(out.Err)
		}
		outcomes = append(outcomes, out)
	}

	return outcomes, errs.ErrorOrNil()
}

// Report is the wire form of an Outcome.
type Report struct {
	Offset   int            `json:"offset" yaml:"offset"`
	Index    int            `json:"index" yaml:"index"`
	Node     map[string]any `json:"node,omitempty" yaml:"node,omitempty"`
	Comments []any          `json:"comments" yaml:"comments"`
	Error    *ErrorReport   `json:"error,omitempty" yaml:"error,omitempty"`
}

type ErrorReport struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Start   int    `json:"start" yaml:"start"`
	Line    int    `json:"line" yaml:"line"`
	Column  int    `json:"column" yaml:"column"`
}

func (o Outcome) Report() Report {
	r := Report{
		Offset:   o.Offset,
		Index:    o.Index,
		Node:     ast.Dump(o.Node),
		Comments: ast.DumpComments(o.Comments),
	}
	if o.Err != nil {
		r.Error = &ErrorReport{
			Code:    o.Err.Code,
			Message: o.Err.Message,
			Start:   o.Err.Start,
			Line:    o.Err.Pos.Line,
			Column:  o.Err.Pos.Column,
		}
	}
	return r
}

// Fingerprint is a canonical encoding of the outcome. Two runs over the same
// input produce the same fingerprint.
func (o Outcome) Fingerprint() (string, error) {
	data, err := json.Marshal(o.Report())
	if err != nil {
		return "", fmt.Errorf("encode outcome: %w", err)
	}
	return string(data), nil
}

// MismatchError reports a replay whose outcome differs from the recorded one.
type MismatchError struct {
	Offset int
	Want   string
	Got    string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("offset %d: replay produced %s, recorded %s", e.Offset, e.Got, e.Want)
}

// Replay re-runs an extraction and compares it with a recorded fingerprint.
func Replay(template string, offset int, opts Options, want string) (Outcome, error) {
	out := Run(template, offset, opts)
	got, err := out.Fingerprint()
	if err != nil {
		return out, err
	}
	if got != want {
		return out, &MismatchError{Offset: offset, Want: want, Got: got}
	}
	return out, nil
}
