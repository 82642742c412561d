package errors

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
)

// Error codes surfaced to callers of the expression reader.
const (
	CodeJSParseError  = "js_parse_error"
	CodeExpectedToken = "expected_token"
)

// Position represents a location in source code
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Locate converts a byte offset into a 1-based line and column. Columns count
// runes, not bytes. Offsets past the end of the template clamp to its end.
func Locate(template string, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(template) {
		offset = len(template)
	}
	before := template[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return Position{
		Line:   line,
		Column: utf8.RuneCountInString(before[lineStart:]) + 1,
	}
}

// CompileError represents a compilation error with source position
type CompileError struct {
	Code    string
	Start   int // byte offset of the offending input
	End     int
	Pos     Position // zero until Locate is applied
	Message string
	Phase   string // "lexer", "parser"
	Cause   error
}

func (e *CompileError) Error() string {
	where := fmt.Sprintf("offset %d", e.Start)
	if e.Pos.Line > 0 {
		where = e.Pos.String()
	}
	return fmt.Sprintf("[%s] %s: %s (%s)", e.Phase, where, e.Message, e.Code)
}

func (e *CompileError) Unwrap() error { return e.Cause }

// Offset returns the byte offset the error points at.
func (e *CompileError) Offset() int { return e.Start }

// Located returns a copy of e with Pos filled in from template.
func (e *CompileError) Located(template, file string) *CompileError {
	out := *e
	out.Pos = Locate(template, e.Start)
	out.Pos.File = file
	return &out
}

// ExpectedToken reports that tok was required at offset.
func ExpectedToken(offset int, tok string) *CompileError {
	return &CompileError{
		Code:    CodeExpectedToken,
		Start:   offset,
		End:     offset,
		Message: fmt.Sprintf("Expected token %s", tok),
		Phase:   "parser",
	}
}

// JSParseError reports a grammar error at offset.
func JSParseError(offset int, message string) *CompileError {
	return &CompileError{
		Code:    CodeJSParseError,
		Start:   offset,
		End:     offset,
		Message: message,
		Phase:   "parser",
	}
}

var positionIndicator = regexp.MustCompile(`\s*\(\d+:\d+\)$`)

// Wrap normalises err into a CompileError. Compile errors pass through
// unchanged. Any other error becomes a js_parse_error at the offset it carries
// (via an Offset() int method), or at fallback when it carries none.
func Wrap(err error, fallback int) *CompileError {
	if err == nil {
		return nil
	}

	var ce *CompileError
	if stderrors.As(err, &ce) {
		return ce
	}

	offset := fallback
	var positioned interface{ Offset() int }
	if stderrors.As(err, &positioned) {
		offset = positioned.Offset()
	}

	wrapped := JSParseError(offset, positionIndicator.ReplaceAllString(err.Error(), ""))
	wrapped.Cause = err
	return wrapped
}

// ErrorList collects multiple compilation errors
type ErrorList struct {
	Errors []*CompileError
}

func NewErrorList() *ErrorList {
	return &ErrorList{}
}

func (el *ErrorList) Add(err *CompileError) {
	el.Errors = append(el.Errors, err)
}

func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

func (el *ErrorList) String() string {
	s := ""
	for _, e := range el.Errors {
		s += e.Error() + "\n"
	}
	return s
}

// ErrorOrNil folds the list into a single error, or nil when empty.
func (el *ErrorList) ErrorOrNil() error {
	var result *multierror.Error
	for _, e := range el.Errors {
		result = multierror.Append(result, e)
	}
	return result.ErrorOrNil()
}
