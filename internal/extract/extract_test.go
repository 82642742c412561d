package extract

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btouchard/tmplexpr/internal/compiler/ast"
	cerrors "github.com/btouchard/tmplexpr/internal/compiler/errors"
)

const page = "<h1>{title}</h1>\n<p>{ /* n */ count + 1 }</p>\n<p>{a +}</p>"

func TestRun(t *testing.T) {
	out := Run(page, 5, Options{})

	require.Nil(t, out.Err)
	assert.Equal(t, "Identifier", out.Node.Type())
	assert.Equal(t, 10, out.Index)
	assert.Empty(t, out.Comments)
}

func TestRunCollectsComments(t *testing.T) {
	offset := strings.Index(page, "{ /*") + 1

	out := Run(page, offset, Options{})

	require.Nil(t, out.Err)
	assert.Equal(t, "BinaryExpression", out.Node.Type())
	require.Len(t, out.Comments, 1)
	assert.Equal(t, " n ", out.Comments[0].Value)
	assert.Equal(t, out.Node.End(), out.Index)
}

func TestRunLocatesErrors(t *testing.T) {
	offset := strings.Index(page, "{a +}") + 1

	out := Run(page, offset, Options{})

	require.NotNil(t, out.Err)
	assert.Nil(t, out.Node)
	assert.Equal(t, offset, out.Index)
	assert.Equal(t, cerrors.CodeJSParseError, out.Err.Code)
	assert.Equal(t, 3, out.Err.Pos.Line)
	assert.Equal(t, 8, out.Err.Pos.Column)
}

func TestRunLoose(t *testing.T) {
	offset := strings.Index(page, "{a +}") + 1

	out := Run(page, offset, Options{Loose: true})
	require.Nil(t, out.Err)
	assert.True(t, ast.IsPlaceholder(out.Node))
	assert.Equal(t, offset+3, out.Index)

	strict := Run(page, offset, Options{Loose: true, DisallowLoose: true})
	assert.NotNil(t, strict.Err)
}

func TestRunOpeningToken(t *testing.T) {
	tpl := "{@render row(a +)}"

	out := Run(tpl, 13, Options{Loose: true, OpeningToken: "("})
	require.Nil(t, out.Err)
	assert.Equal(t, 16, out.Index)
}

func TestRunTypeScript(t *testing.T) {
	out := Run("{user!.name}", 1, Options{TypeScript: true})
	require.Nil(t, out.Err)
	assert.Equal(t, "MemberExpression", out.Node.Type())

	plain := Run("{user!.name}", 1, Options{})
	require.Nil(t, plain.Err)
	assert.Equal(t, 5, plain.Index)
}

func TestRunAll(t *testing.T) {
	offsets := []int{5, strings.Index(page, "{a +}") + 1}

	outcomes, err := RunAll(page, offsets, Options{})
	require.Len(t, outcomes, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 error occurred")
	assert.Nil(t, outcomes[0].Err)
	assert.NotNil(t, outcomes[1].Err)

	var ce *cerrors.CompileError
	assert.True(t, stderrors.As(err, &ce))

	outcomes, err = RunAll(page, offsets, Options{Loose: true})
	require.NoError(t, err)
	assert.Len(t, outcomes, 2)
}

func TestReport(t *testing.T) {
	out := Run("{a /* c */}", 1, Options{})
	r := out.Report()

	assert.Equal(t, 1, r.Offset)
	assert.Equal(t, 10, r.Index)
	assert.Equal(t, "Identifier", r.Node["type"])
	assert.Len(t, r.Comments, 1)
	assert.Nil(t, r.Error)

	failed := Run("{\n  a +}", 1, Options{}).Report()
	require.NotNil(t, failed.Error)
	assert.Nil(t, failed.Node)
	assert.Equal(t, cerrors.CodeJSParseError, failed.Error.Code)
	assert.Equal(t, 2, failed.Error.Line)
	assert.Equal(t, 6, failed.Error.Column)
}

func TestFingerprintIsStable(t *testing.T) {
	first, err := Run(page, 5, Options{}).Fingerprint()
	require.NoError(t, err)
	second, err := Run(page, 5, Options{}).Fingerprint()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, `"index":10`)
}

func TestReplay(t *testing.T) {
	want, err := Run(page, 5, Options{}).Fingerprint()
	require.NoError(t, err)

	_, err = Replay(page, 5, Options{}, want)
	assert.NoError(t, err)

	_, err = Replay("<h1>{titles}</h1>", 5, Options{}, want)
	var mismatch *MismatchError
	require.True(t, stderrors.As(err, &mismatch))
	assert.Equal(t, 5, mismatch.Offset)
	assert.Contains(t, mismatch.Error(), "offset 5")
}
