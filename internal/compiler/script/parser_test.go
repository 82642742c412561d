package script

import (
	stderrors "errors"
	"testing"

	"github.com/btouchard/tmplexpr/internal/compiler/ast"
	cerrors "github.com/btouchard/tmplexpr/internal/compiler/errors"
)

func parseOK(t *testing.T, input string, offset int, mode Mode) Result {
	t.Helper()
	result, err := ParseExpressionAt(input, offset, mode)
	if err != nil {
		t.Fatalf("ParseExpressionAt(%q, %d) error: %v", input, offset, err)
	}
	if result.Node == nil {
		t.Fatalf("ParseExpressionAt(%q, %d) returned no node", input, offset)
	}
	return result
}

func parseErr(t *testing.T, input string, offset int, mode Mode) (Result, *cerrors.CompileError) {
	t.Helper()
	result, err := ParseExpressionAt(input, offset, mode)
	if err == nil {
		t.Fatalf("ParseExpressionAt(%q, %d) expected an error", input, offset)
	}
	var ce *cerrors.CompileError
	if !stderrors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %T", err)
	}
	return result, ce
}

func TestParseSpans(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
		typ    string
		start  int
		end    int
	}{
		{"identifier", "{name}", 1, "Identifier", 1, 5},
		{"binary", "{a + b}", 1, "BinaryExpression", 1, 6},
		{"grouped returns inner span", "{(a + b)}", 1, "BinaryExpression", 2, 7},
		{"nested grouping", "((a))", 0, "Identifier", 2, 3},
		{"grouped left operand", "(a) + b", 0, "BinaryExpression", 0, 7},
		{"member on grouped", "(a).b", 0, "MemberExpression", 0, 5},
		{"unary over group", "-(a)", 0, "UnaryExpression", 0, 4},
		{"string with multibyte", `{ "é" + a }`, 2, "BinaryExpression", 2, 10},
		{"stops at trailing input", "a b", 0, "Identifier", 0, 1},
		{"stops at closing brace", "{count}</p>", 1, "Identifier", 1, 6},
		{"logical", "a && b || c", 0, "LogicalExpression", 0, 11},
		{"template literal", "`x ${y}`", 0, "TemplateLiteral", 0, 8},
		{"leading float", ".5", 0, "Literal", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseOK(t, tt.input, tt.offset, Mode{})
			node := result.Node
			if node.Type() != tt.typ {
				t.Errorf("Type() = %q, want %q", node.Type(), tt.typ)
			}
			if node.Pos() != tt.start || node.End() != tt.end {
				t.Errorf("span = [%d, %d), want [%d, %d)", node.Pos(), node.End(), tt.start, tt.end)
			}
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	result := parseOK(t, "1 + 2 * 3", 0, Mode{})

	add, ok := result.Node.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", result.Node)
	}
	if add.Op != "+" {
		t.Errorf("expected outer op '+', got %q", add.Op)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Op != "*" {
		t.Fatalf("expected right operand to be '*', got %#v", add.Right)
	}
}

func TestParseGroupingOverridesPrecedence(t *testing.T) {
	result := parseOK(t, "(5 + 3) * 2", 0, Mode{})

	mul, ok := result.Node.(*ast.BinaryExpr)
	if !ok || mul.Op != "*" {
		t.Fatalf("expected outer '*', got %#v", result.Node)
	}
	add, ok := mul.Left.(*ast.BinaryExpr)
	if !ok || add.Op != "+" {
		t.Fatalf("expected left operand '+', got %#v", mul.Left)
	}
	if add.Pos() != 1 || add.End() != 6 {
		t.Errorf("inner span = [%d, %d), want [1, 6)", add.Pos(), add.End())
	}
}

func TestParseConditionalIsRightAssociative(t *testing.T) {
	result := parseOK(t, "a ? b : c ? d : e", 0, Mode{})

	cond, ok := result.Node.(*ast.ConditionalExpr)
	if !ok {
		t.Fatalf("expected ConditionalExpr, got %T", result.Node)
	}
	if _, ok := cond.Alternate.(*ast.ConditionalExpr); !ok {
		t.Errorf("expected nested conditional in alternate, got %T", cond.Alternate)
	}
}

func TestParseOptionalChainIsNotConditional(t *testing.T) {
	result := parseOK(t, "a?.5:1", 0, Mode{})
	if _, ok := result.Node.(*ast.ConditionalExpr); !ok {
		t.Fatalf("expected ConditionalExpr, got %T", result.Node)
	}
}

func TestParseAssignment(t *testing.T) {
	result := parseOK(t, "a.b = c = 1", 0, Mode{})

	assign, ok := result.Node.(*ast.AssignExpr)
	if !ok {
		t.Fatalf("expected AssignExpr, got %T", result.Node)
	}
	if _, ok := assign.Target.(*ast.MemberExpr); !ok {
		t.Errorf("expected member target, got %T", assign.Target)
	}
	if _, ok := assign.Value.(*ast.AssignExpr); !ok {
		t.Errorf("expected chained assignment, got %T", assign.Value)
	}

	_, ce := parseErr(t, "1 = 2", 0, Mode{})
	if ce.Message != "Assigning to rvalue" || ce.Offset() != 0 {
		t.Errorf("got %q at %d", ce.Message, ce.Offset())
	}
}

func TestParseCallsAndMembers(t *testing.T) {
	result := parseOK(t, "user.greet(1, ...rest)", 0, Mode{})

	call, ok := result.Node.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %T", result.Node)
	}
	member, ok := call.Function.(*ast.MemberExpr)
	if !ok || member.Property != "greet" {
		t.Fatalf("expected member callee 'greet', got %#v", call.Function)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
	if _, ok := call.Args[1].(*ast.SpreadExpr); !ok {
		t.Errorf("expected spread argument, got %T", call.Args[1])
	}
	if call.End() != 22 {
		t.Errorf("End() = %d, want 22", call.End())
	}
}

func TestParseOptionalChaining(t *testing.T) {
	result := parseOK(t, "a?.b?.[0]?.(x)", 0, Mode{})

	call, ok := result.Node.(*ast.CallExpr)
	if !ok || !call.Optional {
		t.Fatalf("expected optional call, got %#v", result.Node)
	}
	index, ok := call.Function.(*ast.IndexExpr)
	if !ok || !index.Optional {
		t.Fatalf("expected optional IndexExpr, got %#v", call.Function)
	}
	member, ok := index.Object.(*ast.MemberExpr)
	if !ok || !member.Optional || member.Property != "b" {
		t.Fatalf("expected optional member 'b', got %#v", index.Object)
	}
}

func TestParseIndexIsNotOptional(t *testing.T) {
	result := parseOK(t, "a[0]", 0, Mode{})
	index, ok := result.Node.(*ast.IndexExpr)
	if !ok || index.Optional {
		t.Fatalf("expected plain IndexExpr, got %#v", result.Node)
	}
}

func TestParseKeywordProperty(t *testing.T) {
	result := parseOK(t, "item.as.typeof", 0, Mode{})
	member, ok := result.Node.(*ast.MemberExpr)
	if !ok || member.Property != "typeof" {
		t.Fatalf("expected member 'typeof', got %#v", result.Node)
	}
}

func TestParseObjectLiteral(t *testing.T) {
	result := parseOK(t, `{a, b: 1, ...c, "k": 2, 3: x}`, 0, Mode{})

	obj, ok := result.Node.(*ast.ObjectLit)
	if !ok {
		t.Fatalf("expected ObjectLit, got %T", result.Node)
	}
	if len(obj.Properties) != 5 {
		t.Fatalf("expected 5 properties, got %d", len(obj.Properties))
	}
	if !obj.Properties[0].Shorthand || obj.Properties[0].Key != "a" {
		t.Errorf("expected shorthand 'a', got %#v", obj.Properties[0])
	}
	if _, ok := obj.Properties[2].Value.(*ast.SpreadExpr); !ok {
		t.Errorf("expected spread property, got %T", obj.Properties[2].Value)
	}
	if obj.Properties[3].Key != "k" {
		t.Errorf("expected string key 'k', got %q", obj.Properties[3].Key)
	}
}

func TestParseArrayLiteral(t *testing.T) {
	result := parseOK(t, "[1, , 2, ...rest,]", 0, Mode{})

	arr, ok := result.Node.(*ast.ArrayLit)
	if !ok {
		t.Fatalf("expected ArrayLit, got %T", result.Node)
	}
	if len(arr.Elements) != 3 {
		t.Errorf("expected 3 elements, got %d", len(arr.Elements))
	}
	if arr.End() != 18 {
		t.Errorf("End() = %d, want 18", arr.End())
	}
}

func TestParseTypeof(t *testing.T) {
	result := parseOK(t, `typeof x === "string"`, 0, Mode{})

	eq, ok := result.Node.(*ast.BinaryExpr)
	if !ok || eq.Op != "===" {
		t.Fatalf("expected '===', got %#v", result.Node)
	}
	if unary, ok := eq.Left.(*ast.UnaryExpr); !ok || unary.Op != "typeof" {
		t.Errorf("expected typeof operand, got %#v", eq.Left)
	}
}

func TestParseTypeScript(t *testing.T) {
	t.Run("as", func(t *testing.T) {
		result := parseOK(t, "x as Foo.Bar[]", 0, Mode{TypeScript: true})
		as, ok := result.Node.(*ast.AsExpr)
		if !ok {
			t.Fatalf("expected AsExpr, got %T", result.Node)
		}
		if as.TypeName != "Foo.Bar[]" {
			t.Errorf("TypeName = %q", as.TypeName)
		}
		if as.End() != 14 {
			t.Errorf("End() = %d, want 14", as.End())
		}
	})

	t.Run("satisfies", func(t *testing.T) {
		result := parseOK(t, "cfg satisfies Config", 0, Mode{TypeScript: true})
		as, ok := result.Node.(*ast.AsExpr)
		if !ok || !as.Satisfies {
			t.Fatalf("expected satisfies expression, got %#v", result.Node)
		}
		if as.Type() != "TSSatisfiesExpression" {
			t.Errorf("Type() = %q", as.Type())
		}
	})

	t.Run("non-null", func(t *testing.T) {
		result := parseOK(t, "user!.name", 0, Mode{TypeScript: true})
		member, ok := result.Node.(*ast.MemberExpr)
		if !ok {
			t.Fatalf("expected MemberExpr, got %T", result.Node)
		}
		if _, ok := member.Object.(*ast.NonNullExpr); !ok {
			t.Errorf("expected non-null object, got %T", member.Object)
		}
	})

	t.Run("plain mode stops before as", func(t *testing.T) {
		result := parseOK(t, "x as Foo", 0, Mode{})
		if _, ok := result.Node.(*ast.Ident); !ok {
			t.Fatalf("expected Ident, got %T", result.Node)
		}
		if result.Node.End() != 1 {
			t.Errorf("End() = %d, want 1", result.Node.End())
		}
	})

	t.Run("plain mode stops before bang", func(t *testing.T) {
		result := parseOK(t, "x!", 0, Mode{})
		if result.Node.End() != 1 {
			t.Errorf("End() = %d, want 1", result.Node.End())
		}
	})
}

func TestParseComments(t *testing.T) {
	t.Run("leading block comment", func(t *testing.T) {
		result := parseOK(t, "/* c */ x", 0, Mode{})
		if result.Node.Pos() != 8 {
			t.Errorf("Pos() = %d, want 8", result.Node.Pos())
		}
		if len(result.Comments) != 1 {
			t.Fatalf("expected 1 comment, got %d", len(result.Comments))
		}
		c := result.Comments[0]
		if c.Kind != ast.BlockComment || c.Value != " c " || c.Start != 0 || c.Stop != 7 {
			t.Errorf("unexpected comment %#v", c)
		}
	})

	t.Run("trailing line comment seen by lookahead", func(t *testing.T) {
		result := parseOK(t, "x // note\n}", 0, Mode{})
		if result.Node.End() != 1 {
			t.Errorf("End() = %d, want 1", result.Node.End())
		}
		if len(result.Comments) != 1 {
			t.Fatalf("expected 1 comment, got %d", len(result.Comments))
		}
		c := result.Comments[0]
		if c.Kind != ast.LineComment || c.Value != " note" || c.Stop != 9 {
			t.Errorf("unexpected comment %#v", c)
		}
	})

	t.Run("comments inside expression stay in order", func(t *testing.T) {
		result := parseOK(t, "a /* 1 */ + /* 2 */ b", 0, Mode{})
		if len(result.Comments) != 2 {
			t.Fatalf("expected 2 comments, got %d", len(result.Comments))
		}
		if result.Comments[0].Value != " 1 " || result.Comments[1].Value != " 2 " {
			t.Errorf("comments out of order: %#v", result.Comments)
		}
	})

	t.Run("comments survive errors", func(t *testing.T) {
		result, _ := parseErr(t, "/* lead */ a +", 0, Mode{})
		if len(result.Comments) != 1 {
			t.Errorf("expected 1 comment on error path, got %d", len(result.Comments))
		}
		if result.Node != nil {
			t.Errorf("expected no node on error, got %T", result.Node)
		}
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		offset  int
		message string
		at      int
	}{
		{"missing operand", "a +", 0, "Unexpected token", 3},
		{"empty input", "", 0, "Unexpected token", 0},
		{"offset at end", "abc", 3, "Unexpected token", 3},
		{"closing brace", "{}", 1, "Unexpected token", 1},
		{"unterminated string", `"abc`, 0, "Unterminated string constant", 0},
		{"unterminated template", "`abc", 0, "Unterminated template", 0},
		{"unterminated comment", "a + /* x", 0, "Unterminated comment", 4},
		{"unterminated comment after operand", "a /* x", 0, "Unterminated comment", 2},
		{"unterminated comment after group", "(a) /* x", 0, "Unterminated comment", 4},
		{"unterminated string after operand", "a 'x", 0, "Unterminated string constant", 2},
		{"unterminated template after operand", "a `x", 0, "Unterminated template", 2},
		{"illegal character", "@", 0, "Unexpected character '@'", 0},
		{"unclosed group", "(a + b", 0, "Unexpected token", 6},
		{"missing colon", "a ? b", 0, "Unexpected token", 5},
		{"bad member", "a.+", 0, "Unexpected token", 2},
		{"bad type name", "x as 1", 0, "Unexpected token", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode := Mode{TypeScript: tt.name == "bad type name"}
			_, ce := parseErr(t, tt.input, tt.offset, mode)
			if ce.Code != cerrors.CodeJSParseError {
				t.Errorf("Code = %q, want %q", ce.Code, cerrors.CodeJSParseError)
			}
			if ce.Message != tt.message {
				t.Errorf("Message = %q, want %q", ce.Message, tt.message)
			}
			if ce.Offset() != tt.at {
				t.Errorf("Offset() = %d, want %d", ce.Offset(), tt.at)
			}
		})
	}
}

func TestGrammarMatchesPackageFunction(t *testing.T) {
	input := "{ foo(bar) }"
	direct, err1 := ParseExpressionAt(input, 2, Mode{})
	viaGrammar, err2 := Grammar{}.ParseExpressionAt(input, 2, Mode{})
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if direct.Node.Pos() != viaGrammar.Node.Pos() || direct.Node.End() != viaGrammar.Node.End() {
		t.Errorf("Grammar diverges from ParseExpressionAt")
	}
}
