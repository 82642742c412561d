package script

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/btouchard/tmplexpr/internal/compiler/ast"
)

// Print renders an expression back to source. Parentheses are emitted only
// where operator precedence requires them, so grouping that did not change the
// parse is dropped. The placeholder prints as the empty string.
func Print(expr ast.Expression) string {
	var pr printer
	pr.expr(expr, LOWEST)
	return pr.buf.String()
}

type printer struct {
	buf strings.Builder
}

func (pr *printer) emit(format string, args ...interface{}) {
	fmt.Fprintf(&pr.buf, format, args...)
}

// exprPrecedence is the binding strength of the operator at the root of expr.
func exprPrecedence(expr ast.Expression) int {
	switch e := expr.(type) {
	case *ast.AssignExpr:
		return ASSIGN
	case *ast.ConditionalExpr:
		return CONDITIONAL
	case *ast.BinaryExpr:
		switch e.Op {
		case "??":
			return NULLISH
		case "||":
			return OR
		case "&&":
			return AND
		case "==", "!=", "===", "!==":
			return EQUALS
		case "<", ">", "<=", ">=":
			return LESSGREATER
		case "+", "-":
			return SUM
		default:
			return PRODUCT
		}
	case *ast.AsExpr:
		return AS
	case *ast.UnaryExpr:
		return UNARY
	case *ast.NonNullExpr:
		return POSTFIX
	default:
		return CALL + 1
	}
}

// expr prints e, wrapping it in parentheses when it binds looser than min.
func (pr *printer) expr(e ast.Expression, min int) {
	if e == nil {
		return
	}
	if exprPrecedence(e) < min {
		pr.buf.WriteByte('(')
		pr.expr(e, LOWEST)
		pr.buf.WriteByte(')')
		return
	}

	switch e := e.(type) {
	case *ast.Ident:
		pr.buf.WriteString(e.Name)
	case *ast.IntLit:
		pr.buf.WriteString(e.Value)
	case *ast.FloatLit:
		pr.buf.WriteString(e.Value)
	case *ast.StringLit:
		quote := e.Quote
		if quote == 0 {
			quote = '"'
		}
		pr.emit("%c%s%c", quote, e.Value, quote)
	case *ast.TemplateLit:
		pr.emit("`%s`", e.Value)
	case *ast.BoolLit:
		pr.emit("%t", e.Value)
	case *ast.NullLit:
		pr.buf.WriteString("null")
	case *ast.ArrayLit:
		pr.buf.WriteByte('[')
		pr.list(e.Elements)
		pr.buf.WriteByte(']')
	case *ast.ObjectLit:
		pr.object(e)
	case *ast.SpreadExpr:
		pr.buf.WriteString("...")
		pr.expr(e.Argument, ASSIGN)
	case *ast.UnaryExpr:
		if e.Op == "typeof" {
			pr.buf.WriteString("typeof ")
		} else {
			pr.buf.WriteString(e.Op)
			// - -a must not print as --a
			if inner, ok := e.Operand.(*ast.UnaryExpr); ok && (inner.Op == "-" || inner.Op == "+") {
				pr.buf.WriteByte(' ')
			}
		}
		pr.expr(e.Operand, UNARY)
	case *ast.BinaryExpr:
		prec := exprPrecedence(e)
		pr.expr(e.Left, prec)
		pr.emit(" %s ", e.Op)
		pr.expr(e.Right, prec+1)
	case *ast.AssignExpr:
		pr.expr(e.Target, CALL)
		pr.buf.WriteString(" = ")
		pr.expr(e.Value, ASSIGN)
	case *ast.ConditionalExpr:
		pr.expr(e.Test, NULLISH)
		pr.buf.WriteString(" ? ")
		pr.expr(e.Consequent, ASSIGN)
		pr.buf.WriteString(" : ")
		pr.expr(e.Alternate, ASSIGN)
	case *ast.CallExpr:
		pr.expr(e.Function, CALL)
		if e.Optional {
			pr.buf.WriteString("?.")
		}
		pr.buf.WriteByte('(')
		pr.list(e.Args)
		pr.buf.WriteByte(')')
	case *ast.MemberExpr:
		pr.expr(e.Object, CALL)
		if e.Optional {
			pr.buf.WriteString("?.")
		} else {
			pr.buf.WriteByte('.')
		}
		pr.buf.WriteString(e.Property)
	case *ast.IndexExpr:
		pr.expr(e.Object, CALL)
		if e.Optional {
			pr.buf.WriteString("?.")
		}
		pr.buf.WriteByte('[')
		pr.expr(e.Index, LOWEST)
		pr.buf.WriteByte(']')
	case *ast.AsExpr:
		pr.expr(e.Expr, AS)
		if e.Satisfies {
			pr.emit(" satisfies %s", e.TypeName)
		} else {
			pr.emit(" as %s", e.TypeName)
		}
	case *ast.NonNullExpr:
		pr.expr(e.Expr, POSTFIX)
		pr.buf.WriteByte('!')
	default:
		pr.emit("/* unknown expr: %T */", e)
	}
}

func (pr *printer) list(items []ast.Expression) {
	for i, item := range items {
		if i > 0 {
			pr.buf.WriteString(", ")
		}
		pr.expr(item, ASSIGN)
	}
}

func (pr *printer) object(obj *ast.ObjectLit) {
	if len(obj.Properties) == 0 {
		pr.buf.WriteString("{}")
		return
	}
	pr.buf.WriteString("{ ")
	for i, prop := range obj.Properties {
		if i > 0 {
			pr.buf.WriteString(", ")
		}
		switch {
		case prop.Shorthand:
			pr.buf.WriteString(prop.Key)
		case prop.Key == "...":
			pr.expr(prop.Value, ASSIGN)
		case isIdentifier(prop.Key):
			pr.emit("%s: ", prop.Key)
			pr.expr(prop.Value, ASSIGN)
		default:
			pr.emit("%q: ", prop.Key)
			pr.expr(prop.Value, ASSIGN)
		}
	}
	pr.buf.WriteString(" }")
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if unicode.IsLetter(r) || r == '_' || r == '$' || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
