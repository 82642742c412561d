package ast

// Node is the base interface for all AST nodes
type Node interface {
	TokenLiteral() string
	// Type is the ESTree node type, e.g. "Identifier" or "BinaryExpression".
	Type() string
	Pos() int
	End() int
}

// Expression is the interface for all expressions
type Expression interface {
	Node
	expressionNode()
}

// Span is a half-open byte range [Start, Stop) into the template.
type Span struct {
	Start int
	Stop  int
}

func (s Span) Pos() int { return s.Start }
func (s Span) End() int { return s.Stop }

// ============ DOCUMENT ============

// CommentKind distinguishes // comments from /* */ comments.
type CommentKind string

const (
	LineComment  CommentKind = "Line"
	BlockComment CommentKind = "Block"
)

// Comment is a side record of a comment found while parsing an expression.
type Comment struct {
	Kind  CommentKind
	Value string // text between the comment markers
	Span
}

// Root accumulates document-wide data for one parse session.
type Root struct {
	Comments []Comment
}

// LastComment returns the most recently appended comment.
func (r *Root) LastComment() (Comment, bool) {
	if len(r.Comments) == 0 {
		return Comment{}, false
	}
	return r.Comments[len(r.Comments)-1], true
}

// ============ EXPRESSIONS ============

// Ident: variable name. An Ident with an empty name is a placeholder for an
// expression that could not be determined.
type Ident struct {
	Name string
	Span
}

func (i *Ident) TokenLiteral() string { return i.Name }
func (i *Ident) Type() string         { return "Identifier" }
func (i *Ident) expressionNode()      {}

// Placeholder returns the empty identifier spanning [start, end).
func Placeholder(start, end int) *Ident {
	return &Ident{Name: "", Span: Span{Start: start, Stop: end}}
}

// IsPlaceholder reports whether expr is a placeholder identifier.
func IsPlaceholder(expr Expression) bool {
	ident, ok := expr.(*Ident)
	return ok && ident.Name == ""
}

// IntLit: 42
type IntLit struct {
	Value string
	Span
}

func (i *IntLit) TokenLiteral() string { return i.Value }
func (i *IntLit) Type() string         { return "Literal" }
func (i *IntLit) expressionNode()      {}

// FloatLit: 3.14
type FloatLit struct {
	Value string
	Span
}

func (f *FloatLit) TokenLiteral() string { return f.Value }
func (f *FloatLit) Type() string         { return "Literal" }
func (f *FloatLit) expressionNode()      {}

// StringLit: "hello", 'hello'
type StringLit struct {
	Value string // raw contents without quotes
	Quote byte
	Span
}

func (s *StringLit) TokenLiteral() string { return s.Value }
func (s *StringLit) Type() string         { return "Literal" }
func (s *StringLit) expressionNode()      {}

// TemplateLit: `hello ${name}`, kept raw
type TemplateLit struct {
	Value string
	Span
}

func (t *TemplateLit) TokenLiteral() string { return t.Value }
func (t *TemplateLit) Type() string         { return "TemplateLiteral" }
func (t *TemplateLit) expressionNode()      {}

// BoolLit: true, false
type BoolLit struct {
	Value bool
	Span
}

func (b *BoolLit) TokenLiteral() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (b *BoolLit) Type() string    { return "Literal" }
func (b *BoolLit) expressionNode() {}

// NullLit: null
type NullLit struct {
	Span
}

func (n *NullLit) TokenLiteral() string { return "null" }
func (n *NullLit) Type() string         { return "Literal" }
func (n *NullLit) expressionNode()      {}

// ArrayLit: [a, b, ...rest]
type ArrayLit struct {
	Elements []Expression
	Span
}

func (a *ArrayLit) TokenLiteral() string { return "[" }
func (a *ArrayLit) Type() string         { return "ArrayExpression" }
func (a *ArrayLit) expressionNode()      {}

// Property is one entry of an object literal.
type Property struct {
	Key       string
	Value     Expression
	Shorthand bool // {name} rather than {name: name}
	Span
}

// ObjectLit: {title: title, done}
type ObjectLit struct {
	Properties []*Property
	Span
}

func (o *ObjectLit) TokenLiteral() string { return "{" }
func (o *ObjectLit) Type() string         { return "ObjectExpression" }
func (o *ObjectLit) expressionNode()      {}

// SpreadExpr: ...items
type SpreadExpr struct {
	Argument Expression
	Span
}

func (s *SpreadExpr) TokenLiteral() string { return "..." }
func (s *SpreadExpr) Type() string         { return "SpreadElement" }
func (s *SpreadExpr) expressionNode()      {}

// UnaryExpr: !expr, -expr, typeof expr
type UnaryExpr struct {
	Op      string
	Operand Expression
	Span
}

func (u *UnaryExpr) TokenLiteral() string { return u.Op }
func (u *UnaryExpr) Type() string         { return "UnaryExpression" }
func (u *UnaryExpr) expressionNode()      {}

// BinaryExpr: a + b, a == b, a && b
type BinaryExpr struct {
	Left  Expression
	Op    string
	Right Expression
	Span
}

func (b *BinaryExpr) TokenLiteral() string { return b.Op }
func (b *BinaryExpr) Type() string {
	switch b.Op {
	case "&&", "||", "??":
		return "LogicalExpression"
	}
	return "BinaryExpression"
}
func (b *BinaryExpr) expressionNode() {}

// AssignExpr: count = 0
type AssignExpr struct {
	Target Expression
	Value  Expression
	Span
}

func (a *AssignExpr) TokenLiteral() string { return "=" }
func (a *AssignExpr) Type() string         { return "AssignmentExpression" }
func (a *AssignExpr) expressionNode()      {}

// ConditionalExpr: cond ? a : b
type ConditionalExpr struct {
	Test       Expression
	Consequent Expression
	Alternate  Expression
	Span
}

func (c *ConditionalExpr) TokenLiteral() string { return "?" }
func (c *ConditionalExpr) Type() string         { return "ConditionalExpression" }
func (c *ConditionalExpr) expressionNode()      {}

// CallExpr: func(args...)
type CallExpr struct {
	Function Expression // Could be Ident or MemberExpr
	Args     []Expression
	Optional bool // fn?.(args)
	Span
}

func (c *CallExpr) TokenLiteral() string { return "call" }
func (c *CallExpr) Type() string         { return "CallExpression" }
func (c *CallExpr) expressionNode()      {}

// MemberExpr: obj.field, obj?.field
type MemberExpr struct {
	Object   Expression
	Property string
	Optional bool
	Span
}

func (m *MemberExpr) TokenLiteral() string { return "." }
func (m *MemberExpr) Type() string         { return "MemberExpression" }
func (m *MemberExpr) expressionNode()      {}

// IndexExpr: obj[key], obj?.[key]
type IndexExpr struct {
	Object   Expression
	Index    Expression
	Optional bool
	Span
}

func (i *IndexExpr) TokenLiteral() string { return "[" }
func (i *IndexExpr) Type() string         { return "MemberExpression" }
func (i *IndexExpr) expressionNode()      {}

// ============ TYPESCRIPT ============

// AsExpr: value as Type, value satisfies Type
type AsExpr struct {
	Expr      Expression
	TypeName  string
	Satisfies bool
	Span
}

func (a *AsExpr) TokenLiteral() string {
	if a.Satisfies {
		return "satisfies"
	}
	return "as"
}
func (a *AsExpr) Type() string {
	if a.Satisfies {
		return "TSSatisfiesExpression"
	}
	return "TSAsExpression"
}
func (a *AsExpr) expressionNode() {}

// NonNullExpr: value!
type NonNullExpr struct {
	Expr Expression
	Span
}

func (n *NonNullExpr) TokenLiteral() string { return "!" }
func (n *NonNullExpr) Type() string         { return "TSNonNullExpression" }
func (n *NonNullExpr) expressionNode()      {}
