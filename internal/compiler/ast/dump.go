package ast

// Dump converts an expression tree into plain maps and slices, keyed the way
// ESTree serialises nodes, so it can be encoded as JSON or YAML.
func Dump(expr Expression) map[string]any {
	if expr == nil {
		return nil
	}

	m := map[string]any{
		"type":  expr.Type(),
		"start": expr.Pos(),
		"end":   expr.End(),
	}

	switch e := expr.(type) {
	case *Ident:
		m["name"] = e.Name
	case *IntLit:
		m["raw"] = e.Value
	case *FloatLit:
		m["raw"] = e.Value
	case *StringLit:
		m["value"] = e.Value
	case *TemplateLit:
		m["raw"] = e.Value
	case *BoolLit:
		m["value"] = e.Value
	case *NullLit:
		m["value"] = nil
	case *ArrayLit:
		m["elements"] = dumpList(e.Elements)
	case *ObjectLit:
		props := make([]any, 0, len(e.Properties))
		for _, p := range e.Properties {
			props = append(props, map[string]any{
				"type":      "Property",
				"start":     p.Start,
				"end":       p.Stop,
				"key":       p.Key,
				"value":     Dump(p.Value),
				"shorthand": p.Shorthand,
			})
		}
		m["properties"] = props
	case *SpreadExpr:
		m["argument"] = Dump(e.Argument)
	case *UnaryExpr:
		m["operator"] = e.Op
		m["argument"] = Dump(e.Operand)
	case *BinaryExpr:
		m["operator"] = e.Op
		m["left"] = Dump(e.Left)
		m["right"] = Dump(e.Right)
	case *AssignExpr:
		m["operator"] = "="
		m["left"] = Dump(e.Target)
		m["right"] = Dump(e.Value)
	case *ConditionalExpr:
		m["test"] = Dump(e.Test)
		m["consequent"] = Dump(e.Consequent)
		m["alternate"] = Dump(e.Alternate)
	case *CallExpr:
		m["callee"] = Dump(e.Function)
		m["arguments"] = dumpList(e.Args)
		m["optional"] = e.Optional
	case *MemberExpr:
		m["object"] = Dump(e.Object)
		m["property"] = e.Property
		m["computed"] = false
		m["optional"] = e.Optional
	case *IndexExpr:
		m["object"] = Dump(e.Object)
		m["property"] = Dump(e.Index)
		m["computed"] = true
		m["optional"] = e.Optional
	case *AsExpr:
		m["expression"] = Dump(e.Expr)
		m["typeAnnotation"] = e.TypeName
	case *NonNullExpr:
		m["expression"] = Dump(e.Expr)
	}

	return m
}

func dumpList(exprs []Expression) []any {
	out := make([]any, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, Dump(e))
	}
	return out
}

// DumpComments converts comments into plain maps.
func DumpComments(comments []Comment) []any {
	out := make([]any, 0, len(comments))
	for _, c := range comments {
		out = append(out, map[string]any{
			"type":  string(c.Kind),
			"value": c.Value,
			"start": c.Start,
			"end":   c.Stop,
		})
	}
	return out
}
