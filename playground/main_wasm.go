//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/btouchard/tmplexpr/internal/compiler/ast"
	"github.com/btouchard/tmplexpr/internal/compiler/script"
	"github.com/btouchard/tmplexpr/internal/extract"
)

func main() {
	js.Global().Set("extractExpression", js.FuncOf(extractExpressionWrapper))

	// Keep the program alive
	select {}
}

// extractExpressionWrapper takes (template, offset, loose, ts) and recovers
// from panics so the page always gets a result object.
func extractExpressionWrapper(this js.Value, args []js.Value) (result interface{}) {
	defer func() {
		if r := recover(); r != nil {
			result = js.ValueOf(failure(fmt.Sprintf("panic: %v", r)))
		}
	}()

	if len(args) != 4 {
		return js.ValueOf(failure("expected 4 arguments (template, offset, loose, ts)"))
	}

	template := args[0].String()
	offset := args[1].Int()
	if offset < 0 || offset > len(template) {
		return js.ValueOf(failure(fmt.Sprintf("offset %d is outside the template", offset)))
	}

	out := extract.Run(template, offset, extract.Options{
		Loose:      args[2].Bool(),
		TypeScript: args[3].Bool(),
	})
	return js.ValueOf(toJS(out))
}

func toJS(out extract.Outcome) map[string]interface{} {
	res := map[string]interface{}{
		"type":   "",
		"start":  out.Offset,
		"end":    out.Offset,
		"index":  out.Index,
		"source": "",
		"errors": []interface{}{},
	}

	if out.Err != nil {
		res["errors"] = []interface{}{out.Err.Error()}
		return res
	}

	if ast.IsPlaceholder(out.Node) {
		res["type"] = "Placeholder"
	} else {
		res["type"] = out.Node.Type()
		res["source"] = script.Print(out.Node)
	}
	res["start"] = out.Node.Pos()
	res["end"] = out.Node.End()
	return res
}

func failure(msg string) map[string]interface{} {
	return map[string]interface{}{
		"type":   "",
		"start":  0,
		"end":    0,
		"index":  0,
		"source": "",
		"errors": []interface{}{msg},
	}
}
