package main

import (
	"encoding/json"
	"fmt"
	"strings"

	yamlv3 "go.yaml.in/yaml/v3"

	"github.com/btouchard/tmplexpr/internal/compiler/ast"
	"github.com/btouchard/tmplexpr/internal/compiler/script"
	"github.com/btouchard/tmplexpr/internal/extract"
)

// render writes outcomes in the configured format.
func (s *session) render(outcomes []extract.Outcome) error {
	if s.cfg.Output.Format == "text" {
		for _, out := range outcomes {
			s.renderText(out)
		}
		return nil
	}

	reports := make([]extract.Report, len(outcomes))
	for i, out := range outcomes {
		reports[i] = out.Report()
	}
	return s.encode(reports)
}

// encode writes v as json or yaml.
func (s *session) encode(v any) error {
	switch s.cfg.Output.Format {
	case "yaml":
		enc := yamlv3.NewEncoder(s.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(s.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

func (s *session) renderText(out extract.Outcome) {
	switch {
	case out.Err != nil:
		_, _ = fmt.Fprintf(s.out, "%d: %s\n", out.Offset, s.red.Sprint(out.Err.Code))
	case ast.IsPlaceholder(out.Node):
		_, _ = fmt.Fprintf(s.out, "%d..%d: <placeholder>\n", out.Offset, out.Index)
	default:
		_, _ = fmt.Fprintf(s.out, "%d..%d: %s %s\n", out.Offset, out.Index, out.Node.Type(), script.Print(out.Node))
	}
	for _, c := range out.Comments {
		_, _ = fmt.Fprintf(s.out, "  %s comment %d..%d: %s\n", c.Kind, c.Start, c.Stop, strings.TrimSpace(c.Value))
	}
}
