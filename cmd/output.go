package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"fieldcheck/internal/errs"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func parseFormat(raw string) (string, error) {
	switch format := strings.ToLower(strings.TrimSpace(raw)); format {
	case "", formatText:
		return formatText, nil
	case formatJSON, formatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (text|json|yaml)", raw)
	}
}

// writeOutput renders value as json or yaml, or calls text for the text format.
func writeOutput(out io.Writer, format string, value any, text func(io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(value); err != nil {
			return errs.Wrap(err, "write json output")
		}
		return nil
	case formatYAML:
		// Round trip through json so yaml keys match the json field names.
		raw, err := json.Marshal(value)
		if err != nil {
			return errs.Wrap(err, "encode yaml output")
		}
		var node yaml.Node
		if err := yaml.Unmarshal(raw, &node); err != nil {
			return errs.Wrap(err, "convert yaml output")
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return errs.Wrap(err, "write yaml output")
		}
		if err := enc.Close(); err != nil {
			return errs.Wrap(err, "close yaml output")
		}
		return nil
	default:
		if err := text(out); err != nil {
			return errs.Wrap(err, "write text output")
		}
		return nil
	}
}

func dash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
