package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// FormatOptions selects how a command prints its result.
type FormatOptions struct {
	Output string `short:"o" long:"output" description:"Output format" choice:"text" choice:"json" choice:"yaml" default:"text"`
}

// OutputOptions is embedded by commands that print secrets or tokens.
type OutputOptions struct {
	FormatOptions
	Reveal bool `long:"reveal" description:"Print secrets and tokens in full"`
}

// render writes v as JSON or YAML, or calls text for the table format.
func render(w io.Writer, format string, v any, text func(*tabwriter.Writer)) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return err
		}

		return enc.Close()
	case formatText, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		text(tw)

		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// mask hides all but the last four characters of long values.
func mask(s string) string {
	if s == "" {
		return ""
	}

	if len(s) <= 8 {
		return "****"
	}

	return "****" + s[len(s)-4:]
}
