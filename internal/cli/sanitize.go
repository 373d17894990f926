package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/colortune/internal/params"
	"github.com/jmylchreest/colortune/internal/provider"
)

// sanitizeCmd represents the sanitize command
var sanitizeCmd = &cobra.Command{
	Use:   "sanitize [file|-]",
	Short: "Clamp and validate raw model output into grading parameters",
	Long: `Read a raw model response and turn it into validated parameters.

The input may be free text with a fenced or embedded JSON document, and may
be truncated mid-object. It is handled exactly like a live provider
response: the JSON is extracted and repaired, every parameter is clamped
into range, grain is forced to zero, and the result is validated.

A JSON array of style candidates yields one entry per candidate. Any other
object is treated as a single parameter set.

Examples:
  colortune sanitize response.txt
  pbpaste | colortune sanitize -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSanitize,
}

// sanitizedStyle is one candidate after sanitising.
type sanitizedStyle struct {
	StyleName   string             `json:"style_name"`
	Description string             `json:"description,omitempty"`
	Parameters  params.ColorParams `json:"parameters"`
}

// runSanitize executes the sanitize command.
func runSanitize(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	data, err := readInput(path)
	if err != nil {
		return err
	}
	out, err := sanitizeResponse(string(data))
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

// sanitizeResponse extracts the JSON document from text and sanitises it.
// It returns []sanitizedStyle for candidate lists and params.ColorParams
// otherwise.
func sanitizeResponse(text string) (any, error) {
	doc, err := provider.ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var list []provider.StyleCandidate
	if err := json.Unmarshal([]byte(doc), &list); err == nil {
		out := make([]sanitizedStyle, 0, len(list))
		for i, c := range list {
			p, err := c.Params()
			if err != nil {
				return nil, fmt.Errorf("candidate %d: %w", i, err)
			}
			out = append(out, sanitizedStyle{
				StyleName:   params.SanitizeText(c.StyleName),
				Description: params.SanitizeText(c.Description),
				Parameters:  p,
			})
		}
		return out, nil
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return nil, fmt.Errorf("expected a JSON object or array: %w", err)
	}
	if inner, ok := raw["parameters"].(map[string]any); ok {
		raw = inner
	}
	return params.FromMap(params.Sanitize(raw))
}
