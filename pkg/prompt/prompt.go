// Package prompt renders system-prompt templates with caller-supplied
// dependency values.
package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Mode controls how a renderer treats unresolved template variables.
type Mode int

const (
	// Strict fails rendering when the template references a missing
	// variable. This is the agent default: a broken template is a
	// configuration error, not something to paper over.
	Strict Mode = iota
	// Lenient substitutes the empty string for missing variables.
	Lenient
)

// Renderer substitutes dependency fields into prompt templates. Values are
// exposed under the "deps" key, so a template reads {{.deps.name}}.
type Renderer struct {
	mode Mode
}

// NewRenderer creates a renderer with the given missing-variable mode.
func NewRenderer(mode Mode) *Renderer {
	return &Renderer{mode: mode}
}

// Render executes the template against vars.
func (r *Renderer) Render(templateStr string, vars map[string]interface{}) (string, error) {
	option := "missingkey=error"
	if r.mode == Lenient {
		option = "missingkey=zero"
	}

	tmpl, err := template.New("prompt").Option(option).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	if vars == nil {
		vars = map[string]interface{}{}
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, map[string]interface{}{"deps": vars}); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}

	out := buf.String()
	if r.mode == Lenient {
		// text/template prints "<no value>" for missing map keys even
		// with missingkey=zero.
		out = strings.ReplaceAll(out, "<no value>", "")
	}
	return out, nil
}
