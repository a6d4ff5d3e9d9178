// Package prompt embeds a schema and the instance-only instructions into a
// user prompt.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leofalp/replicator/core/schema"
)

// Instructions are appended after the schema. They ask for an instance, not
// the schema, and for bare JSON without markdown.
var Instructions = []string{
	"Return a JSON instance that conforms to the schema, filled with real values. Do NOT return the schema itself.",
	`Do not include "$defs", "definitions", "properties" or "required" keys unless they are fields of the schema.`,
	"Respond with the JSON object only: no markdown code fences, no explanations.",
	"If you already started writing the schema, discard it and output only the instance.",
}

// Compose renders the full prompt sent to the backend.
func Compose(userPrompt string, d *schema.Descriptor) (string, error) {
	if d == nil {
		return "", errors.New("prompt: nil schema descriptor")
	}
	rendered, err := schema.Indent(d)
	if err != nil {
		return "", fmt.Errorf("prompt: rendering schema: %w", err)
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(userPrompt))
	b.WriteString("\n\nYou must respond with a valid JSON object matching this schema:\n")
	b.WriteString(rendered)
	b.WriteString("\n\nRules:\n")
	for _, line := range Instructions {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("\nResponse:\n")
	return b.String(), nil
}
