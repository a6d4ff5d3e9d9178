package parse

import "testing"

func TestIsSchemaEcho(t *testing.T) {
	tests := []struct {
		name string
		v    any
		want bool
	}{
		{"defs", map[string]any{"$defs": map[string]any{}}, true},
		{"definitions", map[string]any{"definitions": nil}, true},
		{"object type", map[string]any{"type": "object", "properties": map[string]any{}}, true},
		{"string type field", map[string]any{"type": "string"}, false},
		{"non-string type", map[string]any{"type": 3}, false},
		{"instance", map[string]any{"name": "todo-app", "pages": []any{}}, false},
		{"nested defs only", map[string]any{"data": map[string]any{"$defs": 1}}, false},
		{"array", []any{map[string]any{"type": "object"}}, false},
		{"scalar", "object", false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSchemaEcho(tt.v); got != tt.want {
				t.Errorf("IsSchemaEcho(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}
