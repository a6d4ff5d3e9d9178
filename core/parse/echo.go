package parse

// IsSchemaEcho reports whether v looks like a serialized JSON Schema rather
// than an instance: a map carrying "$defs" or "definitions", or whose
// top-level "type" is "object".
func IsSchemaEcho(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	if _, ok := m["$defs"]; ok {
		return true
	}
	if _, ok := m["definitions"]; ok {
		return true
	}
	t, ok := m["type"].(string)
	return ok && t == "object"
}
