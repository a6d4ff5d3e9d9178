package utils

import (
	"encoding/json"
	"fmt"
)

// DefaultMaxStringLength is the default cut-off for log previews.
const DefaultMaxStringLength = 500

// JSONToString renders object as JSON, indented when indent is true. It never
// fails: a marshal error is rendered as a JSON error object.
func JSONToString(object any, indent ...bool) string {
	var (
		encoded []byte
		err     error
	)
	if len(indent) > 0 && indent[0] {
		encoded, err = json.MarshalIndent(object, "", "  ")
	} else {
		encoded, err = json.Marshal(object)
	}
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, "failed to marshal to JSON: "+err.Error())
	}
	return string(encoded)
}

// TruncateString shortens s to maxLen bytes and records the original length.
// A non-positive maxLen means DefaultMaxStringLength.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}
