package parse

import "strings"

const fence = "```"

// Sanitize trims whitespace and removes a leading fence marker (with an
// optional language tag, up to the end of its line) and a trailing one.
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(text string) string {
	s := strings.TrimSpace(text)
	for {
		next := stripFences(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripFences(s string) string {
	if strings.HasPrefix(s, fence) {
		s = s[len(fence):]
		// drop the language tag, if any
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			if tag := strings.TrimSpace(s[:nl]); !strings.ContainsAny(tag, "{[\"") {
				s = s[nl+1:]
			}
		} else if !strings.ContainsAny(s, "{[\"") {
			s = ""
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, fence) {
		s = strings.TrimSpace(s[:len(s)-len(fence)])
	}
	return s
}
