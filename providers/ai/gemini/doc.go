// Package gemini implements ai.Provider for Google Gemini through the
// google.golang.org/genai SDK. Native JSON output is requested with the
// application/json response MIME type.
package gemini
