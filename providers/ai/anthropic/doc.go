// Package anthropic implements ai.Provider for the Anthropic Messages API.
//
// The API has no constrained JSON output, so when JSON output is wanted the
// assistant turn is prefilled with "{" and the same character is prepended to
// the returned text.
package anthropic
