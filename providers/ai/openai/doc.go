// Package openai implements ai.Provider for OpenAI and OpenAI-compatible chat
// completion servers using github.com/openai/openai-go/v3.
//
// Native JSON output is requested with response_format json_object. SDK
// retries are disabled: a failed call is returned to the caller unchanged.
package openai
