package ai

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind identifies a backend family.
type Kind string

const (
	KindGoogle    Kind = "google"
	KindOpenAI    Kind = "openai"
	KindAnthropic Kind = "anthropic"
)

// Kinds lists the supported backends in their canonical order.
var Kinds = []Kind{KindGoogle, KindOpenAI, KindAnthropic}

// ParseKind maps a case-insensitive backend name to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindGoogle, KindOpenAI, KindAnthropic:
		return k, nil
	default:
		return "", fmt.Errorf("unknown provider %q (expected one of google, openai, anthropic)", s)
	}
}

// EnvKey is the environment variable conventionally holding the credential
// for the backend.
func (k Kind) EnvKey() string {
	switch k {
	case KindGoogle:
		return "GOOGLE_API_KEY"
	case KindOpenAI:
		return "OPENAI_API_KEY"
	case KindAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

func (k Kind) String() string {
	return string(k)
}

// Config selects and configures a backend. It is copied into the backend at
// construction and not read again.
type Config struct {
	Kind    Kind
	APIKey  string
	BaseURL string // optional endpoint override
	Model   string // optional, each backend has a default

	// JSONMode controls native constrained output. nil uses it wherever the
	// backend supports it; false never requests it.
	JSONMode *bool
}

// NativeJSON reports whether constrained JSON output should be requested.
func (c Config) NativeJSON() bool {
	return c.JSONMode == nil || *c.JSONMode
}

// CompletionRequest is one prompt sent to a backend.
type CompletionRequest struct {
	Prompt    string
	MaxTokens int // 0 means the backend default
}

// RawCompletion is the normalized text returned by a backend.
type RawCompletion struct {
	Text         string
	Provider     Kind
	Model        string
	ID           string
	FinishReason string
	NativeJSON   bool // constrained output was requested
	Prefilled    bool // Text starts with the "{" the request was seeded with
}

// Options holds construction settings shared by every backend.
type Options struct {
	HTTPClient *http.Client
}

// Option customizes backend construction.
type Option func(*Options)

// WithHTTPClient routes backend traffic through client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// ApplyOptions resolves opts, defaulting to a fresh http.Client.
func ApplyOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	return o
}
