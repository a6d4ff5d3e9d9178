package client

import (
	"net/http"

	"github.com/leofalp/replicator/providers/ai"
	"github.com/leofalp/replicator/providers/observability"
)

// DefaultMaxTokens caps the reply length when WithMaxTokens is not used.
const DefaultMaxTokens = 4096

// ClientOptions contains construction settings for a Client.
type ClientOptions struct {
	// Observer receives spans, metrics and logs. Optional.
	Observer observability.Provider

	// Middlewares wrap every backend request, outermost first.
	Middlewares []Middleware

	// HTTPClient is handed to the backend. Optional.
	HTTPClient *http.Client

	// Repair enables the jsonrepair extraction strategy.
	Repair bool

	// MaxTokens caps the reply length. Zero means DefaultMaxTokens.
	MaxTokens int

	// Provider replaces the backend resolved from ai.Config.Kind.
	Provider ai.Provider
}

// WithObserver sets the observability provider and enables the
// observability middleware.
func WithObserver(observer observability.Provider) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Observer = observer
	}
}

// WithMiddleware appends middlewares to the request chain.
func WithMiddleware(middlewares ...Middleware) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Middlewares = append(o.Middlewares, middlewares...)
	}
}

// WithHTTPClient routes backend traffic through client.
func WithHTTPClient(client *http.Client) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.HTTPClient = client
	}
}

// WithRepair lets the extractor fall back to repairing malformed JSON.
func WithRepair() func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Repair = true
	}
}

// WithMaxTokens caps the reply length.
func WithMaxTokens(n int) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.MaxTokens = n
	}
}

// WithProvider uses p instead of building a backend from the config.
func WithProvider(p ai.Provider) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Provider = p
	}
}
