package client

import (
	"context"

	"github.com/leofalp/replicator/providers/ai"
)

// CompleteFunc sends one completion request to the backend. It is the unit
// threaded through the middleware chain.
type CompleteFunc func(ctx context.Context, request ai.CompletionRequest) (*ai.RawCompletion, error)

// Middleware wraps the next CompleteFunc. The first middleware passed to
// WithMiddleware is the outermost wrapper.
type Middleware func(next CompleteFunc) CompleteFunc

// buildChain applies middlewares in reverse so that middlewares[0] runs first.
func buildChain(provider ai.Provider, middlewares []Middleware) CompleteFunc {
	var chain CompleteFunc = provider.Complete

	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] == nil {
			continue
		}
		chain = middlewares[i](chain)
	}

	return chain
}
