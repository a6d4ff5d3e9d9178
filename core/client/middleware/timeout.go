package middleware

import (
	"context"
	"time"

	"github.com/leofalp/replicator/core/client"
	"github.com/leofalp/replicator/providers/ai"
)

// NewTimeoutMiddleware bounds each backend request with context.WithTimeout.
// A shorter deadline already on the caller's context wins. A non-positive
// timeout disables the middleware.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.CompleteFunc) client.CompleteFunc {
		if timeout <= 0 {
			return next
		}
		return func(ctx context.Context, request ai.CompletionRequest) (*ai.RawCompletion, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
