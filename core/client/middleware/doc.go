// Package middleware provides built-in middleware for the replicator client.
// Each constructor returns a [client.Middleware] ready for
// [client.WithMiddleware].
//
//   - [NewTimeoutMiddleware] bounds every backend request with a deadline.
//   - [NewLoggingMiddleware] writes slog entries before and after each request,
//     at Minimal, Standard or Verbose detail.
//
// Usage:
//
//	c, err := client.New(cfg,
//	    client.WithMiddleware(
//	        middleware.NewTimeoutMiddleware(2*time.Minute),
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	    ),
//	)
//
// The first entry is the outermost wrapper: a request travels
// Timeout → Logging → backend and the reply travels back in reverse.
package middleware
