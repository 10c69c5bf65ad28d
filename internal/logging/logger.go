// Package logging is the structured logger shared by the client and the
// server. The only implementation wraps log/slog.
package logging

import "context"

// Logger takes a message plus alternating key/value args:
//
//	logger.Warn(ctx, "visa list unavailable", "error", err, "fallback", "cache")
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
