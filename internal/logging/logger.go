// Package logging defines the structured logging contract the rest of the
// project codes against. The server wires it to slog; another backend only
// needs to satisfy Logger.
package logging

import "context"

// Logger is a context-aware structured logger. The variadic args are
// alternating key-value pairs:
//
//	log.Info(ctx, "starting server", "addr", addr)
type Logger interface {
	// Debug logs fine-grained diagnostics, usually disabled in production.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs normal operational events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger whose records always carry the given
	// key-value pairs.
	With(args ...any) Logger
}
