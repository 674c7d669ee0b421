// Package logging defines the structured logger used by the server and its
// services: a slog-backed implementation writing JSON to stdout or to a
// rotating file, with the request id picked up from the context.
package logging

import "context"

// Logger is a context-aware, structured logger. args are key-value pairs:
//
//	log.Info(ctx, "store created", "store_id", id, "owner_id", ownerID)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
