// Package correlation tags a unit of work with an opaque identifier so that
// all log records it produces can be grouped. HTTP requests receive one from
// Middleware; scheduled job runs receive one from the scheduler.
package correlation

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type contextKey struct{}

// New returns a fresh random identifier.
func New() string {
	return uuid.NewString()
}

func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identifier stored in ctx, or "".
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// Ensure returns ctx unchanged if it already carries an identifier and a
// derived context with a new one otherwise.
func Ensure(ctx context.Context) context.Context {
	if FromContext(ctx) != "" {
		return ctx
	}
	return WithContext(ctx, New())
}

// LoggerExtractor logs the identifier under "correlation_id".
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return slog.String("correlation_id", id), true
		}
		return slog.Attr{}, false
	}
}
