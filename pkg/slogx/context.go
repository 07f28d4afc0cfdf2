package slogx

import (
	"context"
	"log/slog"
	"sync"
)

type ctxKey struct{}

type attrsKey struct{}

// requestAttrs collects attributes discovered while the request is handled so
// the final http_request line can carry them too.
type requestAttrs struct {
	mu   sync.Mutex
	args []any
}

func (ra *requestAttrs) snapshot() []any {
	ra.mu.Lock()
	defer ra.mu.Unlock()
	return append([]any(nil), ra.args...)
}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return l
}

// Annotate returns ctx carrying the request logger extended with args. Inside
// HTTPMiddleware the args are also added to the access log line.
func Annotate(ctx context.Context, args ...any) context.Context {
	if ra, ok := ctx.Value(attrsKey{}).(*requestAttrs); ok {
		ra.mu.Lock()
		ra.args = append(ra.args, args...)
		ra.mu.Unlock()
	}
	return WithContext(ctx, FromContext(ctx).With(args...))
}
