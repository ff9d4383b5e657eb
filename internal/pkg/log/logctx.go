// log — request-scoped логгер в контексте.
// Транспортный слой кладёт логгер с request_id через Into, нижние слои
// достают его через From/WithOp, не протаскивая *slog.Logger по сигнатурам.
package log

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// Into кладёт логгер в контекст.
func Into(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From достаёт логгер из контекста; вне запроса — slog.Default().
func From(ctx context.Context) *slog.Logger {
	l, ok := ctx.Value(ctxKey{}).(*slog.Logger)
	if !ok || l == nil {
		return slog.Default()
	}

	return l
}

// WithOp — шорткат для операционного логгера: From(ctx).With("op", op).
func WithOp(ctx context.Context, op string) *slog.Logger {
	return From(ctx).With(slog.String("op", op))
}
