package middleware

import (
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/sneddy/dsmlkz-platform/internal/pkg/log"
)

// Logging кладёт request-scoped логгер (с request_id) в контекст запроса
// и по завершении обработки пишет одну запись доступа "http".
func Logging(l *slog.Logger) Middleware {
	if l == nil {
		l = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := l
			if rid := RequestIDFrom(r); rid != "" {
				reqLog = reqLog.With(slog.String("request_id", rid))
			}

			r = r.WithContext(logctx.Into(r.Context(), reqLog))
			sw := newStatusWriter(w)

			started := time.Now()
			next.ServeHTTP(sw, r)

			reqLog.LogAttrs(r.Context(), slog.LevelInfo, "http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("dur", time.Since(started)),
				slog.Int("bytes", sw.bytes),
			)
		})
	}
}
