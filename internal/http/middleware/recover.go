package middleware

import (
	"log/slog"
	"net/http"

	"github.com/sneddy/dsmlkz-platform/internal/http/apierrors"
	logctx "github.com/sneddy/dsmlkz-platform/internal/pkg/log"
	"github.com/sneddy/dsmlkz-platform/internal/service"
)

// Recover перехватывает панику обработчика и отвечает унифицированным
// 500/internal. Причина паники попадает только в лог.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				logctx.From(r.Context()).LogAttrs(r.Context(), slog.LevelError, "panic",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("reason", rec),
				)
				apierrors.WriteError(w, r, service.ErrInternal)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
