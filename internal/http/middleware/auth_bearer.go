package middleware

import (
	"context"
	"net/http"
	"strings"
)

// AuthBearer достаёт Bearer-токен из Authorization и кладёт его в контекст
// по ключу CtxAuthToken. Проверка подписи и срока — зона ответственности
// хендлеров: мидлвар не отклоняет запросы без токена.
func AuthBearer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if ok {
				if token := strings.TrimSpace(raw); token != "" {
					r = r.WithContext(context.WithValue(r.Context(), CtxAuthToken, token))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
