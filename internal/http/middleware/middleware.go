// middleware содержит net/http-мидлвары HTTP-слоя платформы.
package middleware

import "net/http"

// Middleware — стандартный net/http мидлвар.
type Middleware func(http.Handler) http.Handler

// Chain оборачивает h мидлварами; первый в списке оказывается внешним.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	wrapped := h
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}

	return wrapped
}

// ctxKey — приватный тип ключей контекста мидлваров.
type ctxKey string

const (
	// CtxRequestID — ключ контекста с идентификатором запроса.
	CtxRequestID ctxKey = "request_id"
	// CtxAuthToken — ключ контекста с «сырым» Bearer-токеном.
	CtxAuthToken ctxKey = "auth_token"
)

// AuthTokenFrom возвращает Bearer-токен из контекста запроса.
func AuthTokenFrom(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(CtxAuthToken).(string)

	return token, ok && token != ""
}

// RequestIDFrom возвращает идентификатор запроса из контекста ("" — нет).
func RequestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(CtxRequestID).(string)

	return id
}

// statusWriter перехватывает статус и объём ответа для лога доступа.
type statusWriter struct {
	http.ResponseWriter

	status int
	bytes  int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n

	return n, err
}
