// handlers содержит REST-хендлеры платформы поверх сервисного слоя.
//
// auth.go     — регистрация/вход/ротация/отзыв/проверка токенов;
// profiles.go — анкеты, каталог участников, аватары, «лица сообщества»;
// feeds.go    — ленты постов каналов и вакансий.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/sneddy/dsmlkz-platform/internal/http/middleware"
	"github.com/sneddy/dsmlkz-platform/internal/service"
)

// Handlers агрегирует зависимости (сервисный слой).
type Handlers struct {
	Service *service.Service
}

func New(s *service.Service) *Handlers {
	return &Handlers{Service: s}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// errInvalidArgument — вспомогалка: локальная ошибка парсинга -> 400.
func errInvalidArgument() error {
	return fmt.Errorf("handlers: %w", service.ErrInvalidArgument)
}

// authorizeSelf проверяет Bearer-токен запроса и сверяет subject с userID.
// Возвращает ErrInvalidToken при отсутствии/невалидности токена
// и ErrInvalidArgument при попытке работать с чужой анкетой.
func (h *Handlers) authorizeSelf(r *http.Request, userID uuid.UUID) error {
	token, ok := middleware.AuthTokenFrom(r)
	if !ok {
		return fmt.Errorf("handlers: %w", service.ErrInvalidToken)
	}

	uid, _, err := h.Service.ValidateToken(r.Context(), token)
	if err != nil {
		return err
	}

	if uid != userID {
		return fmt.Errorf("handlers: %w", service.ErrInvalidArgument)
	}

	return nil
}
