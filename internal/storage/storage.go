// storage содержит контракты слоя хранилищ платформы.
//
// storage.go  — пользователи и refresh-токены auth-слоя;
// profiles.go — анкеты участников (создание/чтение/частичное обновление)
// и фиксация атрибутов аватара после подтверждения загрузки в S3/MinIO;
// avatars.go  — контракт загрузки аватаров в S3/MinIO;
// content.go  — ленты постов Telegram-каналов и вакансий.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sneddy/dsmlkz-platform/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/токен/анкета/пост).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/refresh-token/анкета).
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidCursor — битый/чужой page_token (курсор пагинации).
	ErrInvalidCursor = errors.New("invalid cursor")
)

// Users выполняет операции над пользователями.
type Users interface {
	// SaveUser создаёт нового пользователя в БД.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RefreshTokens выполняет операции над refresh-токенами.
type RefreshTokens interface {
	// SaveRefreshToken сохраняет новый refresh-токен в БД.
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// RefreshTokenByHash находит refresh-токен по его хэшу.
	RefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	// RevokeRefreshToken пытается отозвать refresh-токен.
	// Возвращает false, если токен уже был отозван ранее.
	RevokeRefreshToken(ctx context.Context, hash string) (bool, error)
	// DeleteExpiredTokens удаляет все просроченные токены.
	DeleteExpiredTokens(ctx context.Context, now time.Time) error
}

// AuthStorage — верхнеуровневый контракт хранилища auth-слоя.
type AuthStorage interface {
	Users
	RefreshTokens
	Close()
}
