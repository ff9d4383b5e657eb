package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFoundAvatar — объект с таким ключом в бакете отсутствует.
	ErrNotFoundAvatar = errors.New("not found")
	// ErrInvalidArgument — нарушены ограничения загрузки: неподдерживаемый
	// content-type, превышен размер или ключ вне префикса пользователя.
	ErrInvalidArgument = errors.New("invalid argument")
)

// UploadInfo — всё, что нужно клиенту для прямой PUT-загрузки аватара в бакет.
type UploadInfo struct {
	// UploadURL — presigned URL для PUT-запроса.
	UploadURL string
	// AvatarKey — ключ будущего объекта (avatars/<userID>/<uuid>.<ext>).
	AvatarKey string
	// Expires — срок действия подписи.
	Expires time.Duration
	// RequiredHeader — заголовки, обязательные при PUT (Content-Type и т.п.);
	// подпись их фиксирует, без них загрузка будет отклонена.
	RequiredHeader map[string]string
}

// AvatarsStorage — контракт объектного хранилища аватаров: выдача presigned
// PUT и подтверждение состоявшейся загрузки.
type AvatarsStorage interface {
	// AvatarUploadURL валидирует contentType/contentLength и генерирует
	// presigned PUT под новым ключом в префиксе пользователя.
	AvatarUploadURL(ctx context.Context, userID uuid.UUID, contentType string, contentLength int64) (*UploadInfo, error)
	// CheckAvatarUpload подтверждает загрузку по key: объект существует,
	// лежит в префиксе userID и проходит ограничения типа/размера.
	// Возвращает публичный URL объекта.
	CheckAvatarUpload(ctx context.Context, userID uuid.UUID, key string) (publicURL string, err error)
}
