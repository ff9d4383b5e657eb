package minio

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	mclient "github.com/minio/minio-go/v7"

	"github.com/sneddy/dsmlkz-platform/internal/storage"
)

// avatarPrefix — корневой префикс ключей аватаров в бакете.
const avatarPrefix = "avatars"

// extByContentType — расширение объекта по заявленному типу содержимого.
var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AvatarUploadURL генерирует presigned PUT URL для загрузки аватара.
// Валидирует contentType/contentLength и формирует ключ вида
// "avatars/<userID>/<uuid>.<ext>". Возвращённые RequiredHeader клиент
// обязан передать при PUT — они проверяются при подтверждении.
func (s *Storage) AvatarUploadURL(ctx context.Context, userID uuid.UUID, contentType string, contentLength int64) (*storage.UploadInfo, error) {
	const op = "storage/minio/avatars/AvatarUploadURL"

	if contentLength <= 0 || contentLength > s.avatar.MaxSizeBytes {
		return nil, storage.ErrInvalidArgument
	}

	if !isAllowedContentType(s.avatar.AllowedContentTypes, contentType) {
		return nil, storage.ErrInvalidArgument
	}

	key := path.Join(avatarPrefix, userID.String(), uuid.NewString()+extByContentType[contentType])

	u, err := s.client.PresignedPutObject(ctx, s.s3.Bucket, key, s.s3.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &storage.UploadInfo{
		UploadURL: u.String(),
		AvatarKey: key,
		Expires:   s.s3.PresignTTL,
		RequiredHeader: map[string]string{
			"Content-Type":   contentType,
			"Content-Length": fmt.Sprintf("%d", contentLength),
		},
	}, nil
}

// CheckAvatarUpload подтверждает факт загрузки объекта по key:
// ключ обязан принадлежать userID, объект — существовать и удовлетворять
// ограничениям размера/типа. Возвращает публичный URL, если PublicBaseURL задан.
func (s *Storage) CheckAvatarUpload(ctx context.Context, userID uuid.UUID, key string) (string, error) {
	const op = "storage/minio/avatars/CheckAvatarUpload"

	prefix := avatarPrefix + "/" + userID.String() + "/"
	if !strings.HasPrefix(key, prefix) {
		return "", storage.ErrInvalidArgument
	}

	objInfo, err := s.client.StatObject(ctx, s.s3.Bucket, key, mclient.StatObjectOptions{})
	if err != nil {
		errResp := mclient.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.StatusCode == 404 {
			return "", storage.ErrNotFoundAvatar
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	if objInfo.Size <= 0 || objInfo.Size > s.avatar.MaxSizeBytes {
		return "", storage.ErrInvalidArgument
	}

	if ct := objInfo.ContentType; ct != "" && !isAllowedContentType(s.avatar.AllowedContentTypes, ct) {
		return "", storage.ErrInvalidArgument
	}

	if s.s3.PublicBaseURL == "" {
		return "", nil
	}

	return strings.TrimRight(s.s3.PublicBaseURL, "/") + "/" + key, nil
}

// isAllowedContentType проверяет, что тип содержимого входит в allow-list.
func isAllowedContentType(allow []string, contentType string) bool {
	for _, a := range allow {
		if a == contentType {
			return true
		}
	}

	return false
}
