// minio предоставляет реализацию storage.AvatarsStorage поверх MinIO/S3.
//
// minio.go   — конструктор клиента: нормализация endpoint, Secure по схеме,
// fail-fast-проверка наличия бакета;
// avatars.go — presigned PUT для загрузки аватара и подтверждение факта загрузки.
package minio

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sneddy/dsmlkz-platform/internal/config"
	"github.com/sneddy/dsmlkz-platform/internal/storage"
)

// Storage — адаптер MinIO для операций с аватарами участников.
type Storage struct {
	s3     config.S3Config
	avatar config.AvatarConfig
	client *mclient.Client
}

// New создает и инициализирует клиент MinIO.
// endpoint принимает как с указанием схемы ("https://s3.dsml.kz"),
// так и без неё ("minio:9000"); Secure выводится из схемы.
func New(ctx context.Context, s3 config.S3Config, avatar config.AvatarConfig) (*Storage, error) {
	const op = "storage/minio/New"

	endpoint := s3.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(s3.RootUser, s3.RootPassword, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, s3.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, s3.Bucket)
	}

	return &Storage{s3: s3, avatar: avatar, client: client}, nil
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.AvatarsStorage = (*Storage)(nil)
