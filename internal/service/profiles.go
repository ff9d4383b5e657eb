package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sneddy/dsmlkz-platform/internal/models"
	"github.com/sneddy/dsmlkz-platform/internal/pkg/log"
	"github.com/sneddy/dsmlkz-platform/internal/storage"
)

// UpdateProfileInput — частичный апдейт анкеты участником.
// Поля задаются указателями: nil — «не трогать», пустая строка — «очистить».
// Email через этот путь не проходит: в анкете он не хранится.
// AvatarURL и SecretCode применяются только при явно выставленных
// указателях — отсутствующее поле оставляет текущее значение.
type UpdateProfileInput struct {
	UserID      uuid.UUID
	Nickname    *string
	FirstName   *string
	LastName    *string
	City        *string
	University  *string
	Company     *string
	Position    *string
	AboutYou    *string
	Motivation  *string
	LinkedinURL *string
	GithubURL   *string
	TelegramURL *string
	AvatarURL   *string
	SecretCode  *int32
}

type AvatarUploadURLInput struct {
	UserID        uuid.UUID
	ContentType   string
	ContentLength int64
}

type ConfirmAvatarUploadInput struct {
	UserID    uuid.UUID
	AvatarKey string
}

// ProfileByID возвращает анкету по идентификатору пользователя.
//
// Поведение:
//   - uuid.Nil -> ErrInvalidArgument;
//   - при отсутствии записи возвращает ErrNotFound;
//   - ошибки стораджа маппятся в ErrInternal.
func (s *Service) ProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "service/profiles/ProfileByID"

	lg := log.From(ctx).With("op", op, "user_id", userID.String())

	if userID == uuid.Nil {
		lg.Warn("invalid argument: empty user_id")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	result, err := s.profilesStorage.ProfileByID(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("profile not found")

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on ProfileByID", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return result, nil
}

// UpdateProfile выполняет частичное обновление анкеты.
//
// Правила:
//   - обновляются только поля с непустыми указателями;
//   - nickname нормализуется и не может стать пустым;
//   - пустая строка в остальных полях — явное «очистить»;
//   - updated_at сдвигается на уровне БД даже при no-op апдейте.
//
// Поведение:
//   - при отсутствии записи возвращает ErrNotFound;
//   - при конфликте nickname — ErrAlreadyExists;
//   - прочие ошибки стораджа маппятся в ErrInternal.
func (s *Service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*models.Profile, error) {
	const op = "service/profiles/UpdateProfile"

	lg := log.From(ctx).With("op", op, "user_id", input.UserID.String())

	if input.UserID == uuid.Nil {
		lg.Warn("invalid argument: empty user_id")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	upd := storage.ProfileUpdate{}

	if input.Nickname != nil {
		val := strings.TrimSpace(*input.Nickname)
		if val == "" {
			lg.Warn("invalid argument: empty nickname in update")

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}

		upd.Nickname = &val
	}

	trimmed := func(p *string) *string {
		if p == nil {
			return nil
		}

		val := strings.TrimSpace(*p)

		return &val
	}

	upd.FirstName = trimmed(input.FirstName)
	upd.LastName = trimmed(input.LastName)
	upd.City = trimmed(input.City)
	upd.University = trimmed(input.University)
	upd.Company = trimmed(input.Company)
	upd.Position = trimmed(input.Position)
	upd.AboutYou = trimmed(input.AboutYou)
	upd.Motivation = trimmed(input.Motivation)
	upd.LinkedinURL = trimmed(input.LinkedinURL)
	upd.GithubURL = trimmed(input.GithubURL)
	upd.TelegramURL = trimmed(input.TelegramURL)
	upd.AvatarURL = trimmed(input.AvatarURL)
	upd.SecretCode = input.SecretCode

	result, err := s.profilesStorage.UpdateProfile(ctx, input.UserID, upd)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("profile not found")

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		case errors.Is(err, storage.ErrAlreadyExists):
			lg.Warn("nickname already taken")

			return nil, fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		default:
			lg.Error("storage error", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return result, nil
}

// AvatarUploadURL генерирует presigned PUT URL для загрузки аватара в S3/MinIO.
//
// Поведение:
//   - ошибки валидации в сторадже возвращаются как ErrInvalidArgument;
//   - иные ошибки (проблемы S3/клиента) — ErrInternal.
func (s *Service) AvatarUploadURL(ctx context.Context, input AvatarUploadURLInput) (*storage.UploadInfo, error) {
	const op = "service/profiles/AvatarUploadURL"

	lg := log.From(ctx).With("op", op, "user_id", input.UserID.String())

	if input.UserID == uuid.Nil || strings.TrimSpace(input.ContentType) == "" || input.ContentLength <= 0 {
		lg.Warn("invalid argument for presign", "content_type", input.ContentType, "content_length", input.ContentLength)

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	result, err := s.avatarsStorage.AvatarUploadURL(ctx, input.UserID, input.ContentType, input.ContentLength)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidArgument):
			lg.Warn("validation failed in storage", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		default:
			lg.Error("storage error", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return result, nil
}

// ConfirmAvatarUpload подтверждает успешную загрузку аватара.
//
// Процесс:
//  1. объектное хранилище проверяет ключ (принадлежность userID, наличие объекта,
//     тип/размер) и формирует публичный URL;
//  2. storage.Profiles фиксирует avatar_key/avatar_url в анкете.
//
// Поведение/ошибки:
//   - ErrInvalidArgument — неверный ключ или нарушены ограничения;
//   - ErrNotFound — объект в бакете или анкета не найдены;
//   - ErrInternal — прочие ошибки стораджа/S3.
func (s *Service) ConfirmAvatarUpload(ctx context.Context, input ConfirmAvatarUploadInput) (*models.Profile, error) {
	const op = "service/profiles/ConfirmAvatarUpload"

	lg := log.From(ctx).With("op", op, "user_id", input.UserID.String(), "avatar_key", input.AvatarKey)

	if input.UserID == uuid.Nil || strings.TrimSpace(input.AvatarKey) == "" {
		lg.Warn("invalid argument for confirm")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	publicURL, err := s.avatarsStorage.CheckAvatarUpload(ctx, input.UserID, input.AvatarKey)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidArgument):
			lg.Warn("invalid avatar key or attributes", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		case errors.Is(err, storage.ErrNotFoundAvatar):
			lg.Warn("avatar object not found")

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on CheckAvatarUpload", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	result, err := s.profilesStorage.ConfirmAvatarUpload(ctx, input.UserID, input.AvatarKey, publicURL)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("profile not found on confirm")

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error on ConfirmAvatarUpload", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return result, nil
}

// ListPublicProfiles возвращает страницу каталога участников.
// Нормализует limit по конфигу (default/max) перед обращением кБД.
func (s *Service) ListPublicProfiles(ctx context.Context, opts models.ListOptions) ([]models.PublicProfile, string, error) {
	const op = "service/profiles/ListPublicProfiles"

	lg := log.From(ctx).With("op", op)

	opts.Limit = s.normalizeLimit(opts.Limit)

	items, next, err := s.profilesStorage.ListPublicProfiles(ctx, opts)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidCursor):
			lg.Warn("invalid page token")

			return nil, "", fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		default:
			lg.Error("storage error", "err", err)

			return nil, "", fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return items, next, nil
}

// CommunityFaces возвращает «лица сообщества» в порядке ранга.
func (s *Service) CommunityFaces(ctx context.Context) ([]models.CommunityFace, error) {
	const op = "service/profiles/CommunityFaces"

	faces, err := s.profilesStorage.ListCommunityFaces(ctx)
	if err != nil {
		log.From(ctx).Error("storage error", "op", op, "err", err)

		return nil, fmt.Errorf("%s: %w", op, ErrInternal)
	}

	return faces, nil
}

// normalizeLimit приводит лимит выдачи к допустимому диапазону конфига.
func (s *Service) normalizeLimit(limit int32) int32 {
	if limit <= 0 {
		return s.cfg.Limits.Default
	}

	if limit > s.cfg.Limits.Max {
		return s.cfg.Limits.Max
	}

	return limit
}
