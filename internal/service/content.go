package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sneddy/dsmlkz-platform/internal/models"
	"github.com/sneddy/dsmlkz-platform/internal/pkg/log"
	"github.com/sneddy/dsmlkz-platform/internal/storage"
)

// SaveContent сохраняет пачку постов каналов (upsert по channel_name + message_id).
// Канонический писатель таблицы — внешний бот; этот путь обслуживает
// админский заливочный эндпойнт и дозаливку пропущенных постов.
//
// Поведение:
//   - пустая пачка, пост без channel_name или message_id <= 0 -> ErrInvalidArgument;
//   - ошибки стораджа маппятся в ErrInternal.
func (s *Service) SaveContent(ctx context.Context, items []models.ChannelPost) error {
	const op = "service/content/SaveContent"

	lg := log.From(ctx).With("op", op, "count", len(items))

	if len(items) == 0 {
		lg.Warn("invalid argument: empty batch")

		return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	for _, item := range items {
		if strings.TrimSpace(item.ChannelName) == "" || item.MessageID <= 0 {
			lg.Warn("invalid argument: bad item",
				"channel_name", item.ChannelName,
				"message_id", item.MessageID,
			)

			return fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		}
	}

	if err := s.contentStorage.SaveContent(ctx, items); err != nil {
		lg.Error("storage error", "err", err)

		return fmt.Errorf("%s: %w", op, ErrInternal)
	}

	lg.Info("content_saved")

	return nil
}

// ListNews возвращает страницу постов каналов сообщества.
func (s *Service) ListNews(ctx context.Context, opts models.ListOptions) (*models.ContentPage, error) {
	const op = "service/content/ListNews"

	lg := log.From(ctx).With("op", op)

	opts.Limit = s.normalizeLimit(opts.Limit)

	page, err := s.contentStorage.ListContent(ctx, opts)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidCursor):
			lg.Warn("invalid page token")

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		default:
			lg.Error("storage error", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return page, nil
}

// NewsByID возвращает пост по идентификатору.
func (s *Service) NewsByID(ctx context.Context, id string) (*models.ChannelPost, error) {
	const op = "service/content/NewsByID"

	lg := log.From(ctx).With("op", op, "id", id)

	if strings.TrimSpace(id) == "" {
		lg.Warn("invalid argument: empty id")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	item, err := s.contentStorage.ContentByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("post not found")

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return item, nil
}

// ListJobs возвращает страницу вакансий.
func (s *Service) ListJobs(ctx context.Context, opts models.ListOptions) (*models.JobPage, error) {
	const op = "service/content/ListJobs"

	lg := log.From(ctx).With("op", op)

	opts.Limit = s.normalizeLimit(opts.Limit)

	page, err := s.contentStorage.ListJobs(ctx, opts)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidCursor):
			lg.Warn("invalid page token")

			return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
		default:
			lg.Error("storage error", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return page, nil
}

// JobByID возвращает вакансию по идентификатору поста.
func (s *Service) JobByID(ctx context.Context, id string) (*models.JobPost, error) {
	const op = "service/content/JobByID"

	lg := log.From(ctx).With("op", op, "id", id)

	if strings.TrimSpace(id) == "" {
		lg.Warn("invalid argument: empty id")

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	item, err := s.contentStorage.JobByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			lg.Warn("job not found")

			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		default:
			lg.Error("storage error", "err", err)

			return nil, fmt.Errorf("%s: %w", op, ErrInternal)
		}
	}

	return item, nil
}
