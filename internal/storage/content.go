package storage

import (
	"context"

	"github.com/sneddy/dsmlkz-platform/internal/models"
)

// Content описывает операции над лентами постов и вакансий.
type Content interface {
	// SaveContent сохраняет пачку постов (upsert по паре channel_name + message_id).
	// Канонический писатель таблицы — внешний бот; этим путём пользуется
	// админская дозаливка POST /feeds/ingest.
	SaveContent(ctx context.Context, items []models.ChannelPost) error
	// ListContent возвращает страницу постов, отсортированных по created_at DESC, id DESC.
	// При некорректном page_token возвращает ErrInvalidCursor.
	ListContent(ctx context.Context, opts models.ListOptions) (*models.ContentPage, error)
	// ContentByID возвращает пост по его строковому идентификатору.
	// Если запись не найдена — ErrNotFound.
	ContentByID(ctx context.Context, id string) (*models.ChannelPost, error)
	// ListJobs возвращает страницу вакансий (посты, для которых есть job_details).
	ListJobs(ctx context.Context, opts models.ListOptions) (*models.JobPage, error)
	// JobByID возвращает вакансию по идентификатору поста.
	JobByID(ctx context.Context, id string) (*models.JobPost, error)
}

// ContentStorage задаёт контракт доступа к хранилищу лент.
type ContentStorage interface {
	Content
	Close()
}
