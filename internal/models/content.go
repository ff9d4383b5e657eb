package models

import (
	"time"

	"github.com/google/uuid"
)

// ChannelPost — пост из Telegram-канала сообщества (таблица channels_content).
// Таблицу наполняет внешний бот; платформа читает и отдаёт ленты.
//
// Особенности:
//   - ID — UUIDv4, генерируется при вставке;
//   - пара (ChannelName, MessageID) уникальна — по ней выполняется upsert;
//   - временные метки — в UTC.
type ChannelPost struct {
	ID          uuid.UUID
	ChannelName string
	MessageID   int64
	Text        string
	ImageURL    string
	PostLink    string
	CreatedAt   time.Time
	FetchedAt   time.Time
}

// JobPost — вакансия: пост канала вакансий плюс разобранные ботом атрибуты
// (таблица job_details, 1:1 к channels_content по ContentID).
type JobPost struct {
	ChannelPost
	CompanyName string
	Location    string
	Salary      string
	ApplyURL    string
}

// ListOptions — параметры выборки лент.
//
// Особенности:
//   - при Limit <= 0 применяется серверный default (config.LimitsConfig.Default);
//   - PageToken == "" — первая страница.
type ListOptions struct {
	Limit     int32
	PageToken string
	// Channel — фильтр по имени канала; пустая строка — все каналы.
	Channel string
}

// ContentPage — страница постов со ссылкой на продолжение.
type ContentPage struct {
	Items         []ChannelPost
	NextPageToken string
}

// JobPage — страница вакансий со ссылкой на продолжение.
type JobPage struct {
	Items         []JobPost
	NextPageToken string
}
