package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sneddy/dsmlkz-platform/internal/models"
	"github.com/sneddy/dsmlkz-platform/internal/storage"
)

// SaveContent сохраняет пачку постов одной батч-операцией.
// Upsert по уникальной паре (channel_name, message_id): повторный прогон
// одного и того же поста обновляет текст/ссылки, но не плодит дубликаты.
func (s *Storage) SaveContent(ctx context.Context, items []models.ChannelPost) error {
	const op = "storage/postgres/content/SaveContent"

	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	q := `
	INSERT INTO channels_content (channel_name, message_id, post_text, image_url, post_link, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (channel_name, message_id) DO UPDATE
	SET post_text = EXCLUDED.post_text,
	    image_url = EXCLUDED.image_url,
	    post_link = EXCLUDED.post_link,
	    fetched_at = now()
	`

	for _, item := range items {
		createdAt := item.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		batch.Queue(q,
			item.ChannelName,
			item.MessageID,
			item.Text,
			item.ImageURL,
			item.PostLink,
			createdAt.UTC(),
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

const contentColumns = `id, channel_name, message_id, post_text, image_url, post_link, created_at, fetched_at`

// scanChannelPost сканирует одну строку поста в доменную модель.
func scanChannelPost(row pgx.Row) (*models.ChannelPost, error) {
	var p models.ChannelPost

	if err := row.Scan(
		&p.ID,
		&p.ChannelName,
		&p.MessageID,
		&p.Text,
		&p.ImageURL,
		&p.PostLink,
		&p.CreatedAt,
		&p.FetchedAt,
	); err != nil {
		return nil, err
	}

	p.CreatedAt = p.CreatedAt.UTC()
	p.FetchedAt = p.FetchedAt.UTC()

	return &p, nil
}

// ListContent возвращает страницу постов.
// Сортировка фиксирована: created_at DESC, id DESC; фильтр по каналу — опционален.
func (s *Storage) ListContent(ctx context.Context, opts models.ListOptions) (*models.ContentPage, error) {
	const op = "storage/postgres/content/ListContent"

	limit := opts.Limit
	if limit <= 0 {
		limit = 1
	}

	args := make([]any, 0, 4)
	conds := make([]string, 0, 2)

	if opts.Channel != "" {
		args = append(args, opts.Channel)
		conds = append(conds, fmt.Sprintf("channel_name = $%d", len(args)))
	}

	if opts.PageToken != "" {
		createdCur, idCur, err := decodePageToken(opts.PageToken)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidCursor)
		}

		args = append(args, createdCur, idCur)
		conds = append(conds, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + joinConds(conds)
	}

	// limit+1: лишняя строка показывает, что страница не последняя.
	args = append(args, limit+1)

	q := fmt.Sprintf(`
	SELECT %s
	FROM channels_content
	%s
	ORDER BY created_at DESC, id DESC
	LIMIT $%d
	`, contentColumns, where, len(args))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	page := &models.ContentPage{}

	for rows.Next() {
		item, scanErr := scanChannelPost(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}

		page.Items = append(page.Items, *item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, rows.Err())
	}

	if int32(len(page.Items)) > limit {
		page.Items = page.Items[:limit]
		last := page.Items[len(page.Items)-1]
		page.NextPageToken = encodePageToken(last.CreatedAt, last.ID)
	}

	return page, nil
}

// ContentByID возвращает пост по идентификатору.
// Ошибки: storage.ErrNotFound при отсутствии записи или некорректном UUID.
func (s *Storage) ContentByID(ctx context.Context, id string) (*models.ChannelPost, error) {
	const op = "storage/postgres/content/ContentByID"

	postID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	q := `SELECT ` + contentColumns + ` FROM channels_content WHERE id = $1`

	item, err := scanChannelPost(s.db.QueryRow(ctx, q, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// scanJobPost сканирует строку join-а channels_content + job_details.
func scanJobPost(row pgx.Row) (*models.JobPost, error) {
	var j models.JobPost

	if err := row.Scan(
		&j.ID,
		&j.ChannelName,
		&j.MessageID,
		&j.Text,
		&j.ImageURL,
		&j.PostLink,
		&j.CreatedAt,
		&j.FetchedAt,
		&j.CompanyName,
		&j.Location,
		&j.Salary,
		&j.ApplyURL,
	); err != nil {
		return nil, err
	}

	j.CreatedAt = j.CreatedAt.UTC()
	j.FetchedAt = j.FetchedAt.UTC()

	return &j, nil
}

const jobSelect = `
SELECT c.id, c.channel_name, c.message_id, c.post_text, c.image_url, c.post_link, c.created_at, c.fetched_at,
       d.company_name, d.location, d.salary, d.apply_url
FROM channels_content c
JOIN job_details d ON d.content_id = c.id
`

// ListJobs возвращает страницу вакансий: посты, для которых бот разобрал job_details.
func (s *Storage) ListJobs(ctx context.Context, opts models.ListOptions) (*models.JobPage, error) {
	const op = "storage/postgres/content/ListJobs"

	limit := opts.Limit
	if limit <= 0 {
		limit = 1
	}

	args := make([]any, 0, 3)
	where := ""

	if opts.PageToken != "" {
		createdCur, idCur, err := decodePageToken(opts.PageToken)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrInvalidCursor)
		}

		args = append(args, createdCur, idCur)
		where = "WHERE (c.created_at, c.id) < ($1, $2)"
	}

	args = append(args, limit+1)

	q := fmt.Sprintf(`%s %s ORDER BY c.created_at DESC, c.id DESC LIMIT $%d`, jobSelect, where, len(args))

	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	page := &models.JobPage{}

	for rows.Next() {
		item, scanErr := scanJobPost(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}

		page.Items = append(page.Items, *item)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, rows.Err())
	}

	if int32(len(page.Items)) > limit {
		page.Items = page.Items[:limit]
		last := page.Items[len(page.Items)-1]
		page.NextPageToken = encodePageToken(last.CreatedAt, last.ID)
	}

	return page, nil
}

// JobByID возвращает вакансию по идентификатору поста.
func (s *Storage) JobByID(ctx context.Context, id string) (*models.JobPost, error) {
	const op = "storage/postgres/content/JobByID"

	postID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	q := jobSelect + ` WHERE c.id = $1`

	item, err := scanJobPost(s.db.QueryRow(ctx, q, postID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// joinConds объединяет условия WHERE через AND.
func joinConds(conds []string) string {
	out := conds[0]
	for _, c := range conds[1:] {
		out += " AND " + c
	}

	return out
}
