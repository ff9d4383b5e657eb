package postgres

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sneddy/dsmlkz-platform/internal/models"
	"github.com/sneddy/dsmlkz-platform/internal/storage"
)

// profileColumns — единый список колонок таблицы profiles,
// используемый в SELECT/RETURNING, чтобы гарантировать одинаковый порядок сканирования.
const profileColumns = `
user_id, nickname, first_name, last_name, city, university, company, position,
about_you, motivation, linkedin_url, github_url, telegram_url,
avatar_key, avatar_url, secret_code, created_at, updated_at
`

// scanProfile сканирует одну строку анкеты из результата запроса в доменную модель.
func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile

	if err := row.Scan(
		&p.UserID,
		&p.Nickname,
		&p.FirstName,
		&p.LastName,
		&p.City,
		&p.University,
		&p.Company,
		&p.Position,
		&p.AboutYou,
		&p.Motivation,
		&p.LinkedinURL,
		&p.GithubURL,
		&p.TelegramURL,
		&p.AvatarKey,
		&p.AvatarURL,
		&p.SecretCode,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	return &p, nil
}

// CreateProfile вставляет новую запись анкеты.
// Ошибки: storage.ErrAlreadyExists при конфликте уникальности (PK/nickname), иные — как есть.
func (s *Storage) CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	const op = "storage/postgres/profiles/CreateProfile"

	q := `
	INSERT INTO profiles (user_id, nickname, first_name, last_name, city, university,
		company, position, about_you, motivation, linkedin_url, github_url, telegram_url,
		avatar_key, avatar_url, secret_code)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	RETURNING
	` + profileColumns

	row := s.db.QueryRow(ctx, q,
		profile.UserID,
		profile.Nickname,
		profile.FirstName,
		profile.LastName,
		profile.City,
		profile.University,
		profile.Company,
		profile.Position,
		profile.AboutYou,
		profile.Motivation,
		profile.LinkedinURL,
		profile.GithubURL,
		profile.TelegramURL,
		profile.AvatarKey,
		profile.AvatarURL,
		profile.SecretCode,
	)

	result, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// ProfileByID возвращает анкету по user_id.
// Ошибки: storage.ErrNotFound, либо ошибка выполнения запроса.
func (s *Storage) ProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	const op = "storage/postgres/profiles/ProfileByID"

	q := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	row := s.db.QueryRow(ctx, q, userID)

	result, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// UpdateProfile выполняет частичный апдейт: обновляет только поля,
// указанные непустыми pointer-полями, и всегда сдвигает updated_at = now().
// Ошибки: storage.ErrNotFound при отсутствии записи,
// storage.ErrAlreadyExists при конфликте уникальности nickname.
func (s *Storage) UpdateProfile(ctx context.Context, userID uuid.UUID, update storage.ProfileUpdate) (*models.Profile, error) {
	const op = "storage/postgres/profiles/UpdateProfile"

	sets := []string{"updated_at = now()"}
	args := make([]any, 0, 16)
	count := 1

	add := func(column string, val any) {
		count++
		sets = append(sets, fmt.Sprintf("%s = $%d", column, count))
		args = append(args, val)
	}

	if update.Nickname != nil {
		add("nickname", *update.Nickname)
	}
	if update.FirstName != nil {
		add("first_name", *update.FirstName)
	}
	if update.LastName != nil {
		add("last_name", *update.LastName)
	}
	if update.City != nil {
		add("city", *update.City)
	}
	if update.University != nil {
		add("university", *update.University)
	}
	if update.Company != nil {
		add("company", *update.Company)
	}
	if update.Position != nil {
		add("position", *update.Position)
	}
	if update.AboutYou != nil {
		add("about_you", *update.AboutYou)
	}
	if update.Motivation != nil {
		add("motivation", *update.Motivation)
	}
	if update.LinkedinURL != nil {
		add("linkedin_url", *update.LinkedinURL)
	}
	if update.GithubURL != nil {
		add("github_url", *update.GithubURL)
	}
	if update.TelegramURL != nil {
		add("telegram_url", *update.TelegramURL)
	}
	if update.AvatarURL != nil {
		add("avatar_url", *update.AvatarURL)
	}
	if update.SecretCode != nil {
		add("secret_code", *update.SecretCode)
	}

	count++
	args = append(args, userID)

	q := fmt.Sprintf(`UPDATE profiles SET %s WHERE user_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), count, profileColumns)

	row := s.db.QueryRow(ctx, q, args...)

	result, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// ConfirmAvatarUpload фиксирует avatar_key и (опционально) avatar_url
// после успешной проверки объекта в S3/MinIO. Всегда обновляет updated_at.
// Ошибки: storage.ErrNotFound при отсутствии записи.
func (s *Storage) ConfirmAvatarUpload(ctx context.Context, userID uuid.UUID, key, publicURL string) (*models.Profile, error) {
	const op = "storage/postgres/profiles/ConfirmAvatarUpload"

	q := `
	UPDATE profiles
	SET avatar_key = $2, avatar_url = $3, updated_at = now()
	WHERE user_id = $1
	RETURNING
	` + profileColumns

	row := s.db.QueryRow(ctx, q, userID, key, publicURL)

	result, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// ListPublicProfiles возвращает страницу публичных проекций анкет
// с курсорной пагинацией. Сортировка фиксирована: created_at DESC, user_id DESC.
// page_token — непрозрачная строка (base64url).
// При некорректном токене возвращает storage.ErrInvalidCursor.
func (s *Storage) ListPublicProfiles(ctx context.Context, opts models.ListOptions) ([]models.PublicProfile, string, error) {
	const op = "storage/postgres/profiles/ListPublicProfiles"

	limit := opts.Limit
	if limit <= 0 {
		// Защита от нуля/отрицательного значения.
		limit = 1
	}

	const cols = `user_id, nickname, first_name, last_name, city, university, company, position, avatar_url, created_at`

	var rows pgx.Rows
	var err error

	// Читаем limit+1 строк: лишняя строка — признак того, что страница не последняя.
	if opts.PageToken == "" {
		rows, err = s.db.Query(ctx, `
		SELECT `+cols+`
		FROM profiles
		ORDER BY created_at DESC, user_id DESC
		LIMIT $1
		`, limit+1)
	} else {
		createdCur, idCur, decErr := decodePageToken(opts.PageToken)
		if decErr != nil {
			return nil, "", fmt.Errorf("%s: %w", op, storage.ErrInvalidCursor)
		}

		rows, err = s.db.Query(ctx, `
		SELECT `+cols+`
		FROM profiles
		WHERE (created_at, user_id) < ($1, $2)
		ORDER BY created_at DESC, user_id DESC
		LIMIT $3
		`, createdCur, idCur, limit+1)
	}

	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.PublicProfile
	var createds []time.Time

	for rows.Next() {
		var p models.PublicProfile
		var createdAt time.Time

		if scanErr := rows.Scan(
			&p.UserID,
			&p.Nickname,
			&p.FirstName,
			&p.LastName,
			&p.City,
			&p.University,
			&p.Company,
			&p.Position,
			&p.AvatarURL,
			&createdAt,
		); scanErr != nil {
			return nil, "", fmt.Errorf("%s: scan row: %w", op, scanErr)
		}

		createds = append(createds, createdAt.UTC())
		items = append(items, p)
	}

	if rows.Err() != nil {
		return nil, "", fmt.Errorf("%s: rows: %w", op, rows.Err())
	}

	// Курсор — по последнему элементу страницы, и только если за ним
	// что-то есть: на последней странице токен пустой.
	next := ""
	if int32(len(items)) > limit {
		items = items[:limit]
		last := len(items) - 1
		next = encodePageToken(createds[last], items[last].UserID)
	}

	return items, next, nil
}

// ListCommunityFaces возвращает «лица сообщества» в порядке ранга.
func (s *Storage) ListCommunityFaces(ctx context.Context) ([]models.CommunityFace, error) {
	const op = "storage/postgres/profiles/ListCommunityFaces"

	rows, err := s.db.Query(ctx, `
	SELECT f.user_id, p.nickname, trim(p.first_name || ' ' || p.last_name), f.headline, p.avatar_url, f.rank
	FROM community_faces f
	JOIN profiles p ON p.user_id = f.user_id
	ORDER BY f.rank ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var faces []models.CommunityFace
	for rows.Next() {
		var f models.CommunityFace
		if scanErr := rows.Scan(&f.UserID, &f.Nickname, &f.FullName, &f.Headline, &f.AvatarURL, &f.Rank); scanErr != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, scanErr)
		}

		faces = append(faces, f)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, rows.Err())
	}

	return faces, nil
}

// encodePageToken кодирует пару ключей страницы в непрозрачный токен для клиента.
func encodePageToken(ts time.Time, id uuid.UUID) string {
	raw := fmt.Sprintf("%d|%s", ts.UTC().UnixNano(), id.String())

	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodePageToken декодирует токен обратно в пару ключей.
func decodePageToken(token string) (time.Time, uuid.UUID, error) {
	res, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}

	parts := strings.SplitN(string(res), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, uuid.Nil, fmt.Errorf("bad parts")
	}

	t, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}

	id, err := uuid.Parse(parts[1])
	if err != nil {
		return time.Time{}, uuid.Nil, err
	}

	return time.Unix(0, t).UTC(), id, nil
}
