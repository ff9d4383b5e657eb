// postgres предоставляет реализацию контрактов storage на базе PostgreSQL.
//
// postgres.go       — пул соединений и применение миграций (goose);
// users.go          — пользователи auth-слоя;
// refresh_tokens.go — refresh-токены;
// profiles.go       — анкеты участников и публичные проекции;
// content.go        — ленты постов каналов и вакансий.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sneddy/dsmlkz-platform/internal/storage"
	"github.com/sneddy/dsmlkz-platform/migrations"
)

// Storage — единое PostgreSQL-хранилище платформы.
type Storage struct {
	db *pgxpool.Pool
}

// New создает и инициализирует пул соединений к PostgreSQL.
func New(ctx context.Context, dbURL string) (*Storage, error) {
	const op = "storage/postgres/New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// Close закрывает пул соединений.
// Должен вызываться при остановке приложения.
func (s *Storage) Close() {
	s.db.Close()
}

// RunMigrations применяет встроенные goose-миграции к БД.
// Использует отдельное database/sql-подключение через pgx/stdlib:
// goose не умеет работать с pgxpool напрямую.
func RunMigrations(ctx context.Context, dbURL string) error {
	const op = "storage/postgres/RunMigrations"

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Проверка выполнения контрактов верхнего уровня.
var (
	_ storage.AuthStorage     = (*Storage)(nil)
	_ storage.ProfilesStorage = (*Storage)(nil)
	_ storage.ContentStorage  = (*Storage)(nil)
)
