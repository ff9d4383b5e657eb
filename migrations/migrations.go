// migrations содержит встроенные goose-миграции схемы PostgreSQL.
// Применяются автоматически при старте сервиса (см. storage/postgres.RunMigrations).
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
