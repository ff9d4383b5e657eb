// cache содержит Redis-кэш refresh-токенов.
// Кэш опционален: при пустом REDIS_URL сервис работает напрямую с БД.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// defaultPrefix — префикс ключей refresh-токенов платформы.
const defaultPrefix = "dsmlkz:rt:"

// RefreshEntry — данные, хранимые в Redis по хэшу refresh-токена.
type RefreshEntry struct {
	UserID    uuid.UUID `json:"uid"`
	Revoked   bool      `json:"rev"`
	ExpiresAt time.Time `json:"exp"`
}

// RefreshCache — минимальный контракт кэша refresh-токенов.
type RefreshCache interface {
	// Get возвращает запись и признак её наличия в кэше.
	Get(ctx context.Context, hash string) (*RefreshEntry, bool, error)
	// Set сохраняет запись с TTL (обычно ExpiresAt-now).
	Set(ctx context.Context, hash string, e *RefreshEntry, ttl time.Duration) error
	// MarkRevoked помечает запись revoked=true, сохраняя остаточный TTL.
	MarkRevoked(ctx context.Context, hash string) error
	// Close закрывает клиент Redis.
	Close() error
}

// redisCache хранит запись одним JSON-значением под ключом prefix+hash.
type redisCache struct {
	rdb    *redis.Client
	prefix string
}

var _ RefreshCache = (*redisCache)(nil)

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Пустой prefix заменяется дефолтным. Недоступный Redis — ошибка на старте.
func NewRedisCache(redisURL, prefix string) (RefreshCache, error) {
	if prefix == "" {
		prefix = defaultPrefix
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(hash string) string { return c.prefix + hash }

func (c *redisCache) Get(ctx context.Context, hash string) (*RefreshEntry, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(hash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	var e RefreshEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Нечитаемая запись равносильна промаху: источник истины — БД.
		return nil, false, nil
	}

	return &e, true, nil
}

func (c *redisCache) Set(ctx context.Context, hash string, e *RefreshEntry, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, c.key(hash), raw, ttl).Err()
}

func (c *redisCache) MarkRevoked(ctx context.Context, hash string) error {
	e, ok, err := c.Get(ctx, hash)
	if err != nil || !ok {
		// Промах не ошибка: следующая проверка токена пойдёт в БД.
		return err
	}

	e.Revoked = true

	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, c.key(hash), raw, redis.KeepTTL).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
