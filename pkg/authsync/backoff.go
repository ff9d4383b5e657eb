package authsync

import "time"

// RetryPolicy — ограниченная политика повторов с экспоненциальной задержкой.
// Используется profileFetcher при временных ошибках бэкенда.
type RetryPolicy struct {
	// MaxRetries — максимальное число повторов после первой попытки.
	MaxRetries int
	// RetryDelay — базовая задержка перед первым повтором.
	RetryDelay time.Duration
}

// DefaultRetryPolicy — политика по умолчанию: 3 повтора от одной секунды.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, RetryDelay: time.Second}
}

// Backoff возвращает задержку перед повтором номер attempt (с нуля):
// RetryDelay * 2^attempt. Отрицательный attempt трактуется как нулевой.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	return p.RetryDelay * time.Duration(1<<uint(attempt))
}

// Exhausted сообщает, исчерпан ли лимит повторов для attempt (с нуля).
func (p RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= p.MaxRetries
}
