package authsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// fetcherHooks — точки сопряжения profileFetcher с владельцем (Controller).
// Вынесены в функции, чтобы fetcher тестировался изолированно на фейках.
type fetcherHooks struct {
	// SigningOut — выполняется ли сейчас выход; загрузки при выходе подавляются.
	SigningOut func() bool
	// HeldProfileID — id пользователя текущей опубликованной анкеты ("" — нет).
	HeldProfileID func() string
	// LastKnownEmail — последний известный email для fallback-анкеты.
	LastKnownEmail func() string
	// FetchStarted/FetchDone — границы окна loadingProfile.
	FetchStarted func()
	FetchDone    func()
	// Publish — публикация разрешённой анкеты и/или ошибки загрузки.
	Publish func(profile *Profile, err error)
}

// profileFetcher загружает анкету пользователя с бэкенда.
//
// Гарантии:
//   - не более одной загрузки в полёте одновременно; запросы на другой id
//     во время загрузки встают в FIFO-очередь (не более одного раза на id);
//   - повторный запрос уже загруженного id — no-op;
//   - временные ошибки бэкенда повторяются с экспоненциальной задержкой,
//     ограниченной RetryPolicy.MaxRetries;
//   - результат всегда разрешается в порядке: бэкенд > кэш > fallback —
//     вызывающий никогда не остаётся без анкеты.
type profileFetcher struct {
	backend Backend
	cache   SnapshotCache
	retry   RetryPolicy
	// drainDelay — пауза перед запуском следующего id из очереди.
	drainDelay time.Duration
	hooks      fetcherHooks
	log        *slog.Logger

	mu            sync.Mutex
	inFlight      bool
	inFlightID    string
	lastFetchedID string
	// retryPending — между неудачной попыткой и срабатыванием таймера повтора
	// окно loadingProfile открыто, FetchDone ещё не вызывался.
	retryPending bool
	queue        fetchQueue
	timers       map[*time.Timer]struct{}
	closed       bool
}

func newProfileFetcher(
	backend Backend,
	cache SnapshotCache,
	retry RetryPolicy,
	drainDelay time.Duration,
	hooks fetcherHooks,
	log *slog.Logger,
) *profileFetcher {
	return &profileFetcher{
		backend:    backend,
		cache:      cache,
		retry:      retry,
		drainDelay: drainDelay,
		hooks:      hooks,
		log:        log,
		timers:     make(map[*time.Timer]struct{}),
	}
}

// Fetch запускает загрузку анкеты userID (первая попытка).
// email используется только для построения fallback-анкеты.
func (f *profileFetcher) Fetch(ctx context.Context, userID, email string) {
	f.fetch(ctx, userID, email, 0)
}

// ForgetLastFetched сбрасывает маркер «уже загружено», чтобы следующий
// Fetch того же id прошёл к бэкенду (форсированное обновление).
func (f *profileFetcher) ForgetLastFetched() {
	f.mu.Lock()
	f.lastFetchedID = ""
	f.mu.Unlock()
}

// Reset очищает очередь, маркеры и отложенные повторы.
// Вызывается при выходе пользователя.
func (f *profileFetcher) Reset() {
	f.mu.Lock()
	f.lastFetchedID = ""
	f.queue.Reset()
	f.stopTimersLocked()
	hadRetry := f.retryPending
	f.retryPending = false
	f.mu.Unlock()

	// Отменённый повтор уже не вызовет FetchDone сам — закрываем окно здесь.
	if hadRetry {
		f.hooks.FetchDone()
	}
}

// Close останавливает fetcher навсегда: новые загрузки игнорируются.
func (f *profileFetcher) Close() {
	f.mu.Lock()
	f.closed = true
	f.queue.Reset()
	f.stopTimersLocked()
	hadRetry := f.retryPending
	f.retryPending = false
	f.mu.Unlock()

	if hadRetry {
		f.hooks.FetchDone()
	}
}

func (f *profileFetcher) stopTimersLocked() {
	for t := range f.timers {
		t.Stop()
	}
	f.timers = make(map[*time.Timer]struct{})
}

// schedule откладывает fn на delay с учётом закрытия fetcher-а.
func (f *profileFetcher) schedule(delay time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		f.mu.Lock()
		delete(f.timers, t)
		closed := f.closed
		f.mu.Unlock()

		if !closed {
			fn()
		}
	})
	f.timers[t] = struct{}{}
}

func (f *profileFetcher) fetch(ctx context.Context, userID, email string, attempt int) {
	if userID == "" || f.hooks.SigningOut() {
		return
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}

	if f.inFlight {
		// Другой id встаёт в очередь; повтор текущего — уже в работе.
		if f.inFlightID != userID {
			f.queue.Push(userID)
		}
		f.mu.Unlock()

		return
	}

	if attempt == 0 && f.lastFetchedID == userID && f.hooks.HeldProfileID() == userID {
		f.mu.Unlock()
		return
	}

	f.inFlight = true
	f.inFlightID = userID
	f.lastFetchedID = userID
	f.mu.Unlock()

	f.hooks.FetchStarted()

	cached, hasCached := f.cache.Read(userID)

	profile, err := f.backend.ProfileByID(ctx, userID)
	if err == nil && profile != nil {
		// Аватар читаем best-effort: его отсутствие не срывает загрузку.
		if url, aerr := f.backend.AvatarURLByUserID(ctx, userID); aerr == nil && url != "" {
			profile.AvatarURL = url
		}

		f.cache.Write(userID, profile)
	}

	if err != nil && !errors.Is(err, ErrProfileNotFound) && !f.retry.Exhausted(attempt) {
		delay := f.retry.Backoff(attempt)
		f.log.Warn("profile_fetch_retry_scheduled",
			slog.String("user_id", userID),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("err", err.Error()),
		)

		f.mu.Lock()
		f.inFlight = false
		f.inFlightID = ""
		f.retryPending = true
		f.mu.Unlock()

		f.schedule(delay, func() {
			f.mu.Lock()
			f.retryPending = false
			f.mu.Unlock()

			f.fetch(ctx, userID, email, attempt+1)
		})

		return
	}

	// Порядок разрешения: бэкенд > локальный кэш > fallback-анкета.
	var resolved *Profile
	switch {
	case err == nil && profile != nil:
		resolved = profile
	case hasCached:
		resolved = cached
	default:
		fbEmail := email
		if fbEmail == "" {
			fbEmail = f.hooks.LastKnownEmail()
		}

		resolved = FallbackProfile(userID, fbEmail)
	}

	var pubErr error
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		// Повторы исчерпаны: ошибка уходит наверх вместе с fallback-анкетой.
		f.log.Warn("profile_fetch_exhausted",
			slog.String("user_id", userID),
			slog.String("err", err.Error()),
		)
		pubErr = err
	}

	f.hooks.Publish(resolved, pubErr)

	f.mu.Lock()
	f.inFlight = false
	f.inFlightID = ""
	next, ok := f.queue.Pop()
	f.mu.Unlock()

	f.hooks.FetchDone()

	if ok {
		f.schedule(f.drainDelay, func() {
			f.fetch(ctx, next, "", 0)
		})
	}
}
