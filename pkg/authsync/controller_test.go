package authsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// navRec записывает вызовы навигации.
type navRec struct {
	mu    sync.Mutex
	calls []navCall
}

type navCall struct {
	Path    string
	Replace bool
}

func (n *navRec) fn(path string, replace bool) {
	n.mu.Lock()
	n.calls = append(n.calls, navCall{Path: path, Replace: replace})
	n.mu.Unlock()
}

func (n *navRec) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.calls)
}

func (n *navRec) last() (navCall, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.calls) == 0 {
		return navCall{}, false
	}

	return n.calls[len(n.calls)-1], true
}

type wipeRec struct {
	mu    sync.Mutex
	count int
}

func (w *wipeRec) fn() {
	w.mu.Lock()
	w.count++
	w.mu.Unlock()
}

func (w *wipeRec) calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.count
}

func newTestController(t *testing.T, backend Backend, cache SnapshotCache) (*Controller, *navRec, *wipeRec) {
	t.Helper()

	nav := &navRec{}
	wipe := &wipeRec{}

	c, err := New(Options{
		Backend:           backend,
		Cache:             cache,
		Retry:             RetryPolicy{MaxRetries: 2, RetryDelay: time.Millisecond},
		QueueDrainDelay:   time.Millisecond,
		UpdateSettleDelay: 2 * time.Millisecond,
		SignOutTimeout:    50 * time.Millisecond,
		Navigate:          nav.fn,
		LocalWipe:         wipe.fn,
		Logger:            slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return c, nav, wipe
}

func TestController_New_RequiresBackend(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestController_AnonymousInit_NoProfileFetch(t *testing.T) {
	backend := newFakeBackend()
	c, _, _ := newTestController(t, backend, newMemCache())

	c.Start(context.Background())

	st := c.State()
	require.True(t, st.Initialized)
	require.False(t, st.Loading)
	require.Nil(t, st.User)
	require.Nil(t, st.Profile)
	require.Empty(t, backend.calls())
}

func TestController_InitError_StillInitialized(t *testing.T) {
	backend := newFakeBackend()
	backend.sessionErr = errors.New("backend down")

	c, _, _ := newTestController(t, backend, newMemCache())
	c.Start(context.Background())

	st := c.State()
	require.True(t, st.Initialized)
	require.Nil(t, st.User)
}

func TestController_SessionRestore_FetchViaInitialEvent(t *testing.T) {
	backend := newFakeBackend()
	backend.session = testSession("u1", "aidos@dsml.kz")
	backend.profiles["u1"] = &Profile{UserID: "u1", Nickname: "aidos"}

	c, _, _ := newTestController(t, backend, newMemCache())
	c.Start(context.Background())

	// Сессия восстановлена, но загрузка анкеты отложена до события подписки.
	require.NotNil(t, c.State().User)
	require.Empty(t, backend.calls())

	backend.emit(AuthEvent{Type: EventInitialSession, Session: backend.session})

	require.Eventually(t, func() bool {
		return c.State().Profile != nil
	}, time.Second, time.Millisecond)
	require.Equal(t, []string{"u1"}, backend.calls())
	require.Equal(t, "aidos", c.State().Profile.Nickname)
}

func TestController_DuplicateEvents_Ignored(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["u1"] = &Profile{UserID: "u1", Nickname: "aidos"}
	sess := testSession("u1", "aidos@dsml.kz")

	c, _, _ := newTestController(t, backend, newMemCache())
	c.Start(context.Background())

	var notifications int
	var mu sync.Mutex
	c.Subscribe(func(State) {
		mu.Lock()
		notifications++
		mu.Unlock()
	})

	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})

	require.Eventually(t, func() bool {
		return c.State().Profile != nil
	}, time.Second, time.Millisecond)

	mu.Lock()
	before := notifications
	mu.Unlock()

	// Идентичная проекция сессии (токен + пользователь + истечение) —
	// событие отбрасывается целиком: ни загрузки, ни уведомлений.
	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})
	backend.emit(AuthEvent{Type: EventInitialSession, Session: sess})

	require.Equal(t, []string{"u1"}, backend.calls())

	mu.Lock()
	require.Equal(t, before, notifications)
	mu.Unlock()
}

func TestController_TokenRefresh_NoRefetch(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["u1"] = &Profile{UserID: "u1"}
	sess := testSession("u1", "aidos@dsml.kz")

	c, _, _ := newTestController(t, backend, newMemCache())
	c.Start(context.Background())

	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})

	require.Eventually(t, func() bool {
		return c.State().Profile != nil
	}, time.Second, time.Millisecond)

	refreshed := *sess
	refreshed.AccessToken = "access-next"
	backend.emit(AuthEvent{Type: EventTokenRefreshed, Session: &refreshed})

	// Сессия обновилась, повторной загрузки анкеты нет.
	require.Equal(t, "access-next", c.State().Session.AccessToken)
	require.Equal(t, []string{"u1"}, backend.calls())
}

func TestController_SignIn_SingleFetchViaEvent(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["u1"] = &Profile{UserID: "u1", Nickname: "aidos"}
	sess := testSession("u1", "aidos@dsml.kz")
	backend.session = nil

	c, nav, _ := newTestController(t, backend, newMemCache())
	c.Start(context.Background())

	require.NoError(t, c.SignIn(context.Background(), "aidos@dsml.kz", "Str0ng!pass"))

	// SignIn сам не навигирует и не грузит анкету.
	require.Zero(t, nav.count())
	require.Empty(t, backend.calls())

	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})

	require.Eventually(t, func() bool {
		return c.State().Profile != nil
	}, time.Second, time.Millisecond)
	require.Equal(t, []string{"u1"}, backend.calls())
	require.Equal(t, "u1", c.State().User.ID)
}

func TestController_SignIn_InvalidCredentials(t *testing.T) {
	backend := newFakeBackend()
	backend.signInErr = ErrInvalidCredentials

	c, _, _ := newTestController(t, backend, newMemCache())
	c.Start(context.Background())

	err := c.SignIn(context.Background(), "aidos@dsml.kz", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.False(t, c.State().Loading)
}

func TestController_SignedOutEvent_ClearsProfile(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["u1"] = &Profile{UserID: "u1"}
	sess := testSession("u1", "aidos@dsml.kz")

	c, _, _ := newTestController(t, backend, newMemCache())
	c.Start(context.Background())

	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})
	require.Eventually(t, func() bool {
		return c.State().Profile != nil
	}, time.Second, time.Millisecond)

	backend.emit(AuthEvent{Type: EventSignedOut, Session: nil})

	st := c.State()
	require.Nil(t, st.User)
	require.Nil(t, st.Session)
	require.Nil(t, st.Profile)
}

func TestController_SignOut_ClearsAndRedirects(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["u1"] = &Profile{UserID: "u1"}
	sess := testSession("u1", "aidos@dsml.kz")
	cache := newMemCache()

	c, nav, wipe := newTestController(t, backend, cache)
	c.Start(context.Background())

	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})
	require.Eventually(t, func() bool {
		return c.State().Profile != nil
	}, time.Second, time.Millisecond)

	require.NoError(t, c.SignOut(context.Background()))

	st := c.State()
	require.Nil(t, st.User)
	require.Nil(t, st.Profile)
	require.Nil(t, st.Session)

	last, ok := nav.last()
	require.True(t, ok)
	require.Equal(t, "/", last.Path)
	require.True(t, last.Replace)

	require.Equal(t, 1, wipe.calls())

	_, cached := cache.Read("u1")
	require.False(t, cached)

	// Подписка снята до очистки: поздние события не оживляют состояние.
	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})
	require.Nil(t, c.State().User)
}

func TestController_SignOut_DuringRetryBackoff_ClearsLoadingProfile(t *testing.T) {
	backend := newFakeBackend()
	backend.profileFailures = 100
	backend.profileErr = errors.New("network down")
	sess := testSession("u1", "aidos@dsml.kz")

	nav := &navRec{}
	wipe := &wipeRec{}

	// Долгий backoff: повтор загрузки анкеты заведомо не сработает до SignOut.
	c, err := New(Options{
		Backend:           backend,
		Cache:             newMemCache(),
		Retry:             RetryPolicy{MaxRetries: 5, RetryDelay: time.Hour},
		QueueDrainDelay:   time.Millisecond,
		UpdateSettleDelay: 2 * time.Millisecond,
		SignOutTimeout:    50 * time.Millisecond,
		Navigate:          nav.fn,
		LocalWipe:         wipe.fn,
		Logger:            slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	c.Start(context.Background())

	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})
	require.Eventually(t, func() bool {
		return len(backend.calls()) == 1
	}, time.Second, time.Millisecond)
	require.True(t, c.State().LoadingProfile)

	require.NoError(t, c.SignOut(context.Background()))

	st := c.State()
	require.Nil(t, st.User)
	require.Nil(t, st.Profile)
	require.False(t, st.LoadingProfile)
}

func TestController_SignOut_BackendFailure_StillClearsAndRedirects(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["u1"] = &Profile{UserID: "u1"}
	backend.signOutErr = errors.New("network down")
	sess := testSession("u1", "aidos@dsml.kz")

	c, nav, wipe := newTestController(t, backend, newMemCache())
	c.Start(context.Background())

	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})
	require.Eventually(t, func() bool {
		return c.State().Profile != nil
	}, time.Second, time.Millisecond)

	err := c.SignOut(context.Background())
	require.Error(t, err)

	st := c.State()
	require.Nil(t, st.User)
	require.Nil(t, st.Profile)
	require.Equal(t, 1, wipe.calls())

	last, ok := nav.last()
	require.True(t, ok)
	require.Equal(t, "/", last.Path)
}

func TestController_SignOut_SafetyTimerRedirects(t *testing.T) {
	backend := newFakeBackend()
	backend.signOutBlock = make(chan struct{})
	sess := testSession("u1", "aidos@dsml.kz")
	backend.profiles["u1"] = &Profile{UserID: "u1"}

	c, nav, _ := newTestController(t, backend, newMemCache())
	c.Start(context.Background())

	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})
	require.Eventually(t, func() bool {
		return c.State().Profile != nil
	}, time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() {
		_ = c.SignOut(context.Background())
		close(done)
	}()

	// Бэкенд завис — страховочный таймер навигирует принудительно.
	require.Eventually(t, func() bool {
		return nav.count() > 0
	}, time.Second, time.Millisecond)

	close(backend.signOutBlock)
	<-done
}

func TestController_SignOut_ConcurrentGuard(t *testing.T) {
	backend := newFakeBackend()
	backend.signOutBlock = make(chan struct{})
	sess := testSession("u1", "aidos@dsml.kz")
	backend.profiles["u1"] = &Profile{UserID: "u1"}

	c, _, _ := newTestController(t, backend, newMemCache())
	c.Start(context.Background())

	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})
	require.Eventually(t, func() bool {
		return c.State().Profile != nil
	}, time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() {
		_ = c.SignOut(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		return c.isSigningOut()
	}, time.Second, time.Millisecond)

	require.ErrorIs(t, c.SignOut(context.Background()), ErrSignOutInProgress)

	close(backend.signOutBlock)
	<-done

	backend.mu.Lock()
	calls := backend.signOutCalls
	backend.mu.Unlock()
	require.Equal(t, 1, calls)
}

func TestController_UpdateProfile_RequiresAuth(t *testing.T) {
	backend := newFakeBackend()
	c, _, _ := newTestController(t, backend, newMemCache())
	c.Start(context.Background())

	about := "text"
	err := c.UpdateProfile(context.Background(), ProfileUpdate{AboutYou: &about})
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestController_UpdateProfile_StripsEmailStampsUpdatedAtAndRefetches(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["u1"] = &Profile{UserID: "u1", Nickname: "aidos", AboutYou: "old"}
	sess := testSession("u1", "aidos@dsml.kz")
	cache := newMemCache()

	c, _, _ := newTestController(t, backend, cache)
	c.Start(context.Background())

	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})
	require.Eventually(t, func() bool {
		return c.State().Profile != nil
	}, time.Second, time.Millisecond)

	// Бэкенд применит апдейт: форсированная сверка вернёт новый текст.
	backend.mu.Lock()
	backend.profiles["u1"].AboutYou = "new text"
	backend.mu.Unlock()

	about := "new text"
	email := "sneaky@dsml.kz"
	require.NoError(t, c.UpdateProfile(context.Background(), ProfileUpdate{
		AboutYou: &about,
		Email:    &email,
	}))

	upd, ok := backend.lastUpdate()
	require.True(t, ok)
	require.Equal(t, "u1", upd.UserID)
	require.Nil(t, upd.Update.Email, "email не должен уходить на сервер")
	require.NotNil(t, upd.Update.AboutYou)
	require.Equal(t, "new text", *upd.Update.AboutYou)
	require.NotNil(t, upd.Update.UpdatedAt)

	// Оптимистичное слияние в кэш — до сверки с бэкендом.
	snap, cached := cache.Read("u1")
	require.True(t, cached)
	require.Equal(t, "new text", snap.AboutYou)

	// Отложенная сверка перечитывает анкету с бэкенда.
	require.Eventually(t, func() bool {
		p := c.State().Profile
		return p != nil && p.AboutYou == "new text" && len(backend.calls()) >= 2
	}, time.Second, time.Millisecond)
}

func TestController_RefreshProfile_ForcesRefetch(t *testing.T) {
	backend := newFakeBackend()
	backend.profiles["u1"] = &Profile{UserID: "u1", Nickname: "aidos"}
	sess := testSession("u1", "aidos@dsml.kz")

	c, _, _ := newTestController(t, backend, newMemCache())
	c.Start(context.Background())

	backend.emit(AuthEvent{Type: EventSignedIn, Session: sess})
	require.Eventually(t, func() bool {
		return c.State().Profile != nil
	}, time.Second, time.Millisecond)
	require.Len(t, backend.calls(), 1)

	c.RefreshProfile(context.Background())

	require.Eventually(t, func() bool {
		return len(backend.calls()) == 2
	}, time.Second, time.Millisecond)
}

func TestController_SubscribeAndUnsubscribe(t *testing.T) {
	backend := newFakeBackend()
	c, _, _ := newTestController(t, backend, newMemCache())

	var got []State
	var mu sync.Mutex
	unsub := c.Subscribe(func(st State) {
		mu.Lock()
		got = append(got, st)
		mu.Unlock()
	})

	c.Start(context.Background())

	mu.Lock()
	require.NotEmpty(t, got)
	require.True(t, got[len(got)-1].Initialized)
	before := len(got)
	mu.Unlock()

	unsub()
	backend.emit(AuthEvent{Type: EventSignedIn, Session: testSession("u1", "a@b.c")})

	mu.Lock()
	require.Equal(t, before, len(got))
	mu.Unlock()
}
