package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sneddy/dsmlkz-platform/pkg/authsync"
)

// recordedReq — снимок запроса, дошедшего до тестового сервера.
type recordedReq struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

// apiServer — httptest-сервер со скриптуемыми ответами по пути запроса.
type apiServer struct {
	t  *testing.T
	ts *httptest.Server

	mu       sync.Mutex
	requests []recordedReq
	// responses: путь -> (статус, тело). Неописанный путь — 404 not_found.
	responses map[string]scriptedResp
}

type scriptedResp struct {
	status int
	body   any
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()

	s := &apiServer{t: t, responses: make(map[string]scriptedResp)}
	s.ts = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.ts.Close)

	return s
}

func (s *apiServer) respond(path string, status int, body any) {
	s.mu.Lock()
	s.responses[path] = scriptedResp{status: status, body: body}
	s.mu.Unlock()
}

func (s *apiServer) handle(w http.ResponseWriter, r *http.Request) {
	rec := recordedReq{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	resp, ok := s.responses[r.URL.Path]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"not found"}}`))

		return
	}

	w.WriteHeader(resp.status)
	if resp.body != nil {
		_ = json.NewEncoder(w).Encode(resp.body)
	}
}

func (s *apiServer) recorded() []recordedReq {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]recordedReq, len(s.requests))
	copy(out, s.requests)

	return out
}

func newTestClient(t *testing.T, s *apiServer, store TokenStore) *Client {
	t.Helper()

	c, err := New(Options{
		BaseURL: s.ts.URL,
		Store:   store,
		Logger:  slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return c
}

func authOK(userID string, ttl time.Duration) map[string]any {
	return map[string]any{
		"user_id":           userID,
		"access_token":      "access-" + userID,
		"refresh_token":     "refresh-" + userID,
		"access_expires_at": time.Now().Add(ttl).Unix(),
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestSignInWithPassword_SetsSessionAndEmits(t *testing.T) {
	s := newAPIServer(t)
	s.respond("/auth/login", http.StatusOK, authOK("u1", time.Hour))

	c := newTestClient(t, s, nil)

	var events []authsync.AuthEvent
	var mu sync.Mutex
	c.OnAuthStateChange(func(ev authsync.AuthEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	sess, err := c.SignInWithPassword(context.Background(), "aidos@dsml.kz", "Str0ng!pass")
	require.NoError(t, err)
	require.Equal(t, "u1", sess.User.ID)
	require.Equal(t, "aidos@dsml.kz", sess.User.Email)
	require.Equal(t, "access-u1", sess.AccessToken)

	got, err := c.Session(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "refresh-u1", got.RefreshToken)

	mu.Lock()
	require.Len(t, events, 1)
	require.Equal(t, authsync.EventSignedIn, events[0].Type)
	require.NotNil(t, events[0].Session)
	mu.Unlock()

	reqs := s.recorded()
	require.Len(t, reqs, 1)
	require.Equal(t, http.MethodPost, reqs[0].Method)
	require.Equal(t, "/auth/login", reqs[0].Path)
	require.Equal(t, "aidos@dsml.kz", reqs[0].Body["email"])
}

func TestSignInWithPassword_InvalidCredentials(t *testing.T) {
	s := newAPIServer(t)
	s.respond("/auth/login", http.StatusUnauthorized, map[string]any{
		"error": map[string]string{"code": "invalid_credentials", "message": "invalid email or password"},
	})

	c := newTestClient(t, s, nil)

	_, err := c.SignInWithPassword(context.Background(), "aidos@dsml.kz", "wrong")
	require.ErrorIs(t, err, authsync.ErrInvalidCredentials)

	sess, err := c.Session(context.Background())
	require.NoError(t, err)
	require.Nil(t, sess)
}

func TestSignUp_RegistersAndEmits(t *testing.T) {
	s := newAPIServer(t)
	s.respond("/auth/register", http.StatusCreated, authOK("u2", time.Hour))

	c := newTestClient(t, s, nil)

	sess, err := c.SignUp(context.Background(), "new@dsml.kz", "Str0ng!pass")
	require.NoError(t, err)
	require.Equal(t, "u2", sess.User.ID)

	reqs := s.recorded()
	require.Len(t, reqs, 1)
	require.Equal(t, "/auth/register", reqs[0].Path)
}

func TestSignOut_RevokesAndClearsEvenOnServerError(t *testing.T) {
	s := newAPIServer(t)
	s.respond("/auth/login", http.StatusOK, authOK("u1", time.Hour))
	s.respond("/auth/revoke", http.StatusInternalServerError, map[string]any{
		"error": map[string]string{"code": "internal", "message": "boom"},
	})

	c := newTestClient(t, s, nil)
	_, err := c.SignInWithPassword(context.Background(), "aidos@dsml.kz", "Str0ng!pass")
	require.NoError(t, err)

	var events []authsync.AuthEvent
	var mu sync.Mutex
	c.OnAuthStateChange(func(ev authsync.AuthEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	err = c.SignOut(context.Background())
	require.Error(t, err)

	// Сессия зачищена локально несмотря на ошибку сервера.
	sess, serr := c.Session(context.Background())
	require.NoError(t, serr)
	require.Nil(t, sess)

	mu.Lock()
	// INITIAL_SESSION при подписке + SIGNED_OUT при выходе.
	require.Len(t, events, 2)
	require.Equal(t, authsync.EventInitialSession, events[0].Type)
	require.Equal(t, authsync.EventSignedOut, events[1].Type)
	require.Nil(t, events[1].Session)
	mu.Unlock()

	reqs := s.recorded()
	last := reqs[len(reqs)-1]
	require.Equal(t, "/auth/revoke", last.Path)
	require.Equal(t, "refresh-u1", last.Body["refresh_token"])
	require.Equal(t, "Bearer access-u1", last.Auth)
}

func TestSignOut_WithoutSessionSkipsRevoke(t *testing.T) {
	s := newAPIServer(t)
	c := newTestClient(t, s, nil)

	require.NoError(t, c.SignOut(context.Background()))
	require.Empty(t, s.recorded())
}

func TestSession_ExpiredTokenRefreshed(t *testing.T) {
	s := newAPIServer(t)
	s.respond("/auth/login", http.StatusOK, map[string]any{
		"user_id":           "u1",
		"access_token":      "access-old",
		"refresh_token":     "refresh-old",
		"access_expires_at": time.Now().Add(-time.Minute).Unix(),
	})
	s.respond("/auth/refresh", http.StatusOK, map[string]any{
		"user_id":           "u1",
		"access_token":      "access-new",
		"refresh_token":     "refresh-new",
		"access_expires_at": time.Now().Add(time.Hour).Unix(),
	})

	c := newTestClient(t, s, nil)
	_, err := c.SignInWithPassword(context.Background(), "aidos@dsml.kz", "Str0ng!pass")
	require.NoError(t, err)

	var events []authsync.AuthEvent
	var mu sync.Mutex
	c.OnAuthStateChange(func(ev authsync.AuthEvent) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	sess, err := c.Session(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "access-new", sess.AccessToken)
	require.Equal(t, "refresh-new", sess.RefreshToken)
	// Пользователь переживает ротацию пары.
	require.Equal(t, "u1", sess.User.ID)
	require.Equal(t, "aidos@dsml.kz", sess.User.Email)

	mu.Lock()
	var refreshed int
	for _, ev := range events {
		if ev.Type == authsync.EventTokenRefreshed {
			refreshed++
		}
	}
	require.Equal(t, 1, refreshed)
	mu.Unlock()
}

func TestProfileByID_OKAndNotFound(t *testing.T) {
	s := newAPIServer(t)
	s.respond("/auth/login", http.StatusOK, authOK("u1", time.Hour))

	updated := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.respond("/profiles/u1", http.StatusOK, map[string]any{
		"user_id":    "u1",
		"nickname":   "aidos",
		"city":       "Almaty",
		"avatar_url": "https://cdn.dsml.kz/a/u1.png",
		"updated_at": updated.Unix(),
	})

	c := newTestClient(t, s, nil)
	_, err := c.SignInWithPassword(context.Background(), "aidos@dsml.kz", "Str0ng!pass")
	require.NoError(t, err)

	p, err := c.ProfileByID(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", p.UserID)
	require.Equal(t, "aidos", p.Nickname)
	require.Equal(t, "Almaty", p.City)
	require.Equal(t, updated, p.UpdatedAt)

	reqs := s.recorded()
	last := reqs[len(reqs)-1]
	require.Equal(t, http.MethodGet, last.Method)
	require.Equal(t, "Bearer access-u1", last.Auth)

	_, err = c.ProfileByID(context.Background(), "missing")
	require.ErrorIs(t, err, authsync.ErrProfileNotFound)
}

func TestAvatarURLByUserID_ReadsProfile(t *testing.T) {
	s := newAPIServer(t)
	s.respond("/profiles/u1", http.StatusOK, map[string]any{
		"user_id":    "u1",
		"avatar_url": "https://cdn.dsml.kz/a/u1.png",
	})

	c := newTestClient(t, s, nil)

	url, err := c.AvatarURLByUserID(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.dsml.kz/a/u1.png", url)
}

func TestUpdateProfile_WireShape(t *testing.T) {
	s := newAPIServer(t)
	s.respond("/auth/login", http.StatusOK, authOK("u1", time.Hour))
	s.respond("/profile/update", http.StatusOK, map[string]any{"status": "OK"})

	c := newTestClient(t, s, nil)
	_, err := c.SignInWithPassword(context.Background(), "aidos@dsml.kz", "Str0ng!pass")
	require.NoError(t, err)

	about := "ML engineer"
	city := "Astana"
	now := time.Now()
	email := "sneaky@dsml.kz"

	err = c.UpdateProfile(context.Background(), "u1", authsync.ProfileUpdate{
		AboutYou:  &about,
		City:      &city,
		Email:     &email,
		UpdatedAt: &now,
	})
	require.NoError(t, err)

	reqs := s.recorded()
	last := reqs[len(reqs)-1]
	require.Equal(t, http.MethodPost, last.Method)
	require.Equal(t, "/profile/update", last.Path)
	require.Equal(t, "Bearer access-u1", last.Auth)

	require.Equal(t, "u1", last.Body["id"])
	require.Equal(t, "ML engineer", last.Body["about_you"])
	require.Equal(t, "Astana", last.Body["city"])
	require.Equal(t, float64(now.UTC().Unix()), last.Body["updated_at"])

	// Email на провод не уходит никогда; явно не выставленные поля отсутствуют.
	require.NotContains(t, last.Body, "email")
	require.NotContains(t, last.Body, "avatar_url")
	require.NotContains(t, last.Body, "secret_code")
	require.NotContains(t, last.Body, "nickname")
}

func TestUpdateProfile_ExplicitAvatarAndSecretCode(t *testing.T) {
	s := newAPIServer(t)
	s.respond("/auth/login", http.StatusOK, authOK("u1", time.Hour))
	s.respond("/profile/update", http.StatusOK, map[string]any{"status": "OK"})

	c := newTestClient(t, s, nil)
	_, err := c.SignInWithPassword(context.Background(), "aidos@dsml.kz", "Str0ng!pass")
	require.NoError(t, err)

	avatar := "https://cdn.dsml.kz/avatars/u1.png"
	code := int32(271828)
	now := time.Now()

	err = c.UpdateProfile(context.Background(), "u1", authsync.ProfileUpdate{
		AvatarURL:  &avatar,
		SecretCode: &code,
		UpdatedAt:  &now,
	})
	require.NoError(t, err)

	reqs := s.recorded()
	last := reqs[len(reqs)-1]
	require.Equal(t, "/profile/update", last.Path)

	// Явно выставленные указатели проходят на сервер как есть.
	require.Equal(t, avatar, last.Body["avatar_url"])
	require.Equal(t, float64(code), last.Body["secret_code"])
	require.Equal(t, float64(now.UTC().Unix()), last.Body["updated_at"])
}

func TestDecodeError_FallbackMessage(t *testing.T) {
	s := newAPIServer(t)
	s.respond("/auth/login", http.StatusBadRequest, map[string]any{
		"error": map[string]string{"code": "bad_request", "message": "field email is required"},
	})

	c := newTestClient(t, s, nil)

	_, err := c.SignInWithPassword(context.Background(), "", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "http 400")
	require.Contains(t, err.Error(), "field email is required")
}

func TestNew_RestoresSessionFromStore(t *testing.T) {
	s := newAPIServer(t)

	store := NewFileTokenStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save(&authsync.Session{
		AccessToken:  "access-u1",
		RefreshToken: "refresh-u1",
		ExpiresAt:    time.Now().Add(time.Hour).UTC(),
		User:         authsync.User{ID: "u1", Email: "aidos@dsml.kz"},
	}))

	c := newTestClient(t, s, store)

	sess, err := c.Session(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, "u1", sess.User.ID)

	// Восстановленная сессия доставляется новому подписчику синхронно.
	var got []authsync.AuthEvent
	c.OnAuthStateChange(func(ev authsync.AuthEvent) { got = append(got, ev) })
	require.Len(t, got, 1)
	require.Equal(t, authsync.EventInitialSession, got[0].Type)
}

func TestSignOut_ClearsStore(t *testing.T) {
	s := newAPIServer(t)
	s.respond("/auth/login", http.StatusOK, authOK("u1", time.Hour))
	s.respond("/auth/revoke", http.StatusOK, map[string]any{"status": "OK"})

	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileTokenStore(path)

	c := newTestClient(t, s, store)
	_, err := c.SignInWithPassword(context.Background(), "aidos@dsml.kz", "Str0ng!pass")
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr, "сессия должна быть сохранена после входа")

	require.NoError(t, c.SignOut(context.Background()))

	_, statErr = os.Stat(path)
	require.True(t, os.IsNotExist(statErr))
}

func TestFileTokenStore_LoadAbsentAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	store := NewFileTokenStore(filepath.Join(dir, "session.json"))

	sess, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, sess)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{broken"), 0o600))

	sess, err = store.Load()
	require.NoError(t, err)
	require.Nil(t, sess)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "повторный Clear идемпотентен")
}
