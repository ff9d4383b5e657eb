// httpapi — реализация authsync.Backend поверх REST API платформы.
//
// Клиент хранит текущую пару токенов (опционально персистентно через
// TokenStore), по таймеру обновляет её до истечения access-токена
// и доставляет подписчикам события SIGNED_IN / SIGNED_OUT /
// TOKEN_REFRESHED / INITIAL_SESSION.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sneddy/dsmlkz-platform/pkg/authsync"
)

// Options — параметры клиента.
type Options struct {
	// BaseURL — корень API, например "https://api.dsml.kz/api".
	BaseURL string
	// HTTPClient — транспорт; nil — http.DefaultClient с таймаутом 15s.
	HTTPClient *http.Client
	// Store — персистентное хранилище сессии; nil — только память.
	Store TokenStore
	// RefreshLead — за сколько до истечения access-токена обновлять пару.
	RefreshLead time.Duration
	Logger      *slog.Logger
}

const defaultRefreshLead = 30 * time.Second

// Client — HTTP-реализация authsync.Backend.
type Client struct {
	baseURL string
	hc      *http.Client
	store   TokenStore
	lead    time.Duration
	log     *slog.Logger

	mu           sync.Mutex
	session      *authsync.Session
	handlers     map[int]func(authsync.AuthEvent)
	nextID       int
	refreshTimer *time.Timer
	closed       bool
}

var _ authsync.Backend = (*Client)(nil)

// New собирает клиент; при наличии Store восстанавливает сохранённую сессию.
func New(opts Options) (*Client, error) {
	const op = "authsync/httpapi/New"

	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%s: base url is required", op)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.RefreshLead <= 0 {
		opts.RefreshLead = defaultRefreshLead
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		hc:       opts.HTTPClient,
		store:    opts.Store,
		lead:     opts.RefreshLead,
		log:      opts.Logger,
		handlers: make(map[int]func(authsync.AuthEvent)),
	}

	if c.store != nil {
		if sess, err := c.store.Load(); err == nil && sess != nil {
			c.session = sess
			c.scheduleRefreshLocked()
		}
	}

	return c, nil
}

// Close останавливает фоновое обновление токенов.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	c.mu.Unlock()
}

// Session возвращает текущую сессию или (nil, nil) при её отсутствии.
// Просроченный access-токен обновляется на месте.
func (c *Client) Session(ctx context.Context) (*authsync.Session, error) {
	const op = "authsync/httpapi/Session"

	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess == nil {
		return nil, nil
	}

	if time.Now().After(sess.ExpiresAt) {
		if err := c.refreshNow(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		c.mu.Lock()
		sess = c.session
		c.mu.Unlock()
	}

	cp := *sess

	return &cp, nil
}

// OnAuthStateChange регистрирует обработчик событий аутентификации.
// Если сессия уже есть, обработчику синхронно доставляется INITIAL_SESSION.
func (c *Client) OnAuthStateChange(handler func(authsync.AuthEvent)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.handlers[id] = handler
	sess := c.session
	c.mu.Unlock()

	if sess != nil {
		cp := *sess
		handler(authsync.AuthEvent{Type: authsync.EventInitialSession, Session: &cp})
	}

	return func() {
		c.mu.Lock()
		delete(c.handlers, id)
		c.mu.Unlock()
	}
}

// SignInWithPassword выполняет вход по email/паролю.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*authsync.Session, error) {
	const op = "authsync/httpapi/SignInWithPassword"

	return c.authenticate(ctx, op, "/auth/login", email, password)
}

// SignUp регистрирует пользователя; сервис сразу выдаёт пару токенов.
func (c *Client) SignUp(ctx context.Context, email, password string) (*authsync.Session, error) {
	const op = "authsync/httpapi/SignUp"

	return c.authenticate(ctx, op, "/auth/register", email, password)
}

func (c *Client) authenticate(ctx context.Context, op, path, email, password string) (*authsync.Session, error) {
	body := map[string]string{"email": email, "password": password}

	var resp authWire
	if err := c.do(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess := &authsync.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Unix(resp.AccessExpiresAt, 0).UTC(),
		User:         authsync.User{ID: resp.UserID, Email: email},
	}

	c.setSession(sess)
	c.emit(authsync.AuthEvent{Type: authsync.EventSignedIn, Session: sess})

	cp := *sess

	return &cp, nil
}

// SignOut отзывает refresh-токен на сервере и очищает локальную сессию.
// Локальная очистка и событие SIGNED_OUT происходят даже при ошибке
// сервера: клиент в любом случае оказывается разлогиненным.
func (c *Client) SignOut(ctx context.Context) error {
	const op = "authsync/httpapi/SignOut"

	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	var err error
	if sess != nil && sess.RefreshToken != "" {
		body := map[string]string{"refresh_token": sess.RefreshToken}
		err = c.do(ctx, http.MethodPost, "/auth/revoke", sess.AccessToken, body, nil)
	}

	c.setSession(nil)
	c.emit(authsync.AuthEvent{Type: authsync.EventSignedOut, Session: nil})

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ProfileByID читает анкету пользователя.
func (c *Client) ProfileByID(ctx context.Context, userID string) (*authsync.Profile, error) {
	const op = "authsync/httpapi/ProfileByID"

	c.mu.Lock()
	token := ""
	if c.session != nil {
		token = c.session.AccessToken
	}
	c.mu.Unlock()

	var wire profileWire
	if err := c.do(ctx, http.MethodGet, "/profiles/"+userID, token, nil, &wire); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return wire.toProfile(), nil
}

// AvatarURLByUserID возвращает текущий URL аватара пользователя.
// Реализовано чтением анкеты: отдельного avatar-эндпойнта у сервиса нет.
func (c *Client) AvatarURLByUserID(ctx context.Context, userID string) (string, error) {
	p, err := c.ProfileByID(ctx, userID)
	if err != nil {
		return "", err
	}

	return p.AvatarURL, nil
}

// UpdateProfile отправляет частичный апдейт через POST /profile/update.
// Email в тело не попадает никогда; avatar_url и secret_code уходят только
// при явно выставленных указателях. updated_at уходит меткой клиента,
// серверная БД остаётся авторитетом по итоговому значению.
func (c *Client) UpdateProfile(ctx context.Context, userID string, update authsync.ProfileUpdate) error {
	const op = "authsync/httpapi/UpdateProfile"

	c.mu.Lock()
	token := ""
	if c.session != nil {
		token = c.session.AccessToken
	}
	c.mu.Unlock()

	body := updateWire{
		ID:          userID,
		Nickname:    update.Nickname,
		FirstName:   update.FirstName,
		LastName:    update.LastName,
		City:        update.City,
		University:  update.University,
		Company:     update.Company,
		Position:    update.Position,
		AboutYou:    update.AboutYou,
		Motivation:  update.Motivation,
		LinkedinURL: update.LinkedinURL,
		GithubURL:   update.GithubURL,
		TelegramURL: update.TelegramURL,
		AvatarURL:   update.AvatarURL,
		SecretCode:  update.SecretCode,
	}

	if update.UpdatedAt != nil {
		ts := update.UpdatedAt.UTC().Unix()
		body.UpdatedAt = &ts
	}

	if err := c.do(ctx, http.MethodPost, "/profile/update", token, body, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// refreshNow синхронно обновляет пару токенов по refresh-токену.
func (c *Client) refreshNow(ctx context.Context) error {
	const op = "authsync/httpapi/refreshNow"

	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()

	if sess == nil || sess.RefreshToken == "" {
		return fmt.Errorf("%s: no session to refresh", op)
	}

	body := map[string]string{"refresh_token": sess.RefreshToken}

	var resp authWire
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", "", body, &resp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	next := &authsync.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Unix(resp.AccessExpiresAt, 0).UTC(),
		User:         sess.User,
	}

	c.setSession(next)

	cp := *next
	c.emit(authsync.AuthEvent{Type: authsync.EventTokenRefreshed, Session: &cp})

	return nil
}

// setSession фиксирует новую сессию, персистит её и перепланирует обновление.
func (c *Client) setSession(sess *authsync.Session) {
	c.mu.Lock()
	c.session = sess
	if c.refreshTimer != nil {
		c.refreshTimer.Stop()
		c.refreshTimer = nil
	}
	if sess != nil {
		c.scheduleRefreshLocked()
	}
	c.mu.Unlock()

	if c.store != nil {
		if sess != nil {
			if err := c.store.Save(sess); err != nil {
				c.log.Warn("token_store_save_failed", slog.String("err", err.Error()))
			}
		} else {
			if err := c.store.Clear(); err != nil {
				c.log.Warn("token_store_clear_failed", slog.String("err", err.Error()))
			}
		}
	}
}

func (c *Client) scheduleRefreshLocked() {
	if c.closed || c.session == nil {
		return
	}

	delay := time.Until(c.session.ExpiresAt) - c.lead
	if delay < time.Second {
		delay = time.Second
	}

	c.refreshTimer = time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := c.refreshNow(ctx); err != nil {
			c.log.Warn("token_refresh_failed", slog.String("err", err.Error()))
		}
	})
}

func (c *Client) emit(ev authsync.AuthEvent) {
	c.mu.Lock()
	fns := make([]func(authsync.AuthEvent), 0, len(c.handlers))
	for _, fn := range c.handlers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// do выполняет запрос и декодирует успешный ответ в out (если out != nil).
// Ошибочные статусы конвертируются в ошибки через разбор единого конверта
// {"error": {"code", "message"}}.
func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError конвертирует конверт ошибки сервиса в ошибки SDK.
func decodeError(resp *http.Response) error {
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &env)

	switch env.Error.Code {
	case "invalid_credentials":
		return authsync.ErrInvalidCredentials
	case "not_found":
		return authsync.ErrProfileNotFound
	case "unauthenticated":
		return authsync.ErrNotAuthenticated
	}

	if env.Error.Message != "" {
		return fmt.Errorf("http %d: %s", resp.StatusCode, env.Error.Message)
	}

	return fmt.Errorf("http %d", resp.StatusCode)
}

// authWire — ответ auth-эндпойнтов сервиса.
type authWire struct {
	UserID          string `json:"user_id"`
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token"`
	AccessExpiresAt int64  `json:"access_expires_at"`
}

// profileWire — анкета в проводном формате сервиса (Unix-метки времени).
type profileWire struct {
	UserID      string `json:"user_id"`
	Nickname    string `json:"nickname"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	City        string `json:"city"`
	University  string `json:"university"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	AboutYou    string `json:"about_you"`
	Motivation  string `json:"motivation"`
	LinkedinURL string `json:"linkedin_url"`
	GithubURL   string `json:"github_url"`
	TelegramURL string `json:"telegram_url"`
	AvatarURL   string `json:"avatar_url"`
	SecretCode  int32  `json:"secret_code"`
	UpdatedAt   int64  `json:"updated_at"`
}

func (w profileWire) toProfile() *authsync.Profile {
	return &authsync.Profile{
		UserID:      w.UserID,
		Nickname:    w.Nickname,
		FirstName:   w.FirstName,
		LastName:    w.LastName,
		City:        w.City,
		University:  w.University,
		Company:     w.Company,
		Position:    w.Position,
		AboutYou:    w.AboutYou,
		Motivation:  w.Motivation,
		LinkedinURL: w.LinkedinURL,
		GithubURL:   w.GithubURL,
		TelegramURL: w.TelegramURL,
		AvatarURL:   w.AvatarURL,
		SecretCode:  w.SecretCode,
		UpdatedAt:   time.Unix(w.UpdatedAt, 0).UTC(),
	}
}

// updateWire — тело POST /profile/update.
type updateWire struct {
	ID          string  `json:"id"`
	Nickname    *string `json:"nickname,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	City        *string `json:"city,omitempty"`
	University  *string `json:"university,omitempty"`
	Company     *string `json:"company,omitempty"`
	Position    *string `json:"position,omitempty"`
	AboutYou    *string `json:"about_you,omitempty"`
	Motivation  *string `json:"motivation,omitempty"`
	LinkedinURL *string `json:"linkedin_url,omitempty"`
	GithubURL   *string `json:"github_url,omitempty"`
	TelegramURL *string `json:"telegram_url,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	SecretCode  *int32  `json:"secret_code,omitempty"`
	// UpdatedAt — Unix UTC, клиентская метка времени изменения.
	UpdatedAt *int64 `json:"updated_at,omitempty"`
}
