package authsync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// State — снимок реактивного состояния контроллера для UI-слоя.
// Указатели в снимке считаются read-only.
type State struct {
	User           *User
	Session        *Session
	Profile        *Profile
	ProfileError   error
	Loading        bool
	LoadingProfile bool
	Initialized    bool
}

// Options — зависимости и параметры Controller.
// Обязателен только Backend; остальное имеет разумные значения по умолчанию.
type Options struct {
	Backend Backend
	// Cache — локальное хранилище снапшотов; nil — кэш отключён.
	Cache SnapshotCache
	// Retry — политика повторов загрузки анкеты; zero-value заменяется
	// на DefaultRetryPolicy.
	Retry RetryPolicy
	// QueueDrainDelay — пауза перед обработкой следующего id из очереди.
	QueueDrainDelay time.Duration
	// UpdateSettleDelay — пауза между успешным апдейтом анкеты
	// и форсированной сверкой с бэкендом.
	UpdateSettleDelay time.Duration
	// SignOutTimeout — страховочный таймер выхода: если бэкенд завис,
	// навигация на "/" выполняется принудительно.
	SignOutTimeout time.Duration
	// Navigate — переход фронтенда на path; replace=true — без записи
	// в историю, чтобы «назад» не воскрешал сессию.
	Navigate func(path string, replace bool)
	// LocalWipe — полная зачистка локального персистентного состояния клиента.
	LocalWipe func()
	Logger    *slog.Logger
}

const (
	defaultQueueDrainDelay   = 100 * time.Millisecond
	defaultUpdateSettleDelay = 500 * time.Millisecond
	defaultSignOutTimeout    = 2 * time.Second
)

// Controller — машина состояний «сессия + анкета».
//
// Жизненный цикл: New → Start → (SignIn/SignUp/SignOut/UpdateProfile/
// RefreshProfile, State/Subscribe) → Close. После SignOut подписка на события
// бэкенда снята; для новой сессии контроллер запускается заново через Start.
type Controller struct {
	backend        Backend
	cache          SnapshotCache
	fetcher        *profileFetcher
	navigate       func(string, bool)
	localWipe      func()
	settleDelay    time.Duration
	signOutTimeout time.Duration
	log            *slog.Logger

	mu sync.Mutex
	st State
	// prevKey/hasPrev — маркер дедупликации событий; принадлежит обработчику
	// событий и намеренно не заполняется в Start: первое событие после
	// инициализации должно пройти как «сессия появилась» и запустить
	// загрузку анкеты.
	prevKey     sessionKey
	hasPrev     bool
	prevPresent bool
	prevUserID  string
	lastEmail   string
	signingOut  bool
	unsubscribe func()
	subs        map[int]func(State)
	nextSubID   int
	closed      bool
}

// New собирает Controller. Ошибка — только при отсутствии Backend.
func New(opts Options) (*Controller, error) {
	const op = "authsync/controller/New"

	if opts.Backend == nil {
		return nil, fmt.Errorf("%s: backend is required", op)
	}

	if opts.Cache == nil {
		opts.Cache = noopCache{}
	}
	if opts.Retry == (RetryPolicy{}) {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.QueueDrainDelay <= 0 {
		opts.QueueDrainDelay = defaultQueueDrainDelay
	}
	if opts.UpdateSettleDelay <= 0 {
		opts.UpdateSettleDelay = defaultUpdateSettleDelay
	}
	if opts.SignOutTimeout <= 0 {
		opts.SignOutTimeout = defaultSignOutTimeout
	}
	if opts.Navigate == nil {
		opts.Navigate = func(string, bool) {}
	}
	if opts.LocalWipe == nil {
		opts.LocalWipe = func() {}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &Controller{
		backend:        opts.Backend,
		cache:          opts.Cache,
		navigate:       opts.Navigate,
		localWipe:      opts.LocalWipe,
		settleDelay:    opts.UpdateSettleDelay,
		signOutTimeout: opts.SignOutTimeout,
		log:            opts.Logger,
		st:             State{Loading: true},
		subs:           make(map[int]func(State)),
	}

	c.fetcher = newProfileFetcher(
		opts.Backend,
		opts.Cache,
		opts.Retry,
		opts.QueueDrainDelay,
		fetcherHooks{
			SigningOut:     c.isSigningOut,
			HeldProfileID:  c.heldProfileID,
			LastKnownEmail: c.lastKnownEmail,
			FetchStarted:   func() { c.setLoadingProfile(true) },
			FetchDone:      func() { c.setLoadingProfile(false) },
			Publish:        c.publishProfile,
		},
		opts.Logger,
	)

	return c, nil
}

// Start инициализирует контроллер: один раз запрашивает текущую сессию
// и подписывается на события аутентификации. Загрузка анкеты намеренно
// отложена до первого события подписки — единая точка реакции на смену
// состояния исключает дублирующие загрузки.
//
// Ошибка чтения сессии не фатальна: контроллер переходит в initialized
// и работает дальше по событиям.
func (c *Controller) Start(ctx context.Context) {
	sess, err := c.backend.Session(ctx)
	if err != nil {
		c.log.Warn("session_restore_failed", slog.String("err", err.Error()))
	}

	c.mu.Lock()
	if err == nil && sess != nil {
		c.st.Session = sess
		u := sess.User
		c.st.User = &u
		c.lastEmail = u.Email
	}
	c.st.Initialized = true
	c.st.Loading = false
	c.mu.Unlock()
	c.notify()

	unsub := c.backend.OnAuthStateChange(c.handleAuthEvent)

	c.mu.Lock()
	c.unsubscribe = unsub
	c.mu.Unlock()
}

// handleAuthEvent — единственная точка реакции на смену состояния
// аутентификации. Дубликаты (совпадает нормализованная проекция сессии)
// игнорируются целиком; «эффективной» считается смена присутствия сессии
// или пользователя — только она запускает загрузку/очистку анкеты.
func (c *Controller) handleAuthEvent(ev AuthEvent) {
	c.mu.Lock()
	if c.signingOut || c.closed {
		c.mu.Unlock()
		return
	}

	newKey := keyOf(ev.Session)
	if c.hasPrev && newKey == c.prevKey {
		// Полный дубликат: ни обновления состояния, ни загрузки.
		c.mu.Unlock()
		return
	}

	newPresent := ev.Session != nil
	newUserID := ""
	if newPresent {
		newUserID = ev.Session.User.ID
	}

	effective := !c.hasPrev && newPresent ||
		c.hasPrev && (c.prevPresent != newPresent || c.prevUserID != newUserID)

	c.prevKey = newKey
	c.hasPrev = true
	c.prevPresent = newPresent
	c.prevUserID = newUserID

	var fetchID, fetchEmail string
	clearFetcher := false

	switch {
	case effective && newPresent:
		c.st.Session = ev.Session
		u := ev.Session.User
		c.st.User = &u
		c.lastEmail = u.Email
		fetchID, fetchEmail = u.ID, u.Email
	case effective:
		c.st.Session = nil
		c.st.User = nil
		c.st.Profile = nil
		c.st.ProfileError = nil
		c.st.LoadingProfile = false
		clearFetcher = true
	case newPresent:
		// Токен обновился без смены пользователя: фиксируем сессию,
		// анкету не перечитываем.
		c.st.Session = ev.Session
	default:
		c.st.Session = nil
	}

	c.st.Initialized = true
	c.st.Loading = false
	c.mu.Unlock()

	if clearFetcher {
		c.fetcher.Reset()
	}

	c.notify()

	if fetchID != "" {
		c.fetcher.Fetch(context.Background(), fetchID, fetchEmail)
	}
}

// SignIn проверяет учётные данные через бэкенд. Навигация и загрузка анкеты
// происходят по событию подписки, не здесь — единая точка реакции.
// Ошибки учётных данных возвращаются значением для отображения в форме.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	const op = "authsync/controller/SignIn"

	c.mu.Lock()
	if c.signingOut {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrSignOutInProgress)
	}
	c.st.Loading = true
	c.mu.Unlock()
	c.notify()

	_, err := c.backend.SignInWithPassword(ctx, email, password)

	c.mu.Lock()
	c.st.Loading = false
	if err == nil {
		// email запоминается для fallback-анкеты.
		c.lastEmail = email
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SignUp регистрирует пользователя; семантика как у SignIn.
func (c *Controller) SignUp(ctx context.Context, email, password string) error {
	const op = "authsync/controller/SignUp"

	c.mu.Lock()
	if c.signingOut {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrSignOutInProgress)
	}
	c.st.Loading = true
	c.mu.Unlock()
	c.notify()

	_, err := c.backend.SignUp(ctx, email, password)

	c.mu.Lock()
	c.st.Loading = false
	if err == nil {
		c.lastEmail = email
	}
	c.mu.Unlock()
	c.notify()

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// SignOut выполняет выход.
//
// Порядок жёсткий:
//  1. защита от конкурентного повторного вызова;
//  2. отписка от событий до любой очистки — события самой очистки
//     не должны вернуться в обработчик;
//  3. оптимистичная очистка user/profile/session;
//  4. страховочный таймер: если бэкенд завис, навигация на "/" выполняется
//     принудительно;
//  5. вызов бэкенда; затем зачистка кэша и локального состояния
//     и навигация replace-переходом — в том числе при ошибке бэкенда:
//     клиент в любом случае оказывается разлогиненным локально.
func (c *Controller) SignOut(ctx context.Context) error {
	const op = "authsync/controller/SignOut"

	c.mu.Lock()
	if c.signingOut {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrSignOutInProgress)
	}
	c.signingOut = true

	userID := ""
	if c.st.User != nil {
		userID = c.st.User.ID
	}

	unsub := c.unsubscribe
	c.unsubscribe = nil

	c.st.User = nil
	c.st.Session = nil
	c.st.Profile = nil
	c.st.ProfileError = nil
	c.st.LoadingProfile = false
	c.st.Loading = true
	c.hasPrev = false
	c.prevKey = sessionKey{}
	c.prevPresent = false
	c.prevUserID = ""
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	c.fetcher.Reset()
	c.notify()

	safety := time.AfterFunc(c.signOutTimeout, func() {
		c.log.Warn("sign_out_safety_redirect")
		c.navigate("/", true)
	})

	err := c.backend.SignOut(ctx)
	safety.Stop()

	if err != nil {
		c.log.Warn("sign_out_backend_failed", slog.String("err", err.Error()))
	}

	if userID != "" {
		c.cache.Clear(userID)
	}
	c.cache.Wipe()
	c.localWipe()

	c.mu.Lock()
	c.signingOut = false
	c.st.Loading = false
	c.st.Initialized = true
	c.mu.Unlock()
	c.notify()

	c.navigate("/", true)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateProfile отправляет частичный апдейт анкеты через серверный эндпойнт.
//
// Контроллер всегда вырезает email из исходящего запроса и проставляет
// updated_at. После успешного вызова снапшот в кэше оптимистично сливается
// с апдейтом, а через settle-паузу выполняется форсированная сверка
// с авторитетной записью бэкенда.
func (c *Controller) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	const op = "authsync/controller/UpdateProfile"

	c.mu.Lock()
	if c.st.User == nil {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}
	userID := c.st.User.ID
	held := c.st.Profile
	c.mu.Unlock()

	now := time.Now().UTC()
	update.Email = nil
	update.UpdatedAt = &now

	if err := c.backend.UpdateProfile(ctx, userID, update); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Оптимистичное слияние: кэш отражает апдейт до сверки с бэкендом.
	base, ok := c.cache.Read(userID)
	if !ok {
		base = held
	}
	if base != nil {
		merged := mergeProfile(*base, update)
		c.cache.Write(userID, &merged)
	}

	c.fetcher.ForgetLastFetched()
	c.fetcher.schedule(c.settleDelay, func() {
		c.RefreshProfile(context.Background())
	})

	return nil
}

// RefreshProfile форсирует перечитывание анкеты текущего пользователя,
// сбрасывая маркер «уже загружено».
func (c *Controller) RefreshProfile(ctx context.Context) {
	c.mu.Lock()
	var id, email string
	if c.st.User != nil {
		id = c.st.User.ID
		email = c.st.User.Email
	}
	c.mu.Unlock()

	if id == "" {
		return
	}

	c.fetcher.ForgetLastFetched()
	c.fetcher.Fetch(ctx, id, email)
}

// State возвращает текущий снимок состояния.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.st
}

// Subscribe регистрирует наблюдателя изменений состояния и возвращает
// функцию отписки. Наблюдатель вызывается синхронно при каждом изменении.
func (c *Controller) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Close останавливает контроллер: снимает подписку и гасит отложенные работы.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	c.fetcher.Close()
}

func (c *Controller) isSigningOut() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.signingOut
}

func (c *Controller) heldProfileID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.st.Profile == nil {
		return ""
	}

	return c.st.Profile.UserID
}

func (c *Controller) lastKnownEmail() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastEmail
}

func (c *Controller) setLoadingProfile(v bool) {
	c.mu.Lock()
	c.st.LoadingProfile = v
	c.mu.Unlock()
	c.notify()
}

// publishProfile — приёмник результатов profileFetcher.
// Ошибка без анкеты не затирает уже опубликованную анкету.
func (c *Controller) publishProfile(profile *Profile, err error) {
	c.mu.Lock()
	if c.signingOut || c.closed {
		c.mu.Unlock()
		return
	}

	if profile != nil {
		c.st.Profile = profile
	}
	c.st.ProfileError = err
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	c.mu.Lock()
	st := c.st
	fns := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

// mergeProfile накладывает заполненные поля апдейта на базовую анкету.
// Email в ProfileUpdate к этому моменту уже вырезан контроллером.
func mergeProfile(base Profile, upd ProfileUpdate) Profile {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	set(&base.Nickname, upd.Nickname)
	set(&base.FirstName, upd.FirstName)
	set(&base.LastName, upd.LastName)
	set(&base.City, upd.City)
	set(&base.University, upd.University)
	set(&base.Company, upd.Company)
	set(&base.Position, upd.Position)
	set(&base.AboutYou, upd.AboutYou)
	set(&base.Motivation, upd.Motivation)
	set(&base.LinkedinURL, upd.LinkedinURL)
	set(&base.GithubURL, upd.GithubURL)
	set(&base.TelegramURL, upd.TelegramURL)
	set(&base.AvatarURL, upd.AvatarURL)

	if upd.SecretCode != nil {
		base.SecretCode = *upd.SecretCode
	}
	if upd.UpdatedAt != nil {
		base.UpdatedAt = *upd.UpdatedAt
	}

	return base
}
