package authsync

import (
	"context"
	"sync"
	"time"
)

// fakeBackend — управляемый фейк Backend для unit-тестов:
// скриптуемые ответы, счётчики вызовов, ручная доставка событий.
type fakeBackend struct {
	mu sync.Mutex

	session    *Session
	sessionErr error

	profiles map[string]*Profile
	// profileFailures — сколько первых вызовов ProfileByID вернуть с ошибкой.
	profileFailures int
	profileErr      error
	profileCalls    []string
	// profileGate — если не nil, ProfileByID блокируется до закрытия канала.
	profileGate chan struct{}

	avatarURLs map[string]string

	signInErr  error
	signUpErr  error
	signOutErr error
	// signOutBlock — если не nil, SignOut блокируется до закрытия канала.
	signOutBlock chan struct{}
	signOutCalls int

	updates []fakeUpdate

	handlers   map[int]func(AuthEvent)
	nextID     int
	unsubCalls int
}

type fakeUpdate struct {
	UserID string
	Update ProfileUpdate
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		profiles:   make(map[string]*Profile),
		avatarURLs: make(map[string]string),
		handlers:   make(map[int]func(AuthEvent)),
	}
}

func (b *fakeBackend) Session(ctx context.Context) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sessionErr != nil {
		return nil, b.sessionErr
	}
	if b.session == nil {
		return nil, nil
	}

	cp := *b.session

	return &cp, nil
}

func (b *fakeBackend) OnAuthStateChange(handler func(AuthEvent)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.unsubCalls++
		b.mu.Unlock()
	}
}

// emit доставляет событие всем подписчикам (синхронно, как SDK-бэкенд).
func (b *fakeBackend) emit(ev AuthEvent) {
	b.mu.Lock()
	fns := make([]func(AuthEvent), 0, len(b.handlers))
	for _, fn := range b.handlers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (b *fakeBackend) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.signInErr != nil {
		return nil, b.signInErr
	}

	return b.session, nil
}

func (b *fakeBackend) SignUp(ctx context.Context, email, password string) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.signUpErr != nil {
		return nil, b.signUpErr
	}

	return b.session, nil
}

func (b *fakeBackend) SignOut(ctx context.Context) error {
	b.mu.Lock()
	b.signOutCalls++
	block := b.signOutBlock
	err := b.signOutErr
	b.mu.Unlock()

	if block != nil {
		<-block
	}

	return err
}

func (b *fakeBackend) ProfileByID(ctx context.Context, userID string) (*Profile, error) {
	b.mu.Lock()
	b.profileCalls = append(b.profileCalls, userID)
	gate := b.profileGate

	if b.profileFailures > 0 {
		b.profileFailures--
		err := b.profileErr
		b.mu.Unlock()

		return nil, err
	}

	p, ok := b.profiles[userID]
	var cp *Profile
	if ok {
		v := *p
		cp = &v
	}
	b.mu.Unlock()

	if gate != nil {
		<-gate
	}

	if cp == nil {
		return nil, ErrProfileNotFound
	}

	return cp, nil
}

func (b *fakeBackend) AvatarURLByUserID(ctx context.Context, userID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.avatarURLs[userID], nil
}

func (b *fakeBackend) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.updates = append(b.updates, fakeUpdate{UserID: userID, Update: update})

	return nil
}

func (b *fakeBackend) calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.profileCalls))
	copy(out, b.profileCalls)

	return out
}

func (b *fakeBackend) lastUpdate() (fakeUpdate, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.updates) == 0 {
		return fakeUpdate{}, false
	}

	return b.updates[len(b.updates)-1], true
}

func testSession(userID, email string) *Session {
	return &Session{
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
		ExpiresAt:    time.Now().Add(time.Hour).Truncate(time.Second),
		User:         User{ID: userID, Email: email},
	}
}
