package authsync

import "time"

// User — идентичность пользователя, принадлежащая провайдеру аутентификации.
// Для этого слоя — read-only.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session — аутентифицированное состояние: токены + пользователь.
// Экземпляр хранится только для сравнения и вывода флагов состояния.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Profile — анкета участника сообщества; зеркало серверной записи.
type Profile struct {
	UserID      string    `json:"user_id"`
	Nickname    string    `json:"nickname"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	City        string    `json:"city"`
	University  string    `json:"university"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	AboutYou    string    `json:"about_you"`
	Motivation  string    `json:"motivation"`
	LinkedinURL string    `json:"linkedin_url"`
	GithubURL   string    `json:"github_url"`
	TelegramURL string    `json:"telegram_url"`
	AvatarURL   string    `json:"avatar_url"`
	SecretCode  int32     `json:"secret_code"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProfileUpdate — частичный апдейт анкеты: заполняются только изменяемые поля.
//
// Особенности:
//   - Email принимается, но контроллер всегда вырезает его из исходящего
//     запроса: адрес принадлежит auth-слою и через апдейт анкеты не меняется;
//   - AvatarURL и SecretCode уходят на сервер только при явно выставленном
//     указателе;
//   - UpdatedAt проставляется контроллером при отправке.
type ProfileUpdate struct {
	Nickname    *string    `json:"nickname,omitempty"`
	FirstName   *string    `json:"first_name,omitempty"`
	LastName    *string    `json:"last_name,omitempty"`
	City        *string    `json:"city,omitempty"`
	University  *string    `json:"university,omitempty"`
	Company     *string    `json:"company,omitempty"`
	Position    *string    `json:"position,omitempty"`
	AboutYou    *string    `json:"about_you,omitempty"`
	Motivation  *string    `json:"motivation,omitempty"`
	LinkedinURL *string    `json:"linkedin_url,omitempty"`
	GithubURL   *string    `json:"github_url,omitempty"`
	TelegramURL *string    `json:"telegram_url,omitempty"`
	AvatarURL   *string    `json:"avatar_url,omitempty"`
	SecretCode  *int32     `json:"secret_code,omitempty"`
	Email       *string    `json:"email,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// EventType — тип события аутентификации, доставляемого бэкендом.
type EventType string

const (
	// EventInitialSession — первичная доставка текущей сессии после подписки.
	EventInitialSession EventType = "INITIAL_SESSION"
	// EventSignedIn — пользователь вошёл.
	EventSignedIn EventType = "SIGNED_IN"
	// EventSignedOut — пользователь вышел.
	EventSignedOut EventType = "SIGNED_OUT"
	// EventTokenRefreshed — пара токенов обновлена без смены пользователя.
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
)

// AuthEvent — событие изменения состояния аутентификации.
// Session == nil означает отсутствие активной сессии.
type AuthEvent struct {
	Type    EventType
	Session *Session
}

// sessionKey — нормализованная проекция сессии для дедупликации событий:
// токен + id пользователя + момент истечения. Сравнение по значению
// заменяет глубокое структурное сравнение объектов.
type sessionKey struct {
	accessToken string
	userID      string
	expiresAt   int64
}

func keyOf(s *Session) sessionKey {
	if s == nil {
		return sessionKey{}
	}

	return sessionKey{
		accessToken: s.AccessToken,
		userID:      s.User.ID,
		expiresAt:   s.ExpiresAt.Unix(),
	}
}
