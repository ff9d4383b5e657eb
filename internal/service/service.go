// service содержит бизнес-логику платформы:
//
// auth.go     — регистрация/вход, выпуск и отзыв токенов;
// token.go    — генерация и валидация access/refresh токенов;
// profiles.go — анкеты участников, каталог, аватары;
// content.go  — ленты постов каналов и вакансий.
//
// Экземпляр Service не хранит состояние запроса и безопасен для
// конкурентного использования при потокобезопасных хранилищах.
// Ошибки этого пакета маппятся транспортом на HTTP-коды (см. http/apierrors).
package service

import (
	"errors"

	"github.com/sneddy/dsmlkz-platform/internal/cache"
	"github.com/sneddy/dsmlkz-platform/internal/config"
	"github.com/sneddy/dsmlkz-platform/internal/storage"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// Транспорт: HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен (access/refresh) некорректен по формату/подписи
	// или отсутствует в хранилище. Транспорт: HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Транспорт: HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenRevoked — токен отозван (logout/rotation) и недействителен
	// независимо от срока. Транспорт: HTTP 401.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrEmailTaken — e-mail уже занят другим пользователем. Транспорт: HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrRefreshTokenCollision — исчерпаны попытки сгенерировать уникальный
	// refresh-токен. Транспорт: HTTP 500.
	ErrRefreshTokenCollision = errors.New("refresh token collision")

	// ErrInvalidEmail — e-mail имеет некорректный формат. Транспорт: HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политике сложности. Транспорт: HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. Транспорт: HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrInvalidArgument — некорректные входные данные. Транспорт: HTTP 400.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound — сущность не найдена. Транспорт: HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — конфликт уникальности/дубликат. Транспорт: HTTP 409.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInternal — внутренняя ошибка сервиса. Транспорт: HTTP 500.
	ErrInternal = errors.New("internal")
)

// Service — описывает бизнес-логику платформы.
type Service struct {
	cfg             *config.Config
	authStorage     storage.AuthStorage
	profilesStorage storage.ProfilesStorage
	avatarsStorage  storage.AvatarsStorage
	contentStorage  storage.ContentStorage
	rcache          cache.RefreshCache // может быть nil, если кэш не сконфигурирован
}

// New создает новый экземпляр Service.
func New(
	authStorage storage.AuthStorage,
	profilesStorage storage.ProfilesStorage,
	avatarsStorage storage.AvatarsStorage,
	contentStorage storage.ContentStorage,
	cfg *config.Config,
) *Service {
	return &Service{
		cfg:             cfg,
		authStorage:     authStorage,
		profilesStorage: profilesStorage,
		avatarsStorage:  avatarsStorage,
		contentStorage:  contentStorage,
	}
}

// SetRefreshCache устанавливает кэш refresh-токенов (опционально).
func (s *Service) SetRefreshCache(c cache.RefreshCache) {
	s.rcache = c
}
