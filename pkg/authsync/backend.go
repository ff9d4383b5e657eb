package authsync

import "context"

// Backend — граница с внешним сервисом аутентификации и данных.
//
// Контракт методов:
//   - Session возвращает текущую сессию или (nil, nil), если её нет;
//   - OnAuthStateChange регистрирует обработчик событий и возвращает
//     функцию отписки; обработчик может вызываться из произвольной горутины;
//   - SignInWithPassword/SignUp возвращают ErrInvalidCredentials при
//     отклонённых учётных данных;
//   - ProfileByID возвращает ErrProfileNotFound, если анкеты ещё нет;
//   - AvatarURLByUserID — best-effort чтение текущего аватара; ошибка
//     не считается фатальной для загрузки анкеты;
//   - UpdateProfile отправляет частичный апдейт через серверный эндпойнт
//     (авторизация полей выполняется вне клиента).
type Backend interface {
	Session(ctx context.Context) (*Session, error)
	OnAuthStateChange(handler func(AuthEvent)) (unsubscribe func())
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error
	ProfileByID(ctx context.Context, userID string) (*Profile, error)
	AvatarURLByUserID(ctx context.Context, userID string) (string, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) error
}
