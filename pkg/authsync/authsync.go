// authsync — клиентский SDK синхронизации сессии и анкеты участника
// для фронтендов платформы DSML Kazakhstan.
//
// Пакет реализует машину состояний «сессия + анкета»:
//   - Controller подписывается на события аутентификации бэкенда,
//     отбрасывает дубликаты и управляет жизненным циклом состояния;
//   - profileFetcher загружает анкету с дедупликацией, FIFO-очередью
//     и ограниченными повторами с экспоненциальной задержкой;
//   - SnapshotCache хранит локальный снапшот анкеты как fallback-источник;
//   - FallbackProfile строит минимальную анкету из (userID, email),
//     когда ни бэкенд, ни кэш недоступны.
//
// Бэкенд абстрагирован интерфейсом Backend; рабочая HTTP-реализация
// живёт в подпакете httpapi. Все зависимости контроллера внедряются
// через Options — пакет не держит глобального состояния.
package authsync

import "errors"

var (
	// ErrNotAuthenticated — операция требует аутентифицированного пользователя.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSignOutInProgress — выход уже выполняется; повторный вызов игнорируется.
	ErrSignOutInProgress = errors.New("sign-out in progress")
	// ErrProfileNotFound — бэкенд не нашёл анкету по идентификатору пользователя.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidCredentials — бэкенд отклонил email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
