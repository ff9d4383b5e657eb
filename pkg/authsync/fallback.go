package authsync

import "strings"

// FallbackProfile строит минимальную валидную анкету из (userID, email),
// когда ни бэкенд, ни локальный кэш не дали данных.
//
// Функция чистая и детерминированная: одинаковые аргументы дают одинаковую
// анкету. Nickname — локальная часть email; SecretCode остаётся нулевым
// («неверифицирован»). Результат никогда не сохраняется на бэкенд
// автоматически — только если пользователь явно отправит форму анкеты.
func FallbackProfile(userID, email string) *Profile {
	nickname := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		nickname = email[:i]
	}

	if nickname == "" {
		nickname = "member"
	}

	return &Profile{
		UserID:   userID,
		Nickname: nickname,
	}
}
