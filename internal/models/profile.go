// models содержит доменные сущности платформы DSML Kazakhstan.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile — анкета участника сообщества.
// Ключ — UserID (1:1 с пользователем auth-слоя).
// CreatedAt/UpdatedAt наружу отдаются как Unix UTC.
type Profile struct {
	UserID      uuid.UUID
	Nickname    string
	FirstName   string
	LastName    string
	City        string
	University  string
	Company     string
	Position    string
	AboutYou    string
	Motivation  string
	LinkedinURL string
	GithubURL   string
	TelegramURL string
	AvatarKey   string
	AvatarURL   string
	// SecretCode — числовой код верификации участника; выдаётся при создании
	// анкеты и никогда не принимается из пользовательского апдейта без явного флага.
	SecretCode int32
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PublicProfile — публичная проекция анкеты для страниц каталога участников.
// Содержит только отображаемые поля, без контактов и секретного кода.
type PublicProfile struct {
	UserID     uuid.UUID
	Nickname   string
	FirstName  string
	LastName   string
	City       string
	University string
	Company    string
	Position   string
	AvatarURL  string
}

// CommunityFace — участник «лиц сообщества» для дашборда.
type CommunityFace struct {
	UserID    uuid.UUID
	Nickname  string
	FullName  string
	Headline  string
	AvatarURL string
	Rank      int32
}
