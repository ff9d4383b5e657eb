package models

import (
	domain "github.com/sneddy/dsmlkz-platform/internal/models"
	"github.com/sneddy/dsmlkz-platform/internal/storage"
)

// Profile — полная анкета участника (отдаётся только её владельцу).
type Profile struct {
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
	AvatarKey   string `json:"avatar_key"`
	AvatarURL   string `json:"avatar_url"`
	SecretCode  int32  `json:"secret_code"`
	CreatedAt   int64  `json:"created_at"` // Unix UTC
	UpdatedAt   int64  `json:"updated_at"` // Unix UTC
}

// PublicProfile — публичная проекция анкеты для каталога участников.
type PublicProfile struct {
	UserID     string `json:"user_id"`
	Nickname   string `json:"nickname"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	City       string `json:"city"`
	University string `json:"university"`
	Company    string `json:"company"`
	Position   string `json:"position"`
	AvatarURL  string `json:"avatar_url"`
}

type PublicProfilesResponse struct {
	Items         []PublicProfile `json:"items"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}

// CommunityFace — участник «лиц сообщества».
type CommunityFace struct {
	UserID    string `json:"user_id"`
	Nickname  string `json:"nickname"`
	FullName  string `json:"full_name"`
	Headline  string `json:"headline"`
	AvatarURL string `json:"avatar_url"`
	Rank      int32  `json:"rank"`
}

type CommunityFacesResponse struct {
	Items []CommunityFace `json:"items"`
}

// UpdateProfileRequest — запрос частичного апдейта анкеты.
// Поля опциональные: отсутствующее поле не трогается, пустая строка — «очистить».
// Email принимается и игнорируется: в анкете он не хранится и через
// апдейт не проходит ни при каких условиях. AvatarURL и SecretCode
// применяются только при явном присутствии в теле. UpdatedAt — клиентская
// метка (Unix UTC); принимается, но итоговый updated_at проставляет БД.
type UpdateProfileRequest struct {
	Email       *string `json:"email,omitempty"`
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
	UpdatedAt   *int64  `json:"updated_at,omitempty"`
}

// UpdateProfileSelfRequest — тело POST /api/profile/update: те же поля,
// плюс явный id участника.
type UpdateProfileSelfRequest struct {
	ID string `json:"id"`
	UpdateProfileRequest
}

// Пресайн на загрузку аватара.
type AvatarPresignRequest struct {
	ContentType   string `json:"content_type"`
	ContentLength int64  `json:"content_length"`
}

type AvatarPresignResponse struct {
	UploadURL      string            `json:"upload_url"`
	AvatarKey      string            `json:"avatar_key"`
	ExpiresSeconds int64             `json:"expires_seconds"`
	RequiredHeader map[string]string `json:"required_headers"`
}

type AvatarConfirmRequest struct {
	AvatarKey string `json:"avatar_key"`
}

// ProfileFromModel конвертирует доменную анкету в REST-модель.
func ProfileFromModel(p *domain.Profile) Profile {
	return Profile{
		UserID:      p.UserID.String(),
		Nickname:    p.Nickname,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		City:        p.City,
		University:  p.University,
		Company:     p.Company,
		Position:    p.Position,
		AboutYou:    p.AboutYou,
		Motivation:  p.Motivation,
		LinkedinURL: p.LinkedinURL,
		GithubURL:   p.GithubURL,
		TelegramURL: p.TelegramURL,
		AvatarKey:   p.AvatarKey,
		AvatarURL:   p.AvatarURL,
		SecretCode:  p.SecretCode,
		CreatedAt:   p.CreatedAt.UTC().Unix(),
		UpdatedAt:   p.UpdatedAt.UTC().Unix(),
	}
}

// PublicProfileFromModel конвертирует публичную проекцию.
func PublicProfileFromModel(p domain.PublicProfile) PublicProfile {
	return PublicProfile{
		UserID:     p.UserID.String(),
		Nickname:   p.Nickname,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		City:       p.City,
		University: p.University,
		Company:    p.Company,
		Position:   p.Position,
		AvatarURL:  p.AvatarURL,
	}
}

// CommunityFaceFromModel конвертирует «лицо сообщества».
func CommunityFaceFromModel(f domain.CommunityFace) CommunityFace {
	return CommunityFace{
		UserID:    f.UserID.String(),
		Nickname:  f.Nickname,
		FullName:  f.FullName,
		Headline:  f.Headline,
		AvatarURL: f.AvatarURL,
		Rank:      f.Rank,
	}
}

// AvatarPresignFromInfo конвертирует UploadInfo в REST-ответ.
func AvatarPresignFromInfo(info *storage.UploadInfo) AvatarPresignResponse {
	return AvatarPresignResponse{
		UploadURL:      info.UploadURL,
		AvatarKey:      info.AvatarKey,
		ExpiresSeconds: int64(info.Expires.Seconds()),
		RequiredHeader: info.RequiredHeader,
	}
}
