package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/sneddy/dsmlkz-platform/internal/models"
)

// ProfileUpdate — частичный апдейт анкеты.
// Параметры задаются pointer-полями: только непустые указатели обновляются в БД.
// Email в анкете не хранится и через апдейт не проходит ни при каких условиях.
type ProfileUpdate struct {
	Nickname    *string
	FirstName   *string
	LastName    *string
	City        *string
	University  *string
	Company     *string
	Position    *string
	AboutYou    *string
	Motivation  *string
	LinkedinURL *string
	GithubURL   *string
	TelegramURL *string
	// AvatarURL и SecretCode обновляются только явным намерением
	// (подтверждение загрузки / административный сценарий).
	AvatarURL  *string
	SecretCode *int32
}

// Profiles — контракт репозитория анкет.
type Profiles interface {
	// CreateProfile создаёт новую анкету.
	CreateProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	// ProfileByID возвращает анкету по user_id.
	ProfileByID(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	// UpdateProfile выполняет частичное обновление полей, указанных в update.
	// Реализация обязана сдвинуть updated_at.
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*models.Profile, error)
	// ConfirmAvatarUpload фиксирует новый avatar_key и (опционально) avatar_url
	// в записи анкеты. Вызывается после успешного подтверждения загрузки в S3/MinIO.
	ConfirmAvatarUpload(ctx context.Context, userID uuid.UUID, key, publicURL string) (*models.Profile, error)
	// ListPublicProfiles возвращает страницу публичных проекций анкет
	// (каталог участников), отсортированных по created_at DESC.
	ListPublicProfiles(ctx context.Context, opts models.ListOptions) ([]models.PublicProfile, string, error)
	// ListCommunityFaces возвращает «лица сообщества» в порядке ранга.
	ListCommunityFaces(ctx context.Context) ([]models.CommunityFace, error)
}

// ProfilesStorage — верхнеуровневый интерфейс хранилища анкет.
type ProfilesStorage interface {
	Profiles
	Close()
}
