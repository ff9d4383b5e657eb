package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sneddy/dsmlkz-platform/internal/http/apierrors"
	"github.com/sneddy/dsmlkz-platform/internal/http/models"
	domain "github.com/sneddy/dsmlkz-platform/internal/models"
	"github.com/sneddy/dsmlkz-platform/internal/service"
)

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	// Полную анкету (с secret_code) отдаём только её владельцу.
	if err := h.authorizeSelf(r, uid); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	profile, err := h.Service.ProfileByID(r.Context(), uid)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ProfileFromModel(profile))
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	if err := h.authorizeSelf(r, uid); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in models.UpdateProfileRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	profile, err := h.Service.UpdateProfile(r.Context(), updateInput(uid, in))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ProfileFromModel(profile))
}

// UpdateProfileSelf — POST /api/profile/update: плоский формат апдейта,
// который использует веб-клиент. id берётся из тела и сверяется с токеном.
func (h *Handlers) UpdateProfileSelf(w http.ResponseWriter, r *http.Request) {
	var in models.UpdateProfileSelfRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	uid, err := uuid.Parse(in.ID)
	if err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	if err := h.authorizeSelf(r, uid); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	profile, err := h.Service.UpdateProfile(r.Context(), updateInput(uid, in.UpdateProfileRequest))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ProfileFromModel(profile))
}

// updateInput собирает сервисный вход из REST-запроса.
// in.Email сознательно не передаётся дальше; in.UpdatedAt — клиентская
// метка, итоговый updated_at проставляет БД.
func updateInput(uid uuid.UUID, in models.UpdateProfileRequest) service.UpdateProfileInput {
	return service.UpdateProfileInput{
		UserID:      uid,
		Nickname:    in.Nickname,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		City:        in.City,
		University:  in.University,
		Company:     in.Company,
		Position:    in.Position,
		AboutYou:    in.AboutYou,
		Motivation:  in.Motivation,
		LinkedinURL: in.LinkedinURL,
		GithubURL:   in.GithubURL,
		TelegramURL: in.TelegramURL,
		AvatarURL:   in.AvatarURL,
		SecretCode:  in.SecretCode,
	}
}

func (h *Handlers) AvatarPresign(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	if err := h.authorizeSelf(r, uid); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in models.AvatarPresignRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	info, err := h.Service.AvatarUploadURL(r.Context(), service.AvatarUploadURLInput{
		UserID:        uid,
		ContentType:   in.ContentType,
		ContentLength: in.ContentLength,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AvatarPresignFromInfo(info))
}

func (h *Handlers) AvatarConfirm(w http.ResponseWriter, r *http.Request) {
	uid, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	if err := h.authorizeSelf(r, uid); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in models.AvatarConfirmRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	profile, err := h.Service.ConfirmAvatarUpload(r.Context(), service.ConfirmAvatarUploadInput{
		UserID:    uid,
		AvatarKey: in.AvatarKey,
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ProfileFromModel(profile))
}

func (h *Handlers) ListPublicProfiles(w http.ResponseWriter, r *http.Request) {
	opts := listOptionsFromQuery(r)

	items, next, err := h.Service.ListPublicProfiles(r.Context(), opts)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := models.PublicProfilesResponse{NextPageToken: next}
	for _, item := range items {
		out.Items = append(out.Items, models.PublicProfileFromModel(item))
	}

	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) CommunityFaces(w http.ResponseWriter, r *http.Request) {
	faces, err := h.Service.CommunityFaces(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	out := models.CommunityFacesResponse{}
	for _, f := range faces {
		out.Items = append(out.Items, models.CommunityFaceFromModel(f))
	}

	writeJSON(w, http.StatusOK, out)
}

// listOptionsFromQuery читает limit/page_token/channel из query-параметров.
// Битый limit трактуется как отсутствующий: нормализацию делает сервис.
func listOptionsFromQuery(r *http.Request) domain.ListOptions {
	opts := domain.ListOptions{
		PageToken: r.URL.Query().Get("page_token"),
		Channel:   r.URL.Query().Get("channel"),
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
			opts.Limit = int32(v)
		}
	}

	return opts
}
