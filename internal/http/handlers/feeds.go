package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sneddy/dsmlkz-platform/internal/http/apierrors"
	"github.com/sneddy/dsmlkz-platform/internal/http/middleware"
	"github.com/sneddy/dsmlkz-platform/internal/http/models"
	domain "github.com/sneddy/dsmlkz-platform/internal/models"
	"github.com/sneddy/dsmlkz-platform/internal/service"
)

// IngestContent — POST /feeds/ingest: заливка пачки постов в ленту.
// Используется админским инструментом для дозаливки постов, пропущенных
// ботом. Требует валидный Bearer-токен.
func (h *Handlers) IngestContent(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.AuthTokenFrom(r)
	if !ok {
		apierrors.WriteError(w, r, fmt.Errorf("handlers: %w", service.ErrInvalidToken))
		return
	}

	if _, _, err := h.Service.ValidateToken(r.Context(), token); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in models.ContentIngestRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	items := make([]domain.ChannelPost, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, item.ToModel())
	}

	if err := h.Service.SaveContent(r.Context(), items); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ContentIngestResponse{Accepted: len(items)})
}

func (h *Handlers) ListNews(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.ListNews(r.Context(), listOptionsFromQuery(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ContentPageFromModel(page))
}

func (h *Handlers) GetNewsByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	post, err := h.Service.NewsByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChannelPostFromModel(*post))
}

func (h *Handlers) ListJobs(w http.ResponseWriter, r *http.Request) {
	page, err := h.Service.ListJobs(r.Context(), listOptionsFromQuery(r))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.JobPageFromModel(page))
}

func (h *Handlers) GetJobByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	job, err := h.Service.JobByID(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.JobPostFromModel(*job))
}
