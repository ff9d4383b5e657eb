package handlers

import (
	"net/http"

	"github.com/sneddy/dsmlkz-platform/internal/http/apierrors"
	"github.com/sneddy/dsmlkz-platform/internal/http/models"
)

func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var in models.AuthRegisterRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	tp, uid, err := h.Service.RegisterUser(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthFromTokenPair(uid.String(), tp))
}

func (h *Handlers) LoginUser(w http.ResponseWriter, r *http.Request) {
	var in models.AuthLoginRequest
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	tp, uid, err := h.Service.LoginUser(r.Context(), in.Email, in.Password)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthFromTokenPair(uid.String(), tp))
}

func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var in models.AuthRefreshRequest
	if err := decodeStrict(r, &in); err != nil || in.RefreshToken == "" {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	tp, uid, err := h.Service.RefreshToken(r.Context(), in.RefreshToken)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthFromTokenPair(uid.String(), tp))
}

func (h *Handlers) RevokeToken(w http.ResponseWriter, r *http.Request) {
	var in models.AuthRevokeRequest
	if err := decodeStrict(r, &in); err != nil || in.RefreshToken == "" {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	if err := h.Service.RevokeToken(r.Context(), in.RefreshToken); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthRevokeResponse{Ok: true})
}

func (h *Handlers) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var in models.AuthValidateRequest
	if err := decodeStrict(r, &in); err != nil || in.AccessToken == "" {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	uid, email, err := h.Service.ValidateToken(r.Context(), in.AccessToken)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AuthValidateResponse{
		Valid:  true,
		UserID: uid.String(),
		Email:  email,
	})
}
