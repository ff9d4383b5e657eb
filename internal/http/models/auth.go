// models содержит входные/выходные REST-модели HTTP-слоя.
// Временные метки наружу отдаются как Unix UTC.
package models

import (
	domain "github.com/sneddy/dsmlkz-platform/internal/models"
)

// AuthRegisterRequest — тело POST /auth/register.
type AuthRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthLoginRequest — тело POST /auth/login.
type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthRefreshRequest — тело POST /auth/refresh (ротация пары).
type AuthRefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthRevokeRequest — тело POST /auth/revoke (logout).
type AuthRevokeRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthRevokeResponse struct {
	Ok bool `json:"ok"`
}

// AuthResponse — ответ register/login/refresh: пара токенов и владелец.
// Это же тело разбирает authsync/httpapi на клиентской стороне.
type AuthResponse struct {
	UserID          string `json:"user_id"`
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token"`
	AccessExpiresAt int64  `json:"access_expires_at"` // Unix UTC
}

// AuthFromTokenPair собирает REST-ответ из пары токенов.
func AuthFromTokenPair(userID string, tp *domain.TokenPair) AuthResponse {
	return AuthResponse{
		UserID:          userID,
		AccessToken:     tp.AccessToken,
		RefreshToken:    tp.RefreshToken,
		AccessExpiresAt: tp.AccessExpiresAt.UTC().Unix(),
	}
}

// AuthValidateRequest — тело POST /auth/validate.
type AuthValidateRequest struct {
	AccessToken string `json:"access_token"`
}

type AuthValidateResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
