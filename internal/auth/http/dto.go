package http

import (
	"time"

	"github.com/nekogravitycat/salon-booking-backend/internal/auth"
)

// AdminLoginBody is the payload for POST /v1/auth/admin.
type AdminLoginBody struct {
	Password string `json:"password" binding:"required"`
}

// SessionResponse is the response for POST /v1/sessions.
type SessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenResponse is the response for POST /v1/auth/admin.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewSessionResponse(t *auth.Token) SessionResponse {
	return SessionResponse{Token: t.Value, SessionID: t.Subject, ExpiresAt: t.ExpiresAt}
}

func NewTokenResponse(t *auth.Token) TokenResponse {
	return TokenResponse{Token: t.Value, ExpiresAt: t.ExpiresAt}
}
