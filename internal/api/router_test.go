package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/salon-booking-backend/internal/auth"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/ratelimit"
)

func newTestRouter(health func(context.Context) error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	jwt := auth.NewJWTManager("secret")
	limits := ratelimit.Config{Capacity: 1, RefillEvery: time.Minute}
	return NewRouter(Config{
		Logger:          zap.NewNop(),
		JWTManager:      jwt,
		AuthService:     auth.NewService(jwt, auth.NewBcryptPasswordHasher(0), "", time.Hour, time.Hour),
		HoldLimiter:     ratelimit.NewLocal(limits),
		HoldLimitConfig: limits,
		HealthCheck:     health,
	})
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(func(context.Context) error { return nil })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	r = newTestRouter(func(context.Context) error { return errors.New("db down") })
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSessionFlow(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/sessions", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Token     string `json:"token"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.NotEmpty(t, body.SessionID)

	// Booking routes need the session token.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/availability?date=2026-03-02&duration_minutes=30", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Admin login needs a JSON body.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/admin", nil)
	req.Body = http.NoBody
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitOrigins(" https://a.example, ,https://b.example"))
	assert.Nil(t, splitOrigins(""))
}
