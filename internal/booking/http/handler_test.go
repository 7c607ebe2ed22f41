package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/salon-booking-backend/internal/auth"
	"github.com/nekogravitycat/salon-booking-backend/internal/booking"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/response"
)

const holdID = "0b7f2c1e-5a4d-4f0e-9a51-3c2d1e0f9a88"

// stubService returns canned results and records what it was called with.
type stubService struct {
	booking.Service

	err         error
	gotSession  string
	gotFinalize booking.FinalizeRequest
}

func (s *stubService) CreateHold(ctx context.Context, req booking.CreateHoldRequest) (*booking.Hold, error) {
	s.gotSession = req.SessionID
	if s.err != nil {
		return nil, s.err
	}
	return &booking.Hold{
		ID:        holdID,
		StartTime: req.StartTime,
		Duration:  30 * time.Minute,
		Status:    booking.HoldActive,
		ExpiresAt: req.StartTime.Add(-time.Hour),
	}, nil
}

func (s *stubService) FinalizeHold(ctx context.Context, req booking.FinalizeRequest) (*booking.Appointment, error) {
	s.gotFinalize = req
	if s.err != nil {
		return nil, s.err
	}
	return &booking.Appointment{ID: "appt-1", Status: booking.StatusConfirmed, BookedPrice: req.Price}, nil
}

func (s *stubService) ReleaseHold(ctx context.Context, id, sessionID string) error {
	s.gotSession = sessionID
	return s.err
}

func newTestRouter(t *testing.T, svc booking.Service) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt := auth.NewJWTManager("secret")
	token, _, err := jwt.Generate("session-1", auth.RoleSession, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	noLimit := func(c *gin.Context) { c.Next() }
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), auth.AuthRequired(jwt), noLimit, auth.AdminRequired())
	return r, token
}

func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateHoldHandler(t *testing.T) {
	svc := &stubService{}
	r, token := newTestRouter(t, svc)

	w := doJSON(r, http.MethodPost, "/v1/holds", token, `{"start_time":"2026-03-02T10:00:00Z","duration_minutes":30}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "session-1", svc.gotSession)

	var resp HoldResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, holdID, resp.HoldID)
	assert.Equal(t, 30, resp.DurationMinutes)
	assert.Equal(t, []string{}, resp.ServiceIDs)

	assert.Equal(t, http.StatusUnauthorized, doJSON(r, http.MethodPost, "/v1/holds", "", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/v1/holds", token, `{"duration_minutes":30}`).Code)
}

func TestErrorKindsReachTheClient(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantKind string
	}{
		{booking.ErrOverlap, http.StatusConflict, "E_OVERLAP"},
		{booking.ErrExpired, http.StatusGone, "E_EXPIRED"},
		{booking.ErrHoldNotFound, http.StatusNotFound, "E_NOT_FOUND"},
		{booking.ErrPermissionDenied, http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			svc := &stubService{err: tt.err}
			r, token := newTestRouter(t, svc)

			w := doJSON(r, http.MethodPost, "/v1/holds/"+holdID+"/finalize", token,
				`{"price":4500,"customer":{"name":"Ada","email":"ada@example.com"}}`)
			require.Equal(t, tt.wantCode, w.Code)

			var resp response.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantKind, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestFinalizeHandler(t *testing.T) {
	svc := &stubService{}
	r, token := newTestRouter(t, svc)

	w := doJSON(r, http.MethodPost, "/v1/holds/"+holdID+"/finalize", token,
		`{"price":3999,"auto_confirm":true,"customer":{"name":"Ada","email":"ada@example.com","phone":"555"}}`)
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, holdID, svc.gotFinalize.HoldID)
	assert.Equal(t, "session-1", svc.gotFinalize.SessionID)
	assert.Equal(t, int64(3999), svc.gotFinalize.Price)
	assert.True(t, svc.gotFinalize.AutoConfirm)
	require.NotNil(t, svc.gotFinalize.Customer)
	assert.Equal(t, "ada@example.com", svc.gotFinalize.Customer.Email)

	var resp FinalizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "appt-1", resp.AppointmentID)

	// price is mandatory, zero is allowed
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/v1/holds/"+holdID+"/finalize", token,
		`{"customer":{"name":"Ada","email":"ada@example.com"}}`).Code)
	assert.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/v1/holds/"+holdID+"/finalize", token,
		`{"price":0,"customer_id":"`+holdID+`"}`).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodPost, "/v1/holds/not-a-uuid/finalize", token,
		`{"price":0}`).Code)
}

func TestReleaseHandler(t *testing.T) {
	svc := &stubService{}
	r, token := newTestRouter(t, svc)

	w := doJSON(r, http.MethodDelete, "/v1/holds/"+holdID, token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "session-1", svc.gotSession)
}

func TestAppointmentsRequireAdmin(t *testing.T) {
	r, token := newTestRouter(t, &stubService{})
	assert.Equal(t, http.StatusForbidden, doJSON(r, http.MethodGet, "/v1/appointments", token, "").Code)
}
