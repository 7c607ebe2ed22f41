package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/salon-booking-backend/internal/auth"
	"github.com/nekogravitycat/salon-booking-backend/internal/booking"
	"github.com/nekogravitycat/salon-booking-backend/internal/calendar"
	"github.com/nekogravitycat/salon-booking-backend/internal/customer"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// GET /v1/availability
func (h *Handler) Availability(c *gin.Context) {
	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	date, err := calendar.ParseDate(q.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := booking.AvailabilityRequest{
		Date:            date,
		DurationMinutes: q.DurationMinutes,
		ServiceIDs:      q.ServiceIDs,
	}
	if q.IncludeOwnHold {
		req.ExcludeSessionID = auth.GetSessionID(c)
	}

	a, err := h.service.Availability(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAvailabilityResponse(a))
}

// POST /v1/holds
func (h *Handler) CreateHold(c *gin.Context) {
	var body CreateHoldBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	hold, err := h.service.CreateHold(c.Request.Context(), booking.CreateHoldRequest{
		SessionID:       auth.GetSessionID(c),
		ResourceID:      body.ResourceID,
		ServiceIDs:      body.ServiceIDs,
		StartTime:       body.StartTime,
		DurationMinutes: body.DurationMinutes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewHoldResponse(hold))
}

// GET /v1/holds/:id
func (h *Handler) GetHold(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	hold, err := h.service.GetHold(c.Request.Context(), uri.ID, auth.GetSessionID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewHoldResponse(hold))
}

// POST /v1/holds/:id/finalize
func (h *Handler) FinalizeHold(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body FinalizeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	req := booking.FinalizeRequest{
		HoldID:      uri.ID,
		SessionID:   auth.GetSessionID(c),
		CustomerID:  body.CustomerID,
		Price:       *body.Price,
		AutoConfirm: body.AutoConfirm,
	}
	if body.Customer != nil {
		req.Customer = &customer.Input{
			Name:  body.Customer.Name,
			Email: body.Customer.Email,
			Phone: body.Customer.Phone,
		}
	}

	appt, err := h.service.FinalizeHold(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, FinalizeResponse{
		AppointmentID: appt.ID,
		Appointment:   NewAppointmentResponse(appt),
	})
}

// DELETE /v1/holds/:id
func (h *Handler) ReleaseHold(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.service.ReleaseHold(c.Request.Context(), uri.ID, auth.GetSessionID(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /v1/appointments
func (h *Handler) ListAppointments(c *gin.Context) {
	var req ListAppointmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	appts, total, err := h.service.ListAppointments(c.Request.Context(), booking.Filter{
		CustomerID: req.CustomerID,
		Status:     req.Status,
		From:       req.From,
		To:         req.To,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPage(appts, NewAppointmentResponse, req.Page, req.PageSize, total))
}

// GET /v1/appointments/:id
func (h *Handler) GetAppointment(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	appt, err := h.service.GetAppointment(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAppointmentResponse(appt))
}

// PATCH /v1/appointments/:id
func (h *Handler) UpdateAppointment(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body UpdateAppointmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	appt, err := h.service.UpdateAppointmentStatus(c.Request.Context(), uri.ID, booking.Status(body.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAppointmentResponse(appt))
}
