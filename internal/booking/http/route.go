package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the booking endpoints. holdLimiter throttles hold
// creation and runs after sessionMiddleware so it can key on the session.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, sessionMiddleware, holdLimiter, adminMiddleware gin.HandlerFunc) {
	// === Session Routes ===
	session := g.Group("")
	session.Use(sessionMiddleware)
	{
		session.GET("/availability", h.Availability)

		session.POST("/holds", holdLimiter, h.CreateHold)
		session.GET("/holds/:id", h.GetHold)
		session.POST("/holds/:id/finalize", h.FinalizeHold)
		session.DELETE("/holds/:id", h.ReleaseHold)
	}

	// === Administration Routes ===
	appointments := g.Group("/appointments")
	appointments.Use(sessionMiddleware, adminMiddleware)
	{
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PATCH("/:id", h.UpdateAppointment)
	}
}
