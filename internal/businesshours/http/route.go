package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, sessionMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/business-hours")

	group.GET("", sessionMiddleware, h.Get)
	group.PUT("", sessionMiddleware, adminMiddleware, h.Replace)
}
