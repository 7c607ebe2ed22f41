package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.POST("/sessions", h.IssueSession)
	g.POST("/auth/admin", h.AdminLogin)
}
