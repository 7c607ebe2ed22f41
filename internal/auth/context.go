package auth

import "github.com/gin-gonic/gin"

const (
	sessionIDKey = "sessionID"
	roleKey      = "role"
)

// GetSessionID returns the caller's session id or empty string.
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// IsAdmin reports whether the caller authenticated as the shop administrator.
func IsAdmin(c *gin.Context) bool {
	v, ok := c.Get(roleKey)
	if !ok {
		return false
	}
	role, ok := v.(Role)
	return ok && role == RoleAdmin
}
