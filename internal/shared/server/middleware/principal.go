package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docbase-backend/internal/shared/server/respond"
)

const (
	userIDKey   = "userId"
	usernameKey = "username"
)

// Principal extracts the authenticated principal set by the upstream identity
// layer. Authentication itself happens outside this service; requests arrive
// with X-User-Id / X-Username already verified.
func Principal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		if strings.HasSuffix(path, "/health") {
			c.Next()
			return
		}

		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if userID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(userIDKey, userID)
		if name := strings.TrimSpace(c.GetHeader("X-Username")); name != "" {
			c.Set(usernameKey, name)
		}
		c.Next()
	}
}

// UserIDFromContext returns the principal identifier stored by Principal.
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// UsernameFromContext returns the principal name stored by Principal.
func UsernameFromContext(c *gin.Context) string {
	return c.GetString(usernameKey)
}
