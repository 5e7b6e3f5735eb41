package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON serializes payload with the given HTTP status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK serializes payload with a 200 status.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
