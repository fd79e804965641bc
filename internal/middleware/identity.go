package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Identity extracts the caller's user ID from the X-User-ID header, set by
// the authenticating edge in front of this service, and stores it in the
// request context. Requests without an identity are rejected.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			logrus.WithField("path", c.Request.URL.Path).Warn("Identity: missing X-User-ID header")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User identity is required"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
