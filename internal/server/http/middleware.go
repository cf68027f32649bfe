package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trailfield/trailfield/internal/common"
	"github.com/trailfield/trailfield/internal/server/auth"
)

const userIDKey = "userID"

// UserIDFromContext returns the authenticated user's id set by Auth, or ""
// when the request was not authenticated.
func UserIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Auth validates the Bearer access token and stores the user id on the
// request context. An expired token produces a distinguishable error body so
// clients know to refresh rather than re-login.
func Auth(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := strings.TrimSpace(c.GetHeader(common.AccessTokenHeaderName))
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID, err := auth.GetUserIDFromToken(strings.TrimSpace(h[7:]), secretKey)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.ErrTokenExpired.Error()})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
