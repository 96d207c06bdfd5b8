package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flashcards.app/generator/common/logger"
)

type contextKey string

const (
	// UserIDHeader carries the owner identity set by the upstream auth gateway.
	UserIDHeader   = "X-User-ID"
	AdminKeyHeader = "X-Admin-Key"

	userIDContextKey contextKey = "user_id"
)

// RequireUser resolves the caller from UserIDHeader. Authentication happens
// upstream; this only parses the identity it forwards.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(strings.TrimSpace(c.GetHeader(UserIDHeader)))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid user identity"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), userIDContextKey, userID)
		ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: logger.Ptr(userID.String())})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetUserID returns the identity stored by RequireUser.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	return userID, ok
}

// RequireAdminKey guards admin routes. An empty key disables them entirely.
func RequireAdminKey(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin API not configured"})
			return
		}

		apiKey := c.GetHeader(AdminKeyHeader)
		if apiKey == "" {
			apiKey = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}

		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(adminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing API key"})
			return
		}

		c.Next()
	}
}
