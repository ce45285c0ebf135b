// Package middleware provides HTTP middleware for the claim service.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/certifiedsliders/resultclaims/internal/logger"
	"github.com/certifiedsliders/resultclaims/internal/session"
)

// UserIDKey is the gin context key carrying the authenticated user id.
const UserIDKey = "user_id"

// SessionAuth authenticates requests by looking up the bearer token in the
// session store. Missing, unknown, or expired sessions get a 401 with the
// UNAUTHORIZED code.
func SessionAuth(store session.Store, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := bearerToken(c.GetHeader("Authorization"))
		if sessionID == "" {
			unauthorized(c)
			return
		}

		s, err := store.Get(c.Request.Context(), sessionID)
		if err != nil {
			log.Error("session lookup failed", logger.Error(err))
			unauthorized(c)
			return
		}
		if s == nil || s.Expired() {
			unauthorized(c)
			return
		}

		c.Set(UserIDKey, s.UserID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by SessionAuth.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"ok":    false,
		"error": "Unauthorized",
		"code":  "UNAUTHORIZED",
	})
}
