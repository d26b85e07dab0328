package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/session"
)

const sessionKey = "session"

// AuthRequired resolves the console token in "Authorization: Bearer <token>"
// to a live session and attaches it to the request.
func AuthRequired(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing Authorization header",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid Authorization header format",
			})
			return
		}

		s, err := sessions.Resolve(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired session",
			})
			return
		}

		c.Set(sessionKey, s)
		ctx := session.WithContext(c.Request.Context(), s)
		ctx = logger.WithContext(ctx, logger.Get(ctx).With("user", s.User.Username))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetSession returns the authenticated session or nil.
func GetSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(*session.Session); ok {
			return s
		}
	}
	return nil
}
