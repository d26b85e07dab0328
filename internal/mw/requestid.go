package mw

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hotel-console-backend/internal/logger"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestID ensures every request has an ID and a logger carrying it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(requestIDHeader, rid)

		ctx := c.Request.Context()
		ctx = logger.WithContext(ctx, logger.Get(ctx).With("request_id", rid))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetRequestID extracts request_id from gin context when available.
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
