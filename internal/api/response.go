package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-console-backend/internal/apperror"
	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/mw"
	"hotel-console-backend/internal/parse"
	"hotel-console-backend/internal/session"
	"hotel-console-backend/internal/store"
	"hotel-console-backend/internal/syncer"
	"hotel-console-backend/internal/upstream"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// fail maps err to a status code and writes the error body. Upstream
// messages are passed through so operators see why a mutation was refused.
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		appErr      *apperror.AppError
		upstreamErr *upstream.Error
		filterErr   *parse.FilterError
	)

	switch {
	case errors.As(err, &appErr):
		c.AbortWithStatusJSON(appErr.Code, ErrorResponse{Error: appErr.Message})
	case errors.As(err, &filterErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: filterErr.Error()})
	case errors.Is(err, upstream.ErrUnauthorized):
		// The upstream token is dead, so the console session is too.
		if s := mw.GetSession(c); s != nil {
			h.sessions.Logout(c.Request.Context(), s.ID)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "session expired, please log in again"})
	case errors.As(err, &upstreamErr):
		status := upstreamErr.Status
		if status < 400 || status >= 500 {
			status = http.StatusBadGateway
		}
		msg := upstreamErr.Message
		if msg == "" {
			msg = http.StatusText(status)
		}
		c.AbortWithStatusJSON(status, ErrorResponse{Error: msg})
	case errors.Is(err, store.ErrNotFound), errors.Is(err, session.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, syncer.ErrNoToken):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "vehicle log is not available yet"})
	default:
		logger.Get(c.Request.Context()).Errorf("Request failed: %v", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// badRequest writes a 400 for a body or query that failed binding.
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

// upstreamToken returns the upstream token of the authenticated session.
func upstreamToken(c *gin.Context) string {
	if s := mw.GetSession(c); s != nil {
		return s.UpstreamToken
	}
	return ""
}
