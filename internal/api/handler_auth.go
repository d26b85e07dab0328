package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-console-backend/internal/model"
	"hotel-console-backend/internal/mw"
	"hotel-console-backend/internal/session"
	"hotel-console-backend/internal/upstream"
)

type loginResponse struct {
	Token     string     `json:"token"`
	User      model.User `json:"user"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var creds model.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, err)
		return
	}

	s, token, err := h.sessions.Login(c.Request.Context(), creds)
	if err != nil {
		var upstreamErr *upstream.Error
		if errors.Is(err, upstream.ErrUnauthorized) ||
			(errors.As(err, &upstreamErr) && upstreamErr.Status >= 400 && upstreamErr.Status < 500) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid username or password"})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{Token: token, User: s.User, ExpiresAt: s.ExpiresAt})
}

// Me handles GET /api/auth/me. The upstream token is re-validated on every
// call; a rejected token ends the console session.
func (h *Handler) Me(c *gin.Context) {
	s := mw.GetSession(c)
	user, err := h.sessions.Validate(c.Request.Context(), s)
	if errors.Is(err, session.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "session expired, please log in again"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	if s := mw.GetSession(c); s != nil {
		h.sessions.Logout(c.Request.Context(), s.ID)
	}
	c.Status(http.StatusNoContent)
}
