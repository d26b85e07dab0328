package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotel-console-backend/internal/syncer"
)

type healthResponse struct {
	Status   string        `json:"status"`
	Database string        `json:"database"`
	Sync     syncer.Status `json:"sync"`
	Sessions int           `json:"sessions"`
}

// Health handles GET /healthz. It fails only when the database is
// unreachable; a stale snapshot is reported but still healthy.
func (h *Handler) Health(c *gin.Context) {
	resp := healthResponse{
		Status:   "ok",
		Database: "ok",
		Sync:     h.syncer.Status(),
		Sessions: h.sessions.Count(),
	}
	if err := h.store.Ping(c.Request.Context()); err != nil {
		resp.Status, resp.Database = "degraded", err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
