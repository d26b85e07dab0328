package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-console-backend/internal/apperror"
	"hotel-console-backend/internal/logfilter"
	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/model"
	"hotel-console-backend/internal/parse"
	"hotel-console-backend/internal/syncer"
)

// mutationRefreshTimeout bounds the background refresh started after a write.
const mutationRefreshTimeout = 30 * time.Second

// ListSlots handles GET /api/parking/slots?status=.
func (h *Handler) ListSlots(c *gin.Context) {
	var status model.SlotStatus
	if raw := c.Query("status"); raw != "" && raw != logfilter.All {
		status = model.SlotStatus(raw)
		if !status.Valid() {
			h.fail(c, apperror.New(http.StatusBadRequest, fmt.Sprintf("unknown slot status %q", raw)))
			return
		}
	}

	slots, err := h.upstream.Slots(c.Request.Context(), upstreamToken(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if status != "" {
		kept := slots[:0]
		for _, s := range slots {
			if s.Status == status {
				kept = append(kept, s)
			}
		}
		slots = kept
	}
	c.JSON(http.StatusOK, slots)
}

// AvailableSlots handles GET /api/parking/slots/available?type=.
func (h *Handler) AvailableSlots(c *gin.Context) {
	vt := model.VehicleType(c.Query("type"))
	if !vt.Valid() {
		h.fail(c, apperror.New(http.StatusBadRequest, fmt.Sprintf("unknown vehicle type %q", vt)))
		return
	}
	slots, err := h.upstream.AvailableSlots(c.Request.Context(), upstreamToken(c), vt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// CreateSlot handles POST /api/parking/slots.
func (h *Handler) CreateSlot(c *gin.Context) {
	var req model.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.Type.Valid() {
		h.fail(c, apperror.New(http.StatusBadRequest, fmt.Sprintf("unknown vehicle type %q", req.Type)))
		return
	}

	slot, err := h.upstream.CreateSlot(c.Request.Context(), upstreamToken(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.cache.Invalidate()
	c.JSON(http.StatusCreated, slot)
}

// ParkVehicle handles POST /api/parking/vehicles/park.
func (h *Handler) ParkVehicle(c *gin.Context) {
	var req model.ParkVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !req.VehicleType.Valid() {
		h.fail(c, apperror.New(http.StatusBadRequest, fmt.Sprintf("unknown vehicle type %q", req.VehicleType)))
		return
	}
	req.VehicleNumber = parse.NormalizeVehicleNumber(req.VehicleNumber)

	activity, err := h.upstream.ParkVehicle(c.Request.Context(), upstreamToken(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.afterMutation(c)
	c.JSON(http.StatusCreated, activity)
}

// ExitVehicle handles PUT /api/parking/vehicles/:id/exit.
func (h *Handler) ExitVehicle(c *gin.Context) {
	activity, err := h.upstream.ExitVehicle(c.Request.Context(), upstreamToken(c), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.afterMutation(c)
	c.JSON(http.StatusOK, activity)
}

type parkedVehicle struct {
	model.VehicleActivity
	Duration logfilter.Duration `json:"duration"`
	Elapsed  string             `json:"elapsed"`
}

// ParkedVehicles handles GET /api/parking/vehicles.
func (h *Handler) ParkedVehicles(c *gin.Context) {
	records, err := h.upstream.ParkedVehicles(c.Request.Context(), upstreamToken(c))
	if err != nil {
		h.fail(c, err)
		return
	}

	now := h.engine.Now()
	out := make([]parkedVehicle, 0, len(records))
	for _, r := range records {
		pv := parkedVehicle{VehicleActivity: r, Elapsed: "-"}
		if d, err := logfilter.ComputeDuration(r.EntryTime, r.ExitTime, now); err == nil {
			pv.Duration, pv.Elapsed = d, d.String()
		}
		out = append(out, pv)
	}
	c.JSON(http.StatusOK, out)
}

// ParkingStats handles GET /api/parking/stats.
func (h *Handler) ParkingStats(c *gin.Context) {
	stats, err := h.upstream.ParkingStats(c.Request.Context(), upstreamToken(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// afterMutation drops cached reads and refreshes the snapshot in the
// background with the caller's token.
func (h *Handler) afterMutation(c *gin.Context) {
	h.cache.Invalidate()

	token := upstreamToken(c)
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		ctx, cancel := context.WithTimeout(ctx, mutationRefreshTimeout)
		defer cancel()
		if _, err := h.syncer.Refresh(ctx, token, syncer.TriggerMutation); err != nil {
			logger.Get(ctx).Warnf("Refresh after mutation failed: %v", err)
		}
	}()
}
