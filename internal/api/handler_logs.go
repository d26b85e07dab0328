package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hotel-console-backend/internal/apperror"
	"hotel-console-backend/internal/logfilter"
	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/metrics"
	"hotel-console-backend/internal/model"
	"hotel-console-backend/internal/parse"
	"hotel-console-backend/internal/syncer"
)

// logItem is one row of the vehicle log as the console renders it.
type logItem struct {
	model.VehicleActivity
	Duration   string     `json:"duration"`
	StatusTone model.Tone `json:"statusTone"`
}

type logsResponse struct {
	Items   []logItem         `json:"items"`
	Summary logfilter.Summary `json:"summary"`
	Tabs    logfilter.Tabs    `json:"tabs"`
}

// snapshot returns the stored activity history, refreshing it first with the
// caller's token if nothing has been synced since startup.
func (h *Handler) snapshot(c *gin.Context) ([]model.VehicleActivity, error) {
	ctx := c.Request.Context()
	if !h.syncer.Synced() {
		if _, err := h.syncer.Refresh(ctx, upstreamToken(c), syncer.TriggerFirstRead); err != nil {
			return nil, err
		}
	}
	return h.store.ListActivities(ctx)
}

// filtered parses the filter query and applies it to the snapshot.
func (h *Handler) filtered(c *gin.Context) (all, shown []model.VehicleActivity, err error) {
	spec, err := parse.ParseFilterSpec(c.Request.URL.Query(), h.engine.Location())
	if err != nil {
		return nil, nil, err
	}
	all, err = h.snapshot(c)
	if err != nil {
		return nil, nil, err
	}
	return all, h.engine.Apply(all, spec), nil
}

// GetLogs handles GET /api/parking/logs.
func (h *Handler) GetLogs(c *gin.Context) {
	all, shown, err := h.filtered(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	summary := logfilter.Aggregate(shown)
	now := h.engine.Now()
	items := make([]logItem, 0, len(shown))
	for _, r := range shown {
		item := logItem{VehicleActivity: r, Duration: "-", StatusTone: r.Status.Tone()}
		if d, err := logfilter.ComputeDuration(r.EntryTime, r.ExitTime, now); err == nil {
			item.Duration = d.String()
		}
		items = append(items, item)
	}
	reportWarnings(c.Request.Context(), summary.Warnings)

	c.JSON(http.StatusOK, logsResponse{
		Items:   items,
		Summary: summary,
		Tabs:    logfilter.TabCounts(all),
	})
}

// ExportLogs handles GET /api/parking/logs/export?format=csv|pdf. The
// filtered log is rendered into memory first so a failure still yields a
// JSON error instead of a truncated attachment.
func (h *Handler) ExportLogs(c *gin.Context) {
	format := logfilter.Format(strings.ToLower(c.DefaultQuery("format", string(logfilter.FormatCSV))))
	if !format.Valid() {
		h.fail(c, apperror.New(http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", format)))
		return
	}

	_, shown, err := h.filtered(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	var (
		buf      bytes.Buffer
		warnings []logfilter.Warning
	)
	switch format {
	case logfilter.FormatPDF:
		warnings, err = h.engine.ExportPDF(&buf, shown, logfilter.Aggregate(shown))
	default:
		warnings, err = h.engine.ExportCSV(&buf, shown)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	reportWarnings(c.Request.Context(), warnings)
	metrics.Exports.WithLabelValues(string(format)).Inc()

	filename := h.engine.ExportFilename(h.engine.Now(), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// RefreshLogs handles POST /api/parking/logs/refresh.
func (h *Handler) RefreshLogs(c *gin.Context) {
	res, err := h.syncer.Refresh(c.Request.Context(), upstreamToken(c), syncer.TriggerManual)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func reportWarnings(ctx context.Context, warnings []logfilter.Warning) {
	if len(warnings) == 0 {
		return
	}
	log := logger.Get(ctx)
	for _, w := range warnings {
		log.Warnw("vehicle log data warning", "record_id", w.RecordID, "kind", string(w.Kind), "detail", w.Detail)
		metrics.DataWarnings.WithLabelValues(string(w.Kind)).Inc()
	}
}
