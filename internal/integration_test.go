package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hotel-console-backend/config"
	"hotel-console-backend/internal/db"
	"hotel-console-backend/internal/logfilter"
	"hotel-console-backend/internal/model"
	"hotel-console-backend/internal/notification"
	"hotel-console-backend/internal/store"
	"hotel-console-backend/internal/syncer"
	"hotel-console-backend/internal/upstream"
)

// scriptedUpstream serves one history response per refresh. A nil entry
// answers with a server error.
type scriptedUpstream struct {
	mu    sync.Mutex
	steps [][]map[string]any
	next  int
}

func (s *scriptedUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var step []map[string]any
	if s.next < len(s.steps) {
		step = s.steps[s.next]
	}
	s.next++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if step == nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "history unavailable"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": step})
}

func activity(id, number, status string, extra map[string]any) map[string]any {
	m := map[string]any{
		"_id": id, "vehicleNumber": number, "vehicleType": "car",
		"guestName": "Guest " + id, "guestRoom": "1" + id,
		"entryTime": "2024-03-15T08:00:00Z", "status": status,
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func newSnapshotDB(t *testing.T) *gorm.DB {
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func drain(jobs chan model.ExitEvent) []model.ExitEvent {
	var out []model.ExitEvent
	for {
		select {
		case ev := <-jobs:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// TestSnapshotLifecycle drives the syncer through successive upstream
// histories and checks the stored snapshot, the exit notifications and the
// cache invalidations at each step.
func TestSnapshotLifecycle(t *testing.T) {
	ctx := context.Background()

	up := &scriptedUpstream{steps: [][]map[string]any{
		// 1: A parked, B already gone when first seen
		{
			activity("A", "WP CAB-1234", "parked", nil),
			activity("B", "NB-4455", "exited", map[string]any{"exitTime": "2024-03-15T09:00:00Z", "totalAmount": 200}),
		},
		// 2: A leaves, C arrives, plus one malformed record
		{
			activity("A", "WP CAB-1234", "exited", map[string]any{"exitTime": "2024-03-15T10:30:00Z", "totalAmount": 450}),
			activity("B", "NB-4455", "exited", map[string]any{"exitTime": "2024-03-15T09:00:00Z", "totalAmount": 200}),
			activity("C", "BAA-0001", "parked", map[string]any{"entryTime": "2024-03-15T11:00:00Z"}),
			{"vehicleNumber": "XX-0000", "status": "parked"},
		},
		// 3: upstream failure
		nil,
		// 4: A dropped from history
		{
			activity("B", "NB-4455", "exited", map[string]any{"exitTime": "2024-03-15T09:00:00Z", "totalAmount": 200}),
			activity("C", "BAA-0001", "parked", map[string]any{"entryTime": "2024-03-15T11:00:00Z"}),
		},
	}}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	st := store.NewGormStore(newSnapshotDB(t))
	client := upstream.New(config.UpstreamConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})
	pool := notification.NewWorkerPool(4, st, nil, "LKR")
	svc := syncer.NewService(config.SyncConfig{}, "service-token", client, st, pool)

	invalidations := 0
	svc.OnInvalidate(func() { invalidations++ })

	engine := logfilter.NewEngine(time.UTC, logfilter.WithClock(func() time.Time {
		return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	}))

	t.Run("first sync stores everything and notifies nobody", func(t *testing.T) {
		res, err := svc.Refresh(ctx, "", syncer.TriggerStartup)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Records)
		assert.Equal(t, 0, res.Exits)
		assert.Empty(t, drain(pool.Jobs()))
		assert.Equal(t, 1, invalidations)

		records, err := st.ListActivities(ctx)
		require.NoError(t, err)
		assert.Equal(t, logfilter.Tabs{All: 2, Parked: 1, Exited: 1}, logfilter.TabCounts(records))
	})

	t.Run("parked to exited is dispatched", func(t *testing.T) {
		res, err := svc.Refresh(ctx, "", syncer.TriggerTimer)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Records, "malformed record is dropped")
		assert.Equal(t, 1, res.Exits)

		events := drain(pool.Jobs())
		require.Len(t, events, 1)
		assert.Equal(t, "A", events[0].ActivityID)
		assert.Equal(t, "WP CAB-1234", events[0].VehicleNumber)
		require.NotNil(t, events[0].TotalAmount)
		assert.Equal(t, 450.0, *events[0].TotalAmount)
		assert.Equal(t, "Vehicle WP CAB-1234 (room 1A) has exited. Charged LKR 450.",
			notification.NewMessage(events[0], "LKR").Body)

		records, err := st.ListActivities(ctx)
		require.NoError(t, err)
		exited := engine.Apply(records, logfilter.FilterSpec{ViewTab: model.StatusExited})
		summary := logfilter.Aggregate(exited)
		assert.Equal(t, 2, summary.Count)
		assert.Equal(t, 650.0, summary.TotalRevenue)
		assert.Empty(t, summary.Warnings)
	})

	t.Run("failed fetch keeps the snapshot", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "", syncer.TriggerTimer)
		require.Error(t, err)
		assert.Equal(t, 2, invalidations, "no invalidation without a completed refresh")
		assert.Contains(t, svc.Status().LastError, "history unavailable")

		records, err := st.ListActivities(ctx)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("records missing upstream are removed", func(t *testing.T) {
		res, err := svc.Refresh(ctx, "", syncer.TriggerManual)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Exits)

		records, err := st.ListActivities(ctx)
		require.NoError(t, err)
		ids := make([]string, len(records))
		for i, r := range records {
			ids[i] = r.ID
		}
		assert.Equal(t, []string{"C", "B"}, ids)
		assert.Empty(t, svc.Status().LastError)
	})
}
