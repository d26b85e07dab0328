package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncCycles counts snapshot refreshes by trigger and result.
	SyncCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_sync_cycles_total",
			Help: "Activity snapshot refreshes by trigger and result",
		},
		[]string{"trigger", "result"},
	)
	SnapshotRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_snapshot_records",
			Help: "Vehicle activity records currently held in the snapshot",
		},
	)
	RejectedRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "console_rejected_records_total",
			Help: "Malformed vehicle activity records dropped at decode",
		},
	)
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_upstream_requests_total",
			Help: "Requests made to the upstream service by endpoint and status code",
		},
		[]string{"endpoint", "code"},
	)
	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_exports_total",
			Help: "Vehicle log exports by format",
		},
		[]string{"format"},
	)
	DataWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_data_warnings_total",
			Help: "Data-integrity warnings raised while rendering the vehicle log",
		},
		[]string{"kind"},
	)
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_notifications_total",
			Help: "Vehicle exit push notifications by result",
		},
		[]string{"result"},
	)
)
