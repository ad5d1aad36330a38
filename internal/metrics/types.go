package metrics

import (
	"database/sql"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	Searches             *prometheus.CounterVec
	SearchDuration       *prometheus.HistogramVec
	SearchResults        *prometheus.HistogramVec
	SearchesTruncated    *prometheus.CounterVec
	SearchesInterrupted  *prometheus.CounterVec
	SnapshotCacheHits    prometheus.Counter
	SnapshotCacheMisses  prometheus.Counter
	NotificationsEmitted prometheus.Counter
	NotificationsFailed  prometheus.Counter
	SlackNotifSent       prometheus.Counter
	SlackNotifFailed     prometheus.Counter
	HookRuns             prometheus.Counter
	StartupTimeSeconds   prometheus.Gauge
}

// store handles usage counter database operations.
type store struct {
	db *sql.DB
	mu sync.Mutex
}
