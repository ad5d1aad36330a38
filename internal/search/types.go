package search

import (
	"errors"
	"time"

	"github.com/mauv0809/permutatum/internal/matchmaking"
	"github.com/mauv0809/permutatum/internal/metrics"
	"go.opentelemetry.io/otel/trace"
)

// ErrStoreUnavailable wraps failures to obtain a snapshot.
var ErrStoreUnavailable = errors.New("participant store unavailable")

// Search kinds, used as metric labels and usage counter keys.
const (
	KindCycles       = "cycles"
	KindGaps         = "gaps"
	KindUnpaired     = "unpaired"
	KindInterested   = "interested"
	KindDestinations = "destinations"
	KindStats        = "stats"
	KindRecent       = "recent"
)

// DefaultRecentDays is the window of the recent registrations listing.
const DefaultRecentDays = 60

// Config tunes a Service.
type Config struct {
	// Timeout bounds each search, snapshot load included. Zero disables it.
	Timeout time.Duration
}

// Service runs request-scoped searches over the current snapshot.
type Service struct {
	snapshots Snapshots
	recent    RecentLister
	finder    matchmaking.Finder
	metrics   metrics.Metrics
	usage     metrics.UsageStore
	tracer    trace.Tracer
	timeout   time.Duration
	now       func() time.Time
}

// UnpairedResult is the grouped listing of participants waiting for a direct
// swap partner.
type UnpairedResult struct {
	Groups    []matchmaking.RouteGroup `json:"groups"`
	Total     int                      `json:"total"`
	Truncated bool                     `json:"truncated"`
}
