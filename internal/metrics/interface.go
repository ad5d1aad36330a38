package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncSearches(kind string)
	ObserveSearchDuration(kind string, duration float64)
	ObserveSearchResults(kind string, count int)
	IncSearchesTruncated(kind string)
	IncSearchesInterrupted(kind string)
	IncSnapshotCacheHits()
	IncSnapshotCacheMisses()
	IncNotificationsEmitted()
	IncNotificationsFailed()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	IncHookRuns()
	SetStartupTime(duration float64)
}

// UsageStore persists running totals that survive restarts, such as the number
// of searches per kind.
type UsageStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
