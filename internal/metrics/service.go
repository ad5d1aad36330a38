package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "permutatum_searches_total",
			Help: "The total number of searches run, by kind.",
		}, []string{"kind"}),
		SearchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "permutatum_search_duration_seconds",
			Help:    "The duration of searches, snapshot load included.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"kind"}),
		SearchResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "permutatum_search_results",
			Help:    "The number of results returned per search.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 250},
		}, []string{"kind"}),
		SearchesTruncated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "permutatum_searches_truncated_total",
			Help: "The total number of searches that stopped at their result limit.",
		}, []string{"kind"}),
		SearchesInterrupted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "permutatum_searches_interrupted_total",
			Help: "The total number of searches cut short by cancellation or deadline.",
		}, []string{"kind"}),
		SnapshotCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "permutatum_snapshot_cache_hits_total",
			Help: "The total number of snapshot loads served from cache.",
		}),
		SnapshotCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "permutatum_snapshot_cache_misses_total",
			Help: "The total number of snapshot loads that went to the participant store.",
		}),
		NotificationsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "permutatum_notifications_emitted_total",
			Help: "The total number of match notifications emitted.",
		}),
		NotificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "permutatum_notifications_failed_total",
			Help: "The total number of match notifications that could not be emitted.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "permutatum_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "permutatum_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		HookRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "permutatum_notification_hook_runs_total",
			Help: "The total number of participant-changed events handled.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "permutatum_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Searches,
		s.SearchDuration,
		s.SearchResults,
		s.SearchesTruncated,
		s.SearchesInterrupted,
		s.SnapshotCacheHits,
		s.SnapshotCacheMisses,
		s.NotificationsEmitted,
		s.NotificationsFailed,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.HookRuns,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncSearches(kind string) {
	s.Searches.WithLabelValues(kind).Inc()
}

func (s *Service) ObserveSearchDuration(kind string, duration float64) {
	s.SearchDuration.WithLabelValues(kind).Observe(duration)
}

func (s *Service) ObserveSearchResults(kind string, count int) {
	s.SearchResults.WithLabelValues(kind).Observe(float64(count))
}

func (s *Service) IncSearchesTruncated(kind string) {
	s.SearchesTruncated.WithLabelValues(kind).Inc()
}

func (s *Service) IncSearchesInterrupted(kind string) {
	s.SearchesInterrupted.WithLabelValues(kind).Inc()
}

func (s *Service) IncSnapshotCacheHits() {
	s.SnapshotCacheHits.Inc()
}

func (s *Service) IncSnapshotCacheMisses() {
	s.SnapshotCacheMisses.Inc()
}

func (s *Service) IncNotificationsEmitted() {
	s.NotificationsEmitted.Inc()
}

func (s *Service) IncNotificationsFailed() {
	s.NotificationsFailed.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) IncHookRuns() {
	s.HookRuns.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
