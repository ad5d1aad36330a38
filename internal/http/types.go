package http

import (
	"net/http"

	"github.com/mauv0809/permutatum/internal/config"
	"github.com/mauv0809/permutatum/internal/metrics"
	"github.com/mauv0809/permutatum/internal/notifier"
	"github.com/mauv0809/permutatum/internal/participant"
	"github.com/mauv0809/permutatum/internal/processor"
	"github.com/mauv0809/permutatum/internal/pubsub"
	"github.com/mauv0809/permutatum/internal/registry"
	"github.com/mauv0809/permutatum/internal/search"
	"github.com/mauv0809/permutatum/internal/snapshot"
)

// Services are the collaborators the HTTP layer exposes.
type Services struct {
	Participants   participant.Store
	Registry       *registry.Service
	Search         *search.Service
	Snapshots      *snapshot.Loader
	Inbox          notifier.Inbox
	Processor      *processor.Processor
	PubSub         pubsub.PubSubClient
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Usage          metrics.UsageStore
}

type Server struct {
	Services
	Cfg     config.Config
	Router  *http.ServeMux
	limiter *IPRateLimiter
}
