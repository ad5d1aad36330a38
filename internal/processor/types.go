package processor

import (
	"github.com/mauv0809/permutatum/internal/matchmaking"
	"github.com/mauv0809/permutatum/internal/metrics"
	"github.com/mauv0809/permutatum/internal/pubsub"
)

// Processor runs the post-write notification hook.
type Processor struct {
	store     Store
	snapshots Snapshots
	finder    matchmaking.Finder
	pubsub    pubsub.PubSubClient
	notifier  Notifier
	metrics   metrics.Metrics
}
