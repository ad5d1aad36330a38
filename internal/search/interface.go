package search

import (
	"context"
	"time"

	"github.com/mauv0809/permutatum/internal/graph"
	"github.com/mauv0809/permutatum/internal/participant"
)

// Snapshots supplies the indexed snapshot a search runs on.
type Snapshots interface {
	Graph(ctx context.Context) (*graph.Graph, error)
}

// RecentLister lists registrations made since a point in time.
type RecentLister interface {
	ListRecent(ctx context.Context, since time.Time) ([]participant.Participant, error)
}
