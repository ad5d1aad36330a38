package matchmaking

import (
	"context"

	"github.com/mauv0809/permutatum/internal/graph"
)

// Finder discovers exchange cycles and near-complete cycles in a snapshot graph.
// Implementations are pure functions of (graph, query, seen) and never modify
// the seen set they are given.
type Finder interface {
	// FindCycles returns complete cycles of q.Length through q.Origin and
	// q.Destination that are not already in seen.
	FindCycles(ctx context.Context, g *graph.Graph, q Query, seen Seen) (Result, error)

	// FindGaps returns cycles of q.Length that miss exactly one participant.
	// For length 2 the origin and destination act as optional filters.
	FindGaps(ctx context.Context, g *graph.Graph, q Query, seen Seen) (GapResult, error)
}
