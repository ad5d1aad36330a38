package processor

import (
	"context"

	"github.com/mauv0809/permutatum/internal/notifier"
	"github.com/mauv0809/permutatum/internal/participant"
)

// Store defines the participant lookups required by the processor.
type Store interface {
	Get(ctx context.Context, id string) (*participant.Participant, error)
}

// Snapshots supplies an uncached active-participant snapshot.
type Snapshots interface {
	Fresh(ctx context.Context) ([]participant.Participant, error)
}

// Notifier defines the notification operations required by the processor.
// This is an alias for the main notifier interface for decoupling.
type Notifier interface {
	notifier.Notifier
}
