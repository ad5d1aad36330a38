package snapshot

import (
	"context"

	"github.com/mauv0809/permutatum/internal/participant"
)

// Cache keeps the most recent active-participant snapshot for a bounded time.
// A miss is reported with ok == false and a nil error.
//
// Every Invalidate bumps the cache version. Set only stores a snapshot when the
// version is still the one read before the snapshot was fetched, so a read that
// overlaps a write cannot put the pre-write snapshot back.
type Cache interface {
	Get(ctx context.Context) (snapshot []participant.Participant, ok bool, err error)
	Version(ctx context.Context) (uint64, error)
	Set(ctx context.Context, snapshot []participant.Participant, version uint64) (stored bool, err error)
	Invalidate(ctx context.Context) error
}
