package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/mauv0809/permutatum/internal/participant"
)

var _ Cache = (*MemoryCache)(nil)

// MemoryCache is a process-local Cache. A zero or negative ttl disables caching.
type MemoryCache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	version  uint64
	snapshot []participant.Participant
	expires  time.Time
}

// NewMemoryCache creates a cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(ctx context.Context) ([]participant.Participant, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil || !c.now().Before(c.expires) {
		return nil, false, nil
	}
	return c.snapshot, true, nil
}

func (c *MemoryCache) Version(ctx context.Context) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version, nil
}

func (c *MemoryCache) Set(ctx context.Context, snapshot []participant.Participant, version uint64) (bool, error) {
	if c.ttl <= 0 {
		return false, nil
	}
	stored := make([]participant.Participant, len(snapshot))
	copy(stored, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version {
		return false, nil
	}
	c.snapshot = stored
	c.expires = c.now().Add(c.ttl)
	return true, nil
}

func (c *MemoryCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.snapshot = nil
	return nil
}
