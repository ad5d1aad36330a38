// Package snapshot supplies the active-participant snapshot every search runs
// on. Snapshots may be served from a short-lived cache; every write to the
// participant store must call Invalidate.
package snapshot

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/permutatum/internal/graph"
	"github.com/mauv0809/permutatum/internal/metrics"
	"github.com/mauv0809/permutatum/internal/participant"
)

// Source fetches the full active-participant list.
type Source interface {
	FetchActive(ctx context.Context) ([]participant.Participant, error)
}

// Loader reads snapshots through the cache. Cache failures are logged and the
// store is used directly; store failures are returned unchanged.
type Loader struct {
	source  Source
	cache   Cache
	metrics metrics.Metrics
}

// NewLoader creates a loader. A nil cache disables caching.
func NewLoader(source Source, cache Cache, m metrics.Metrics) *Loader {
	return &Loader{source: source, cache: cache, metrics: m}
}

// Load returns the current snapshot. The cache version is read before the
// store so that a write invalidated during the fetch keeps its result out of
// the cache.
func (l *Loader) Load(ctx context.Context) ([]participant.Participant, error) {
	logger := log.FromContext(ctx)
	cacheable := false
	var version uint64
	if l.cache != nil {
		snapshot, ok, err := l.cache.Get(ctx)
		switch {
		case err != nil:
			logger.Warn("Snapshot cache read failed, using store", "error", err)
		case ok:
			l.metrics.IncSnapshotCacheHits()
			logger.Debug("Snapshot served from cache", "participants", len(snapshot))
			return snapshot, nil
		}
		if version, err = l.cache.Version(ctx); err != nil {
			logger.Warn("Snapshot cache version unavailable, not caching", "error", err)
		} else {
			cacheable = true
		}
	}
	l.metrics.IncSnapshotCacheMisses()

	snapshot, err := l.source.FetchActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active participants: %w", err)
	}
	if cacheable {
		stored, err := l.cache.Set(ctx, snapshot, version)
		switch {
		case err != nil:
			logger.Warn("Failed to cache snapshot", "error", err)
		case !stored:
			logger.Debug("Snapshot not cached, caching disabled or invalidated while loading", "version", version)
		}
	}
	logger.Debug("Snapshot loaded from store", "participants", len(snapshot))
	return snapshot, nil
}

// Fresh bypasses the cache. The notification hook uses it so that it always
// sees the write that triggered it.
func (l *Loader) Fresh(ctx context.Context) ([]participant.Participant, error) {
	snapshot, err := l.source.FetchActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active participants: %w", err)
	}
	return snapshot, nil
}

// Graph loads the snapshot and indexes it.
func (l *Loader) Graph(ctx context.Context) (*graph.Graph, error) {
	snapshot, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return graph.Build(snapshot), nil
}

// Invalidate drops the cached snapshot. Errors are logged only.
func (l *Loader) Invalidate(ctx context.Context) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Invalidate(ctx); err != nil {
		log.FromContext(ctx).Error("Failed to invalidate snapshot cache", "error", err)
		return
	}
	log.FromContext(ctx).Debug("Snapshot cache invalidated")
}
