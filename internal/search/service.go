// Package search exposes the matching engine to callers. Each call loads a
// snapshot, runs under the configured deadline and is traced and counted.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/graph"
	"github.com/mauv0809/permutatum/internal/matchmaking"
	"github.com/mauv0809/permutatum/internal/metrics"
	"github.com/mauv0809/permutatum/internal/participant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// New creates a search service. usage may be nil.
func New(snapshots Snapshots, recent RecentLister, m metrics.Metrics, usage metrics.UsageStore, cfg Config) *Service {
	return &Service{
		snapshots: snapshots,
		recent:    recent,
		finder:    matchmaking.New(),
		metrics:   m,
		usage:     usage,
		tracer:    otel.Tracer("github.com/mauv0809/permutatum/internal/search"),
		timeout:   cfg.Timeout,
		now:       time.Now,
	}
}

// WithTracer replaces the tracer taken from the global provider.
func (s *Service) WithTracer(t trace.Tracer) *Service {
	s.tracer = t
	return s
}

type finishFunc func(results int, truncated bool, err error)

// begin starts the span, the deadline and the counters of one search.
func (s *Service) begin(ctx context.Context, kind, operation string, attrs ...attribute.KeyValue) (context.Context, finishFunc) {
	attrs = append(attrs, attribute.String("search.kind", kind))
	ctx, span := s.tracer.Start(ctx, operation, trace.WithAttributes(attrs...))

	cancel := context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
	}

	s.metrics.IncSearches(kind)
	if s.usage != nil {
		s.usage.Increment("search_" + kind)
	}
	start := time.Now()
	logger := log.FromContext(ctx)

	return ctx, func(results int, truncated bool, err error) {
		defer span.End()
		defer cancel()

		s.metrics.ObserveSearchDuration(kind, time.Since(start).Seconds())
		span.SetAttributes(attribute.Int("search.results", results), attribute.Bool("search.truncated", truncated))
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				s.metrics.IncSearchesInterrupted(kind)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if errors.Is(err, context.Canceled) {
				logger.Debug("Search canceled by caller", "kind", kind)
				return
			}
			logger.Warn("Search failed", "kind", kind, "error", err)
			return
		}
		s.metrics.ObserveSearchResults(kind, results)
		if truncated {
			s.metrics.IncSearchesTruncated(kind)
		}
		logger.Debug("Search finished", "kind", kind, "results", results, "truncated", truncated, "duration", time.Since(start))
	}
}

func (s *Service) graph(ctx context.Context) (*graph.Graph, error) {
	g, err := s.snapshots.Graph(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return g, nil
}

func queryAttrs(q matchmaking.Query) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("search.origin", string(q.Origin)),
		attribute.String("search.destination", string(q.Destination)),
		attribute.Int("search.length", q.Length),
		attribute.Bool("search.priority_only", q.PriorityOnly),
		attribute.Int("search.limit", q.Limit),
	}
}

// Cycles runs findCycles. Invalid queries are rejected before any snapshot is
// loaded. seen holds keys returned by earlier pages.
func (s *Service) Cycles(ctx context.Context, q matchmaking.Query, seen []matchmaking.Key) (matchmaking.Result, error) {
	if err := q.Validate(); err != nil {
		return matchmaking.Result{}, err
	}
	ctx, finish := s.begin(ctx, KindCycles, "SearchService.Cycles", queryAttrs(q)...)

	g, err := s.graph(ctx)
	if err != nil {
		finish(0, false, err)
		return matchmaking.Result{}, err
	}
	res, err := s.finder.FindCycles(ctx, g, q, matchmaking.NewSeen(seen...))
	finish(len(res.Cycles), res.Truncated, err)
	return res, err
}

// Gaps runs findGaps.
func (s *Service) Gaps(ctx context.Context, q matchmaking.Query, seen []matchmaking.Key) (matchmaking.GapResult, error) {
	if err := q.ValidateGaps(); err != nil {
		return matchmaking.GapResult{}, err
	}
	ctx, finish := s.begin(ctx, KindGaps, "SearchService.Gaps", queryAttrs(q)...)

	g, err := s.graph(ctx)
	if err != nil {
		finish(0, false, err)
		return matchmaking.GapResult{}, err
	}
	res, err := s.finder.FindGaps(ctx, g, q, matchmaking.NewSeen(seen...))
	finish(len(res.Gaps), res.Truncated, err)
	return res, err
}

// Unpaired lists participants without a direct swap partner for their first
// choice, grouped by route. Empty courts match everything.
func (s *Service) Unpaired(ctx context.Context, origin, destination court.Court, limit int) (UnpairedResult, error) {
	q := matchmaking.Query{Origin: origin, Destination: destination, Length: 2, PriorityOnly: true, Limit: limit}
	if err := q.ValidateGaps(); err != nil {
		return UnpairedResult{}, err
	}
	ctx, finish := s.begin(ctx, KindUnpaired, "SearchService.Unpaired", queryAttrs(q)...)

	g, err := s.graph(ctx)
	if err != nil {
		finish(0, false, err)
		return UnpairedResult{}, err
	}
	res, err := s.finder.FindGaps(ctx, g, q, nil)
	finish(len(res.Gaps), res.Truncated, err)
	if err != nil {
		return UnpairedResult{}, err
	}
	groups := matchmaking.GroupByRoute(res.Gaps)
	if groups == nil {
		groups = []matchmaking.RouteGroup{}
	}
	return UnpairedResult{Groups: groups, Total: len(res.Gaps), Truncated: res.Truncated}, nil
}

// Interested lists participants from other courts who want to move to c.
func (s *Service) Interested(ctx context.Context, c court.Court) ([]graph.Interest, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: unknown court %q", court.ErrInvalidSelection, c)
	}
	ctx, finish := s.begin(ctx, KindInterested, "SearchService.Interested", attribute.String("search.court", string(c)))

	g, err := s.graph(ctx)
	if err != nil {
		finish(0, false, err)
		return nil, err
	}
	out := g.Interested(c)
	if out == nil {
		out = []graph.Interest{}
	}
	finish(len(out), false, nil)
	return out, nil
}

// Destinations lists the participants currently at any of p's destinations.
func (s *Service) Destinations(ctx context.Context, p participant.Participant) ([]participant.Participant, error) {
	ctx, finish := s.begin(ctx, KindDestinations, "SearchService.Destinations", attribute.String("search.origin", string(p.Origin)))

	g, err := s.graph(ctx)
	if err != nil {
		finish(0, false, err)
		return nil, err
	}
	var courts []court.Court
	for _, d := range p.Destinations() {
		courts = append(courts, d.Court)
	}
	out := []participant.Participant{}
	for _, other := range g.Available(courts) {
		if other.ID != p.ID {
			out = append(out, other)
		}
	}
	finish(len(out), false, nil)
	return out, nil
}

// Stats summarises the current snapshot. top <= 0 keeps every court.
func (s *Service) Stats(ctx context.Context, top int) (graph.Stats, error) {
	ctx, finish := s.begin(ctx, KindStats, "SearchService.Stats")

	g, err := s.graph(ctx)
	if err != nil {
		finish(0, false, err)
		return graph.Stats{}, err
	}
	stats := g.Stats(top)
	finish(stats.Participants, false, nil)
	return stats, nil
}

// Recent lists active participants registered in the last days days, newest
// first. days <= 0 uses DefaultRecentDays.
func (s *Service) Recent(ctx context.Context, days int) ([]participant.Participant, error) {
	if days <= 0 {
		days = DefaultRecentDays
	}
	ctx, finish := s.begin(ctx, KindRecent, "SearchService.Recent", attribute.Int("search.days", days))

	since := s.now().AddDate(0, 0, -days)
	out, err := s.recent.ListRecent(ctx, since)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		finish(0, false, err)
		return nil, err
	}
	if out == nil {
		out = []participant.Participant{}
	}
	finish(len(out), false, nil)
	return out, nil
}
