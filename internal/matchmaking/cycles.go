package matchmaking

import (
	"context"
	"fmt"
	"strings"

	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/graph"
	"github.com/mauv0809/permutatum/internal/participant"
)

type finder struct{}

// New returns the brute-force Finder. It walks the origin buckets of the graph
// in snapshot order, so results are stable for a stable snapshot.
func New() Finder {
	return finder{}
}

// run carries the state of one search: the keys already known, the limit and
// the cancellation signal, checked between candidates.
type run struct {
	ctx   context.Context
	seen  Seen
	limit int
	count int
	full  bool
	cause error
}

func newRun(ctx context.Context, seen Seen, limit int) *run {
	return &run{ctx: ctx, seen: seen.clone(), limit: limit}
}

// admit records k and reports whether the result is new. It flips full once
// the limit is reached.
func (r *run) admit(k Key) bool {
	if r.seen.Has(k) {
		return false
	}
	r.seen.Add(k)
	r.count++
	if r.limit > 0 && r.count >= r.limit {
		r.full = true
	}
	return true
}

// stop reports whether the search must end, either because the limit was
// reached or because the context is done.
func (r *run) stop() bool {
	if r.full || r.cause != nil {
		return true
	}
	if err := r.ctx.Err(); err != nil {
		r.cause = err
		return true
	}
	return false
}

func (r *run) err(what string) error {
	if r.cause != nil {
		return fmt.Errorf("%s interrupted: %w", what, r.cause)
	}
	return nil
}

func sequence(courts ...court.Court) string {
	if len(courts) == 2 {
		return fmt.Sprintf("%s ↔ %s", courts[0], courts[1])
	}
	parts := make([]string, 0, len(courts)+1)
	for _, c := range courts {
		parts = append(parts, string(c))
	}
	parts = append(parts, string(courts[0]))
	return strings.Join(parts, " → ")
}

// destinations returns the courts p may move to under the rank restriction.
func destinations(p participant.Participant, rank1Only bool) []court.Court {
	if rank1Only {
		if p.Rank1 == "" {
			return nil
		}
		return []court.Court{p.Rank1}
	}
	ds := p.Destinations()
	out := make([]court.Court, len(ds))
	for i, d := range ds {
		out[i] = d.Court
	}
	return out
}

func (f finder) FindCycles(ctx context.Context, g *graph.Graph, q Query, seen Seen) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}
	r := newRun(ctx, seen, q.Limit)
	res := Result{Cycles: []Cycle{}}
	emit := func(courts []court.Court, members ...participant.Participant) {
		seq := sequence(courts...)
		k := keyOf(seq, members...)
		if !r.admit(k) {
			return
		}
		c := Cycle{Key: k, Courts: courts, Sequence: seq, Level: q.level(), Members: make([]Member, len(members))}
		for i, m := range members {
			next := courts[(i+1)%len(courts)]
			c.Members[i] = Member{Participant: m, Rank: m.RankOf(next)}
		}
		res.Cycles = append(res.Cycles, c)
	}

	switch q.Length {
	case 2:
		f.directSwaps(g, q, r, emit)
	case 3:
		f.triangulations(g, q, r, emit)
	case 4:
		f.quadrangulations(g, q, r, emit)
	}
	res.Truncated = r.full
	return res, r.err("cycle search")
}

type emitFunc func(courts []court.Court, members ...participant.Participant)

func (finder) directSwaps(g *graph.Graph, q Query, r *run, emit emitFunc) {
	o, d, rank1 := q.Origin, q.Destination, q.rank1Only()
	for _, p1 := range g.OriginsAt(o) {
		if r.stop() {
			return
		}
		if !graph.Wants(p1, d, rank1) {
			continue
		}
		for _, p2 := range g.OriginsAt(d) {
			if !graph.Wants(p2, o, rank1) {
				continue
			}
			emit([]court.Court{o, d}, p1, p2)
			if r.stop() {
				return
			}
		}
	}
}

func (finder) triangulations(g *graph.Graph, q Query, r *run, emit emitFunc) {
	o, d, rank1 := q.Origin, q.Destination, q.rank1Only()
	for _, p1 := range g.OriginsAt(o) {
		for _, mid := range destinations(p1, rank1) {
			if mid == d || mid == o {
				continue
			}
			for _, p2 := range g.OriginsAt(mid) {
				if r.stop() {
					return
				}
				if !graph.Wants(p2, d, rank1) {
					continue
				}
				for _, p3 := range g.OriginsAt(d) {
					if !graph.Wants(p3, o, rank1) {
						continue
					}
					emit([]court.Court{o, mid, d}, p1, p2, p3)
					if r.stop() {
						return
					}
				}
			}
		}
	}
}

func (finder) quadrangulations(g *graph.Graph, q Query, r *run, emit emitFunc) {
	o, d := q.Origin, q.Destination
	for _, p1 := range g.OriginsAt(o) {
		a := p1.Rank1
		if a == "" || a == o || a == d {
			continue
		}
		for _, p2 := range g.OriginsAt(a) {
			if r.stop() {
				return
			}
			b := p2.Rank1
			if b == "" || b == o || b == a || b == d {
				continue
			}
			for _, p3 := range g.OriginsAt(b) {
				if p3.Rank1 != d {
					continue
				}
				for _, p4 := range g.OriginsAt(d) {
					if p4.Rank1 != o {
						continue
					}
					emit([]court.Court{o, a, b, d}, p1, p2, p3, p4)
					if r.stop() {
						return
					}
				}
			}
		}
	}
}
