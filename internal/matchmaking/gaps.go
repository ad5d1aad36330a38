package matchmaking

import (
	"context"
	"sort"

	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/graph"
	"github.com/mauv0809/permutatum/internal/participant"
)

func (f finder) FindGaps(ctx context.Context, g *graph.Graph, q Query, seen Seen) (GapResult, error) {
	if err := q.ValidateGaps(); err != nil {
		return GapResult{}, err
	}
	r := newRun(ctx, seen, q.Limit)
	res := GapResult{Gaps: []Gap{}}
	emit := func(seq string, missing Edge, known ...participant.Participant) {
		k := keyOf(seq, known...)
		if !r.admit(k) {
			return
		}
		res.Gaps = append(res.Gaps, Gap{
			Key:         k,
			Length:      q.Length,
			Known:       known,
			Missing:     missing,
			Description: missing.Description(),
			Sequence:    seq,
			Level:       q.level(),
		})
	}

	switch q.Length {
	case 2:
		f.unpaired(g, q, r, emit)
	case 3:
		f.triangleGaps(g, q, r, emit)
	case 4:
		f.quadrangleGaps(g, q, r, emit)
	}
	res.Truncated = r.full
	return res, r.err("gap search")
}

type gapEmitFunc func(seq string, missing Edge, known ...participant.Participant)

// unpaired lists participants whose first choice has nobody wanting their
// origin back at any rank. Origin and destination filter on the participant's
// origin and first choice when set.
func (finder) unpaired(g *graph.Graph, q Query, r *run, emit gapEmitFunc) {
	for _, p := range g.Participants() {
		if r.stop() {
			return
		}
		if p.Rank1 == "" || p.Rank1 == p.Origin {
			continue
		}
		if q.Origin != "" && p.Origin != q.Origin {
			continue
		}
		if q.Destination != "" && p.Rank1 != q.Destination {
			continue
		}
		if _, ok := g.FirstWanting(p.Rank1, p.Origin, false); ok {
			continue
		}
		emit(sequence(p.Origin, p.Rank1), Edge{From: p.Rank1, To: p.Origin, Position: 2}, p)
	}
}

// triangleGaps covers the two placements of a missing third participant:
// O → D → X → O lacking X → O, and O → I → D → O lacking D → O.
func (finder) triangleGaps(g *graph.Graph, q Query, r *run, emit gapEmitFunc) {
	o, d, rank1 := q.Origin, q.Destination, q.rank1Only()

	for _, p1 := range g.OriginsAt(o) {
		if !graph.Wants(p1, d, rank1) {
			continue
		}
		for _, p2 := range g.OriginsAt(d) {
			if r.stop() {
				return
			}
			for _, x := range destinations(p2, rank1) {
				if x == o || x == d {
					continue
				}
				if _, ok := g.FirstWanting(x, o, rank1); ok {
					continue
				}
				emit(sequence(o, d, x), Edge{From: x, To: o, Position: 3}, p1, p2)
				if r.stop() {
					return
				}
			}
		}
	}

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
				if _, ok := g.FirstWanting(d, o, rank1); ok {
					continue
				}
				emit(sequence(o, mid, d), Edge{From: d, To: o, Position: 3}, p1, p2)
				if r.stop() {
					return
				}
			}
		}
	}
}

// quadrangleGaps looks for O → A → B → D → O with one of the last three
// participants missing. The first participant anchors every template.
// Only first-ranked destinations count.
func (finder) quadrangleGaps(g *graph.Graph, q Query, r *run, emit gapEmitFunc) {
	o, d := q.Origin, q.Destination
	closers := func() []participant.Participant {
		var out []participant.Participant
		for _, p4 := range g.OriginsAt(d) {
			if p4.Rank1 == o {
				out = append(out, p4)
			}
		}
		return out
	}()

	// Missing the fourth participant, D → O.
	if len(closers) == 0 {
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
					emit(sequence(o, a, b, d), Edge{From: d, To: o, Position: 4}, p1, p2, p3)
					if r.stop() {
						return
					}
				}
			}
		}
		// Templates below need a closer.
		return
	}

	// Missing the third participant, B → D.
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
			if _, ok := g.FirstWanting(b, d, true); ok {
				continue
			}
			for _, p4 := range closers {
				emit(sequence(o, a, b, d), Edge{From: b, To: d, Position: 3}, p1, p2, p4)
				if r.stop() {
					return
				}
			}
		}
	}

	// Missing the second participant, A → B. B ranges over every origin court
	// in the snapshot other than O, A and D.
	for _, p1 := range g.OriginsAt(o) {
		a := p1.Rank1
		if a == "" || a == o || a == d {
			continue
		}
		for _, b := range g.Courts() {
			if r.stop() {
				return
			}
			if b == o || b == a || b == d {
				continue
			}
			if _, ok := g.FirstWanting(a, b, true); ok {
				continue
			}
			p3, ok := g.FirstWanting(b, d, true)
			if !ok {
				continue
			}
			for _, p4 := range closers {
				emit(sequence(o, a, b, d), Edge{From: a, To: b, Position: 2}, p1, p3, p4)
				if r.stop() {
					return
				}
			}
		}
	}
}

// RouteGroup collects unpaired participants that share origin and first choice.
type RouteGroup struct {
	Origin      court.Court `json:"origin"`
	Destination court.Court `json:"destination"`
	Route       string      `json:"route"`
	Gaps        []Gap       `json:"gaps"`
}

// GroupByRoute groups length-2 gaps by route, largest group first. Groups of the
// same size keep the order in which their first gap appeared.
func GroupByRoute(gaps []Gap) []RouteGroup {
	index := make(map[string]int)
	var groups []RouteGroup
	for _, gap := range gaps {
		if len(gap.Known) == 0 {
			continue
		}
		p := gap.Known[0]
		route := string(p.Origin) + " → " + string(p.Rank1)
		i, ok := index[route]
		if !ok {
			i = len(groups)
			index[route] = i
			groups = append(groups, RouteGroup{Origin: p.Origin, Destination: p.Rank1, Route: route})
		}
		groups[i].Gaps = append(groups[i].Gaps, gap)
	}
	sort.SliceStable(groups, func(i, j int) bool { return len(groups[i].Gaps) > len(groups[j].Gaps) })
	return groups
}
