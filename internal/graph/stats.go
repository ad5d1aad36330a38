package graph

import (
	"sort"

	"github.com/mauv0809/permutatum/internal/court"
)

// CourtCount pairs a court with how often it appears in some role.
type CourtCount struct {
	Court court.Court `json:"court"`
	Count int         `json:"count"`
}

// Stats summarises a snapshot.
type Stats struct {
	Participants int          `json:"participants"`
	Courts       int          `json:"courts"`
	MostWanted   []CourtCount `json:"most_wanted"`
	TopOrigins   []CourtCount `json:"top_origins"`
}

// Stats counts destinations (every rank) and origins. Courts counts distinct
// courts seen either as an origin or a destination. top <= 0 keeps every entry.
func (g *Graph) Stats(top int) Stats {
	wanted := make(map[court.Court]int)
	origins := make(map[court.Court]int)
	distinct := make(map[court.Court]struct{})

	for _, p := range g.participants {
		origins[p.Origin]++
		distinct[p.Origin] = struct{}{}
		for _, d := range p.Destinations() {
			wanted[d.Court]++
			distinct[d.Court] = struct{}{}
		}
	}

	return Stats{
		Participants: len(g.participants),
		Courts:       len(distinct),
		MostWanted:   ranked(wanted, top),
		TopOrigins:   ranked(origins, top),
	}
}

// ranked orders by count descending, then by court name so output is stable.
func ranked(counts map[court.Court]int, top int) []CourtCount {
	out := make([]CourtCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CourtCount{Court: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Court < out[j].Court
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}
