// Package graph indexes a participant snapshot as the directed "wants to move
// to" multigraph: one edge per non-empty destination slot, from the
// participant's origin court to the destination court.
package graph

import (
	"sort"

	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/participant"
)

// Graph is a read-only index over one snapshot. It is built per query and never
// mutated afterwards, so it is safe for concurrent readers.
type Graph struct {
	participants []participant.Participant
	byOrigin     map[court.Court][]participant.Participant
	courts       []court.Court
}

// Build indexes the snapshot. Inactive participants and participants without an
// origin are left out. Snapshot order is preserved inside every origin bucket.
func Build(snapshot []participant.Participant) *Graph {
	g := &Graph{
		participants: make([]participant.Participant, 0, len(snapshot)),
		byOrigin:     make(map[court.Court][]participant.Participant),
	}
	for _, p := range snapshot {
		if p.Status == participant.StatusInactive || p.Origin == "" {
			continue
		}
		if _, seen := g.byOrigin[p.Origin]; !seen {
			g.courts = append(g.courts, p.Origin)
		}
		g.byOrigin[p.Origin] = append(g.byOrigin[p.Origin], p)
		g.participants = append(g.participants, p)
	}
	return g
}

// Len is the number of indexed participants.
func (g *Graph) Len() int {
	return len(g.participants)
}

// Participants returns the indexed participants in snapshot order.
func (g *Graph) Participants() []participant.Participant {
	return g.participants
}

// OriginsAt returns the participants whose origin is c, in snapshot order.
// The returned slice must not be modified.
func (g *Graph) OriginsAt(c court.Court) []participant.Participant {
	return g.byOrigin[c]
}

// DestinationsOf returns the ranked destinations of p.
func (g *Graph) DestinationsOf(p participant.Participant) []participant.Destination {
	return p.Destinations()
}

// Courts returns every court that is the origin of at least one participant,
// in order of first appearance in the snapshot.
func (g *Graph) Courts() []court.Court {
	return g.courts
}

// FirstWanting returns the first participant at from whose wish list reaches to.
// With rank1Only only the first-ranked destination counts.
func (g *Graph) FirstWanting(from, to court.Court, rank1Only bool) (participant.Participant, bool) {
	for _, p := range g.byOrigin[from] {
		if Wants(p, to, rank1Only) {
			return p, true
		}
	}
	return participant.Participant{}, false
}

// Wants reports whether p lists c, restricted to rank 1 when rank1Only is set.
func Wants(p participant.Participant, c court.Court, rank1Only bool) bool {
	if c == "" {
		return false
	}
	if rank1Only {
		return p.Rank1 == c
	}
	return p.RankOf(c) > 0
}

// Interest is a participant who wants to move to a given court, and at which rank.
type Interest struct {
	Participant participant.Participant `json:"participant"`
	Rank        int                     `json:"rank"`
}

// Interested lists participants from other courts that want to move to c,
// ordered by rank and then snapshot order.
func (g *Graph) Interested(c court.Court) []Interest {
	var out []Interest
	for _, p := range g.participants {
		if p.Origin == c {
			continue
		}
		if rank := p.RankOf(c); rank > 0 {
			out = append(out, Interest{Participant: p, Rank: rank})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// Available lists the participants currently at any of the given courts, in
// snapshot order. These are the people a caller wanting those courts could swap with.
func (g *Graph) Available(courts []court.Court) []participant.Participant {
	want := make(map[court.Court]bool, len(courts))
	for _, c := range courts {
		if c != "" {
			want[c] = true
		}
	}
	var out []participant.Participant
	for _, p := range g.participants {
		if want[p.Origin] {
			out = append(out, p)
		}
	}
	return out
}
