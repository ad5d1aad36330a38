package matchmaking

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/participant"
)

// ErrInvalidLength is returned for cycle lengths other than 2, 3 and 4.
var ErrInvalidLength = errors.New("cycle length must be 2, 3 or 4")

// Level records which pass produced a result.
type Level string

const (
	LevelPriority Level = "priority"
	LevelExpanded Level = "expanded"
)

// Query selects the cycles to look for.
type Query struct {
	Origin       court.Court `json:"origin" yaml:"origin"`
	Destination  court.Court `json:"destination" yaml:"destination"`
	Length       int         `json:"length" yaml:"length"`
	PriorityOnly bool        `json:"priority_only" yaml:"priority_only"`
	// Limit caps the number of new results. Zero or less means no limit.
	Limit int `json:"limit,omitempty" yaml:"limit,omitempty"`
}

func (q Query) level() Level {
	if q.PriorityOnly || q.Length == 4 {
		return LevelPriority
	}
	return LevelExpanded
}

// rank1Only reports whether edges are restricted to first-ranked destinations.
// Quadrangulations are always searched on rank 1 alone.
func (q Query) rank1Only() bool {
	return q.PriorityOnly || q.Length == 4
}

// Validate checks a complete-cycle query.
func (q Query) Validate() error {
	if q.Length < 2 || q.Length > 4 {
		return fmt.Errorf("%w: got %d", ErrInvalidLength, q.Length)
	}
	return court.ValidateSelection(q.Origin, q.Destination)
}

// ValidateGaps checks a gap query. Length 2 accepts empty filters.
func (q Query) ValidateGaps() error {
	if q.Length != 2 {
		return q.Validate()
	}
	for _, c := range []court.Court{q.Origin, q.Destination} {
		if c != "" && !c.Valid() {
			return fmt.Errorf("%w: unknown court %q", court.ErrInvalidSelection, c)
		}
	}
	if q.Origin != "" && q.Origin == q.Destination {
		return fmt.Errorf("%w: origin and destination are both %s", court.ErrInvalidSelection, q.Origin)
	}
	return nil
}

// Key identifies a result across paginated calls: the court sequence plus the
// sorted participant names.
type Key string

func keyOf(sequence string, members ...participant.Participant) Key {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	sort.Strings(names)
	return Key(sequence + "|" + strings.Join(names, "|"))
}

// Seen is a caller-held set of keys already shown to the user.
type Seen map[Key]struct{}

// NewSeen builds a set from keys.
func NewSeen(keys ...Key) Seen {
	s := make(Seen, len(keys))
	s.Add(keys...)
	return s
}

// Has reports whether k is in the set. A nil set is empty.
func (s Seen) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Add merges keys into the set.
func (s Seen) Add(keys ...Key) {
	for _, k := range keys {
		s[k] = struct{}{}
	}
}

func (s Seen) clone() Seen {
	out := make(Seen, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Member is one participant of a cycle. Rank is the wish-list rank at which the
// member's destination (the next member's origin) appears.
type Member struct {
	Participant participant.Participant `json:"participant"`
	Rank        int                     `json:"rank"`
}

// Cycle is a closed exchange: every member moves to the next member's origin and
// the last member moves to the first member's origin.
type Cycle struct {
	Key      Key           `json:"key"`
	Members  []Member      `json:"members"`
	Courts   []court.Court `json:"courts"`
	Sequence string        `json:"sequence"`
	Level    Level         `json:"level"`
}

// Length is the number of participants in the cycle.
func (c Cycle) Length() int {
	return len(c.Members)
}

// Result is the output of FindCycles.
type Result struct {
	Cycles    []Cycle `json:"cycles"`
	Truncated bool    `json:"truncated"`
}

// Keys returns the identities of every cycle, for merging into a Seen set.
func (r Result) Keys() []Key {
	keys := make([]Key, len(r.Cycles))
	for i, c := range r.Cycles {
		keys[i] = c.Key
	}
	return keys
}

// Edge is a move from one court to another.
type Edge struct {
	From court.Court `json:"from"`
	To   court.Court `json:"to"`
	// Position is the 1-based place in the cycle of the participant that would
	// supply this edge.
	Position int `json:"position"`
}

// Description names the participant who would close the cycle.
func (e Edge) Description() string {
	return fmt.Sprintf("participant from %s with destination %s", e.From, e.To)
}

// Gap is a cycle that misses exactly one participant.
type Gap struct {
	Key         Key                       `json:"key"`
	Length      int                       `json:"length"`
	Known       []participant.Participant `json:"known"`
	Missing     Edge                      `json:"missing"`
	Description string                    `json:"description"`
	Sequence    string                    `json:"sequence"`
	Level       Level                     `json:"level"`
}

// GapResult is the output of FindGaps.
type GapResult struct {
	Gaps      []Gap `json:"gaps"`
	Truncated bool  `json:"truncated"`
}

// Keys returns the identities of every gap, for merging into a Seen set.
func (r GapResult) Keys() []Key {
	keys := make([]Key, len(r.Gaps))
	for i, g := range r.Gaps {
		keys[i] = g.Key
	}
	return keys
}
