package matchmaking_test

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/graph"
	"github.com/mauv0809/permutatum/internal/matchmaking"
	"github.com/mauv0809/permutatum/internal/participant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	X = court.TJSP
	Y = court.TJRJ
	Z = court.TJMG
	W = court.TJBA
)

func TestFindCycles_DirectSwap(t *testing.T) {
	snapshot := []participant.Participant{
		judge("A", X, Y),
		judge("B", Y, X),
	}
	res := cycles(t, snapshot, matchmaking.Query{Origin: X, Destination: Y, Length: 2, PriorityOnly: true})

	require.Len(t, res.Cycles, 1)
	c := res.Cycles[0]
	assert.Equal(t, []string{"A", "B"}, memberNames(c))
	assert.Equal(t, "TJSP ↔ TJRJ", c.Sequence)
	assert.Equal(t, matchmaking.LevelPriority, c.Level)
	assert.False(t, res.Truncated)

	score, ok := matchmaking.CompatibilityScore(c)
	require.True(t, ok)
	assert.Equal(t, matchmaking.Compatibility{Points: 6, Level: matchmaking.CompatibilityHigh}, score)
}

func TestFindCycles_DirectSwapExpandedUsesAnyRank(t *testing.T) {
	snapshot := []participant.Participant{
		judge("A", X, Z, Y),
		judge("B", Y, W, Z, X),
	}
	q := matchmaking.Query{Origin: X, Destination: Y, Length: 2, PriorityOnly: true}
	assert.Empty(t, cycles(t, snapshot, q).Cycles)

	q.PriorityOnly = false
	res := cycles(t, snapshot, q)
	require.Len(t, res.Cycles, 1)
	assert.Equal(t, 2, res.Cycles[0].Members[0].Rank)
	assert.Equal(t, 3, res.Cycles[0].Members[1].Rank)
	assert.Equal(t, matchmaking.LevelExpanded, res.Cycles[0].Level)

	score, _ := matchmaking.CompatibilityScore(res.Cycles[0])
	assert.Equal(t, matchmaking.Compatibility{Points: 3, Level: matchmaking.CompatibilityMedium}, score)
}

func TestFindCycles_Triangulation(t *testing.T) {
	snapshot := []participant.Participant{
		judge("A", X, Y),
		judge("B", Y, Z),
		judge("C", Z, X),
	}
	res := cycles(t, snapshot, matchmaking.Query{Origin: X, Destination: Z, Length: 3, PriorityOnly: true})

	require.Len(t, res.Cycles, 1)
	c := res.Cycles[0]
	assert.Equal(t, "TJSP → TJRJ → TJMG → TJSP", c.Sequence)
	assert.Equal(t, []court.Court{X, Y, Z}, c.Courts)
	assert.Equal(t, []string{"A", "B", "C"}, memberNames(c))

	_, ok := matchmaking.CompatibilityScore(c)
	assert.False(t, ok, "only direct swaps are scored")
}

func TestFindCycles_TriangulationPriorityNeedsRank1Everywhere(t *testing.T) {
	snapshot := []participant.Participant{
		judge("A", X, Y),
		judge("B", Y, W, Z),
		judge("C", Z, X),
	}
	q := matchmaking.Query{Origin: X, Destination: Z, Length: 3, PriorityOnly: true}
	assert.Empty(t, cycles(t, snapshot, q).Cycles)

	q.PriorityOnly = false
	assert.Len(t, cycles(t, snapshot, q).Cycles, 1)
}

func TestFindCycles_TriangulationSkipsDirectDestination(t *testing.T) {
	snapshot := []participant.Participant{
		judge("A", X, Z),
		judge("C", Z, X),
	}
	res := cycles(t, snapshot, matchmaking.Query{Origin: X, Destination: Z, Length: 3})
	assert.Empty(t, res.Cycles)
}

func TestFindCycles_Quadrangulation(t *testing.T) {
	snapshot := []participant.Participant{
		judge("P1", X, Y),
		judge("P2", Y, Z),
		judge("P3", Z, W),
		judge("P4", W, X),
	}
	res := cycles(t, snapshot, matchmaking.Query{Origin: X, Destination: W, Length: 4})

	require.Len(t, res.Cycles, 1)
	assert.Equal(t, "TJSP → TJRJ → TJMG → TJBA → TJSP", res.Cycles[0].Sequence)
	assert.Equal(t, []string{"P1", "P2", "P3", "P4"}, memberNames(res.Cycles[0]))
}

func TestFindCycles_QuadrangulationIgnoresLowerRanksInBothModes(t *testing.T) {
	snapshot := []participant.Participant{
		judge("P1", X, Y),
		judge("P2", Y, court.TJAC, Z),
		judge("P3", Z, W),
		judge("P4", W, X),
	}
	for _, priority := range []bool{true, false} {
		res := cycles(t, snapshot, matchmaking.Query{Origin: X, Destination: W, Length: 4, PriorityOnly: priority})
		assert.Empty(t, res.Cycles, "priority=%v", priority)
	}
}

func TestFindCycles_RemovingAnyoneBreaksQuadrangulation(t *testing.T) {
	full := []participant.Participant{
		judge("P1", X, Y),
		judge("P2", Y, Z),
		judge("P3", Z, W),
		judge("P4", W, X),
	}
	q := matchmaking.Query{Origin: X, Destination: W, Length: 4}
	for i := range full {
		reduced := append(append([]participant.Participant{}, full[:i]...), full[i+1:]...)
		assert.Empty(t, cycles(t, reduced, q).Cycles, "without %s", full[i].Name)
	}
}

func TestFindCycles_DeduplicatesBySequenceAndNames(t *testing.T) {
	dup := judge("A", X, Y)
	dup.ID = "A-2"
	snapshot := []participant.Participant{
		judge("A", X, Y),
		dup,
		judge("B", Y, X),
	}
	res := cycles(t, snapshot, matchmaking.Query{Origin: X, Destination: Y, Length: 2})
	assert.Len(t, res.Cycles, 1, "same names on the same sequence are one result")
}

func TestFindCycles_LimitAndPagination(t *testing.T) {
	snapshot := []participant.Participant{
		judge("A1", X, Y),
		judge("A2", X, Y),
		judge("A3", X, Y),
		judge("B", Y, X),
	}
	finder := matchmaking.New()
	g := graph.Build(snapshot)
	q := matchmaking.Query{Origin: X, Destination: Y, Length: 2, Limit: 2}

	first, err := finder.FindCycles(context.Background(), g, q, nil)
	require.NoError(t, err)
	assert.Len(t, first.Cycles, 2)
	assert.True(t, first.Truncated)

	seen := matchmaking.NewSeen(first.Keys()...)
	q.Limit = 10
	second, err := finder.FindCycles(context.Background(), g, q, seen)
	require.NoError(t, err)
	require.Len(t, second.Cycles, 1)
	assert.Equal(t, []string{"A3", "B"}, memberNames(second.Cycles[0]))
	assert.False(t, second.Truncated)
	assert.Len(t, seen, 2, "the caller's set is not modified")
}

func TestFindCycles_LimitReachedExactlyIsTruncated(t *testing.T) {
	snapshot := []participant.Participant{judge("A", X, Y), judge("B", Y, X)}
	res := cycles(t, snapshot, matchmaking.Query{Origin: X, Destination: Y, Length: 2, Limit: 1})
	assert.Len(t, res.Cycles, 1)
	assert.True(t, res.Truncated)
}

func TestFindCycles_EmptySnapshot(t *testing.T) {
	for _, length := range []int{2, 3, 4} {
		res := cycles(t, nil, matchmaking.Query{Origin: X, Destination: Y, Length: length})
		assert.Empty(t, res.Cycles)
		assert.NotNil(t, res.Cycles)
		assert.False(t, res.Truncated)
	}
}

func TestFindCycles_InvalidQuery(t *testing.T) {
	finder := matchmaking.New()
	g := graph.Build(nil)
	tests := []struct {
		name string
		q    matchmaking.Query
		want error
	}{
		{"same court", matchmaking.Query{Origin: X, Destination: X, Length: 2}, court.ErrInvalidSelection},
		{"empty origin", matchmaking.Query{Destination: X, Length: 3}, court.ErrInvalidSelection},
		{"unknown court", matchmaking.Query{Origin: "TJXX", Destination: X, Length: 2}, court.ErrInvalidSelection},
		{"bad length", matchmaking.Query{Origin: X, Destination: Y, Length: 5}, matchmaking.ErrInvalidLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := finder.FindCycles(context.Background(), g, tt.q, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFindCycles_CancelledContextReturnsPartialResult(t *testing.T) {
	snapshot := []participant.Participant{judge("A", X, Y), judge("B", Y, X)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := matchmaking.New().FindCycles(ctx, graph.Build(snapshot), matchmaking.Query{Origin: X, Destination: Y, Length: 2}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Cycles)
}

func TestFindCycles_DeadlineInterruptsLargeSearch(t *testing.T) {
	snapshot := participant.NewGenerator(1, X, Y, Z, W).Participants(400)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := matchmaking.New().FindCycles(ctx, graph.Build(snapshot), matchmaking.Query{Origin: X, Destination: W, Length: 3}, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
