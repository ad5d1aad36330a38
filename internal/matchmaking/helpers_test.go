package matchmaking_test

import (
	"context"
	"testing"

	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/graph"
	"github.com/mauv0809/permutatum/internal/matchmaking"
	"github.com/mauv0809/permutatum/internal/participant"
	"github.com/stretchr/testify/require"
)

func judge(name string, origin court.Court, ranks ...court.Court) participant.Participant {
	p := participant.Participant{ID: name, Name: name, Origin: origin, Status: participant.StatusActive}
	for i, r := range ranks {
		switch i {
		case 0:
			p.Rank1 = r
		case 1:
			p.Rank2 = r
		case 2:
			p.Rank3 = r
		}
	}
	return p
}

func cycles(t *testing.T, snapshot []participant.Participant, q matchmaking.Query) matchmaking.Result {
	t.Helper()
	res, err := matchmaking.New().FindCycles(context.Background(), graph.Build(snapshot), q, nil)
	require.NoError(t, err)
	return res
}

func gaps(t *testing.T, snapshot []participant.Participant, q matchmaking.Query) matchmaking.GapResult {
	t.Helper()
	res, err := matchmaking.New().FindGaps(context.Background(), graph.Build(snapshot), q, nil)
	require.NoError(t, err)
	return res
}

func memberNames(c matchmaking.Cycle) []string {
	out := make([]string, len(c.Members))
	for i, m := range c.Members {
		out[i] = m.Participant.Name
	}
	return out
}

func knownNames(g matchmaking.Gap) []string {
	out := make([]string, len(g.Known))
	for i, p := range g.Known {
		out[i] = p.Name
	}
	return out
}
