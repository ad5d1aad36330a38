package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/matchmaking"
)

const snapshotYAML = `
participants:
  - name: Ana Lima
    email: ana@tjsp.jus.br
    phone: "+55 11 90000-0001"
    origin: TJSP
    rank1: TJRJ
  - name: Bruno Reis
    email: BRUNO@tjrj.jus.br
    phone: "+55 21 90000-0002"
    origin: TJRJ
    rank1: TJSP
  - name: Carla Dias
    email: carla@tjrj.jus.br
    phone: "+55 21 90000-0003"
    origin: TJRJ
    rank1: TJSP
    status: inactive
  - name: Dan Sem Telefone
    email: dan@tjsp.jus.br
    origin: TJSP
    rank1: TJRJ
  - name: Eva Souza
    email: eva@tjmg.jus.br
    phone: "+55 31 90000-0005"
    origin: TJMG
    rank1: TJSP
`

func TestParseSnapshot(t *testing.T) {
	snapshot, err := parseSnapshot([]byte(snapshotYAML))
	require.NoError(t, err)

	require.Len(t, snapshot, 3, "inactive and invalid records should be skipped")
	assert.Equal(t, "Ana Lima", snapshot[0].Name)
	assert.Equal(t, "offline-1", snapshot[0].ID)
	assert.Equal(t, "bruno@tjrj.jus.br", snapshot[1].Email)
	assert.Equal(t, "offline-5", snapshot[2].ID)
}

func TestParseSnapshot_Malformed(t *testing.T) {
	_, err := parseSnapshot([]byte("participants: [unclosed"))
	assert.Error(t, err)
}

func TestLoadSnapshot_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(snapshotYAML), 0o600))

	snapshot, err := loadSnapshot(path)
	require.NoError(t, err)
	assert.Len(t, snapshot, 3)

	_, err = loadSnapshot(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunOffline_Cycles(t *testing.T) {
	snapshot, err := parseSnapshot([]byte(snapshotYAML))
	require.NoError(t, err)

	var out bytes.Buffer
	q := matchmaking.Query{Origin: court.TJSP, Destination: court.TJRJ, Length: 2}
	require.NoError(t, runOffline(context.Background(), &out, snapshot, "cycles", q))

	var res matchmaking.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Cycles, 1)
	assert.Equal(t, "Ana Lima", res.Cycles[0].Members[0].Participant.Name)
	assert.Equal(t, "Bruno Reis", res.Cycles[0].Members[1].Participant.Name)
	assert.False(t, res.Truncated)
}

func TestRunOffline_Gaps(t *testing.T) {
	snapshot, err := parseSnapshot([]byte(snapshotYAML))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runOffline(context.Background(), &out, snapshot, "gaps", matchmaking.Query{Length: 2}))

	var res matchmaking.GapResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Gaps, 1)
	assert.Equal(t, "Eva Souza", res.Gaps[0].Known[0].Name)
	assert.Equal(t, court.TJSP, res.Gaps[0].Missing.From)
	assert.Equal(t, court.TJMG, res.Gaps[0].Missing.To)
}

func TestRunOffline_Errors(t *testing.T) {
	var out bytes.Buffer
	err := runOffline(context.Background(), &out, nil, "cycles", matchmaking.Query{Origin: court.TJSP, Destination: court.TJSP, Length: 2})
	assert.ErrorIs(t, err, court.ErrInvalidSelection)

	err = runOffline(context.Background(), &out, nil, "cycles", matchmaking.Query{Origin: court.TJSP, Destination: court.TJRJ, Length: 5})
	assert.ErrorIs(t, err, matchmaking.ErrInvalidLength)

	err = runOffline(context.Background(), &out, nil, "swaps", matchmaking.Query{Length: 2})
	assert.ErrorContains(t, err, "unknown mode")
	assert.Empty(t, out.String())
}
