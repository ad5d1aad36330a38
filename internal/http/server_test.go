package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/permutatum/internal/config"
	"github.com/mauv0809/permutatum/internal/database"
	"github.com/mauv0809/permutatum/internal/metrics"
	"github.com/mauv0809/permutatum/internal/notifier"
	"github.com/mauv0809/permutatum/internal/participant"
	"github.com/mauv0809/permutatum/internal/processor"
	"github.com/mauv0809/permutatum/internal/pubsub"
	"github.com/mauv0809/permutatum/internal/registry"
	"github.com/mauv0809/permutatum/internal/search"
	"github.com/mauv0809/permutatum/internal/snapshot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type testServer struct {
	*Server
	bus *pubsub.MockPubSubClient
}

// setupTestServer initializes a server over an in-memory database. Events are
// captured by a mock bus instead of being processed.
func setupTestServer(t *testing.T, cfg config.Config) *testServer {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)

	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 50
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 5 * time.Second
	}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	usage := metrics.New(db)
	participants := participant.New(db)
	loader := snapshot.NewLoader(participants, snapshot.NewMemoryCache(time.Minute), metricsSvc)
	inbox := notifier.NewStore(db)
	bus := pubsub.NewMock()

	server := NewServer(cfg, Services{
		Participants:   participants,
		Registry:       registry.New(participants, loader, bus),
		Search:         search.New(loader, participants, metricsSvc, usage, search.Config{Timeout: cfg.Search.Timeout}),
		Snapshots:      loader,
		Inbox:          inbox,
		Processor:      processor.New(participants, loader, inbox, metricsSvc, bus),
		PubSub:         bus,
		Metrics:        metricsSvc,
		MetricsHandler: metrics.NewMetricsHandler(reg),
		Usage:          usage,
	})
	return &testServer{Server: server, bus: bus}
}

func (ts *testServer) do(t *testing.T, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) register(t *testing.T, name, email, origin, rank1 string, extra ...string) participant.Participant {
	t.Helper()
	body := map[string]any{
		"name":   name,
		"email":  email,
		"phone":  "11999990000",
		"origin": origin,
		"rank1":  rank1,
	}
	if len(extra) > 0 {
		body["rank2"] = extra[0]
	}
	rr := ts.do(t, http.MethodPost, "/api/participants", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var p participant.Participant
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndCourts(t *testing.T) {
	ts := setupTestServer(t, config.Config{})

	rr := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())

	rr = ts.do(t, http.MethodGet, "/api/courts", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	courts := decode[[]courtInfo](t, rr)
	assert.Len(t, courts, 27)
	assert.Equal(t, "tjac.jus.br", courts[0].Domain)

	rr = ts.do(t, http.MethodPost, "/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRegister(t *testing.T) {
	ts := setupTestServer(t, config.Config{})

	p := ts.register(t, "Ana Souza", "Ana@TJSP.jus.br", "TJSP", "TJRJ")
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "ana@tjsp.jus.br", p.Email)

	sent := ts.bus.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, pubsub.ParticipantChanged{ParticipantID: p.ID, Change: pubsub.ChangeCreated}, sent[0].Data)

	t.Run("duplicate email", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/api/participants", map[string]any{
			"name": "Other", "email": "ana@tjsp.jus.br", "phone": "1", "origin": "TJMG", "rank1": "TJRJ",
		})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("invalid ranks", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/api/participants", map[string]any{
			"name": "Bia", "email": "bia@tjrj.jus.br", "phone": "1", "origin": "TJRJ", "rank1": "TJRJ",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decode[errorResponse](t, rr).Error, "first destination must differ from origin")
	})

	t.Run("unknown field", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/api/participants", `{"name":"x","nickname":"y"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestMe(t *testing.T) {
	ts := setupTestServer(t, config.Config{})
	p := ts.register(t, "Ana Souza", "ana@tjsp.jus.br", "TJSP", "TJRJ")

	rr := ts.do(t, http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/me", nil, callerHeader, "nobody@tjsp.jus.br")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/me", nil, callerHeader, "ANA@tjsp.jus.br")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, p.ID, decode[participant.Participant](t, rr).ID)

	rr = ts.do(t, http.MethodPut, "/api/me", map[string]any{
		"name": "Ana Souza", "phone": "11999990000", "origin": "TJSP", "rank1": "TJMG", "rank2": "TJRJ", "phone_visible": true,
	}, callerHeader, "ana@tjsp.jus.br")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[participant.Participant](t, rr)
	assert.Equal(t, "TJMG", string(updated.Rank1))
	assert.True(t, updated.PhoneVisible)
	assert.Equal(t, pubsub.ChangeUpdated, ts.bus.Sent()[1].Data.(pubsub.ParticipantChanged).Change)

	rr = ts.do(t, http.MethodDelete, "/api/me", nil, callerHeader, "ana@tjsp.jus.br")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.do(t, http.MethodGet, "/api/me", nil, callerHeader, "ana@tjsp.jus.br")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminChangeEmail(t *testing.T) {
	body := map[string]string{"email": "new@tjsp.jus.br"}

	t.Run("disabled without token", func(t *testing.T) {
		ts := setupTestServer(t, config.Config{})
		p := ts.register(t, "Ana", "ana@tjsp.jus.br", "TJSP", "TJRJ")
		rr := ts.do(t, http.MethodPut, "/api/admin/participants/"+p.ID+"/email", body, adminTokenHeader, "anything")
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("token required", func(t *testing.T) {
		ts := setupTestServer(t, config.Config{AdminToken: "s3cret"})
		p := ts.register(t, "Ana", "ana@tjsp.jus.br", "TJSP", "TJRJ")

		rr := ts.do(t, http.MethodPut, "/api/admin/participants/"+p.ID+"/email", body, adminTokenHeader, "wrong")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = ts.do(t, http.MethodPut, "/api/admin/participants/"+p.ID+"/email", body, adminTokenHeader, "s3cret")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "new@tjsp.jus.br", decode[participant.Participant](t, rr).Email)

		rr = ts.do(t, http.MethodPut, "/api/admin/participants/missing/email", body, adminTokenHeader, "s3cret")
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = ts.do(t, http.MethodPut, "/api/admin/participants/"+p.ID+"/email", map[string]string{"email": "bad"}, adminTokenHeader, "s3cret")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestParticipantsHidePhones(t *testing.T) {
	ts := setupTestServer(t, config.Config{})
	ts.register(t, "Ana", "ana@tjsp.jus.br", "TJSP", "TJRJ")

	rr := ts.do(t, http.MethodGet, "/api/participants", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[[]participant.Participant](t, rr)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Phone)

	rr = ts.do(t, http.MethodGet, "/api/participants/recent?days=7", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]participant.Participant](t, rr), 1)

	rr = ts.do(t, http.MethodGet, "/api/participants/recent?days=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSearchCycles(t *testing.T) {
	ts := setupTestServer(t, config.Config{})
	ts.register(t, "Ana", "ana@tjsp.jus.br", "TJSP", "TJRJ")
	ts.register(t, "Bia", "bia@tjrj.jus.br", "TJRJ", "TJSP")

	req := searchRequest{Origin: "TJSP", Destination: "TJRJ", Length: 2, PriorityOnly: true}
	rr := ts.do(t, http.MethodPost, "/api/search/cycles", req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[cycleSearchResponse](t, rr)
	require.Len(t, res.Cycles, 1)
	require.NotNil(t, res.Cycles[0].Compatibility)
	assert.Equal(t, 6, res.Cycles[0].Compatibility.Points)
	assert.Equal(t, "high", string(res.Cycles[0].Compatibility.Level))
	assert.True(t, strings.HasPrefix(res.Cycles[0].ShareLink, "https://wa.me/?text="))
	assert.Len(t, res.Keys, 1)

	req.PriorityOnly = false
	req.Seen = res.Keys
	rr = ts.do(t, http.MethodPost, "/api/search/cycles", req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[cycleSearchResponse](t, rr).Cycles)

	rr = ts.do(t, http.MethodPost, "/api/search/cycles", searchRequest{Origin: "TJSP", Destination: "TJSP", Length: 2})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = ts.do(t, http.MethodPost, "/api/search/cycles", searchRequest{Origin: "TJSP", Destination: "TJRJ", Length: 7})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/usage", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, decode[map[string]int](t, rr)["search_cycles"])

	rr = ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `permutatum_searches_total{kind="cycles"} 2`)
}

func TestSearchGapsAndUnpaired(t *testing.T) {
	ts := setupTestServer(t, config.Config{})
	ts.register(t, "Ana", "ana@tjsp.jus.br", "TJSP", "TJRJ")
	ts.register(t, "Bia", "bia@tjrj.jus.br", "TJRJ", "TJMG")

	rr := ts.do(t, http.MethodPost, "/api/search/gaps", searchRequest{Origin: "TJSP", Destination: "TJRJ", Length: 3, PriorityOnly: true})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	gaps := decode[gapSearchResponse](t, rr)
	require.Len(t, gaps.Gaps, 1)
	assert.Equal(t, "participant from TJMG with destination TJSP", gaps.Gaps[0].Description)
	for _, p := range gaps.Gaps[0].Known {
		assert.Empty(t, p.Phone)
	}

	rr = ts.do(t, http.MethodGet, "/api/search/unpaired", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	unpaired := decode[unpairedResponse](t, rr)
	assert.Equal(t, 2, unpaired.Total)
	assert.Len(t, unpaired.Groups, 2)

	rr = ts.do(t, http.MethodGet, "/api/search/unpaired?origin=TJRJ", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	unpaired = decode[unpairedResponse](t, rr)
	require.Len(t, unpaired.Groups, 1)
	assert.Equal(t, "TJRJ → TJMG", unpaired.Groups[0].Route)

	rr = ts.do(t, http.MethodGet, "/api/search/unpaired?origin=tjxx", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestInterestedDestinationsAndStats(t *testing.T) {
	ts := setupTestServer(t, config.Config{})
	ts.register(t, "Ana", "ana@tjsp.jus.br", "TJSP", "TJRJ", "TJMG")
	ts.register(t, "Bia", "bia@tjrj.jus.br", "TJRJ", "TJSP")
	ts.register(t, "Caio", "caio@tjmg.jus.br", "TJMG", "TJBA", "TJSP")

	rr := ts.do(t, http.MethodGet, "/api/search/interested", nil, callerHeader, "ana@tjsp.jus.br")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	interested := decode[[]struct {
		Participant participant.Participant `json:"participant"`
		Rank        int                     `json:"rank"`
	}](t, rr)
	require.Len(t, interested, 2)
	assert.Equal(t, "Bia", interested[0].Participant.Name)
	assert.Equal(t, "Caio", interested[1].Participant.Name)

	rr = ts.do(t, http.MethodGet, "/api/search/interested", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.do(t, http.MethodGet, "/api/search/interested?court=TJBA", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]any](t, rr), 1)

	rr = ts.do(t, http.MethodGet, "/api/search/destinations", nil, callerHeader, "ana@tjsp.jus.br")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]participant.Participant](t, rr), 2)

	rr = ts.do(t, http.MethodGet, "/api/stats?top=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	stats := decode[map[string]any](t, rr)
	assert.EqualValues(t, 3, stats["participants"])
}

func TestParticipantChangedEvent(t *testing.T) {
	ts := setupTestServer(t, config.Config{})
	ts.register(t, "Ana", "ana@tjsp.jus.br", "TJSP", "TJRJ")
	bia := ts.register(t, "Bia", "bia@tjrj.jus.br", "TJRJ", "TJSP")

	data, err := msgpack.Marshal(pubsub.ParticipantChanged{ParticipantID: bia.ID, Change: pubsub.ChangeCreated})
	require.NoError(t, err)
	envelope := map[string]any{
		"subscription": "projects/p/subscriptions/participant-changed",
		"message":      map[string]string{"data": base64.StdEncoding.EncodeToString(data), "messageId": "1"},
	}

	rr := ts.do(t, http.MethodPost, "/events/participant-changed", envelope)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.do(t, http.MethodGet, "/api/notifications", nil, callerHeader, "ana@tjsp.jus.br")
	require.Equal(t, http.StatusOK, rr.Code)
	unread := decode[[]notifier.Notification](t, rr)
	require.Len(t, unread, 1)
	assert.Contains(t, unread[0].Message, "Bia (TJRJ)")

	// Redelivery does not duplicate unread notifications.
	rr = ts.do(t, http.MethodPost, "/events/participant-changed", envelope)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, http.MethodPost, "/api/notifications/read", nil, callerHeader, "ana@tjsp.jus.br")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[map[string]int](t, rr)["marked"])

	rr = ts.do(t, http.MethodGet, "/api/notifications", nil, callerHeader, "bia@tjrj.jus.br")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]notifier.Notification](t, rr), 1)

	t.Run("bad envelopes", func(t *testing.T) {
		rr := ts.do(t, http.MethodPost, "/events/participant-changed", `not json`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		rr = ts.do(t, http.MethodPost, "/events/participant-changed", map[string]any{"message": map[string]string{"data": "%%%"}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		rr = ts.do(t, http.MethodPost, "/events/participant-changed", map[string]any{"message": map[string]string{"data": base64.StdEncoding.EncodeToString([]byte{0xc1})}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRefresh(t *testing.T) {
	ts := setupTestServer(t, config.Config{})
	rr := ts.do(t, http.MethodPost, "/api/refresh", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSearchRateLimit(t *testing.T) {
	ts := setupTestServer(t, config.Config{Search: config.SearchConfig{RateLimit: 0.001, RateBurst: 1}})

	rr := ts.do(t, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = ts.do(t, http.MethodGet, "/api/stats", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code, "non-search routes are not limited")
}

func TestSearchCanceledByClient(t *testing.T) {
	ts := setupTestServer(t, config.Config{})
	ts.register(t, "Ana Lima", "ana@tjsp.jus.br", "TJSP", "TJRJ")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	ts.ServeHTTP(rr, req)

	assert.Equal(t, statusClientClosedRequest, rr.Code)
	assert.Equal(t, "request canceled", decode[errorResponse](t, rr).Error)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"deadline", fmt.Errorf("failed to load snapshot: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"canceled", fmt.Errorf("failed to load snapshot: %w", context.Canceled), statusClientClosedRequest},
		{"store", fmt.Errorf("%w: %w", search.ErrStoreUnavailable, errors.New("disk I/O error")), http.StatusServiceUnavailable},
		{"not found", participant.ErrNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestVerboseRaisesOnlyTheRequestLogger(t *testing.T) {
	before := log.GetLevel()
	require.NotEqual(t, log.DebugLevel, before, "default logger should not start at debug")

	var requestLevel, globalLevel log.Level
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestLevel = log.FromContext(r.Context()).GetLevel()
		globalLevel = log.GetLevel()
	}), paramsMiddleware)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health?verbose=true", nil))
	assert.Equal(t, log.DebugLevel, requestLevel)
	assert.Equal(t, before, globalLevel, "verbose must not touch the shared logger")

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, before, requestLevel)
	assert.Equal(t, before, log.GetLevel())
}
