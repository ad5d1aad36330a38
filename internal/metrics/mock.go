package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                   sync.Mutex
	searches             map[string]int
	searchDurations      []float64
	searchResults        map[string][]int
	searchesTruncated    map[string]int
	searchesInterrupted  map[string]int
	snapshotCacheHits    int
	snapshotCacheMisses  int
	notificationsEmitted int
	notificationsFailed  int
	slackNotifSent       int
	slackNotifFailed     int
	hookRuns             int
	startupTime          float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		searches:            make(map[string]int),
		searchDurations:     make([]float64, 0),
		searchResults:       make(map[string][]int),
		searchesTruncated:   make(map[string]int),
		searchesInterrupted: make(map[string]int),
	}
}

func (m *Mock) IncSearches(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches[kind]++
}

func (m *Mock) ObserveSearchDuration(kind string, duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchDurations = append(m.searchDurations, duration)
}

func (m *Mock) ObserveSearchResults(kind string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchResults[kind] = append(m.searchResults[kind], count)
}

func (m *Mock) IncSearchesTruncated(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchesTruncated[kind]++
}

func (m *Mock) IncSearchesInterrupted(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchesInterrupted[kind]++
}

func (m *Mock) IncSnapshotCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotCacheHits++
}

func (m *Mock) IncSnapshotCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotCacheMisses++
}

func (m *Mock) IncNotificationsEmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsEmitted++
}

func (m *Mock) IncNotificationsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsFailed++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) IncHookRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hookRuns++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Searches returns the number of times IncSearches was called for kind.
func (m *Mock) Searches(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searches[kind]
}

// SearchResults returns every result count observed for kind.
func (m *Mock) SearchResults(kind string) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.searchResults[kind]...)
}

// SearchesTruncated returns the number of truncated searches for kind.
func (m *Mock) SearchesTruncated(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchesTruncated[kind]
}

// SearchesInterrupted returns the number of interrupted searches for kind.
func (m *Mock) SearchesInterrupted(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchesInterrupted[kind]
}

// SnapshotCacheHits returns the number of times IncSnapshotCacheHits was called.
func (m *Mock) SnapshotCacheHits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotCacheHits
}

// SnapshotCacheMisses returns the number of times IncSnapshotCacheMisses was called.
func (m *Mock) SnapshotCacheMisses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotCacheMisses
}

// NotificationsEmitted returns the number of times IncNotificationsEmitted was called.
func (m *Mock) NotificationsEmitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsEmitted
}

// NotificationsFailed returns the number of times IncNotificationsFailed was called.
func (m *Mock) NotificationsFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsFailed
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}

// HookRuns returns the number of times IncHookRuns was called.
func (m *Mock) HookRuns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hookRuns
}

// MockUsageStore is an in-memory UsageStore.
type MockUsageStore struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewMockUsageStore creates a new in-memory usage store.
func NewMockUsageStore() *MockUsageStore {
	return &MockUsageStore{counters: make(map[string]int)}
}

func (m *MockUsageStore) Increment(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
}

func (m *MockUsageStore) GetAll() (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out, nil
}
