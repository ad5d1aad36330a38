package notifier

import (
	"context"
	"sync"
)

var _ Inbox = (*Mock)(nil)

// Mock is a mock implementation of the Inbox interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	EmitFunc func(ctx context.Context, n Notification) (bool, error)

	// Call records
	EmitCalls []Notification
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmitCalls = nil
}

func (m *Mock) Emit(ctx context.Context, n Notification) (bool, error) {
	m.mu.Lock()
	m.EmitCalls = append(m.EmitCalls, n)
	m.mu.Unlock()
	if m.EmitFunc != nil {
		return m.EmitFunc(ctx, n)
	}
	return true, nil
}

func (m *Mock) ListUnread(ctx context.Context, email string) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Notification{}
	for _, n := range m.EmitCalls {
		if n.TargetEmail == email && !n.Read {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *Mock) MarkAllRead(ctx context.Context, email string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for i := range m.EmitCalls {
		if m.EmitCalls[i].TargetEmail == email && !m.EmitCalls[i].Read {
			m.EmitCalls[i].Read = true
			count++
		}
	}
	return count, nil
}

// Calls returns a copy of the recorded notifications.
func (m *Mock) Calls() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.EmitCalls...)
}
