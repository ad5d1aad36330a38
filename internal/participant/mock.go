package participant

import (
	"context"
	"sync"
	"time"
)

// MockStore is a mock implementation of the Store interface for testing.
// Without a Func override it serves reads from Participants.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	Participants []Participant

	// Spies for method calls
	FetchActiveFunc func(ctx context.Context) ([]Participant, error)
	GetFunc         func(ctx context.Context, id string) (*Participant, error)
	CreateFunc      func(ctx context.Context, p *Participant) error
	UpdateFunc      func(ctx context.Context, p *Participant) error
	DeleteFunc      func(ctx context.Context, id string) error

	// Call records
	FetchActiveCalls int
	CreateCalls      []Participant
	UpdateCalls      []Participant
	UpdateEmailCalls []struct {
		ID    string
		Email string
	}
	DeleteCalls []string
}

// NewMock creates a new mock instance seeded with participants.
func NewMock(participants ...Participant) *MockStore {
	return &MockStore{Participants: participants}
}

func (m *MockStore) FetchActive(ctx context.Context) ([]Participant, error) {
	m.mu.Lock()
	m.FetchActiveCalls++
	m.mu.Unlock()
	if m.FetchActiveFunc != nil {
		return m.FetchActiveFunc(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Participant
	for _, p := range m.Participants {
		if p.Active() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockStore) Get(ctx context.Context, id string) (*Participant, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Participants {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetByEmail(ctx context.Context, email string) (*Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = NormalizeEmail(email)
	for _, p := range m.Participants {
		if p.Email == email {
			p := p
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockStore) Create(ctx context.Context, p *Participant) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, *p)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	m.mu.Lock()
	m.Participants = append(m.Participants, *p)
	m.mu.Unlock()
	return nil
}

func (m *MockStore) Update(ctx context.Context, p *Participant) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, *p)
	m.mu.Unlock()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Participants {
		if m.Participants[i].ID == p.ID {
			m.Participants[i] = *p
			return nil
		}
	}
	return ErrNotFound
}

func (m *MockStore) UpdateEmail(ctx context.Context, id, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateEmailCalls = append(m.UpdateEmailCalls, struct {
		ID    string
		Email string
	}{id, email})
	for i := range m.Participants {
		if m.Participants[i].ID == id {
			m.Participants[i].Email = NormalizeEmail(email)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, id)
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Participants {
		if m.Participants[i].ID == id {
			m.Participants = append(m.Participants[:i], m.Participants[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MockStore) ListRecent(ctx context.Context, since time.Time) ([]Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Participant
	for _, p := range m.Participants {
		if p.Active() && !p.CreatedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out, nil
}
