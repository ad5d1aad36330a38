package notifier

import (
	"context"

	"github.com/charmbracelet/log"
)

// Multi delivers to a primary Inbox and, when the primary accepted the
// notification, fans it out to the secondary notifiers. Secondary failures are
// logged and do not affect the result.
type Multi struct {
	Inbox
	secondaries []Notifier
}

// NewMulti creates a Multi. nil secondaries are ignored.
func NewMulti(primary Inbox, secondaries ...Notifier) *Multi {
	m := &Multi{Inbox: primary}
	for _, s := range secondaries {
		if s != nil {
			m.secondaries = append(m.secondaries, s)
		}
	}
	return m
}

func (m *Multi) Emit(ctx context.Context, n Notification) (bool, error) {
	sent, err := m.Inbox.Emit(ctx, n)
	if err != nil || !sent {
		return sent, err
	}
	for _, s := range m.secondaries {
		if _, err := s.Emit(ctx, n); err != nil {
			log.Warn("Secondary notifier failed", "error", err, "target", n.TargetEmail, "kind", n.Kind)
		}
	}
	return true, nil
}
