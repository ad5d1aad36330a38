package notifier

import (
	"context"
	"time"
)

// Kind classifies a notification.
type Kind string

const (
	KindDirectSwap Kind = "direct_swap"
)

// Notification is a message addressed to one participant. SubjectID is the
// participant the message is about; together with the target and kind it
// identifies duplicates.
type Notification struct {
	ID          string    `json:"id"`
	TargetEmail string    `json:"target_email"`
	Kind        Kind      `json:"kind"`
	SubjectID   string    `json:"subject_id,omitempty"`
	Message     string    `json:"message"`
	Details     string    `json:"details,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notifier defines the sink for business notifications.
// This decouples the rest of the application from where they end up (database, Slack).
type Notifier interface {
	// Emit delivers n. sent is false when the sink chose not to deliver it,
	// for example because an identical unread notification already exists.
	Emit(ctx context.Context, n Notification) (sent bool, err error)
}

// Inbox is a Notifier that participants can read back from.
type Inbox interface {
	Notifier
	ListUnread(ctx context.Context, email string) ([]Notification, error)
	MarkAllRead(ctx context.Context, email string) (int, error)
}

type dryRunKey struct{}

// WithDryRun marks ctx so that external sinks only log what they would send.
func WithDryRun(ctx context.Context, dryRun bool) context.Context {
	return context.WithValue(ctx, dryRunKey{}, dryRun)
}

// IsDryRun reports whether ctx was marked with WithDryRun.
func IsDryRun(ctx context.Context) bool {
	dryRun, _ := ctx.Value(dryRunKey{}).(bool)
	return dryRun
}
