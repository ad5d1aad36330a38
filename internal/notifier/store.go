package notifier

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var _ Inbox = (*store)(nil)

// store keeps notifications in the notifications table.
type store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore creates the database-backed Inbox.
func NewStore(db *sql.DB) Inbox {
	return &store{db: db}
}

// Emit inserts n unless the target already has an unread notification of the
// same kind about the same subject.
func (s *store) Emit(ctx context.Context, n Notification) (bool, error) {
	n.TargetEmail = strings.ToLower(strings.TrimSpace(n.TargetEmail))
	if n.TargetEmail == "" {
		return false, fmt.Errorf("notification has no target")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var existing int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE target_email = ? AND kind = ? AND subject_id = ? AND read = 0`,
		n.TargetEmail, n.Kind, n.SubjectID).Scan(&existing)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate notification: %w", err)
	}
	if existing > 0 {
		log.Debug("Skipping duplicate notification", "target", n.TargetEmail, "kind", n.Kind, "subject", n.SubjectID)
		return false, nil
	}

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, target_email, kind, subject_id, message, details, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		n.ID, n.TargetEmail, n.Kind, n.SubjectID, n.Message, n.Details, n.CreatedAt.UnixNano())
	if err != nil {
		return false, fmt.Errorf("failed to insert notification: %w", err)
	}
	return true, nil
}

// ListUnread returns the unread notifications for email, newest first.
func (s *store) ListUnread(ctx context.Context, email string) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target_email, kind, subject_id, message, details, read, created_at
		FROM notifications
		WHERE target_email = ? AND read = 0
		ORDER BY created_at DESC`, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		var (
			n         Notification
			createdAt int64
		)
		if err := rows.Scan(&n.ID, &n.TargetEmail, &n.Kind, &n.SubjectID, &n.Message, &n.Details, &n.Read, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.CreatedAt = time.Unix(0, createdAt).UTC()
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkAllRead marks every unread notification for email as read and returns how many changed.
func (s *store) MarkAllRead(ctx context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE target_email = ? AND read = 0`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}
