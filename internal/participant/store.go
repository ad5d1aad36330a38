package participant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/permutatum/internal/court"
)

const selectColumns = `id, name, grade, origin, rank1, rank2, rank3, email, phone, phone_visible, status, created_at`

// New creates a new participant Store backed by db.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// FetchActive returns every active participant in insertion order. The order
// is what makes search results reproducible for a given snapshot.
func (s *store) FetchActive(ctx context.Context) ([]Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.query(ctx, `SELECT `+selectColumns+` FROM participants WHERE status = ? ORDER BY rowid`, StatusActive)
}

// ListRecent returns active participants registered at or after since, newest first.
func (s *store) ListRecent(ctx context.Context, since time.Time) ([]Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.query(ctx, `SELECT `+selectColumns+` FROM participants WHERE status = ? AND created_at >= ? ORDER BY created_at DESC, rowid DESC`, StatusActive, since.Unix())
}

func (s *store) Get(ctx context.Context, id string) (*Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM participants WHERE id = ?`, id)
	return s.scanOne(row)
}

func (s *store) GetByEmail(ctx context.Context, email string) (*Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM participants WHERE email = ?`, NormalizeEmail(email))
	return s.scanOne(row)
}

// Create validates and inserts p. ID, Status and CreatedAt are filled in when empty.
func (s *store) Create(ctx context.Context, p *Participant) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO participants (id, name, grade, origin, rank1, rank2, rank3, email, phone, phone_visible, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Grade, p.Origin, p.Rank1, nullCourt(p.Rank2), nullCourt(p.Rank3),
		p.Email, p.Phone, p.PhoneVisible, p.Status, p.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateEmail, p.Email)
		}
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	log.Debug("Participant created", "id", p.ID, "origin", p.Origin, "rank1", p.Rank1)
	return nil
}

// Update rewrites every editable field of p except the email, which has its own
// flow (UpdateEmail).
func (s *store) Update(ctx context.Context, p *Participant) error {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE participants
		SET name = ?, grade = ?, origin = ?, rank1 = ?, rank2 = ?, rank3 = ?, phone = ?, phone_visible = ?, status = ?
		WHERE id = ?`,
		p.Name, p.Grade, p.Origin, p.Rank1, nullCourt(p.Rank2), nullCourt(p.Rank3),
		p.Phone, p.PhoneVisible, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update participant %s: %w", p.ID, err)
	}
	return requireAffected(res, p.ID)
}

func (s *store) UpdateEmail(ctx context.Context, id, email string) error {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return fmt.Errorf("%w: email is invalid", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `UPDATE participants SET email = ? WHERE id = ?`, email, id)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateEmail, email)
		}
		return fmt.Errorf("failed to update email for participant %s: %w", id, err)
	}
	return requireAffected(res, id)
}

func (s *store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant %s: %w", id, err)
	}
	return requireAffected(res, id)
}

func (s *store) query(ctx context.Context, query string, args ...any) ([]Participant, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []Participant
	for rows.Next() {
		p, err := s.scanParticipant(rows)
		if err != nil {
			log.Error("Failed to scan participant row", "error", err)
			continue
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

func (s *store) scanOne(row *sql.Row) (*Participant, error) {
	p, err := s.scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read participant: %w", err)
	}
	return p, nil
}

// scanParticipant is a helper function to scan a single participant row.
func (s *store) scanParticipant(scanner interface{ Scan(...any) error }) (*Participant, error) {
	var (
		p            Participant
		rank2, rank3 sql.NullString
		createdAt    int64
	)
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Grade, &p.Origin, &p.Rank1, &rank2, &rank3,
		&p.Email, &p.Phone, &p.PhoneVisible, &p.Status, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	p.Rank2 = court.Court(rank2.String)
	p.Rank3 = court.Court(rank3.String)
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &p, nil
}

func nullCourt(c court.Court) sql.NullString {
	return sql.NullString{String: string(c), Valid: c != ""}
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Both sqlite3 and libsql report constraint failures only through the message.
func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}
