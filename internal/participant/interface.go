package participant

import (
	"context"
	"time"
)

// Store is the participant record store. FetchActive is the snapshot source for
// every search; the rest backs registration and self-service maintenance.
type Store interface {
	FetchActive(ctx context.Context) ([]Participant, error)
	Get(ctx context.Context, id string) (*Participant, error)
	GetByEmail(ctx context.Context, email string) (*Participant, error)
	Create(ctx context.Context, p *Participant) error
	Update(ctx context.Context, p *Participant) error
	UpdateEmail(ctx context.Context, id, email string) error
	Delete(ctx context.Context, id string) error
	ListRecent(ctx context.Context, since time.Time) ([]Participant, error)
}
