// Package registry owns participant writes. Every committed write invalidates
// the snapshot cache and publishes a participant-changed event; neither step
// can fail the write.
package registry

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/permutatum/internal/participant"
	"github.com/mauv0809/permutatum/internal/pubsub"
)

// Invalidator drops cached snapshots.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service performs participant writes.
type Service struct {
	store participant.Store
	cache Invalidator
	bus   pubsub.PubSubClient
}

// New creates a registry service.
func New(store participant.Store, cache Invalidator, bus pubsub.PubSubClient) *Service {
	return &Service{store: store, cache: cache, bus: bus}
}

// Register creates a participant and returns the stored record.
func (s *Service) Register(ctx context.Context, p participant.Participant) (participant.Participant, error) {
	if err := s.store.Create(ctx, &p); err != nil {
		return participant.Participant{}, err
	}
	log.Info("Registered participant", "id", p.ID, "origin", p.Origin, "rank1", p.Rank1)
	s.committed(ctx, p.ID, pubsub.ChangeCreated)
	return p, nil
}

// Edit applies a self-service edit to participant id. The email, id and
// registration time cannot be changed this way.
func (s *Service) Edit(ctx context.Context, id string, changes participant.Participant) (participant.Participant, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return participant.Participant{}, err
	}

	updated := *current
	updated.Name = changes.Name
	updated.Grade = changes.Grade
	updated.Origin = changes.Origin
	updated.Rank1 = changes.Rank1
	updated.Rank2 = changes.Rank2
	updated.Rank3 = changes.Rank3
	updated.Phone = changes.Phone
	updated.PhoneVisible = changes.PhoneVisible
	if changes.Status != "" {
		updated.Status = changes.Status
	}

	if err := s.store.Update(ctx, &updated); err != nil {
		return participant.Participant{}, err
	}
	log.Info("Updated participant", "id", id, "origin", updated.Origin, "rank1", updated.Rank1, "status", updated.Status)
	s.committed(ctx, id, pubsub.ChangeUpdated)
	return updated, nil
}

// ChangeEmail is the administrative email change.
func (s *Service) ChangeEmail(ctx context.Context, id, email string) error {
	if err := s.store.UpdateEmail(ctx, id, email); err != nil {
		return err
	}
	log.Info("Changed participant email", "id", id)
	s.committed(ctx, id, pubsub.ChangeEmailChanged)
	return nil
}

// Delete removes participant id permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	log.Info("Deleted participant", "id", id)
	s.committed(ctx, id, pubsub.ChangeDeleted)
	return nil
}

func (s *Service) committed(ctx context.Context, id string, change pubsub.Change) {
	ctx = context.WithoutCancel(ctx)
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.bus == nil {
		return
	}
	ev := pubsub.ParticipantChanged{ParticipantID: id, Change: change}
	if err := s.bus.SendMessage(ctx, pubsub.EventParticipantChanged, ev); err != nil {
		log.Error("Failed to publish participant change", "error", fmt.Errorf("failed to publish: %w", err), "id", id, "change", change)
	}
}
