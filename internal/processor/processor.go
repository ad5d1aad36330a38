package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/permutatum/internal/graph"
	"github.com/mauv0809/permutatum/internal/matchmaking"
	"github.com/mauv0809/permutatum/internal/metrics"
	"github.com/mauv0809/permutatum/internal/notifier"
	"github.com/mauv0809/permutatum/internal/participant"
	"github.com/mauv0809/permutatum/internal/pubsub"
)

// New creates a new Processor.
func New(store Store, snapshots Snapshots, notifier Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Processor {
	return &Processor{
		store:     store,
		snapshots: snapshots,
		finder:    matchmaking.New(),
		pubsub:    pubsub,
		notifier:  notifier,
		metrics:   metrics,
	}
}

// Register subscribes the processor to participant-changed events.
func (p *Processor) Register() error {
	return p.pubsub.Subscribe(pubsub.EventParticipantChanged, p.HandleMessage)
}

// HandleMessage decodes a participant-changed payload and runs the hook.
// Only undecodable payloads produce an error.
func (p *Processor) HandleMessage(ctx context.Context, data []byte) error {
	var ev pubsub.ParticipantChanged
	if err := p.pubsub.ProcessMessage(data, &ev); err != nil {
		return fmt.Errorf("failed to decode participant-changed event: %w", err)
	}
	p.HandleParticipantChanged(ctx, ev)
	return nil
}

// HandleParticipantChanged looks for direct swaps between the changed
// participant and everybody else, using rank-1 destinations only, and emits one
// notification to each side of every swap found. Failures are logged and
// never returned.
func (p *Processor) HandleParticipantChanged(ctx context.Context, ev pubsub.ParticipantChanged) {
	if ev.Change != pubsub.ChangeCreated && ev.Change != pubsub.ChangeUpdated {
		log.Debug("Participant change does not trigger notifications", "id", ev.ParticipantID, "change", ev.Change)
		return
	}
	p.metrics.IncHookRuns()

	record, err := p.store.Get(ctx, ev.ParticipantID)
	if err != nil {
		if errors.Is(err, participant.ErrNotFound) {
			log.Info("Participant vanished before notification hook ran", "id", ev.ParticipantID)
			return
		}
		log.Error("Failed to load participant for notification hook", "error", err, "id", ev.ParticipantID)
		return
	}
	changed := *record
	if !changed.Active() || changed.Rank1 == "" {
		log.Debug("Participant not eligible for swap notifications", "id", changed.ID, "status", changed.Status)
		return
	}

	snapshot, err := p.snapshots.Fresh(ctx)
	if err != nil {
		log.Error("Failed to load snapshot for notification hook", "error", err, "id", changed.ID)
		return
	}

	q := matchmaking.Query{Origin: changed.Origin, Destination: changed.Rank1, Length: 2, PriorityOnly: true}
	result, err := p.finder.FindCycles(ctx, graph.Build(snapshot), q, nil)
	if err != nil {
		log.Error("Direct swap check failed", "error", err, "id", changed.ID)
		return
	}

	matches := 0
	for _, c := range result.Cycles {
		if c.Members[0].Participant.ID != changed.ID {
			continue
		}
		other := c.Members[1].Participant
		if strings.EqualFold(other.Email, changed.Email) {
			continue
		}
		matches++
		p.emit(ctx, toExisting(changed, other, ev.Change))
		p.emit(ctx, toChanged(changed, other))
	}
	log.Info("Notification hook finished", "id", changed.ID, "change", ev.Change, "matches", matches)
}

func (p *Processor) emit(ctx context.Context, n notifier.Notification) {
	sent, err := p.notifier.Emit(ctx, n)
	if err != nil {
		p.metrics.IncNotificationsFailed()
		log.Error("Failed to emit notification", "error", err, "target", n.TargetEmail, "kind", n.Kind)
		return
	}
	if sent {
		p.metrics.IncNotificationsEmitted()
	}
}

// toExisting addresses the participant who was already registered.
func toExisting(changed, other participant.Participant, change pubsub.Change) notifier.Notification {
	message := fmt.Sprintf("New direct swap match! %s (%s) wants to move to %s.", changed.Name, changed.Origin, changed.Rank1)
	if change == pubsub.ChangeUpdated {
		message = fmt.Sprintf("New match! %s (%s) updated their details: destination %s, a direct swap is possible!",
			changed.Name, changed.Origin, changed.Rank1)
	}
	return notifier.Notification{
		TargetEmail: other.Email,
		Kind:        notifier.KindDirectSwap,
		SubjectID:   changed.ID,
		Message:     message,
		Details:     fmt.Sprintf("Search %s → %s to see it.", other.Origin, changed.Origin),
	}
}

// toChanged addresses the participant whose write triggered the hook.
func toChanged(changed, other participant.Participant) notifier.Notification {
	return notifier.Notification{
		TargetEmail: changed.Email,
		Kind:        notifier.KindDirectSwap,
		SubjectID:   other.ID,
		Message: fmt.Sprintf("Good news! %s (%s) wants to move to %s: a direct swap is possible!",
			other.Name, other.Origin, other.Rank1),
		Details: fmt.Sprintf("Search %s → %s to see it.", changed.Origin, changed.Rank1),
	}
}
