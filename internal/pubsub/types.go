package pubsub

import (
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/nats-io/nats.go"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

type localClient struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	wg       sync.WaitGroup
	closed   bool
}

type natsClient struct {
	conn   *nats.Conn
	prefix string
	mu     sync.Mutex
	subs   map[EventType]*nats.Subscription
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventParticipantChanged EventType = "participant-changed"
)

// Change describes what happened to a participant.
type Change string

const (
	ChangeCreated      Change = "created"
	ChangeUpdated      Change = "updated"
	ChangeEmailChanged Change = "email_changed"
	ChangeDeleted      Change = "deleted"
)

// ParticipantChanged is the payload of EventParticipantChanged. It is published
// after the write has been committed.
type ParticipantChanged struct {
	ParticipantID string `msgpack:"participant_id" json:"participant_id"`
	Change        Change `msgpack:"change" json:"change"`
}
