package pubsub

import "context"

// Handler consumes the raw payload of one delivered message.
type Handler func(ctx context.Context, data []byte) error

// PubSubClient publishes msgpack-encoded events and delivers them to subscribers.
type PubSubClient interface {
	SendMessage(ctx context.Context, topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
	Subscribe(topic EventType, handler Handler) error
	Close()
}
