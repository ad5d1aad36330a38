package pubsub

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

var _ PubSubClient = (*localClient)(nil)

// ErrClosed is returned when publishing on a closed bus.
var ErrClosed = errors.New("pubsub: client closed")

// NewLocal creates an in-process bus. Each message is handled on its own
// goroutine; Close waits for the in-flight handlers.
func NewLocal() PubSubClient {
	return &localClient{handlers: make(map[EventType][]Handler)}
}

func (c *localClient) SendMessage(ctx context.Context, topic EventType, data any) error {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	handlers := c.handlers[topic]
	if len(handlers) == 0 {
		log.Debug("No subscribers for topic", "topic", topic)
		return nil
	}
	for _, h := range handlers {
		c.wg.Add(1)
		go func(h Handler) {
			defer c.wg.Done()
			// The publisher's request may already be finished.
			if err := h(context.WithoutCancel(ctx), payload); err != nil {
				log.Error("Subscriber failed", "topic", topic, "error", err)
			}
		}(h)
	}
	return nil
}

func (c *localClient) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}

func (c *localClient) Subscribe(topic EventType, handler Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.handlers[topic] = append(c.handlers[topic], handler)
	return nil
}

func (c *localClient) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()
}
