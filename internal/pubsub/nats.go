package pubsub

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"
)

var _ PubSubClient = (*natsClient)(nil)

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string
	Name          string
	SubjectPrefix string
	ReconnectWait time.Duration
	MaxReconnects int
}

// DefaultNATSConfig returns the settings used when only a URL is configured.
func DefaultNATSConfig(url string) NATSConfig {
	return NATSConfig{
		URL:           url,
		Name:          "permutatum",
		SubjectPrefix: "permutatum",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// NewNATS connects to NATS. Topics map to subjects under SubjectPrefix.
func NewNATS(config NATSConfig) (PubSubClient, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	log.Info("Connected to NATS", "url", nc.ConnectedUrl())

	return &natsClient{
		conn:   nc,
		prefix: config.SubjectPrefix,
		subs:   make(map[EventType]*nats.Subscription),
	}, nil
}

func (c *natsClient) subject(topic EventType) string {
	if c.prefix == "" {
		return string(topic)
	}
	return c.prefix + "." + string(topic)
}

func (c *natsClient) SendMessage(ctx context.Context, topic EventType, data any) error {
	payload, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}
	if err := c.conn.Publish(c.subject(topic), payload); err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (c *natsClient) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}

func (c *natsClient) Subscribe(topic EventType, handler Handler) error {
	sub, err := c.conn.Subscribe(c.subject(topic), func(msg *nats.Msg) {
		if err := handler(context.Background(), msg.Data); err != nil {
			log.Error("Subscriber failed", "topic", topic, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	c.mu.Lock()
	if old, ok := c.subs[topic]; ok {
		_ = old.Unsubscribe()
	}
	c.subs[topic] = sub
	c.mu.Unlock()
	return nil
}

// Close drains the subscriptions and the connection.
func (c *natsClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for topic, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Warn("Failed to drain subscription", "topic", topic, "error", err)
		}
	}
	c.subs = make(map[EventType]*nats.Subscription)
	if err := c.conn.Drain(); err != nil {
		log.Warn("Failed to drain NATS connection", "error", err)
	}
}
