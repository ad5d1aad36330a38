package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	LogLevel      string
	AdminToken    string
	Slack         SlackConfig
	Turso         TursoConfig
	Events        EventsConfig
	Cache         CacheConfig
	Search        SearchConfig
}

type SlackConfig struct {
	Token     string
	ChannelID string
}

// Enabled reports whether match notifications should be mirrored to Slack.
func (s SlackConfig) Enabled() bool {
	return s.Token != "" && s.ChannelID != ""
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// EventsConfig selects the bus carrying participant-changed events.
type EventsConfig struct {
	Bus       string // local, gcp or nats
	ProjectID string
	NATSURL   string
}

type CacheConfig struct {
	RedisURL    string
	SnapshotTTL time.Duration
}

type SearchConfig struct {
	Timeout      time.Duration
	RateLimit    float64
	RateBurst    int
	DefaultLimit int
}

const (
	BusLocal = "local"
	BusGCP   = "gcp"
	BusNATS  = "nats"
)
