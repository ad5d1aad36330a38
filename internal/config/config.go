package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := parse(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	return cfg
}

type lookupFunc func(key string) (string, bool)

func parse(lookup lookupFunc) (Config, error) {
	var missing []string
	// A helper function to get a required env var. Missing keys are collected.
	getEnv := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		missing = append(missing, key)
		return ""
	}
	optional := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}
	duration := func(key string, fallback time.Duration) time.Duration {
		raw := optional(key, "")
		if raw == "" {
			return fallback
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Warn("Invalid duration, using default", "key", key, "value", raw, "default", fallback)
			return fallback
		}
		return d
	}
	integer := func(key string, fallback int) int {
		raw := optional(key, "")
		if raw == "" {
			return fallback
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Warn("Invalid integer, using default", "key", key, "value", raw, "default", fallback)
			return fallback
		}
		return n
	}
	float := func(key string, fallback float64) float64 {
		raw := optional(key, "")
		if raw == "" {
			return fallback
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			log.Warn("Invalid number, using default", "key", key, "value", raw, "default", fallback)
			return fallback
		}
		return f
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		Port:          getEnv("PORT"),
		MigrationsDir: optional("MIGRATIONS_DIR", "./migrations"),
		LogLevel:      optional("LOG_LEVEL", "info"),
		AdminToken:    optional("ADMIN_TOKEN", ""),
		Slack: SlackConfig{
			Token:     optional("SLACK_BOT_TOKEN", ""),
			ChannelID: optional("SLACK_CHANNEL_ID", ""),
		},
		Turso: TursoConfig{
			PrimaryURL: optional("TURSO_PRIMARY_URL", ""),
			AuthToken:  optional("TURSO_AUTH_TOKEN", ""),
		},
		Events: EventsConfig{
			ProjectID: optional("GCP_PROJECT", ""),
			NATSURL:   optional("NATS_URL", ""),
		},
		Cache: CacheConfig{
			RedisURL:    optional("REDIS_URL", ""),
			SnapshotTTL: duration("SNAPSHOT_TTL", 5*time.Minute),
		},
		Search: SearchConfig{
			Timeout:      duration("SEARCH_TIMEOUT", 10*time.Second),
			RateLimit:    float("SEARCH_RATE_LIMIT", 2),
			RateBurst:    integer("SEARCH_RATE_BURST", 5),
			DefaultLimit: integer("DEFAULT_LIMIT", 50),
		},
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	bus, err := eventBus(optional("EVENT_BUS", ""), cfg.Events)
	if err != nil {
		return Config{}, err
	}
	cfg.Events.Bus = bus
	return cfg, nil
}

// eventBus picks the bus. Without an explicit choice, a configured GCP project
// wins over a NATS URL, and the in-process bus is the fallback.
func eventBus(choice string, events EventsConfig) (string, error) {
	switch strings.ToLower(choice) {
	case "":
		switch {
		case events.ProjectID != "":
			return BusGCP, nil
		case events.NATSURL != "":
			return BusNATS, nil
		}
		return BusLocal, nil
	case BusLocal:
		return BusLocal, nil
	case BusGCP:
		if events.ProjectID == "" {
			return "", fmt.Errorf("EVENT_BUS=gcp requires GCP_PROJECT")
		}
		return BusGCP, nil
	case BusNATS:
		if events.NATSURL == "" {
			return "", fmt.Errorf("EVENT_BUS=nats requires NATS_URL")
		}
		return BusNATS, nil
	}
	return "", fmt.Errorf("unknown EVENT_BUS %q", choice)
}

// ParseLevel maps LOG_LEVEL to a log level, defaulting to info.
func ParseLevel(level string) log.Level {
	parsed, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}
