package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/permutatum/internal/config"
	"github.com/mauv0809/permutatum/internal/database"
	server "github.com/mauv0809/permutatum/internal/http"
	"github.com/mauv0809/permutatum/internal/metrics"
	"github.com/mauv0809/permutatum/internal/notifier"
	"github.com/mauv0809/permutatum/internal/notifier/slack"
	"github.com/mauv0809/permutatum/internal/participant"
	"github.com/mauv0809/permutatum/internal/processor"
	"github.com/mauv0809/permutatum/internal/pubsub"
	"github.com/mauv0809/permutatum/internal/registry"
	"github.com/mauv0809/permutatum/internal/search"
	"github.com/mauv0809/permutatum/internal/snapshot"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	log.SetLevel(config.ParseLevel(cfg.LogLevel))

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	ctx := context.Background()
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	usage := metrics.New(db)
	participants := participant.New(db)

	loader := snapshot.NewLoader(participants, newSnapshotCache(ctx, cfg.Cache), metricsSvc)

	inbox := notifier.NewStore(db)
	var sink notifier.Inbox = inbox
	if cfg.Slack.Enabled() {
		sink = notifier.NewMulti(inbox, slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc))
		log.Info("Mirroring match notifications to Slack", "channel", cfg.Slack.ChannelID)
	}

	bus := newEventBus(ctx, cfg.Events)
	defer bus.Close()

	proc := processor.New(participants, loader, sink, metricsSvc, bus)
	if err := proc.Register(); err != nil {
		log.Fatalf("Failed to subscribe notification hook: %s", err)
	}

	s := server.NewServer(cfg, server.Services{
		Participants:   participants,
		Registry:       registry.New(participants, loader, bus),
		Search:         search.New(loader, participants, metricsSvc, usage, search.Config{Timeout: cfg.Search.Timeout}),
		Snapshots:      loader,
		Inbox:          sink,
		Processor:      proc,
		PubSub:         bus,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Usage:          usage,
	})

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port, "event_bus", cfg.Events.Bus)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}

// newSnapshotCache uses Redis when configured and reachable, and an in-process
// cache otherwise.
func newSnapshotCache(ctx context.Context, cfg config.CacheConfig) snapshot.Cache {
	if cfg.RedisURL != "" {
		client, err := snapshot.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			log.Info("Using Redis snapshot cache", "ttl", cfg.SnapshotTTL)
			return snapshot.NewRedisCache(client, snapshot.DefaultRedisKey, cfg.SnapshotTTL)
		}
		log.Warn("Redis unavailable, falling back to in-memory snapshot cache", "error", err)
	}
	return snapshot.NewMemoryCache(cfg.SnapshotTTL)
}

func newEventBus(ctx context.Context, cfg config.EventsConfig) pubsub.PubSubClient {
	switch cfg.Bus {
	case config.BusGCP:
		bus, err := pubsub.NewGCP(ctx, cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to create pubsub client: %s", err)
		}
		return bus
	case config.BusNATS:
		bus, err := pubsub.NewNATS(pubsub.DefaultNATSConfig(cfg.NATSURL))
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %s", err)
		}
		return bus
	}
	return pubsub.NewLocal()
}
