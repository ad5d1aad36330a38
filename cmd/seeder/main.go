package main

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/mauv0809/permutatum/internal/court"
	"github.com/mauv0809/permutatum/internal/database"
	"github.com/mauv0809/permutatum/internal/participant"
)

type seederConfig struct {
	dbName        string
	primaryURL    string
	authToken     string
	migrationsDir string
	count         int
	seed          int64
	courts        []court.Court
}

// Simplified config loading for the script
func loadConfig() seederConfig {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	cfg := seederConfig{
		dbName:        os.Getenv("DB_NAME"),
		primaryURL:    os.Getenv("TURSO_PRIMARY_URL"),
		authToken:     os.Getenv("TURSO_AUTH_TOKEN"),
		migrationsDir: "./migrations",
		count:         500,
		seed:          time.Now().UnixNano(),
	}
	if cfg.dbName == "" && cfg.primaryURL == "" {
		log.Fatal("Error: set DB_NAME for a local database or TURSO_PRIMARY_URL for a remote one.")
	}
	if dir, ok := os.LookupEnv("MIGRATIONS_DIR"); ok {
		cfg.migrationsDir = dir
	}
	if raw, ok := os.LookupEnv("SEED_COUNT"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			log.Fatalf("Error: SEED_COUNT must be a positive integer, got %q", raw)
		}
		cfg.count = n
	}
	if raw, ok := os.LookupEnv("SEED"); ok {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Fatalf("Error: SEED must be an integer, got %q", raw)
		}
		cfg.seed = n
	}
	// A short list such as "TJSP,TJRJ,TJMG" gives a dense graph with many cycles.
	if raw, ok := os.LookupEnv("SEED_COURTS"); ok {
		for _, part := range strings.Split(raw, ",") {
			c, err := court.Parse(part)
			if err != nil {
				log.Fatalf("Error: SEED_COURTS: %s", err)
			}
			cfg.courts = append(cfg.courts, c)
		}
	}
	return cfg
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg.dbName, cfg.primaryURL, cfg.authToken, cfg.migrationsDir)
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()
	log.Info("Successfully connected to the database.")

	store := participant.New(db)
	gen := participant.NewGenerator(cfg.seed, cfg.courts...)
	ctx := context.Background()

	log.Info("Preparing to insert fake participants...", "total", cfg.count, "seed", gen.Seed())
	startTime := time.Now()

	inserted, skipped := 0, 0
	for i, p := range gen.Participants(cfg.count) {
		if err := store.Create(ctx, &p); err != nil {
			if errors.Is(err, participant.ErrDuplicateEmail) {
				skipped++
				continue
			}
			log.Fatalf("Failed to insert participant %d: %s", i, err)
		}
		inserted++
		if inserted%100 == 0 {
			log.Info("Inserted batch", "completed", inserted, "total", cfg.count)
		}
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted fake participants.", "inserted", inserted, "skipped", skipped, "duration", duration)
}
