package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/bszczerba/taskdeck/internal/config"
	"github.com/bszczerba/taskdeck/internal/platform/logger"
	"github.com/bszczerba/taskdeck/internal/platform/postgres"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "apply database migrations and exit")
	flag.Parse()

	if err := run(*migrateOnly); err != nil {
		slog.Error("Application failed to start", "error", err)
		os.Exit(1)
	}
}

// run loads configuration, connects to the database, applies migrations and
// starts the HTTP server. Split from main so that every failure path returns
// an error instead of calling os.Exit directly.
func run(migrateOnly bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("Configuration loaded",
		"server_port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupDatabase(cfg, log)
	if err != nil {
		return err
	}

	if err := postgres.MigrateUp(db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database connection", "error", closeErr)
		}
		return err
	}
	log.Info("Database migrations applied")

	if migrateOnly {
		log.Info("Migrate-only mode, exiting")
		return db.Close()
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Failed to close database connection", "error", closeErr)
		}
		return err
	}

	return app.Run(context.Background())
}
