package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/metalmindtech/mfn-api/internal/config"
	"github.com/metalmindtech/mfn-api/internal/redact"
)

// slogGooseLogger adapts goose's logger interface to slog.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...), "component", "migrations")
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "component", "migrations")
	os.Exit(1)
}

// handleMigrations runs the requested goose command against the configured
// database and returns once it completes.
func handleMigrations(cfg *config.Config, command, migrationName string) error {
	log := slog.Default().With("component", "migrations", "command", command)

	dir, err := findMigrationsDir()
	if err != nil {
		return err
	}
	log.Info("Using migrations directory", "path", dir)

	goose.SetLogger(&slogGooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if command == "create" {
		if migrationName == "" {
			return fmt.Errorf("migration name is required for create (use -migration-name)")
		}
		return goose.Create(nil, dir, migrationName, "sql")
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Error closing database connection", "error", closeErr)
		}
	}()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to database: %s", redact.Error(err))
	}

	start := time.Now()
	switch command {
	case "up":
		err = goose.Up(db, dir)
	case "down":
		err = goose.Down(db, dir)
	case "status":
		err = goose.Status(db, dir)
	case "version":
		err = goose.Version(db, dir)
	default:
		return fmt.Errorf("unknown migration command: %q", command)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("Migration operation completed",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// findMigrationsDir locates the migrations directory by walking up from the
// working directory until a go.mod is found.
func findMigrationsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			migrations := filepath.Join(dir, "internal", "platform", "postgres", "migrations")
			if info, err := os.Stat(migrations); err == nil && info.IsDir() {
				return migrations, nil
			}
			return "", fmt.Errorf("migrations directory not found at %s", migrations)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not locate project root (no go.mod found above %s)", dir)
		}
		dir = parent
	}
}
