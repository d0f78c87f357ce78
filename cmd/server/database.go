package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/metalmindtech/mfn-api/internal/config"
	"github.com/metalmindtech/mfn-api/internal/redact"
)

// setupDatabase opens a connection pool to PostgreSQL and verifies
// connectivity with a ping before returning.
func setupDatabase(cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			log.Warn("Error closing database after failed ping", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %s", redact.Error(err))
	}

	log.Info("Database connection established",
		"max_open_conns", 10,
		"max_idle_conns", 5)
	return db, nil
}
