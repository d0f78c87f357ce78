// Package main implements the entry point for the MicroFounder Network API
// server, which runs the matching, circle lifecycle, and trust maintenance
// jobs behind a shared-secret HTTP surface.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/metalmindtech/mfn-api/internal/config"
	"github.com/metalmindtech/mfn-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String(
		"migrate",
		"",
		"Run a migration command (up, down, status, version, create) and exit",
	)
	migrationName := flag.String(
		"migration-name",
		"",
		"Name for a new migration when using -migrate create",
	)
	flag.Parse()

	fmt.Println("MicroFounder Network API starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	slog.Info("Configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"override_founders", len(cfg.Jobs.OverrideEmailList()))

	if *migrateCmd != "" {
		if err := handleMigrations(cfg, *migrateCmd, *migrationName); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		return
	}

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := startHTTPServer(app); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
