package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/metalmindtech/mfn-api/internal/api"
	"github.com/metalmindtech/mfn-api/internal/config"
	"github.com/metalmindtech/mfn-api/internal/domain"
	"github.com/metalmindtech/mfn-api/internal/domain/circles"
	"github.com/metalmindtech/mfn-api/internal/domain/matching"
	"github.com/metalmindtech/mfn-api/internal/domain/trust"
	"github.com/metalmindtech/mfn-api/internal/jobs"
	"github.com/metalmindtech/mfn-api/internal/platform/metrics"
	"github.com/metalmindtech/mfn-api/internal/platform/postgres"
)

// application holds the fully wired dependency graph for the server. Wiring
// happens once at startup; everything downstream receives its dependencies
// explicitly.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	matchJob  *jobs.MatchGenerationJob
	circleJob *jobs.CircleRotationJob
	trustJob  *jobs.TrustDecayJob

	jobsHandler *api.JobsHandler
}

// newApplication builds the application from configuration: database
// connection, persistence stores, domain engines, jobs, and HTTP handlers.
func newApplication(cfg *config.Config, log *slog.Logger) (*application, error) {
	db, err := setupDatabase(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	founderStore := postgres.NewFounderStore(db, log)
	matchStore := postgres.NewMatchStore(db, log)
	circleStore := postgres.NewCircleStore(db, log)
	activityStore := postgres.NewActivityStore(db, log)

	override := domain.NewOverridePolicy(cfg.Jobs.OverrideEmailList())
	matchParams := matching.NewDefaultParams()
	matcher := matching.NewEngine(matchParams)

	circleConfig := circles.DefaultConfig()
	rules := circles.NewRules(circleConfig, matchParams.UTCOffset, override)
	namer := circles.NewRandomNamer(rand.New(rand.NewSource(time.Now().UnixNano())))
	formation := circles.NewFormationEngine(circleConfig, matcher, namer, matchParams.UTCOffset)

	trustParams := trust.NewDefaultParams()

	m := metrics.New()

	matchJob := jobs.NewMatchGenerationJob(founderStore, matchStore, matcher, override, m, log)
	circleJob := jobs.NewCircleRotationJob(circleStore, founderStore, activityStore, db, rules, formation, m, log)
	trustJob := jobs.NewTrustDecayJob(founderStore, matchStore, circleStore, activityStore, trustParams, override, m, log)

	jobsHandler := api.NewJobsHandler(matchJob, circleJob, trustJob, log)

	log.Info("Application initialized",
		"min_match_score", jobs.MinMatchScore,
		"circle_min_members", circleConfig.MinMembers,
		"circle_max_members", circleConfig.MaxMembers)

	return &application{
		config:      cfg,
		logger:      log,
		db:          db,
		matchJob:    matchJob,
		circleJob:   circleJob,
		trustJob:    trustJob,
		jobsHandler: jobsHandler,
	}, nil
}

// cleanup releases resources held by the application. Safe to call more than
// once.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
		app.db = nil
	}
}
