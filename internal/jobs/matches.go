package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/metalmindtech/mfn-api/internal/domain"
	"github.com/metalmindtech/mfn-api/internal/domain/matching"
	"github.com/metalmindtech/mfn-api/internal/platform/logger"
	"github.com/metalmindtech/mfn-api/internal/platform/metrics"
	"github.com/metalmindtech/mfn-api/internal/store"
)

const (
	// MinMatchScore is the minimum compatibility score for creating a
	// match suggestion.
	MinMatchScore = 40

	// MaxPendingMatches caps how many unanswered suggestions a founder can
	// accumulate. Override founders are exempt from the cap.
	MaxPendingMatches = 5
)

// jobMatchGeneration is the metrics label for this job.
const jobMatchGeneration = "match_generation"

// MatchGenerationResult summarizes one match generation run.
type MatchGenerationResult struct {
	Success           bool      `json:"success"`
	MatchesCreated    int       `json:"matches_created"`
	FoundersProcessed int       `json:"founders_processed"`
	Errors            []string  `json:"errors"`
	Timestamp         time.Time `json:"timestamp"`
}

// MatchGenerationJob generates match suggestions for active founders. It
// supports a full-network run and a targeted run for a single founder, used
// right after onboarding completes.
type MatchGenerationJob struct {
	founders store.FounderStore
	matches  store.MatchStore
	matcher  *matching.Engine
	override domain.OverridePolicy
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewMatchGenerationJob creates a match generation job. Panics if a store or
// the matcher is nil, as that is always a programming error in wiring.
func NewMatchGenerationJob(
	founders store.FounderStore,
	matches store.MatchStore,
	matcher *matching.Engine,
	override domain.OverridePolicy,
	m *metrics.Metrics,
	log *slog.Logger,
) *MatchGenerationJob {
	if founders == nil || matches == nil {
		panic("jobs: match generation requires non-nil stores")
	}
	if matcher == nil {
		panic("jobs: match generation requires a non-nil matcher")
	}
	if log == nil {
		log = slog.Default()
	}
	return &MatchGenerationJob{
		founders: founders,
		matches:  matches,
		matcher:  matcher,
		override: override,
		metrics:  m,
		logger:   log.With(slog.String("component", "match_generation_job")),
		now:      time.Now,
	}
}

// matchable reports whether a founder belongs in the match generation pool.
// Matching only considers founders who completed onboarding; override
// identities are admitted regardless.
func (j *MatchGenerationJob) matchable(f *domain.FounderProfile) bool {
	return f.OnboardingCompleted || j.override.Exempt(f.Email)
}

// Run executes a full-network match generation pass: every matchable founder
// is considered against every other matchable founder.
func (j *MatchGenerationJob) Run(ctx context.Context) MatchGenerationResult {
	start := j.now()
	log := logger.FromContextOrDefault(ctx, j.logger)
	result := MatchGenerationResult{
		Success:   true,
		Errors:    []string{},
		Timestamp: start.UTC(),
	}

	founders, err := j.founders.ListActive(ctx)
	if err != nil {
		log.Error("failed to list active founders", slog.String("error", err.Error()))
		result.Success = false
		result.Errors = append(result.Errors, fmt.Sprintf("listing active founders: %v", err))
		j.metrics.ObserveJobRun(jobMatchGeneration, j.now().Sub(start), err)
		return result
	}

	pool := make([]*domain.FounderProfile, 0, len(founders))
	for _, f := range founders {
		if j.matchable(f) {
			pool = append(pool, f)
		}
	}

	result.FoundersProcessed = len(pool)
	if len(pool) < 2 {
		result.Errors = append(result.Errors, "not enough active founders for matching")
		j.metrics.ObserveJobRun(jobMatchGeneration, j.now().Sub(start), nil)
		return result
	}

	for i, founder := range pool {
		candidates := make([]*domain.FounderProfile, 0, len(pool)-1)
		candidates = append(candidates, pool[:i]...)
		candidates = append(candidates, pool[i+1:]...)

		created, errs := j.generateFor(ctx, founder, candidates, false)
		result.MatchesCreated += created
		result.Errors = append(result.Errors, errs...)
	}

	log.Info("match generation complete",
		slog.Int("founders_processed", result.FoundersProcessed),
		slog.Int("matches_created", result.MatchesCreated),
		slog.Int("record_errors", len(result.Errors)))
	j.metrics.ObserveJobRun(jobMatchGeneration, j.now().Sub(start), nil)
	j.metrics.AddMatchesCreated(result.MatchesCreated)
	return result
}

// RunForFounder executes a targeted pass for one founder against the rest of
// the active network.
func (j *MatchGenerationJob) RunForFounder(ctx context.Context, founderID uuid.UUID) MatchGenerationResult {
	start := j.now()
	log := logger.FromContextOrDefault(ctx, j.logger)
	result := MatchGenerationResult{
		Success:           true,
		FoundersProcessed: 1,
		Errors:            []string{},
		Timestamp:         start.UTC(),
	}

	founders, err := j.founders.ListActive(ctx)
	if err != nil {
		log.Error("failed to list active founders", slog.String("error", err.Error()))
		result.Success = false
		result.Errors = append(result.Errors, fmt.Sprintf("listing active founders: %v", err))
		j.metrics.ObserveJobRun(jobMatchGeneration, j.now().Sub(start), err)
		return result
	}

	var subject *domain.FounderProfile
	candidates := make([]*domain.FounderProfile, 0, len(founders))
	for _, f := range founders {
		if f.ID == founderID {
			subject = f
			continue
		}
		if j.matchable(f) {
			candidates = append(candidates, f)
		}
	}
	if subject == nil || !j.matchable(subject) {
		result.Success = false
		result.Errors = append(result.Errors, "founder not found or not eligible for matching")
		j.metrics.ObserveJobRun(jobMatchGeneration, j.now().Sub(start), store.ErrFounderNotFound)
		return result
	}

	created, errs := j.generateFor(ctx, subject, candidates, true)
	result.MatchesCreated = created
	result.Errors = append(result.Errors, errs...)

	j.metrics.ObserveJobRun(jobMatchGeneration, j.now().Sub(start), nil)
	j.metrics.AddMatchesCreated(created)
	return result
}

// generateFor suggests matches for one founder against the candidate set.
// Returns the number of matches created and any per-record errors. In a
// targeted run an at-cap founder reports the skip instead of silently
// producing nothing.
func (j *MatchGenerationJob) generateFor(ctx context.Context, founder *domain.FounderProfile, candidates []*domain.FounderProfile, targeted bool) (int, []string) {
	var errs []string

	pending, err := j.matches.CountSuggestedFor(ctx, founder.ID)
	if err != nil {
		return 0, append(errs, fmt.Sprintf("counting pending matches for %s: %v", founder.ID, err))
	}

	exempt := j.override.Exempt(founder.Email)
	limit := MaxPendingMatches - pending
	if exempt {
		limit = MaxPendingMatches
	} else if limit <= 0 {
		if targeted {
			errs = append(errs, "max pending matches reached")
		}
		return 0, errs
	}

	created := 0
	for _, candidate := range j.matcher.FindBestMatches(founder, candidates, limit) {
		if candidate.Score < MinMatchScore {
			continue
		}

		exists, err := j.matches.ExistsForPair(ctx, candidate.FounderID, candidate.CandidateID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("checking existing match %s/%s: %v", candidate.FounderID, candidate.CandidateID, err))
			continue
		}
		if exists {
			continue
		}

		match, err := domain.NewMatch(candidate.FounderID, candidate.CandidateID, candidate.Score, candidate.Breakdown, candidate.Reasons)
		if err != nil {
			errs = append(errs, fmt.Sprintf("building match %s/%s: %v", candidate.FounderID, candidate.CandidateID, err))
			continue
		}

		if err := j.matches.Create(ctx, match); err != nil {
			// The unordered-pair constraint is the real uniqueness
			// guarantee; a duplicate insert just means another run or a
			// concurrent pass got there first.
			if errors.Is(err, store.ErrMatchExists) {
				continue
			}
			errs = append(errs, fmt.Sprintf("creating match %s/%s: %v", candidate.FounderID, candidate.CandidateID, err))
			continue
		}
		created++
	}

	return created, errs
}
