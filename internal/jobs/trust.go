package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/metalmindtech/mfn-api/internal/domain"
	"github.com/metalmindtech/mfn-api/internal/domain/trust"
	"github.com/metalmindtech/mfn-api/internal/platform/logger"
	"github.com/metalmindtech/mfn-api/internal/platform/metrics"
	"github.com/metalmindtech/mfn-api/internal/store"
)

// jobTrustDecay is the metrics label for this job.
const jobTrustDecay = "trust_decay"

// TrustDecayResult summarizes one trust cycle run.
type TrustDecayResult struct {
	Success           bool      `json:"success"`
	FoundersProcessed int       `json:"founders_processed"`
	TrustDecayed      int       `json:"trust_decayed"`
	TrustBoosted      int       `json:"trust_boosted"`
	Errors            []string  `json:"errors"`
	Timestamp         time.Time `json:"timestamp"`
}

// TrustDecayJob applies one trust cycle to every active founder: recent
// positive activity inside the boost window raises the score, otherwise
// inactivity past the grace period decays it.
type TrustDecayJob struct {
	founders   store.FounderStore
	matches    store.MatchStore
	circles    store.CircleStore
	activities store.ActivityStore
	engine     *trust.Engine
	params     *trust.Params
	override   domain.OverridePolicy
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewTrustDecayJob creates a trust decay job using the given parameters.
// Panics if a store or the parameters are nil.
func NewTrustDecayJob(
	founders store.FounderStore,
	matches store.MatchStore,
	circleStore store.CircleStore,
	activities store.ActivityStore,
	params *trust.Params,
	override domain.OverridePolicy,
	m *metrics.Metrics,
	log *slog.Logger,
) *TrustDecayJob {
	if founders == nil || matches == nil || circleStore == nil || activities == nil {
		panic("jobs: trust decay requires non-nil stores")
	}
	if params == nil {
		panic("jobs: trust decay requires non-nil parameters")
	}
	if log == nil {
		log = slog.Default()
	}
	return &TrustDecayJob{
		founders:   founders,
		matches:    matches,
		circles:    circleStore,
		activities: activities,
		engine:     trust.NewEngine(params),
		params:     params,
		override:   override,
		metrics:    m,
		logger:     log.With(slog.String("component", "trust_decay_job")),
		now:        time.Now,
	}
}

// Run executes one trust cycle over all active founders. Override founders
// are skipped entirely; their scores never move.
func (j *TrustDecayJob) Run(ctx context.Context) TrustDecayResult {
	start := j.now()
	log := logger.FromContextOrDefault(ctx, j.logger)
	result := TrustDecayResult{
		Success:   true,
		Errors:    []string{},
		Timestamp: start.UTC(),
	}

	founders, err := j.founders.ListActive(ctx)
	if err != nil {
		log.Error("failed to list active founders", slog.String("error", err.Error()))
		result.Success = false
		result.Errors = append(result.Errors, fmt.Sprintf("listing active founders: %v", err))
		j.metrics.ObserveJobRun(jobTrustDecay, j.now().Sub(start), err)
		return result
	}

	now := start.UTC()
	windowStart := now.AddDate(0, 0, -j.params.BoostWindowDays)

	for _, founder := range founders {
		result.FoundersProcessed++

		if j.override.Exempt(founder.Email) {
			continue
		}

		counts, err := j.activityCounts(ctx, founder.ID, windowStart)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("counting activity for %s: %v", founder.ID, err))
			continue
		}

		outcome := j.engine.Apply(founder.TrustScore, founder.DaysInactive(now), counts)
		if !outcome.Boosted && !outcome.Decayed {
			continue
		}

		if err := j.founders.UpdateTrustScore(ctx, founder.ID, outcome.NewScore); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("updating trust score for %s: %v", founder.ID, err))
			continue
		}

		if outcome.Boosted {
			result.TrustBoosted++
			j.metrics.IncrementTrustAdjustment("boost")
		} else {
			result.TrustDecayed++
			j.metrics.IncrementTrustAdjustment("decay")
		}
	}

	log.Info("trust decay complete",
		slog.Int("founders_processed", result.FoundersProcessed),
		slog.Int("trust_boosted", result.TrustBoosted),
		slog.Int("trust_decayed", result.TrustDecayed),
		slog.Int("record_errors", len(result.Errors)))
	j.metrics.ObserveJobRun(jobTrustDecay, j.now().Sub(start), nil)
	return result
}

// BoostForAction credits one founder immediately for a single qualifying
// action, outside the batch cycle, and bumps their activity timestamp.
// Returns the founder's new trust score.
func (j *TrustDecayJob) BoostForAction(ctx context.Context, founderID uuid.UUID, action trust.Action) (float64, error) {
	founder, err := j.founders.GetByID(ctx, founderID)
	if err != nil {
		return 0, fmt.Errorf("loading founder: %w", err)
	}

	boost, err := j.engine.BoostForAction(action)
	if err != nil {
		return 0, err
	}

	newScore := j.engine.Clamp(founder.TrustScore + boost)
	if err := j.founders.UpdateTrustScore(ctx, founderID, newScore); err != nil {
		return 0, fmt.Errorf("updating trust score: %w", err)
	}
	if err := j.founders.TouchActivity(ctx, founderID, j.now().UTC()); err != nil {
		return 0, fmt.Errorf("recording activity: %w", err)
	}

	j.metrics.IncrementTrustAdjustment("boost")
	return newScore, nil
}

// Distribution buckets every active founder's trust score for reporting.
func (j *TrustDecayJob) Distribution(ctx context.Context) (trust.Distribution, error) {
	founders, err := j.founders.ListActive(ctx)
	if err != nil {
		return trust.Distribution{}, fmt.Errorf("listing active founders: %w", err)
	}

	var dist trust.Distribution
	for _, f := range founders {
		dist.Add(f.TrustScore)
	}
	return dist, nil
}

// activityCounts gathers the founder's qualifying events inside the boost
// window from the three sources that feed boosts.
func (j *TrustDecayJob) activityCounts(ctx context.Context, founderID uuid.UUID, since time.Time) (trust.ActivityCounts, error) {
	var counts trust.ActivityCounts

	accepted, err := j.matches.CountAcceptedSince(ctx, founderID, since)
	if err != nil {
		return counts, fmt.Errorf("accepted matches: %w", err)
	}
	counts.MatchesAccepted = accepted

	joined, err := j.circles.CountJoinedSince(ctx, founderID, since)
	if err != nil {
		return counts, fmt.Errorf("circles joined: %w", err)
	}
	counts.CirclesJoined = joined

	meetings, err := j.activities.CountForFounderSince(ctx, founderID, domain.ActivityMeetingAttended, since)
	if err != nil {
		return counts, fmt.Errorf("meetings attended: %w", err)
	}
	counts.MeetingsAttended = meetings

	feedback, err := j.activities.CountForFounderSince(ctx, founderID, domain.ActivityFeedbackGiven, since)
	if err != nil {
		return counts, fmt.Errorf("feedback given: %w", err)
	}
	counts.FeedbackGiven = feedback

	return counts, nil
}
