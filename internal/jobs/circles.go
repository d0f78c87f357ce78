package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/metalmindtech/mfn-api/internal/domain"
	"github.com/metalmindtech/mfn-api/internal/domain/circles"
	"github.com/metalmindtech/mfn-api/internal/platform/logger"
	"github.com/metalmindtech/mfn-api/internal/platform/metrics"
	"github.com/metalmindtech/mfn-api/internal/store"
)

// jobCircleRotation is the metrics label for this job.
const jobCircleRotation = "circle_rotation"

// CircleRotationResult summarizes one circle lifecycle run.
type CircleRotationResult struct {
	Success          bool      `json:"success"`
	CirclesProcessed int       `json:"circles_processed"`
	CirclesRotated   int       `json:"circles_rotated"`
	CirclesDissolved int       `json:"circles_dissolved"`
	CirclesFormed    int       `json:"circles_formed"`
	Errors           []string  `json:"errors"`
	Timestamp        time.Time `json:"timestamp"`
}

// CircleHealthReport buckets the active circles by member count for the
// readiness endpoint.
type CircleHealthReport struct {
	Healthy  int `json:"healthy"`
	AtRisk   int `json:"at_risk"`
	Critical int `json:"critical"`
}

// CircleRotationJob manages the circle lifecycle: it dissolves circles that
// fall below viability, rotates circles whose cadence has elapsed, and forms
// new circles from founders not currently in one.
type CircleRotationJob struct {
	circles    store.CircleStore
	founders   store.FounderStore
	activities store.ActivityStore
	db         *sql.DB
	rules      *circles.Rules
	formation  *circles.FormationEngine
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewCircleRotationJob creates a circle lifecycle job. Panics if a store,
// the rules, or the formation engine is nil. Multi-write sequences run inside
// a database transaction when db is non-nil; without a handle they run
// directly against the stores.
func NewCircleRotationJob(
	circleStore store.CircleStore,
	founders store.FounderStore,
	activities store.ActivityStore,
	db *sql.DB,
	rules *circles.Rules,
	formation *circles.FormationEngine,
	m *metrics.Metrics,
	log *slog.Logger,
) *CircleRotationJob {
	if circleStore == nil || founders == nil || activities == nil {
		panic("jobs: circle rotation requires non-nil stores")
	}
	if rules == nil || formation == nil {
		panic("jobs: circle rotation requires non-nil rules and formation engine")
	}
	if log == nil {
		log = slog.Default()
	}
	return &CircleRotationJob{
		circles:    circleStore,
		founders:   founders,
		activities: activities,
		db:         db,
		rules:      rules,
		formation:  formation,
		metrics:    m,
		logger:     log.With(slog.String("component", "circle_rotation_job")),
		now:        time.Now,
	}
}

// Run executes one lifecycle pass over all active circles, then attempts to
// form new circles from the unoccupied pool.
func (j *CircleRotationJob) Run(ctx context.Context) CircleRotationResult {
	start := j.now()
	log := logger.FromContextOrDefault(ctx, j.logger)
	result := CircleRotationResult{
		Success:   true,
		Errors:    []string{},
		Timestamp: start.UTC(),
	}

	active, err := j.circles.ListByStatus(ctx, domain.CircleStatusActive)
	if err != nil {
		log.Error("failed to list active circles", slog.String("error", err.Error()))
		result.Success = false
		result.Errors = append(result.Errors, fmt.Sprintf("listing active circles: %v", err))
		j.metrics.ObserveJobRun(jobCircleRotation, j.now().Sub(start), err)
		return result
	}

	now := start.UTC()
	for _, circle := range active {
		result.CirclesProcessed++

		memberships, err := j.circles.ListMemberships(ctx, circle.ID, true)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("listing members of circle %s: %v", circle.ID, err))
			continue
		}

		members, err := j.loadMembers(ctx, memberships)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("loading members of circle %s: %v", circle.ID, err))
			continue
		}

		check := j.rules.ShouldDissolve(circle, members, memberships, now)
		if check.ShouldDissolve {
			if err := j.dissolve(ctx, circle, check.Reason, now); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("dissolving circle %s: %v", circle.ID, err))
				continue
			}
			log.Info("circle dissolved",
				slog.String("circle_id", circle.ID.String()),
				slog.String("reason", check.Reason))
			result.CirclesDissolved++
			continue
		}

		if circle.DueForRotation(now) {
			if err := j.rotate(ctx, circle, now); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("rotating circle %s: %v", circle.ID, err))
				continue
			}
			log.Info("circle rotated", slog.String("circle_id", circle.ID.String()))
			result.CirclesRotated++
		}
	}

	formed, errs := j.formCircles(ctx, now)
	result.CirclesFormed = formed
	result.Errors = append(result.Errors, errs...)

	log.Info("circle rotation complete",
		slog.Int("circles_processed", result.CirclesProcessed),
		slog.Int("circles_rotated", result.CirclesRotated),
		slog.Int("circles_dissolved", result.CirclesDissolved),
		slog.Int("circles_formed", result.CirclesFormed),
		slog.Int("record_errors", len(result.Errors)))
	j.metrics.ObserveJobRun(jobCircleRotation, j.now().Sub(start), nil)
	return result
}

// HealthReport buckets every active circle by member count.
func (j *CircleRotationJob) HealthReport(ctx context.Context) (CircleHealthReport, error) {
	active, err := j.circles.ListByStatus(ctx, domain.CircleStatusActive)
	if err != nil {
		return CircleHealthReport{}, fmt.Errorf("listing active circles: %w", err)
	}

	var report CircleHealthReport
	for _, circle := range active {
		memberships, err := j.circles.ListMemberships(ctx, circle.ID, true)
		if err != nil {
			return CircleHealthReport{}, fmt.Errorf("listing members of circle %s: %w", circle.ID, err)
		}
		switch j.rules.Health(len(memberships)) {
		case circles.HealthHealthy:
			report.Healthy++
		case circles.HealthAtRisk:
			report.AtRisk++
		default:
			report.Critical++
		}
	}
	return report, nil
}

// loadMembers resolves membership records to founder profiles.
func (j *CircleRotationJob) loadMembers(ctx context.Context, memberships []*domain.CircleMembership) ([]*domain.FounderProfile, error) {
	members := make([]*domain.FounderProfile, 0, len(memberships))
	for _, m := range memberships {
		founder, err := j.founders.GetByID(ctx, m.FounderID)
		if err != nil {
			return nil, fmt.Errorf("founder %s: %w", m.FounderID, err)
		}
		members = append(members, founder)
	}
	return members, nil
}

// inTx runs fn inside a database transaction when the job holds a handle.
// Without one, fn receives a nil transaction and runs directly against the
// stores.
func (j *CircleRotationJob) inTx(ctx context.Context, fn store.TxFn) error {
	if j.db == nil {
		return fn(ctx, nil)
	}
	return store.RunInTransaction(ctx, j.db, fn)
}

// dissolve ends a circle: flips its status, closes every active membership,
// and appends the dissolution to the activity log, atomically.
func (j *CircleRotationJob) dissolve(ctx context.Context, circle *domain.Circle, reason string, now time.Time) error {
	circle.Status = domain.CircleStatusDissolving
	circle.DissolvedAt = &now
	circle.DissolutionReason = reason
	circle.UpdatedAt = now

	activity, err := domain.NewCircleActivity(domain.ActivityCircleDissolved, circle.ID, map[string]any{
		"reason":       reason,
		"dissolved_at": now,
	})
	if err != nil {
		return err
	}

	err = j.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		circleStore := j.circles.WithTx(tx)
		if err := circleStore.Update(ctx, circle); err != nil {
			return err
		}
		if _, err := circleStore.DeactivateAllMembers(ctx, circle.ID, now); err != nil {
			return err
		}
		return j.activities.WithTx(tx).Create(ctx, activity)
	})
	if err != nil {
		return err
	}

	j.metrics.AddCirclesDissolved(1)
	return nil
}

// rotate stamps a fresh rotation on the circle and records it. The stamped
// timestamp resets the cadence clock, which keeps repeated runs from
// rotating the same circle twice.
func (j *CircleRotationJob) rotate(ctx context.Context, circle *domain.Circle, now time.Time) error {
	next := now.AddDate(0, 0, circle.RotationCadenceDays)
	circle.LastRotationAt = &now
	circle.RotationDate = &next
	circle.UpdatedAt = now

	activity, err := domain.NewCircleActivity(domain.ActivityCircleRotated, circle.ID, map[string]any{
		"rotated_at": now,
	})
	if err != nil {
		return err
	}

	return j.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := j.circles.WithTx(tx).Update(ctx, circle); err != nil {
			return err
		}
		return j.activities.WithTx(tx).Create(ctx, activity)
	})
}

// formCircles repeatedly runs the formation engine over founders who are not
// already in a forming or active circle, persisting each viable circle until
// no more can be assembled.
func (j *CircleRotationJob) formCircles(ctx context.Context, now time.Time) (int, []string) {
	var errs []string

	pool, err := j.founders.ListActive(ctx)
	if err != nil {
		return 0, append(errs, fmt.Sprintf("listing active founders for formation: %v", err))
	}

	occupied, err := j.circles.OccupiedFounderIDs(ctx)
	if err != nil {
		return 0, append(errs, fmt.Sprintf("listing occupied founders: %v", err))
	}

	formed := 0
	for {
		proposal, ok := j.formation.Form(pool, occupied, now)
		if !ok {
			break
		}

		persistErr := j.persistCircle(ctx, proposal, now)
		if persistErr != nil {
			errs = append(errs, fmt.Sprintf("persisting circle %q: %v", proposal.Name, persistErr))
		}
		// Members go into the occupied set even on failure, so a failed
		// persist cannot loop forever over the same proposal.
		for _, member := range proposal.Members {
			occupied[member.ID] = struct{}{}
		}
		if persistErr == nil {
			formed++
		}
	}

	return formed, errs
}

// persistCircle writes one formation proposal atomically: the circle row and
// one membership per member, with the facilitator chosen by the lifecycle
// rules. A failed write rolls the whole proposal back, so no circle is ever
// left half-populated.
func (j *CircleRotationJob) persistCircle(ctx context.Context, proposal circles.FormationResult, now time.Time) error {
	circle, err := domain.NewCircle(proposal.Name, j.rules.Config().StandardCadenceDays)
	if err != nil {
		return err
	}
	rotation := proposal.RotationDate
	circle.RotationDate = &rotation
	circle.Metadata = proposal.Metadata

	var facilitatorID uuid.UUID
	if pick, ok := j.rules.SelectFacilitator(proposal.Members); ok {
		facilitatorID = pick.FounderID
	}

	err = j.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		circleStore := j.circles.WithTx(tx)
		if err := circleStore.Create(ctx, circle); err != nil {
			return err
		}

		for _, member := range proposal.Members {
			role := domain.RoleMember
			if member.ID == facilitatorID {
				role = domain.RoleFacilitator
			}
			membership, err := domain.NewCircleMembership(circle.ID, member.ID, role)
			if err != nil {
				return err
			}
			if err := circleStore.AddMember(ctx, membership); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	j.metrics.AddCirclesFormed(1)
	return nil
}
