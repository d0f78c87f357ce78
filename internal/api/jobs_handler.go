package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/metalmindtech/mfn-api/internal/api/shared"
	"github.com/metalmindtech/mfn-api/internal/domain/trust"
	"github.com/metalmindtech/mfn-api/internal/jobs"
)

// MatchJob is the slice of the match generation job the handler needs.
type MatchJob interface {
	Run(ctx context.Context) jobs.MatchGenerationResult
	RunForFounder(ctx context.Context, founderID uuid.UUID) jobs.MatchGenerationResult
}

// CircleJob is the slice of the circle rotation job the handler needs.
type CircleJob interface {
	Run(ctx context.Context) jobs.CircleRotationResult
	HealthReport(ctx context.Context) (jobs.CircleHealthReport, error)
}

// TrustJob is the slice of the trust decay job the handler needs.
type TrustJob interface {
	Run(ctx context.Context) jobs.TrustDecayResult
	Distribution(ctx context.Context) (trust.Distribution, error)
	BoostForAction(ctx context.Context, founderID uuid.UUID, action trust.Action) (float64, error)
}

// JobsHandler exposes the batch jobs over HTTP: POST triggers a run, GET
// reports readiness. Authorization happens in middleware before these
// handlers execute.
type JobsHandler struct {
	matchJob  MatchJob
	circleJob CircleJob
	trustJob  TrustJob
	logger    *slog.Logger
}

// NewJobsHandler creates a handler for the job trigger endpoints.
func NewJobsHandler(matchJob MatchJob, circleJob CircleJob, trustJob TrustJob, logger *slog.Logger) *JobsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobsHandler{
		matchJob:  matchJob,
		circleJob: circleJob,
		trustJob:  trustJob,
		logger:    logger.With(slog.String("component", "jobs_handler")),
	}
}

// TriggerMatches handles POST /api/jobs/matches. An optional founder_id in
// the body scopes the run to one founder.
func (h *JobsHandler) TriggerMatches(w http.ResponseWriter, r *http.Request) {
	var req TriggerMatchesRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.FounderID != "" {
		founderID, err := uuid.Parse(req.FounderID)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "invalid founder_id")
			return
		}
		shared.RespondWithJSON(w, r, http.StatusOK, h.matchJob.RunForFounder(r.Context(), founderID))
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, h.matchJob.Run(r.Context()))
}

// MatchesStatus handles GET /api/jobs/matches.
func (h *JobsHandler) MatchesStatus(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, JobStatusResponse{
		Job:       "match-generation",
		Status:    "ready",
		Timestamp: time.Now().UTC(),
	})
}

// TriggerCircles handles POST /api/jobs/circles.
func (h *JobsHandler) TriggerCircles(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.circleJob.Run(r.Context()))
}

// CirclesStatus handles GET /api/jobs/circles, reporting circle health.
func (h *JobsHandler) CirclesStatus(w http.ResponseWriter, r *http.Request) {
	resp := JobStatusResponse{
		Job:       "circle-rotation",
		Status:    "ready",
		Timestamp: time.Now().UTC(),
	}

	health, err := h.circleJob.HealthReport(r.Context())
	if err != nil {
		resp.Status = "error"
		shared.RespondWithJSON(w, r, http.StatusOK, resp)
		return
	}
	resp.Health = &health
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// TriggerTrustBoost handles POST /api/jobs/trust/boost, crediting one founder
// immediately for a single qualifying action outside the batch cycle.
func (h *JobsHandler) TriggerTrustBoost(w http.ResponseWriter, r *http.Request) {
	var req TriggerTrustBoostRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	founderID, err := uuid.Parse(req.FounderID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "invalid founder_id")
		return
	}

	score, err := h.trustJob.BoostForAction(r.Context(), founderID, trust.Action(req.Action))
	if err != nil {
		if errors.Is(err, trust.ErrUnknownAction) {
			shared.RespondWithError(w, r, http.StatusBadRequest, "unknown action")
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TrustBoostResponse{
		FounderID:  founderID.String(),
		Action:     req.Action,
		TrustScore: score,
		Timestamp:  time.Now().UTC(),
	})
}

// TriggerTrust handles POST /api/jobs/trust.
func (h *JobsHandler) TriggerTrust(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.trustJob.Run(r.Context()))
}

// TrustStatus handles GET /api/jobs/trust, reporting the trust distribution.
func (h *JobsHandler) TrustStatus(w http.ResponseWriter, r *http.Request) {
	resp := JobStatusResponse{
		Job:       "trust-decay",
		Status:    "ready",
		Timestamp: time.Now().UTC(),
	}

	dist, err := h.trustJob.Distribution(r.Context())
	if err != nil {
		resp.Status = "error"
		shared.RespondWithJSON(w, r, http.StatusOK, resp)
		return
	}
	resp.Distribution = &dist
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
