package api

import (
	"time"

	"github.com/metalmindtech/mfn-api/internal/domain/trust"
	"github.com/metalmindtech/mfn-api/internal/jobs"
)

// TriggerMatchesRequest is the body for POST /api/jobs/matches. The secret
// may instead travel in the X-Job-Secret header; founder_id switches the job
// to targeted mode.
type TriggerMatchesRequest struct {
	Secret    string `json:"secret,omitempty"`
	FounderID string `json:"founder_id,omitempty"`
}

// TriggerJobRequest is the body for the circle and trust job triggers.
type TriggerJobRequest struct {
	Secret string `json:"secret,omitempty"`
}

// TriggerTrustBoostRequest is the body for POST /api/jobs/trust/boost,
// crediting one founder for a single qualifying action.
type TriggerTrustBoostRequest struct {
	Secret    string `json:"secret,omitempty"`
	FounderID string `json:"founder_id"`
	Action    string `json:"action"`
}

// TrustBoostResponse reports a founder's trust score after a boost.
type TrustBoostResponse struct {
	FounderID  string    `json:"founder_id"`
	Action     string    `json:"action"`
	TrustScore float64   `json:"trust_score"`
	Timestamp  time.Time `json:"timestamp"`
}

// JobStatusResponse is the readiness payload for GET on a job endpoint.
type JobStatusResponse struct {
	Job       string    `json:"job"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`

	// Populated per job: circle health on the circles endpoint, trust
	// distribution on the trust endpoint.
	Health       *jobs.CircleHealthReport `json:"health,omitempty"`
	Distribution *trust.Distribution      `json:"distribution,omitempty"`
}
