package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Match validation errors
var (
	ErrMatchIDEmpty       = errors.New("match ID cannot be empty")
	ErrMatchFounderEmpty  = errors.New("match founder IDs cannot be empty")
	ErrMatchSelf          = errors.New("a founder cannot be matched with themselves")
	ErrMatchScoreRange    = errors.New("match score must be between 0 and 100")
	ErrInvalidMatchStatus = errors.New("invalid match status")
)

// MatchStatus tracks how a suggested match has been responded to.
type MatchStatus string

const (
	MatchStatusSuggested MatchStatus = "suggested"
	MatchStatusAccepted  MatchStatus = "accepted"
	MatchStatusDeclined  MatchStatus = "declined"
)

// IsValid reports whether the status is one of the known values.
func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusSuggested, MatchStatusAccepted, MatchStatusDeclined:
		return true
	}
	return false
}

// ScoreBreakdown holds the seven weighted sub-scores that make up a match
// score. Values are in points of the raw 110-point scale; Total is the
// normalized 0-100 figure.
type ScoreBreakdown struct {
	NeedsOffers  int     `json:"needs_offers_alignment"`
	Stage        int     `json:"stage_complementarity"`
	Archetype    int     `json:"archetype_balance"`
	Timezone     int     `json:"timezone_proximity"`
	Availability int     `json:"availability_match"`
	Intent       int     `json:"intent_alignment"`
	Trust        int     `json:"trust_bonus"`
	Total        float64 `json:"total"`
}

// Match is a proposed pairwise connection between two founders. The pair is
// stored ordered (A = the founder the suggestion was generated for) but the
// uniqueness invariant is on the unordered pair.
type Match struct {
	ID         uuid.UUID      `json:"id"`
	FounderAID uuid.UUID      `json:"founder_a_id"`
	FounderBID uuid.UUID      `json:"founder_b_id"`
	Score      int            `json:"score"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
	Reasons    []string       `json:"reasons"`
	Status     MatchStatus    `json:"status"`

	SuggestedAt time.Time  `json:"suggested_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// NewMatch creates a suggested Match between two founders with the given
// score, breakdown, and reasons. Returns an error if validation fails.
func NewMatch(founderA, founderB uuid.UUID, score int, breakdown ScoreBreakdown, reasons []string) (*Match, error) {
	m := &Match{
		ID:          uuid.New(),
		FounderAID:  founderA,
		FounderBID:  founderB,
		Score:       score,
		Breakdown:   breakdown,
		Reasons:     reasons,
		Status:      MatchStatusSuggested,
		SuggestedAt: time.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks if the Match has valid data.
func (m *Match) Validate() error {
	if m.ID == uuid.Nil {
		return ErrMatchIDEmpty
	}
	if m.FounderAID == uuid.Nil || m.FounderBID == uuid.Nil {
		return ErrMatchFounderEmpty
	}
	if m.FounderAID == m.FounderBID {
		return ErrMatchSelf
	}
	if m.Score < 0 || m.Score > 100 {
		return ErrMatchScoreRange
	}
	if !m.Status.IsValid() {
		return ErrInvalidMatchStatus
	}
	return nil
}

// Involves reports whether the match includes the given founder.
func (m *Match) Involves(founderID uuid.UUID) bool {
	return m.FounderAID == founderID || m.FounderBID == founderID
}
