package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Circle validation errors
var (
	ErrCircleIDEmpty       = errors.New("circle ID cannot be empty")
	ErrCircleNameEmpty     = errors.New("circle name cannot be empty")
	ErrInvalidCircleStatus = errors.New("invalid circle status")
	ErrMembershipIDEmpty   = errors.New("membership ID cannot be empty")
	ErrMembershipRefsEmpty = errors.New("membership circle and founder IDs cannot be empty")
	ErrInvalidCircleRole   = errors.New("invalid circle role")
	ErrInvalidCadence      = errors.New("rotation cadence must be positive")
)

// CircleStatus is the lifecycle state of a circle.
//
// Transitions: forming -> active -> {warning, paused} -> rotating ->
// {dissolving, completed}; dissolving and completed are terminal. Transitions
// are driven by the batch jobs, never by direct user action.
type CircleStatus string

const (
	CircleStatusForming    CircleStatus = "forming"
	CircleStatusActive     CircleStatus = "active"
	CircleStatusWarning    CircleStatus = "warning"
	CircleStatusPaused     CircleStatus = "paused"
	CircleStatusRotating   CircleStatus = "rotating"
	CircleStatusDissolving CircleStatus = "dissolving"
	CircleStatusCompleted  CircleStatus = "completed"
)

// IsValid reports whether the status is one of the known values.
func (s CircleStatus) IsValid() bool {
	switch s {
	case CircleStatusForming, CircleStatusActive, CircleStatusWarning,
		CircleStatusPaused, CircleStatusRotating, CircleStatusDissolving,
		CircleStatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether a circle in this status can no longer change.
func (s CircleStatus) IsTerminal() bool {
	return s == CircleStatusDissolving || s == CircleStatusCompleted
}

// Occupying reports whether membership in a circle with this status counts
// against the one-circle-per-founder invariant.
func (s CircleStatus) Occupying() bool {
	return s == CircleStatusForming || s == CircleStatusActive
}

// CircleMetadata is the formation snapshot stored on a circle. It is reported
// but never used operationally.
type CircleMetadata struct {
	FormationScore        int            `json:"formation_score"`
	ArchetypeDistribution map[string]int `json:"archetype_distribution"`
	StageDistribution     map[string]int `json:"stage_distribution"`
}

// Circle is a small cohort of founders formed for ongoing peer support.
type Circle struct {
	ID     uuid.UUID    `json:"id"`
	Name   string       `json:"name"`
	Status CircleStatus `json:"status"`

	RotationCadenceDays int        `json:"rotation_cadence_days"`
	RotationDate        *time.Time `json:"rotation_date,omitempty"`
	FormedAt            time.Time  `json:"formed_at"`
	LastRotationAt      *time.Time `json:"last_rotation_at,omitempty"`

	DissolvedAt       *time.Time `json:"dissolved_at,omitempty"`
	DissolutionReason string     `json:"dissolution_reason,omitempty"`

	Metadata CircleMetadata `json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCircle creates a forming Circle with the given name and cadence.
func NewCircle(name string, cadenceDays int) (*Circle, error) {
	now := time.Now().UTC()
	c := &Circle{
		ID:                  uuid.New(),
		Name:                name,
		Status:              CircleStatusForming,
		RotationCadenceDays: cadenceDays,
		FormedAt:            now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks if the Circle has valid data.
func (c *Circle) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCircleIDEmpty
	}
	if c.Name == "" {
		return ErrCircleNameEmpty
	}
	if !c.Status.IsValid() {
		return ErrInvalidCircleStatus
	}
	if c.RotationCadenceDays <= 0 {
		return ErrInvalidCadence
	}
	return nil
}

// RotationAnchor returns the timestamp rotation cadence is measured from:
// the last rotation, or formation if the circle has never rotated.
func (c *Circle) RotationAnchor() time.Time {
	if c.LastRotationAt != nil {
		return *c.LastRotationAt
	}
	return c.FormedAt
}

// DueForRotation reports whether the rotation cadence has elapsed at now.
func (c *Circle) DueForRotation(now time.Time) bool {
	days := int(now.Sub(c.RotationAnchor()).Hours() / 24)
	return days >= c.RotationCadenceDays
}

// CircleRole is a member's role within a circle.
type CircleRole string

const (
	RoleMember      CircleRole = "member"
	RoleFacilitator CircleRole = "facilitator"
)

// IsValid reports whether the role is one of the known values.
func (r CircleRole) IsValid() bool {
	return r == RoleMember || r == RoleFacilitator
}

// CircleMembership links a founder to a circle. Memberships are deactivated,
// never deleted, so rotation history is preserved.
type CircleMembership struct {
	ID        uuid.UUID  `json:"id"`
	CircleID  uuid.UUID  `json:"circle_id"`
	FounderID uuid.UUID  `json:"founder_id"`
	Role      CircleRole `json:"role"`
	Active    bool       `json:"active"`
	JoinedAt  time.Time  `json:"joined_at"`
	LeftAt    *time.Time `json:"left_at,omitempty"`
}

// NewCircleMembership creates an active membership with the given role.
func NewCircleMembership(circleID, founderID uuid.UUID, role CircleRole) (*CircleMembership, error) {
	m := &CircleMembership{
		ID:        uuid.New(),
		CircleID:  circleID,
		FounderID: founderID,
		Role:      role,
		Active:    true,
		JoinedAt:  time.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks if the CircleMembership has valid data.
func (m *CircleMembership) Validate() error {
	if m.ID == uuid.Nil {
		return ErrMembershipIDEmpty
	}
	if m.CircleID == uuid.Nil || m.FounderID == uuid.Nil {
		return ErrMembershipRefsEmpty
	}
	if !m.Role.IsValid() {
		return ErrInvalidCircleRole
	}
	return nil
}
