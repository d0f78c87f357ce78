package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Founder validation errors
var (
	ErrFounderIDEmpty      = errors.New("founder ID cannot be empty")
	ErrFounderEmailEmpty   = errors.New("founder email cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrInvalidProjectStage = errors.New("invalid project stage")
	ErrInvalidArchetype    = errors.New("invalid archetype")
	ErrInvalidAvailability = errors.New("invalid availability")
	ErrInvalidStatus       = errors.New("invalid founder status")
	ErrTrustScoreRange     = errors.New("trust score must be between 0 and 100")
)

// ProjectStage describes how far along a founder's current project is.
type ProjectStage string

const (
	StageIdea     ProjectStage = "idea"
	StageBuilding ProjectStage = "building"
	StageLaunched ProjectStage = "launched"
	StageGrowing  ProjectStage = "growing"
	StageScaling  ProjectStage = "scaling"
	StagePaused   ProjectStage = "paused"
)

// ProjectStages lists all valid stages in canonical order.
var ProjectStages = []ProjectStage{
	StageIdea, StageBuilding, StageLaunched, StageGrowing, StageScaling, StagePaused,
}

// IsValid reports whether the stage is one of the known values.
// The empty string is allowed: stage is optional on a profile.
func (s ProjectStage) IsValid() bool {
	if s == "" {
		return true
	}
	for _, v := range ProjectStages {
		if s == v {
			return true
		}
	}
	return false
}

// Archetype describes a founder's working style within the network.
type Archetype string

const (
	ArchetypeBuilder    Archetype = "builder"
	ArchetypeStrategist Archetype = "strategist"
	ArchetypeConnector  Archetype = "connector"
	ArchetypeSpecialist Archetype = "specialist"
	ArchetypeGeneralist Archetype = "generalist"
	ArchetypeMentor     Archetype = "mentor"
	ArchetypeExplorer   Archetype = "explorer"
)

// Archetypes lists all valid archetypes in canonical order.
var Archetypes = []Archetype{
	ArchetypeBuilder, ArchetypeStrategist, ArchetypeConnector, ArchetypeSpecialist,
	ArchetypeGeneralist, ArchetypeMentor, ArchetypeExplorer,
}

// IsValid reports whether the archetype is one of the known values.
// The empty string is allowed: archetype is optional on a profile.
func (a Archetype) IsValid() bool {
	if a == "" {
		return true
	}
	for _, v := range Archetypes {
		if a == v {
			return true
		}
	}
	return false
}

// Availability describes how much time a founder currently has for the network.
type Availability string

const (
	AvailabilityOpen        Availability = "open"
	AvailabilityLimited     Availability = "limited"
	AvailabilityFocused     Availability = "focused"
	AvailabilityUnavailable Availability = "unavailable"
)

// Availabilities lists all valid availability values in canonical order.
var Availabilities = []Availability{
	AvailabilityOpen, AvailabilityLimited, AvailabilityFocused, AvailabilityUnavailable,
}

// IsValid reports whether the availability is one of the known values.
func (a Availability) IsValid() bool {
	for _, v := range Availabilities {
		if a == v {
			return true
		}
	}
	return false
}

// FounderStatus describes a founder's membership state.
type FounderStatus string

const (
	FounderStatusPending FounderStatus = "pending"
	FounderStatusActive  FounderStatus = "active"
	FounderStatusPaused  FounderStatus = "paused"
	FounderStatusAlumni  FounderStatus = "alumni"
)

// IsValid reports whether the status is one of the known values.
func (s FounderStatus) IsValid() bool {
	switch s {
	case FounderStatusPending, FounderStatusActive, FounderStatusPaused, FounderStatusAlumni:
		return true
	}
	return false
}

// SkillProficiency describes how strong a declared skill is.
type SkillProficiency string

const (
	ProficiencyLearning   SkillProficiency = "learning"
	ProficiencyCompetent  SkillProficiency = "competent"
	ProficiencyProficient SkillProficiency = "proficient"
	ProficiencyExpert     SkillProficiency = "expert"
)

// NeedPriority describes how urgent a declared need is.
type NeedPriority string

const (
	PriorityLow    NeedPriority = "low"
	PriorityMedium NeedPriority = "medium"
	PriorityHigh   NeedPriority = "high"
	PriorityUrgent NeedPriority = "urgent"
)

// Skill is a capability a founder declares on their profile. Skills marked
// WillingToHelp are offered to the rest of the network and count toward
// needs/offers matching.
type Skill struct {
	Name          string           `json:"name"`
	Proficiency   SkillProficiency `json:"proficiency"`
	WillingToHelp bool             `json:"willing_to_help"`
}

// Need is something a founder is currently looking for. Fulfilled needs are
// ignored by the matching engine.
type Need struct {
	Name      string       `json:"name"`
	Priority  NeedPriority `json:"priority"`
	Fulfilled bool         `json:"fulfilled"`
}

// IntentSignals are named boolean flags a founder sets during onboarding to
// express what they want from the network.
type IntentSignals struct {
	SeekingCofounder    bool `json:"seeking_cofounder,omitempty"`
	OpenToCollaboration bool `json:"open_to_collaboration,omitempty"`
	LookingForFeedback  bool `json:"looking_for_feedback,omitempty"`
	WantsAccountability bool `json:"wants_accountability,omitempty"`
	SeekingMentorship   bool `json:"seeking_mentorship,omitempty"`
	WillingToMentor     bool `json:"willing_to_mentor,omitempty"`
	InterestedInCircles bool `json:"interested_in_circles,omitempty"`
}

// Flags returns the signals as an ordered slice of (name, set) pairs. The
// order is fixed so that iteration over signals is deterministic.
func (s IntentSignals) Flags() []IntentFlag {
	return []IntentFlag{
		{"seeking_cofounder", s.SeekingCofounder},
		{"open_to_collaboration", s.OpenToCollaboration},
		{"looking_for_feedback", s.LookingForFeedback},
		{"wants_accountability", s.WantsAccountability},
		{"seeking_mentorship", s.SeekingMentorship},
		{"willing_to_mentor", s.WillingToMentor},
		{"interested_in_circles", s.InterestedInCircles},
	}
}

// IntentFlag is one named intent signal and whether it is set.
type IntentFlag struct {
	Name string
	Set  bool
}

// Any reports whether at least one signal is set.
func (s IntentSignals) Any() bool {
	for _, f := range s.Flags() {
		if f.Set {
			return true
		}
	}
	return false
}

// OverlapCount counts the signals set on both sides.
func (s IntentSignals) OverlapCount(other IntentSignals) int {
	a, b := s.Flags(), other.Flags()
	count := 0
	for i := range a {
		if a[i].Set && b[i].Set {
			count++
		}
	}
	return count
}

// FounderProfile is a member's declared profile plus the mutable trust state.
// The core treats it as read-mostly: only TrustScore and LastActiveAt change
// outside of onboarding flows.
type FounderProfile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`

	ProjectStage ProjectStage  `json:"project_stage,omitempty"`
	Archetype    Archetype     `json:"archetype,omitempty"`
	Timezone     string        `json:"timezone"`
	Availability Availability  `json:"availability"`
	Intents      IntentSignals `json:"intent_signals"`

	Status              FounderStatus `json:"status"`
	OnboardingCompleted bool          `json:"onboarding_completed"`

	TrustScore   float64    `json:"trust_score"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`

	Skills []Skill `json:"skills"`
	Needs  []Need  `json:"needs"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFounderProfile creates a profile with sensible defaults: limited
// availability, UTC timezone, trust score 50, pending status.
func NewFounderProfile(email string) (*FounderProfile, error) {
	now := time.Now().UTC()
	f := &FounderProfile{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Timezone:     "UTC",
		Availability: AvailabilityLimited,
		Status:       FounderStatusPending,
		TrustScore:   DefaultTrustScore,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// DefaultTrustScore is the starting trust score for a new profile.
const DefaultTrustScore = 50

// Validate checks if the FounderProfile has valid data.
// Returns an error if any field fails validation.
func (f *FounderProfile) Validate() error {
	if f.ID == uuid.Nil {
		return ErrFounderIDEmpty
	}
	if f.Email == "" {
		return ErrFounderEmailEmpty
	}
	if !strings.Contains(f.Email, "@") {
		return ErrInvalidEmail
	}
	if !f.ProjectStage.IsValid() {
		return ErrInvalidProjectStage
	}
	if !f.Archetype.IsValid() {
		return ErrInvalidArchetype
	}
	if !f.Availability.IsValid() {
		return ErrInvalidAvailability
	}
	if !f.Status.IsValid() {
		return ErrInvalidStatus
	}
	if f.TrustScore < 0 || f.TrustScore > 100 {
		return ErrTrustScoreRange
	}
	return nil
}

// IsActive reports whether the founder participates in matching and circles.
func (f *FounderProfile) IsActive() bool {
	return f.Status == FounderStatusActive
}

// DaysInactive returns whole days since the founder's last recorded activity,
// measured at now. A founder with no recorded activity counts as inactive
// forever.
func (f *FounderProfile) DaysInactive(now time.Time) int {
	if f.LastActiveAt == nil {
		return NeverActiveDays
	}
	d := int(now.Sub(*f.LastActiveAt).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// NeverActiveDays is the inactivity value assigned to founders who have no
// recorded activity at all.
const NeverActiveDays = 999
