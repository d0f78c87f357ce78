package matching

import (
	"github.com/metalmindtech/mfn-api/internal/domain"
)

// Weights holds the seven dimension weights. They sum to 110; the raw score
// is normalized back to 0-100.
type Weights struct {
	NeedsOffers  int
	Stage        int
	Archetype    int
	Timezone     int
	Availability int
	Intent       int
	Trust        int
}

// Sum returns the total weight across all dimensions.
func (w Weights) Sum() int {
	return w.NeedsOffers + w.Stage + w.Archetype + w.Timezone + w.Availability + w.Intent + w.Trust
}

// Params defines all configurable parameters for the compatibility scorer.
// The matrices are data, not control flow: explicit lookup tables keyed by
// enum pairs, loaded once and never recomputed.
type Params struct {
	Weights Weights

	// StageCompatibility scores an ordered stage pair in [0,1]. Identical
	// stages score 1.0, adjacent stages 0.8-0.9, distant stages 0.3-0.4.
	StageCompatibility map[domain.ProjectStage]map[domain.ProjectStage]float64

	// ArchetypeCompatibility scores an ordered archetype pair in [0,1].
	// Identical archetypes score low to discourage redundancy; complementary
	// pairs score high.
	ArchetypeCompatibility map[domain.Archetype]map[domain.Archetype]float64

	// AvailabilityCompatibility scores an ordered availability pair in [0,1].
	AvailabilityCompatibility map[domain.Availability]map[domain.Availability]float64

	// TimezoneOffsets maps IANA zone names to UTC offsets in hours. Unknown
	// zones default to 0.
	TimezoneOffsets map[string]int

	// NeutralFactor is the compatibility used when a stage or archetype is
	// missing on either side.
	NeutralFactor float64

	// MutualNeedCap caps the combined needs/offers match count before scaling.
	MutualNeedCap int

	// OneWayFactor discounts a one-directional needs/offers match relative to
	// a mutual exchange.
	OneWayFactor float64

	// IntentCap caps the combined intent overlap + complement score.
	IntentCap int

	// MentorshipBonus is added when one side's willing_to_mentor pairs with
	// the other's seeking_mentorship in either direction.
	MentorshipBonus int

	// CollaborationBonus is added when both sides set open_to_collaboration.
	CollaborationBonus int
}

// NewDefaultParams creates a Params instance with the production values.
func NewDefaultParams() *Params {
	return &Params{
		Weights: Weights{
			NeedsOffers:  30,
			Stage:        20,
			Archetype:    15,
			Timezone:     15,
			Availability: 10,
			Intent:       10,
			Trust:        10,
		},

		StageCompatibility: map[domain.ProjectStage]map[domain.ProjectStage]float64{
			domain.StageIdea: {
				domain.StageIdea: 0.7, domain.StageBuilding: 0.9, domain.StageLaunched: 0.6,
				domain.StageGrowing: 0.4, domain.StageScaling: 0.3, domain.StagePaused: 0.5,
			},
			domain.StageBuilding: {
				domain.StageIdea: 0.9, domain.StageBuilding: 1.0, domain.StageLaunched: 0.8,
				domain.StageGrowing: 0.5, domain.StageScaling: 0.4, domain.StagePaused: 0.6,
			},
			domain.StageLaunched: {
				domain.StageIdea: 0.6, domain.StageBuilding: 0.8, domain.StageLaunched: 1.0,
				domain.StageGrowing: 0.9, domain.StageScaling: 0.6, domain.StagePaused: 0.5,
			},
			domain.StageGrowing: {
				domain.StageIdea: 0.4, domain.StageBuilding: 0.5, domain.StageLaunched: 0.9,
				domain.StageGrowing: 1.0, domain.StageScaling: 0.8, domain.StagePaused: 0.4,
			},
			domain.StageScaling: {
				domain.StageIdea: 0.3, domain.StageBuilding: 0.4, domain.StageLaunched: 0.6,
				domain.StageGrowing: 0.8, domain.StageScaling: 1.0, domain.StagePaused: 0.3,
			},
			domain.StagePaused: {
				domain.StageIdea: 0.5, domain.StageBuilding: 0.6, domain.StageLaunched: 0.5,
				domain.StageGrowing: 0.4, domain.StageScaling: 0.3, domain.StagePaused: 0.7,
			},
		},

		ArchetypeCompatibility: map[domain.Archetype]map[domain.Archetype]float64{
			domain.ArchetypeBuilder: {
				domain.ArchetypeBuilder: 0.6, domain.ArchetypeStrategist: 0.9, domain.ArchetypeConnector: 0.7,
				domain.ArchetypeSpecialist: 0.8, domain.ArchetypeGeneralist: 0.7, domain.ArchetypeMentor: 0.8,
				domain.ArchetypeExplorer: 0.6,
			},
			domain.ArchetypeStrategist: {
				domain.ArchetypeBuilder: 0.9, domain.ArchetypeStrategist: 0.5, domain.ArchetypeConnector: 0.8,
				domain.ArchetypeSpecialist: 0.7, domain.ArchetypeGeneralist: 0.6, domain.ArchetypeMentor: 0.7,
				domain.ArchetypeExplorer: 0.7,
			},
			domain.ArchetypeConnector: {
				domain.ArchetypeBuilder: 0.7, domain.ArchetypeStrategist: 0.8, domain.ArchetypeConnector: 0.4,
				domain.ArchetypeSpecialist: 0.6, domain.ArchetypeGeneralist: 0.7, domain.ArchetypeMentor: 0.8,
				domain.ArchetypeExplorer: 0.8,
			},
			domain.ArchetypeSpecialist: {
				domain.ArchetypeBuilder: 0.8, domain.ArchetypeStrategist: 0.7, domain.ArchetypeConnector: 0.6,
				domain.ArchetypeSpecialist: 0.5, domain.ArchetypeGeneralist: 0.8, domain.ArchetypeMentor: 0.7,
				domain.ArchetypeExplorer: 0.7,
			},
			domain.ArchetypeGeneralist: {
				domain.ArchetypeBuilder: 0.7, domain.ArchetypeStrategist: 0.6, domain.ArchetypeConnector: 0.7,
				domain.ArchetypeSpecialist: 0.8, domain.ArchetypeGeneralist: 0.6, domain.ArchetypeMentor: 0.7,
				domain.ArchetypeExplorer: 0.8,
			},
			domain.ArchetypeMentor: {
				domain.ArchetypeBuilder: 0.8, domain.ArchetypeStrategist: 0.7, domain.ArchetypeConnector: 0.8,
				domain.ArchetypeSpecialist: 0.7, domain.ArchetypeGeneralist: 0.7, domain.ArchetypeMentor: 0.4,
				domain.ArchetypeExplorer: 0.9,
			},
			domain.ArchetypeExplorer: {
				domain.ArchetypeBuilder: 0.6, domain.ArchetypeStrategist: 0.7, domain.ArchetypeConnector: 0.8,
				domain.ArchetypeSpecialist: 0.7, domain.ArchetypeGeneralist: 0.8, domain.ArchetypeMentor: 0.9,
				domain.ArchetypeExplorer: 0.7,
			},
		},

		AvailabilityCompatibility: map[domain.Availability]map[domain.Availability]float64{
			domain.AvailabilityOpen: {
				domain.AvailabilityOpen: 1.0, domain.AvailabilityLimited: 0.8,
				domain.AvailabilityFocused: 0.5, domain.AvailabilityUnavailable: 0.1,
			},
			domain.AvailabilityLimited: {
				domain.AvailabilityOpen: 0.8, domain.AvailabilityLimited: 0.9,
				domain.AvailabilityFocused: 0.6, domain.AvailabilityUnavailable: 0.2,
			},
			domain.AvailabilityFocused: {
				domain.AvailabilityOpen: 0.5, domain.AvailabilityLimited: 0.6,
				domain.AvailabilityFocused: 0.7, domain.AvailabilityUnavailable: 0.3,
			},
			domain.AvailabilityUnavailable: {
				domain.AvailabilityOpen: 0.1, domain.AvailabilityLimited: 0.2,
				domain.AvailabilityFocused: 0.3, domain.AvailabilityUnavailable: 0.0,
			},
		},

		TimezoneOffsets: map[string]int{
			"UTC":                 0,
			"America/New_York":    -5,
			"America/Chicago":     -6,
			"America/Denver":      -7,
			"America/Los_Angeles": -8,
			"Europe/London":       0,
			"Europe/Paris":        1,
			"Europe/Berlin":       1,
			"Asia/Tokyo":          9,
			"Asia/Singapore":      8,
			"Australia/Sydney":    11,
		},

		NeutralFactor:      0.5,
		MutualNeedCap:      6,
		OneWayFactor:       0.6,
		IntentCap:          5,
		MentorshipBonus:    2,
		CollaborationBonus: 1,
	}
}

// UTCOffset returns the UTC offset in hours for an IANA zone name, or 0 for
// unknown zones.
func (p *Params) UTCOffset(tz string) int {
	return p.TimezoneOffsets[tz]
}

// TimezoneFactor scores the absolute hour difference between two zones.
func (p *Params) TimezoneFactor(tzA, tzB string) float64 {
	diff := p.UTCOffset(tzA) - p.UTCOffset(tzB)
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 2:
		return 1.0
	case diff <= 4:
		return 0.8
	case diff <= 6:
		return 0.6
	case diff <= 8:
		return 0.4
	case diff <= 10:
		return 0.2
	default:
		return 0.1
	}
}
