package circles

// Config holds the circle governance thresholds. The defaults are the
// production values; tests inject variants.
type Config struct {
	// Size constraints
	MinMembers   int
	MaxMembers   int
	IdealMembers int

	// Rotation cadence in days
	StandardCadenceDays int
	MinimumCadenceDays  int
	MaximumCadenceDays  int
	RotationGraceDays   int

	// Balance requirements
	MinArchetypeDiversity  int
	MaxSameStage           int
	MaxSameArchetype       int
	MaxTimezoneSpreadHours int

	// Trust thresholds
	MinIndividualTrust    float64
	MinCircleAverageTrust float64
	FacilitatorMinTrust   float64

	// Engagement windows in days
	MinActivityDays     int
	WarningInactiveDays int
	RemovalInactiveDays int

	// Grace periods for exit reasons, in days
	TrustExitGraceDays        int
	AvailabilityExitGraceDays int

	// Diversity bonus multipliers used in formation scoring
	ArchetypeDiversityBonus int
	StageDiversityBonus     int
}

// DefaultConfig returns the production circle governance values.
func DefaultConfig() Config {
	return Config{
		MinMembers:   4,
		MaxMembers:   6,
		IdealMembers: 5,

		StandardCadenceDays: 90,
		MinimumCadenceDays:  60,
		MaximumCadenceDays:  120,
		RotationGraceDays:   14,

		MinArchetypeDiversity:  3,
		MaxSameStage:           3,
		MaxSameArchetype:       2,
		MaxTimezoneSpreadHours: 8,

		MinIndividualTrust:    20,
		MinCircleAverageTrust: 40,
		FacilitatorMinTrust:   60,

		MinActivityDays:     7,
		WarningInactiveDays: 14,
		RemovalInactiveDays: 30,

		TrustExitGraceDays:        7,
		AvailabilityExitGraceDays: 14,

		ArchetypeDiversityBonus: 3,
		StageDiversityBonus:     2,
	}
}
