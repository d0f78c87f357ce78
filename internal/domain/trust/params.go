package trust

// Action is a trust-affecting event type.
type Action string

const (
	ActionMatchAccepted   Action = "match_accepted"
	ActionCircleJoined    Action = "circle_joined"
	ActionMeetingAttended Action = "meeting_attended"
	ActionFeedbackGiven   Action = "feedback_given"
)

// Params defines all configurable parameters for the trust engine.
type Params struct {
	// Decay rates
	DecayPerInactiveDay float64
	MaxDecayPerRun      float64

	// Score bounds
	MinScore     float64
	MaxScore     float64
	DefaultScore float64

	// Activity windows
	GracePeriodDays int
	BoostWindowDays int

	// Boost amounts per action
	Boosts map[Action]float64
}

// NewDefaultParams creates a Params instance with the production defaults.
func NewDefaultParams() *Params {
	return &Params{
		DecayPerInactiveDay: 0.5,
		MaxDecayPerRun:      5,

		MinScore:     0,
		MaxScore:     100,
		DefaultScore: 50,

		GracePeriodDays: 7,
		BoostWindowDays: 30,

		Boosts: map[Action]float64{
			ActionMatchAccepted:   3,
			ActionCircleJoined:    5,
			ActionMeetingAttended: 2,
			ActionFeedbackGiven:   1,
		},
	}
}
