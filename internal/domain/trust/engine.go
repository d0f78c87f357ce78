package trust

import (
	"errors"
	"math"
)

// ErrUnknownAction is returned when a boost is requested for an action the
// engine has no configured amount for.
var ErrUnknownAction = errors.New("unknown trust action")

// ActivityCounts holds the number of qualifying events inside the boost
// window for one founder.
type ActivityCounts struct {
	MatchesAccepted  int
	CirclesJoined    int
	MeetingsAttended int
	FeedbackGiven    int
}

// Outcome describes the result of applying one trust cycle to a score.
// Boosted and Decayed are mutually exclusive: a boost in the window skips
// decay entirely for that cycle.
type Outcome struct {
	NewScore float64
	Boosted  bool
	Decayed  bool
	Delta    float64
}

// Engine computes trust decay and boosts. It holds no state beyond its
// parameters and is safe for concurrent use.
type Engine struct {
	params *Params
}

// NewEngine creates a trust engine with the given parameters.
func NewEngine(params *Params) *Engine {
	return &Engine{params: params}
}

// NewDefaultEngine creates a trust engine with the production defaults.
func NewDefaultEngine() *Engine {
	return NewEngine(NewDefaultParams())
}

// DecayAmount returns the points to subtract for the given days of
// inactivity. No decay inside the grace period; beyond it, decay grows
// linearly but is capped per run so long absences never cliff the score.
func (e *Engine) DecayAmount(daysInactive int) float64 {
	if daysInactive <= e.params.GracePeriodDays {
		return 0
	}
	decay := float64(daysInactive-e.params.GracePeriodDays) * e.params.DecayPerInactiveDay
	return math.Min(decay, e.params.MaxDecayPerRun)
}

// BoostAmount sums the boost for every qualifying event in the counts.
func (e *Engine) BoostAmount(counts ActivityCounts) float64 {
	boost := float64(counts.MatchesAccepted) * e.params.Boosts[ActionMatchAccepted]
	boost += float64(counts.CirclesJoined) * e.params.Boosts[ActionCircleJoined]
	boost += float64(counts.MeetingsAttended) * e.params.Boosts[ActionMeetingAttended]
	boost += float64(counts.FeedbackGiven) * e.params.Boosts[ActionFeedbackGiven]
	return boost
}

// BoostForAction returns the configured boost for a single action, used for
// immediate crediting outside the batch cycle.
func (e *Engine) BoostForAction(action Action) (float64, error) {
	boost, ok := e.params.Boosts[action]
	if !ok {
		return 0, ErrUnknownAction
	}
	return boost, nil
}

// Apply runs one trust cycle for a founder: any positive boost inside the
// window is applied and decay is skipped; otherwise decay for the given
// inactivity applies. The returned score is always clamped to the
// configured bounds.
func (e *Engine) Apply(score float64, daysInactive int, counts ActivityCounts) Outcome {
	if boost := e.BoostAmount(counts); boost > 0 {
		newScore := e.Clamp(score + boost)
		return Outcome{NewScore: newScore, Boosted: true, Delta: newScore - score}
	}

	decay := e.DecayAmount(daysInactive)
	if decay == 0 {
		return Outcome{NewScore: score}
	}
	newScore := e.Clamp(score - decay)
	return Outcome{NewScore: newScore, Decayed: true, Delta: newScore - score}
}

// Clamp bounds a score to the configured range.
func (e *Engine) Clamp(score float64) float64 {
	if score < e.params.MinScore {
		return e.params.MinScore
	}
	if score > e.params.MaxScore {
		return e.params.MaxScore
	}
	return score
}

// Distribution buckets trust scores into named bands for reporting.
type Distribution struct {
	Excellent int `json:"excellent"` // 80-100
	Good      int `json:"good"`      // 60-79
	Average   int `json:"average"`   // 40-59
	Low       int `json:"low"`       // 20-39
	Critical  int `json:"critical"`  // 0-19
}

// Add places one score into its band.
func (d *Distribution) Add(score float64) {
	switch {
	case score >= 80:
		d.Excellent++
	case score >= 60:
		d.Good++
	case score >= 40:
		d.Average++
	case score >= 20:
		d.Low++
	default:
		d.Critical++
	}
}
