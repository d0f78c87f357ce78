package trust

import (
	"errors"
	"testing"
)

func TestDecayAmount(t *testing.T) {
	t.Parallel()
	engine := NewDefaultEngine()

	testCases := []struct {
		name         string
		daysInactive int
		expected     float64
	}{
		{
			name:         "active today",
			daysInactive: 0,
			expected:     0,
		},
		{
			name:         "inside grace period",
			daysInactive: 7,
			expected:     0,
		},
		{
			name:         "one day past grace",
			daysInactive: 8,
			expected:     0.5,
		},
		{
			name:         "twenty days inactive hits the per-run cap",
			daysInactive: 20, // (20-7)*0.5 = 6.5, capped at 5
			expected:     5,
		},
		{
			name:         "never active hits the per-run cap",
			daysInactive: 999,
			expected:     5,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := engine.DecayAmount(tc.daysInactive)
			if got != tc.expected {
				t.Errorf("DecayAmount(%d) = %v, want %v", tc.daysInactive, got, tc.expected)
			}
		})
	}
}

func TestBoostAmount(t *testing.T) {
	t.Parallel()
	engine := NewDefaultEngine()

	testCases := []struct {
		name     string
		counts   ActivityCounts
		expected float64
	}{
		{
			name:     "no activity",
			counts:   ActivityCounts{},
			expected: 0,
		},
		{
			name:     "one match accepted",
			counts:   ActivityCounts{MatchesAccepted: 1},
			expected: 3,
		},
		{
			name:     "one circle joined",
			counts:   ActivityCounts{CirclesJoined: 1},
			expected: 5,
		},
		{
			name: "all action types accumulate",
			counts: ActivityCounts{
				MatchesAccepted:  2,
				CirclesJoined:    1,
				MeetingsAttended: 3,
				FeedbackGiven:    4,
			},
			expected: 2*3 + 1*5 + 3*2 + 4*1,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := engine.BoostAmount(tc.counts)
			if got != tc.expected {
				t.Errorf("BoostAmount(%+v) = %v, want %v", tc.counts, got, tc.expected)
			}
		})
	}
}

func TestApply(t *testing.T) {
	t.Parallel()
	engine := NewDefaultEngine()

	t.Run("decay after twenty inactive days", func(t *testing.T) {
		t.Parallel()
		outcome := engine.Apply(50, 20, ActivityCounts{})
		if outcome.NewScore != 45 {
			t.Errorf("NewScore = %v, want 45", outcome.NewScore)
		}
		if !outcome.Decayed || outcome.Boosted {
			t.Errorf("Decayed=%v Boosted=%v, want decay only", outcome.Decayed, outcome.Boosted)
		}
		if outcome.Delta != -5 {
			t.Errorf("Delta = %v, want -5", outcome.Delta)
		}
	})

	t.Run("boost pre-empts decay", func(t *testing.T) {
		t.Parallel()
		outcome := engine.Apply(50, 20, ActivityCounts{MatchesAccepted: 1})
		if outcome.NewScore != 53 {
			t.Errorf("NewScore = %v, want 53", outcome.NewScore)
		}
		if !outcome.Boosted || outcome.Decayed {
			t.Errorf("Boosted=%v Decayed=%v, want boost only", outcome.Boosted, outcome.Decayed)
		}
	})

	t.Run("no change inside grace period", func(t *testing.T) {
		t.Parallel()
		outcome := engine.Apply(50, 3, ActivityCounts{})
		if outcome.NewScore != 50 || outcome.Boosted || outcome.Decayed {
			t.Errorf("outcome = %+v, want untouched score", outcome)
		}
	})

	t.Run("decay clamps at the floor", func(t *testing.T) {
		t.Parallel()
		outcome := engine.Apply(2, 100, ActivityCounts{})
		if outcome.NewScore != 0 {
			t.Errorf("NewScore = %v, want 0", outcome.NewScore)
		}
		if outcome.Delta != -2 {
			t.Errorf("Delta = %v, want -2", outcome.Delta)
		}
	})

	t.Run("boost clamps at the ceiling", func(t *testing.T) {
		t.Parallel()
		outcome := engine.Apply(99, 0, ActivityCounts{CirclesJoined: 1})
		if outcome.NewScore != 100 {
			t.Errorf("NewScore = %v, want 100", outcome.NewScore)
		}
		if outcome.Delta != 1 {
			t.Errorf("Delta = %v, want 1", outcome.Delta)
		}
	})
}

func TestBoostForAction(t *testing.T) {
	t.Parallel()
	engine := NewDefaultEngine()

	testCases := []struct {
		action   Action
		expected float64
	}{
		{ActionMatchAccepted, 3},
		{ActionCircleJoined, 5},
		{ActionMeetingAttended, 2},
		{ActionFeedbackGiven, 1},
	}

	for _, tc := range testCases {
		boost, err := engine.BoostForAction(tc.action)
		if err != nil {
			t.Fatalf("BoostForAction(%s) returned error: %v", tc.action, err)
		}
		if boost != tc.expected {
			t.Errorf("BoostForAction(%s) = %v, want %v", tc.action, boost, tc.expected)
		}
	}

	_, err := engine.BoostForAction(Action("profile_viewed"))
	if !errors.Is(err, ErrUnknownAction) {
		t.Errorf("unknown action error = %v, want ErrUnknownAction", err)
	}
}

func TestDistribution(t *testing.T) {
	t.Parallel()

	var d Distribution
	for _, score := range []float64{95, 80, 79, 60, 59, 40, 39, 20, 19, 0} {
		d.Add(score)
	}

	if d.Excellent != 2 || d.Good != 2 || d.Average != 2 || d.Low != 2 || d.Critical != 2 {
		t.Errorf("distribution = %+v, want 2 per band", d)
	}
}
