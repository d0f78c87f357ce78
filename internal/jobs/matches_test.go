package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalmindtech/mfn-api/internal/domain"
	"github.com/metalmindtech/mfn-api/internal/domain/matching"
)

// matchableFounder builds an active founder who scores well against other
// matchable founders: same stage, same timezone, open availability, and a
// mutual skill/need exchange.
func matchableFounder(email string, archetype domain.Archetype) *domain.FounderProfile {
	now := time.Now().UTC()
	return &domain.FounderProfile{
		ID:                  uuid.New(),
		Email:               email,
		ProjectStage:        domain.StageBuilding,
		Archetype:           archetype,
		Timezone:            "UTC",
		Availability:        domain.AvailabilityOpen,
		Status:              domain.FounderStatusActive,
		OnboardingCompleted: true,
		TrustScore:          60,
		LastActiveAt:        &now,
		Skills:              []domain.Skill{{Name: "golang", Proficiency: domain.ProficiencyExpert, WillingToHelp: true}},
		Needs:               []domain.Need{{Name: "golang", Priority: domain.PriorityHigh}},
	}
}

// distantFounder builds an active founder who scores poorly against every
// matchable founder: distant stage, far timezone, no exchange, zero trust.
func distantFounder(email string) *domain.FounderProfile {
	now := time.Now().UTC()
	return &domain.FounderProfile{
		ID:                  uuid.New(),
		Email:               email,
		ProjectStage:        domain.StageScaling,
		Archetype:           domain.ArchetypeBuilder,
		Timezone:            "Asia/Tokyo",
		Availability:        domain.AvailabilityFocused,
		Status:              domain.FounderStatusActive,
		OnboardingCompleted: true,
		TrustScore:          0,
		LastActiveAt:        &now,
	}
}

func newMatchJob(founders *fakeFounderStore, matches *fakeMatchStore, override domain.OverridePolicy) *MatchGenerationJob {
	return NewMatchGenerationJob(
		founders,
		matches,
		matching.NewDefaultEngine(),
		override,
		nil,
		slog.Default(),
	)
}

func TestMatchGenerationRun(t *testing.T) {
	t.Parallel()

	founders := newFakeFounderStore(
		matchableFounder("a@example.com", domain.ArchetypeBuilder),
		matchableFounder("b@example.com", domain.ArchetypeStrategist),
		matchableFounder("c@example.com", domain.ArchetypeMentor),
	)
	matches := newFakeMatchStore()
	job := newMatchJob(founders, matches, domain.OverridePolicy{})

	result := job.Run(context.Background())

	require.True(t, result.Success)
	assert.Equal(t, 3, result.FoundersProcessed)
	assert.Empty(t, result.Errors)
	// All three pairs are compatible; each pair yields exactly one match.
	assert.Equal(t, 3, result.MatchesCreated)
	assert.Len(t, matches.matches, 3)

	for _, m := range matches.matches {
		assert.Equal(t, domain.MatchStatusSuggested, m.Status)
		assert.GreaterOrEqual(t, m.Score, MinMatchScore)
	}
}

func TestMatchGenerationIsIdempotent(t *testing.T) {
	t.Parallel()

	founders := newFakeFounderStore(
		matchableFounder("a@example.com", domain.ArchetypeBuilder),
		matchableFounder("b@example.com", domain.ArchetypeStrategist),
	)
	matches := newFakeMatchStore()
	job := newMatchJob(founders, matches, domain.OverridePolicy{})

	first := job.Run(context.Background())
	require.True(t, first.Success)
	require.Equal(t, 1, first.MatchesCreated)

	second := job.Run(context.Background())
	require.True(t, second.Success)
	assert.Zero(t, second.MatchesCreated)
	assert.Empty(t, second.Errors)
	assert.Len(t, matches.matches, 1)
}

func TestMatchGenerationSkipsLowScores(t *testing.T) {
	t.Parallel()

	founders := newFakeFounderStore(
		distantFounder("far-a@example.com"),
		matchableFounder("near@example.com", domain.ArchetypeBuilder),
	)
	matches := newFakeMatchStore()
	job := newMatchJob(founders, matches, domain.OverridePolicy{})

	result := job.Run(context.Background())

	require.True(t, result.Success)
	assert.Zero(t, result.MatchesCreated)
}

func TestMatchGenerationSkipsNonOnboardedFounders(t *testing.T) {
	t.Parallel()

	onboardedA := matchableFounder("a@example.com", domain.ArchetypeBuilder)
	onboardedB := matchableFounder("b@example.com", domain.ArchetypeStrategist)
	newcomer := matchableFounder("new@example.com", domain.ArchetypeMentor)
	newcomer.OnboardingCompleted = false

	founders := newFakeFounderStore(onboardedA, onboardedB, newcomer)
	matches := newFakeMatchStore()
	job := newMatchJob(founders, matches, domain.OverridePolicy{})

	result := job.Run(context.Background())

	require.True(t, result.Success)
	assert.Equal(t, 2, result.FoundersProcessed)
	assert.Equal(t, 1, result.MatchesCreated)
	for _, m := range matches.matches {
		assert.False(t, m.Involves(newcomer.ID),
			"a founder who has not completed onboarding must not be matched")
	}
}

func TestMatchGenerationOverrideExemptFromOnboardingGate(t *testing.T) {
	t.Parallel()

	vip := matchableFounder("vip@example.com", domain.ArchetypeBuilder)
	vip.OnboardingCompleted = false
	partner := matchableFounder("partner@example.com", domain.ArchetypeStrategist)

	founders := newFakeFounderStore(vip, partner)
	matches := newFakeMatchStore()
	override := domain.NewOverridePolicy([]string{"vip@example.com"})
	job := newMatchJob(founders, matches, override)

	result := job.Run(context.Background())

	require.True(t, result.Success)
	assert.Equal(t, 1, result.MatchesCreated)
	require.Len(t, matches.matches, 1)
	assert.True(t, matches.matches[0].Involves(vip.ID))
}

func TestMatchGenerationPendingCap(t *testing.T) {
	t.Parallel()

	capped := matchableFounder("capped@example.com", domain.ArchetypeBuilder)
	partner := matchableFounder("partner@example.com", domain.ArchetypeStrategist)

	matches := newFakeMatchStore()
	// Fill the capped founder's pending slots with suggestions against
	// founders outside the active pool.
	for i := 0; i < MaxPendingMatches; i++ {
		m, err := domain.NewMatch(capped.ID, uuid.New(), 50, domain.ScoreBreakdown{}, nil)
		require.NoError(t, err)
		require.NoError(t, matches.Create(context.Background(), m))
	}

	founders := newFakeFounderStore(capped, partner)
	job := newMatchJob(founders, matches, domain.OverridePolicy{})

	result := job.Run(context.Background())
	require.True(t, result.Success)

	// The capped founder suggests nothing, but the partner still matches
	// against them: the cap limits whose turn generates suggestions, not
	// who can appear in one.
	for _, m := range matches.matches[MaxPendingMatches:] {
		assert.True(t, m.Involves(partner.ID))
	}
}

func TestMatchGenerationOverrideBypassesCap(t *testing.T) {
	t.Parallel()

	vip := matchableFounder("vip@example.com", domain.ArchetypeBuilder)
	partner := matchableFounder("partner@example.com", domain.ArchetypeStrategist)

	matches := newFakeMatchStore()
	for i := 0; i < MaxPendingMatches; i++ {
		m, err := domain.NewMatch(vip.ID, uuid.New(), 50, domain.ScoreBreakdown{}, nil)
		require.NoError(t, err)
		require.NoError(t, matches.Create(context.Background(), m))
	}

	founders := newFakeFounderStore(vip, partner)
	override := domain.NewOverridePolicy([]string{"vip@example.com"})
	job := newMatchJob(founders, matches, override)

	result := job.Run(context.Background())
	require.True(t, result.Success)
	assert.Equal(t, 1, result.MatchesCreated)
}

func TestMatchGenerationTooFewFounders(t *testing.T) {
	t.Parallel()

	founders := newFakeFounderStore(matchableFounder("lonely@example.com", domain.ArchetypeBuilder))
	job := newMatchJob(founders, newFakeMatchStore(), domain.OverridePolicy{})

	result := job.Run(context.Background())

	assert.True(t, result.Success)
	assert.Zero(t, result.MatchesCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "not enough active founders")
}

func TestMatchGenerationFetchFailureAborts(t *testing.T) {
	t.Parallel()

	founders := newFakeFounderStore()
	founders.listErr = errors.New("connection refused")
	job := newMatchJob(founders, newFakeMatchStore(), domain.OverridePolicy{})

	result := job.Run(context.Background())

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "connection refused")
}

func TestRunForFounder(t *testing.T) {
	t.Parallel()

	subject := matchableFounder("subject@example.com", domain.ArchetypeBuilder)
	other1 := matchableFounder("other1@example.com", domain.ArchetypeStrategist)
	other2 := matchableFounder("other2@example.com", domain.ArchetypeMentor)

	founders := newFakeFounderStore(subject, other1, other2)
	matches := newFakeMatchStore()
	job := newMatchJob(founders, matches, domain.OverridePolicy{})

	result := job.RunForFounder(context.Background(), subject.ID)

	require.True(t, result.Success)
	assert.Equal(t, 1, result.FoundersProcessed)
	assert.Equal(t, 2, result.MatchesCreated)
	for _, m := range matches.matches {
		assert.True(t, m.Involves(subject.ID), "targeted run must only create matches for the subject")
	}
}

func TestRunForFounderNotOnboarded(t *testing.T) {
	t.Parallel()

	subject := matchableFounder("subject@example.com", domain.ArchetypeBuilder)
	subject.OnboardingCompleted = false
	other := matchableFounder("other@example.com", domain.ArchetypeStrategist)

	founders := newFakeFounderStore(subject, other)
	matches := newFakeMatchStore()
	job := newMatchJob(founders, matches, domain.OverridePolicy{})

	result := job.RunForFounder(context.Background(), subject.ID)

	assert.False(t, result.Success)
	assert.Empty(t, matches.matches)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "not eligible")
}

func TestRunForFounderAtCapReportsSkip(t *testing.T) {
	t.Parallel()

	subject := matchableFounder("subject@example.com", domain.ArchetypeBuilder)
	other := matchableFounder("other@example.com", domain.ArchetypeStrategist)

	matches := newFakeMatchStore()
	for i := 0; i < MaxPendingMatches; i++ {
		m, err := domain.NewMatch(subject.ID, uuid.New(), 50, domain.ScoreBreakdown{}, nil)
		require.NoError(t, err)
		require.NoError(t, matches.Create(context.Background(), m))
	}

	founders := newFakeFounderStore(subject, other)
	job := newMatchJob(founders, matches, domain.OverridePolicy{})

	result := job.RunForFounder(context.Background(), subject.ID)

	require.True(t, result.Success)
	assert.Zero(t, result.MatchesCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "max pending matches")
}

func TestRunForFounderUnknownID(t *testing.T) {
	t.Parallel()

	founders := newFakeFounderStore(matchableFounder("a@example.com", domain.ArchetypeBuilder))
	job := newMatchJob(founders, newFakeMatchStore(), domain.OverridePolicy{})

	result := job.RunForFounder(context.Background(), uuid.New())

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "not found")
}
