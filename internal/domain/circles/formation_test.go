package circles

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalmindtech/mfn-api/internal/domain"
	"github.com/metalmindtech/mfn-api/internal/domain/matching"
)

func testFormationEngine() *FormationEngine {
	params := matching.NewDefaultParams()
	return NewFormationEngine(DefaultConfig(), matching.NewEngine(params), NewCounterNamer(), params.UTCOffset)
}

// diversePool builds founders spread across archetypes and stages so balance
// constraints are satisfiable.
func diversePool(n int) []*domain.FounderProfile {
	archetypes := domain.Archetypes
	stages := domain.ProjectStages
	now := time.Now().UTC()

	pool := make([]*domain.FounderProfile, n)
	for i := 0; i < n; i++ {
		lastActive := now.AddDate(0, 0, -1)
		pool[i] = &domain.FounderProfile{
			ID:           uuid.New(),
			Email:        "founder@example.com",
			Archetype:    archetypes[i%len(archetypes)],
			ProjectStage: stages[i%len(stages)],
			Timezone:     "UTC",
			Availability: domain.AvailabilityOpen,
			Status:       domain.FounderStatusActive,
			TrustScore:   float64(40 + i*5),
			LastActiveAt: &lastActive,
		}
	}
	return pool
}

func TestFormRejectsSmallPools(t *testing.T) {
	t.Parallel()
	engine := testFormationEngine()
	now := time.Now().UTC()

	_, ok := engine.Form(diversePool(DefaultConfig().MinMembers-1), nil, now)
	assert.False(t, ok)
}

func TestFormSkipsOccupiedFounders(t *testing.T) {
	t.Parallel()
	engine := testFormationEngine()
	now := time.Now().UTC()

	pool := diversePool(DefaultConfig().MinMembers + 1)
	occupied := map[uuid.UUID]struct{}{
		pool[0].ID: {},
		pool[1].ID: {},
	}

	_, ok := engine.Form(pool, occupied, now)
	assert.False(t, ok, "pool below minimum after removing occupied founders")

	result, ok := engine.Form(pool, map[uuid.UUID]struct{}{pool[0].ID: {}}, now)
	require.True(t, ok)
	for _, m := range result.Members {
		assert.NotEqual(t, pool[0].ID, m.ID, "occupied founder must not be placed")
	}
}

func TestFormBuildsBalancedCircle(t *testing.T) {
	t.Parallel()
	engine := testFormationEngine()
	cfg := DefaultConfig()
	now := time.Now().UTC()

	result, ok := engine.Form(diversePool(10), nil, now)
	require.True(t, ok)

	assert.GreaterOrEqual(t, len(result.Members), cfg.MinMembers)
	assert.LessOrEqual(t, len(result.Members), cfg.MaxMembers)
	assert.GreaterOrEqual(t, countDistinctArchetypes(result.Members), cfg.MinArchetypeDiversity)
	assert.Positive(t, result.Score)
	assert.NotEmpty(t, result.Name)
	assert.Equal(t, now.AddDate(0, 0, cfg.StandardCadenceDays), result.RotationDate)

	stageCounts := make(map[domain.ProjectStage]int)
	total := 0
	for _, m := range result.Members {
		stageCounts[m.ProjectStage]++
	}
	for _, n := range stageCounts {
		assert.LessOrEqual(t, n, cfg.MaxSameStage)
	}
	for _, n := range result.Metadata.ArchetypeDistribution {
		total += n
	}
	assert.Equal(t, len(result.Members), total, "metadata distributions cover every member")
	assert.Equal(t, result.Score, result.Metadata.FormationScore)
}

func TestFormSeedsWithHighestTrust(t *testing.T) {
	t.Parallel()
	engine := testFormationEngine()
	now := time.Now().UTC()

	pool := diversePool(8)
	pool[3].TrustScore = 99

	result, ok := engine.Form(pool, nil, now)
	require.True(t, ok)
	assert.Equal(t, pool[3].ID, result.Members[0].ID)
}

func TestFormIsDeterministic(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	pool := diversePool(12)

	first, ok1 := testFormationEngine().Form(pool, nil, now)
	second, ok2 := testFormationEngine().Form(pool, nil, now)
	require.True(t, ok1)
	require.True(t, ok2)

	require.Len(t, second.Members, len(first.Members))
	for i := range first.Members {
		assert.Equal(t, first.Members[i].ID, second.Members[i].ID)
	}
	assert.Equal(t, first.Score, second.Score)
}

func TestFormRejectsUnbalanceablePool(t *testing.T) {
	t.Parallel()
	engine := testFormationEngine()
	now := time.Now().UTC()

	// Everyone shares one archetype, so minimum diversity can never be met.
	pool := diversePool(8)
	for _, f := range pool {
		f.Archetype = domain.ArchetypeBuilder
	}

	_, ok := engine.Form(pool, nil, now)
	assert.False(t, ok)
}
