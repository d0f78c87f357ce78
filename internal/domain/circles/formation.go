package circles

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/metalmindtech/mfn-api/internal/domain"
	"github.com/metalmindtech/mfn-api/internal/domain/matching"
)

// FormationResult describes a circle proposed by the formation engine. The
// caller persists the circle and memberships; the engine itself performs no
// I/O.
type FormationResult struct {
	Name         string
	Members      []*domain.FounderProfile
	Score        int
	RotationDate time.Time
	Metadata     domain.CircleMetadata
}

// FormationEngine assembles new circles from a pool of founders using a
// greedy algorithm with balance constraints. Pairwise compatibility comes
// from the matching engine.
type FormationEngine struct {
	cfg       Config
	matcher   *matching.Engine
	namer     Namer
	utcOffset func(tz string) int
}

// NewFormationEngine creates a formation engine with the given config,
// pairwise scorer, name source, and timezone offset lookup.
func NewFormationEngine(cfg Config, matcher *matching.Engine, namer Namer, utcOffset func(tz string) int) *FormationEngine {
	return &FormationEngine{cfg: cfg, matcher: matcher, namer: namer, utcOffset: utcOffset}
}

// Form builds one circle from the pool, skipping founders whose IDs appear
// in occupied (already in a forming or active circle). It returns false when
// no circle satisfying the minimum size and balance constraints can be
// assembled.
//
// The highest-trust available founder seeds the circle; members are then
// added greedily, each pick maximizing the average pairwise match score with
// the current members plus a diversity bonus. Ties keep the earlier
// candidate in trust order, so runs over the same pool are deterministic.
func (e *FormationEngine) Form(pool []*domain.FounderProfile, occupied map[uuid.UUID]struct{}, now time.Time) (FormationResult, bool) {
	if len(pool) < e.cfg.MinMembers {
		return FormationResult{}, false
	}

	available := make([]*domain.FounderProfile, 0, len(pool))
	for _, f := range pool {
		if _, taken := occupied[f.ID]; taken {
			continue
		}
		available = append(available, f)
	}
	if len(available) < e.cfg.MinMembers {
		return FormationResult{}, false
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].TrustScore > available[j].TrustScore
	})

	members := []*domain.FounderProfile{available[0]}
	remaining := available[1:]

	for len(members) < e.cfg.MaxMembers && len(remaining) > 0 {
		idx, ok := e.bestCandidate(members, remaining)
		if !ok {
			break
		}
		members = append(members, remaining[idx])
		remaining = append(remaining[:idx:idx], remaining[idx+1:]...)
	}

	if len(members) < e.cfg.MinMembers {
		return FormationResult{}, false
	}
	if !e.balanced(members) {
		return FormationResult{}, false
	}
	if countDistinctArchetypes(members) < e.cfg.MinArchetypeDiversity {
		return FormationResult{}, false
	}

	score := e.circleScore(members)
	return FormationResult{
		Name:         e.namer.CircleName(now),
		Members:      members,
		Score:        score,
		RotationDate: now.AddDate(0, 0, e.cfg.StandardCadenceDays),
		Metadata: domain.CircleMetadata{
			FormationScore:        score,
			ArchetypeDistribution: archetypeDistribution(members),
			StageDistribution:     stageDistribution(members),
		},
	}, true
}

// bestCandidate returns the index into candidates of the member whose
// addition yields the highest combined score, or false when no candidate
// passes the balance check or scores above zero.
func (e *FormationEngine) bestCandidate(members []*domain.FounderProfile, candidates []*domain.FounderProfile) (int, bool) {
	bestIdx := -1
	bestScore := 0.0

	for i := range candidates {
		trial := append(append([]*domain.FounderProfile{}, members...), candidates[i])
		if !e.balanced(trial) {
			continue
		}

		total := 0.0
		for j := range members {
			res := e.matcher.Score(members[j], candidates[i])
			if !res.Disqualified {
				total += float64(res.Score)
			}
		}
		avg := total / float64(len(members))
		score := avg + float64(e.diversityBonus(trial))

		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return 0, false
	}
	return bestIdx, true
}

// balanced reports whether the member set respects the stage concentration
// and timezone spread constraints.
func (e *FormationEngine) balanced(members []*domain.FounderProfile) bool {
	stageCounts := make(map[domain.ProjectStage]int)
	for _, m := range members {
		stageCounts[m.ProjectStage]++
	}
	for _, n := range stageCounts {
		if n > e.cfg.MaxSameStage {
			return false
		}
	}

	zones := make([]string, len(members))
	for i, m := range members {
		zones[i] = m.Timezone
	}
	return timezoneSpreadWithin(e.utcOffset, zones, e.cfg.MaxTimezoneSpreadHours)
}

// diversityBonus rewards archetype and stage variety.
func (e *FormationEngine) diversityBonus(members []*domain.FounderProfile) int {
	bonus := countDistinctArchetypes(members) * e.cfg.ArchetypeDiversityBonus

	stages := make(map[domain.ProjectStage]struct{})
	for _, m := range members {
		if m.ProjectStage != "" {
			stages[m.ProjectStage] = struct{}{}
		}
	}
	bonus += len(stages) * e.cfg.StageDiversityBonus

	return bonus
}

// circleScore averages the pairwise match scores over all non-disqualified
// pairs and adds the diversity bonus.
func (e *FormationEngine) circleScore(members []*domain.FounderProfile) int {
	total := 0.0
	pairs := 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			res := e.matcher.Score(members[i], members[j])
			if res.Disqualified {
				continue
			}
			total += float64(res.Score)
			pairs++
		}
	}

	avg := 0.0
	if pairs > 0 {
		avg = total / float64(pairs)
	}
	return int(math.Round(avg + float64(e.diversityBonus(members))))
}

func countDistinctArchetypes(members []*domain.FounderProfile) int {
	set := make(map[domain.Archetype]struct{})
	for _, m := range members {
		if m.Archetype != "" {
			set[m.Archetype] = struct{}{}
		}
	}
	return len(set)
}

func archetypeDistribution(members []*domain.FounderProfile) map[string]int {
	dist := make(map[string]int)
	for _, m := range members {
		key := string(m.Archetype)
		if key == "" {
			key = "unknown"
		}
		dist[key]++
	}
	return dist
}

func stageDistribution(members []*domain.FounderProfile) map[string]int {
	dist := make(map[string]int)
	for _, m := range members {
		key := string(m.ProjectStage)
		if key == "" {
			key = "unknown"
		}
		dist[key]++
	}
	return dist
}
