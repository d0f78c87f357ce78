package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/metalmindtech/mfn-api/internal/domain"
)

// Disqualification reasons. A disqualified result carries score 0 and an
// empty breakdown; disqualification is a normal outcome, not an error.
const (
	ReasonSamePerson      = "cannot match a founder with themselves"
	ReasonInactive        = "one or both profiles are not active"
	ReasonBothUnavailable = "both founders are unavailable"
	ReasonNoIntentOverlap = "no overlapping intent signals"
)

// Result is the outcome of scoring one ordered founder pair.
type Result struct {
	FounderID   uuid.UUID
	CandidateID uuid.UUID

	Score     int
	Breakdown domain.ScoreBreakdown
	Reasons   []string

	Disqualified     bool
	DisqualifyReason string
}

// Engine computes compatibility scores between founder profiles. It is pure:
// the same inputs always produce the same result.
type Engine struct {
	params *Params
}

// NewEngine creates an Engine with custom parameters.
func NewEngine(params *Params) *Engine {
	return &Engine{params: params}
}

// NewDefaultEngine creates an Engine with the production parameters.
func NewDefaultEngine() *Engine {
	return &Engine{params: NewDefaultParams()}
}

// Score computes the match result for subject against candidate.
//
// Disqualifiers are checked in fixed order (same identity, inactive profile,
// mutual unavailability, zero intent overlap); the first hit wins and
// short-circuits scoring. All four checks are symmetric, so the
// disqualification outcome is the same in both directions. The numeric score
// may differ slightly between directions because needs/offers accounting is
// directional, but both directions are always computed and summed.
func (e *Engine) Score(subject, candidate *domain.FounderProfile) Result {
	result := Result{
		FounderID:   subject.ID,
		CandidateID: candidate.ID,
	}

	if reason, disqualified := e.checkDisqualifiers(subject, candidate); disqualified {
		result.Disqualified = true
		result.DisqualifyReason = reason
		return result
	}

	breakdown := e.scoreBreakdown(subject, candidate)
	result.Breakdown = breakdown
	result.Score = int(math.Round(breakdown.Total))
	result.Reasons = e.matchReasons(subject, candidate, breakdown)
	return result
}

// FindBestMatches scores subject against every other founder in the pool,
// drops disqualified and zero-score results, and returns the top results by
// score. Ties keep the original pool order so runs are deterministic.
func (e *Engine) FindBestMatches(subject *domain.FounderProfile, pool []*domain.FounderProfile, limit int) []Result {
	results := make([]Result, 0, len(pool))
	for _, candidate := range pool {
		if candidate.ID == subject.ID {
			continue
		}
		r := e.Score(subject, candidate)
		if r.Disqualified || r.Score <= 0 {
			continue
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (e *Engine) checkDisqualifiers(a, b *domain.FounderProfile) (string, bool) {
	if a.ID == b.ID {
		return ReasonSamePerson, true
	}
	if !a.IsActive() || !b.IsActive() {
		return ReasonInactive, true
	}
	if a.Availability == domain.AvailabilityUnavailable && b.Availability == domain.AvailabilityUnavailable {
		return ReasonBothUnavailable, true
	}
	if a.Intents.Any() && b.Intents.Any() && a.Intents.OverlapCount(b.Intents) == 0 {
		return ReasonNoIntentOverlap, true
	}
	return "", false
}

func (e *Engine) scoreBreakdown(a, b *domain.FounderProfile) domain.ScoreBreakdown {
	bd := domain.ScoreBreakdown{
		NeedsOffers:  e.scoreNeedsOffers(a, b),
		Stage:        e.scoreStage(a, b),
		Archetype:    e.scoreArchetype(a, b),
		Timezone:     e.scoreTimezone(a, b),
		Availability: e.scoreAvailability(a, b),
		Intent:       e.scoreIntent(a, b),
		Trust:        e.scoreTrust(a, b),
	}
	raw := bd.NeedsOffers + bd.Stage + bd.Archetype + bd.Timezone + bd.Availability + bd.Intent + bd.Trust
	bd.Total = float64(raw) / float64(e.params.Weights.Sum()) * 100
	return bd
}

// scoreNeedsOffers values mutual exchange over one-way help: if both
// directions have matches the combined count scales the full weight; a
// one-directional match is discounted by OneWayFactor.
func (e *Engine) scoreNeedsOffers(a, b *domain.FounderProfile) int {
	maxScore := float64(e.params.Weights.NeedsOffers)
	needCap := float64(e.params.MutualNeedCap)

	aMatched := countNeedsMet(a.Needs, b.Skills)
	bMatched := countNeedsMet(b.Needs, a.Skills)

	var score float64
	switch {
	case aMatched > 0 && bMatched > 0:
		mutual := math.Min(float64(aMatched+bMatched), needCap)
		score = mutual / needCap * maxScore
	case aMatched > 0 || bMatched > 0:
		oneWay := float64(aMatched)
		if bMatched > aMatched {
			oneWay = float64(bMatched)
		}
		score = oneWay / needCap * maxScore * e.params.OneWayFactor
	}
	return int(math.Round(score))
}

// countNeedsMet counts open needs whose name matches a skill offered with
// WillingToHelp, case-insensitively.
func countNeedsMet(needs []domain.Need, skills []domain.Skill) int {
	offered := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if s.WillingToHelp {
			offered[strings.ToLower(s.Name)] = struct{}{}
		}
	}
	count := 0
	for _, n := range needs {
		if n.Fulfilled {
			continue
		}
		if _, ok := offered[strings.ToLower(n.Name)]; ok {
			count++
		}
	}
	return count
}

func (e *Engine) scoreStage(a, b *domain.FounderProfile) int {
	w := float64(e.params.Weights.Stage)
	if a.ProjectStage == "" || b.ProjectStage == "" {
		return int(math.Round(w * e.params.NeutralFactor))
	}
	return int(math.Round(e.params.StageCompatibility[a.ProjectStage][b.ProjectStage] * w))
}

func (e *Engine) scoreArchetype(a, b *domain.FounderProfile) int {
	w := float64(e.params.Weights.Archetype)
	if a.Archetype == "" || b.Archetype == "" {
		return int(math.Round(w * e.params.NeutralFactor))
	}
	return int(math.Round(e.params.ArchetypeCompatibility[a.Archetype][b.Archetype] * w))
}

func (e *Engine) scoreTimezone(a, b *domain.FounderProfile) int {
	w := float64(e.params.Weights.Timezone)
	return int(math.Round(e.params.TimezoneFactor(a.Timezone, b.Timezone) * w))
}

func (e *Engine) scoreAvailability(a, b *domain.FounderProfile) int {
	w := float64(e.params.Weights.Availability)
	return int(math.Round(e.params.AvailabilityCompatibility[a.Availability][b.Availability] * w))
}

func (e *Engine) scoreIntent(a, b *domain.FounderProfile) int {
	overlaps := a.Intents.OverlapCount(b.Intents)

	complementary := 0
	if (a.Intents.SeekingMentorship && b.Intents.WillingToMentor) ||
		(a.Intents.WillingToMentor && b.Intents.SeekingMentorship) {
		complementary += e.params.MentorshipBonus
	}
	if a.Intents.OpenToCollaboration && b.Intents.OpenToCollaboration {
		overlaps += e.params.CollaborationBonus
	}

	total := overlaps + complementary
	if total > e.params.IntentCap {
		total = e.params.IntentCap
	}
	w := float64(e.params.Weights.Intent)
	return int(math.Round(float64(total) / float64(e.params.IntentCap) * w))
}

func (e *Engine) scoreTrust(a, b *domain.FounderProfile) int {
	avg := (a.TrustScore + b.TrustScore) / 2
	normalized := math.Min(avg/100, 1)
	return int(math.Round(normalized * float64(e.params.Weights.Trust)))
}

// matchReasons thresholds each sub-score against a fraction of its maximum
// and emits a sentence per dimension that clears the bar. The list is
// advisory metadata, never used in ranking.
func (e *Engine) matchReasons(a, b *domain.FounderProfile, bd domain.ScoreBreakdown) []string {
	w := e.params.Weights
	var reasons []string

	switch {
	case float64(bd.NeedsOffers) >= float64(w.NeedsOffers)*0.7:
		reasons = append(reasons, "Strong mutual value exchange potential")
	case float64(bd.NeedsOffers) >= float64(w.NeedsOffers)*0.4:
		reasons = append(reasons, "Complementary skills and needs")
	}

	if float64(bd.Stage) >= float64(w.Stage)*0.8 {
		reasons = append(reasons,
			fmt.Sprintf("Both at compatible stages (%s/%s)", a.ProjectStage, b.ProjectStage))
	}
	if float64(bd.Archetype) >= float64(w.Archetype)*0.8 {
		reasons = append(reasons,
			fmt.Sprintf("Complementary archetypes (%s + %s)", a.Archetype, b.Archetype))
	}
	if float64(bd.Timezone) >= float64(w.Timezone)*0.8 {
		reasons = append(reasons, "Great timezone overlap for meetings")
	}
	if float64(bd.Intent) >= float64(w.Intent)*0.7 {
		reasons = append(reasons, "Aligned goals and intentions")
	}
	if float64(bd.Trust) >= float64(w.Trust)*0.7 {
		reasons = append(reasons, "Both have established trust in the network")
	}
	return reasons
}
