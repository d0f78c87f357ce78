package circles

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/metalmindtech/mfn-api/internal/domain"
)

// ExitReason classifies why a member leaves a circle.
type ExitReason string

const (
	ExitVoluntary   ExitReason = "voluntary"
	ExitInactivity  ExitReason = "inactivity"
	ExitTrustDecay  ExitReason = "trust_decay"
	ExitRotation    ExitReason = "rotation"
	ExitDissolution ExitReason = "dissolution"
	ExitAdminAction ExitReason = "admin_action"
)

// RotationType classifies a rotation plan by how much of the circle turns
// over: renewal (no one leaves), full (at least half leave), or partial.
type RotationType string

const (
	RotationRenewal RotationType = "renewal"
	RotationFull    RotationType = "full"
	RotationPartial RotationType = "partial"
)

// HealthStatus classifies an active circle for reporting.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthAtRisk   HealthStatus = "at_risk"
	HealthCritical HealthStatus = "critical"
)

// EntryDecision is the outcome of an entry rule evaluation. Warnings flag
// balance concerns that do not block the join.
type EntryDecision struct {
	Allowed  bool
	Reason   string
	Warnings []string
}

// ExitDecision is the outcome of an exit rule evaluation. GracePeriodDays is
// non-zero for reasons that allow the member time to recover before removal.
type ExitDecision struct {
	ShouldExit      bool
	Reason          ExitReason
	GracePeriodDays int
}

// RotationPlan describes one rotation cycle for a circle.
type RotationPlan struct {
	CircleID     uuid.UUID
	RotateOut    []uuid.UUID
	Replacements []uuid.UUID
	Type         RotationType
	Reason       string
}

// DissolutionCheck is the outcome of a dissolution rule evaluation.
type DissolutionCheck struct {
	ShouldDissolve  bool
	Reason          string
	CanRecover      bool
	RecoveryActions []string
}

// FacilitatorPick names the member selected to facilitate a circle and why.
type FacilitatorPick struct {
	FounderID uuid.UUID
	Score     float64
	Reasons   []string
}

// Rules evaluates circle lifecycle decisions. The UTC offset lookup is shared
// with the scorer's timezone table and injected to keep the packages
// independently testable.
type Rules struct {
	cfg       Config
	utcOffset func(tz string) int
	override  domain.OverridePolicy
}

// NewRules creates a Rules evaluator. utcOffset maps IANA zone names to UTC
// offsets in hours (unknown zones should return 0); override names founders
// exempt from every entry and exit limit.
func NewRules(cfg Config, utcOffset func(tz string) int, override domain.OverridePolicy) *Rules {
	return &Rules{cfg: cfg, utcOffset: utcOffset, override: override}
}

// Config returns the governance thresholds in effect.
func (r *Rules) Config() Config {
	return r.cfg
}

// CanJoin checks whether a founder may enter a circle with the given current
// members. Rejections are checked in fixed order: capacity, trust floor,
// availability, status, stage balance, timezone spread. Too many members of
// the same archetype produces a non-blocking warning. Override founders are
// exempt from every check.
func (r *Rules) CanJoin(founder *domain.FounderProfile, circle *domain.Circle, current []*domain.FounderProfile) EntryDecision {
	if r.override.Exempt(founder.Email) {
		return EntryDecision{Allowed: true}
	}

	if len(current) >= r.cfg.MaxMembers {
		return EntryDecision{Reason: "circle is at maximum capacity"}
	}
	if founder.TrustScore < r.cfg.MinIndividualTrust {
		return EntryDecision{Reason: "trust score below minimum threshold"}
	}
	if founder.Availability == domain.AvailabilityUnavailable {
		return EntryDecision{Reason: "founder is currently unavailable"}
	}
	if !founder.IsActive() {
		return EntryDecision{Reason: "profile is not active"}
	}

	var warnings []string
	if founder.Archetype != "" {
		count := 0
		for _, m := range current {
			if m.Archetype == founder.Archetype {
				count++
			}
		}
		if count >= r.cfg.MaxSameArchetype {
			warnings = append(warnings, "adding this member reduces archetype diversity")
		}
	}

	if founder.ProjectStage != "" {
		count := 0
		for _, m := range current {
			if m.ProjectStage == founder.ProjectStage {
				count++
			}
		}
		if count >= r.cfg.MaxSameStage {
			return EntryDecision{Reason: "too many members at the same stage"}
		}
	}

	timezones := make([]string, 0, len(current)+1)
	for _, m := range current {
		timezones = append(timezones, m.Timezone)
	}
	timezones = append(timezones, founder.Timezone)
	if !r.timezoneSpreadAcceptable(timezones) {
		return EntryDecision{Reason: "timezone spread would exceed maximum"}
	}

	return EntryDecision{Allowed: true, Warnings: warnings}
}

// ShouldExit checks whether a member should leave their circle. Reasons are
// evaluated in fixed order: inactivity, trust decay, availability change,
// rotation; the first match wins. Override founders never exit.
func (r *Rules) ShouldExit(member *domain.FounderProfile, membership *domain.CircleMembership, circle *domain.Circle, now time.Time) ExitDecision {
	if r.override.Exempt(member.Email) {
		return ExitDecision{}
	}

	if member.LastActiveAt != nil && member.DaysInactive(now) >= r.cfg.RemovalInactiveDays {
		return ExitDecision{ShouldExit: true, Reason: ExitInactivity}
	}

	if member.TrustScore < r.cfg.MinIndividualTrust {
		return ExitDecision{ShouldExit: true, Reason: ExitTrustDecay, GracePeriodDays: r.cfg.TrustExitGraceDays}
	}

	if member.Availability == domain.AvailabilityUnavailable {
		return ExitDecision{ShouldExit: true, Reason: ExitVoluntary, GracePeriodDays: r.cfg.AvailabilityExitGraceDays}
	}

	if circle.RotationDate != nil && !circle.RotationDate.After(now) {
		return ExitDecision{ShouldExit: true, Reason: ExitRotation}
	}

	return ExitDecision{}
}

// PlanRotation evaluates the exit rule for every member and builds a rotation
// plan: who leaves, suggested replacements from the available pool (sorted by
// trust score descending, excluding anyone staying), and the rotation type.
func (r *Rules) PlanRotation(circle *domain.Circle, members []*domain.FounderProfile, memberships []*domain.CircleMembership, pool []*domain.FounderProfile, now time.Time) RotationPlan {
	byFounder := make(map[uuid.UUID]*domain.CircleMembership, len(memberships))
	for _, m := range memberships {
		byFounder[m.FounderID] = m
	}

	var rotateOut []uuid.UUID
	var reasons []string
	leaving := make(map[uuid.UUID]struct{})

	for _, member := range members {
		membership, ok := byFounder[member.ID]
		if !ok {
			continue
		}
		decision := r.ShouldExit(member, membership, circle, now)
		if decision.ShouldExit {
			rotateOut = append(rotateOut, member.ID)
			leaving[member.ID] = struct{}{}
			reasons = append(reasons, fmt.Sprintf("%s: %s", member.Email, decision.Reason))
		}
	}

	var rotationType RotationType
	switch {
	case len(rotateOut) == 0:
		rotationType = RotationRenewal
	case len(rotateOut)*2 >= len(members):
		rotationType = RotationFull
	default:
		rotationType = RotationPartial
	}

	staying := make(map[uuid.UUID]struct{})
	for _, member := range members {
		if _, out := leaving[member.ID]; !out {
			staying[member.ID] = struct{}{}
		}
	}

	reason := strings.Join(reasons, "; ")
	if reason == "" {
		reason = "scheduled rotation"
	}

	return RotationPlan{
		CircleID:     circle.ID,
		RotateOut:    rotateOut,
		Replacements: r.suggestReplacements(staying, pool, len(rotateOut)),
		Type:         rotationType,
		Reason:       reason,
	}
}

// suggestReplacements picks the highest-trust founders from the pool, skips
// anyone remaining in the circle, and truncates to the vacated count.
func (r *Rules) suggestReplacements(staying map[uuid.UUID]struct{}, pool []*domain.FounderProfile, count int) []uuid.UUID {
	available := make([]*domain.FounderProfile, 0, len(pool))
	for _, f := range pool {
		if _, ok := staying[f.ID]; ok {
			continue
		}
		available = append(available, f)
	}
	sort.SliceStable(available, func(i, j int) bool {
		return available[i].TrustScore > available[j].TrustScore
	})
	if len(available) > count {
		available = available[:count]
	}
	ids := make([]uuid.UUID, len(available))
	for i, f := range available {
		ids[i] = f.ID
	}
	return ids
}

// ShouldDissolve checks whether a circle should be dissolved: below minimum
// size (recoverable while at least two members remain), every member inactive
// past the warning window (unrecoverable), or average trust below half the
// minimum circle average (unrecoverable).
func (r *Rules) ShouldDissolve(circle *domain.Circle, members []*domain.FounderProfile, memberships []*domain.CircleMembership, now time.Time) DissolutionCheck {
	active := 0
	for _, m := range memberships {
		if m.Active {
			active++
		}
	}

	if active < r.cfg.MinMembers {
		return DissolutionCheck{
			ShouldDissolve:  true,
			Reason:          "below minimum member count",
			CanRecover:      active >= 2,
			RecoveryActions: []string{"add new members to reach minimum"},
		}
	}

	if len(members) > 0 {
		allInactive := true
		for _, m := range members {
			if m.LastActiveAt == nil || m.DaysInactive(now) <= r.cfg.WarningInactiveDays {
				allInactive = false
				break
			}
		}
		if allInactive {
			return DissolutionCheck{
				ShouldDissolve: true,
				Reason:         "all members inactive",
			}
		}

		sum := 0.0
		for _, m := range members {
			sum += m.TrustScore
		}
		avg := sum / float64(len(members))
		if avg < r.cfg.MinCircleAverageTrust/2 {
			return DissolutionCheck{
				ShouldDissolve: true,
				Reason:         "average trust score critically low",
			}
		}
	}

	return DissolutionCheck{CanRecover: true}
}

// SelectFacilitator scores every member above the facilitator trust floor and
// returns the best candidate. Score is 0.4 x trust plus fixed bonuses for the
// mentor and connector archetypes, an advanced project stage, open
// availability, and the willing_to_mentor intent. Ties keep input order.
// Returns false when no member clears the trust floor.
func (r *Rules) SelectFacilitator(members []*domain.FounderProfile) (FacilitatorPick, bool) {
	var best FacilitatorPick
	found := false

	for _, m := range members {
		if m.TrustScore < r.cfg.FacilitatorMinTrust {
			continue
		}

		score := m.TrustScore * 0.4
		reasons := []string{fmt.Sprintf("Trust: %.0f", m.TrustScore)}

		if m.Archetype == domain.ArchetypeMentor {
			score += 20
			reasons = append(reasons, "Mentor archetype")
		}
		if m.Archetype == domain.ArchetypeConnector {
			score += 15
			reasons = append(reasons, "Connector archetype")
		}
		if m.ProjectStage == domain.StageScaling || m.ProjectStage == domain.StageGrowing {
			score += 10
			reasons = append(reasons, "Experienced stage")
		}
		if m.Availability == domain.AvailabilityOpen {
			score += 10
			reasons = append(reasons, "High availability")
		}
		if m.Intents.WillingToMentor {
			score += 15
			reasons = append(reasons, "Willing to mentor")
		}

		if !found || score > best.Score {
			best = FacilitatorPick{FounderID: m.ID, Score: score, Reasons: reasons}
			found = true
		}
	}

	return best, found
}

// Health classifies an active circle by member count: healthy at or above the
// ideal size, at risk between minimum and ideal, critical below minimum.
func (r *Rules) Health(memberCount int) HealthStatus {
	switch {
	case memberCount >= r.cfg.IdealMembers:
		return HealthHealthy
	case memberCount >= r.cfg.MinMembers:
		return HealthAtRisk
	default:
		return HealthCritical
	}
}

// timezoneSpreadAcceptable checks that the spread between the furthest UTC
// offsets stays within the configured maximum.
func (r *Rules) timezoneSpreadAcceptable(timezones []string) bool {
	return timezoneSpreadWithin(r.utcOffset, timezones, r.cfg.MaxTimezoneSpreadHours)
}

// timezoneSpreadWithin reports whether the gap between the furthest UTC
// offsets among the given zones is at most maxSpread hours.
func timezoneSpreadWithin(utcOffset func(tz string) int, timezones []string, maxSpread int) bool {
	if len(timezones) == 0 {
		return true
	}
	minOffset := utcOffset(timezones[0])
	maxOffset := minOffset
	for _, tz := range timezones[1:] {
		off := utcOffset(tz)
		if off < minOffset {
			minOffset = off
		}
		if off > maxOffset {
			maxOffset = off
		}
	}
	return maxOffset-minOffset <= maxSpread
}
