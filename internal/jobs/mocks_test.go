package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/metalmindtech/mfn-api/internal/domain"
	"github.com/metalmindtech/mfn-api/internal/store"
)

// In-memory store fakes. They implement just enough of the store interfaces
// for the jobs to run, with error injection per method where tests need it.

type fakeFounderStore struct {
	mu       sync.Mutex
	founders []*domain.FounderProfile

	listErr  error
	scoreErr error

	scores  map[uuid.UUID]float64
	touched map[uuid.UUID]time.Time
}

func newFakeFounderStore(founders ...*domain.FounderProfile) *fakeFounderStore {
	return &fakeFounderStore{
		founders: founders,
		scores:   make(map[uuid.UUID]float64),
		touched:  make(map[uuid.UUID]time.Time),
	}
}

func (s *fakeFounderStore) Create(_ context.Context, f *domain.FounderProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.founders = append(s.founders, f)
	return nil
}

func (s *fakeFounderStore) GetByID(_ context.Context, id uuid.UUID) (*domain.FounderProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.founders {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, store.ErrFounderNotFound
}

func (s *fakeFounderStore) GetByEmail(_ context.Context, email string) (*domain.FounderProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.founders {
		if f.Email == email {
			return f, nil
		}
	}
	return nil, store.ErrFounderNotFound
}

func (s *fakeFounderStore) ListActive(_ context.Context) ([]*domain.FounderProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var active []*domain.FounderProfile
	for _, f := range s.founders {
		if f.IsActive() {
			active = append(active, f)
		}
	}
	return active, nil
}

func (s *fakeFounderStore) Update(_ context.Context, _ *domain.FounderProfile) error {
	return nil
}

func (s *fakeFounderStore) UpdateTrustScore(_ context.Context, id uuid.UUID, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scoreErr != nil {
		return s.scoreErr
	}
	for _, f := range s.founders {
		if f.ID == id {
			f.TrustScore = score
			s.scores[id] = score
			return nil
		}
	}
	return store.ErrFounderNotFound
}

func (s *fakeFounderStore) TouchActivity(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.founders {
		if f.ID == id {
			t := at
			f.LastActiveAt = &t
			s.touched[id] = at
			return nil
		}
	}
	return store.ErrFounderNotFound
}

func (s *fakeFounderStore) WithTx(_ *sql.Tx) store.FounderStore { return s }

type fakeMatchStore struct {
	mu      sync.Mutex
	matches []*domain.Match

	createErr error
	countErr  error

	acceptedSince map[uuid.UUID]int
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{acceptedSince: make(map[uuid.UUID]int)}
}

func (s *fakeMatchStore) Create(_ context.Context, m *domain.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	// Emulate the unordered-pair unique constraint.
	for _, existing := range s.matches {
		if samePair(existing, m) {
			return fmt.Errorf("%w: pair", store.ErrMatchExists)
		}
	}
	s.matches = append(s.matches, m)
	return nil
}

func (s *fakeMatchStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, store.ErrMatchNotFound
}

func (s *fakeMatchStore) ExistsForPair(_ context.Context, a, b uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	probe := &domain.Match{FounderAID: a, FounderBID: b}
	for _, m := range s.matches {
		if samePair(m, probe) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeMatchStore) ListForFounder(_ context.Context, founderID uuid.UUID) ([]*domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Match
	for _, m := range s.matches {
		if m.Involves(founderID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeMatchStore) CountSuggestedFor(_ context.Context, founderID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	count := 0
	for _, m := range s.matches {
		if m.Status == domain.MatchStatusSuggested && m.Involves(founderID) {
			count++
		}
	}
	return count, nil
}

func (s *fakeMatchStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.MatchStatus, respondedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.ID == id {
			m.Status = status
			t := respondedAt
			m.RespondedAt = &t
			return nil
		}
	}
	return store.ErrMatchNotFound
}

func (s *fakeMatchStore) CountAcceptedSince(_ context.Context, founderID uuid.UUID, _ time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acceptedSince[founderID], nil
}

func (s *fakeMatchStore) WithTx(_ *sql.Tx) store.MatchStore { return s }

func samePair(a, b *domain.Match) bool {
	return (a.FounderAID == b.FounderAID && a.FounderBID == b.FounderBID) ||
		(a.FounderAID == b.FounderBID && a.FounderBID == b.FounderAID)
}

type fakeCircleStore struct {
	mu          sync.Mutex
	circles     []*domain.Circle
	memberships []*domain.CircleMembership

	listErr   error
	updateErr error

	joinedSince map[uuid.UUID]int
	txBinds     int
}

func newFakeCircleStore() *fakeCircleStore {
	return &fakeCircleStore{joinedSince: make(map[uuid.UUID]int)}
}

func (s *fakeCircleStore) Create(_ context.Context, c *domain.Circle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.circles = append(s.circles, c)
	return nil
}

func (s *fakeCircleStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Circle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.circles {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, store.ErrCircleNotFound
}

func (s *fakeCircleStore) ListByStatus(_ context.Context, statuses ...domain.CircleStatus) ([]*domain.Circle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*domain.Circle
	for _, c := range s.circles {
		for _, status := range statuses {
			if c.Status == status {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (s *fakeCircleStore) Update(_ context.Context, c *domain.Circle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	for i, existing := range s.circles {
		if existing.ID == c.ID {
			s.circles[i] = c
			return nil
		}
	}
	return store.ErrCircleNotFound
}

func (s *fakeCircleStore) AddMember(_ context.Context, m *domain.CircleMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.memberships {
		if existing.CircleID == m.CircleID && existing.FounderID == m.FounderID && existing.Active {
			return store.ErrMembershipExists
		}
	}
	s.memberships = append(s.memberships, m)
	return nil
}

func (s *fakeCircleStore) ListMemberships(_ context.Context, circleID uuid.UUID, activeOnly bool) ([]*domain.CircleMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.CircleMembership
	for _, m := range s.memberships {
		if m.CircleID != circleID {
			continue
		}
		if activeOnly && !m.Active {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *fakeCircleStore) DeactivateMember(_ context.Context, circleID, founderID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.memberships {
		if m.CircleID == circleID && m.FounderID == founderID && m.Active {
			m.Active = false
			t := at
			m.LeftAt = &t
			return nil
		}
	}
	return store.ErrMembershipNotFound
}

func (s *fakeCircleStore) DeactivateAllMembers(_ context.Context, circleID uuid.UUID, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	closed := 0
	for _, m := range s.memberships {
		if m.CircleID == circleID && m.Active {
			m.Active = false
			t := at
			m.LeftAt = &t
			closed++
		}
	}
	return closed, nil
}

func (s *fakeCircleStore) OccupiedFounderIDs(_ context.Context) (map[uuid.UUID]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	occupied := make(map[uuid.UUID]struct{})
	for _, m := range s.memberships {
		if !m.Active {
			continue
		}
		for _, c := range s.circles {
			if c.ID == m.CircleID && c.Status.Occupying() {
				occupied[m.FounderID] = struct{}{}
				break
			}
		}
	}
	return occupied, nil
}

func (s *fakeCircleStore) CountJoinedSince(_ context.Context, founderID uuid.UUID, _ time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joinedSince[founderID], nil
}

func (s *fakeCircleStore) WithTx(_ *sql.Tx) store.CircleStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txBinds++
	return s
}

type fakeActivityStore struct {
	mu      sync.Mutex
	entries []*domain.Activity

	// counts keyed by founder then activity type, for trust boost lookups
	counts  map[uuid.UUID]map[domain.ActivityType]int
	txBinds int
}

func newFakeActivityStore() *fakeActivityStore {
	return &fakeActivityStore{counts: make(map[uuid.UUID]map[domain.ActivityType]int)}
}

func (s *fakeActivityStore) setCount(founderID uuid.UUID, typ domain.ActivityType, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts[founderID] == nil {
		s.counts[founderID] = make(map[domain.ActivityType]int)
	}
	s.counts[founderID][typ] = n
}

func (s *fakeActivityStore) Create(_ context.Context, a *domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, a)
	return nil
}

func (s *fakeActivityStore) ListForCircle(_ context.Context, circleID uuid.UUID, limit int) ([]*domain.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Activity
	for _, a := range s.entries {
		if a.CircleID != nil && *a.CircleID == circleID {
			out = append(out, a)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeActivityStore) CountForFounderSince(_ context.Context, founderID uuid.UUID, typ domain.ActivityType, _ time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[founderID][typ], nil
}

func (s *fakeActivityStore) WithTx(_ *sql.Tx) store.ActivityStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txBinds++
	return s
}

func (s *fakeActivityStore) entriesOfType(typ domain.ActivityType) []*domain.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Activity
	for _, a := range s.entries {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}
