package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/metalmindtech/mfn-api/internal/domain"
	"github.com/metalmindtech/mfn-api/internal/platform/logger"
	"github.com/metalmindtech/mfn-api/internal/store"
)

// FounderStore implements the store.FounderStore interface using a
// PostgreSQL database as the storage backend. Skills and needs live in child
// tables and are loaded with every profile read.
type FounderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewFounderStore creates a new PostgreSQL implementation of the FounderStore
// interface. It accepts a database connection or transaction that should be
// initialized and managed by the caller. If log is nil, the default logger
// is used.
func NewFounderStore(db store.DBTX, log *slog.Logger) *FounderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &FounderStore{
		db:     db,
		logger: log.With(slog.String("component", "founder_store")),
	}
}

// Ensure FounderStore implements store.FounderStore interface
var _ store.FounderStore = (*FounderStore)(nil)

const founderColumns = `id, email, display_name, project_stage, archetype, timezone,
	availability, intent_signals, status, onboarding_completed, trust_score,
	last_active_at, created_at, updated_at`

// Create implements store.FounderStore.Create
func (s *FounderStore) Create(ctx context.Context, founder *domain.FounderProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := founder.Validate(); err != nil {
		log.Warn("founder validation failed during create",
			slog.String("error", err.Error()),
			slog.String("founder_id", founder.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	intents, err := json.Marshal(founder.Intents)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO founders (` + founderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		founder.ID,
		founder.Email,
		founder.DisplayName,
		founder.ProjectStage,
		founder.Archetype,
		founder.Timezone,
		founder.Availability,
		intents,
		founder.Status,
		founder.OnboardingCompleted,
		founder.TrustScore,
		founder.LastActiveAt,
		founder.CreatedAt,
		founder.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate email during founder creation",
				slog.String("founder_id", founder.ID.String()))
			return store.ErrEmailExists
		}
		log.Error("failed to create founder",
			slog.String("error", err.Error()),
			slog.String("founder_id", founder.ID.String()))
		return MapError(err)
	}

	if err := s.replaceSkillsAndNeeds(ctx, founder); err != nil {
		return err
	}

	log.Info("founder created",
		slog.String("founder_id", founder.ID.String()),
		slog.String("status", string(founder.Status)))
	return nil
}

// GetByID implements store.FounderStore.GetByID
func (s *FounderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.FounderProfile, error) {
	return s.getOne(ctx, "WHERE id = $1", id)
}

// GetByEmail implements store.FounderStore.GetByEmail
func (s *FounderStore) GetByEmail(ctx context.Context, email string) (*domain.FounderProfile, error) {
	return s.getOne(ctx, "WHERE email = $1", email)
}

func (s *FounderStore) getOne(ctx context.Context, where string, arg any) (*domain.FounderProfile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + founderColumns + ` FROM founders ` + where
	founder, err := scanFounder(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrFounderNotFound
		}
		log.Error("failed to get founder", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	if err := s.loadSkillsAndNeeds(ctx, founder); err != nil {
		return nil, err
	}
	return founder, nil
}

// ListActive implements store.FounderStore.ListActive
func (s *FounderStore) ListActive(ctx context.Context) ([]*domain.FounderProfile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + founderColumns + `
		FROM founders
		WHERE status = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, domain.FounderStatusActive)
	if err != nil {
		log.Error("failed to list active founders", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var founders []*domain.FounderProfile
	for rows.Next() {
		founder, err := scanFounder(rows)
		if err != nil {
			return nil, MapError(err)
		}
		founders = append(founders, founder)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	for _, founder := range founders {
		if err := s.loadSkillsAndNeeds(ctx, founder); err != nil {
			return nil, err
		}
	}

	log.Debug("listed active founders", slog.Int("count", len(founders)))
	return founders, nil
}

// Update implements store.FounderStore.Update
func (s *FounderStore) Update(ctx context.Context, founder *domain.FounderProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := founder.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	intents, err := json.Marshal(founder.Intents)
	if err != nil {
		return err
	}

	founder.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE founders
		SET email = $2, display_name = $3, project_stage = $4, archetype = $5,
			timezone = $6, availability = $7, intent_signals = $8, status = $9,
			onboarding_completed = $10, trust_score = $11, last_active_at = $12,
			updated_at = $13
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		founder.ID,
		founder.Email,
		founder.DisplayName,
		founder.ProjectStage,
		founder.Archetype,
		founder.Timezone,
		founder.Availability,
		intents,
		founder.Status,
		founder.OnboardingCompleted,
		founder.TrustScore,
		founder.LastActiveAt,
		founder.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrEmailExists
		}
		log.Error("failed to update founder",
			slog.String("error", err.Error()),
			slog.String("founder_id", founder.ID.String()))
		return MapError(err)
	}
	if err := requireRow(result, store.ErrFounderNotFound); err != nil {
		return err
	}

	return s.replaceSkillsAndNeeds(ctx, founder)
}

// UpdateTrustScore implements store.FounderStore.UpdateTrustScore
func (s *FounderStore) UpdateTrustScore(ctx context.Context, id uuid.UUID, score float64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE founders
		SET trust_score = $2, updated_at = $3
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, id, score, time.Now().UTC())
	if err != nil {
		log.Error("failed to update trust score",
			slog.String("error", err.Error()),
			slog.String("founder_id", id.String()))
		return MapError(err)
	}
	return requireRow(result, store.ErrFounderNotFound)
}

// TouchActivity implements store.FounderStore.TouchActivity
func (s *FounderStore) TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE founders
		SET last_active_at = $2, updated_at = $2
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, id, at)
	if err != nil {
		log.Error("failed to touch founder activity",
			slog.String("error", err.Error()),
			slog.String("founder_id", id.String()))
		return MapError(err)
	}
	return requireRow(result, store.ErrFounderNotFound)
}

// WithTx implements store.FounderStore.WithTx
func (s *FounderStore) WithTx(tx *sql.Tx) store.FounderStore {
	return NewFounderStore(tx, s.logger)
}

// replaceSkillsAndNeeds rewrites the profile's skill and need rows to match
// the in-memory state.
func (s *FounderStore) replaceSkillsAndNeeds(ctx context.Context, founder *domain.FounderProfile) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM founder_skills WHERE founder_id = $1`, founder.ID); err != nil {
		return MapError(err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM founder_needs WHERE founder_id = $1`, founder.ID); err != nil {
		return MapError(err)
	}

	for _, skill := range founder.Skills {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO founder_skills (id, founder_id, name, proficiency, willing_to_help)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), founder.ID, skill.Name, skill.Proficiency, skill.WillingToHelp)
		if err != nil {
			return MapError(err)
		}
	}
	for _, need := range founder.Needs {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO founder_needs (id, founder_id, name, priority, fulfilled)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), founder.ID, need.Name, need.Priority, need.Fulfilled)
		if err != nil {
			return MapError(err)
		}
	}
	return nil
}

// loadSkillsAndNeeds populates the profile's Skills and Needs slices.
func (s *FounderStore) loadSkillsAndNeeds(ctx context.Context, founder *domain.FounderProfile) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, proficiency, willing_to_help
		FROM founder_skills
		WHERE founder_id = $1
		ORDER BY name
	`, founder.ID)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	founder.Skills = nil
	for rows.Next() {
		var skill domain.Skill
		if err := rows.Scan(&skill.Name, &skill.Proficiency, &skill.WillingToHelp); err != nil {
			return MapError(err)
		}
		founder.Skills = append(founder.Skills, skill)
	}
	if err := rows.Err(); err != nil {
		return MapError(err)
	}

	needRows, err := s.db.QueryContext(ctx, `
		SELECT name, priority, fulfilled
		FROM founder_needs
		WHERE founder_id = $1
		ORDER BY name
	`, founder.ID)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = needRows.Close() }()

	founder.Needs = nil
	for needRows.Next() {
		var need domain.Need
		if err := needRows.Scan(&need.Name, &need.Priority, &need.Fulfilled); err != nil {
			return MapError(err)
		}
		founder.Needs = append(founder.Needs, need)
	}
	return needRows.Err()
}

// rowScanner lets scanFounder work with both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFounder(row rowScanner) (*domain.FounderProfile, error) {
	var founder domain.FounderProfile
	var intents []byte

	err := row.Scan(
		&founder.ID,
		&founder.Email,
		&founder.DisplayName,
		&founder.ProjectStage,
		&founder.Archetype,
		&founder.Timezone,
		&founder.Availability,
		&intents,
		&founder.Status,
		&founder.OnboardingCompleted,
		&founder.TrustScore,
		&founder.LastActiveAt,
		&founder.CreatedAt,
		&founder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(intents) > 0 {
		if err := json.Unmarshal(intents, &founder.Intents); err != nil {
			return nil, err
		}
	}
	return &founder, nil
}

// requireRow converts a zero-rows-affected result into notFound.
func requireRow(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
