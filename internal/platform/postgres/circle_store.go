package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/metalmindtech/mfn-api/internal/domain"
	"github.com/metalmindtech/mfn-api/internal/platform/logger"
	"github.com/metalmindtech/mfn-api/internal/store"
)

// CircleStore implements the store.CircleStore interface using a PostgreSQL
// database as the storage backend. A partial unique index on circle_members
// (circle_id, founder_id) WHERE active enforces one active membership per
// founder per circle.
type CircleStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCircleStore creates a new PostgreSQL implementation of the CircleStore
// interface. If log is nil, the default logger is used.
func NewCircleStore(db store.DBTX, log *slog.Logger) *CircleStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &CircleStore{
		db:     db,
		logger: log.With(slog.String("component", "circle_store")),
	}
}

// Ensure CircleStore implements store.CircleStore interface
var _ store.CircleStore = (*CircleStore)(nil)

const circleColumns = `id, name, status, rotation_cadence_days, rotation_date,
	formed_at, last_rotation_at, dissolved_at, dissolution_reason, metadata,
	created_at, updated_at`

// Create implements store.CircleStore.Create
func (s *CircleStore) Create(ctx context.Context, circle *domain.Circle) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := circle.Validate(); err != nil {
		log.Warn("circle validation failed during create",
			slog.String("error", err.Error()),
			slog.String("circle_id", circle.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	metadata, err := json.Marshal(circle.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO circles (` + circleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		circle.ID,
		circle.Name,
		circle.Status,
		circle.RotationCadenceDays,
		circle.RotationDate,
		circle.FormedAt,
		circle.LastRotationAt,
		circle.DissolvedAt,
		circle.DissolutionReason,
		metadata,
		circle.CreatedAt,
		circle.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create circle",
			slog.String("error", err.Error()),
			slog.String("circle_id", circle.ID.String()))
		return MapError(err)
	}

	log.Info("circle created",
		slog.String("circle_id", circle.ID.String()),
		slog.String("name", circle.Name))
	return nil
}

// GetByID implements store.CircleStore.GetByID
func (s *CircleStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Circle, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + circleColumns + ` FROM circles WHERE id = $1`
	circle, err := scanCircle(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCircleNotFound
		}
		log.Error("failed to get circle",
			slog.String("error", err.Error()),
			slog.String("circle_id", id.String()))
		return nil, MapError(err)
	}
	return circle, nil
}

// ListByStatus implements store.CircleStore.ListByStatus
func (s *CircleStore) ListByStatus(ctx context.Context, statuses ...domain.CircleStatus) ([]*domain.Circle, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(statuses) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = status
	}

	query := `
		SELECT ` + circleColumns + `
		FROM circles
		WHERE status IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list circles", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var circles []*domain.Circle
	for rows.Next() {
		circle, err := scanCircle(rows)
		if err != nil {
			return nil, MapError(err)
		}
		circles = append(circles, circle)
	}
	return circles, rows.Err()
}

// Update implements store.CircleStore.Update
func (s *CircleStore) Update(ctx context.Context, circle *domain.Circle) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := circle.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	metadata, err := json.Marshal(circle.Metadata)
	if err != nil {
		return err
	}

	circle.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE circles
		SET name = $2, status = $3, rotation_cadence_days = $4, rotation_date = $5,
			last_rotation_at = $6, dissolved_at = $7, dissolution_reason = $8,
			metadata = $9, updated_at = $10
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		circle.ID,
		circle.Name,
		circle.Status,
		circle.RotationCadenceDays,
		circle.RotationDate,
		circle.LastRotationAt,
		circle.DissolvedAt,
		circle.DissolutionReason,
		metadata,
		circle.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update circle",
			slog.String("error", err.Error()),
			slog.String("circle_id", circle.ID.String()))
		return MapError(err)
	}
	return requireRow(result, store.ErrCircleNotFound)
}

// AddMember implements store.CircleStore.AddMember
func (s *CircleStore) AddMember(ctx context.Context, membership *domain.CircleMembership) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := membership.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO circle_members (id, circle_id, founder_id, role, active, joined_at, left_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		membership.ID,
		membership.CircleID,
		membership.FounderID,
		membership.Role,
		membership.Active,
		membership.JoinedAt,
		membership.LeftAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrMembershipExists
		}
		log.Error("failed to add circle member",
			slog.String("error", err.Error()),
			slog.String("circle_id", membership.CircleID.String()),
			slog.String("founder_id", membership.FounderID.String()))
		return MapError(err)
	}

	log.Info("circle member added",
		slog.String("circle_id", membership.CircleID.String()),
		slog.String("founder_id", membership.FounderID.String()))
	return nil
}

// ListMemberships implements store.CircleStore.ListMemberships
func (s *CircleStore) ListMemberships(ctx context.Context, circleID uuid.UUID, activeOnly bool) ([]*domain.CircleMembership, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, circle_id, founder_id, role, active, joined_at, left_at
		FROM circle_members
		WHERE circle_id = $1
	`
	if activeOnly {
		query += " AND active"
	}
	query += " ORDER BY joined_at"

	rows, err := s.db.QueryContext(ctx, query, circleID)
	if err != nil {
		log.Error("failed to list circle memberships",
			slog.String("error", err.Error()),
			slog.String("circle_id", circleID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var memberships []*domain.CircleMembership
	for rows.Next() {
		var m domain.CircleMembership
		err := rows.Scan(&m.ID, &m.CircleID, &m.FounderID, &m.Role, &m.Active, &m.JoinedAt, &m.LeftAt)
		if err != nil {
			return nil, MapError(err)
		}
		memberships = append(memberships, &m)
	}
	return memberships, rows.Err()
}

// DeactivateMember implements store.CircleStore.DeactivateMember
func (s *CircleStore) DeactivateMember(ctx context.Context, circleID, founderID uuid.UUID, at time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE circle_members
		SET active = FALSE, left_at = $3
		WHERE circle_id = $1 AND founder_id = $2 AND active
	`
	result, err := s.db.ExecContext(ctx, query, circleID, founderID, at)
	if err != nil {
		log.Error("failed to deactivate circle member",
			slog.String("error", err.Error()),
			slog.String("circle_id", circleID.String()),
			slog.String("founder_id", founderID.String()))
		return MapError(err)
	}
	return requireRow(result, store.ErrMembershipNotFound)
}

// DeactivateAllMembers implements store.CircleStore.DeactivateAllMembers
func (s *CircleStore) DeactivateAllMembers(ctx context.Context, circleID uuid.UUID, at time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE circle_members
		SET active = FALSE, left_at = $2
		WHERE circle_id = $1 AND active
	`
	result, err := s.db.ExecContext(ctx, query, circleID, at)
	if err != nil {
		log.Error("failed to deactivate circle members",
			slog.String("error", err.Error()),
			slog.String("circle_id", circleID.String()))
		return 0, MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// OccupiedFounderIDs implements store.CircleStore.OccupiedFounderIDs
func (s *CircleStore) OccupiedFounderIDs(ctx context.Context) (map[uuid.UUID]struct{}, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT DISTINCT m.founder_id
		FROM circle_members m
		JOIN circles c ON c.id = m.circle_id
		WHERE m.active AND c.status IN ($1, $2)
	`
	rows, err := s.db.QueryContext(ctx, query, domain.CircleStatusForming, domain.CircleStatusActive)
	if err != nil {
		log.Error("failed to list occupied founders", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	occupied := make(map[uuid.UUID]struct{})
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		occupied[id] = struct{}{}
	}
	return occupied, rows.Err()
}

// CountJoinedSince implements store.CircleStore.CountJoinedSince
func (s *CircleStore) CountJoinedSince(ctx context.Context, founderID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM circle_members
		WHERE founder_id = $1 AND active AND joined_at >= $2
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, founderID, since).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// WithTx implements store.CircleStore.WithTx
func (s *CircleStore) WithTx(tx *sql.Tx) store.CircleStore {
	return NewCircleStore(tx, s.logger)
}

func scanCircle(row rowScanner) (*domain.Circle, error) {
	var circle domain.Circle
	var metadata []byte

	err := row.Scan(
		&circle.ID,
		&circle.Name,
		&circle.Status,
		&circle.RotationCadenceDays,
		&circle.RotationDate,
		&circle.FormedAt,
		&circle.LastRotationAt,
		&circle.DissolvedAt,
		&circle.DissolutionReason,
		&metadata,
		&circle.CreatedAt,
		&circle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &circle.Metadata); err != nil {
			return nil, err
		}
	}
	return &circle, nil
}
