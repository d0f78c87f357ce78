package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/metalmindtech/mfn-api/internal/domain"
	"github.com/metalmindtech/mfn-api/internal/platform/logger"
	"github.com/metalmindtech/mfn-api/internal/store"
)

// ActivityStore implements the store.ActivityStore interface using a
// PostgreSQL database as the storage backend. The log is append-only; there
// are no update or delete operations.
type ActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewActivityStore creates a new PostgreSQL implementation of the
// ActivityStore interface. If log is nil, the default logger is used.
func NewActivityStore(db store.DBTX, log *slog.Logger) *ActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ActivityStore{
		db:     db,
		logger: log.With(slog.String("component", "activity_store")),
	}
}

// Ensure ActivityStore implements store.ActivityStore interface
var _ store.ActivityStore = (*ActivityStore)(nil)

// Create implements store.ActivityStore.Create
func (s *ActivityStore) Create(ctx context.Context, activity *domain.Activity) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !activity.Type.IsValid() {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidActivityType)
	}

	query := `
		INSERT INTO activity_log (id, type, circle_id, founder_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		activity.ID,
		activity.Type,
		activity.CircleID,
		activity.FounderID,
		[]byte(activity.Metadata),
		activity.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create activity entry",
			slog.String("error", err.Error()),
			slog.String("activity_id", activity.ID.String()),
			slog.String("type", string(activity.Type)))
		return MapError(err)
	}

	log.Debug("activity entry created",
		slog.String("activity_id", activity.ID.String()),
		slog.String("type", string(activity.Type)))
	return nil
}

// ListForCircle implements store.ActivityStore.ListForCircle
func (s *ActivityStore) ListForCircle(ctx context.Context, circleID uuid.UUID, limit int) ([]*domain.Activity, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, type, circle_id, founder_id, metadata, created_at
		FROM activity_log
		WHERE circle_id = $1
		ORDER BY created_at DESC
	`
	args := []any{circleID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list circle activity",
			slog.String("error", err.Error()),
			slog.String("circle_id", circleID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*domain.Activity
	for rows.Next() {
		var a domain.Activity
		var metadata []byte
		err := rows.Scan(&a.ID, &a.Type, &a.CircleID, &a.FounderID, &metadata, &a.CreatedAt)
		if err != nil {
			return nil, MapError(err)
		}
		a.Metadata = metadata
		entries = append(entries, &a)
	}
	return entries, rows.Err()
}

// CountForFounderSince implements store.ActivityStore.CountForFounderSince
func (s *ActivityStore) CountForFounderSince(ctx context.Context, founderID uuid.UUID, typ domain.ActivityType, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM activity_log
		WHERE founder_id = $1 AND type = $2 AND created_at >= $3
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, founderID, typ, since).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// WithTx implements store.ActivityStore.WithTx
func (s *ActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return NewActivityStore(tx, s.logger)
}
