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

// MatchStore implements the store.MatchStore interface using a PostgreSQL
// database as the storage backend. The unordered-pair uniqueness invariant is
// enforced by a unique index on (LEAST(founder_a_id, founder_b_id),
// GREATEST(founder_a_id, founder_b_id)).
type MatchStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewMatchStore creates a new PostgreSQL implementation of the MatchStore
// interface. If log is nil, the default logger is used.
func NewMatchStore(db store.DBTX, log *slog.Logger) *MatchStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &MatchStore{
		db:     db,
		logger: log.With(slog.String("component", "match_store")),
	}
}

// Ensure MatchStore implements store.MatchStore interface
var _ store.MatchStore = (*MatchStore)(nil)

const matchColumns = `id, founder_a_id, founder_b_id, score, breakdown, reasons,
	status, suggested_at, responded_at`

// Create implements store.MatchStore.Create
func (s *MatchStore) Create(ctx context.Context, match *domain.Match) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := match.Validate(); err != nil {
		log.Warn("match validation failed during create",
			slog.String("error", err.Error()),
			slog.String("match_id", match.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	breakdown, err := json.Marshal(match.Breakdown)
	if err != nil {
		return err
	}
	reasons, err := json.Marshal(match.Reasons)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		match.ID,
		match.FounderAID,
		match.FounderBID,
		match.Score,
		breakdown,
		reasons,
		match.Status,
		match.SuggestedAt,
		match.RespondedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("match pair already exists",
				slog.String("founder_a", match.FounderAID.String()),
				slog.String("founder_b", match.FounderBID.String()))
			return store.ErrMatchExists
		}
		log.Error("failed to create match",
			slog.String("error", err.Error()),
			slog.String("match_id", match.ID.String()))
		return MapError(err)
	}

	log.Info("match created",
		slog.String("match_id", match.ID.String()),
		slog.Int("score", match.Score))
	return nil
}

// GetByID implements store.MatchStore.GetByID
func (s *MatchStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	match, err := scanMatch(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMatchNotFound
		}
		log.Error("failed to get match",
			slog.String("error", err.Error()),
			slog.String("match_id", id.String()))
		return nil, MapError(err)
	}
	return match, nil
}

// ExistsForPair implements store.MatchStore.ExistsForPair
func (s *MatchStore) ExistsForPair(ctx context.Context, a, b uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE (founder_a_id = $1 AND founder_b_id = $2)
			   OR (founder_a_id = $2 AND founder_b_id = $1)
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, a, b).Scan(&exists); err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// ListForFounder implements store.MatchStore.ListForFounder
func (s *MatchStore) ListForFounder(ctx context.Context, founderID uuid.UUID) ([]*domain.Match, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE founder_a_id = $1 OR founder_b_id = $1
		ORDER BY suggested_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, founderID)
	if err != nil {
		log.Error("failed to list matches",
			slog.String("error", err.Error()),
			slog.String("founder_id", founderID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var matches []*domain.Match
	for rows.Next() {
		match, err := scanMatch(rows)
		if err != nil {
			return nil, MapError(err)
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

// CountSuggestedFor implements store.MatchStore.CountSuggestedFor
func (s *MatchStore) CountSuggestedFor(ctx context.Context, founderID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM matches
		WHERE (founder_a_id = $1 OR founder_b_id = $1) AND status = $2
	`
	var count int
	err := s.db.QueryRowContext(ctx, query, founderID, domain.MatchStatusSuggested).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// UpdateStatus implements store.MatchStore.UpdateStatus
func (s *MatchStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MatchStatus, respondedAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.IsValid() {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrInvalidMatchStatus)
	}

	query := `
		UPDATE matches
		SET status = $2, responded_at = $3
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, id, status, respondedAt)
	if err != nil {
		log.Error("failed to update match status",
			slog.String("error", err.Error()),
			slog.String("match_id", id.String()))
		return MapError(err)
	}
	if err := requireRow(result, store.ErrMatchNotFound); err != nil {
		return err
	}

	log.Info("match status updated",
		slog.String("match_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// CountAcceptedSince implements store.MatchStore.CountAcceptedSince
func (s *MatchStore) CountAcceptedSince(ctx context.Context, founderID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM matches
		WHERE (founder_a_id = $1 OR founder_b_id = $1)
		  AND status = $2
		  AND responded_at >= $3
	`
	var count int
	err := s.db.QueryRowContext(ctx, query, founderID, domain.MatchStatusAccepted, since).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// WithTx implements store.MatchStore.WithTx
func (s *MatchStore) WithTx(tx *sql.Tx) store.MatchStore {
	return NewMatchStore(tx, s.logger)
}

func scanMatch(row rowScanner) (*domain.Match, error) {
	var match domain.Match
	var breakdown, reasons []byte

	err := row.Scan(
		&match.ID,
		&match.FounderAID,
		&match.FounderBID,
		&match.Score,
		&breakdown,
		&reasons,
		&match.Status,
		&match.SuggestedAt,
		&match.RespondedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &match.Breakdown); err != nil {
			return nil, err
		}
	}
	if len(reasons) > 0 {
		if err := json.Unmarshal(reasons, &match.Reasons); err != nil {
			return nil, err
		}
	}
	return &match, nil
}
