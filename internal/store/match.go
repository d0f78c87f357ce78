package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/metalmindtech/mfn-api/internal/domain"
)

// MatchStore defines the interface for match persistence. A founder pair has
// at most one match regardless of direction; implementations enforce the
// unordered-pair uniqueness.
type MatchStore interface {
	// Create saves a new suggested match.
	// Returns ErrMatchExists if a match for the pair already exists, in
	// either direction.
	Create(ctx context.Context, match *domain.Match) error

	// GetByID retrieves a match by its unique ID.
	// Returns ErrMatchNotFound if the match does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Match, error)

	// ExistsForPair reports whether any match exists between the two
	// founders, in either direction and any status.
	ExistsForPair(ctx context.Context, a, b uuid.UUID) (bool, error)

	// ListForFounder returns every match involving the founder, newest first.
	ListForFounder(ctx context.Context, founderID uuid.UUID) ([]*domain.Match, error)

	// CountSuggestedFor counts the founder's matches still awaiting a
	// response. Match generation stops suggesting once a founder has enough
	// pending matches.
	CountSuggestedFor(ctx context.Context, founderID uuid.UUID) (int, error)

	// UpdateStatus moves a match to accepted or declined and stamps the
	// response time. Returns ErrMatchNotFound if the match does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.MatchStatus, respondedAt time.Time) error

	// CountAcceptedSince counts matches involving the founder that were
	// accepted at or after the given time. Used for trust boosts.
	CountAcceptedSince(ctx context.Context, founderID uuid.UUID, since time.Time) (int, error)

	// WithTx returns a MatchStore bound to the provided transaction.
	WithTx(tx *sql.Tx) MatchStore
}
