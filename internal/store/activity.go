package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/metalmindtech/mfn-api/internal/domain"
)

// ActivityStore defines the interface for the append-only activity log.
type ActivityStore interface {
	// Create appends one activity entry.
	Create(ctx context.Context, activity *domain.Activity) error

	// ListForCircle returns the circle's activity entries, newest first,
	// up to limit. A non-positive limit returns everything.
	ListForCircle(ctx context.Context, circleID uuid.UUID, limit int) ([]*domain.Activity, error)

	// CountForFounderSince counts the founder's entries of the given type at
	// or after the given time. Used for trust boosts.
	CountForFounderSince(ctx context.Context, founderID uuid.UUID, typ domain.ActivityType, since time.Time) (int, error)

	// WithTx returns an ActivityStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ActivityStore
}
