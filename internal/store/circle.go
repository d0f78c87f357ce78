package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/metalmindtech/mfn-api/internal/domain"
)

// CircleStore defines the interface for circle and membership persistence.
type CircleStore interface {
	// Create saves a new circle.
	Create(ctx context.Context, circle *domain.Circle) error

	// GetByID retrieves a circle by its unique ID.
	// Returns ErrCircleNotFound if the circle does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Circle, error)

	// ListByStatus returns circles in any of the given statuses, oldest first.
	ListByStatus(ctx context.Context, statuses ...domain.CircleStatus) ([]*domain.Circle, error)

	// Update modifies a circle's mutable fields: status, rotation timestamps,
	// dissolution fields, and metadata.
	// Returns ErrCircleNotFound if the circle does not exist.
	Update(ctx context.Context, circle *domain.Circle) error

	// AddMember saves a membership.
	// Returns ErrMembershipExists if the founder already holds an active
	// membership in the circle.
	AddMember(ctx context.Context, membership *domain.CircleMembership) error

	// ListMemberships returns the circle's memberships. With activeOnly set,
	// deactivated memberships are excluded.
	ListMemberships(ctx context.Context, circleID uuid.UUID, activeOnly bool) ([]*domain.CircleMembership, error)

	// DeactivateMember ends one founder's active membership in the circle,
	// stamping left_at. Returns ErrMembershipNotFound if no active
	// membership exists.
	DeactivateMember(ctx context.Context, circleID, founderID uuid.UUID, at time.Time) error

	// DeactivateAllMembers ends every active membership in the circle and
	// returns how many were closed. Used on dissolution.
	DeactivateAllMembers(ctx context.Context, circleID uuid.UUID, at time.Time) (int, error)

	// OccupiedFounderIDs returns the IDs of founders holding an active
	// membership in any forming or active circle. Formation excludes them.
	OccupiedFounderIDs(ctx context.Context) (map[uuid.UUID]struct{}, error)

	// CountJoinedSince counts circles the founder joined (active membership
	// created) at or after the given time. Used for trust boosts.
	CountJoinedSince(ctx context.Context, founderID uuid.UUID, since time.Time) (int, error)

	// WithTx returns a CircleStore bound to the provided transaction.
	WithTx(tx *sql.Tx) CircleStore
}
