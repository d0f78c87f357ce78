package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/metalmindtech/mfn-api/internal/domain"
)

// FounderStore defines the interface for founder profile persistence.
type FounderStore interface {
	// Create saves a new founder profile, including declared skills and needs.
	// Returns ErrEmailExists if the email is already taken.
	// Returns validation errors from the domain profile if data is invalid.
	Create(ctx context.Context, founder *domain.FounderProfile) error

	// GetByID retrieves a founder by their unique ID, with skills and needs
	// loaded. Returns ErrFounderNotFound if the founder does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FounderProfile, error)

	// GetByEmail retrieves a founder by email, with skills and needs loaded.
	// Returns ErrFounderNotFound if the founder does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.FounderProfile, error)

	// ListActive returns every founder with active status, skills and needs
	// loaded, ordered by creation time. The batch jobs iterate this set.
	ListActive(ctx context.Context) ([]*domain.FounderProfile, error)

	// Update modifies an existing founder's profile fields, skills, and needs.
	// Returns ErrFounderNotFound if the founder does not exist.
	// Returns ErrEmailExists if updating to an email that already exists.
	Update(ctx context.Context, founder *domain.FounderProfile) error

	// UpdateTrustScore sets a founder's trust score without touching the rest
	// of the profile. Returns ErrFounderNotFound if the founder does not exist.
	UpdateTrustScore(ctx context.Context, id uuid.UUID, score float64) error

	// TouchActivity records activity at the given time, bumping last_active_at.
	// Returns ErrFounderNotFound if the founder does not exist.
	TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) error

	// WithTx returns a FounderStore bound to the provided transaction, so
	// multiple operations can commit or roll back together.
	WithTx(tx *sql.Tx) FounderStore
}
