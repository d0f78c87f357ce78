package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/metalmindtech/mfn-api/internal/store"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "nil error stays nil",
			err:      nil,
			sentinel: nil,
		},
		{
			name:     "no rows maps to not found",
			err:      sql.ErrNoRows,
			sentinel: store.ErrNotFound,
		},
		{
			name:     "unique violation maps to duplicate",
			err:      &pgconn.PgError{Code: uniqueViolationCode},
			sentinel: store.ErrDuplicate,
		},
		{
			name:     "foreign key violation maps to invalid entity",
			err:      &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "fk_founder"},
			sentinel: store.ErrInvalidEntity,
		},
		{
			name:     "check violation maps to invalid entity",
			err:      &pgconn.PgError{Code: checkViolationCode},
			sentinel: store.ErrInvalidEntity,
		},
		{
			name:     "unrelated error passes through",
			err:      fmt.Errorf("connection refused"),
			sentinel: nil,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mapped := MapError(tc.err)
			if tc.err == nil {
				if mapped != nil {
					t.Fatalf("MapError(nil) = %v", mapped)
				}
				return
			}
			if tc.sentinel == nil {
				if mapped != tc.err {
					t.Errorf("unmapped error should pass through, got %v", mapped)
				}
				return
			}
			if !errors.Is(mapped, tc.sentinel) {
				t.Errorf("MapError(%v) = %v, want wrapped %v", tc.err, mapped, tc.sentinel)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	if !IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}) {
		t.Error("expected unique violation to be detected")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: foreignKeyViolationCode}) {
		t.Error("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("plain error")) {
		t.Error("plain error is not a unique violation")
	}
}
