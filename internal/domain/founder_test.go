package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewFounderProfile(t *testing.T) {
	founder, err := NewFounderProfile("Test@Example.com ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if founder.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if founder.Email != "test@example.com" {
		t.Errorf("Expected normalized email, got %s", founder.Email)
	}
	if founder.Status != FounderStatusPending {
		t.Errorf("Expected pending status, got %s", founder.Status)
	}
	if founder.TrustScore != DefaultTrustScore {
		t.Errorf("Expected trust score %d, got %f", DefaultTrustScore, founder.TrustScore)
	}

	// A fresh profile has no declared stage or archetype and no recorded
	// activity; all three are valid, storable states.
	if founder.ProjectStage != "" || founder.Archetype != "" {
		t.Errorf("Expected empty stage and archetype, got %q/%q", founder.ProjectStage, founder.Archetype)
	}
	if founder.LastActiveAt != nil {
		t.Errorf("Expected nil LastActiveAt, got %v", founder.LastActiveAt)
	}
	if err := founder.Validate(); err != nil {
		t.Errorf("Expected fresh profile to validate, got %v", err)
	}
}

func TestDaysInactiveNeverActive(t *testing.T) {
	founder, err := NewFounderProfile("idle@example.com")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got := founder.DaysInactive(time.Now().UTC()); got != NeverActiveDays {
		t.Errorf("Expected %d days inactive for a never-active founder, got %d", NeverActiveDays, got)
	}
}
