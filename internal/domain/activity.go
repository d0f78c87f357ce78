package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Activity validation errors
var (
	ErrInvalidActivityType = errors.New("invalid activity type")
	ErrActivitySubjectNil  = errors.New("activity must reference a circle or a founder")
)

// ActivityType identifies an event in the append-only activity log.
type ActivityType string

const (
	// Circle lifecycle events emitted by the batch jobs.
	ActivityCircleRotated   ActivityType = "circle_rotated"
	ActivityCircleDissolved ActivityType = "circle_dissolved"

	// Founder engagement events counted toward trust boosts.
	ActivityMeetingAttended ActivityType = "meeting_attended"
	ActivityFeedbackGiven   ActivityType = "feedback_given"
)

// IsValid reports whether the activity type is one of the known values.
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityCircleRotated, ActivityCircleDissolved,
		ActivityMeetingAttended, ActivityFeedbackGiven:
		return true
	}
	return false
}

// Activity is one append-only log entry. Circle lifecycle entries carry a
// circle reference, founder engagement entries a founder reference; either
// may carry both.
type Activity struct {
	ID        uuid.UUID       `json:"id"`
	Type      ActivityType    `json:"type"`
	CircleID  *uuid.UUID      `json:"circle_id,omitempty"`
	FounderID *uuid.UUID      `json:"founder_id,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewCircleActivity creates a log entry for a circle lifecycle event. The
// metadata value is marshalled to JSON; a nil value records no metadata.
func NewCircleActivity(typ ActivityType, circleID uuid.UUID, metadata any) (*Activity, error) {
	return newActivity(typ, &circleID, nil, metadata)
}

// NewFounderActivity creates a log entry for a founder engagement event.
func NewFounderActivity(typ ActivityType, founderID uuid.UUID, metadata any) (*Activity, error) {
	return newActivity(typ, nil, &founderID, metadata)
}

func newActivity(typ ActivityType, circleID, founderID *uuid.UUID, metadata any) (*Activity, error) {
	if !typ.IsValid() {
		return nil, ErrInvalidActivityType
	}
	if circleID == nil && founderID == nil {
		return nil, ErrActivitySubjectNil
	}
	a := &Activity{
		ID:        uuid.New(),
		Type:      typ,
		CircleID:  circleID,
		FounderID: founderID,
		CreatedAt: time.Now().UTC(),
	}
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, err
		}
		a.Metadata = raw
	}
	return a, nil
}
