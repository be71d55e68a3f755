package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateParticipant is returned when a profile is invited to an event
// it already participates in.
var ErrDuplicateParticipant = errors.New("profile already participates in event")

// ErrAlreadyDecided is returned when accepting or rejecting a participation
// that is no longer pending.
var ErrAlreadyDecided = errors.New("participation already decided")

// ParticipationStatus is the state of a profile's membership in an event.
type ParticipationStatus string

const (
	ParticipationPending   ParticipationStatus = "pending"
	ParticipationConfirmed ParticipationStatus = "confirmed"
	ParticipationRejected  ParticipationStatus = "rejected"
)

// CanTransitionTo reports whether the status may move to target. Confirmed
// and rejected are terminal; rows only leave them through event deletion.
func (s ParticipationStatus) CanTransitionTo(target ParticipationStatus) bool {
	if s != ParticipationPending {
		return false
	}
	return target == ParticipationConfirmed || target == ParticipationRejected
}

// Participation is a profile's membership in an event's calendar hold.
// Exactly one row exists per (event, profile); the creator's row is always
// confirmed.
// swagger:model Participation
type Participation struct {
	EventID   string              `json:"event_id"`
	ProfileID string              `json:"profile_id"`
	Status    ParticipationStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ParticipationRepository defines the interface for participation storage.
type ParticipationRepository interface {
	// Create inserts a new row. A (event, profile) collision yields
	// ErrDuplicateParticipant.
	Create(ctx context.Context, p *Participation) error
	Get(ctx context.Context, eventID, profileID string) (*Participation, error)
	UpdateStatus(ctx context.Context, eventID, profileID string, status ParticipationStatus) error
	// ConfirmCreator upserts the creator's row as confirmed.
	ConfirmCreator(ctx context.Context, eventID, profileID string) error
	ListByEventID(ctx context.Context, eventID string) ([]*Participation, error)
	Delete(ctx context.Context, eventID, profileID string) error
	DeleteByEventID(ctx context.Context, eventID string) error
}

// ParticipationService drives the participation state machine.
type ParticipationService interface {
	Accept(ctx context.Context, eventID, profileID string) error
	Reject(ctx context.Context, eventID, profileID string, reason *string) error
	RequestToJoin(ctx context.Context, eventID, profileID string) error
}
