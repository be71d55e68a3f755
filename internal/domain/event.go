package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across the engine.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Visibility controls who can see an event.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Event represents a scheduled occurrence with a time range and a creator.
// A block is an Event with IsBlock set: it reserves the creator's time and
// has no participants besides the creator.
// swagger:model Event
type Event struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      *string     `json:"description,omitempty"`
	StartsAt         time.Time   `json:"starts_at"`
	EndsAt           *time.Time  `json:"ends_at,omitempty"`
	CreatorProfileID string      `json:"creator_profile_id"`
	CreatorKind      ProfileKind `json:"creator_kind"`
	VenueProfileID   *string     `json:"venue_profile_id,omitempty"`
	CustomVenueName  *string     `json:"custom_venue_name,omitempty"`
	Category         *string     `json:"category,omitempty"`
	IsBlock          bool        `json:"is_block"`
	BlockReason      *string     `json:"block_reason,omitempty"`
	Visibility       Visibility  `json:"visibility"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// EffectiveEnd returns EndsAt, or StartsAt when the event has no end.
// A zero-width range still conflicts with ranges that strictly contain it.
func (e *Event) EffectiveEnd() time.Time {
	if e.EndsAt != nil {
		return *e.EndsAt
	}
	return e.StartsAt
}

// EventUpdate carries the mutable scalar fields of an event. Nil fields are
// left unchanged.
type EventUpdate struct {
	Title           *string     `json:"title"`
	Description     *string     `json:"description"`
	StartsAt        *time.Time  `json:"starts_at"`
	EndsAt          *time.Time  `json:"ends_at"`
	VenueProfileID  *string     `json:"venue_profile_id"`
	CustomVenueName *string     `json:"custom_venue_name"`
	Category        *string     `json:"category"`
	Visibility      *Visibility `json:"visibility"`
}

// Participant is a requested event participant.
// swagger:model Participant
type Participant struct {
	ProfileID string      `json:"profile_id"`
	Kind      ProfileKind `json:"kind"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
	// ListForProfile returns events the profile participates in, optionally
	// filtered by participation status.
	ListForProfile(ctx context.Context, profileID string, status *ParticipationStatus) ([]*Event, error)
	// ListCommitments returns events holding the profile's calendar: events
	// with a confirmed participation, including blocks. excludeEventID may be
	// empty.
	ListCommitments(ctx context.Context, profileID, excludeEventID string) ([]*Event, error)
}

// EventService is the scheduling orchestrator consumed by the delivery layer.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event, participants []Participant) (*Event, []CascadeResult, error)
	GetEvent(ctx context.Context, eventID string) (*Event, []*Participation, error)
	UpdateEvent(ctx context.Context, eventID, requesterID string, upd EventUpdate, participants []Participant) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, requesterID string) error
	BlockRange(ctx context.Context, creatorID string, creatorKind ProfileKind, title, reason string, start time.Time, end *time.Time) (*Event, error)
	Unblock(ctx context.Context, eventID string) error
	ListEventsForProfile(ctx context.Context, profileID string, status *ParticipationStatus) ([]*Event, error)
	FindConflicts(ctx context.Context, profileID string, start, end time.Time, excludeEventID string) ([]*Event, error)
}
