package domain

import (
	"context"
	"errors"
	"time"
)

// ErrInvitationExpired is returned when accepting an invitation past its
// expiry; the invitation is marked expired and the participation stays
// pending.
var ErrInvitationExpired = errors.New("invitation expired")

// InvitationTTL is how long an invitation stays acceptable after creation.
const InvitationTTL = 7 * 24 * time.Hour

// InvitationKind distinguishes creator-issued invitations from
// invitee-initiated join requests.
type InvitationKind string

const (
	InvitationKindInvite  InvitationKind = "invitation"
	InvitationKindRequest InvitationKind = "request"
)

// InvitationStatus tracks whether the invitee has agreed to join. It is
// kept aligned with the matching participation: accepted pairs with
// confirmed, rejected with rejected.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation is the request artifact for a non-creator participation.
// swagger:model Invitation
type Invitation struct {
	ID               string           `json:"id"`
	EventID          string           `json:"event_id"`
	InviterProfileID string           `json:"inviter_profile_id"`
	InviteeProfileID string           `json:"invitee_profile_id"`
	Kind             InvitationKind   `json:"kind"`
	Status           InvitationStatus `json:"status"`
	Reason           *string          `json:"reason,omitempty"`
	ExpiresAt        time.Time        `json:"expires_at"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// InvitationRepository defines the interface for invitation storage.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByEventAndInvitee(ctx context.Context, eventID, inviteeID string) (*Invitation, error)
	UpdateStatus(ctx context.Context, eventID, inviteeID string, status InvitationStatus, reason *string) error
	DeleteByEventAndInvitee(ctx context.Context, eventID, inviteeID string) error
	DeleteByEventID(ctx context.Context, eventID string) error
}
