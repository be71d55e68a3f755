package domain

import (
	"context"
	"time"
)

// ProfileKind identifies the kind of actor a profile represents.
type ProfileKind string

const (
	ProfileKindArtist         ProfileKind = "artist"
	ProfileKindBand           ProfileKind = "band"
	ProfileKindVenue          ProfileKind = "venue"
	ProfileKindRepresentative ProfileKind = "representative"
	ProfileKindProducer       ProfileKind = "producer"
)

// Valid reports whether k is one of the known profile kinds.
func (k ProfileKind) Valid() bool {
	switch k {
	case ProfileKindArtist, ProfileKindBand, ProfileKindVenue, ProfileKindRepresentative, ProfileKindProducer:
		return true
	}
	return false
}

// Profile represents an actor in the platform directory. The directory is
// owned by an external service; this engine only reads profiles by ID.
// swagger:model Profile
type Profile struct {
	ID           string      `json:"id"`
	Kind         ProfileKind `json:"kind"`
	Name         string      `json:"name"`
	ContactEmail *string     `json:"contact_email,omitempty"`
	Visible      bool        `json:"visible"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ProfileDirectory reads profiles from the external directory.
type ProfileDirectory interface {
	Get(ctx context.Context, id string) (*Profile, error)
}
