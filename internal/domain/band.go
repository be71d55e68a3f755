package domain

import "context"

// BandRoster reads band membership from the external roster. Only active
// members are returned; inactive members never receive cascade invitations.
type BandRoster interface {
	ActiveMembers(ctx context.Context, bandID string) ([]string, error)
}
