package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigbook/internal/domain"
)

// seedInvited stores an event with a pending participation and invitation
// for the given profile, as the cascade would have left them.
func (f *participationFixture) seedInvited(t *testing.T, profileID string, start, end time.Time, expiresAt time.Time) *domain.Event {
	t.Helper()
	event := &domain.Event{
		Title:            "Gig",
		StartsAt:         start,
		EndsAt:           timePtr(end),
		CreatorProfileID: "creator-1",
		CreatorKind:      domain.ProfileKindProducer,
		Visibility:       domain.VisibilityPublic,
	}
	require.NoError(t, f.events.Create(context.Background(), event))
	now := time.Now()
	require.NoError(t, f.participations.Create(context.Background(), &domain.Participation{
		EventID:   event.ID,
		ProfileID: profileID,
		Status:    domain.ParticipationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	require.NoError(t, f.invitations.Create(context.Background(), &domain.Invitation{
		EventID:          event.ID,
		InviterProfileID: "creator-1",
		InviteeProfileID: profileID,
		Kind:             domain.InvitationKindInvite,
		Status:           domain.InvitationPending,
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}))
	return event
}

func TestAccept_Success(t *testing.T) {
	f := newParticipationFixture()
	event := f.seedInvited(t, "artist-1", hour(10), hour(12), time.Now().Add(domain.InvitationTTL))

	require.NoError(t, f.svc.Accept(context.Background(), event.ID, "artist-1"))

	p, err := f.participations.Get(context.Background(), event.ID, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationConfirmed, p.Status)

	inv, err := f.invitations.GetByEventAndInvitee(context.Background(), event.ID, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationAccepted, inv.Status)

	assert.True(t, f.holds.holds[participationKey(event.ID, "artist-1")])
}

func TestAccept_ConflictLeavesPending(t *testing.T) {
	f := newParticipationFixture()
	event := f.seedInvited(t, "artist-1", hour(10), hour(12), time.Now().Add(domain.InvitationTTL))
	// Confirmed elsewhere since the invitation was issued.
	f.events.addCommitment("artist-1", &domain.Event{ID: "busy", StartsAt: hour(11), EndsAt: timePtr(hour(13))})

	err := f.svc.Accept(context.Background(), event.ID, "artist-1")

	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "busy", conflictErr.Conflicts[0].ID)

	p, getErr := f.participations.Get(context.Background(), event.ID, "artist-1")
	require.NoError(t, getErr)
	assert.Equal(t, domain.ParticipationPending, p.Status, "participation stays pending on conflict")
}

func TestAccept_AlreadyDecided(t *testing.T) {
	for _, status := range []domain.ParticipationStatus{domain.ParticipationConfirmed, domain.ParticipationRejected} {
		t.Run(string(status), func(t *testing.T) {
			f := newParticipationFixture()
			event := f.seedInvited(t, "artist-1", hour(10), hour(12), time.Now().Add(domain.InvitationTTL))
			require.NoError(t, f.participations.UpdateStatus(context.Background(), event.ID, "artist-1", status))

			err := f.svc.Accept(context.Background(), event.ID, "artist-1")
			assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
		})
	}
}

func TestAccept_ExpiredInvitation(t *testing.T) {
	f := newParticipationFixture()
	event := f.seedInvited(t, "artist-1", hour(10), hour(12), time.Now().Add(-time.Hour))

	err := f.svc.Accept(context.Background(), event.ID, "artist-1")
	assert.ErrorIs(t, err, domain.ErrInvitationExpired)

	inv, getErr := f.invitations.GetByEventAndInvitee(context.Background(), event.ID, "artist-1")
	require.NoError(t, getErr)
	assert.Equal(t, domain.InvitationExpired, inv.Status)

	p, getErr := f.participations.Get(context.Background(), event.ID, "artist-1")
	require.NoError(t, getErr)
	assert.Equal(t, domain.ParticipationPending, p.Status)
}

func TestAccept_HoldRaceRollsBack(t *testing.T) {
	f := newParticipationFixture()
	event := f.seedInvited(t, "artist-1", hour(10), hour(12), time.Now().Add(domain.InvitationTTL))
	f.holds.addErr = &domain.ConflictError{Conflicts: []*domain.Event{{ID: "racer"}}}

	err := f.svc.Accept(context.Background(), event.ID, "artist-1")

	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)

	p, getErr := f.participations.Get(context.Background(), event.ID, "artist-1")
	require.NoError(t, getErr)
	assert.Equal(t, domain.ParticipationPending, p.Status, "confirmation rolled back after losing the hold race")

	inv, getErr := f.invitations.GetByEventAndInvitee(context.Background(), event.ID, "artist-1")
	require.NoError(t, getErr)
	assert.Equal(t, domain.InvitationPending, inv.Status)
}

func TestAccept_NoParticipation(t *testing.T) {
	f := newParticipationFixture()
	err := f.svc.Accept(context.Background(), "ev-404", "artist-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReject_Success(t *testing.T) {
	f := newParticipationFixture()
	event := f.seedInvited(t, "artist-1", hour(10), hour(12), time.Now().Add(domain.InvitationTTL))
	reason := "on tour that week"

	require.NoError(t, f.svc.Reject(context.Background(), event.ID, "artist-1", &reason))

	p, err := f.participations.Get(context.Background(), event.ID, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationRejected, p.Status)

	inv, err := f.invitations.GetByEventAndInvitee(context.Background(), event.ID, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationRejected, inv.Status)
	require.NotNil(t, inv.Reason)
	assert.Equal(t, reason, *inv.Reason)
}

func TestReject_AlreadyDecided(t *testing.T) {
	f := newParticipationFixture()
	event := f.seedInvited(t, "artist-1", hour(10), hour(12), time.Now().Add(domain.InvitationTTL))
	require.NoError(t, f.svc.Accept(context.Background(), event.ID, "artist-1"))

	err := f.svc.Reject(context.Background(), event.ID, "artist-1", nil)
	assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
}

func TestReject_WithoutInvitation(t *testing.T) {
	f := newParticipationFixture()
	event := &domain.Event{Title: "Gig", StartsAt: hour(10), CreatorProfileID: "creator-1", CreatorKind: domain.ProfileKindProducer}
	require.NoError(t, f.events.Create(context.Background(), event))
	now := time.Now()
	require.NoError(t, f.participations.Create(context.Background(), &domain.Participation{
		EventID: event.ID, ProfileID: "artist-1", Status: domain.ParticipationPending, CreatedAt: now, UpdatedAt: now,
	}))

	// No invitation row exists; rejection still succeeds.
	require.NoError(t, f.svc.Reject(context.Background(), event.ID, "artist-1", nil))
	p, err := f.participations.Get(context.Background(), event.ID, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationRejected, p.Status)
}

func TestRequestToJoin(t *testing.T) {
	f := newParticipationFixture()
	event := &domain.Event{Title: "Festival", StartsAt: hour(10), EndsAt: timePtr(hour(20)), CreatorProfileID: "producer-1", CreatorKind: domain.ProfileKindProducer}
	require.NoError(t, f.events.Create(context.Background(), event))

	require.NoError(t, f.svc.RequestToJoin(context.Background(), event.ID, "artist-1"))

	p, err := f.participations.Get(context.Background(), event.ID, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ParticipationPending, p.Status)

	inv, err := f.invitations.GetByEventAndInvitee(context.Background(), event.ID, "artist-1")
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationKindRequest, inv.Kind)
	assert.Equal(t, "artist-1", inv.InviterProfileID, "join requests are self-issued")
}

func TestRequestToJoin_Duplicate(t *testing.T) {
	f := newParticipationFixture()
	event := &domain.Event{Title: "Festival", StartsAt: hour(10), CreatorProfileID: "producer-1", CreatorKind: domain.ProfileKindProducer}
	require.NoError(t, f.events.Create(context.Background(), event))

	require.NoError(t, f.svc.RequestToJoin(context.Background(), event.ID, "artist-1"))
	err := f.svc.RequestToJoin(context.Background(), event.ID, "artist-1")
	assert.ErrorIs(t, err, domain.ErrDuplicateParticipant)
}

func TestRequestToJoin_BlocksAndCreator(t *testing.T) {
	f := newParticipationFixture()
	block := &domain.Event{Title: "Busy", StartsAt: hour(10), CreatorProfileID: "artist-1", CreatorKind: domain.ProfileKindArtist, IsBlock: true}
	require.NoError(t, f.events.Create(context.Background(), block))

	err := f.svc.RequestToJoin(context.Background(), block.ID, "artist-2")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	event := &domain.Event{Title: "Gig", StartsAt: hour(10), CreatorProfileID: "producer-1", CreatorKind: domain.ProfileKindProducer}
	require.NoError(t, f.events.Create(context.Background(), event))
	err = f.svc.RequestToJoin(context.Background(), event.ID, "producer-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
