package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gigbook/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID        map[string]*domain.Event
	commitments map[string][]*domain.Event // profileID -> confirmed commitments
	nextID      int
	createErr   error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:        make(map[string]*domain.Event),
		commitments: make(map[string][]*domain.Event),
		nextID:      1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = upd.Description
	}
	if upd.StartsAt != nil {
		e.StartsAt = *upd.StartsAt
	}
	if upd.EndsAt != nil {
		e.EndsAt = upd.EndsAt
	}
	if upd.VenueProfileID != nil {
		e.VenueProfileID = upd.VenueProfileID
	}
	if upd.CustomVenueName != nil {
		e.CustomVenueName = upd.CustomVenueName
	}
	if upd.Category != nil {
		e.Category = upd.Category
	}
	if upd.Visibility != nil {
		e.Visibility = *upd.Visibility
	}
	e.UpdatedAt = time.Now()
	return e, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) ListForProfile(ctx context.Context, profileID string, status *domain.ParticipationStatus) ([]*domain.Event, error) {
	return nil, nil
}

func (f *fakeEventRepo) ListCommitments(ctx context.Context, profileID, excludeEventID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.commitments[profileID] {
		if excludeEventID != "" && e.ID == excludeEventID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// addCommitment registers a confirmed commitment for conflict checks.
func (f *fakeEventRepo) addCommitment(profileID string, e *domain.Event) {
	f.commitments[profileID] = append(f.commitments[profileID], e)
}

func participationKey(eventID, profileID string) string {
	return eventID + "/" + profileID
}

// fakeParticipationRepo is an in-memory ParticipationRepository for tests.
type fakeParticipationRepo struct {
	rows      map[string]*domain.Participation
	createErr map[string]error // profileID -> error injected on Create
}

func newFakeParticipationRepo() *fakeParticipationRepo {
	return &fakeParticipationRepo{
		rows:      make(map[string]*domain.Participation),
		createErr: make(map[string]error),
	}
}

func (f *fakeParticipationRepo) Create(ctx context.Context, p *domain.Participation) error {
	if err := f.createErr[p.ProfileID]; err != nil {
		return err
	}
	key := participationKey(p.EventID, p.ProfileID)
	if _, ok := f.rows[key]; ok {
		return domain.ErrDuplicateParticipant
	}
	cp := *p
	f.rows[key] = &cp
	return nil
}

func (f *fakeParticipationRepo) Get(ctx context.Context, eventID, profileID string) (*domain.Participation, error) {
	if p, ok := f.rows[participationKey(eventID, profileID)]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeParticipationRepo) UpdateStatus(ctx context.Context, eventID, profileID string, status domain.ParticipationStatus) error {
	p, ok := f.rows[participationKey(eventID, profileID)]
	if !ok {
		return domain.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakeParticipationRepo) ConfirmCreator(ctx context.Context, eventID, profileID string) error {
	key := participationKey(eventID, profileID)
	if p, ok := f.rows[key]; ok {
		p.Status = domain.ParticipationConfirmed
		return nil
	}
	now := time.Now()
	f.rows[key] = &domain.Participation{
		EventID:   eventID,
		ProfileID: profileID,
		Status:    domain.ParticipationConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (f *fakeParticipationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participation, error) {
	var out []*domain.Participation
	for _, p := range f.rows {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipationRepo) Delete(ctx context.Context, eventID, profileID string) error {
	key := participationKey(eventID, profileID)
	if _, ok := f.rows[key]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, key)
	return nil
}

func (f *fakeParticipationRepo) DeleteByEventID(ctx context.Context, eventID string) error {
	for key, p := range f.rows {
		if p.EventID == eventID {
			delete(f.rows, key)
		}
	}
	return nil
}

// fakeInvitationRepo is an in-memory InvitationRepository for tests.
type fakeInvitationRepo struct {
	rows   map[string]*domain.Invitation
	nextID int
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{
		rows:   make(map[string]*domain.Invitation),
		nextID: 1,
	}
}

func (f *fakeInvitationRepo) Create(ctx context.Context, inv *domain.Invitation) error {
	key := participationKey(inv.EventID, inv.InviteeProfileID)
	if _, ok := f.rows[key]; ok {
		return domain.ErrDuplicateParticipant
	}
	inv.ID = fmt.Sprintf("inv-%d", f.nextID)
	f.nextID++
	cp := *inv
	f.rows[key] = &cp
	return nil
}

func (f *fakeInvitationRepo) GetByEventAndInvitee(ctx context.Context, eventID, inviteeID string) (*domain.Invitation, error) {
	if inv, ok := f.rows[participationKey(eventID, inviteeID)]; ok {
		return inv, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeInvitationRepo) UpdateStatus(ctx context.Context, eventID, inviteeID string, status domain.InvitationStatus, reason *string) error {
	inv, ok := f.rows[participationKey(eventID, inviteeID)]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	if reason != nil {
		inv.Reason = reason
	}
	inv.UpdatedAt = time.Now()
	return nil
}

func (f *fakeInvitationRepo) DeleteByEventAndInvitee(ctx context.Context, eventID, inviteeID string) error {
	delete(f.rows, participationKey(eventID, inviteeID))
	return nil
}

func (f *fakeInvitationRepo) DeleteByEventID(ctx context.Context, eventID string) error {
	for key, inv := range f.rows {
		if inv.EventID == eventID {
			delete(f.rows, key)
		}
	}
	return nil
}

// fakeHoldRepo records calendar hold calls and can inject failures.
type fakeHoldRepo struct {
	holds         map[string]bool // eventID/profileID
	addErr        error
	updateSlotErr error
}

func newFakeHoldRepo() *fakeHoldRepo {
	return &fakeHoldRepo{holds: make(map[string]bool)}
}

func (f *fakeHoldRepo) Add(ctx context.Context, eventID, profileID string, start, end time.Time) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.holds[participationKey(eventID, profileID)] = true
	return nil
}

func (f *fakeHoldRepo) UpdateSlot(ctx context.Context, eventID string, start, end time.Time) error {
	return f.updateSlotErr
}

func (f *fakeHoldRepo) Remove(ctx context.Context, eventID, profileID string) error {
	delete(f.holds, participationKey(eventID, profileID))
	return nil
}

// fakeRoster serves band member lists.
type fakeRoster struct {
	members map[string][]string
	err     error
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{members: make(map[string][]string)}
}

func (f *fakeRoster) ActiveMembers(ctx context.Context, bandID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.members[bandID], nil
}

// fakeDirectory serves profiles.
type fakeDirectory struct {
	profiles map[string]*domain.Profile
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{profiles: make(map[string]*domain.Profile)}
}

func (f *fakeDirectory) Get(ctx context.Context, id string) (*domain.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

// fakeEmailService records invitation notices.
type fakeEmailService struct {
	sent []*domain.InvitationEmailData
	err  error
}

func (f *fakeEmailService) SendInvitationNotice(ctx context.Context, data *domain.InvitationEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

// scheduleFixture bundles the fakes behind a scheduleService under test.
type scheduleFixture struct {
	events         *fakeEventRepo
	participations *fakeParticipationRepo
	invitations    *fakeInvitationRepo
	holds          *fakeHoldRepo
	roster         *fakeRoster
	directory      *fakeDirectory
	email          *fakeEmailService
	svc            domain.EventService
}

func newScheduleFixture() *scheduleFixture {
	f := &scheduleFixture{
		events:         newFakeEventRepo(),
		participations: newFakeParticipationRepo(),
		invitations:    newFakeInvitationRepo(),
		holds:          newFakeHoldRepo(),
		roster:         newFakeRoster(),
		directory:      newFakeDirectory(),
		email:          &fakeEmailService{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewScheduleService(f.events, f.participations, f.invitations, f.holds, f.roster, f.directory, f.email, logger, time.Second)
	return f
}

// participationFixture bundles the fakes behind a participationService under test.
type participationFixture struct {
	events         *fakeEventRepo
	participations *fakeParticipationRepo
	invitations    *fakeInvitationRepo
	holds          *fakeHoldRepo
	svc            domain.ParticipationService
}

func newParticipationFixture() *participationFixture {
	f := &participationFixture{
		events:         newFakeEventRepo(),
		participations: newFakeParticipationRepo(),
		invitations:    newFakeInvitationRepo(),
		holds:          newFakeHoldRepo(),
	}
	f.svc = NewParticipationService(f.events, f.participations, f.invitations, f.holds, time.Second)
	return f
}
