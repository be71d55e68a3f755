package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gigbook/internal/domain"
)

type scheduleService struct {
	eventRepo         domain.EventRepository
	participationRepo domain.ParticipationRepository
	invitationRepo    domain.InvitationRepository
	holdRepo          domain.CalendarHoldRepository
	roster            domain.BandRoster
	directory         domain.ProfileDirectory
	emailService      domain.EmailService
	logger            *slog.Logger
	contextTimeout    time.Duration
}

func NewScheduleService(eventRepo domain.EventRepository,
	participationRepo domain.ParticipationRepository,
	invitationRepo domain.InvitationRepository,
	holdRepo domain.CalendarHoldRepository,
	roster domain.BandRoster,
	directory domain.ProfileDirectory,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &scheduleService{
		eventRepo:         eventRepo,
		participationRepo: participationRepo,
		invitationRepo:    invitationRepo,
		holdRepo:          holdRepo,
		roster:            roster,
		directory:         directory,
		emailService:      emailService,
		logger:            logger,
		contextTimeout:    timeout,
	}
}

// findConflicts loads the profile's confirmed commitments and keeps those
// overlapping [start, end). Pending participations never block scheduling.
func findConflicts(ctx context.Context, repo domain.EventRepository, profileID string, start, end time.Time, excludeEventID string) ([]*domain.Event, error) {
	commitments, err := repo.ListCommitments(ctx, profileID, excludeEventID)
	if err != nil {
		return nil, fmt.Errorf("list commitments: %w", err)
	}
	conflicts := make([]*domain.Event, 0)
	for _, e := range commitments {
		if domain.Overlaps(start, end, e.StartsAt, e.EffectiveEnd()) {
			conflicts = append(conflicts, e)
		}
	}
	return conflicts, nil
}

func validateNewEvent(e *domain.Event) error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if e.StartsAt.IsZero() {
		return fmt.Errorf("%w: starts_at is required", domain.ErrInvalidInput)
	}
	if e.EndsAt != nil && !e.EndsAt.After(e.StartsAt) {
		return fmt.Errorf("%w: ends_at must be after starts_at", domain.ErrInvalidInput)
	}
	if e.CreatorProfileID == "" {
		return fmt.Errorf("%w: creator profile is required", domain.ErrInvalidInput)
	}
	if !e.CreatorKind.Valid() {
		return fmt.Errorf("%w: unknown creator kind %q", domain.ErrInvalidInput, e.CreatorKind)
	}
	return nil
}

func (s *scheduleService) FindConflicts(ctx context.Context, profileID string, start, end time.Time, excludeEventID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if end.Before(start) {
		return nil, fmt.Errorf("%w: end before start", domain.ErrInvalidInput)
	}
	return findConflicts(ctx, s.eventRepo, profileID, start, end, excludeEventID)
}

func (s *scheduleService) CreateEvent(ctx context.Context, event *domain.Event, participants []domain.Participant) (*domain.Event, []domain.CascadeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateNewEvent(event); err != nil {
		return nil, nil, err
	}

	start, end := event.StartsAt, event.EffectiveEnd()
	conflicts, err := findConflicts(ctx, s.eventRepo, event.CreatorProfileID, start, end, "")
	if err != nil {
		return nil, nil, err
	}
	if len(conflicts) > 0 {
		return nil, nil, &domain.ConflictError{Conflicts: conflicts}
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.Visibility == "" {
		event.Visibility = domain.VisibilityPublic
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("create event: %w", err)
	}
	if err := s.participationRepo.ConfirmCreator(ctx, event.ID, event.CreatorProfileID); err != nil {
		return nil, nil, fmt.Errorf("confirm creator participation: %w", err)
	}
	if err := s.holdRepo.Add(ctx, event.ID, event.CreatorProfileID, start, end); err != nil {
		var conflictErr *domain.ConflictError
		if errors.As(err, &conflictErr) {
			// Lost the check-then-act race against a concurrent booking.
			_ = s.eventRepo.Delete(ctx, event.ID)
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("add calendar hold: %w", err)
	}

	var results []domain.CascadeResult
	if event.CreatorKind == domain.ProfileKindBand {
		// The creator band's own members become pending participants even
		// though the band itself is confirmed.
		memberResults, err := s.cascadeMembers(ctx, event, event.CreatorProfileID, event.CreatorProfileID)
		results = append(results, memberResults...)
		if err != nil && !isCascadeError(err) {
			results = append(results, domain.CascadeResult{
				ProfileID: event.CreatorProfileID,
				Invited:   true,
				Error:     fmt.Sprintf("members not invited: %v", err),
			})
		}
	}
	for _, p := range participants {
		results = append(results, s.invite(ctx, event, p)...)
	}

	s.notifyInvitees(ctx, event, results)
	return event, results, nil
}

// invite runs the invitation cascade for one requested participant: a
// pending participation and invitation for the invitee, and, for a band,
// one level of fan-out to its active members.
func (s *scheduleService) invite(ctx context.Context, event *domain.Event, p domain.Participant) []domain.CascadeResult {
	if p.ProfileID == "" || p.ProfileID == event.CreatorProfileID {
		return nil
	}
	results := []domain.CascadeResult{cascadeResult(p.ProfileID, s.createPendingInvitation(ctx, event, event.CreatorProfileID, p.ProfileID, domain.InvitationKindInvite))}
	if results[0].Error != "" || p.Kind != domain.ProfileKindBand {
		return results
	}
	memberResults, err := s.cascadeMembers(ctx, event, event.CreatorProfileID, p.ProfileID)
	results = append(results, memberResults...)
	if err != nil && !isCascadeError(err) {
		// Roster unavailable: the band stays invited, members do not.
		results[0].Error = fmt.Sprintf("members not invited: %v", err)
	}
	return results
}

// cascadeMembers invites every active member of the band except the event
// creator. Members are treated as artists; the fan-out never recurses.
// Partial failures are reported, not rolled back.
func (s *scheduleService) cascadeMembers(ctx context.Context, event *domain.Event, inviterID, bandID string) ([]domain.CascadeResult, error) {
	members, err := s.roster.ActiveMembers(ctx, bandID)
	if err != nil {
		return nil, fmt.Errorf("band roster: %w", err)
	}
	var results []domain.CascadeResult
	cascadeErr := &domain.CascadeError{}
	for _, memberID := range members {
		if memberID == event.CreatorProfileID {
			continue
		}
		err := s.createPendingInvitation(ctx, event, inviterID, memberID, domain.InvitationKindInvite)
		results = append(results, cascadeResult(memberID, err))
		if err != nil {
			cascadeErr.Failed = append(cascadeErr.Failed, memberID)
		} else {
			cascadeErr.Succeeded = append(cascadeErr.Succeeded, memberID)
		}
	}
	if len(cascadeErr.Failed) > 0 {
		return results, cascadeErr
	}
	return results, nil
}

func (s *scheduleService) createPendingInvitation(ctx context.Context, event *domain.Event, inviterID, inviteeID string, kind domain.InvitationKind) error {
	now := time.Now()
	p := &domain.Participation{
		EventID:   event.ID,
		ProfileID: inviteeID,
		Status:    domain.ParticipationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.participationRepo.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrDuplicateParticipant) {
			return domain.ErrDuplicateParticipant
		}
		return fmt.Errorf("create participation: %w", err)
	}
	inv := &domain.Invitation{
		EventID:          event.ID,
		InviterProfileID: inviterID,
		InviteeProfileID: inviteeID,
		Kind:             kind,
		Status:           domain.InvitationPending,
		ExpiresAt:        now.Add(domain.InvitationTTL),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func cascadeResult(profileID string, err error) domain.CascadeResult {
	r := domain.CascadeResult{ProfileID: profileID, Invited: err == nil}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

func isCascadeError(err error) bool {
	var cascadeErr *domain.CascadeError
	return errors.As(err, &cascadeErr)
}

// collectCascadeError folds failed results into a CascadeError, or nil when
// everything succeeded.
func collectCascadeError(results []domain.CascadeResult) error {
	cascadeErr := &domain.CascadeError{}
	for _, r := range results {
		if r.Error != "" {
			cascadeErr.Failed = append(cascadeErr.Failed, r.ProfileID)
		} else {
			cascadeErr.Succeeded = append(cascadeErr.Succeeded, r.ProfileID)
		}
	}
	if len(cascadeErr.Failed) > 0 {
		return cascadeErr
	}
	return nil
}

// notifyInvitees sends best-effort invitation emails for successful cascade
// entries. Failures are logged and never affect the scheduling outcome.
func (s *scheduleService) notifyInvitees(ctx context.Context, event *domain.Event, results []domain.CascadeResult) {
	if s.emailService == nil {
		return
	}
	inviterName := event.CreatorProfileID
	if inviter, err := s.directory.Get(ctx, event.CreatorProfileID); err == nil && inviter.Name != "" {
		inviterName = inviter.Name
	}
	for _, r := range results {
		if !r.Invited || r.Error != "" {
			continue
		}
		profile, err := s.directory.Get(ctx, r.ProfileID)
		if err != nil || profile.ContactEmail == nil || *profile.ContactEmail == "" {
			continue
		}
		data := &domain.InvitationEmailData{
			Email:       *profile.ContactEmail,
			InviteeName: profile.Name,
			InviterName: inviterName,
			EventTitle:  event.Title,
			StartsAt:    event.StartsAt.Format(time.RFC1123),
			ExpiresAt:   time.Now().Add(domain.InvitationTTL).Format(time.RFC1123),
		}
		if err := s.emailService.SendInvitationNotice(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "invitation email failed", "event_id", event.ID, "profile_id", r.ProfileID, "err", err)
		}
	}
}

func (s *scheduleService) GetEvent(ctx context.Context, eventID string) (*domain.Event, []*domain.Participation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	participations, err := s.participationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("list participations: %w", err)
	}
	if participations == nil {
		participations = []*domain.Participation{}
	}
	return event, participations, nil
}

func (s *scheduleService) UpdateEvent(ctx context.Context, eventID, requesterID string, upd domain.EventUpdate, participants []domain.Participant) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorProfileID != requesterID {
		return nil, domain.ErrForbidden
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	newStart := event.StartsAt
	if upd.StartsAt != nil {
		newStart = *upd.StartsAt
	}
	newEnd := event.EndsAt
	if upd.EndsAt != nil {
		newEnd = upd.EndsAt
	}
	if newEnd != nil && !newEnd.After(newStart) {
		return nil, fmt.Errorf("%w: ends_at must be after starts_at", domain.ErrInvalidInput)
	}
	newEffEnd := newStart
	if newEnd != nil {
		newEffEnd = *newEnd
	}

	// Only re-check conflicts when the slot actually moved; checking the
	// unchanged slot would collide with this event's own prior hold.
	timesChanged := !newStart.Equal(event.StartsAt) || !timePtrEqual(newEnd, event.EndsAt)
	if timesChanged {
		conflicts, err := findConflicts(ctx, s.eventRepo, event.CreatorProfileID, newStart, newEffEnd, eventID)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, &domain.ConflictError{Conflicts: conflicts}
		}
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	if timesChanged {
		if err := s.holdRepo.UpdateSlot(ctx, eventID, newStart, newEffEnd); err != nil {
			var conflictErr *domain.ConflictError
			if errors.As(err, &conflictErr) {
				return nil, err
			}
			return nil, fmt.Errorf("update calendar hold: %w", err)
		}
	}

	actual, err := s.participationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	desired := make(map[string]domain.Participant, len(participants)+1)
	for _, p := range participants {
		if p.ProfileID != "" {
			desired[p.ProfileID] = p
		}
	}
	// The creator is never removable via the diff.
	desired[event.CreatorProfileID] = domain.Participant{ProfileID: event.CreatorProfileID, Kind: event.CreatorKind}

	present := make(map[string]bool, len(actual))
	for _, a := range actual {
		present[a.ProfileID] = true
		if _, keep := desired[a.ProfileID]; keep {
			// Existing participants keep their status; an update never
			// resets confirmed or rejected rows.
			continue
		}
		if err := s.invitationRepo.DeleteByEventAndInvitee(ctx, eventID, a.ProfileID); err != nil {
			return nil, fmt.Errorf("delete invitation: %w", err)
		}
		if err := s.participationRepo.Delete(ctx, eventID, a.ProfileID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("delete participation: %w", err)
		}
		if err := s.holdRepo.Remove(ctx, eventID, a.ProfileID); err != nil {
			return nil, fmt.Errorf("remove calendar hold: %w", err)
		}
	}

	var results []domain.CascadeResult
	for profileID, p := range desired {
		if profileID == event.CreatorProfileID || present[profileID] {
			continue
		}
		results = append(results, s.invite(ctx, updated, p)...)
	}
	if err := s.participationRepo.ConfirmCreator(ctx, eventID, event.CreatorProfileID); err != nil {
		return nil, fmt.Errorf("confirm creator participation: %w", err)
	}

	s.notifyInvitees(ctx, updated, results)
	if err := collectCascadeError(results); err != nil {
		// The update stands; callers may retry only the failed invitees.
		return updated, err
	}
	return updated, nil
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (s *scheduleService) DeleteEvent(ctx context.Context, eventID, requesterID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatorProfileID != requesterID {
		return domain.ErrForbidden
	}
	return s.deleteCascade(ctx, eventID)
}

// deleteCascade removes invitations, participations, and finally the event.
// The order satisfies referential integrity; logically it is one cascade.
func (s *scheduleService) deleteCascade(ctx context.Context, eventID string) error {
	if err := s.invitationRepo.DeleteByEventID(ctx, eventID); err != nil {
		return fmt.Errorf("delete invitations: %w", err)
	}
	if err := s.participationRepo.DeleteByEventID(ctx, eventID); err != nil {
		return fmt.Errorf("delete participations: %w", err)
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *scheduleService) BlockRange(ctx context.Context, creatorID string, creatorKind domain.ProfileKind, title, reason string, start time.Time, end *time.Time) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event := &domain.Event{
		Title:            title,
		StartsAt:         start,
		EndsAt:           end,
		CreatorProfileID: creatorID,
		CreatorKind:      creatorKind,
		IsBlock:          true,
		Visibility:       domain.VisibilityPrivate,
	}
	if reason != "" {
		event.BlockReason = &reason
	}
	if err := validateNewEvent(event); err != nil {
		return nil, err
	}

	// A block conflicts with existing commitments exactly like a booking.
	effEnd := event.EffectiveEnd()
	conflicts, err := findConflicts(ctx, s.eventRepo, creatorID, start, effEnd, "")
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &domain.ConflictError{Conflicts: conflicts}
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	if err := s.participationRepo.ConfirmCreator(ctx, event.ID, creatorID); err != nil {
		return nil, fmt.Errorf("confirm creator participation: %w", err)
	}
	if err := s.holdRepo.Add(ctx, event.ID, creatorID, start, effEnd); err != nil {
		var conflictErr *domain.ConflictError
		if errors.As(err, &conflictErr) {
			_ = s.eventRepo.Delete(ctx, event.ID)
			return nil, err
		}
		return nil, fmt.Errorf("add calendar hold: %w", err)
	}
	return event, nil
}

func (s *scheduleService) Unblock(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if !event.IsBlock {
		return fmt.Errorf("%w: event is not a block", domain.ErrInvalidInput)
	}
	return s.deleteCascade(ctx, eventID)
}

func (s *scheduleService) ListEventsForProfile(ctx context.Context, profileID string, status *domain.ParticipationStatus) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListForProfile(ctx, profileID, status)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}
