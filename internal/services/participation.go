package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gigbook/internal/domain"
)

type participationService struct {
	eventRepo         domain.EventRepository
	participationRepo domain.ParticipationRepository
	invitationRepo    domain.InvitationRepository
	holdRepo          domain.CalendarHoldRepository
	contextTimeout    time.Duration
}

func NewParticipationService(eventRepo domain.EventRepository,
	participationRepo domain.ParticipationRepository,
	invitationRepo domain.InvitationRepository,
	holdRepo domain.CalendarHoldRepository,
	timeout time.Duration,
) domain.ParticipationService {
	return &participationService{
		eventRepo:         eventRepo,
		participationRepo: participationRepo,
		invitationRepo:    invitationRepo,
		holdRepo:          holdRepo,
		contextTimeout:    timeout,
	}
}

// Accept confirms a pending participation. The conflict check runs again
// here: the profile may have confirmed other events since the invitation
// was issued. On conflict the participation stays pending.
func (s *participationService) Accept(ctx context.Context, eventID, profileID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.participationRepo.Get(ctx, eventID, profileID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get participation: %w", err)
	}
	if !p.Status.CanTransitionTo(domain.ParticipationConfirmed) {
		return domain.ErrAlreadyDecided
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	inv, err := s.invitationRepo.GetByEventAndInvitee(ctx, eventID, profileID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get invitation: %w", err)
	}
	if inv != nil && inv.Status == domain.InvitationPending && time.Now().After(inv.ExpiresAt) {
		if err := s.invitationRepo.UpdateStatus(ctx, eventID, profileID, domain.InvitationExpired, nil); err != nil {
			return fmt.Errorf("expire invitation: %w", err)
		}
		return domain.ErrInvitationExpired
	}

	conflicts, err := findConflicts(ctx, s.eventRepo, profileID, event.StartsAt, event.EffectiveEnd(), eventID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &domain.ConflictError{Conflicts: conflicts}
	}

	if err := s.participationRepo.UpdateStatus(ctx, eventID, profileID, domain.ParticipationConfirmed); err != nil {
		return fmt.Errorf("confirm participation: %w", err)
	}
	if inv != nil {
		if err := s.invitationRepo.UpdateStatus(ctx, eventID, profileID, domain.InvitationAccepted, nil); err != nil {
			return fmt.Errorf("accept invitation: %w", err)
		}
	}
	if err := s.holdRepo.Add(ctx, eventID, profileID, event.StartsAt, event.EffectiveEnd()); err != nil {
		var conflictErr *domain.ConflictError
		if errors.As(err, &conflictErr) {
			// Lost the race against a concurrent acceptance; roll the row back.
			_ = s.participationRepo.UpdateStatus(ctx, eventID, profileID, domain.ParticipationPending)
			if inv != nil {
				_ = s.invitationRepo.UpdateStatus(ctx, eventID, profileID, domain.InvitationPending, nil)
			}
			return err
		}
		return fmt.Errorf("add calendar hold: %w", err)
	}
	return nil
}

// Reject declines a pending participation. No conflict check is needed:
// rejection never creates a calendar hold.
func (s *participationService) Reject(ctx context.Context, eventID, profileID string, reason *string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.participationRepo.Get(ctx, eventID, profileID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get participation: %w", err)
	}
	if !p.Status.CanTransitionTo(domain.ParticipationRejected) {
		return domain.ErrAlreadyDecided
	}

	if err := s.participationRepo.UpdateStatus(ctx, eventID, profileID, domain.ParticipationRejected); err != nil {
		return fmt.Errorf("reject participation: %w", err)
	}
	if err := s.invitationRepo.UpdateStatus(ctx, eventID, profileID, domain.InvitationRejected, reason); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("reject invitation: %w", err)
	}
	return nil
}

// RequestToJoin creates an invitee-initiated pending participation with a
// request-kind invitation. Acceptance follows the same path as a creator
// invitation.
func (s *participationService) RequestToJoin(ctx context.Context, eventID, profileID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.IsBlock {
		return fmt.Errorf("%w: blocks accept no participants", domain.ErrInvalidInput)
	}
	if event.CreatorProfileID == profileID {
		return fmt.Errorf("%w: creator already participates", domain.ErrInvalidInput)
	}

	now := time.Now()
	p := &domain.Participation{
		EventID:   eventID,
		ProfileID: profileID,
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
		EventID:          eventID,
		InviterProfileID: profileID,
		InviteeProfileID: profileID,
		Kind:             domain.InvitationKindRequest,
		Status:           domain.InvitationPending,
		ExpiresAt:        now.Add(domain.InvitationTTL),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return fmt.Errorf("create join request: %w", err)
	}
	return nil
}
