package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"gigbook/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (event_id, inviter_profile_id, invitee_profile_id, kind, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		inv.EventID, inv.InviterProfileID, inv.InviteeProfileID, inv.Kind, inv.Status,
		inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicateParticipant
		}
		return err
	}
	return nil
}

func (r *invitationRepository) GetByEventAndInvitee(ctx context.Context, eventID, inviteeID string) (*domain.Invitation, error) {
	query := `
		SELECT id, event_id, inviter_profile_id, invitee_profile_id, kind, status, reason, expires_at, created_at, updated_at
		FROM invitations
		WHERE event_id = $1 AND invitee_profile_id = $2
	`
	inv := &domain.Invitation{}
	var reasonNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, eventID, inviteeID).Scan(
		&inv.ID, &inv.EventID, &inv.InviterProfileID, &inv.InviteeProfileID, &inv.Kind, &inv.Status,
		&reasonNull, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if reasonNull.Valid {
		inv.Reason = &reasonNull.String
	}
	return inv, nil
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, eventID, inviteeID string, status domain.InvitationStatus, reason *string) error {
	query := `
		UPDATE invitations SET status = $3, reason = COALESCE($4, reason), updated_at = NOW()
		WHERE event_id = $1 AND invitee_profile_id = $2
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, inviteeID, status, reason)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invitationRepository) DeleteByEventAndInvitee(ctx context.Context, eventID, inviteeID string) error {
	query := `DELETE FROM invitations WHERE event_id = $1 AND invitee_profile_id = $2`
	_, err := r.DB.ExecContext(ctx, query, eventID, inviteeID)
	return err
}

func (r *invitationRepository) DeleteByEventID(ctx context.Context, eventID string) error {
	query := `DELETE FROM invitations WHERE event_id = $1`
	_, err := r.DB.ExecContext(ctx, query, eventID)
	return err
}
