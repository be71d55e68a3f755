package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"gigbook/internal/domain"
)

type participationRepository struct {
	DB *sql.DB
}

func NewParticipationRepository(db *sql.DB) domain.ParticipationRepository {
	return &participationRepository{
		DB: db,
	}
}

func (r *participationRepository) Create(ctx context.Context, p *domain.Participation) error {
	query := `
		INSERT INTO participations (event_id, profile_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.DB.ExecContext(ctx, query, p.EventID, p.ProfileID, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrDuplicateParticipant
		}
		return err
	}
	return nil
}

func (r *participationRepository) Get(ctx context.Context, eventID, profileID string) (*domain.Participation, error) {
	query := `
		SELECT event_id, profile_id, status, created_at, updated_at
		FROM participations
		WHERE event_id = $1 AND profile_id = $2
	`
	p := &domain.Participation{}
	err := r.DB.QueryRowContext(ctx, query, eventID, profileID).
		Scan(&p.EventID, &p.ProfileID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participationRepository) UpdateStatus(ctx context.Context, eventID, profileID string, status domain.ParticipationStatus) error {
	query := `
		UPDATE participations SET status = $3, updated_at = NOW()
		WHERE event_id = $1 AND profile_id = $2
	`
	result, err := r.DB.ExecContext(ctx, query, eventID, profileID, status)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *participationRepository) ConfirmCreator(ctx context.Context, eventID, profileID string) error {
	query := `
		INSERT INTO participations (event_id, profile_id, status, created_at, updated_at)
		VALUES ($1, $2, 'confirmed', NOW(), NOW())
		ON CONFLICT (event_id, profile_id)
		DO UPDATE SET status = 'confirmed', updated_at = NOW()
	`
	_, err := r.DB.ExecContext(ctx, query, eventID, profileID)
	return err
}

func (r *participationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participation, error) {
	query := `
		SELECT event_id, profile_id, status, created_at, updated_at
		FROM participations
		WHERE event_id = $1
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	parts := make([]*domain.Participation, 0)
	for rows.Next() {
		p := &domain.Participation{}
		if err := rows.Scan(&p.EventID, &p.ProfileID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

func (r *participationRepository) Delete(ctx context.Context, eventID, profileID string) error {
	query := `DELETE FROM participations WHERE event_id = $1 AND profile_id = $2`
	result, err := r.DB.ExecContext(ctx, query, eventID, profileID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *participationRepository) DeleteByEventID(ctx context.Context, eventID string) error {
	query := `DELETE FROM participations WHERE event_id = $1`
	_, err := r.DB.ExecContext(ctx, query, eventID)
	return err
}
