package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gigbook/internal/domain"
)

type profileRepository struct {
	DB *sql.DB
}

// NewProfileRepository returns a read-only view over the externally owned
// profiles table.
func NewProfileRepository(db *sql.DB) domain.ProfileDirectory {
	return &profileRepository{
		DB: db,
	}
}

func (r *profileRepository) Get(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
		SELECT id, kind, name, contact_email, visible, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	p := &domain.Profile{}
	var emailNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Kind, &p.Name, &emailNull, &p.Visible, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if emailNull.Valid {
		p.ContactEmail = &emailNull.String
	}
	return p, nil
}
