package postgres

import (
	"context"
	"database/sql"

	"gigbook/internal/domain"
)

type bandRosterRepository struct {
	DB *sql.DB
}

// NewBandRosterRepository returns a read-only view over the externally owned
// band_members table.
func NewBandRosterRepository(db *sql.DB) domain.BandRoster {
	return &bandRosterRepository{
		DB: db,
	}
}

func (r *bandRosterRepository) ActiveMembers(ctx context.Context, bandID string) ([]string, error) {
	query := `
		SELECT artist_id
		FROM band_members
		WHERE band_id = $1 AND status = 'active'
		ORDER BY artist_id
	`
	rows, err := r.DB.QueryContext(ctx, query, bandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}
