package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gigbook/internal/domain"
)

const eventColumns = `id, title, description, starts_at, ends_at, creator_profile_id, creator_kind,
		venue_profile_id, custom_venue_name, category, is_block, block_reason, visibility, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, venueNull, customVenueNull, categoryNull, blockReasonNull sql.NullString
	var endsNull sql.NullTime
	err := row.Scan(
		&e.ID, &e.Title, &descNull, &e.StartsAt, &endsNull, &e.CreatorProfileID, &e.CreatorKind,
		&venueNull, &customVenueNull, &categoryNull, &e.IsBlock, &blockReasonNull, &e.Visibility,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	if endsNull.Valid {
		e.EndsAt = &endsNull.Time
	}
	if venueNull.Valid {
		e.VenueProfileID = &venueNull.String
	}
	if customVenueNull.Valid {
		e.CustomVenueName = &customVenueNull.String
	}
	if categoryNull.Valid {
		e.Category = &categoryNull.String
	}
	if blockReasonNull.Valid {
		e.BlockReason = &blockReasonNull.String
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, starts_at, ends_at, creator_profile_id, creator_kind,
			venue_profile_id, custom_venue_name, category, is_block, block_reason, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.StartsAt, e.EndsAt, e.CreatorProfileID, e.CreatorKind,
		e.VenueProfileID, e.CustomVenueName, e.Category, e.IsBlock, e.BlockReason, e.Visibility,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if upd.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *upd.Title)
		n++
	}
	if upd.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *upd.Description)
		n++
	}
	if upd.StartsAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("starts_at = $%d", n))
		args = append(args, *upd.StartsAt)
		n++
	}
	if upd.EndsAt != nil {
		setClauses = append(setClauses, fmt.Sprintf("ends_at = $%d", n))
		args = append(args, *upd.EndsAt)
		n++
	}
	if upd.VenueProfileID != nil {
		setClauses = append(setClauses, fmt.Sprintf("venue_profile_id = $%d", n))
		args = append(args, *upd.VenueProfileID)
		n++
	}
	if upd.CustomVenueName != nil {
		setClauses = append(setClauses, fmt.Sprintf("custom_venue_name = $%d", n))
		args = append(args, *upd.CustomVenueName)
		n++
	}
	if upd.Category != nil {
		setClauses = append(setClauses, fmt.Sprintf("category = $%d", n))
		args = append(args, *upd.Category)
		n++
	}
	if upd.Visibility != nil {
		setClauses = append(setClauses, fmt.Sprintf("visibility = $%d", n))
		args = append(args, *upd.Visibility)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) ListForProfile(ctx context.Context, profileID string, status *domain.ParticipationStatus) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events e
		JOIN participations p ON p.event_id = e.id
		WHERE p.profile_id = $1 AND ($2 = '' OR p.status = $2)
		ORDER BY e.starts_at
	`, prefixColumns("e"))
	statusArg := ""
	if status != nil {
		statusArg = string(*status)
	}
	rows, err := r.DB.QueryContext(ctx, query, profileID, statusArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) ListCommitments(ctx context.Context, profileID, excludeEventID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events e
		JOIN participations p ON p.event_id = e.id
		WHERE p.profile_id = $1 AND p.status = 'confirmed'
			AND ($2 = '' OR e.id::text <> $2)
		ORDER BY e.starts_at
	`, prefixColumns("e"))
	rows, err := r.DB.QueryContext(ctx, query, profileID, excludeEventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// prefixColumns qualifies eventColumns with a table alias for joined queries.
func prefixColumns(alias string) string {
	cols := strings.Split(eventColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
