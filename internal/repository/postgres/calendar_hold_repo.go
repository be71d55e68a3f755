package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"gigbook/internal/domain"
)

type calendarHoldRepository struct {
	DB *sql.DB
}

// NewCalendarHoldRepository returns the storage-level no-overlap backstop.
// The calendar_holds table carries an exclusion constraint over
// (profile_id, slot); a violation maps to a ConflictError.
func NewCalendarHoldRepository(db *sql.DB) domain.CalendarHoldRepository {
	return &calendarHoldRepository{
		DB: db,
	}
}

// holdSlot builds range bounds so a zero-width hold still occupies its
// instant, matching the in-process overlap semantics for endless events.
const holdSlot = `tstzrange($3, $4, CASE WHEN $3 = $4 THEN '[]' ELSE '[)' END)`

func (r *calendarHoldRepository) Add(ctx context.Context, eventID, profileID string, start, end time.Time) error {
	query := `
		INSERT INTO calendar_holds (event_id, profile_id, slot)
		VALUES ($1, $2, ` + holdSlot + `)
	`
	_, err := r.DB.ExecContext(ctx, query, eventID, profileID, start, end)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23P01" {
			return &domain.ConflictError{}
		}
		return err
	}
	return nil
}

func (r *calendarHoldRepository) UpdateSlot(ctx context.Context, eventID string, start, end time.Time) error {
	query := `
		UPDATE calendar_holds
		SET slot = tstzrange($2, $3, CASE WHEN $2 = $3 THEN '[]' ELSE '[)' END)
		WHERE event_id = $1
	`
	_, err := r.DB.ExecContext(ctx, query, eventID, start, end)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23P01" {
			return &domain.ConflictError{}
		}
		return err
	}
	return nil
}

func (r *calendarHoldRepository) Remove(ctx context.Context, eventID, profileID string) error {
	query := `DELETE FROM calendar_holds WHERE event_id = $1 AND profile_id = $2`
	_, err := r.DB.ExecContext(ctx, query, eventID, profileID)
	return err
}
