package domain

import (
	"context"
	"fmt"
	"time"
)

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ConflictError is returned when a requested time range overlaps the
// profile's confirmed commitments or blocks. It carries the offending
// events so callers can present them.
type ConflictError struct {
	Conflicts []*Event `json:"conflicts"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict with %d event(s)", len(e.Conflicts))
}

// CalendarHoldRepository maintains the storage-level no-overlap backstop.
// A hold exists per (event, profile) for confirmed participations and
// blocks; the store rejects overlapping holds for the same profile, which
// surfaces as a ConflictError.
type CalendarHoldRepository interface {
	Add(ctx context.Context, eventID, profileID string, start, end time.Time) error
	UpdateSlot(ctx context.Context, eventID string, start, end time.Time) error
	Remove(ctx context.Context, eventID, profileID string) error
}
