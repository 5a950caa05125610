package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"faceattend/internal/model"
)

// EventRepository persists attendance events in Postgres.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates an event repo.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// InsertEvent appends a new event and fills in its id. Single statement, so
// each recording is individually atomic.
func (r *EventRepository) InsertEvent(ctx context.Context, evt *model.AttendanceEvent) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_events (staff_id, occurred_at, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`, evt.StaffID, evt.Timestamp, evt.Status)
	return row.Scan(&evt.ID)
}

// LastEventOn returns the most recent event for the staff member on the
// given UTC calendar day, or nil if there is none.
func (r *EventRepository) LastEventOn(ctx context.Context, staffID int64, day time.Time) (*model.AttendanceEvent, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	row := r.db.QueryRowContext(ctx, `
		SELECT id, staff_id, occurred_at, status
		FROM attendance_events
		WHERE staff_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at DESC
		LIMIT 1
	`, staffID, start, end)

	var evt model.AttendanceEvent
	if err := row.Scan(&evt.ID, &evt.StaffID, &evt.Timestamp, &evt.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &evt, nil
}

// ListEventsWithNames returns events joined to their staff name, newest
// first.
func (r *EventRepository) ListEventsWithNames(ctx context.Context, limit int) ([]model.AttendanceEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT e.id, e.staff_id, s.name, e.occurred_at, e.status
		FROM attendance_events e
		JOIN staff s ON s.id = e.staff_id
		ORDER BY e.occurred_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.AttendanceEvent
	for rows.Next() {
		var evt model.AttendanceEvent
		if err := rows.Scan(&evt.ID, &evt.StaffID, &evt.Name, &evt.Timestamp, &evt.Status); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}
