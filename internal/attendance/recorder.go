// Package attendance records presence events for recognized identities and
// reads them back for reports.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"faceattend/internal/model"
)

// ErrUnknownIdentity means a recognized name could not be resolved to a
// staff id. With gallery and store consistent this should not happen;
// treat it as a consistency signal, not user error.
var ErrUnknownIdentity = errors.New("unknown staff identity")

// StaffDirectory resolves display names to staff ids. Zero means absent.
type StaffDirectory interface {
	StaffIDByName(ctx context.Context, name string) (int64, error)
}

// EventStore persists and queries attendance events.
type EventStore interface {
	InsertEvent(ctx context.Context, evt *model.AttendanceEvent) error
	LastEventOn(ctx context.Context, staffID int64, day time.Time) (*model.AttendanceEvent, error)
	ListEventsWithNames(ctx context.Context, limit int) ([]model.AttendanceEvent, error)
}

// Options configures recording policy.
type Options struct {
	// OncePerDay suppresses repeat events for the same person on the same
	// UTC calendar day, returning the existing event instead. Off by
	// default: every accepted recognition appends a new event.
	OncePerDay bool
}

// Recorder turns a resolved identity name into a durable presence event.
// Callers filter Unknown upstream; it is never passed here.
type Recorder struct {
	staff  StaffDirectory
	events EventStore
	opts   Options
	now    func() time.Time
}

// NewRecorder creates a recorder.
func NewRecorder(staff StaffDirectory, events EventStore, opts Options) *Recorder {
	return &Recorder{staff: staff, events: events, opts: opts, now: time.Now}
}

// Record appends a Present event for the named identity, stamped with the
// current time at second resolution.
func (r *Recorder) Record(ctx context.Context, name string) (*model.AttendanceEvent, error) {
	id, err := r.staff.StaffIDByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve staff %q: %w", name, err)
	}
	if id == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIdentity, name)
	}

	now := r.now().UTC().Truncate(time.Second)

	if r.opts.OncePerDay {
		existing, err := r.events.LastEventOn(ctx, id, now)
		if err != nil {
			return nil, fmt.Errorf("check today's attendance for %q: %w", name, err)
		}
		if existing != nil {
			existing.Name = name
			return existing, nil
		}
	}

	evt := &model.AttendanceEvent{
		StaffID:   id,
		Timestamp: now,
		Status:    model.StatusPresent,
	}
	if err := r.events.InsertEvent(ctx, evt); err != nil {
		return nil, fmt.Errorf("record attendance for %q: %w", name, err)
	}
	evt.Name = name
	return evt, nil
}

// ReportRow is one line of the attendance report.
type ReportRow struct {
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"` // model.TimestampLayout
	Status    string `json:"status"`
}

// Reporter joins events to their identity for display. Read-only.
type Reporter struct {
	events EventStore
}

// NewReporter creates a report reader.
func NewReporter(events EventStore) *Reporter {
	return &Reporter{events: events}
}

// Report returns up to limit recorded events with their staff names,
// newest first.
func (r *Reporter) Report(ctx context.Context, limit int) ([]ReportRow, error) {
	events, err := r.events.ListEventsWithNames(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("read attendance report: %w", err)
	}
	rows := make([]ReportRow, 0, len(events))
	for _, evt := range events {
		rows = append(rows, ReportRow{
			Name:      evt.Name,
			Timestamp: evt.Timestamp.Format(model.TimestampLayout),
			Status:    evt.Status,
		})
	}
	return rows, nil
}
