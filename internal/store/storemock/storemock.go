// Package storemock provides an in-memory store for package tests. It
// implements the staff and event store interfaces the services consume.
package storemock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"faceattend/internal/gallery"
	"faceattend/internal/model"
)

// Store holds staff and events in memory. Error fields, when set, are
// returned by the corresponding method to exercise failure paths.
type Store struct {
	mu     sync.RWMutex
	staff  []model.Staff
	events []model.AttendanceEvent

	CreateStaffErr error
	ListRowsErr    error
	InsertEventErr error
	ResolveErr     error
}

// New creates an empty mock store.
func New() *Store {
	return &Store{}
}

// SeedStaff inserts a staff row directly, bypassing enrollment. Useful for
// planting malformed descriptor blobs.
func (s *Store) SeedStaff(name string, descriptor []byte) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := int64(len(s.staff) + 1)
	s.staff = append(s.staff, model.Staff{
		ID:         id,
		Name:       name,
		Descriptor: descriptor,
		CreatedAt:  time.Now().UTC(),
	})
	return id
}

// StaffCount reports how many identities are persisted.
func (s *Store) StaffCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.staff)
}

// Events returns a copy of all persisted events in insertion order.
func (s *Store) Events() []model.AttendanceEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AttendanceEvent, len(s.events))
	copy(out, s.events)
	return out
}

// CreateStaff implements enroll.StaffStore.
func (s *Store) CreateStaff(ctx context.Context, st *model.Staff) error {
	if s.CreateStaffErr != nil {
		return s.CreateStaffErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.staff {
		if existing.Name == st.Name {
			return fmt.Errorf("staff name %q already exists", st.Name)
		}
	}
	st.ID = int64(len(s.staff) + 1)
	st.CreatedAt = time.Now().UTC()
	s.staff = append(s.staff, *st)
	return nil
}

// GetStaffByName implements enroll.StaffStore.
func (s *Store) GetStaffByName(ctx context.Context, name string) (*model.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.staff {
		if st.Name == name {
			found := st
			return &found, nil
		}
	}
	return nil, nil
}

// StaffIDByName implements attendance.StaffDirectory.
func (s *Store) StaffIDByName(ctx context.Context, name string) (int64, error) {
	if s.ResolveErr != nil {
		return 0, s.ResolveErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.staff {
		if st.Name == name {
			return st.ID, nil
		}
	}
	return 0, nil
}

// ListDescriptorRows implements gallery.Source.
func (s *Store) ListDescriptorRows(ctx context.Context) ([]gallery.Row, error) {
	if s.ListRowsErr != nil {
		return nil, s.ListRowsErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]gallery.Row, 0, len(s.staff))
	for _, st := range s.staff {
		rows = append(rows, gallery.Row{Name: st.Name, Descriptor: st.Descriptor})
	}
	return rows, nil
}

// InsertEvent implements attendance.EventStore.
func (s *Store) InsertEvent(ctx context.Context, evt *model.AttendanceEvent) error {
	if s.InsertEventErr != nil {
		return s.InsertEventErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	evt.ID = int64(len(s.events) + 1)
	s.events = append(s.events, *evt)
	return nil
}

// LastEventOn implements attendance.EventStore.
func (s *Store) LastEventOn(ctx context.Context, staffID int64, day time.Time) (*model.AttendanceEvent, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		evt := s.events[i]
		if evt.StaffID == staffID && !evt.Timestamp.Before(start) && evt.Timestamp.Before(end) {
			found := evt
			return &found, nil
		}
	}
	return nil, nil
}

// ListEventsWithNames implements attendance.EventStore.
func (s *Store) ListEventsWithNames(ctx context.Context, limit int) ([]model.AttendanceEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[int64]string, len(s.staff))
	for _, st := range s.staff {
		byID[st.ID] = st.Name
	}

	var events []model.AttendanceEvent
	for i := len(s.events) - 1; i >= 0 && len(events) < limit; i-- {
		evt := s.events[i]
		evt.Name = byID[evt.StaffID]
		events = append(events, evt)
	}
	return events, nil
}
