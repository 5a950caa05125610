package model

import "time"

// StatusPresent is the status written for every accepted recognition.
const StatusPresent = "Present"

// TimestampLayout is how event timestamps are rendered for reports,
// second resolution.
const TimestampLayout = "2006-01-02 15:04:05"

// Staff is an enrolled identity. Rows are immutable after enrollment; there
// is no update or delete path.
type Staff struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Age        int       `json:"age"`
	Role       string    `json:"role"`
	ImageRef   string    `json:"image_ref,omitempty"`
	Descriptor []byte    `json:"-"` // raw facedesc encoding, never exposed
	CreatedAt  time.Time `json:"created_at"`
}

// AttendanceEvent is one recorded presence. Events are append-only.
type AttendanceEvent struct {
	ID        int64     `json:"id"`
	StaffID   int64     `json:"staff_id"`
	Name      string    `json:"name,omitempty"` // joined from staff
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
}
