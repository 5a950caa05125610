package store

import (
	"context"
	"database/sql"
	"errors"

	"faceattend/internal/gallery"
	"faceattend/internal/model"
)

// StaffRepository persists enrolled identities in Postgres.
type StaffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates a staff repo.
func NewStaffRepository(db *sql.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// CreateStaff inserts a new identity and fills in its id and creation time.
func (r *StaffRepository) CreateStaff(ctx context.Context, st *model.Staff) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO staff (name, age, role, image_ref, descriptor)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, st.Name, st.Age, st.Role, st.ImageRef, st.Descriptor)
	return row.Scan(&st.ID, &st.CreatedAt)
}

// GetStaffByName returns a single identity, or nil when the name is unknown.
func (r *StaffRepository) GetStaffByName(ctx context.Context, name string) (*model.Staff, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, age, role, image_ref, descriptor, created_at
		FROM staff WHERE name = $1
	`, name)
	var st model.Staff
	if err := row.Scan(&st.ID, &st.Name, &st.Age, &st.Role, &st.ImageRef, &st.Descriptor, &st.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// StaffIDByName resolves a display name to its id. Returns 0 when absent.
func (r *StaffRepository) StaffIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM staff WHERE name = $1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

// ListStaff returns all identities in enrollment order.
func (r *StaffRepository) ListStaff(ctx context.Context) ([]model.Staff, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, age, role, image_ref, created_at
		FROM staff ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []model.Staff
	for rows.Next() {
		var st model.Staff
		if err := rows.Scan(&st.ID, &st.Name, &st.Age, &st.Role, &st.ImageRef, &st.CreatedAt); err != nil {
			return nil, err
		}
		staff = append(staff, st)
	}
	return staff, rows.Err()
}

// ListDescriptorRows feeds the gallery: every (name, raw descriptor) pair in
// enrollment order, decoding deferred to the gallery so one bad blob does
// not fail the query.
func (r *StaffRepository) ListDescriptorRows(ctx context.Context) ([]gallery.Row, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, descriptor FROM staff ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gallery.Row
	for rows.Next() {
		var row gallery.Row
		if err := rows.Scan(&row.Name, &row.Descriptor); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
