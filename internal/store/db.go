package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return &DB{Client: db}, db.PingContext(context.Background())
}

// Migrate ensures the staff and attendance tables exist. Staff names are
// unique: matching and recording resolve identities by name, which is only
// sound when the schema enforces it.
func (d *DB) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS staff (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT UNIQUE NOT NULL,
		age         INT NOT NULL DEFAULT 0,
		role        TEXT NOT NULL DEFAULT '',
		image_ref   TEXT NOT NULL DEFAULT '',
		descriptor  BYTEA NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS attendance_events (
		id          BIGSERIAL PRIMARY KEY,
		staff_id    BIGINT NOT NULL REFERENCES staff(id),
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		status      TEXT NOT NULL DEFAULT 'Present'
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_staff ON attendance_events(staff_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_time  ON attendance_events(occurred_at);
	`
	if _, err := d.Client.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
