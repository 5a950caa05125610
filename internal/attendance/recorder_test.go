package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faceattend/internal/model"
	"faceattend/internal/store/storemock"
)

func TestRecordUnknownIdentity(t *testing.T) {
	db := storemock.New()
	rec := NewRecorder(db, db, Options{})

	_, err := rec.Record(context.Background(), "nobody")

	require.ErrorIs(t, err, ErrUnknownIdentity)
	assert.Empty(t, db.Events())
}

func TestRecordAppendsPresentEvent(t *testing.T) {
	db := storemock.New()
	id := db.SeedStaff("alice", nil)
	rec := NewRecorder(db, db, Options{})

	start := time.Now().UTC().Truncate(time.Second)
	evt, err := rec.Record(context.Background(), "alice")
	require.NoError(t, err)

	events := db.Events()
	require.Len(t, events, 1)
	assert.Equal(t, id, evt.StaffID)
	assert.Equal(t, model.StatusPresent, evt.Status)
	assert.Equal(t, "alice", evt.Name)
	assert.False(t, evt.Timestamp.Before(start), "timestamp %v before call start %v", evt.Timestamp, start)
	assert.Equal(t, evt.Timestamp, evt.Timestamp.Truncate(time.Second))
}

func TestRecordNoDedupByDefault(t *testing.T) {
	db := storemock.New()
	db.SeedStaff("alice", nil)
	rec := NewRecorder(db, db, Options{})

	_, err := rec.Record(context.Background(), "alice")
	require.NoError(t, err)
	_, err = rec.Record(context.Background(), "alice")
	require.NoError(t, err)

	assert.Len(t, db.Events(), 2)
}

func TestRecordOncePerDay(t *testing.T) {
	db := storemock.New()
	db.SeedStaff("alice", nil)
	rec := NewRecorder(db, db, Options{OncePerDay: true})

	first, err := rec.Record(context.Background(), "alice")
	require.NoError(t, err)
	second, err := rec.Record(context.Background(), "alice")
	require.NoError(t, err)

	assert.Len(t, db.Events(), 1)
	assert.Equal(t, first.ID, second.ID)

	// A new day starts a fresh record.
	rec.now = func() time.Time { return time.Now().UTC().Add(24 * time.Hour) }
	_, err = rec.Record(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, db.Events(), 2)
}

func TestRecordInsertFailureSurfaces(t *testing.T) {
	db := storemock.New()
	db.SeedStaff("alice", nil)
	db.InsertEventErr = errors.New("connection reset")
	rec := NewRecorder(db, db, Options{})

	_, err := rec.Record(context.Background(), "alice")
	require.Error(t, err)
	assert.Empty(t, db.Events())
}

func TestReportJoinsNames(t *testing.T) {
	db := storemock.New()
	db.SeedStaff("alice", nil)
	db.SeedStaff("bob", nil)
	rec := NewRecorder(db, db, Options{})

	_, err := rec.Record(context.Background(), "alice")
	require.NoError(t, err)
	_, err = rec.Record(context.Background(), "bob")
	require.NoError(t, err)

	rows, err := NewReporter(db).Report(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first.
	assert.Equal(t, "bob", rows[0].Name)
	assert.Equal(t, "alice", rows[1].Name)
	for _, row := range rows {
		assert.Equal(t, model.StatusPresent, row.Status)
		_, err := time.Parse(model.TimestampLayout, row.Timestamp)
		assert.NoError(t, err)
	}
}
