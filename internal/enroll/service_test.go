package enroll

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faceattend/internal/detector"
	"faceattend/internal/facedesc"
	"faceattend/internal/gallery"
	"faceattend/internal/match"
	"faceattend/internal/store/storemock"
)

type fakeDetector struct {
	descriptors []facedesc.Descriptor
	err         error
}

func (f *fakeDetector) Detect(ctx context.Context, image []byte, filename string) (*detector.Detection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &detector.Detection{Descriptors: f.descriptors}, nil
}

func descriptorAt(first float64) facedesc.Descriptor {
	d := make(facedesc.Descriptor, facedesc.Dim)
	d[0] = first
	return d
}

func TestEnrollNoFaceDetected(t *testing.T) {
	db := storemock.New()
	g := gallery.New(db)
	svc := NewService(db, &fakeDetector{}, g, nil)

	_, err := svc.Enroll(context.Background(), NewStaff{
		Name: "alice", Age: 30, Role: "engineer", Image: []byte("jpeg"),
	})

	require.ErrorIs(t, err, ErrNoFaceDetected)
	assert.Equal(t, 0, db.StaffCount())
	assert.Equal(t, 0, g.Size())
}

func TestEnrollPersistsAndRefreshesGallery(t *testing.T) {
	db := storemock.New()
	g := gallery.New(db)
	desc := descriptorAt(0.25)
	svc := NewService(db, &fakeDetector{descriptors: []facedesc.Descriptor{desc}}, g, nil)

	st, err := svc.Enroll(context.Background(), NewStaff{
		Name: "alice", Age: 30, Role: "engineer", Image: []byte("jpeg"), Filename: "alice.png",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, db.StaffCount())
	assert.NotZero(t, st.ID)
	assert.NotEmpty(t, st.ImageRef)

	// The new identity is immediately matchable against its own descriptor.
	assert.Equal(t, "alice", match.Identify(g.Snapshot(), desc, facedesc.DefaultTolerance))
}

func TestEnrollTakesFirstOfSeveralFaces(t *testing.T) {
	db := storemock.New()
	g := gallery.New(db)
	first := descriptorAt(0.1)
	second := descriptorAt(0.9)
	svc := NewService(db, &fakeDetector{descriptors: []facedesc.Descriptor{first, second}}, g, nil)

	_, err := svc.Enroll(context.Background(), NewStaff{Name: "alice", Image: []byte("jpeg")})
	require.NoError(t, err)

	entries := g.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, first, entries[0].Descriptor)
}

func TestEnrollRejectsDuplicateName(t *testing.T) {
	db := storemock.New()
	g := gallery.New(db)
	svc := NewService(db, &fakeDetector{descriptors: []facedesc.Descriptor{descriptorAt(0.1)}}, g, nil)

	_, err := svc.Enroll(context.Background(), NewStaff{Name: "alice", Image: []byte("jpeg")})
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), NewStaff{Name: "alice", Image: []byte("jpeg")})
	require.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 1, db.StaffCount())
}

func TestEnrollValidatesInput(t *testing.T) {
	db := storemock.New()
	svc := NewService(db, &fakeDetector{}, gallery.New(db), nil)

	_, err := svc.Enroll(context.Background(), NewStaff{Name: "  ", Image: []byte("jpeg")})
	assert.Error(t, err)

	_, err = svc.Enroll(context.Background(), NewStaff{Name: "alice"})
	assert.Error(t, err)
	assert.Equal(t, 0, db.StaffCount())
}

func TestEnrollDetectorFailurePersistsNothing(t *testing.T) {
	db := storemock.New()
	g := gallery.New(db)
	svc := NewService(db, &fakeDetector{err: errors.New("service down")}, g, nil)

	_, err := svc.Enroll(context.Background(), NewStaff{Name: "alice", Image: []byte("jpeg")})
	require.Error(t, err)
	assert.Equal(t, 0, db.StaffCount())
	assert.Equal(t, 0, g.Size())
}

func TestEnrollSurfacesGalleryRefreshFailure(t *testing.T) {
	db := storemock.New()
	g := gallery.New(db)
	svc := NewService(db, &fakeDetector{descriptors: []facedesc.Descriptor{descriptorAt(0.1)}}, g, nil)

	db.ListRowsErr = errors.New("connection reset")
	_, err := svc.Enroll(context.Background(), NewStaff{Name: "alice", Image: []byte("jpeg")})

	// The row is persisted but not matchable yet; the caller must see that.
	require.Error(t, err)
	assert.Equal(t, 1, db.StaffCount())
	assert.Equal(t, 0, g.Size())
}

func TestEnrollInsertFailureLeavesGalleryUntouched(t *testing.T) {
	db := storemock.New()
	g := gallery.New(db)
	svc := NewService(db, &fakeDetector{descriptors: []facedesc.Descriptor{descriptorAt(0.1)}}, g, nil)

	db.CreateStaffErr = errors.New("connection reset")
	_, err := svc.Enroll(context.Background(), NewStaff{Name: "alice", Image: []byte("jpeg")})
	require.Error(t, err)
	assert.Equal(t, 0, g.Size())
}
