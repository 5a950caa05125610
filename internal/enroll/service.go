// Package enroll registers new staff identities from a profile and a photo.
package enroll

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"faceattend/internal/detector"
	"faceattend/internal/gallery"
	"faceattend/internal/model"
)

// ErrNoFaceDetected means the enrollment image yielded no usable
// descriptor. Nothing is persisted; the caller should re-prompt.
var ErrNoFaceDetected = errors.New("no face detected in image")

// ErrDuplicateName means the display name is already enrolled. Names are
// the matching key and must stay unique.
var ErrDuplicateName = errors.New("staff name already enrolled")

// Detector extracts face descriptors from an image.
type Detector interface {
	Detect(ctx context.Context, image []byte, filename string) (*detector.Detection, error)
}

// StaffStore persists identities.
type StaffStore interface {
	CreateStaff(ctx context.Context, st *model.Staff) error
	GetStaffByName(ctx context.Context, name string) (*model.Staff, error)
}

// Uploader stores the enrollment photo somewhere durable and returns a
// reference for the staff row. Optional.
type Uploader interface {
	Upload(data []byte, filename string) (string, error)
}

// NewStaff is the enrollment input.
type NewStaff struct {
	Name     string
	Age      int
	Role     string
	Image    []byte
	Filename string
}

// Service validates an enrollment, persists the identity and refreshes the
// gallery so the new face is immediately matchable.
type Service struct {
	staff    StaffStore
	detector Detector
	gallery  *gallery.Gallery
	uploads  Uploader // nil when photo storage is not configured
}

// NewService wires an enrollment service.
func NewService(staff StaffStore, det Detector, g *gallery.Gallery, uploads Uploader) *Service {
	return &Service{staff: staff, detector: det, gallery: g, uploads: uploads}
}

// Enroll registers one identity from a profile and a single image.
//
// When the image contains several faces the first detected descriptor is
// taken; enrollment photos are expected to show one person. Zero faces
// fails with ErrNoFaceDetected and persists nothing. The gallery is
// reloaded synchronously after the insert, so a successful return means
// the new identity is already matchable; a failed enrollment never
// triggers a reload.
func (s *Service) Enroll(ctx context.Context, in NewStaff) (*model.Staff, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, errors.New("staff name required")
	}
	if len(in.Image) == 0 {
		return nil, errors.New("enrollment image required")
	}

	existing, err := s.staff.GetStaffByName(ctx, in.Name)
	if err != nil {
		return nil, fmt.Errorf("check staff name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, in.Name)
	}

	det, err := s.detector.Detect(ctx, in.Image, in.Filename)
	if err != nil {
		return nil, fmt.Errorf("extract descriptor: %w", err)
	}
	if len(det.Descriptors) == 0 {
		return nil, fmt.Errorf("%w (for %s)", ErrNoFaceDetected, in.Name)
	}
	desc := det.Descriptors[0]

	imageRef := localImageRef(in.Filename)
	if s.uploads != nil {
		ref, err := s.uploads.Upload(in.Image, in.Filename)
		if err != nil {
			return nil, fmt.Errorf("store enrollment photo: %w", err)
		}
		imageRef = ref
	}

	st := &model.Staff{
		Name:       in.Name,
		Age:        in.Age,
		Role:       in.Role,
		ImageRef:   imageRef,
		Descriptor: desc.Encode(),
	}
	if err := s.staff.CreateStaff(ctx, st); err != nil {
		return nil, fmt.Errorf("persist staff: %w", err)
	}

	if err := s.gallery.Load(ctx); err != nil {
		// The row is persisted but not yet matchable; surface it so the
		// caller does not treat the enrollment as visible.
		return nil, fmt.Errorf("staff %s enrolled but gallery refresh failed: %w", in.Name, err)
	}
	return st, nil
}

// localImageRef builds a fallback image reference when no uploader is
// configured, keeping the original extension.
func localImageRef(filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		ext = ".jpg"
	}
	return "uploads/" + uuid.NewString() + ext
}
