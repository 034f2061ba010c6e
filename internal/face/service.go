package face

import (
	"context"
	"fmt"

	"night-attendance-backend/internal/platform/apierror"
	"night-attendance-backend/internal/platform/media"
)

type Repository interface {
	FindByStudent(ctx context.Context, studentID int64) (*Enrollment, error)
	Upsert(ctx context.Context, studentID int64, d Descriptor, image *string) (created bool, err error)
	StudentExists(ctx context.Context, studentID int64) (bool, error)
}

type ImageDecoder interface {
	Decode(payload string) (media.Image, error)
}

type Service struct {
	repo             Repository
	images           ImageDecoder
	descriptorLength int
}

func NewService(repo Repository, images ImageDecoder, descriptorLength int) *Service {
	if descriptorLength <= 0 {
		descriptorLength = DefaultDescriptorLength
	}
	return &Service{repo: repo, images: images, descriptorLength: descriptorLength}
}

// ValidateDescriptor checks shape only; it says nothing about whose face it is.
func ValidateDescriptor(d Descriptor, length int) error {
	if len(d) != length {
		return apierror.Invalid(fmt.Sprintf("face descriptor must have %d values, got %d", length, len(d)))
	}
	if !d.Valid() {
		return apierror.Invalid("face descriptor contains non-finite values")
	}
	return nil
}

// Enroll stores or replaces the student's reference face.
func (s *Service) Enroll(ctx context.Context, studentID int64, req EnrollRequest) (created bool, err error) {
	if err := ValidateDescriptor(req.FaceDescriptor, s.descriptorLength); err != nil {
		return false, err
	}

	var image *string
	if req.Image != "" {
		if _, err := s.images.Decode(req.Image); err != nil {
			return false, apierror.Invalid(err.Error())
		}
		image = &req.Image
	}

	ok, err := s.repo.StudentExists(ctx, studentID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, apierror.NotFound("student not found")
	}

	return s.repo.Upsert(ctx, studentID, req.FaceDescriptor, image)
}

// Image returns the stored reference image.
func (s *Service) Image(ctx context.Context, studentID int64) (string, error) {
	e, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return "", err
	}
	if e == nil || e.Image == nil || *e.Image == "" {
		return "", apierror.NotFound("face image not found")
	}
	return *e.Image, nil
}
