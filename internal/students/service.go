package students

import (
	"context"

	"night-attendance-backend/internal/platform/apierror"
)

type Repository interface {
	FindByID(ctx context.Context, id int64) (*Student, error)
	List(ctx context.Context, hostel string) ([]Student, error)
}

type Service struct{ repo Repository }

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) Profile(ctx context.Context, id int64) (*Student, error) {
	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, apierror.NotFound("Student not found.")
	}
	return st, nil
}

// Roster lists students of one hostel; empty or All means every hostel.
func (s *Service) Roster(ctx context.Context, hostel string) ([]Student, error) {
	if hostel == "" {
		hostel = AllHostels
	}
	list, err := s.repo.List(ctx, hostel)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Student{}
	}
	return list, nil
}
