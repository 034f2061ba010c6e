package issues

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"night-attendance-backend/internal/platform/apierror"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type Repository interface {
	Create(ctx context.Context, is *Issue) error
	ListWithReporter(ctx context.Context) ([]IssueWithReporter, error)
}

type Service struct {
	repo  Repository
	clock Clock
	id    IDGen
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: realClock{}, id: ulidGen{}}
}

// Report files a new issue for the student. Issues start Open.
func (s *Service) Report(ctx context.Context, studentID int64, req CreateIssueRequest) (*Issue, error) {
	typ := strings.TrimSpace(req.Type)
	desc := strings.TrimSpace(req.Description)
	if typ == "" || desc == "" {
		return nil, apierror.Invalid("type and description are required")
	}

	publicID, err := s.id.New()
	if err != nil {
		return nil, fmt.Errorf("generate issue id: %w", err)
	}
	now := s.clock.Now().UTC().Truncate(time.Microsecond)
	is := &Issue{
		IssueULID:   publicID,
		StudentID:   studentID,
		Type:        typ,
		Description: desc,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, is); err != nil {
		return nil, err
	}
	return is, nil
}

func (s *Service) List(ctx context.Context) ([]IssueWithReporter, error) {
	list, err := s.repo.ListWithReporter(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []IssueWithReporter{}
	}
	return list, nil
}
