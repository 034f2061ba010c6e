package auth

import (
	"context"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"

	"night-attendance-backend/internal/geofence"
	"night-attendance-backend/internal/platform/apierror"
)

var errInvalidCredentials = apierror.Unauthorized("invalid email or password")

// LocationChecker is the geofence view login needs.
type LocationChecker interface {
	Check(ctx context.Context, p geofence.Point) (geofence.CheckResponse, error)
}

type Service struct {
	store           AccountStore
	fence           LocationChecker
	tokens          *TokenIssuer
	requireGeofence bool
}

// NewService wires login. With requireGeofence, students must sign in from inside the boundary.
func NewService(store AccountStore, fence LocationChecker, tokens *TokenIssuer, requireGeofence bool) *Service {
	return &Service{store: store, fence: fence, tokens: tokens, requireGeofence: requireGeofence}
}

// HashPassword is used by seeding; login only compares.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login checks wardens first, then students.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apierror.Invalid("email and password are required")
	}

	acct, err := s.store.FindWardenByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		acct, err = s.store.FindStudentByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
	}
	if acct == nil {
		return nil, errInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Printf("[WARN] unusable password hash for %s %d: %v", acct.Role, acct.ID, err)
		}
		return nil, errInvalidCredentials
	}

	if acct.Role == RoleStudent && s.requireGeofence {
		if err := s.checkLocation(ctx, req); err != nil {
			return nil, err
		}
	}

	token, err := s.tokens.Issue(acct.ID, acct.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		ID:             acct.ID,
		Name:           acct.Name,
		Email:          acct.Email,
		Role:           acct.Role,
		AccessToken:    token,
		FaceDescriptor: acct.FaceDescriptor,
	}, nil
}

func (s *Service) checkLocation(ctx context.Context, req LoginRequest) error {
	if req.Lat == nil || req.Lng == nil {
		return apierror.Invalid("location is required for student login")
	}
	res, err := s.fence.Check(ctx, geofence.Point{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		return err
	}
	if !res.Inside {
		return apierror.Forbidden("you must be on campus to log in").
			WithDetails(map[string]any{"distanceMeters": res.DistanceMeters})
	}
	return nil
}
