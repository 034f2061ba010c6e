package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"night-attendance-backend/internal/geofence"
	"night-attendance-backend/internal/platform/apierror"
)

type fakeAccounts struct {
	wardens  map[string]*Account
	students map[string]*Account
	err      error
}

func (f *fakeAccounts) FindWardenByEmail(_ context.Context, email string) (*Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.wardens[email], nil
}

func (f *fakeAccounts) FindStudentByEmail(_ context.Context, email string) (*Account, error) {
	return f.students[email], nil
}

type fakeFence struct {
	res    geofence.CheckResponse
	err    error
	called int
}

func (f *fakeFence) Check(context.Context, geofence.Point) (geofence.CheckResponse, error) {
	f.called++
	return f.res, f.err
}

func hash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func ptr(f float64) *float64 { return &f }

func newTestService(t *testing.T, fence *fakeFence, requireGeofence bool) *Service {
	store := &fakeAccounts{
		wardens: map[string]*Account{
			"w@campus.edu": {ID: 1, Role: RoleWarden, Name: "Warden", Email: "w@campus.edu", PasswordHash: hash(t, "secret")},
		},
		students: map[string]*Account{
			"s@campus.edu": {ID: 7, Role: RoleStudent, Name: "Asha", Email: "s@campus.edu", PasswordHash: hash(t, "pw"),
				FaceDescriptor: []float64{0.1, 0.2}},
		},
	}
	return NewService(store, fence, NewTokenIssuer(testSecret, time.Hour), requireGeofence)
}

func TestLogin_Warden(t *testing.T) {
	fence := &fakeFence{}
	svc := newTestService(t, fence, true)

	res, err := svc.Login(context.Background(), LoginRequest{Email: " W@Campus.edu", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, RoleWarden, res.Role)
	assert.Equal(t, int64(1), res.ID)
	assert.Nil(t, res.FaceDescriptor)
	assert.Zero(t, fence.called, "wardens are not geofenced")

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(res.AccessToken, claims, func(*jwt.Token) (any, error) { return testSecret, nil })
	require.NoError(t, err)
	assert.Equal(t, "1", claims["sub"])
	assert.Equal(t, RoleWarden, claims["role"])
}

func TestLogin_StudentInside(t *testing.T) {
	fence := &fakeFence{res: geofence.CheckResponse{Inside: true}}
	svc := newTestService(t, fence, true)

	res, err := svc.Login(context.Background(), LoginRequest{Email: "s@campus.edu", Password: "pw", Lat: ptr(1), Lng: ptr(2)})
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, res.Role)
	assert.Equal(t, []float64{0.1, 0.2}, res.FaceDescriptor)
	assert.Equal(t, 1, fence.called)
}

func TestLogin_StudentLocationRules(t *testing.T) {
	t.Run("missing location", func(t *testing.T) {
		svc := newTestService(t, &fakeFence{}, true)
		_, err := svc.Login(context.Background(), LoginRequest{Email: "s@campus.edu", Password: "pw"})
		assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
	})

	t.Run("outside", func(t *testing.T) {
		svc := newTestService(t, &fakeFence{res: geofence.CheckResponse{DistanceMeters: 250}}, true)
		_, err := svc.Login(context.Background(), LoginRequest{Email: "s@campus.edu", Password: "pw", Lat: ptr(1), Lng: ptr(2)})
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, apierror.StatusOf(err))

		var api *apierror.Error
		require.True(t, errors.As(err, &api))
		assert.Equal(t, map[string]any{"distanceMeters": 250.0}, api.Details)
	})

	t.Run("geofence lookup fails", func(t *testing.T) {
		svc := newTestService(t, &fakeFence{err: errors.New("db down")}, true)
		_, err := svc.Login(context.Background(), LoginRequest{Email: "s@campus.edu", Password: "pw", Lat: ptr(1), Lng: ptr(2)})
		assert.Equal(t, http.StatusInternalServerError, apierror.StatusOf(err))
	})

	t.Run("policy off", func(t *testing.T) {
		fence := &fakeFence{}
		svc := newTestService(t, fence, false)
		_, err := svc.Login(context.Background(), LoginRequest{Email: "s@campus.edu", Password: "pw"})
		require.NoError(t, err)
		assert.Zero(t, fence.called)
	})
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newTestService(t, &fakeFence{res: geofence.CheckResponse{Inside: true}}, true)

	for _, req := range []LoginRequest{
		{Email: "w@campus.edu", Password: "wrong"},
		{Email: "nobody@campus.edu", Password: "pw"},
		{Email: "s@campus.edu", Password: "secret"},
	} {
		_, err := svc.Login(context.Background(), req)
		assert.Equal(t, http.StatusUnauthorized, apierror.StatusOf(err), req.Email)
	}

	_, err := svc.Login(context.Background(), LoginRequest{Email: "  ", Password: "pw"})
	assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
}

func TestLogin_StoreError(t *testing.T) {
	svc := NewService(&fakeAccounts{err: errors.New("boom")}, &fakeFence{}, NewTokenIssuer(testSecret, time.Hour), true)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "w@campus.edu", Password: "x"})
	assert.Equal(t, http.StatusInternalServerError, apierror.StatusOf(err))
}
