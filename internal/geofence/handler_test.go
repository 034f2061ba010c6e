package geofence

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoundary struct {
	points []BoundaryPoint
	err    error
}

func (f *fakeBoundary) ListBoundaryPoints(context.Context) ([]BoundaryPoint, error) {
	return f.points, f.err
}

func squareRows() []BoundaryPoint {
	return []BoundaryPoint{
		{SequenceOrder: 0, Latitude: 0, Longitude: 0},
		{SequenceOrder: 1, Latitude: 0, Longitude: 10},
		{SequenceOrder: 2, Latitude: 10, Longitude: 10},
		{SequenceOrder: 3, Latitude: 10, Longitude: 0},
	}
}

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, svc, func(c *gin.Context) { c.Next() })
	return r
}

func TestService_Check(t *testing.T) {
	svc := NewService(&fakeBoundary{points: squareRows()})

	in, err := svc.Check(context.Background(), Point{5, 5})
	require.NoError(t, err)
	assert.True(t, in.Inside)
	assert.Zero(t, in.DistanceMeters)

	out, err := svc.Check(context.Background(), Point{15, 15})
	require.NoError(t, err)
	assert.False(t, out.Inside)
	assert.Greater(t, out.DistanceMeters, 0.0)
}

func TestService_CheckUnconfigured(t *testing.T) {
	svc := NewService(&fakeBoundary{points: squareRows()[:2]})

	res, err := svc.Check(context.Background(), Point{5, 5})
	require.NoError(t, err)
	assert.False(t, res.Inside)
	assert.Equal(t, -1.0, res.DistanceMeters)
}

func TestHandler_GetBoundary(t *testing.T) {
	r := newRouter(NewService(&fakeBoundary{points: squareRows()}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attendance/geofence", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var got []map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 4)
	assert.Equal(t, 2.0, got[2]["sequenceOrder"])
	assert.Equal(t, 10.0, got[2]["latitude"])
	assert.Equal(t, 10.0, got[2]["longitude"])
}

func TestHandler_GetBoundaryStoreError(t *testing.T) {
	r := newRouter(NewService(&fakeBoundary{err: errors.New("db down")}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attendance/geofence", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_CheckLocation(t *testing.T) {
	r := newRouter(NewService(&fakeBoundary{points: squareRows()}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attendance/geofence/check?lat=5&lng=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var res CheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Inside)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attendance/geofence/check?lat=abc&lng=5", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/attendance/geofence/check?lat=95&lng=5", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// recordingEngine answers from fixed values and remembers what it was asked.
type recordingEngine struct {
	inside   bool
	distance float64
	calls    int
	lastSize int
}

func (e *recordingEngine) Contains(_ Point, boundary []Point) bool {
	e.calls++
	e.lastSize = len(boundary)
	return e.inside
}

func (e *recordingEngine) DistanceToBoundary(Point, []Point) (float64, error) {
	return e.distance, nil
}

func TestService_CheckUsesInjectedEngine(t *testing.T) {
	eng := &recordingEngine{inside: false, distance: 42}
	svc := NewServiceWithEngine(&fakeBoundary{points: squareRows()}, eng)

	// (5,5) is inside the square for Planar; the injected engine decides instead
	res, err := svc.Check(context.Background(), Point{5, 5})
	require.NoError(t, err)
	assert.False(t, res.Inside)
	assert.Equal(t, 42.0, res.DistanceMeters)
	assert.Equal(t, 1, eng.calls)
	assert.Equal(t, 4, eng.lastSize)

	eng.inside = true
	res, err = svc.Check(context.Background(), Point{50, 50})
	require.NoError(t, err)
	assert.True(t, res.Inside)
	assert.Zero(t, res.DistanceMeters)
}

func TestService_UnconfiguredSkipsEngine(t *testing.T) {
	eng := &recordingEngine{inside: true}
	svc := NewServiceWithEngine(&fakeBoundary{points: squareRows()[:2]}, eng)

	res, err := svc.Check(context.Background(), Point{5, 5})
	require.NoError(t, err)
	assert.False(t, res.Inside)
	assert.Zero(t, eng.calls)
}
