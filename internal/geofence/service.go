package geofence

import (
	"context"
	"log"
)

// BoundaryReader is the only persistence the geofence needs at request time.
type BoundaryReader interface {
	ListBoundaryPoints(ctx context.Context) ([]BoundaryPoint, error)
}

type Service struct {
	store  BoundaryReader
	engine Engine
}

func NewService(store BoundaryReader) *Service {
	return &Service{store: store, engine: Planar{}}
}

// NewServiceWithEngine swaps the containment algorithm.
func NewServiceWithEngine(store BoundaryReader, engine Engine) *Service {
	return &Service{store: store, engine: engine}
}

func (s *Service) Boundary(ctx context.Context) ([]BoundaryPoint, error) {
	return s.store.ListBoundaryPoints(ctx)
}

// Check evaluates p against the stored boundary. A boundary with fewer than
// three points is a configuration error: the point is reported outside.
func (s *Service) Check(ctx context.Context, p Point) (CheckResponse, error) {
	rows, err := s.store.ListBoundaryPoints(ctx)
	if err != nil {
		return CheckResponse{}, err
	}
	return s.Evaluate(p, Polygon(rows)), nil
}

// Evaluate runs the engine against an already loaded polygon.
func (s *Service) Evaluate(p Point, polygon []Point) CheckResponse {
	if len(polygon) < MinPoints {
		log.Printf("[WARN] geofence not configured: %d boundary points, treating location as outside", len(polygon))
		return CheckResponse{Inside: false, DistanceMeters: -1}
	}
	if s.engine.Contains(p, polygon) {
		return CheckResponse{Inside: true}
	}
	d, err := s.engine.DistanceToBoundary(p, polygon)
	if err != nil {
		d = -1
	}
	return CheckResponse{Inside: false, DistanceMeters: d}
}
