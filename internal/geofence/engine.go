// Package geofence decides whether a location lies inside the campus boundary.
//
// Coordinates are treated as planar (lng, lat) pairs. This is a known
// approximation that only holds for small (sub-kilometre) boundaries; a
// geodesic implementation can replace Planar behind the Engine interface.
package geofence

import (
	"errors"
	"math"
)

// earthRadiusMeters is the IUGG mean radius.
const earthRadiusMeters = 6371008.8

// MinPoints is the smallest boundary that forms a polygon.
const MinPoints = 3

var ErrInvalidBoundary = errors.New("geofence boundary needs at least 3 points")

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lng float64
}

type Engine interface {
	Contains(p Point, boundary []Point) bool
	DistanceToBoundary(p Point, boundary []Point) (float64, error)
}

// Planar implements Engine with a ray-casting test over (lng, lat).
type Planar struct{}

var _ Engine = Planar{}

// Contains reports whether p lies inside or on the edge of boundary.
// Boundaries with fewer than MinPoints points never contain anything.
func (Planar) Contains(p Point, boundary []Point) bool {
	ring, ok := closeRing(boundary)
	if !ok {
		return false
	}

	inside := false
	for i := 0; i < len(ring)-1; i++ {
		a, b := ring[i], ring[i+1]
		if onSegment(p, a, b) {
			return true
		}
		// edge straddles the horizontal line through p
		if (a.Lat > p.Lat) != (b.Lat > p.Lat) {
			x := a.Lng + (p.Lat-a.Lat)*(b.Lng-a.Lng)/(b.Lat-a.Lat)
			if p.Lng < x {
				inside = !inside
			}
		}
	}
	return inside
}

// DistanceToBoundary returns the shortest distance in meters from p to any
// edge of the boundary, or 0 when p is inside. Only meant for user feedback.
func (e Planar) DistanceToBoundary(p Point, boundary []Point) (float64, error) {
	ring, ok := closeRing(boundary)
	if !ok {
		return 0, ErrInvalidBoundary
	}
	if e.Contains(p, boundary) {
		return 0, nil
	}

	// local equirectangular projection centred on p
	rad := math.Pi / 180
	kx := earthRadiusMeters * rad * math.Cos(p.Lat*rad)
	ky := earthRadiusMeters * rad
	project := func(q Point) (float64, float64) {
		return (q.Lng - p.Lng) * kx, (q.Lat - p.Lat) * ky
	}

	best := math.Inf(1)
	for i := 0; i < len(ring)-1; i++ {
		ax, ay := project(ring[i])
		bx, by := project(ring[i+1])
		if d := distanceToSegment(0, 0, ax, ay, bx, by); d < best {
			best = d
		}
	}
	return best, nil
}

// Contains is a shorthand for Planar{}.Contains.
func Contains(p Point, boundary []Point) bool {
	return Planar{}.Contains(p, boundary)
}

// DistanceToBoundary is a shorthand for Planar{}.DistanceToBoundary.
func DistanceToBoundary(p Point, boundary []Point) (float64, error) {
	return Planar{}.DistanceToBoundary(p, boundary)
}

// closeRing copies boundary and appends the first point when the ring is open.
func closeRing(boundary []Point) ([]Point, bool) {
	if len(boundary) < MinPoints {
		return nil, false
	}
	ring := make([]Point, len(boundary), len(boundary)+1)
	copy(ring, boundary)
	if first, last := ring[0], ring[len(ring)-1]; first != last {
		ring = append(ring, first)
	}
	// a closed ring still needs three distinct vertices
	if len(ring)-1 < MinPoints {
		return nil, false
	}
	return ring, true
}

func onSegment(p, a, b Point) bool {
	cross := (b.Lng-a.Lng)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lng-a.Lng)
	if cross != 0 {
		return false
	}
	return p.Lng >= math.Min(a.Lng, b.Lng) && p.Lng <= math.Max(a.Lng, b.Lng) &&
		p.Lat >= math.Min(a.Lat, b.Lat) && p.Lat <= math.Max(a.Lat, b.Lat)
}

func distanceToSegment(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}
