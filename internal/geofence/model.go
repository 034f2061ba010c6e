package geofence

// BoundaryPoint は geofence_points テーブルの1行
type BoundaryPoint struct {
	SequenceOrder int     `json:"sequenceOrder"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
}

func (b BoundaryPoint) Point() Point {
	return Point{Lat: b.Latitude, Lng: b.Longitude}
}

// Polygon converts ordered boundary rows into engine points.
func Polygon(rows []BoundaryPoint) []Point {
	out := make([]Point, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Point())
	}
	return out
}

type CheckResponse struct {
	Inside         bool    `json:"inside"`
	DistanceMeters float64 `json:"distanceMeters"`
}
