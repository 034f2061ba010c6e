// Package face compares face descriptors and manages each student's enrollment.
// Descriptors are produced by the client-side model; this package never extracts them.
package face

import "math"

const (
	// DefaultThreshold is the accepted operating point: distance <= 0.6 matches.
	DefaultThreshold = 0.6
	// DefaultDescriptorLength is what the extraction model emits.
	DefaultDescriptorLength = 128
	// MismatchDistance is reported when two descriptors cannot be compared.
	MismatchDistance = 1.0
)

type Descriptor []float64

// Valid reports whether every component is a finite number.
func (d Descriptor) Valid() bool {
	for _, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// EuclideanDistance returns the L2 distance between a and b. ok is false when
// the vectors are empty, differ in length or produce a non-finite result.
func EuclideanDistance(a, b Descriptor) (dist float64, ok bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	dist = math.Sqrt(sum)
	if math.IsNaN(dist) || math.IsInf(dist, 0) {
		return 0, false
	}
	return dist, true
}

// Match is the outcome of comparing a submitted descriptor with the stored one.
type Match struct {
	Distance  float64
	Threshold float64
	Matched   bool
}

// Score is 1 - distance. It is not clamped, so outlier distances yield
// scores outside [0, 1].
func (m Match) Score() float64 { return 1 - m.Distance }

// Compare accepts when distance <= threshold. Incomparable descriptors are
// reported at MismatchDistance and never match, whatever the threshold.
func Compare(stored, submitted Descriptor, threshold float64) Match {
	d, ok := EuclideanDistance(stored, submitted)
	if !ok {
		return Match{Distance: MismatchDistance, Threshold: threshold, Matched: false}
	}
	return Match{Distance: d, Threshold: threshold, Matched: d <= threshold}
}
