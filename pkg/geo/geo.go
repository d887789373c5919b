// Package geo finds nearest neighbours between school coordinates.
package geo

import "math"

// Point is a (latitude, longitude) pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Match is the nearest candidate found for a target.
type Match struct {
	Index    int     `json:"index" yaml:"index"`
	Distance float64 `json:"distance" yaml:"distance"`
}

// Distance is the planar Euclidean distance between a and b in degrees.
// Coincident points have no distance (ok is false), so a point is never its
// own nearest neighbour when scanning a set that contains it.
func Distance(a, b Point) (float64, bool) {
	d := math.Hypot(b.Lat-a.Lat, b.Lon-a.Lon)
	if d == 0 || math.IsNaN(d) {
		return 0, false
	}
	return d, true
}

// Nearest scans every candidate and returns the closest one to target. Ties go
// to the lowest index. ok is false when no candidate has a defined distance.
func Nearest(target Point, candidates []Point) (Match, bool) {
	best := Match{Index: -1}
	for i, c := range candidates {
		d, ok := Distance(target, c)
		if !ok {
			continue
		}
		if best.Index < 0 || d < best.Distance {
			best = Match{Index: i, Distance: d}
		}
	}
	return best, best.Index >= 0
}

// NearestAll runs Nearest for every point against the whole set. This is
// quadratic in len(points).
func NearestAll(points []Point) []*Match {
	out := make([]*Match, len(points))
	for i, p := range points {
		if m, ok := Nearest(p, points); ok {
			out[i] = &m
		}
	}
	return out
}
