package geodesy

import (
	"math"

	"github.com/paulmach/orb"
)

// Area returns the planar area in square meters of the polygon whose vertices
// are given in order as orb.Point{east, north}. The ring is closed implicitly.
//
// Fewer than three vertices give 0. Self-intersecting rings are not detected
// and give the net signed area in absolute value.
func Area(vertices []orb.Point) float64 {
	if len(vertices) < 3 {
		return 0
	}

	var sum float64
	for i, v := range vertices {
		next := vertices[(i+1)%len(vertices)]
		sum += v[0]*next[1] - next[0]*v[1]
	}
	return math.Abs(sum) / 2
}

// Vertex returns p as an orb.Point{east, north}.
func (p ProjectedPoint) Vertex() orb.Point {
	return orb.Point{p.East, p.North}
}

// Decare converts square meters to decares (dönüm).
func Decare(m2 float64) float64 {
	return m2 / 1000
}
