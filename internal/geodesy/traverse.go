package geodesy

import "math"

// TraverseResult is the grid distance and bearing from one point to another.
type TraverseResult struct {
	Distance   float64 `json:"distance"`
	Azimuth    float64 `json:"azimuth"`
	AzimuthGon float64 `json:"azimuth_gon"`
}

// Traverse solves the inverse survey problem on the grid plane: distance and
// azimuth clockwise from grid north, in degrees [0, 360) and gon [0, 400).
// Coincident points give zero for all three.
func Traverse(from, to ProjectedPoint) TraverseResult {
	dy := to.East - from.East
	dx := to.North - from.North

	theta := math.Atan2(dy, dx)

	az := theta * rad2deg
	if az < 0 {
		az += 360
	}
	gon := theta * 200 / math.Pi
	if gon < 0 {
		gon += 400
	}

	return TraverseResult{
		Distance:   math.Hypot(dx, dy),
		Azimuth:    az,
		AzimuthGon: gon,
	}
}

// DMSToDecimal converts degrees, minutes and seconds to decimal degrees. The
// sign of deg applies to the whole angle.
func DMSToDecimal(deg, minutes, seconds float64) float64 {
	v := math.Abs(deg) + math.Abs(minutes)/60 + math.Abs(seconds)/3600
	if math.Signbit(deg) {
		return -v
	}
	return v
}
