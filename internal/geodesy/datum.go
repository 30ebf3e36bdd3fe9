package geodesy

import "math"

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)

// GeoPoint is a geographic position in degrees. Alt is optional and is carried
// through every conversion untouched.
type GeoPoint struct {
	Lat float64  `json:"lat"`
	Lng float64  `json:"lng"`
	Alt *float64 `json:"alt,omitempty"`
}

// Direction selects which way Shift moves a point between the two datums.
type Direction int

const (
	// Forward moves ITRF96 coordinates onto ED50.
	Forward Direction = iota
	// Reverse moves ED50 coordinates back onto ITRF96.
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Shift applies the abridged Molodensky transformation with ellipsoidal
// height zero. Radii of curvature are taken on the native ellipsoid.
//
// Reverse negates the translation and the ellipsoid differences together, so
// Shift(Shift(p, Forward), Reverse) returns p to within about 1e-8 degrees.
func (r Registry) Shift(p GeoPoint, dir Direction) GeoPoint {
	phi := p.Lat * deg2rad
	lam := p.Lng * deg2rad

	a := r.Native.SemiMajorAxis
	f := r.Native.Flattening
	e2 := r.Native.E2()

	dx, dy, dz := r.Translation.DX, r.Translation.DY, r.Translation.DZ
	da := r.Shifted.SemiMajorAxis - a
	df := r.Shifted.Flattening - f
	if dir == Reverse {
		dx, dy, dz, da, df = -dx, -dy, -dz, -da, -df
	}

	sinPhi, cosPhi := math.Sincos(phi)
	sinLam, cosLam := math.Sincos(lam)

	w := 1 - e2*sinPhi*sinPhi
	n := a / math.Sqrt(w)
	m := a * (1 - e2) / math.Pow(w, 1.5)

	dPhi := (-dx*sinPhi*cosLam - dy*sinPhi*sinLam + dz*cosPhi +
		(a*df+f*da)*math.Sin(2*phi)) / m
	dLam := (-dx*sinLam + dy*cosLam) / (n * cosPhi)

	return GeoPoint{
		Lat: p.Lat + dPhi*rad2deg,
		Lng: p.Lng + dLam*rad2deg,
		Alt: p.Alt,
	}
}

// Shift is Registry.Shift on NewRegistry.
func Shift(p GeoPoint, dir Direction) GeoPoint {
	return NewRegistry().Shift(p, dir)
}
