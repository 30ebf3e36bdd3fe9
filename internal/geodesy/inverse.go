package geodesy

import "math"

// Unproject converts grid coordinates back to a geographic point on ITRF96.
//
// The meridian comes from cfg.CentralMeridian when set, otherwise from
// p.Meridian. The false northing is removed when p.South or cfg.South is set.
// With Datum ED50 the grid is read on the Hayford ellipsoid and the result is
// shifted back, so callers always receive ITRF96 coordinates.
func (r Registry) Unproject(p ProjectedPoint, cfg ProjectionConfig) GeoPoint {
	ell := r.Ellipsoid(cfg.Datum)
	k0 := cfg.ScaleFactor()

	meridian := p.Meridian
	if cfg.CentralMeridian != nil {
		meridian = *cfg.CentralMeridian
	}

	x := p.East - FalseEasting
	y := p.North
	if p.South || cfg.South {
		y -= FalseNorthing
	}

	phi, dLam := snyderInverse(ell, k0, x, y)

	out := GeoPoint{Lat: phi * rad2deg, Lng: meridian + dLam*rad2deg}
	if cfg.Datum == ED50 {
		out = r.Shift(out, Reverse)
	}
	return out
}

// snyderInverse returns latitude and longitude offset from the central
// meridian, both in radians, for false-origin-free grid coordinates.
func snyderInverse(ell Ellipsoid, k0, x, y float64) (float64, float64) {
	a := ell.SemiMajorAxis
	e2 := ell.E2()
	e4 := e2 * e2
	e6 := e4 * e2
	ep2 := ell.EP2()

	mu := (y / k0) / (a * (1 - e2/4 - 3*e4/64 - 5*e6/256))

	s := math.Sqrt(1 - e2)
	e1 := (1 - s) / (1 + s)
	e1p2 := e1 * e1
	e1p3 := e1p2 * e1
	e1p4 := e1p2 * e1p2

	phi1 := mu +
		(3*e1/2-27*e1p3/32)*math.Sin(2*mu) +
		(21*e1p2/16-55*e1p4/32)*math.Sin(4*mu) +
		(151*e1p3/96)*math.Sin(6*mu)

	sin1, cos1 := math.Sincos(phi1)
	tan1 := sin1 / cos1
	w := 1 - e2*sin1*sin1

	C1 := ep2 * cos1 * cos1
	T1 := tan1 * tan1
	N1 := a / math.Sqrt(w)
	R1 := a * (1 - e2) / math.Pow(w, 1.5)
	D := x / (N1 * k0)

	D2 := D * D
	D3 := D2 * D
	D4 := D2 * D2
	D5 := D4 * D
	D6 := D3 * D3

	phi := phi1 - (N1*tan1/R1)*(D2/2-
		(5+3*T1+10*C1-4*C1*C1-9*ep2)*D4/24+
		(61+90*T1+298*C1+45*T1*T1-252*ep2-3*C1*C1)*D6/720)

	dLam := (D -
		(1+2*T1+C1)*D3/6 +
		(5-2*C1+28*T1-3*C1*C1+8*ep2+24*T1*T1)*D5/120) / cos1

	return phi, dLam
}

// Unproject is Registry.Unproject on NewRegistry.
func Unproject(p ProjectedPoint, cfg ProjectionConfig) GeoPoint {
	return NewRegistry().Unproject(p, cfg)
}
