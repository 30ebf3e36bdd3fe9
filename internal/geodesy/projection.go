package geodesy

import (
	"errors"
	"fmt"
	"math"
)

const (
	// FalseEasting is added to every grid easting.
	FalseEasting = 500000.0
	// FalseNorthing is added to southern-hemisphere grid northings.
	FalseNorthing = 10000000.0

	// UTMScale is k0 on 6° zones, TMScale on 3° zones.
	UTMScale = 0.9996
	TMScale  = 1.0
)

var ErrGridWidth = errors.New("grid width must be 3 or 6")

// ProjectionConfig selects the grid a point is projected onto.
//
// GridWidth 6 is the UTM convention (k0 0.9996), any other value is treated
// as the 3° TM convention (k0 1.0). A non-nil CentralMeridian always wins over
// the meridian derived from longitude, including a meridian of 0.
type ProjectionConfig struct {
	GridWidth       int      `json:"width" yaml:"width"`
	CentralMeridian *float64 `json:"meridian,omitempty" yaml:"meridian,omitempty"`
	AutoZone        bool     `json:"auto_zone,omitempty" yaml:"auto_zone,omitempty"`
	Datum           Datum    `json:"datum" yaml:"datum"`
	South           bool     `json:"south,omitempty" yaml:"south,omitempty"`
}

// Meridian returns a pointer to m, for filling ProjectionConfig.CentralMeridian.
func Meridian(m float64) *float64 { return &m }

// Validate reports configurations the outer layers should refuse.
func (c ProjectionConfig) Validate() error {
	if c.GridWidth != 3 && c.GridWidth != 6 {
		return fmt.Errorf("%w: got %d", ErrGridWidth, c.GridWidth)
	}
	if c.Datum != ITRF96 && c.Datum != ED50 {
		return fmt.Errorf("%w: %d", ErrDatum, int(c.Datum))
	}
	return nil
}

// ScaleFactor returns k0 for the grid width.
func (c ProjectionConfig) ScaleFactor() float64 {
	if c.GridWidth == 6 {
		return UTMScale
	}
	return TMScale
}

// System returns the grid label written to exports: "UTM" or "TM".
func (c ProjectionConfig) System() string {
	if c.GridWidth == 6 {
		return "UTM"
	}
	return "TM"
}

// ResolveMeridian returns the central meridian used for a point at lng.
func (c ProjectionConfig) ResolveMeridian(lng float64) float64 {
	if c.CentralMeridian != nil {
		return *c.CentralMeridian
	}
	if c.GridWidth == 6 {
		return math.Floor(lng/6)*6 + 3
	}
	// half-up, so -1.5° resolves to 0 and not -3
	return math.Floor(lng/3+0.5) * 3
}

// ResolveZone returns the zone number for a point at lng on meridian.
func (c ProjectionConfig) ResolveZone(lng, meridian float64) int {
	if c.GridWidth == 6 {
		return int(math.Floor((lng+180)/6)) + 1
	}
	return int(meridian / 3)
}

// ProjectedPoint is a grid position in meters. South is set when the false
// northing was applied.
type ProjectedPoint struct {
	East     float64 `json:"east"`
	North    float64 `json:"north"`
	Zone     int     `json:"zone"`
	Meridian float64 `json:"meridian"`
	South    bool    `json:"south,omitempty"`
}

// Project converts a geographic point on ITRF96 to grid coordinates. With
// Datum ED50 the point is shifted first and projected on the Hayford
// ellipsoid.
//
// Inputs outside ±90°/±180°, and points far beyond one zone width from the
// meridian, are not checked and give meaningless results.
func (r Registry) Project(p GeoPoint, cfg ProjectionConfig) ProjectedPoint {
	calc := p
	if cfg.Datum == ED50 {
		calc = r.Shift(p, Forward)
	}

	meridian := cfg.ResolveMeridian(calc.Lng)
	zone := cfg.ResolveZone(calc.Lng, meridian)
	k0 := cfg.ScaleFactor()

	xi, eta := kruger(r.Ellipsoid(cfg.Datum), calc.Lat*deg2rad, calc.Lng*deg2rad-meridian*deg2rad)

	out := ProjectedPoint{
		East:     k0*eta + FalseEasting,
		North:    k0 * xi,
		Zone:     zone,
		Meridian: meridian,
	}
	if out.North < 0 {
		out.North += FalseNorthing
		out.South = true
	}
	return out
}

// kruger evaluates the third-order Krüger series and returns the scaled
// northing and easting (A·ξ, A·η) for unit scale factor.
func kruger(ell Ellipsoid, phi, dLam float64) (float64, float64) {
	n := ell.ThirdFlattening()
	n2 := n * n
	n3 := n2 * n
	n4 := n2 * n2

	A := ell.SemiMajorAxis / (1 + n) * (1 + n2/4 + n4/64)
	alpha := [3]float64{
		n/2 - 2*n2/3 + 5*n3/16,
		13*n2/48 - 3*n3/5,
		61 * n3 / 240,
	}

	c := 2 * math.Sqrt(n) / (1 + n)
	sinPhi := math.Sin(phi)
	t := math.Sinh(math.Atanh(sinPhi) - c*math.Atanh(c*sinPhi))

	xiP := math.Atan(t / math.Cos(dLam))
	etaP := math.Atanh(math.Sin(dLam) / math.Sqrt(1+t*t))

	xi, eta := xiP, etaP
	for j, a := range alpha {
		k := float64(2 * (j + 1))
		xi += a * math.Sin(k*xiP) * math.Cosh(k*etaP)
		eta += a * math.Cos(k*xiP) * math.Sinh(k*etaP)
	}
	return A * xi, A * eta
}

// Project is Registry.Project on NewRegistry.
func Project(p GeoPoint, cfg ProjectionConfig) ProjectedPoint {
	return NewRegistry().Project(p, cfg)
}
