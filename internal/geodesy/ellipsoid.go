// Package geodesy converts between geographic and Transverse Mercator grid
// coordinates for the ITRF96 and ED50 reference systems.
//
// Every function in this package is pure: no I/O, no shared state.
package geodesy

import (
	"errors"
	"fmt"
	"strings"
)

// Ellipsoid is a reference ellipsoid given by its semi-major axis (meters)
// and flattening.
type Ellipsoid struct {
	SemiMajorAxis float64
	Flattening    float64
}

const (
	grs80A    = 6378137.0
	grs80Rf   = 298.257222101
	hayfordA  = 6378388.0
	hayfordRf = 297.0
)

// GRS80 returns the ellipsoid of ITRF96.
func GRS80() Ellipsoid { return Ellipsoid{SemiMajorAxis: grs80A, Flattening: 1 / grs80Rf} }

// Hayford returns the International 1924 ellipsoid used by ED50.
func Hayford() Ellipsoid { return Ellipsoid{SemiMajorAxis: hayfordA, Flattening: 1 / hayfordRf} }

// E2 returns the first eccentricity squared.
func (e Ellipsoid) E2() float64 {
	f := e.Flattening
	return 2*f - f*f
}

// EP2 returns the second eccentricity squared.
func (e Ellipsoid) EP2() float64 {
	e2 := e.E2()
	return e2 / (1 - e2)
}

// ThirdFlattening returns n = f/(2-f).
func (e Ellipsoid) ThirdFlattening() float64 {
	return e.Flattening / (2 - e.Flattening)
}

// ShiftVector is a geocentric translation in meters.
type ShiftVector struct {
	DX, DY, DZ float64
}

// TurkeyShift returns the average ITRF96 -> ED50 translation for Turkey.
// It is a single-region average, not a national transformation grid.
func TurkeyShift() ShiftVector { return ShiftVector{DX: -84.1, DY: -102.3, DZ: -129.8} }

// Datum selects the reference system of geographic input and grid output.
type Datum int

const (
	// ITRF96 is the native reference, geographic coordinates are given on it.
	ITRF96 Datum = iota
	// ED50 is the legacy regional reference reached through Shift.
	ED50
)

var ErrDatum = errors.New("unknown datum")

func (d Datum) String() string {
	switch d {
	case ITRF96:
		return "ITRF96"
	case ED50:
		return "ED50"
	default:
		return fmt.Sprintf("Datum(%d)", int(d))
	}
}

// ParseDatum accepts the datum tag case-insensitively.
func ParseDatum(s string) (Datum, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ITRF96", "":
		return ITRF96, nil
	case "ED50":
		return ED50, nil
	}
	return ITRF96, fmt.Errorf("%w: %q", ErrDatum, s)
}

func (d Datum) MarshalText() ([]byte, error) {
	if d != ITRF96 && d != ED50 {
		return nil, fmt.Errorf("%w: %d", ErrDatum, int(d))
	}
	return []byte(d.String()), nil
}

func (d *Datum) UnmarshalText(text []byte) error {
	v, err := ParseDatum(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Registry holds the two reference ellipsoids and the shift between them.
// Methods take the receiver by value.
type Registry struct {
	Native      Ellipsoid
	Shifted     Ellipsoid
	Translation ShiftVector
}

// NewRegistry returns the ITRF96/GRS80 and ED50/Hayford pair with the Turkey
// average shift.
func NewRegistry() Registry {
	return Registry{Native: GRS80(), Shifted: Hayford(), Translation: TurkeyShift()}
}

// Ellipsoid returns the ellipsoid grid coordinates of d are computed on.
func (r Registry) Ellipsoid(d Datum) Ellipsoid {
	if d == ED50 {
		return r.Shifted
	}
	return r.Native
}
