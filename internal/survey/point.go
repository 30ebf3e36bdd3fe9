// Package survey reads and writes survey point lists: the whitespace/comma
// separated import format, the tab-delimited grid table, KML placemarks and
// GeoJSON.
package survey

import (
	"time"

	"github.com/esocad/esocad/internal/geodesy"

	"github.com/gofrs/uuid/v5"
)

// Point is a surveyed or imported point on ITRF96. ID and Timestamp are set
// once at creation.
type Point struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Lat         float64  `json:"lat" yaml:"lat"`
	Lng         float64  `json:"lng" yaml:"lng"`
	Alt         *float64 `json:"alt,omitempty" yaml:"alt,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Timestamp   int64    `json:"timestamp" yaml:"timestamp"`
}

// Geo returns the point's geographic position.
func (p Point) Geo() geodesy.GeoPoint {
	return geodesy.GeoPoint{Lat: p.Lat, Lng: p.Lng, Alt: p.Alt}
}

// Edited returns a copy of p with a new name and position. ID, Timestamp,
// altitude and description are kept.
func (p Point) Edited(name string, lat, lng float64) Point {
	p.Name = name
	p.Lat = lat
	p.Lng = lng
	return p
}

// AltOrZero returns the altitude, 0 when absent.
func (p Point) AltOrZero() float64 {
	if p.Alt == nil {
		return 0
	}
	return *p.Alt
}

// Codec creates points. NewID and Now are swapped out in tests.
type Codec struct {
	Registry geodesy.Registry
	NewID    func() string
	Now      func() time.Time
}

// NewCodec returns a Codec with random UUID identifiers and the wall clock.
func NewCodec() *Codec {
	return &Codec{
		Registry: geodesy.NewRegistry(),
		NewID:    func() string { return uuid.Must(uuid.NewV4()).String() },
		Now:      time.Now,
	}
}

// NewPoint stamps a fresh identity on a geographic position.
func (c *Codec) NewPoint(name string, g geodesy.GeoPoint) Point {
	return Point{
		ID:        c.NewID(),
		Name:      name,
		Lat:       g.Lat,
		Lng:       g.Lng,
		Alt:       g.Alt,
		Timestamp: c.Now().UnixMilli(),
	}
}

// FromGrid creates a point from grid coordinates entered by hand.
func (c *Codec) FromGrid(name string, east, north float64, alt *float64, cfg geodesy.ProjectionConfig) Point {
	g := c.GridToGeo(east, north, cfg)
	g.Alt = alt
	return c.NewPoint(name, g)
}

// GridToGeo converts hand-entered grid coordinates to a geographic position.
func (c *Codec) GridToGeo(east, north float64, cfg geodesy.ProjectionConfig) geodesy.GeoPoint {
	return c.Registry.Unproject(gridPoint(east, north, cfg), cfg)
}

// DefaultMeridian is used for grid input when the configuration fixes no
// central meridian.
const DefaultMeridian = 33.0

func gridPoint(east, north float64, cfg geodesy.ProjectionConfig) geodesy.ProjectedPoint {
	return geodesy.ProjectedPoint{
		East:     east,
		North:    north,
		Meridian: DefaultMeridian,
		South:    cfg.South,
	}
}
