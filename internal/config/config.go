// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"

	"github.com/esocad/esocad/internal/geodesy"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Projection Projection `yaml:"projection" json:"projection"`
	Storage    string     `yaml:"storage,omitempty" json:"-"`
	Export     Export     `yaml:"export,omitempty" json:"-"`
}

// Projection holds the default grid settings. Requests and commands may
// override them.
type Projection struct {
	Meridian *float64      `yaml:"meridian,omitempty" json:"meridian,omitempty"`
	Width    int           `yaml:"width" json:"width"`
	Datum    geodesy.Datum `yaml:"datum" json:"datum"`
	AutoZone bool          `yaml:"auto_zone,omitempty" json:"auto_zone"`
	South    bool          `yaml:"south,omitempty" json:"south,omitempty"`
}

// Export describes a batch export run.
type Export struct {
	OutDir  string   `yaml:"out_dir,omitempty"`
	Inputs  []string `yaml:"inputs,omitempty"`
	Formats []string `yaml:"formats,omitempty"`
	Minify  bool     `yaml:"minify,omitempty"`
}

// Default returns the settings used when no file is given: 3° TM on the 33°
// meridian, ITRF96.
func Default() *Config {
	return &Config{
		Projection: Projection{
			Width:    3,
			Meridian: geodesy.Meridian(DefaultMeridian),
			Datum:    geodesy.ITRF96,
		},
		Export: Export{
			OutDir:  "out",
			Formats: []string{"txt", "kml", "geojson"},
		},
	}
}

// Load reads and parses the YAML configuration file from the specified path.
// Missing keys keep their Default values, except the meridian: a 6° grid
// without one resolves it from each longitude, a 3° grid falls back to 33°.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.Projection.Meridian = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Projection.defaultMeridian()

	if _, err := cfg.Projection.Resolve(); err != nil {
		return nil, fmt.Errorf("%s: projection: %w", path, err)
	}

	return cfg, nil
}

// DefaultMeridian is the 3° grid meridian used when none is configured.
const DefaultMeridian = 33.0

func (p *Projection) defaultMeridian() {
	if p.Meridian == nil && !p.AutoZone && (p.Width == 0 || p.Width == 3) {
		p.Meridian = geodesy.Meridian(DefaultMeridian)
	}
}

// Resolve turns the settings into a geodesy.ProjectionConfig. With AutoZone
// the configured meridian is dropped so it is derived from each longitude.
func (p Projection) Resolve() (geodesy.ProjectionConfig, error) {
	pc := geodesy.ProjectionConfig{
		GridWidth:       p.Width,
		CentralMeridian: p.Meridian,
		AutoZone:        p.AutoZone,
		Datum:           p.Datum,
		South:           p.South,
	}
	if pc.GridWidth == 0 {
		pc.GridWidth = 3
	}
	if pc.AutoZone {
		pc.CentralMeridian = nil
	}
	if pc.CentralMeridian != nil {
		m := *pc.CentralMeridian
		pc.CentralMeridian = &m
	}
	return pc, pc.Validate()
}
