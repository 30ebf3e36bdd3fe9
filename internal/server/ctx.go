package server

import (
	"bytes"
	"encoding/json"

	"github.com/esocad/esocad/internal/config"
	"github.com/esocad/esocad/internal/geodesy"
	"github.com/esocad/esocad/internal/processor"
	"github.com/esocad/esocad/internal/store"
	"github.com/esocad/esocad/internal/survey"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config     *config.Config
	Projection geodesy.ProjectionConfig
	Codec      *survey.Codec
	Points     *store.Registry

	minifier *minify.M
}

// NewServerContext resolves the default projection and wires the point
// registry. Points are persisted to cfg.Storage after every change when it is
// set.
func NewServerContext(cfg *config.Config, codec *survey.Codec, points *store.Registry) (*ServerContext, error) {
	proj, err := cfg.Projection.Resolve()
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("grid_width", proj.GridWidth).
		Str("system", proj.System()).
		Stringer("datum", proj.Datum).
		Bool("auto_zone", proj.AutoZone).
		Int("points", points.Len()).
		Str("storage", cfg.Storage).
		Msg("Server context initialized")

	return &ServerContext{
		Config:     cfg,
		Projection: proj,
		Codec:      codec,
		Points:     points,
		minifier:   processor.NewMinifier(),
	}, nil
}

// projection returns the server default, or the default with the fields of
// override laid over it. Fields the override leaves out keep the default.
func (s *ServerContext) projection(override json.RawMessage) (geodesy.ProjectionConfig, error) {
	if len(override) == 0 || string(override) == "null" {
		return s.Projection, nil
	}

	p := s.Config.Projection
	if p.Meridian != nil {
		m := *p.Meridian
		p.Meridian = &m
	}

	dec := json.NewDecoder(bytes.NewReader(override))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return geodesy.ProjectionConfig{}, err
	}
	return p.Resolve()
}

// persist saves the registry snapshot. Failures are logged; the in-memory
// state stays authoritative.
func (s *ServerContext) persist() {
	if s.Config.Storage == "" {
		return
	}
	if err := s.Points.Save(s.Config.Storage); err != nil {
		log.Error().Err(err).Str("path", s.Config.Storage).Msg("Failed to save points")
	}
}
