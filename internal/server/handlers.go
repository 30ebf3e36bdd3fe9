// Package server exposes the grid computations and the point registry as a
// JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/esocad/esocad/internal/config"
	"github.com/esocad/esocad/internal/geodesy"
	"github.com/esocad/esocad/internal/processor"
	"github.com/esocad/esocad/internal/store"
	"github.com/esocad/esocad/internal/survey"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

const maxBodySize = 8 << 20

// Routes registers every API endpoint on a new mux.
func (s *ServerContext) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/config", s.HandleConfig)
	mux.HandleFunc("POST /api/project", s.HandleProject)
	mux.HandleFunc("POST /api/unproject", s.HandleUnproject)
	mux.HandleFunc("POST /api/area", s.HandleArea)
	mux.HandleFunc("POST /api/traverse", s.HandleTraverse)
	mux.HandleFunc("GET /api/points", s.HandlePointsList)
	mux.HandleFunc("POST /api/points", s.HandlePointsAdd)
	mux.HandleFunc("POST /api/points/import", s.HandlePointsImport)
	mux.HandleFunc("POST /api/points/area", s.HandlePointsArea)
	mux.HandleFunc("PATCH /api/points/{id}", s.HandlePointEdit)
	mux.HandleFunc("DELETE /api/points/{id}", s.HandlePointRemove)
	mux.HandleFunc("GET /api/export/{format}", s.HandleExport)
	return mux
}

type configResponse struct {
	Projection  config.Projection `json:"projection"`
	System      string            `json:"system"`
	ScaleFactor float64           `json:"scale_factor"`
}

// HandleConfig serves the default projection settings.
func (s *ServerContext) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{
		Projection:  s.Config.Projection,
		System:      s.Projection.System(),
		ScaleFactor: s.Projection.ScaleFactor(),
	})
}

type projectRequest struct {
	Lat        float64         `json:"lat"`
	Lng        float64         `json:"lng"`
	Alt        *float64        `json:"alt,omitempty"`
	Projection json.RawMessage `json:"projection,omitempty"`
}

type projectResponse struct {
	geodesy.ProjectedPoint
	Alt    *float64      `json:"alt,omitempty"`
	System string        `json:"system"`
	Datum  geodesy.Datum `json:"datum"`
}

// HandleProject converts a geographic point to grid coordinates.
func (s *ServerContext) HandleProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := checkGeo(req.Lat, req.Lng); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, ok := s.resolve(w, req.Projection)
	if !ok {
		return
	}

	p := s.Codec.Registry.Project(geodesy.GeoPoint{Lat: req.Lat, Lng: req.Lng, Alt: req.Alt}, cfg)
	writeJSON(w, http.StatusOK, projectResponse{
		ProjectedPoint: p,
		Alt:            req.Alt,
		System:         cfg.System(),
		Datum:          cfg.Datum,
	})
}

type unprojectRequest struct {
	East       float64         `json:"east"`
	North      float64         `json:"north"`
	Alt        *float64        `json:"alt,omitempty"`
	Meridian   *float64        `json:"meridian,omitempty"`
	South      bool            `json:"south,omitempty"`
	Projection json.RawMessage `json:"projection,omitempty"`
}

// HandleUnproject converts grid coordinates to a geographic point. A meridian
// in the request wins over the configured one.
func (s *ServerContext) HandleUnproject(w http.ResponseWriter, r *http.Request) {
	var req unprojectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cfg, ok := s.resolve(w, req.Projection)
	if !ok {
		return
	}
	if req.Meridian != nil {
		cfg.CentralMeridian = req.Meridian
	}

	g := s.Codec.Registry.Unproject(geodesy.ProjectedPoint{
		East:     req.East,
		North:    req.North,
		Meridian: survey.DefaultMeridian,
		South:    req.South,
	}, cfg)
	g.Alt = req.Alt
	writeJSON(w, http.StatusOK, g)
}

type areaRequest struct {
	Vertices []orb.Point `json:"vertices"`
}

type areaResponse struct {
	Area   float64 `json:"area"`
	Decare float64 `json:"decare"`
}

// HandleArea returns the area of a polygon given as [east, north] pairs.
func (s *ServerContext) HandleArea(w http.ResponseWriter, r *http.Request) {
	var req areaRequest
	if !decodeBody(w, r, &req) {
		return
	}
	a := geodesy.Area(req.Vertices)
	writeJSON(w, http.StatusOK, areaResponse{Area: a, Decare: geodesy.Decare(a)})
}

type traverseRequest struct {
	From geodesy.ProjectedPoint `json:"from"`
	To   geodesy.ProjectedPoint `json:"to"`
}

// HandleTraverse returns the grid distance and azimuth between two points.
func (s *ServerContext) HandleTraverse(w http.ResponseWriter, r *http.Request) {
	var req traverseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, geodesy.Traverse(req.From, req.To))
}

// HandlePointsList lists stored points, filtered by name with ?q=.
func (s *ServerContext) HandlePointsList(w http.ResponseWriter, r *http.Request) {
	points := s.Points.Search(r.URL.Query().Get("q"))
	if points == nil {
		points = []survey.Point{}
	}
	writeJSON(w, http.StatusOK, points)
}

type addPointRequest struct {
	Name        string          `json:"name"`
	East        float64         `json:"east"`
	North       float64         `json:"north"`
	Alt         *float64        `json:"alt,omitempty"`
	Description string          `json:"description,omitempty"`
	Projection  json.RawMessage `json:"projection,omitempty"`
}

// HandlePointsAdd stores a point entered as grid coordinates.
func (s *ServerContext) HandlePointsAdd(w http.ResponseWriter, r *http.Request) {
	var req addPointRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := survey.CheckName(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, ok := s.resolve(w, req.Projection)
	if !ok {
		return
	}

	p := s.Codec.FromGrid(req.Name, req.East, req.North, req.Alt, cfg)
	p.Description = req.Description
	s.Points.Add(p)
	s.persist()

	log.Debug().Str("id", p.ID).Str("name", p.Name).Msg("Point added")
	writeJSON(w, http.StatusCreated, p)
}

type importResponse struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// HandlePointsImport parses a point list from the request body with the
// default projection.
func (s *ServerContext) HandlePointsImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read failure")
		return
	}

	res := s.Codec.Parse(string(body), s.Projection)
	if len(res.Points) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "no valid records found")
		return
	}

	s.Points.Add(res.Points...)
	s.persist()

	log.Info().
		Int("added", len(res.Points)).
		Int("skipped", res.Skipped).
		Msg("Points imported")
	writeJSON(w, http.StatusOK, importResponse{Added: len(res.Points), Skipped: res.Skipped})
}

type editRequest struct {
	Name       *string         `json:"name,omitempty"`
	Lat        *float64        `json:"lat,omitempty"`
	Lng        *float64        `json:"lng,omitempty"`
	East       *float64        `json:"east,omitempty"`
	North      *float64        `json:"north,omitempty"`
	Projection json.RawMessage `json:"projection,omitempty"`
}

// HandlePointEdit renames or moves a point. The position is given either as
// lat/lng or as east/north grid coordinates; omitted fields keep their value.
func (s *ServerContext) HandlePointEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req editRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Name != nil {
		if err := survey.CheckName(*req.Name); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	grid := req.East != nil || req.North != nil
	if grid {
		if req.East == nil || req.North == nil {
			writeError(w, http.StatusBadRequest, "east and north must be given together")
			return
		}
		if req.Lat != nil || req.Lng != nil {
			writeError(w, http.StatusBadRequest, "give either lat/lng or east/north")
			return
		}
		cfg, ok := s.resolve(w, req.Projection)
		if !ok {
			return
		}
		g := s.Codec.GridToGeo(*req.East, *req.North, cfg)
		req.Lat, req.Lng = &g.Lat, &g.Lng
	}

	var invalid error
	p, err := s.Points.Update(id, func(p *survey.Point) error {
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Lat != nil {
			p.Lat = *req.Lat
		}
		if req.Lng != nil {
			p.Lng = *req.Lng
		}
		invalid = checkGeo(p.Lat, p.Lng)
		return invalid
	})
	if invalid != nil {
		writeError(w, http.StatusBadRequest, invalid.Error())
		return
	}
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.persist()
	writeJSON(w, http.StatusOK, p)
}

// HandlePointRemove deletes a point.
func (s *ServerContext) HandlePointRemove(w http.ResponseWriter, r *http.Request) {
	if err := s.Points.Remove(r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	s.persist()
	w.WriteHeader(http.StatusNoContent)
}

type selectionRequest struct {
	IDs        []string        `json:"ids"`
	Projection json.RawMessage `json:"projection,omitempty"`
}

// HandlePointsArea returns the area outlined by the selected points in the
// order given.
func (s *ServerContext) HandlePointsArea(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cfg, ok := s.resolve(w, req.Projection)
	if !ok {
		return
	}

	a, err := s.Points.SelectionArea(req.IDs, cfg)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, areaResponse{Area: a, Decare: geodesy.Decare(a)})
}

// HandleExport renders the stored points, filtered by ?q=, as a download.
// ?minify=true compacts KML and GeoJSON.
func (s *ServerContext) HandleExport(w http.ResponseWriter, r *http.Request) {
	f, err := survey.ParseFormat(r.PathValue("format"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	doc, err := s.Codec.Encode(f, s.Points.Search(r.URL.Query().Get("q")), s.Projection)
	if err != nil {
		log.Error().Err(err).Str("format", string(f)).Msg("Failed to encode export")
		writeError(w, http.StatusInternalServerError, "encode failure")
		return
	}

	if v := r.URL.Query().Get("minify"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid minify value")
			return
		}
		if on {
			if doc, err = processor.Minify(s.minifier, f, doc); err != nil {
				log.Error().Err(err).Str("format", string(f)).Msg("Failed to minify export")
				writeError(w, http.StatusInternalServerError, "encode failure")
				return
			}
		}
	}

	w.Header().Set("Content-Type", f.MediaType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="points%s"`, f.Ext()))
	_, _ = w.Write(doc)
}

// resolve picks the request projection and writes a 400 when it is invalid.
func (s *ServerContext) resolve(w http.ResponseWriter, override json.RawMessage) (geodesy.ProjectionConfig, bool) {
	cfg, err := s.projection(override)
	if err != nil {
		writeError(w, http.StatusBadRequest, "projection: "+err.Error())
		return cfg, false
	}
	return cfg, true
}

func checkGeo(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("lat %v out of range [-90, 90]", lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("lng %v out of range [-180, 180]", lng)
	}
	return nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(v)
}
