// Package store keeps the working set of survey points in memory and
// snapshots it to disk.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/esocad/esocad/internal/geodesy"
	"github.com/esocad/esocad/internal/survey"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("point not found")

// Registry is an insertion-ordered set of points keyed by ID. It is safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	points []survey.Point
	index  map[string]int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add appends points. A point whose ID is already present replaces the
// stored one in place.
func (r *Registry) Add(points ...survey.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range points {
		if i, ok := r.index[p.ID]; ok {
			r.points[i] = p
			continue
		}
		r.index[p.ID] = len(r.points)
		r.points = append(r.points, p)
	}
}

// Get returns the point with the given id.
func (r *Registry) Get(id string) (survey.Point, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return survey.Point{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.points[i], nil
}

// List returns a copy of all points in insertion order.
func (r *Registry) List() []survey.Point {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.points)
}

// Len returns the number of stored points.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.points)
}

// Search returns points whose name contains term, ignoring case. An empty
// term matches everything.
func (r *Registry) Search(term string) []survey.Point {
	if term == "" {
		return r.List()
	}
	term = strings.ToLower(term)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []survey.Point
	for _, p := range r.points {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

// Edit renames and moves a point. ID and timestamp never change.
func (r *Registry) Edit(id, name string, lat, lng float64) (survey.Point, error) {
	return r.Update(id, func(p *survey.Point) error {
		p.Name, p.Lat, p.Lng = name, lat, lng
		return nil
	})
}

// Update runs fn on a copy of the stored point while holding the write lock,
// so a read-modify-write cannot interleave with other changes. Only the name
// and position set by fn are kept. An error from fn leaves the point as it
// was and is returned unchanged.
func (r *Registry) Update(id string, fn func(*survey.Point) error) (survey.Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return survey.Point{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	cur := r.points[i]
	next := cur
	if err := fn(&next); err != nil {
		return cur, err
	}
	r.points[i] = cur.Edited(next.Name, next.Lat, next.Lng)
	return r.points[i], nil
}

// Remove deletes a point.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.points = slices.Delete(r.points, i, i+1)
	r.reindex()
	return nil
}

// Selection returns the points with the given ids, in the order of ids.
func (r *Registry) Selection(ids []string) ([]survey.Point, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]survey.Point, 0, len(ids))
	for _, id := range ids {
		i, ok := r.index[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		out = append(out, r.points[i])
	}
	return out, nil
}

// SelectionArea projects the selected points in order and returns the area
// of the polygon they outline, in square meters.
func (r *Registry) SelectionArea(ids []string, cfg geodesy.ProjectionConfig) (float64, error) {
	sel, err := r.Selection(ids)
	if err != nil {
		return 0, err
	}

	reg := geodesy.NewRegistry()
	ring := make([]orb.Point, 0, len(sel))
	for _, p := range sel {
		ring = append(ring, reg.Project(p.Geo(), cfg).Vertex())
	}
	return geodesy.Area(ring), nil
}

func (r *Registry) reindex() {
	clear(r.index)
	for i, p := range r.points {
		r.index[p.ID] = i
	}
}

// Save writes the points as a JSON array, replacing path atomically.
func (r *Registry) Save(path string) error {
	data, err := json.MarshalIndent(r.List(), "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	log.Debug().Str("path", path).Int("points", r.Len()).Msg("Points saved")
	return nil
}

// Load replaces the registry contents with the snapshot at path. A missing
// file leaves the registry empty and is not an error.
func (r *Registry) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", path).Msg("No points snapshot, starting empty")
		return nil
	}
	if err != nil {
		return err
	}

	var points []survey.Point
	if err := json.Unmarshal(data, &points); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	loaded := make([]survey.Point, 0, len(points))
	index := make(map[string]int, len(points))
	for _, p := range points {
		if i, ok := index[p.ID]; ok {
			loaded[i] = p
			continue
		}
		index[p.ID] = len(loaded)
		loaded = append(loaded, p)
	}

	r.mu.Lock()
	r.points, r.index = loaded, index
	r.mu.Unlock()

	log.Info().Str("path", path).Int("points", len(loaded)).Msg("Points loaded")
	return nil
}
