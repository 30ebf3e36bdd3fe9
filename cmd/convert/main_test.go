package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/esocad/esocad/internal/geodesy"
	"github.com/esocad/esocad/internal/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestProjection_Defaults(t *testing.T) {
	p, err := projection(Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, p.GridWidth)
	require.NotNil(t, p.CentralMeridian)
	assert.Equal(t, 33.0, *p.CentralMeridian)
	assert.Equal(t, geodesy.ITRF96, p.Datum)
}

func TestProjection_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("projection:\n  width: 6\n  meridian: 27\n  datum: ED50\n"), 0644))

	p, err := projection(Options{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, 6, p.GridWidth)
	assert.Equal(t, 27.0, *p.CentralMeridian)
	assert.Equal(t, geodesy.ED50, p.Datum)

	p, err = projection(Options{ConfigFile: path, Width: 3, Meridian: "0", Datum: "ITRF96", South: true})
	require.NoError(t, err)
	assert.Equal(t, 3, p.GridWidth)
	assert.Equal(t, 0.0, *p.CentralMeridian)
	assert.Equal(t, geodesy.ITRF96, p.Datum)
	assert.True(t, p.South)

	p, err = projection(Options{ConfigFile: path, AutoZone: true})
	require.NoError(t, err)
	assert.Nil(t, p.CentralMeridian)
}

func TestProjection_Invalid(t *testing.T) {
	_, err := projection(Options{Meridian: "east"})
	assert.Error(t, err)

	_, err = projection(Options{Width: 5})
	assert.ErrorIs(t, err, geodesy.ErrGridWidth)

	_, err = projection(Options{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncode(t *testing.T) {
	codec := survey.NewCodec()
	proj, err := projection(Options{})
	require.NoError(t, err)
	points := codec.Parse("P1 487500 4420700 900\nP2 487600 4420700\n", proj).Points
	require.Len(t, points, 2)

	out, err := encode(codec, Options{Format: "txt"}, points, proj)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(out), "\n"))

	out, err = encode(codec, Options{Format: "yaml"}, points, proj)
	require.NoError(t, err)
	var back []survey.Point
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, points, back)

	full, err := encode(codec, Options{Format: "kml"}, points, proj)
	require.NoError(t, err)
	small, err := encode(codec, Options{Format: "kml", Minify: true}, points, proj)
	require.NoError(t, err)
	assert.Less(t, len(small), len(full))
	assert.Equal(t, 2, strings.Count(string(small), "<Placemark>"))
}
