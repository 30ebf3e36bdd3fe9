package processor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/esocad/esocad/internal/config"
	"github.com/esocad/esocad/internal/geodesy"
	"github.com/esocad/esocad/internal/survey"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parcel = `K1 487500.000 4420700.000 938.2
K2 487600.000 4420700.000 940.0
K3 487600.000 4420800.000
K4,487500.000,4420800.000,941.1
broken line
`

func testCodec() *survey.Codec {
	n := 0
	return &survey.Codec{
		Registry: geodesy.NewRegistry(),
		NewID: func() string {
			n++
			return fmt.Sprintf("k%d", n)
		},
		Now: func() time.Time { return time.UnixMilli(1735689600000) },
	}
}

func writeInput(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func newTestExporter(t *testing.T, mutate func(*config.Config)) *Exporter {
	t.Helper()
	cfg := config.Default()
	cfg.Export.OutDir = filepath.Join(t.TempDir(), "out")
	if mutate != nil {
		mutate(cfg)
	}
	e, err := NewExporter(cfg, testCodec())
	require.NoError(t, err)
	return e
}

func TestExporter_Run(t *testing.T) {
	e := newTestExporter(t, nil)
	input := writeInput(t, "parcel.txt", parcel)

	sum, err := e.Run([]string{input})
	require.NoError(t, err)
	assert.Equal(t, Summary{Files: 1, Points: 4, Skipped: 1, Written: 3}, sum)

	txt, err := os.ReadFile(filepath.Join(e.OutDir, "parcel.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(txt), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, strings.TrimSuffix(survey.TextHeader, "\n"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "k1\tK1\t487500.000\t4420700.000\t938.200\tTM\t33\tITRF96"), lines[1])

	kml, err := os.ReadFile(filepath.Join(e.OutDir, "parcel.kml"))
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(kml), "<Placemark>"))

	raw, err := os.ReadFile(filepath.Join(e.OutDir, "parcel.geojson"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Len(t, doc["features"], 4)
}

func TestExporter_SkipsExistingUnlessForced(t *testing.T) {
	e := newTestExporter(t, func(c *config.Config) { c.Export.Formats = []string{"kml"} })
	input := writeInput(t, "a.txt", parcel)

	dest := filepath.Join(e.OutDir, "a.kml")
	require.NoError(t, os.MkdirAll(e.OutDir, 0755))
	require.NoError(t, os.WriteFile(dest, []byte("keep"), 0644))

	sum, err := e.Run([]string{input})
	require.NoError(t, err)
	assert.Zero(t, sum.Written)
	got, _ := os.ReadFile(dest)
	assert.Equal(t, "keep", string(got))

	e.Force = true
	sum, err = e.Run([]string{input})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Written)
	got, _ = os.ReadFile(dest)
	assert.Contains(t, string(got), "<kml")
}

func TestExporter_Failures(t *testing.T) {
	e := newTestExporter(t, nil)
	good := writeInput(t, "good.txt", parcel)
	empty := writeInput(t, "empty.txt", "nothing here\n")
	missing := filepath.Join(t.TempDir(), "missing.txt")

	sum, err := e.Run([]string{empty, good, missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid records found")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 3, sum.Files)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, 3, sum.Written)
}

func TestExporter_Minify(t *testing.T) {
	e := newTestExporter(t, func(c *config.Config) { c.Export.Minify = true })
	input := writeInput(t, "m.txt", parcel)

	_, err := e.Run([]string{input})
	require.NoError(t, err)

	kml, err := os.ReadFile(filepath.Join(e.OutDir, "m.kml"))
	require.NoError(t, err)
	plain := newTestExporter(t, func(c *config.Config) { c.Export.Formats = []string{"kml"} })
	_, err = plain.Run([]string{input})
	require.NoError(t, err)
	full, err := os.ReadFile(filepath.Join(plain.OutDir, "m.kml"))
	require.NoError(t, err)

	assert.Less(t, len(kml), len(full))
	assert.Equal(t, 4, strings.Count(string(kml), "<Placemark>"))

	raw, err := os.ReadFile(filepath.Join(e.OutDir, "m.geojson"))
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))

	txt, err := os.ReadFile(filepath.Join(e.OutDir, "m.txt"))
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(txt), "\n"))
}

func TestNewExporter_BadFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Formats = []string{"dxf"}
	_, err := NewExporter(cfg, testCodec())
	assert.ErrorIs(t, err, survey.ErrFormat)
}
