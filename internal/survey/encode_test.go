package survey

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/esocad/esocad/internal/geodesy"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePoints = []Point{
	{ID: "a1", Name: "ANKARA", Lat: 39.92077, Lng: 32.85411, Alt: ptr(938.25), Timestamp: 1},
	{ID: "b2", Name: "P-2", Lat: 39.921, Lng: 32.855, Timestamp: 2},
}

func TestEncodeText(t *testing.T) {
	out := testCodec().EncodeText(samplePoints, tmConfig)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	require.Len(t, lines, len(samplePoints)+1)
	assert.Equal(t, "NOKTA_ID\tAD\tY(SAĞA)\tX(YUKARI)\tZ\tSİSTEM\tDOM\tDATUM", lines[0])
	assert.Equal(t, "a1\tANKARA\t487527.501\t4420742.007\t938.250\tTM\t33\tITRF96", lines[1])

	fields := strings.Split(lines[2], "\t")
	require.Len(t, fields, 8)
	assert.Equal(t, "0.000", fields[4])
}

func TestEncodeText_UTMAndED50(t *testing.T) {
	cfg := geodesy.ProjectionConfig{GridWidth: 6, Datum: geodesy.ED50}
	out := EncodeText(samplePoints[:1], cfg)

	row := strings.Split(strings.Split(out, "\n")[1], "\t")
	assert.Equal(t, []string{"UTM", "33", "ED50"}, row[5:])
}

func TestEncodeText_RowCount(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		pts := make([]Point, n)
		for i := range pts {
			pts[i] = Point{ID: "x", Name: "n", Lat: 39, Lng: 33}
		}
		out := EncodeText(pts, tmConfig)
		assert.Equal(t, n+1, strings.Count(out, "\n"))
	}
}

func TestEncodeText_ControlCharsInNames(t *testing.T) {
	pts := []Point{
		{ID: "a", Name: "P1\nP2", Lat: 39.92, Lng: 32.85},
		{ID: "b", Name: "X\tY", Lat: 39.93, Lng: 32.86},
		{ID: "c\r", Name: "Z\r\n", Lat: 39.94, Lng: 32.87},
	}
	out := EncodeText(pts, tmConfig)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	require.Len(t, lines, len(pts)+1)
	for _, line := range lines[1:] {
		assert.Len(t, strings.Split(line, "\t"), 8, line)
		assert.NotContains(t, line, "\r")
	}
	assert.True(t, strings.HasPrefix(lines[1], "a\tP1 P2\t"))
	assert.True(t, strings.HasPrefix(lines[2], "b\tX Y\t"))
}

func TestCheckName(t *testing.T) {
	assert.NoError(t, CheckName("BM-1 (köşe)"))
	for _, bad := range []string{"a\tb", "a\nb", "a\rb"} {
		assert.ErrorIs(t, CheckName(bad), ErrName, "%q", bad)
	}
}

func TestEncodePlacemarks(t *testing.T) {
	pts := append([]Point{}, samplePoints...)
	pts = append(pts, Point{ID: "c3", Name: "A&B <3>", Lat: -1.5, Lng: 2})
	out := EncodePlacemarks(pts)

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"+`<kml xmlns="http://www.opengis.net/kml/2.2">`))
	assert.True(t, strings.HasSuffix(out, "  </Document>\n</kml>"))
	assert.Equal(t, len(pts), strings.Count(out, "<Placemark>"))
	assert.Equal(t, 1, strings.Count(out, `<Style id="surveyPoint">`))
	assert.Equal(t, len(pts), strings.Count(out, "<styleUrl>#surveyPoint</styleUrl>"))

	assert.Contains(t, out, "<name>ESOCAD Points Export</name>")
	assert.Contains(t, out, "<coordinates>32.85411,39.92077,938.25</coordinates>")
	assert.Contains(t, out, "<coordinates>32.855,39.921,0</coordinates>")
	assert.Contains(t, out, "<name>A&amp;B &lt;3&gt;</name>")
}

func TestEncodePlacemarks_Layout(t *testing.T) {
	want := `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>ESOCAD Points Export</name>
    <Style id="surveyPoint">
      <IconStyle>
        <color>ff0000ff</color>
        <scale>1.1</scale>
        <Icon>
          <href>http://maps.google.com/mapfiles/kml/shapes/placemark_circle.png</href>
        </Icon>
      </IconStyle>
    </Style>
    <Placemark>
      <name>P-2</name>
      <styleUrl>#surveyPoint</styleUrl>
      <Point>
        <coordinates>32.855,39.921,0</coordinates>
      </Point>
    </Placemark>
  </Document>
</kml>`
	assert.Equal(t, want, EncodePlacemarks(samplePoints[1:]))
}

func TestEncodeGeoJSON(t *testing.T) {
	data, err := EncodeGeoJSON(samplePoints)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)

	f := fc.Features[0]
	assert.Equal(t, orb.Point{32.85411, 39.92077}, f.Geometry)
	assert.Equal(t, "ANKARA", f.Properties.MustString("name"))
	assert.Equal(t, 938.25, f.Properties.MustFloat64("alt"))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "FeatureCollection", raw["type"])

	_, hasAlt := fc.Features[1].Properties["alt"]
	assert.False(t, hasAlt)
}

func TestPoint_Edited(t *testing.T) {
	p := samplePoints[0]
	e := p.Edited("RENAMED", 40, 33)

	assert.Equal(t, p.ID, e.ID)
	assert.Equal(t, p.Timestamp, e.Timestamp)
	assert.Equal(t, p.Alt, e.Alt)
	assert.Equal(t, "RENAMED", e.Name)
	assert.Equal(t, 40.0, e.Lat)
	assert.Equal(t, "ANKARA", p.Name)
}

func TestCodec_FromGrid(t *testing.T) {
	c := testCodec()
	grid := geodesy.Project(geodesy.GeoPoint{Lat: 39.92077, Lng: 32.85411}, tmConfig)

	p := c.FromGrid("M1", grid.East, grid.North, nil, tmConfig)
	assert.Equal(t, "p001", p.ID)
	assert.Nil(t, p.Alt)
	assert.InDelta(t, 39.92077, p.Lat, 1e-8)
	assert.InDelta(t, 32.85411, p.Lng, 1e-8)
}
