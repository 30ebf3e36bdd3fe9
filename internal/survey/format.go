package survey

import (
	"errors"
	"fmt"
	"strings"

	"github.com/esocad/esocad/internal/geodesy"
)

// Format names an export encoding.
type Format string

const (
	FormatText    Format = "txt"
	FormatKML     Format = "kml"
	FormatGeoJSON Format = "geojson"
)

var ErrFormat = errors.New("unknown export format")

// Formats lists every export format in a stable order.
func Formats() []Format { return []Format{FormatText, FormatKML, FormatGeoJSON} }

// ParseFormat accepts a format name or a file extension with its dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatText, FormatKML, FormatGeoJSON:
		return f, nil
	case "json":
		return FormatGeoJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, s)
}

// MediaType is the Content-Type of f.
func (f Format) MediaType() string {
	switch f {
	case FormatKML:
		return "application/vnd.google-earth.kml+xml"
	case FormatGeoJSON:
		return "application/geo+json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Ext is the file extension of f, with the dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode renders points in format f. cfg only matters for FormatText.
func (c *Codec) Encode(f Format, points []Point, cfg geodesy.ProjectionConfig) ([]byte, error) {
	switch f {
	case FormatText:
		return []byte(c.EncodeText(points, cfg)), nil
	case FormatKML:
		return []byte(EncodePlacemarks(points)), nil
	case FormatGeoJSON:
		return EncodeGeoJSON(points)
	}
	return nil, fmt.Errorf("%w: %q", ErrFormat, string(f))
}
