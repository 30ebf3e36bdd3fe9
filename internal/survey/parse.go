package survey

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/esocad/esocad/internal/geodesy"
)

// ParseResult is the outcome of reading a point list. Skipped counts
// non-blank lines that were dropped as malformed.
type ParseResult struct {
	Points  []Point `json:"points"`
	Skipped int     `json:"skipped"`
}

// Parse reads lines of "NAME Y X [Z]" separated by any run of spaces, tabs or
// commas. Y is the grid easting and X the grid northing; both are converted
// with cfg. A line with fewer than three fields or a non-numeric Y or X is
// skipped. A missing or non-numeric Z reads as 0.
func (c *Codec) Parse(text string, cfg geodesy.ProjectionConfig) ParseResult {
	var res ParseResult
	for _, line := range strings.Split(text, "\n") {
		fields := strings.FieldsFunc(line, isSeparator)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 3 {
			res.Skipped++
			continue
		}

		y, okY := parseCoord(fields[1])
		x, okX := parseCoord(fields[2])
		if !okY || !okX {
			res.Skipped++
			continue
		}

		z := 0.0
		if len(fields) > 3 {
			if v, ok := parseCoord(fields[3]); ok {
				z = v
			}
		}

		res.Points = append(res.Points, c.FromGrid(fields[0], y, x, &z, cfg))
	}
	return res
}

// Parse is Codec.Parse with NewCodec.
func Parse(text string, cfg geodesy.ProjectionConfig) ParseResult {
	return NewCodec().Parse(text, cfg)
}

func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

func parseCoord(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
