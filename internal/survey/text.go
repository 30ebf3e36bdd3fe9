package survey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/esocad/esocad/internal/geodesy"
)

// TextHeader is the first line of the grid table.
const TextHeader = "NOKTA_ID\tAD\tY(SAĞA)\tX(YUKARI)\tZ\tSİSTEM\tDOM\tDATUM\n"

// EncodeText writes the tab-delimited grid table: a header and one row per
// point with id, name, easting, northing, height, system, central meridian
// and datum. Every line, the last included, ends in a newline.
func (c *Codec) EncodeText(points []Point, cfg geodesy.ProjectionConfig) string {
	var b strings.Builder
	b.WriteString(TextHeader)

	system := cfg.System()
	datum := cfg.Datum.String()
	for _, p := range points {
		proj := c.Registry.Project(p.Geo(), cfg)

		b.WriteString(cleanField(p.ID))
		b.WriteByte('\t')
		b.WriteString(cleanField(p.Name))
		b.WriteByte('\t')
		b.WriteString(fixed3(proj.East))
		b.WriteByte('\t')
		b.WriteString(fixed3(proj.North))
		b.WriteByte('\t')
		b.WriteString(fixed3(p.AltOrZero()))
		b.WriteByte('\t')
		b.WriteString(system)
		b.WriteByte('\t')
		b.WriteString(shortest(proj.Meridian))
		b.WriteByte('\t')
		b.WriteString(datum)
		b.WriteByte('\n')
	}
	return b.String()
}

// EncodeText is Codec.EncodeText with NewCodec.
func EncodeText(points []Point, cfg geodesy.ProjectionConfig) string {
	return NewCodec().EncodeText(points, cfg)
}

// ErrName reports a point name that cannot be stored in the grid table.
var ErrName = errors.New("name contains a tab or line break")

// CheckName rejects names holding a tab, carriage return or newline.
func CheckName(name string) error {
	if strings.ContainsAny(name, "\t\r\n") {
		return fmt.Errorf("%w: %q", ErrName, name)
	}
	return nil
}

// cleanField turns tabs and line breaks into spaces so a row keeps its eight
// columns.
func cleanField(s string) string {
	if !strings.ContainsAny(s, "\t\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\r', '\n':
			return ' '
		}
		return r
	}, s)
}

func fixed3(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func shortest(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
