package processor

import (
	"regexp"

	"github.com/esocad/esocad/internal/survey"

	"github.com/tdewolff/minify/v2"
	mjson "github.com/tdewolff/minify/v2/json"
	mxml "github.com/tdewolff/minify/v2/xml"
)

// NewMinifier registers the XML and JSON minifiers for the KML and GeoJSON
// media types.
func NewMinifier() *minify.M {
	m := minify.New()
	m.AddFuncRegexp(regexp.MustCompile(`[/+]xml$`), mxml.Minify)
	m.AddFuncRegexp(regexp.MustCompile(`[/+]json$`), mjson.Minify)
	return m
}

// Minify strips insignificant whitespace from a KML or GeoJSON document. The
// text table is returned unchanged: its tabs and newlines are the format.
func Minify(m *minify.M, f survey.Format, doc []byte) ([]byte, error) {
	if f == survey.FormatText {
		return doc, nil
	}
	return m.Bytes(f.MediaType(), doc)
}
