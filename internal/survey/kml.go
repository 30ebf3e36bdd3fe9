package survey

import (
	"encoding/xml"
	"strings"
	"text/template"
)

// DocumentName is the <name> of every exported KML document.
const DocumentName = "ESOCAD Points Export"

var kmlTemplate = template.Must(template.New("kml").Funcs(template.FuncMap{
	"xml": xmlEscape,
	"num": shortest,
}).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>{{xml .Name}}</name>
    <Style id="surveyPoint">
      <IconStyle>
        <color>ff0000ff</color>
        <scale>1.1</scale>
        <Icon>
          <href>http://maps.google.com/mapfiles/kml/shapes/placemark_circle.png</href>
        </Icon>
      </IconStyle>
    </Style>
{{range .Points}}    <Placemark>
      <name>{{xml .Name}}</name>
      <styleUrl>#surveyPoint</styleUrl>
      <Point>
        <coordinates>{{num .Lng}},{{num .Lat}},{{num .AltOrZero}}</coordinates>
      </Point>
    </Placemark>
{{end}}  </Document>
</kml>`))

// EncodePlacemarks writes a KML 2.2 document with one placemark per point,
// all sharing the surveyPoint style. Coordinates are the raw geographic
// longitude, latitude and height; nothing is projected.
func EncodePlacemarks(points []Point) string {
	var b strings.Builder
	err := kmlTemplate.Execute(&b, struct {
		Name   string
		Points []Point
	}{DocumentName, points})
	if err != nil {
		// strings.Builder never fails a write
		panic(err)
	}
	return b.String()
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
