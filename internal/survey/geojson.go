package survey

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection converts points to GeoJSON point features. Properties
// carry id, name, alt and timestamp; alt is omitted when unknown.
func FeatureCollection(points []Point) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		f := geojson.NewFeature(orb.Point{p.Lng, p.Lat})
		f.ID = p.ID
		f.Properties["id"] = p.ID
		f.Properties["name"] = p.Name
		f.Properties["timestamp"] = p.Timestamp
		if p.Alt != nil {
			f.Properties["alt"] = *p.Alt
		}
		if p.Description != "" {
			f.Properties["description"] = p.Description
		}
		fc.Append(f)
	}
	return fc
}

// EncodeGeoJSON returns the points as a GeoJSON FeatureCollection document.
func EncodeGeoJSON(points []Point) ([]byte, error) {
	return FeatureCollection(points).MarshalJSON()
}
