package geodesy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraverse(t *testing.T) {
	origin := ProjectedPoint{East: 500000, North: 4400000}
	tests := []struct {
		name       string
		dEast      float64
		dNorth     float64
		distance   float64
		azimuth    float64
		azimuthGon float64
	}{
		{"north", 0, 100, 100, 0, 0},
		{"east", 100, 0, 100, 90, 100},
		{"south", 0, -100, 100, 180, 200},
		{"west", -100, 0, 100, 270, 300},
		{"north-east 3-4-5", 3, 4, 5, 36.86989764584402, 40.96655294},
		{"same point", 0, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			to := ProjectedPoint{East: origin.East + tt.dEast, North: origin.North + tt.dNorth}
			got := Traverse(origin, to)
			assert.InDelta(t, tt.distance, got.Distance, 1e-9)
			assert.InDelta(t, tt.azimuth, got.Azimuth, 1e-6)
			assert.InDelta(t, tt.azimuthGon, got.AzimuthGon, 1e-6)
		})
	}
}

func TestDMSToDecimal(t *testing.T) {
	assert.InDelta(t, 32.85416667, DMSToDecimal(32, 51, 15), 1e-8)
	assert.InDelta(t, -32.85416667, DMSToDecimal(-32, 51, 15), 1e-8)
	assert.InDelta(t, 0.5, DMSToDecimal(0, 30, 0), 1e-12)
}
