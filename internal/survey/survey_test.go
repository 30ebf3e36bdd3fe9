package survey

import (
	"fmt"
	"time"

	"github.com/esocad/esocad/internal/geodesy"
)

// testCodec returns a Codec with sequential ids and a fixed clock.
func testCodec() *Codec {
	n := 0
	return &Codec{
		Registry: geodesy.NewRegistry(),
		NewID: func() string {
			n++
			return fmt.Sprintf("p%03d", n)
		},
		Now: func() time.Time { return time.UnixMilli(1735689600000) },
	}
}

func ptr(v float64) *float64 { return &v }

var tmConfig = geodesy.ProjectionConfig{GridWidth: 3, CentralMeridian: geodesy.Meridian(33)}
