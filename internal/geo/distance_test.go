package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		delta                  float64
	}{
		{"same point", 49.2606, -123.2460, 49.2606, -123.2460, 0, 1e-9},
		{"ubc to downtown vancouver", 49.2606, -123.2460, 49.2827, -123.1207, 9.4, 0.3},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.01},
		{"antipodes", 0, 0, 0, 180, 20015.09, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2), tt.delta)
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := Distance(49.2606, -123.2460, 43.6629, -79.3957)
	b := Distance(43.6629, -79.3957, 49.2606, -123.2460)
	assert.InDelta(t, a, b, 1e-9)
}
