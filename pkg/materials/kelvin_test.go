package materials

import (
	"math"
	"testing"
)

func TestKelvinToRGB(t *testing.T) {
	tests := []struct {
		kelvin  float64
		r, g, b float64
	}{
		{1000, 1, 0, 0},
		{1900, 1, 0, 0},
		{6600, 1, 0.9384, 0.9903},
		{40000, 0.5948, 0.7276, 1},
	}
	for _, tt := range tests {
		c := KelvinToRGB(tt.kelvin)
		if math.Abs(c.R-tt.r) > 1e-3 || math.Abs(c.G-tt.g) > 1e-3 || math.Abs(c.B-tt.b) > 1e-3 {
			t.Errorf("KelvinToRGB(%v) = (%.4f, %.4f, %.4f), want (%v, %v, %v)", tt.kelvin, c.R, c.G, c.B, tt.r, tt.g, tt.b)
		}
	}
}

func TestKelvinToRGBClamped(t *testing.T) {
	for k := 500.0; k <= 50000; k += 500 {
		c := KelvinToRGB(k)
		for _, v := range []float64{c.R, c.G, c.B} {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("KelvinToRGB(%v) = %v, channel out of [0, 1]", k, c)
			}
		}
	}
}
