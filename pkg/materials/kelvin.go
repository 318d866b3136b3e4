package materials

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// KelvinToRGB approximates the color of a black body at the given
// temperature, for light color presets. Channels are in [0, 1].
func KelvinToRGB(kelvin float64) colorful.Color {
	temp := kelvin / 100
	var r, g, b float64
	if temp <= 66 {
		r = 255
		if temp > 19 {
			g = 99.4708025861*math.Log(temp-10) - 161.1195681661
			b = 138.5177312231*math.Log(temp-10) - 305.0447927307
		}
	} else {
		r = 329.698727446 * math.Pow(temp-60, -0.1332047592)
		g = 288.1221695283 * math.Pow(temp-60, -0.0755148492)
		b = 255
	}
	return colorful.Color{R: channel(r), G: channel(g), B: channel(b)}
}

func channel(v float64) float64 {
	return math.Max(0, math.Min(255, v)) / 255
}
