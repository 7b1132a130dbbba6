package scene

import "math"

// CPU mirrors of the transfer functions in the painter's shader pair. The
// shaders work on 0-255 gamma-encoded values, so unlike the usual [0,1]
// formulation these carry the 255 scale inside the constants. The two
// directions are exact inverses; the alpha adjustments below are intentional
// deviations, not part of the round trip.

// LinearFromSRGB converts a 0-255 gamma-encoded component to 0-1 linear.
func LinearFromSRGB(s float32) float32 {
	if s < 10.31475 {
		return s / 3294.6
	}
	return float32(math.Pow(float64(s+14.025)/269.025, 2.4))
}

// SRGBFromLinear converts a 0-1 linear component to 0-255 gamma-encoded.
func SRGBFromLinear(l float32) float32 {
	if l < 0.0031308 {
		return l * 3294.6
	}
	return 269.025*float32(math.Pow(float64(l), 1.0/2.4)) - 14.025
}

// VertexAlpha is the vertex-stage alpha adjustment: the 0-255 vertex alpha
// is normalized and raised to the 1.6 power. It compensates for
// premultiplication artifacts when the target blends in gamma space.
func VertexAlpha(a uint8) float32 {
	return float32(math.Pow(float64(a)/255.0, 1.6))
}

// EdgeAlpha is the fragment-stage alpha correction applied to sampled,
// un-premultiplied texels: alpha *= sqrt(alpha). It makes soft shadow and
// anti-aliasing edges visually match a linear-blending renderer even though
// the target blends in gamma space.
func EdgeAlpha(a float32) float32 {
	return a * float32(math.Sqrt(float64(a)))
}
