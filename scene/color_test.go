package scene

import (
	"math"
	"testing"
)

func TestTransferFunctions_RoundTrip(t *testing.T) {
	// The two directions must be inverses across the whole 0-255 domain,
	// or vertex colors shift every time they cross the CPU/GPU boundary.
	for s := 0; s <= 255; s++ {
		got := SRGBFromLinear(LinearFromSRGB(float32(s)))
		if diff := math.Abs(float64(got) - float64(s)); diff > 1e-4*255 {
			t.Fatalf("round trip of %d = %v (off by %v)", s, got, diff)
		}
	}
}

func TestLinearFromSRGB_Anchors(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"black", 0, 0},
		{"white", 255, 1},
		{"below cutoff is linear", 5, 5.0 / 3294.6},
		{"mid gray", 128, 0.21586050011389923},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LinearFromSRGB(tt.in)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("LinearFromSRGB(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVertexAlpha_IsPow16(t *testing.T) {
	// Not a transfer function: an intentional deviation. alpha^1.6 in the
	// normalized domain.
	tests := []struct {
		in   uint8
		want float64
	}{
		{0, 0},
		{255, 1},
		{128, math.Pow(128.0/255.0, 1.6)},
		{64, math.Pow(64.0/255.0, 1.6)},
	}
	for _, tt := range tests {
		got := VertexAlpha(tt.in)
		if math.Abs(float64(got)-tt.want) > 1e-6 {
			t.Errorf("VertexAlpha(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEdgeAlpha_IsSqrtScaled(t *testing.T) {
	tests := []struct {
		in   float32
		want float64
	}{
		{0, 0},
		{1, 1},
		{0.25, 0.25 * 0.5},
		{0.5, 0.5 * math.Sqrt(0.5)},
	}
	for _, tt := range tests {
		got := EdgeAlpha(tt.in)
		if math.Abs(float64(got)-tt.want) > 1e-6 {
			t.Errorf("EdgeAlpha(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
