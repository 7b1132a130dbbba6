package scene

import "testing"

var _ Producer = ProducerFunc(nil)
var _ Relay = NopRelay{}

func TestClipRect_Intersect(t *testing.T) {
	tests := []struct {
		name string
		a, b ClipRect
		want ClipRect
	}{
		{
			name: "overlap",
			a:    ClipRect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
			b:    ClipRect{MinX: 5, MinY: 5, MaxX: 15, MaxY: 15},
			want: ClipRect{MinX: 5, MinY: 5, MaxX: 10, MaxY: 10},
		},
		{
			name: "contained",
			a:    ClipRect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
			b:    ClipRect{MinX: 2, MinY: 2, MaxX: 4, MaxY: 4},
			want: ClipRect{MinX: 2, MinY: 2, MaxX: 4, MaxY: 4},
		},
		{
			name: "disjoint collapses to empty",
			a:    ClipRect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10},
			b:    ClipRect{MinX: 20, MinY: 20, MaxX: 30, MaxY: 30},
			want: ClipRect{MinX: 20, MinY: 20, MaxX: 20, MaxY: 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			if got != tt.want {
				t.Errorf("Intersect = %+v, want %+v", got, tt.want)
			}
			if tt.name == "disjoint collapses to empty" && !got.IsEmpty() {
				t.Errorf("disjoint intersection not empty: %+v", got)
			}
		})
	}
}

func TestMesh_Valid(t *testing.T) {
	verts := []Vertex{{}, {}, {}}
	tests := []struct {
		name    string
		indices []uint32
		want    bool
	}{
		{"triangle", []uint32{0, 1, 2}, true},
		{"not whole triangles", []uint32{0, 1}, false},
		{"index out of range", []uint32{0, 1, 3}, false},
		{"empty", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Mesh{Vertices: verts, Indices: tt.indices}
			if got := m.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMesh_ValidVertexCap(t *testing.T) {
	// Indices are drawn as 16-bit, so the 65537th vertex cannot be
	// addressed; a mesh that large must be rejected, not truncated.
	indices := []uint32{0, 1, 2}

	at := Mesh{Vertices: make([]Vertex, maxMeshVertices), Indices: indices}
	if !at.Valid() {
		t.Errorf("Valid() = false for %d vertices, want true", maxMeshVertices)
	}

	over := Mesh{Vertices: make([]Vertex, maxMeshVertices+1), Indices: indices}
	if over.Valid() {
		t.Errorf("Valid() = true for %d vertices, want false", maxMeshVertices+1)
	}
}

func TestScreen_Points(t *testing.T) {
	s := Screen{Width: 2560, Height: 1440, PixelsPerPoint: 2}
	if got := s.PointWidth(); got != 1280 {
		t.Errorf("PointWidth = %v, want 1280", got)
	}
	if got := s.PointHeight(); got != 720 {
		t.Errorf("PointHeight = %v, want 720", got)
	}
	if got := s.Bounds(); got != (ClipRect{MaxX: 1280, MaxY: 720}) {
		t.Errorf("Bounds = %+v", got)
	}

	// Zero scale means unscaled, not division by zero.
	z := Screen{Width: 100, Height: 50}
	if got := z.PointWidth(); got != 100 {
		t.Errorf("unscaled PointWidth = %v, want 100", got)
	}
}
