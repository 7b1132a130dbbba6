// Package scene defines the abstract scene description exchanged between an
// external immediate-mode GUI engine and the overlay's painter.
//
// The engine produces meshes and texture deltas once per frame; the overlay
// treats them as read-only and translates them into native draw calls. None
// of the types here hold GPU handles — they are plain data crossing the
// engine boundary.
package scene

// TextureID is an opaque texture identifier assigned by the GUI engine.
// The engine owns the identifier and the pixel data; the painter owns the
// GPU handle it maps to.
type TextureID uint64

// Vertex is a single GUI vertex in logical pixel space.
//
// Color is 0-255 gamma-encoded (sRGB) RGBA. The conversion to linear space
// happens in the vertex shader stage, not on the CPU.
type Vertex struct {
	// Pos is the position in logical pixels, origin top-left.
	Pos [2]float32

	// UV is the texture coordinate in [0, 1].
	UV [2]float32

	// Color is the sRGB-encoded vertex color, RGBA order.
	Color [4]uint8
}

// Mesh is an ordered triangle list associated with exactly one texture and
// one clip rectangle. Later meshes composite over earlier ones via standard
// premultiplied alpha blending, so order is significant.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Texture  TextureID
	Clip     ClipRect
}

// maxMeshVertices is the largest vertex count a mesh may carry. Meshes are
// drawn with 16-bit indices, so any vertex beyond 65536 is unaddressable.
const maxMeshVertices = 1 << 16

// Valid reports whether every index refers to an existing vertex, the index
// count forms whole triangles, and the vertex count fits the painter's
// 16-bit index range.
func (m *Mesh) Valid() bool {
	if len(m.Indices)%3 != 0 {
		return false
	}
	if len(m.Vertices) > maxMeshVertices {
		return false
	}
	n := uint32(len(m.Vertices))
	for _, i := range m.Indices {
		if i >= n {
			return false
		}
	}
	return true
}

// Empty reports whether the mesh has nothing to draw.
func (m *Mesh) Empty() bool {
	return len(m.Indices) == 0 || len(m.Vertices) == 0
}

// ClipRect is an axis-aligned clip rectangle in logical pixels,
// origin top-left.
type ClipRect struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// Intersect returns the intersection of two clip rectangles.
func (c ClipRect) Intersect(o ClipRect) ClipRect {
	r := ClipRect{
		MinX: max32(c.MinX, o.MinX),
		MinY: max32(c.MinY, o.MinY),
		MaxX: min32(c.MaxX, o.MaxX),
		MaxY: min32(c.MaxY, o.MaxY),
	}
	if r.MaxX < r.MinX {
		r.MaxX = r.MinX
	}
	if r.MaxY < r.MinY {
		r.MaxY = r.MinY
	}
	return r
}

// IsEmpty reports whether the rectangle covers no area.
func (c ClipRect) IsEmpty() bool {
	return c.MaxX <= c.MinX || c.MaxY <= c.MinY
}

// Screen describes the host framebuffer for one frame: its size in physical
// pixels and the logical-to-physical scale factor. It is read from the host
// window each frame and never cached across frames.
type Screen struct {
	// Width and Height are the framebuffer size in physical pixels.
	Width  int
	Height int

	// PixelsPerPoint maps logical coordinates to physical pixels.
	// 1.0 means logical and physical pixels coincide.
	PixelsPerPoint float32
}

// Bounds returns the full screen as a clip rectangle in logical pixels.
func (s Screen) Bounds() ClipRect {
	return ClipRect{
		MaxX: float32(s.Width) / s.ppp(),
		MaxY: float32(s.Height) / s.ppp(),
	}
}

// PointWidth returns the screen width in logical pixels.
func (s Screen) PointWidth() float32 { return float32(s.Width) / s.ppp() }

// PointHeight returns the screen height in logical pixels.
func (s Screen) PointHeight() float32 { return float32(s.Height) / s.ppp() }

func (s Screen) ppp() float32 {
	if s.PixelsPerPoint <= 0 {
		return 1
	}
	return s.PixelsPerPoint
}

// Producer is the external GUI engine boundary. ProduceScene is a function
// of the input accumulated since the previous call: it returns the meshes to
// draw this frame, in draw order, together with the texture changes the
// painter must apply before drawing.
type Producer interface {
	ProduceScene(input []Event, screen Screen) ([]Mesh, TextureDelta)
}

// ProducerFunc adapts a plain function to the Producer interface.
type ProducerFunc func(input []Event, screen Screen) ([]Mesh, TextureDelta)

// ProduceScene calls f.
func (f ProducerFunc) ProduceScene(input []Event, screen Screen) ([]Mesh, TextureDelta) {
	return f(input, screen)
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
