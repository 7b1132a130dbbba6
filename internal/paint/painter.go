// Package paint translates abstract GUI scenes into device draw calls: it
// owns the overlay's program, vertex streams and texture table, and the
// snapshot machinery that hides all of it from the host.
package paint

import (
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/gogpu/overlay/internal/gl"
	"github.com/gogpu/overlay/scene"
)

// ErrTextureUpload is returned when the device rejects texture pixel data.
var ErrTextureUpload = errors.New("paint: texture upload failed")

type texture struct {
	name   uint32
	width  int
	height int
}

// Painter draws scene meshes over the host's framebuffer. It assumes the
// host's context is current and that Capture ran before any method that
// touches device state.
type Painter struct {
	api *gl.API

	program     uint32
	uScreenSize int32
	uSampler    int32
	aPos        uint32
	aTC         uint32
	aColor      uint32

	vao      uint32
	indexBuf uint32
	posBuf   uint32
	tcBuf    uint32
	colorBuf uint32

	// High-water byte capacities of the stream buffers. Reallocation only
	// grows; steady-state frames reuse the existing stores.
	indexCap int
	posCap   int
	tcCap    int
	colorCap int

	textures map[scene.TextureID]texture

	// Scratch de-interleaving arrays, reused across meshes.
	indices []uint16
	pos     []float32
	tc      []float32
	color   []uint8
}

// NewPainter compiles the overlay program and allocates its vertex streams
// on the current context. The caller restores any state this disturbs.
func NewPainter(api *gl.API) (*Painter, error) {
	program, err := compileProgram(api)
	if err != nil {
		return nil, err
	}

	p := &Painter{
		api:      api,
		program:  program,
		textures: make(map[scene.TextureID]texture),
	}
	p.uScreenSize = api.GetUniformLocation(program, cString("u_screen_size"))
	p.uSampler = api.GetUniformLocation(program, cString("u_sampler"))
	aPos := api.GetAttribLocation(program, cString("a_pos"))
	aTC := api.GetAttribLocation(program, cString("a_tc"))
	aColor := api.GetAttribLocation(program, cString("a_srgba"))
	if aPos < 0 || aTC < 0 || aColor < 0 {
		api.DeleteProgram(program)
		return nil, fmt.Errorf("%w: attribute lookup", ErrShaderCompile)
	}
	p.aPos, p.aTC, p.aColor = uint32(aPos), uint32(aTC), uint32(aColor)

	api.GenVertexArrays(1, &p.vao)
	api.BindVertexArray(p.vao)
	api.GenBuffers(1, &p.indexBuf)
	api.GenBuffers(1, &p.posBuf)
	api.GenBuffers(1, &p.tcBuf)
	api.GenBuffers(1, &p.colorBuf)

	// Attribute layout is fixed, so it is recorded in the VAO once. The
	// element binding is part of the VAO as well.
	api.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, p.indexBuf)
	api.BindBuffer(gl.ARRAY_BUFFER, p.posBuf)
	api.VertexAttribPointer(p.aPos, 2, gl.FLOAT, false, 0, 0)
	api.EnableVertexAttribArray(p.aPos)
	api.BindBuffer(gl.ARRAY_BUFFER, p.tcBuf)
	api.VertexAttribPointer(p.aTC, 2, gl.FLOAT, false, 0, 0)
	api.EnableVertexAttribArray(p.aTC)
	api.BindBuffer(gl.ARRAY_BUFFER, p.colorBuf)
	// Colors stay 0-255 in the shader; not normalized.
	api.VertexAttribPointer(p.aColor, 4, gl.UNSIGNED_BYTE, false, 0, 0)
	api.EnableVertexAttribArray(p.aColor)

	if err := api.CheckError("painter setup"); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

// SyncTextures applies the frame's texture uploads. Full updates create or
// replace a texture; positioned updates touch only their sub-rectangle. A
// positioned update for an unknown texture is skipped: the engine retired
// it and the painter must not invent a stale target for the pixels.
//
// A failed upload does not stop the rest of the delta; the joined errors
// come back so the caller can log them, and the affected texture simply
// misses this frame.
func (p *Painter) SyncTextures(updates []scene.TextureUpdate) error {
	var errs []error
	for i := range updates {
		if err := p.setTexture(&updates[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Painter) setTexture(up *scene.TextureUpdate) error {
	if !up.Image.Valid() {
		return fmt.Errorf("%w: texture %d: %dx%d image with %d pixel bytes",
			ErrTextureUpload, up.ID, up.Image.Width, up.Image.Height, len(up.Image.Pixels))
	}
	api := p.api

	if up.Pos == nil {
		t, ok := p.textures[up.ID]
		if !ok {
			api.GenTextures(1, &t.name)
			p.textures[up.ID] = t
		}
		filter := int32(gl.LINEAR)
		if up.Filter == scene.FilterNearest {
			filter = gl.NEAREST
		}
		api.BindTexture(gl.TEXTURE_2D, t.name)
		api.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
		api.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
		api.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		api.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		api.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
		api.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
			int32(up.Image.Width), int32(up.Image.Height), 0,
			gl.RGBA, gl.UNSIGNED_BYTE, pixPtr(up.Image.Pixels))
		t.width, t.height = up.Image.Width, up.Image.Height
		p.textures[up.ID] = t
		if err := api.CheckError("texture upload"); err != nil {
			return fmt.Errorf("%w: texture %d: %v", ErrTextureUpload, up.ID, err)
		}
		return nil
	}

	t, ok := p.textures[up.ID]
	if !ok {
		return nil
	}
	x, y := up.Pos[0], up.Pos[1]
	if x < 0 || y < 0 || x+up.Image.Width > t.width || y+up.Image.Height > t.height {
		return fmt.Errorf("%w: texture %d: update %dx%d at (%d,%d) exceeds %dx%d",
			ErrTextureUpload, up.ID, up.Image.Width, up.Image.Height, x, y, t.width, t.height)
	}
	api.BindTexture(gl.TEXTURE_2D, t.name)
	api.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	api.TexSubImage2D(gl.TEXTURE_2D, 0, int32(x), int32(y),
		int32(up.Image.Width), int32(up.Image.Height),
		gl.RGBA, gl.UNSIGNED_BYTE, pixPtr(up.Image.Pixels))
	if err := api.CheckError("texture update"); err != nil {
		return fmt.Errorf("%w: texture %d: %v", ErrTextureUpload, up.ID, err)
	}
	return nil
}

// FreeTextures releases the device textures behind the given ids. Unknown
// ids are ignored.
func (p *Painter) FreeTextures(ids []scene.TextureID) {
	for _, id := range ids {
		t, ok := p.textures[id]
		if !ok {
			continue
		}
		p.api.DeleteTextures(1, &t.name)
		delete(p.textures, id)
	}
}

// HasTexture reports whether the painter holds a device texture for id.
func (p *Painter) HasTexture(id scene.TextureID) bool {
	_, ok := p.textures[id]
	return ok
}

// Paint draws the meshes in order over whatever the host already rendered.
// An empty scene issues no device calls at all. Invalid meshes and meshes
// whose texture is unknown are skipped; the rest of the frame still draws.
func (p *Painter) Paint(screen scene.Screen, meshes []scene.Mesh) error {
	if len(meshes) == 0 {
		return nil
	}
	api := p.api

	// sRGB-aware blending over premultiplied alpha, exactly once per frame.
	api.Enable(gl.FRAMEBUFFER_SRGB)
	api.Enable(gl.SCISSOR_TEST)
	api.Enable(gl.BLEND)
	api.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	api.UseProgram(p.program)
	api.BindVertexArray(p.vao)
	api.ActiveTexture(gl.TEXTURE0)
	api.Uniform1i(p.uSampler, 0)
	api.Uniform2f(p.uScreenSize, screen.PointWidth(), screen.PointHeight())
	api.Viewport(0, 0, int32(screen.Width), int32(screen.Height))
	if err := api.CheckError("paint setup"); err != nil {
		return err
	}

	for i := range meshes {
		m := &meshes[i]
		if m.Empty() || !m.Valid() {
			continue
		}
		t, ok := p.textures[m.Texture]
		if !ok {
			continue
		}
		api.BindTexture(gl.TEXTURE_2D, t.name)
		p.scissor(screen, m.Clip)
		p.uploadMesh(m)
		api.DrawElements(gl.TRIANGLES, int32(len(m.Indices)), gl.UNSIGNED_SHORT, 0)
		if err := api.CheckError("draw mesh"); err != nil {
			return err
		}
	}
	return nil
}

// scissor converts a logical clip rectangle to a device scissor box. The
// device's scissor origin is the bottom-left corner, so Y flips.
func (p *Painter) scissor(screen scene.Screen, clip scene.ClipRect) {
	ppp := screen.PixelsPerPoint
	if ppp <= 0 {
		ppp = 1
	}
	w, h := float32(screen.Width), float32(screen.Height)

	minX := clamp32(clip.MinX*ppp, 0, w)
	minY := clamp32(clip.MinY*ppp, 0, h)
	maxX := clamp32(clip.MaxX*ppp, minX, w)
	maxY := clamp32(clip.MaxY*ppp, minY, h)

	x0 := round32(minX)
	y0 := round32(minY)
	x1 := round32(maxX)
	y1 := round32(maxY)

	p.api.Scissor(x0, int32(screen.Height)-y1, x1-x0, y1-y0)
}

func (p *Painter) uploadMesh(m *scene.Mesh) {
	n := len(m.Vertices)
	p.indices = p.indices[:0]
	p.pos = p.pos[:0]
	p.tc = p.tc[:0]
	p.color = p.color[:0]
	// Valid caps meshes at the 16-bit index range, so the narrowing cast
	// cannot lose bits.
	for _, idx := range m.Indices {
		p.indices = append(p.indices, uint16(idx))
	}
	for i := range m.Vertices {
		v := &m.Vertices[i]
		p.pos = append(p.pos, v.Pos[0], v.Pos[1])
		p.tc = append(p.tc, v.UV[0], v.UV[1])
		p.color = append(p.color, v.Color[0], v.Color[1], v.Color[2], v.Color[3])
	}

	api := p.api
	p.indexCap = streamUpload(api, gl.ELEMENT_ARRAY_BUFFER, p.indexBuf,
		(*byte)(unsafe.Pointer(&p.indices[0])), 2*len(p.indices), p.indexCap)
	p.posCap = streamUpload(api, gl.ARRAY_BUFFER, p.posBuf,
		(*byte)(unsafe.Pointer(&p.pos[0])), 4*2*n, p.posCap)
	p.tcCap = streamUpload(api, gl.ARRAY_BUFFER, p.tcBuf,
		(*byte)(unsafe.Pointer(&p.tc[0])), 4*2*n, p.tcCap)
	p.colorCap = streamUpload(api, gl.ARRAY_BUFFER, p.colorBuf,
		(*byte)(unsafe.Pointer(&p.color[0])), 4*n, p.colorCap)
}

// streamUpload writes size bytes into the buffer, growing its store only
// when the high-water mark is exceeded. Returns the new capacity.
func streamUpload(api *gl.API, target, buf uint32, data *byte, size, capacity int) int {
	api.BindBuffer(target, buf)
	if size > capacity {
		api.BufferData(target, size, data, gl.STREAM_DRAW)
		return size
	}
	api.BufferSubData(target, 0, size, data)
	return capacity
}

// Destroy releases every device object the painter owns. The painter is
// unusable afterwards.
func (p *Painter) Destroy() {
	api := p.api
	for id, t := range p.textures {
		api.DeleteTextures(1, &t.name)
		delete(p.textures, id)
	}
	if p.indexBuf != 0 {
		api.DeleteBuffers(1, &p.indexBuf)
		api.DeleteBuffers(1, &p.posBuf)
		api.DeleteBuffers(1, &p.tcBuf)
		api.DeleteBuffers(1, &p.colorBuf)
		p.indexBuf, p.posBuf, p.tcBuf, p.colorBuf = 0, 0, 0, 0
	}
	if p.vao != 0 {
		api.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.program != 0 {
		api.DeleteProgram(p.program)
		p.program = 0
	}
}

func pixPtr(pix []byte) *byte {
	if len(pix) == 0 {
		return nil
	}
	return &pix[0]
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round32(v float32) int32 {
	return int32(math.Round(float64(v)))
}
