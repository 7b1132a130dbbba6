// Package gltest provides an in-memory device that fills a gl.API with
// closures, so painter and orchestrator behavior is testable without a GPU
// or a live context. The device models the bind points, enables and
// resources the overlay touches, keeps textures as real images, and records
// every draw with the state in effect at that moment.
package gltest

import (
	"encoding/binary"
	"fmt"
	"image"
	"unsafe"

	"github.com/gogpu/overlay/internal/gl"
)

type shaderObj struct {
	xtype    uint32
	source   string
	compiled bool
}

type programObj struct {
	shaders  []uint32
	linked   bool
	uniforms map[string]int32
	attribs  map[string]int32
	nextLoc  int32
}

// Texture is a device texture backed by a real image, RGBA8 only.
type Texture struct {
	Image     *image.RGBA
	MinFilter int32
	MagFilter int32
	WrapS     int32
	WrapT     int32
}

// DrawCall records one DrawElements with the state in effect when it was
// issued.
type DrawCall struct {
	Program       uint32
	Texture       uint32
	Indices       []uint16
	ScissorOn     bool
	Scissor       [4]int32
	BlendOn       bool
	BlendSrc      uint32
	BlendDst      uint32
	SRGBOn        bool
	ScreenSize    [2]float32
	HasScreenSize bool
}

// Device is the fake. Zero value is not usable; call NewDevice.
type Device struct {
	shaders  map[uint32]*shaderObj
	programs map[uint32]*programObj
	buffers  map[uint32][]byte
	vaos     map[uint32]bool
	textures map[uint32]*Texture
	nextID   uint32

	// Bind points and fixed-function state, addressable by tests.
	Program       uint32
	VAO           uint32
	ArrayBuffer   uint32
	ElementBuffer uint32
	ActiveUnit    uint32
	Bound2D       map[uint32]uint32 // texture unit -> texture name
	Enabled       map[uint32]bool
	BlendSrc      uint32
	BlendDst      uint32
	ScissorBox    [4]int32
	ViewportBox   [4]int32
	Unpack        int32

	uniformF map[uniformKey][2]float32
	uniformI map[uniformKey]int32

	Draws []DrawCall

	// BufferDataCalls and BufferSubDataCalls count store reallocations vs
	// in-place writes, so tests can tell growth from reuse.
	BufferDataCalls    int
	BufferSubDataCalls int

	// FailCompile makes every shader compilation report failure.
	FailCompile bool
	// FailUpload raises a device error on every texture upload.
	FailUpload bool
	// FailDraw raises a device error on every DrawElements.
	FailDraw bool

	pendingErrs []uint32
}

type uniformKey struct {
	program  uint32
	location int32
}

// NewDevice returns a device with sane initial state: nothing bound,
// nothing enabled, unpack alignment 4, unit 0 active.
func NewDevice() *Device {
	return &Device{
		shaders:    make(map[uint32]*shaderObj),
		programs:   make(map[uint32]*programObj),
		buffers:    make(map[uint32][]byte),
		vaos:       make(map[uint32]bool),
		textures:   make(map[uint32]*Texture),
		Bound2D:    make(map[uint32]uint32),
		Enabled:    make(map[uint32]bool),
		BlendSrc:   gl.ONE,
		BlendDst:   0,
		Unpack:     4,
		uniformF:   make(map[uniformKey][2]float32),
		uniformI:   make(map[uniformKey]int32),
		ActiveUnit: gl.TEXTURE0,
	}
}

func (d *Device) genID() uint32 {
	d.nextID++
	return d.nextID
}

func (d *Device) raise(code uint32) {
	d.pendingErrs = append(d.pendingErrs, code)
}

// Texture returns the device texture with the given name, or nil.
func (d *Device) TextureByName(name uint32) *Texture { return d.textures[name] }

// TextureCount reports how many textures are alive.
func (d *Device) TextureCount() int { return len(d.textures) }

// ShaderSources returns the sources of every shader ever created, in
// creation order of their ids.
func (d *Device) ShaderSource(id uint32) string {
	if s, ok := d.shaders[id]; ok {
		return s.source
	}
	return ""
}

// Uniform2fValue returns the latest value set for a vec2 uniform.
func (d *Device) Uniform2fValue(program uint32, location int32) ([2]float32, bool) {
	v, ok := d.uniformF[uniformKey{program, location}]
	return v, ok
}

// State captures everything the overlay's guard must preserve.
// Comparable with ==.
type State struct {
	Program       uint32
	VAO           uint32
	ArrayBuffer   uint32
	ElementBuffer uint32
	ActiveUnit    uint32
	Texture2D     uint32 // binding on the active unit
	BlendOn       bool
	BlendSrc      uint32
	BlendDst      uint32
	ScissorOn     bool
	ScissorBox    [4]int32
	SRGBOn        bool
	Viewport      [4]int32
	Unpack        int32
}

// CaptureState snapshots the device-side state for before/after comparison.
func (d *Device) CaptureState() State {
	return State{
		Program:       d.Program,
		VAO:           d.VAO,
		ArrayBuffer:   d.ArrayBuffer,
		ElementBuffer: d.ElementBuffer,
		ActiveUnit:    d.ActiveUnit,
		Texture2D:     d.Bound2D[d.ActiveUnit],
		BlendOn:       d.Enabled[gl.BLEND],
		BlendSrc:      d.BlendSrc,
		BlendDst:      d.BlendDst,
		ScissorOn:     d.Enabled[gl.SCISSOR_TEST],
		ScissorBox:    d.ScissorBox,
		SRGBOn:        d.Enabled[gl.FRAMEBUFFER_SRGB],
		Viewport:      d.ViewportBox,
		Unpack:        d.Unpack,
	}
}

func goString(p *byte) string {
	if p == nil {
		return ""
	}
	var out []byte
	for q := p; *q != 0; q = (*byte)(unsafe.Add(unsafe.Pointer(q), 1)) {
		out = append(out, *q)
	}
	return string(out)
}

func byteSlice(p *byte, n int) []byte {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice(p, n)
}

// API returns a fully populated gl.API backed by this device.
func (d *Device) API() *gl.API {
	a := &gl.API{}

	a.GetError = func() uint32 {
		if len(d.pendingErrs) == 0 {
			return gl.NO_ERROR
		}
		code := d.pendingErrs[0]
		d.pendingErrs = d.pendingErrs[1:]
		return code
	}

	a.CreateShader = func(xtype uint32) uint32 {
		id := d.genID()
		d.shaders[id] = &shaderObj{xtype: xtype}
		return id
	}
	a.ShaderSource = func(shader uint32, count int32, src **byte, length *int32) {
		s := d.shaders[shader]
		if s == nil || count < 1 || src == nil {
			d.raise(invalidOperation)
			return
		}
		s.source = goString(*src)
	}
	a.CompileShader = func(shader uint32) {
		if s := d.shaders[shader]; s != nil {
			s.compiled = !d.FailCompile
		}
	}
	a.GetShaderiv = func(shader uint32, pname uint32, params *int32) {
		s := d.shaders[shader]
		if s == nil || params == nil {
			return
		}
		switch pname {
		case gl.COMPILE_STATUS:
			if s.compiled {
				*params = gl.TRUE
			} else {
				*params = gl.FALSE
			}
		case gl.INFO_LOG_LENGTH:
			*params = int32(len(compileLog) + 1)
		}
	}
	a.GetShaderInfoLog = func(shader uint32, bufSize int32, length *int32, infoLog *byte) {
		writeLog(compileLog, bufSize, length, infoLog)
	}
	a.DeleteShader = func(shader uint32) { delete(d.shaders, shader) }

	a.CreateProgram = func() uint32 {
		id := d.genID()
		d.programs[id] = &programObj{
			uniforms: make(map[string]int32),
			attribs:  make(map[string]int32),
		}
		return id
	}
	a.AttachShader = func(program, shader uint32) {
		if p := d.programs[program]; p != nil {
			p.shaders = append(p.shaders, shader)
		}
	}
	a.LinkProgram = func(program uint32) {
		p := d.programs[program]
		if p == nil {
			return
		}
		p.linked = true
		for _, sid := range p.shaders {
			if s := d.shaders[sid]; s == nil || !s.compiled {
				p.linked = false
			}
		}
	}
	a.GetProgramiv = func(program uint32, pname uint32, params *int32) {
		p := d.programs[program]
		if p == nil || params == nil {
			return
		}
		switch pname {
		case gl.LINK_STATUS:
			if p.linked {
				*params = gl.TRUE
			} else {
				*params = gl.FALSE
			}
		case gl.INFO_LOG_LENGTH:
			*params = int32(len(linkLog) + 1)
		}
	}
	a.GetProgramInfoLog = func(program uint32, bufSize int32, length *int32, infoLog *byte) {
		writeLog(linkLog, bufSize, length, infoLog)
	}
	a.DetachShader = func(program, shader uint32) {}
	a.DeleteProgram = func(program uint32) { delete(d.programs, program) }
	a.UseProgram = func(program uint32) { d.Program = program }

	a.GetUniformLocation = func(program uint32, name *byte) int32 {
		return d.location(program, goString(name), true)
	}
	a.GetAttribLocation = func(program uint32, name *byte) int32 {
		return d.location(program, goString(name), false)
	}
	a.Uniform1i = func(location int32, v0 int32) {
		d.uniformI[uniformKey{d.Program, location}] = v0
	}
	a.Uniform2f = func(location int32, v0, v1 float32) {
		d.uniformF[uniformKey{d.Program, location}] = [2]float32{v0, v1}
	}

	a.GenVertexArrays = func(n int32, arrays *uint32) {
		for i := int32(0); i < n; i++ {
			id := d.genID()
			d.vaos[id] = true
			*(*uint32)(unsafe.Add(unsafe.Pointer(arrays), 4*i)) = id
		}
	}
	a.BindVertexArray = func(array uint32) { d.VAO = array }
	a.DeleteVertexArrays = func(n int32, arrays *uint32) {
		for i := int32(0); i < n; i++ {
			delete(d.vaos, *(*uint32)(unsafe.Add(unsafe.Pointer(arrays), 4*i)))
		}
	}
	a.GenBuffers = func(n int32, buffers *uint32) {
		for i := int32(0); i < n; i++ {
			id := d.genID()
			d.buffers[id] = nil
			*(*uint32)(unsafe.Add(unsafe.Pointer(buffers), 4*i)) = id
		}
	}
	a.BindBuffer = func(target uint32, buffer uint32) {
		switch target {
		case gl.ARRAY_BUFFER:
			d.ArrayBuffer = buffer
		case gl.ELEMENT_ARRAY_BUFFER:
			d.ElementBuffer = buffer
		}
	}
	a.BufferData = func(target uint32, size int, data *byte, usage uint32) {
		id := d.bufferAt(target)
		if id == 0 {
			d.raise(invalidOperation)
			return
		}
		store := make([]byte, size)
		copy(store, byteSlice(data, size))
		d.buffers[id] = store
		d.BufferDataCalls++
	}
	a.BufferSubData = func(target uint32, offset int, size int, data *byte) {
		id := d.bufferAt(target)
		store := d.buffers[id]
		if id == 0 || offset+size > len(store) {
			d.raise(invalidOperation)
			return
		}
		copy(store[offset:], byteSlice(data, size))
		d.BufferSubDataCalls++
	}
	a.DeleteBuffers = func(n int32, buffers *uint32) {
		for i := int32(0); i < n; i++ {
			delete(d.buffers, *(*uint32)(unsafe.Add(unsafe.Pointer(buffers), 4*i)))
		}
	}
	a.EnableVertexAttribArray = func(index uint32) {}
	a.VertexAttribPointer = func(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset uintptr) {}

	a.DrawElements = func(mode uint32, count int32, xtype uint32, indices uintptr) {
		if d.FailDraw {
			d.raise(invalidOperation)
			return
		}
		if xtype != gl.UNSIGNED_SHORT {
			d.raise(invalidOperation)
			return
		}
		call := DrawCall{
			Program:   d.Program,
			Texture:   d.Bound2D[d.ActiveUnit],
			ScissorOn: d.Enabled[gl.SCISSOR_TEST],
			Scissor:   d.ScissorBox,
			BlendOn:   d.Enabled[gl.BLEND],
			BlendSrc:  d.BlendSrc,
			BlendDst:  d.BlendDst,
			SRGBOn:    d.Enabled[gl.FRAMEBUFFER_SRGB],
		}
		if loc, ok := d.screenSizeLoc(); ok {
			if v, ok := d.uniformF[uniformKey{d.Program, loc}]; ok {
				call.ScreenSize = v
				call.HasScreenSize = true
			}
		}
		raw := d.buffers[d.ElementBuffer]
		off := int(indices)
		for i := 0; i < int(count); i++ {
			at := off + 2*i
			if at+2 > len(raw) {
				d.raise(invalidOperation)
				break
			}
			call.Indices = append(call.Indices, binary.LittleEndian.Uint16(raw[at:]))
		}
		d.Draws = append(d.Draws, call)
	}

	a.GenTextures = func(n int32, textures *uint32) {
		for i := int32(0); i < n; i++ {
			id := d.genID()
			d.textures[id] = &Texture{}
			*(*uint32)(unsafe.Add(unsafe.Pointer(textures), 4*i)) = id
		}
	}
	a.BindTexture = func(target uint32, texture uint32) {
		if target == gl.TEXTURE_2D {
			d.Bound2D[d.ActiveUnit] = texture
		}
	}
	a.DeleteTextures = func(n int32, textures *uint32) {
		for i := int32(0); i < n; i++ {
			delete(d.textures, *(*uint32)(unsafe.Add(unsafe.Pointer(textures), 4*i)))
		}
	}
	a.TexParameteri = func(target uint32, pname uint32, param int32) {
		t := d.textures[d.Bound2D[d.ActiveUnit]]
		if target != gl.TEXTURE_2D || t == nil {
			return
		}
		switch pname {
		case gl.TEXTURE_MIN_FILTER:
			t.MinFilter = param
		case gl.TEXTURE_MAG_FILTER:
			t.MagFilter = param
		case gl.TEXTURE_WRAP_S:
			t.WrapS = param
		case gl.TEXTURE_WRAP_T:
			t.WrapT = param
		}
	}
	a.TexImage2D = func(target uint32, level int32, internalformat int32, width, height int32, border int32, format uint32, xtype uint32, pixels *byte) {
		t := d.textures[d.Bound2D[d.ActiveUnit]]
		if t == nil {
			d.raise(invalidOperation)
			return
		}
		if d.FailUpload {
			d.raise(outOfMemory)
			return
		}
		img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
		copy(img.Pix, byteSlice(pixels, int(width*height*4)))
		t.Image = img
	}
	a.TexSubImage2D = func(target uint32, level int32, xoffset, yoffset int32, width, height int32, format uint32, xtype uint32, pixels *byte) {
		t := d.textures[d.Bound2D[d.ActiveUnit]]
		if t == nil || t.Image == nil {
			d.raise(invalidOperation)
			return
		}
		if d.FailUpload {
			d.raise(outOfMemory)
			return
		}
		r := image.Rect(int(xoffset), int(yoffset), int(xoffset+width), int(yoffset+height))
		if !r.In(t.Image.Rect) {
			d.raise(invalidValue)
			return
		}
		src := byteSlice(pixels, int(width*height*4))
		// Rows in the upload are tightly packed; honor the sub-rect stride of
		// the destination. Unpack alignment 1 is what tight packing needs.
		if d.Unpack != 1 && int(width*4)%int(d.Unpack) != 0 {
			d.raise(invalidOperation)
			return
		}
		for row := 0; row < int(height); row++ {
			dst := t.Image.PixOffset(int(xoffset), int(yoffset)+row)
			copy(t.Image.Pix[dst:dst+int(width)*4], src[row*int(width)*4:])
		}
	}
	a.PixelStorei = func(pname uint32, param int32) {
		if pname == gl.UNPACK_ALIGNMENT {
			d.Unpack = param
		}
	}
	a.ActiveTexture = func(texture uint32) { d.ActiveUnit = texture }

	a.Enable = func(cap uint32) { d.Enabled[cap] = true }
	a.Disable = func(cap uint32) { d.Enabled[cap] = false }
	a.IsEnabled = func(cap uint32) bool { return d.Enabled[cap] }
	a.BlendFunc = func(sfactor, dfactor uint32) {
		d.BlendSrc, d.BlendDst = sfactor, dfactor
	}
	a.Scissor = func(x, y, width, height int32) {
		d.ScissorBox = [4]int32{x, y, width, height}
	}
	a.Viewport = func(x, y, width, height int32) {
		d.ViewportBox = [4]int32{x, y, width, height}
	}
	a.GetIntegerv = func(pname uint32, data *int32) {
		put1 := func(v uint32) { *data = int32(v) }
		switch pname {
		case gl.CURRENT_PROGRAM:
			put1(d.Program)
		case gl.VERTEX_ARRAY_BINDING:
			put1(d.VAO)
		case gl.ARRAY_BUFFER_BINDING:
			put1(d.ArrayBuffer)
		case gl.ELEMENT_ARRAY_BUFFER_BINDING:
			put1(d.ElementBuffer)
		case gl.ACTIVE_TEXTURE:
			put1(d.ActiveUnit)
		case gl.TEXTURE_BINDING_2D:
			put1(d.Bound2D[d.ActiveUnit])
		case gl.BLEND_SRC_RGB:
			put1(d.BlendSrc)
		case gl.BLEND_DST_RGB:
			put1(d.BlendDst)
		case gl.UNPACK_ALIGNMENT:
			*data = d.Unpack
		case gl.SCISSOR_BOX:
			writeBox(data, d.ScissorBox)
		case gl.VIEWPORT:
			writeBox(data, d.ViewportBox)
		}
	}

	return a
}

const (
	invalidOperation = 0x0502
	invalidValue     = 0x0501
	outOfMemory      = 0x0505

	compileLog = "gltest: simulated shader failure"
	linkLog    = "gltest: simulated link failure"
)

func writeLog(msg string, bufSize int32, length *int32, infoLog *byte) {
	n := len(msg)
	if n > int(bufSize)-1 {
		n = int(bufSize) - 1
	}
	if n < 0 {
		n = 0
	}
	if infoLog != nil {
		dst := unsafe.Slice(infoLog, n+1)
		copy(dst, msg[:n])
		dst[n] = 0
	}
	if length != nil {
		*length = int32(n)
	}
}

func writeBox(data *int32, box [4]int32) {
	for i, v := range box {
		*(*int32)(unsafe.Add(unsafe.Pointer(data), 4*i)) = v
	}
}

func (d *Device) bufferAt(target uint32) uint32 {
	switch target {
	case gl.ARRAY_BUFFER:
		return d.ArrayBuffer
	case gl.ELEMENT_ARRAY_BUFFER:
		return d.ElementBuffer
	}
	return 0
}

func (d *Device) location(program uint32, name string, uniform bool) int32 {
	p := d.programs[program]
	if p == nil || name == "" {
		return -1
	}
	table := p.attribs
	if uniform {
		table = p.uniforms
	}
	if loc, ok := table[name]; ok {
		return loc
	}
	loc := p.nextLoc
	p.nextLoc++
	table[name] = loc
	return loc
}

func (d *Device) screenSizeLoc() (int32, bool) {
	p := d.programs[d.Program]
	if p == nil {
		return 0, false
	}
	loc, ok := p.uniforms["u_screen_size"]
	return loc, ok
}

// Dump prints a short description of the device, handy under -v.
func (d *Device) Dump() string {
	return fmt.Sprintf("gltest: %d textures, %d buffers, %d draws", len(d.textures), len(d.buffers), len(d.Draws))
}
