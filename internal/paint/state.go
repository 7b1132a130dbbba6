package paint

import "github.com/gogpu/overlay/internal/gl"

// Snapshot holds the host device state the overlay disturbs while painting.
// Capture before touching the pipeline, Restore after, every frame; the host
// must not be able to observe that anything ran between its last command and
// the present call.
type Snapshot struct {
	Program       uint32
	VAO           uint32
	ArrayBuffer   uint32
	ElementBuffer uint32
	ActiveUnit    uint32
	Texture2D     uint32 // binding on the unit that was active
	Unit0Tex2D    uint32 // binding on unit 0, where the overlay samples
	BlendOn       bool
	BlendSrc      uint32
	BlendDst      uint32
	ScissorOn     bool
	ScissorBox    [4]int32
	SRGBOn        bool
	Viewport      [4]int32
	Unpack        int32
}

func getInt(api *gl.API, pname uint32) int32 {
	var v int32
	api.GetIntegerv(pname, &v)
	return v
}

func getBox(api *gl.API, pname uint32) [4]int32 {
	var v [4]int32
	api.GetIntegerv(pname, &v[0])
	return v
}

// Capture reads the current device state.
func Capture(api *gl.API) Snapshot {
	s := Snapshot{
		Program:       uint32(getInt(api, gl.CURRENT_PROGRAM)),
		VAO:           uint32(getInt(api, gl.VERTEX_ARRAY_BINDING)),
		ArrayBuffer:   uint32(getInt(api, gl.ARRAY_BUFFER_BINDING)),
		ElementBuffer: uint32(getInt(api, gl.ELEMENT_ARRAY_BUFFER_BINDING)),
		ActiveUnit:    uint32(getInt(api, gl.ACTIVE_TEXTURE)),
		Texture2D:     uint32(getInt(api, gl.TEXTURE_BINDING_2D)),
		BlendOn:       api.IsEnabled(gl.BLEND),
		BlendSrc:      uint32(getInt(api, gl.BLEND_SRC_RGB)),
		BlendDst:      uint32(getInt(api, gl.BLEND_DST_RGB)),
		ScissorOn:     api.IsEnabled(gl.SCISSOR_TEST),
		ScissorBox:    getBox(api, gl.SCISSOR_BOX),
		SRGBOn:        api.IsEnabled(gl.FRAMEBUFFER_SRGB),
		Viewport:      getBox(api, gl.VIEWPORT),
		Unpack:        getInt(api, gl.UNPACK_ALIGNMENT),
	}
	if s.ActiveUnit == gl.TEXTURE0 {
		s.Unit0Tex2D = s.Texture2D
	} else {
		api.ActiveTexture(gl.TEXTURE0)
		s.Unit0Tex2D = uint32(getInt(api, gl.TEXTURE_BINDING_2D))
		api.ActiveTexture(s.ActiveUnit)
	}
	return s
}

// Restore writes the snapshot back. The vertex array is bound before the
// buffer targets: binding a VAO overwrites the element buffer binding, so
// the opposite order would lose it.
func (s Snapshot) Restore(api *gl.API) {
	api.UseProgram(s.Program)
	api.BindVertexArray(s.VAO)
	api.BindBuffer(gl.ARRAY_BUFFER, s.ArrayBuffer)
	api.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, s.ElementBuffer)

	api.ActiveTexture(gl.TEXTURE0)
	api.BindTexture(gl.TEXTURE_2D, s.Unit0Tex2D)
	api.ActiveTexture(s.ActiveUnit)
	api.BindTexture(gl.TEXTURE_2D, s.Texture2D)

	setCap(api, gl.BLEND, s.BlendOn)
	api.BlendFunc(s.BlendSrc, s.BlendDst)
	setCap(api, gl.SCISSOR_TEST, s.ScissorOn)
	api.Scissor(s.ScissorBox[0], s.ScissorBox[1], s.ScissorBox[2], s.ScissorBox[3])
	setCap(api, gl.FRAMEBUFFER_SRGB, s.SRGBOn)
	api.Viewport(s.Viewport[0], s.Viewport[1], s.Viewport[2], s.Viewport[3])
	api.PixelStorei(gl.UNPACK_ALIGNMENT, s.Unpack)
}

func setCap(api *gl.API, cap uint32, on bool) {
	if on {
		api.Enable(cap)
	} else {
		api.Disable(cap)
	}
}
