package paint

import (
	"testing"

	"github.com/gogpu/overlay/internal/gl"
	"github.com/gogpu/overlay/internal/gltest"
)

func TestCaptureRestore_RoundTrip(t *testing.T) {
	d := gltest.NewDevice()
	api := d.API()

	// A host mid-frame: program bound, textures on two units, blending
	// configured, scissor armed.
	d.Program = 7
	d.VAO = 3
	d.ArrayBuffer = 11
	d.ElementBuffer = 12
	d.ActiveUnit = gl.TEXTURE0 + 2
	d.Bound2D[gl.TEXTURE0] = 21
	d.Bound2D[gl.TEXTURE0+2] = 22
	d.Enabled[gl.BLEND] = true
	d.BlendSrc = gl.ONE
	d.BlendDst = gl.ONE_MINUS_SRC_ALPHA
	d.Enabled[gl.SCISSOR_TEST] = false
	d.ScissorBox = [4]int32{1, 2, 3, 4}
	d.Enabled[gl.FRAMEBUFFER_SRGB] = false
	d.ViewportBox = [4]int32{0, 0, 800, 600}
	d.Unpack = 4

	want := d.CaptureState()
	snap := Capture(api)

	// Trash everything the overlay would touch.
	api.UseProgram(99)
	api.BindVertexArray(98)
	api.BindBuffer(gl.ARRAY_BUFFER, 97)
	api.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 96)
	api.ActiveTexture(gl.TEXTURE0)
	api.BindTexture(gl.TEXTURE_2D, 95)
	api.Enable(gl.SCISSOR_TEST)
	api.Scissor(9, 9, 9, 9)
	api.Enable(gl.FRAMEBUFFER_SRGB)
	api.BlendFunc(0x0302, 0x0303)
	api.Disable(gl.BLEND)
	api.Viewport(0, 0, 10, 10)
	api.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	snap.Restore(api)

	if got := d.CaptureState(); got != want {
		t.Errorf("state after restore = %+v, want %+v", got, want)
	}
	if got := d.Bound2D[gl.TEXTURE0]; got != 21 {
		t.Errorf("unit 0 binding after restore = %d, want 21", got)
	}
}

func TestCapture_DoesNotDisturbState(t *testing.T) {
	d := gltest.NewDevice()
	api := d.API()
	d.ActiveUnit = gl.TEXTURE0 + 1
	d.Bound2D[gl.TEXTURE0+1] = 5

	before := d.CaptureState()
	Capture(api)
	if got := d.CaptureState(); got != before {
		t.Errorf("capture changed device state: %+v != %+v", got, before)
	}
}
