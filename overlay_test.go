package overlay

import (
	"errors"
	"testing"

	"github.com/gogpu/overlay/internal/dylib"
	"github.com/gogpu/overlay/internal/gl"
	"github.com/gogpu/overlay/internal/gltest"
	"github.com/gogpu/overlay/internal/paint"
	"github.com/gogpu/overlay/scene"
)

const (
	fakePresentAddr  = uintptr(0x1000)
	fakeTrampoline   = uintptr(0x2000)
	fakeCallbackAddr = uintptr(0x3000)
)

type stubHook struct {
	uninstalls int
}

func (h *stubHook) Original() uintptr { return fakeTrampoline }
func (h *stubHook) Uninstall() error  { h.uninstalls++; return nil }

// harness wires an Overlay to a fake device and records the native-side
// effects the tests assert on.
type harness struct {
	device *gltest.Device
	hook   stubHook

	installedAt   uintptr
	installedWith uintptr
	installs      int

	nativeCalls []uintptr // fn of every forwarded present
}

func newHarness(t *testing.T, producer scene.Producer, opts ...Option) (*harness, *Overlay) {
	t.Helper()
	h := &harness{device: gltest.NewDevice()}

	o := New(producer, opts...)
	o.cfg.openResolver = func(string) (*dylib.Resolver, error) {
		return dylib.NewResolver(func(name string) (uintptr, error) {
			if name == defaultPresentSymbol {
				return fakePresentAddr, nil
			}
			return 0, nil
		}, nil), nil
	}
	o.cfg.loadAPI = func(*dylib.Resolver) (*gl.API, error) {
		return h.device.API(), nil
	}
	o.cfg.install = func(target, replacement uintptr) (presentHook, error) {
		h.installs++
		h.installedAt = target
		h.installedWith = replacement
		return &h.hook, nil
	}
	o.cfg.makeCallback = func(*Overlay) uintptr { return fakeCallbackAddr }
	o.cfg.callNative = func(fn uintptr, args []uintptr) uintptr {
		h.nativeCalls = append(h.nativeCalls, fn)
		return 1
	}
	return h, o
}

func emptyProducer() scene.Producer {
	return scene.ProducerFunc(func([]scene.Event, scene.Screen) ([]scene.Mesh, scene.TextureDelta) {
		return nil, scene.TextureDelta{}
	})
}

func TestStartStop_EndToEnd(t *testing.T) {
	h, o := newHarness(t, emptyProducer())
	h.device.ViewportBox = [4]int32{0, 0, 640, 480}

	if err := o.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !o.Running() {
		t.Fatalf("not running after Start")
	}
	if h.installs != 1 || h.installedAt != fakePresentAddr || h.installedWith != fakeCallbackAddr {
		t.Errorf("install = %d at %#x with %#x, want 1 at %#x with %#x",
			h.installs, h.installedAt, h.installedWith, fakePresentAddr, fakeCallbackAddr)
	}

	// One present with an empty scene: snapshot, no draws, restore,
	// original invoked exactly once.
	before := h.device.CaptureState()
	if got := o.present([]uintptr{0xAB}); got != 1 {
		t.Errorf("present returned %d, want 1", got)
	}
	if len(h.device.Draws) != 0 {
		t.Errorf("empty scene issued %d draws", len(h.device.Draws))
	}
	if got := h.device.CaptureState(); got != before {
		t.Errorf("device state changed across present:\n got %+v\nwant %+v", got, before)
	}
	if len(h.nativeCalls) != 1 || h.nativeCalls[0] != fakeTrampoline {
		t.Fatalf("native calls = %#v, want exactly one to the trampoline", h.nativeCalls)
	}

	if err := o.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if o.Running() {
		t.Errorf("still running after Stop")
	}
	if h.hook.uninstalls != 1 {
		t.Errorf("uninstalls = %d, want 1", h.hook.uninstalls)
	}
	if h.device.TextureCount() != 0 {
		t.Errorf("device textures after Stop = %d, want 0", h.device.TextureCount())
	}

	// A straggler present after Stop is swallowed: the trampoline is gone,
	// so there is nothing safe left to forward to.
	if got := o.present([]uintptr{0xAB}); got != presentOK {
		t.Errorf("straggler present returned %d, want %d", got, presentOK)
	}
	if len(h.nativeCalls) != 1 {
		t.Errorf("straggler present forwarded after teardown: %#v", h.nativeCalls)
	}
	if len(h.device.Draws) != 0 {
		t.Errorf("straggler present rendered")
	}

	if err := o.Stop(); err != nil {
		t.Errorf("second Stop = %v, want nil", err)
	}
	if err := o.Start(); !errors.Is(err, ErrStopped) {
		t.Errorf("Start after Stop = %v, want ErrStopped", err)
	}
}

func TestStart_SecondStart(t *testing.T) {
	_, o := newHarness(t, emptyProducer())
	if err := o.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := o.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start = %v, want ErrAlreadyStarted", err)
	}
}

func TestStart_UnknownPresentSymbol(t *testing.T) {
	h, o := newHarness(t, emptyProducer(), WithPresentSymbol("wglSwapBuffersEXT"))

	err := o.Start()
	if !errors.Is(err, dylib.ErrSymbolNotFound) {
		t.Fatalf("Start = %v, want ErrSymbolNotFound", err)
	}
	if h.installs != 0 {
		t.Errorf("failed Start installed a hook")
	}
	if o.Running() {
		t.Errorf("running after failed Start")
	}
}

func TestStart_ShaderFailureUnwinds(t *testing.T) {
	h, o := newHarness(t, emptyProducer())
	h.device.FailCompile = true

	err := o.Start()
	if !errors.Is(err, paint.ErrShaderCompile) {
		t.Fatalf("Start = %v, want ErrShaderCompile", err)
	}
	if h.installs != 0 {
		t.Errorf("failed Start installed a hook")
	}
}

func TestStop_BeforeStart(t *testing.T) {
	_, o := newHarness(t, emptyProducer())
	if err := o.Stop(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Stop before Start = %v, want ErrNotStarted", err)
	}
}

func sceneProducer() scene.Producer {
	uploaded := false
	return scene.ProducerFunc(func(_ []scene.Event, screen scene.Screen) ([]scene.Mesh, scene.TextureDelta) {
		var delta scene.TextureDelta
		if !uploaded {
			uploaded = true
			delta.Set = []scene.TextureUpdate{{
				ID:    1,
				Image: scene.ImageData{Width: 1, Height: 1, Pixels: []byte{255, 255, 255, 255}},
			}}
		}
		mesh := scene.Mesh{
			Vertices: []scene.Vertex{
				{Pos: [2]float32{0, 0}, Color: [4]uint8{255, 0, 0, 255}},
				{Pos: [2]float32{20, 0}, Color: [4]uint8{255, 0, 0, 255}},
				{Pos: [2]float32{0, 20}, Color: [4]uint8{255, 0, 0, 255}},
			},
			Indices: []uint32{0, 1, 2},
			Texture: 1,
			Clip:    screen.Bounds(),
		}
		return []scene.Mesh{mesh}, delta
	})
}

func TestPresent_PaintsScene(t *testing.T) {
	h, o := newHarness(t, sceneProducer())
	h.device.ViewportBox = [4]int32{0, 0, 320, 200}

	if err := o.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	before := h.device.CaptureState()
	o.present([]uintptr{0xAB})

	if len(h.device.Draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(h.device.Draws))
	}
	call := h.device.Draws[0]
	if !call.BlendOn || !call.ScissorOn || !call.SRGBOn {
		t.Errorf("draw state: blend=%v scissor=%v srgb=%v, want all true",
			call.BlendOn, call.ScissorOn, call.SRGBOn)
	}
	if !call.HasScreenSize || call.ScreenSize != [2]float32{320, 200} {
		t.Errorf("screen size uniform = %v, want [320 200]", call.ScreenSize)
	}
	if got := h.device.CaptureState(); got != before {
		t.Errorf("device state not restored:\n got %+v\nwant %+v", got, before)
	}
	if len(h.nativeCalls) != 1 {
		t.Errorf("original present called %d times, want 1", len(h.nativeCalls))
	}
}

func TestPresent_CustomScreenSource(t *testing.T) {
	var seen scene.Screen
	producer := scene.ProducerFunc(func(_ []scene.Event, screen scene.Screen) ([]scene.Mesh, scene.TextureDelta) {
		seen = screen
		return nil, scene.TextureDelta{}
	})
	want := scene.Screen{Width: 2560, Height: 1440, PixelsPerPoint: 2}
	_, o := newHarness(t, producer, WithScreenSource(func() scene.Screen { return want }))

	if err := o.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	o.present(nil)
	if seen != want {
		t.Errorf("engine saw screen %+v, want %+v", seen, want)
	}
}

type queueRelay struct {
	events []scene.Event
}

func (r *queueRelay) Drain() []scene.Event {
	ev := r.events
	r.events = nil
	return ev
}

func TestPresent_DrainsInputRelay(t *testing.T) {
	relay := &queueRelay{events: []scene.Event{
		{Kind: scene.EventPointerMove, Pos: [2]float32{10, 20}},
		{Kind: scene.EventPointerButton, Button: scene.ButtonPrimary, Pressed: true},
	}}
	var got []scene.Event
	producer := scene.ProducerFunc(func(input []scene.Event, _ scene.Screen) ([]scene.Mesh, scene.TextureDelta) {
		got = append(got, input...)
		return nil, scene.TextureDelta{}
	})
	h, o := newHarness(t, producer, WithInputRelay(relay))
	h.device.ViewportBox = [4]int32{0, 0, 100, 100}

	if err := o.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	o.present(nil)
	if len(got) != 2 {
		t.Fatalf("engine received %d events, want 2", len(got))
	}
	o.present(nil)
	if len(got) != 2 {
		t.Errorf("drained events delivered twice")
	}
}

func TestPresent_Suppressed(t *testing.T) {
	h, o := newHarness(t, emptyProducer(), WithSuppressedPresent())
	h.device.ViewportBox = [4]int32{0, 0, 100, 100}

	if err := o.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := o.present(nil); got != presentOK {
		t.Errorf("suppressed present returned %d, want %d", got, presentOK)
	}
	if len(h.nativeCalls) != 0 {
		t.Errorf("suppressed present still forwarded to the original")
	}
}

func TestPresent_DrawFailureRestoresAndForwards(t *testing.T) {
	h, o := newHarness(t, sceneProducer())
	h.device.ViewportBox = [4]int32{0, 0, 100, 100}
	h.device.FailDraw = true

	if err := o.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	before := h.device.CaptureState()
	if got := o.present([]uintptr{0xAB}); got != 1 {
		t.Errorf("present returned %d, want 1", got)
	}

	// The draw failed mid-paint; the frame is abandoned but the host gets
	// its state back and its present exactly once.
	if len(h.device.Draws) != 0 {
		t.Errorf("draws = %d, want 0 (device rejected the draw)", len(h.device.Draws))
	}
	if got := h.device.CaptureState(); got != before {
		t.Errorf("device state not restored after failed paint:\n got %+v\nwant %+v", got, before)
	}
	if len(h.nativeCalls) != 1 || h.nativeCalls[0] != fakeTrampoline {
		t.Errorf("native calls = %#v, want exactly one to the trampoline", h.nativeCalls)
	}
}

func TestPresent_UploadFailureStillForwards(t *testing.T) {
	h, o := newHarness(t, sceneProducer())
	h.device.ViewportBox = [4]int32{0, 0, 100, 100}
	h.device.FailUpload = true

	if err := o.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	before := h.device.CaptureState()
	o.present(nil)

	// The texture never made it, so its mesh is skipped; the frame itself
	// survives and the host still presents.
	if len(h.device.Draws) != 0 {
		t.Errorf("draws = %d, want 0 (texture never uploaded)", len(h.device.Draws))
	}
	if got := h.device.CaptureState(); got != before {
		t.Errorf("device state not restored after failed sync")
	}
	if len(h.nativeCalls) != 1 {
		t.Errorf("original present called %d times, want 1", len(h.nativeCalls))
	}
}
