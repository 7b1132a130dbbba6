package overlay

import (
	"github.com/gogpu/overlay/internal/dylib"
	"github.com/gogpu/overlay/internal/gl"
	"github.com/gogpu/overlay/internal/hook"
	"github.com/gogpu/overlay/scene"
)

// Option configures an Overlay during creation.
//
// Example:
//
//	ov := overlay.New(engine,
//	    overlay.WithInputRelay(relay),
//	    overlay.WithPresentSymbol("wglSwapBuffers"))
type Option func(*config)

// presentHook is what the orchestrator needs from an installed hook.
// *hook.Hook satisfies it; tests substitute a stub.
type presentHook interface {
	Original() uintptr
	Uninstall() error
}

// config holds optional configuration for Overlay creation. The unexported
// function fields are seams: production wiring by default, fakes in tests.
type config struct {
	library         string
	presentSymbol   string
	relay           scene.Relay
	screenSource    func() scene.Screen
	suppressPresent bool

	openResolver func(library string) (*dylib.Resolver, error)
	loadAPI      func(r *dylib.Resolver) (*gl.API, error)
	install      func(target, replacement uintptr) (presentHook, error)
	makeCallback func(o *Overlay) uintptr
	callNative   func(fn uintptr, args []uintptr) uintptr
}

func defaultConfig() config {
	return config{
		presentSymbol: defaultPresentSymbol,
		relay:         scene.NopRelay{},
		openResolver:  dylib.Open,
		loadAPI:       gl.Load,
		install: func(target, replacement uintptr) (presentHook, error) {
			return hook.Install(target, replacement)
		},
		makeCallback: nativeCallback,
		callNative:   nativeCall,
	}
}

// WithLibrary overrides the GL library the resolver opens. Empty means the
// platform default (opengl32.dll or libGL.so.1).
func WithLibrary(path string) Option {
	return func(c *config) { c.library = path }
}

// WithPresentSymbol overrides the present entry point to intercept. The
// default is the platform's swap call (wglSwapBuffers or glXSwapBuffers);
// hosts presenting through an extension entry point need this.
func WithPresentSymbol(name string) Option {
	return func(c *config) { c.presentSymbol = name }
}

// WithInputRelay supplies the source of accumulated input events handed to
// the engine each frame. Without a relay the engine sees no input.
func WithInputRelay(r scene.Relay) Option {
	return func(c *config) {
		if r != nil {
			c.relay = r
		}
	}
}

// WithScreenSource overrides how the overlay learns the host framebuffer
// geometry each frame. The default queries the device viewport and assumes
// one physical pixel per logical pixel; hosts with DPI scaling supply the
// real mapping here.
func WithScreenSource(f func() scene.Screen) Option {
	return func(c *config) { c.screenSource = f }
}

// WithSuppressedPresent stops the overlay from forwarding to the original
// present call. The host's frame never reaches the screen. This exists for
// test harnesses; in a real host it freezes the application's output.
func WithSuppressedPresent() Option {
	return func(c *config) { c.suppressPresent = true }
}
