package overlay

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/overlay/internal/dylib"
	"github.com/gogpu/overlay/internal/gl"
	"github.com/gogpu/overlay/internal/paint"
	"github.com/gogpu/overlay/scene"
)

type state uint8

const (
	stateIdle state = iota
	stateHooked
	stateStopped
)

// Overlay owns one interception of the host's present call and everything
// painted through it. Instances are independent; nothing here is a
// singleton, so tests run several side by side.
type Overlay struct {
	producer scene.Producer
	cfg      config

	mu       sync.Mutex
	cond     *sync.Cond
	state    state
	inFlight int

	resolver *dylib.Resolver
	api      *gl.API
	painter  *paint.Painter
	hook     presentHook
	original uintptr
}

// New builds an Overlay around the given GUI engine. Nothing touches the
// host until Start.
func New(producer scene.Producer, opts ...Option) *Overlay {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	o := &Overlay{producer: producer, cfg: cfg}
	o.cond = sync.NewCond(&o.mu)
	return o
}

// Start resolves the present entry point, loads the device function table,
// compiles the painter's program, and finally patches the present call.
// The host's GL context must be current on the calling thread: context-
// dependent symbol resolution and shader compilation both need it.
//
// Any failure unwinds completely — no partial hook is ever left behind.
// Start after Stop returns ErrStopped; the overlay does not re-hook.
func (o *Overlay) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case stateHooked:
		return ErrAlreadyStarted
	case stateStopped:
		return ErrStopped
	}

	log := Logger()

	resolver, err := o.cfg.openResolver(o.cfg.library)
	if err != nil {
		return fmt.Errorf("overlay: open GL library: %w", err)
	}
	target, err := resolver.Lookup(o.cfg.presentSymbol)
	if err != nil {
		resolver.Close()
		return fmt.Errorf("overlay: resolve present: %w", err)
	}
	api, err := o.cfg.loadAPI(resolver)
	if err != nil {
		resolver.Close()
		return fmt.Errorf("overlay: load device table: %w", err)
	}
	painter, err := paint.NewPainter(api)
	if err != nil {
		resolver.Close()
		return fmt.Errorf("overlay: build painter: %w", err)
	}

	// The hook goes in last: from this instant the host's frames detour
	// through us, so everything else must already work.
	replacement := o.cfg.makeCallback(o)
	h, err := o.cfg.install(target, replacement)
	if err != nil {
		painter.Destroy()
		resolver.Close()
		return fmt.Errorf("overlay: install hook: %w", err)
	}

	o.resolver = resolver
	o.api = api
	o.painter = painter
	o.hook = h
	o.original = h.Original()
	o.state = stateHooked

	log.Info("overlay: hooked present call",
		"symbol", o.cfg.presentSymbol, "target", fmt.Sprintf("%#x", target))
	logHostInfo(log)
	return nil
}

// Stop removes the hook and releases the painter's device resources. It
// first stops new frames from entering the overlay path, then waits until
// any frame already in flight has finished — through its forward to the
// original — so neither the painter's resources nor the trampoline are
// pulled out from under an active thread. Presents that enter the
// replacement after the drain are swallowed rather than forwarded; a host
// thread already past the patched jump but not yet inside present when the
// bytes are restored is the one window Stop cannot cover. Like Start, it
// needs the host's context current to delete device objects.
//
// Stop is terminal; a stopped Overlay cannot Start again. A second Stop is
// a no-op. Stop before Start returns ErrNotStarted.
func (o *Overlay) Stop() error {
	o.mu.Lock()

	switch o.state {
	case stateIdle:
		o.mu.Unlock()
		return ErrNotStarted
	case stateStopped:
		o.mu.Unlock()
		return nil
	}
	o.state = stateStopped
	for o.inFlight > 0 {
		o.cond.Wait()
	}
	// Zeroed under the same lock hold that ends the drain: no thread can
	// pick up the trampoline address between here and the uninstall below.
	o.original = 0

	h, painter, resolver := o.hook, o.painter, o.resolver
	o.hook, o.painter, o.api, o.resolver = nil, nil, nil, nil
	o.mu.Unlock()

	var errs []error
	if err := h.Uninstall(); err != nil {
		errs = append(errs, err)
	}
	painter.Destroy()
	resolver.Close()

	Logger().Info("overlay: unhooked present call")
	return errors.Join(errs...)
}

// Running reports whether the present hook is installed.
func (o *Overlay) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == stateHooked
}
