package overlay

import (
	"log/slog"

	"github.com/gogpu/overlay/internal/gl"
	"github.com/gogpu/overlay/internal/paint"
	"github.com/gogpu/overlay/scene"
)

// presentOK is what a swallowed present call reports to the host: the
// wgl swap returns TRUE on success and the glX swap returns nothing.
const presentOK = 1

// present is the replacement the host's present call detours into. It runs
// on the host's presenting thread with the host's context current — the one
// place per frame the overlay is allowed to touch the device.
//
// Every entrant counts toward inFlight for its whole stay, the forward to
// the original included, so Stop's quiescence wait covers any thread still
// holding the trampoline address. A thread that arrives after Stop has
// drained finds original zeroed and swallows the call instead of jumping
// into freed memory — the host loses at most one present during teardown.
func (o *Overlay) present(args []uintptr) uintptr {
	o.mu.Lock()
	o.inFlight++
	hooked := o.state == stateHooked
	fn := o.original
	api, painter := o.api, o.painter
	o.mu.Unlock()

	if hooked {
		o.renderFrame(api, painter)
	}

	ret := uintptr(presentOK)
	if fn != 0 && !(hooked && o.cfg.suppressPresent) {
		ret = o.cfg.callNative(fn, args)
	}

	o.mu.Lock()
	o.inFlight--
	o.cond.Broadcast()
	o.mu.Unlock()
	return ret
}

// renderFrame paints one overlay frame between the host's last draw and its
// present. Whatever happens in between — including a failed paint — the
// captured state is restored before the host resumes.
func (o *Overlay) renderFrame(api *gl.API, painter *paint.Painter) {
	log := Logger()

	snap := paint.Capture(api)
	defer snap.Restore(api)

	screen := o.screen(api)
	if screen.Width <= 0 || screen.Height <= 0 {
		return
	}

	input := o.cfg.relay.Drain()
	meshes, delta := o.producer.ProduceScene(input, screen)
	if log.Enabled(nil, slog.LevelDebug) {
		log.Debug("overlay: frame",
			"meshes", len(meshes), "set", len(delta.Set), "free", len(delta.Free),
			"events", len(input), "w", screen.Width, "h", screen.Height)
	}

	// Upload failures cost the affected textures one frame, not the frame.
	if err := painter.SyncTextures(delta.Set); err != nil {
		log.Warn("overlay: texture sync", "err", err)
	}
	if err := painter.Paint(screen, meshes); err != nil {
		log.Warn("overlay: frame aborted", "err", err)
	}
	// Free after painting: a texture freed this frame may still be
	// referenced by this frame's meshes.
	painter.FreeTextures(delta.Free)
}

// screen determines the host framebuffer geometry for this frame, from the
// configured source or from the device viewport.
func (o *Overlay) screen(api *gl.API) scene.Screen {
	if o.cfg.screenSource != nil {
		return o.cfg.screenSource()
	}
	var vp [4]int32
	api.GetIntegerv(gl.VIEWPORT, &vp[0])
	return scene.Screen{Width: int(vp[2]), Height: int(vp[3]), PixelsPerPoint: 1}
}
