// Package overlay renders an immediate-mode GUI inside a host application's
// OpenGL pipeline without the host's cooperation.
//
// Start resolves the host's present entry point (wglSwapBuffers or
// glXSwapBuffers), patches it to detour through the overlay, and compiles
// the overlay's painter on the host's context. From then on every frame the
// host presents, the overlay snapshots the device state it is about to
// disturb, asks the external GUI engine for the frame's scene, paints it
// over the host's output, restores the snapshot, and forwards to the
// original present. The host cannot observe that anything ran.
//
// The GUI engine stays outside this module, behind scene.Producer: the
// overlay delivers accumulated input and the current screen geometry, the
// engine returns meshes and texture deltas. Widget layout, text shaping and
// how the overlay's code got into the host process are all the caller's
// business.
//
// By default the package produces no log output; see SetLogger.
package overlay
