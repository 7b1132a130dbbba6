//go:build linux || freebsd

package overlay

import "github.com/ebitengine/purego"

// defaultPresentSymbol is the call every double-buffered GLX host goes
// through to flip a frame.
const defaultPresentSymbol = "glXSwapBuffers"

// nativeCallback wraps the orchestrator in a C-callable function with
// glXSwapBuffers' shape: void (Display*, GLXDrawable).
func nativeCallback(o *Overlay) uintptr {
	return purego.NewCallback(func(dpy, drawable uintptr) uintptr {
		return o.present([]uintptr{dpy, drawable})
	})
}

func nativeCall(fn uintptr, args []uintptr) uintptr {
	r, _, _ := purego.SyscallN(fn, args...)
	return r
}
