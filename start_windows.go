package overlay

import "github.com/ebitengine/purego"

// defaultPresentSymbol is the call every double-buffered GL host goes
// through to flip a frame on Windows.
const defaultPresentSymbol = "wglSwapBuffers"

// nativeCallback wraps the orchestrator in a C-callable function with
// wglSwapBuffers' shape: BOOL (HDC).
func nativeCallback(o *Overlay) uintptr {
	return purego.NewCallback(func(hdc uintptr) uintptr {
		return o.present([]uintptr{hdc})
	})
}

func nativeCall(fn uintptr, args []uintptr) uintptr {
	r, _, _ := purego.SyscallN(fn, args...)
	return r
}
