//go:build linux || freebsd

package dylib

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// DefaultLibrary is the system GL library soname.
const DefaultLibrary = "libGL.so.1"

// Open dlopens the named GL library and wires the two resolution stages:
// dlsym against its exports, then glXGetProcAddressARB for extension entry
// points the export table does not carry.
func Open(library string) (*Resolver, error) {
	if library == "" {
		library = DefaultLibrary
	}
	lib, err := purego.Dlopen(library, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dylib: dlopen %s: %w", library, err)
	}

	// glXGetProcAddressARB is itself an export; without it only stage one
	// resolution is available.
	var glXGetProcAddress func(name string) uintptr
	if _, err := purego.Dlsym(lib, "glXGetProcAddressARB"); err == nil {
		purego.RegisterLibFunc(&glXGetProcAddress, lib, "glXGetProcAddressARB")
	}

	export := func(name string) (uintptr, error) {
		return purego.Dlsym(lib, name)
	}
	var loader LookupFunc
	if glXGetProcAddress != nil {
		loader = func(name string) (uintptr, error) {
			return glXGetProcAddress(name), nil
		}
	}
	return NewResolver(export, loader), nil
}
