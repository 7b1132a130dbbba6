//go:build windows

package dylib

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// DefaultLibrary is the system GL library on Windows.
const DefaultLibrary = "opengl32.dll"

// Open loads (or finds already loaded) the named GL library and wires the
// two resolution stages: its export table, then wglGetProcAddress.
//
// LoadLibraryEx with the system32 restriction never maps a library from the
// host's working directory, which is attacker-controlled territory inside an
// arbitrary process.
func Open(library string) (*Resolver, error) {
	if library == "" {
		library = DefaultLibrary
	}
	handle, err := windows.LoadLibraryEx(library, 0, windows.LOAD_LIBRARY_SEARCH_SYSTEM32)
	if err != nil {
		return nil, fmt.Errorf("dylib: load %s: %w", library, err)
	}

	wglGetProcAddress, err := windows.GetProcAddress(handle, "wglGetProcAddress")
	if err != nil {
		return nil, fmt.Errorf("dylib: %s has no wglGetProcAddress: %w", library, err)
	}

	export := func(name string) (uintptr, error) {
		return windows.GetProcAddress(handle, name)
	}
	loader := func(name string) (uintptr, error) {
		cname, err := windows.BytePtrFromString(name)
		if err != nil {
			return 0, err
		}
		addr, _, _ := syscall.SyscallN(wglGetProcAddress, uintptr(unsafe.Pointer(cname)))
		return addr, nil
	}
	return NewResolver(export, loader), nil
}
