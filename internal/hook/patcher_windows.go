//go:build windows

package hook

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// processPatcher operates on the live process image.
type processPatcher struct{}

func (processPatcher) Read(addr uintptr, buf []byte) error {
	src := unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(buf))
	copy(buf, src)
	return nil
}

// Write flips the target pages to RWX, patches, and restores the previous
// protection exactly as VirtualProtect reported it.
func (processPatcher) Write(addr uintptr, data []byte) error {
	var old uint32
	size := uintptr(len(data))
	if err := windows.VirtualProtect(addr, size, windows.PAGE_EXECUTE_READWRITE, &old); err != nil {
		return fmt.Errorf("VirtualProtect rwx: %w", err)
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(data))
	copy(dst, data)
	var scratch uint32
	if err := windows.VirtualProtect(addr, size, old, &scratch); err != nil {
		return fmt.Errorf("VirtualProtect restore: %w", err)
	}
	return nil
}

func (processPatcher) AllocExecutable(code []byte) (uintptr, error) {
	size := uintptr(len(code))
	addr, err := windows.VirtualAlloc(0, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return 0, fmt.Errorf("VirtualAlloc: %w", err)
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(code))
	copy(dst, code)
	var old uint32
	if err := windows.VirtualProtect(addr, size, windows.PAGE_EXECUTE_READ, &old); err != nil {
		_ = windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
		return 0, fmt.Errorf("VirtualProtect rx: %w", err)
	}
	return addr, nil
}

func (processPatcher) FreeExecutable(addr uintptr, _ int) error {
	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}
