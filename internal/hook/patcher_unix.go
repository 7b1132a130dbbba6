//go:build linux || freebsd

package hook

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// processPatcher operates on the live process image.
type processPatcher struct{}

var (
	mmapMu      sync.Mutex
	mmapRegions = make(map[uintptr][]byte)
)

func (processPatcher) Read(addr uintptr, buf []byte) error {
	src := unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(buf))
	copy(buf, src)
	return nil
}

// Write lifts write protection on the pages spanning [addr, addr+len),
// patches, and restores read+execute. The target is code, so the restored
// protection is RX regardless of what it was before; querying the original
// flags portably is not possible without parsing /proc/self/maps.
func (processPatcher) Write(addr uintptr, data []byte) error {
	pageSize := uintptr(unix.Getpagesize())
	start := addr &^ (pageSize - 1)
	end := (addr + uintptr(len(data)) + pageSize - 1) &^ (pageSize - 1)
	pages := unsafe.Slice((*byte)(unsafe.Pointer(start)), end-start)

	if err := unix.Mprotect(pages, unix.PROT_READ|unix.PROT_WRITE|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect rwx: %w", err)
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(addr)), len(data))
	copy(dst, data)
	if err := unix.Mprotect(pages, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect rx: %w", err)
	}
	return nil
}

// AllocExecutable maps an anonymous region, copies the code in while the
// pages are writable, then seals them read+execute.
func (processPatcher) AllocExecutable(code []byte) (uintptr, error) {
	pageSize := unix.Getpagesize()
	size := (len(code) + pageSize - 1) / pageSize * pageSize
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, fmt.Errorf("mmap: %w", err)
	}
	copy(mem, code)
	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		_ = unix.Munmap(mem)
		return 0, fmt.Errorf("mprotect: %w", err)
	}
	addr := uintptr(unsafe.Pointer(&mem[0]))
	mmapMu.Lock()
	mmapRegions[addr] = mem
	mmapMu.Unlock()
	return addr, nil
}

func (processPatcher) FreeExecutable(addr uintptr, _ int) error {
	mmapMu.Lock()
	mem, ok := mmapRegions[addr]
	delete(mmapRegions, addr)
	mmapMu.Unlock()
	if !ok {
		return fmt.Errorf("hook: unknown trampoline %#x", addr)
	}
	return unix.Munmap(mem)
}
