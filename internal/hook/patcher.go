package hook

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned by BufferPatcher for accesses outside its
// simulated region.
var ErrOutOfRange = errors.New("hook: address outside patcher region")

// BufferPatcher implements Patcher over a plain byte slice standing in for
// a code region at a chosen base address. It exists so the install/uninstall
// byte contracts can be exercised against fabricated prologues instead of
// live executable memory.
type BufferPatcher struct {
	base uintptr
	mem  []byte

	// FailWrites makes every Write fail, simulating protected memory.
	FailWrites bool

	execBase uintptr
	execs    map[uintptr][]byte
}

// NewBufferPatcher creates a simulated code region of the given size whose
// first byte lives at base.
func NewBufferPatcher(base uintptr, size int) *BufferPatcher {
	return &BufferPatcher{
		base:     base,
		mem:      make([]byte, size),
		execBase: base + uintptr(size) + 0x1000,
		execs:    make(map[uintptr][]byte),
	}
}

// Load copies code into the region at the given offset.
func (b *BufferPatcher) Load(off int, code []byte) {
	copy(b.mem[off:], code)
}

// Bytes returns the current content of the region.
func (b *BufferPatcher) Bytes() []byte { return b.mem }

// Executable returns the code placed at a trampoline address, or nil.
func (b *BufferPatcher) Executable(addr uintptr) []byte { return b.execs[addr] }

func (b *BufferPatcher) slice(addr uintptr, n int) ([]byte, error) {
	if addr < b.base || addr+uintptr(n) > b.base+uintptr(len(b.mem)) {
		return nil, fmt.Errorf("%w: %#x+%d", ErrOutOfRange, addr, n)
	}
	off := int(addr - b.base)
	return b.mem[off : off+n], nil
}

// Read implements Patcher.
func (b *BufferPatcher) Read(addr uintptr, buf []byte) error {
	src, err := b.slice(addr, len(buf))
	if err != nil {
		return err
	}
	copy(buf, src)
	return nil
}

// Write implements Patcher.
func (b *BufferPatcher) Write(addr uintptr, data []byte) error {
	if b.FailWrites {
		return fmt.Errorf("hook: simulated protection fault at %#x", addr)
	}
	dst, err := b.slice(addr, len(data))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// AllocExecutable implements Patcher.
func (b *BufferPatcher) AllocExecutable(code []byte) (uintptr, error) {
	addr := b.execBase
	b.execBase += uintptr(len(code) + 0x100)
	b.execs[addr] = append([]byte(nil), code...)
	return addr, nil
}

// FreeExecutable implements Patcher.
func (b *BufferPatcher) FreeExecutable(addr uintptr, _ int) error {
	if _, ok := b.execs[addr]; !ok {
		return fmt.Errorf("%w: %#x", ErrOutOfRange, addr)
	}
	delete(b.execs, addr)
	return nil
}
