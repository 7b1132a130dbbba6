// Package hook redirects a function's entry point to overlay-controlled code
// while keeping the original callable through a trampoline.
//
// Installation rewrites the first bytes of the target with an absolute jump
// to the replacement. The overwritten prologue instructions are relocated
// into a freshly allocated executable region followed by a jump back to the
// remainder of the original body; calling that region behaves exactly like
// the unhooked function. Uninstall restores the original bytes and releases
// the trampoline.
//
// Install and Uninstall mutate memory that another thread may be executing.
// The package does not attempt to synchronize against that — callers run
// them once each, at startup and shutdown, outside any render hot path.
package hook

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrAlreadyHooked is returned when the target address already has an
	// active hook. Double-patching is a logic error, never silently stacked.
	ErrAlreadyHooked = errors.New("hook: target already hooked")

	// ErrTargetUnwritable is returned when memory protection prevents
	// patching the target. The overlay cannot function without the patch.
	ErrTargetUnwritable = errors.New("hook: target memory not writable")

	// ErrNotRelocatable is returned when the target's prologue cannot be
	// moved into a trampoline (IP-relative or unrecognized instructions).
	ErrNotRelocatable = errors.New("hook: prologue not relocatable")
)

// Patcher abstracts the raw memory operations hooks need. The process
// patcher (per platform) works on live code; tests use a BufferPatcher over
// plain bytes so the byte-restoration contract is checkable without
// touching executable memory.
type Patcher interface {
	// Read copies len(buf) bytes from addr into buf.
	Read(addr uintptr, buf []byte) error

	// Write copies data to addr, lifting and restoring write protection as
	// needed.
	Write(addr uintptr, data []byte) error

	// AllocExecutable places code in newly allocated executable memory and
	// returns its address.
	AllocExecutable(code []byte) (uintptr, error)

	// FreeExecutable releases a region returned by AllocExecutable.
	FreeExecutable(addr uintptr, size int) error
}

// Hook records one installed interception: the target, the bytes it
// displaced, and the trampoline that still reaches the original body.
// At most one active Hook exists per target address.
type Hook struct {
	target      uintptr
	replacement uintptr
	saved       []byte
	tramp       uintptr
	trampSize   int
	p           Patcher
	installed   bool
}

var (
	regMu sync.Mutex
	hooks = make(map[uintptr]*Hook)
)

// Install patches the running process so that calls to target land in
// replacement. The returned Hook's Original method yields an address that
// still executes the unhooked function.
func Install(target, replacement uintptr) (*Hook, error) {
	return InstallWith(processPatcher{}, target, replacement)
}

// InstallWith is Install with an explicit Patcher.
func InstallWith(p Patcher, target, replacement uintptr) (*Hook, error) {
	regMu.Lock()
	defer regMu.Unlock()

	if _, ok := hooks[target]; ok {
		return nil, fmt.Errorf("%w: %#x", ErrAlreadyHooked, target)
	}

	// Walk whole instructions until the absolute jump fits.
	head := make([]byte, prologueScanWindow)
	if err := p.Read(target, head); err != nil {
		return nil, fmt.Errorf("hook: read target %#x: %w", target, err)
	}
	stolen, err := relocatablePrefix(head, jumpSize)
	if err != nil {
		return nil, err
	}
	saved := make([]byte, stolen)
	copy(saved, head[:stolen])

	// Trampoline: displaced prologue, then jump to the remainder.
	trampCode := make([]byte, 0, stolen+jumpSize)
	trampCode = append(trampCode, saved...)
	trampCode = append(trampCode, jumpTo(target+uintptr(stolen))...)
	tramp, err := p.AllocExecutable(trampCode)
	if err != nil {
		return nil, fmt.Errorf("hook: allocate trampoline: %w", err)
	}

	// Patch: absolute jump, NOP fill up to the instruction boundary so a
	// disassembler (or our own uninstall check) sees no torn instruction.
	patch := make([]byte, stolen)
	copy(patch, jumpTo(replacement))
	for i := jumpSize; i < stolen; i++ {
		patch[i] = nopOpcode
	}
	if err := p.Write(target, patch); err != nil {
		_ = p.FreeExecutable(tramp, len(trampCode))
		return nil, fmt.Errorf("%w: %#x: %v", ErrTargetUnwritable, target, err)
	}

	h := &Hook{
		target:      target,
		replacement: replacement,
		saved:       saved,
		tramp:       tramp,
		trampSize:   len(trampCode),
		p:           p,
		installed:   true,
	}
	hooks[target] = h
	return h, nil
}

// Target returns the hooked address.
func (h *Hook) Target() uintptr { return h.target }

// Original returns an address that executes the unhooked function. It stays
// valid until Uninstall.
func (h *Hook) Original() uintptr { return h.tramp }

// Installed reports whether the hook is still active.
func (h *Hook) Installed() bool {
	regMu.Lock()
	defer regMu.Unlock()
	return h.installed
}

// Uninstall restores the target's original bytes exactly and releases the
// trampoline. Calling it on an already-uninstalled hook is a no-op.
func (h *Hook) Uninstall() error {
	regMu.Lock()
	defer regMu.Unlock()

	if !h.installed {
		return nil
	}
	if err := h.p.Write(h.target, h.saved); err != nil {
		// Leave the hook registered: the patch is still in place and the
		// trampoline must stay alive for it.
		return fmt.Errorf("%w: restore %#x: %v", ErrTargetUnwritable, h.target, err)
	}
	h.installed = false
	delete(hooks, h.target)
	err := h.p.FreeExecutable(h.tramp, h.trampSize)
	h.tramp = 0
	if err != nil {
		return fmt.Errorf("hook: release trampoline: %w", err)
	}
	return nil
}

// Active reports whether some hook currently claims the target address.
func Active(target uintptr) bool {
	regMu.Lock()
	defer regMu.Unlock()
	_, ok := hooks[target]
	return ok
}
