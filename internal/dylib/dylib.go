// Package dylib resolves graphics-API entry points inside the host process
// at runtime. The overlay cannot link against the host's GL library — which
// image exports a given symbol depends on the driver and API version — so
// every address is looked up dynamically and cached for the process's
// lifetime.
package dylib

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSymbolNotFound is returned when neither resolution stage knows the
	// requested name.
	ErrSymbolNotFound = errors.New("dylib: symbol not found")

	// ErrClosed is returned for lookups after Close. Reloading the
	// underlying library is not supported; failing fast beats handing out a
	// stale address.
	ErrClosed = errors.New("dylib: resolver closed")
)

// LookupFunc resolves a symbol name to a machine address. A zero address
// with a nil error is treated as a miss.
type LookupFunc func(name string) (uintptr, error)

// Resolver performs two-stage symbol resolution. Stage one queries the
// exports of the statically loaded system GL library. Stage two queries the
// context-dependent extension loader (wglGetProcAddress on Windows,
// glXGetProcAddressARB elsewhere), which only returns valid addresses while
// a GL context is current on the calling thread — callers must guarantee
// currency before resolving anything stage one cannot serve.
//
// Results are cached: repeated lookups for the same name are idempotent and
// return the same address until Close.
type Resolver struct {
	mu     sync.Mutex
	export LookupFunc
	loader LookupFunc
	cache  map[string]uintptr
	closed bool
}

// NewResolver builds a Resolver from the two stage functions. Production
// code uses Open (per-platform); tests inject fakes here.
func NewResolver(export, loader LookupFunc) *Resolver {
	return &Resolver{
		export: export,
		loader: loader,
		cache:  make(map[string]uintptr),
	}
}

// Lookup returns the address bound to name, consulting the cache, then the
// export table, then the extension loader. A miss in both stages returns
// ErrSymbolNotFound wrapped with the name.
func (r *Resolver) Lookup(name string) (uintptr, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, fmt.Errorf("%q: %w", name, ErrClosed)
	}
	if addr, ok := r.cache[name]; ok {
		return addr, nil
	}

	if r.export != nil {
		if addr, err := r.export(name); err == nil && addr != 0 {
			r.cache[name] = addr
			return addr, nil
		}
	}
	if r.loader != nil {
		if addr, err := r.loader(name); err == nil && validLoaderAddr(addr) {
			r.cache[name] = addr
			return addr, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrSymbolNotFound)
}

// Close invalidates the resolver. Cached addresses held by callers stay
// usable for the process's lifetime; only new lookups fail.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.cache = nil
}

// validLoaderAddr filters the sentinel values extension loaders return for
// unknown names. wglGetProcAddress in particular yields 1, 2, 3 or -1
// instead of null for some misses.
func validLoaderAddr(addr uintptr) bool {
	switch addr {
	case 0, 1, 2, 3, ^uintptr(0):
		return false
	}
	return true
}
