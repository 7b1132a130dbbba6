package dylib

import (
	"errors"
	"testing"
)

func TestResolver_TwoStageOrder(t *testing.T) {
	exports := map[string]uintptr{"glClear": 0x1000}
	extensions := map[string]uintptr{"glBindVertexArray": 0x2000}

	var exportCalls, loaderCalls int
	r := NewResolver(
		func(name string) (uintptr, error) {
			exportCalls++
			return exports[name], nil
		},
		func(name string) (uintptr, error) {
			loaderCalls++
			return extensions[name], nil
		},
	)

	addr, err := r.Lookup("glClear")
	if err != nil {
		t.Fatalf("Lookup(glClear) error: %v", err)
	}
	if addr != 0x1000 {
		t.Errorf("Lookup(glClear) = %#x, want 0x1000", addr)
	}
	if loaderCalls != 0 {
		t.Errorf("stage-two loader consulted for a stage-one symbol")
	}

	addr, err = r.Lookup("glBindVertexArray")
	if err != nil {
		t.Fatalf("Lookup(glBindVertexArray) error: %v", err)
	}
	if addr != 0x2000 {
		t.Errorf("Lookup(glBindVertexArray) = %#x, want 0x2000", addr)
	}
	if exportCalls != 2 {
		t.Errorf("export stage consulted %d times, want 2", exportCalls)
	}
}

func TestResolver_CachesAndIsIdempotent(t *testing.T) {
	calls := 0
	r := NewResolver(func(name string) (uintptr, error) {
		calls++
		return 0x4242, nil
	}, nil)

	first, err := r.Lookup("glScissor")
	if err != nil {
		t.Fatalf("first Lookup error: %v", err)
	}
	second, err := r.Lookup("glScissor")
	if err != nil {
		t.Fatalf("second Lookup error: %v", err)
	}
	if first != second {
		t.Errorf("cached lookup returned %#x, want %#x", second, first)
	}
	if calls != 1 {
		t.Errorf("underlying lookup ran %d times, want 1", calls)
	}
}

func TestResolver_SymbolNotFound(t *testing.T) {
	r := NewResolver(
		func(string) (uintptr, error) { return 0, nil },
		func(string) (uintptr, error) { return 0, nil },
	)

	_, err := r.Lookup("glDoesNotExist")
	if !errors.Is(err, ErrSymbolNotFound) {
		t.Fatalf("Lookup error = %v, want ErrSymbolNotFound", err)
	}
	// The wrapped error should carry the symbol name for diagnostics.
	if got := err.Error(); got == ErrSymbolNotFound.Error() {
		t.Errorf("error %q does not name the missing symbol", got)
	}
}

func TestResolver_LoaderSentinelValues(t *testing.T) {
	// wglGetProcAddress returns small integers or -1 for misses; none of
	// them may be cached as callable addresses.
	for _, sentinel := range []uintptr{0, 1, 2, 3, ^uintptr(0)} {
		r := NewResolver(nil, func(string) (uintptr, error) {
			return sentinel, nil
		})
		if _, err := r.Lookup("glBogus"); !errors.Is(err, ErrSymbolNotFound) {
			t.Errorf("sentinel %#x accepted as an address", sentinel)
		}
	}
}

func TestResolver_Closed(t *testing.T) {
	r := NewResolver(func(string) (uintptr, error) { return 0x1, nil }, nil)
	r.Close()
	if _, err := r.Lookup("glClear"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Lookup after Close = %v, want ErrClosed", err)
	}
}
