//go:build !amd64

package hook

import "fmt"

// Only amd64 prologues are understood today. Other architectures fail the
// install instead of patching blind.

const (
	jumpSize           = 14
	nopOpcode          = 0x00
	prologueScanWindow = jumpSize
)

func jumpTo(uintptr) []byte {
	return make([]byte, jumpSize)
}

func relocatablePrefix([]byte, int) (int, error) {
	return 0, fmt.Errorf("%w: unsupported architecture", ErrNotRelocatable)
}
