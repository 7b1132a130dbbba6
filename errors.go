package overlay

import "errors"

var (
	// ErrAlreadyStarted is returned by Start when the overlay is already
	// hooked into the host's present call.
	ErrAlreadyStarted = errors.New("overlay: already started")

	// ErrNotStarted is returned by operations that need an installed hook
	// when there is none.
	ErrNotStarted = errors.New("overlay: not started")

	// ErrStopped is returned by Start after Stop: the overlay does not
	// support re-hooking, teardown is terminal.
	ErrStopped = errors.New("overlay: stopped")
)
