package gl

import (
	"errors"
	"fmt"
)

// ErrDeviceCall is returned when the device reports an error flag after an
// overlay-issued command sequence.
var ErrDeviceCall = errors.New("gl: device call failed")

// CheckError drains the device error flag and, if any error was pending,
// returns ErrDeviceCall annotated with the operation name and the first
// reported code. The flag is sticky per context, so the full queue is
// drained to avoid blaming a later caller for our errors.
func (a *API) CheckError(op string) error {
	code := a.GetError()
	if code == NO_ERROR {
		return nil
	}
	for a.GetError() != NO_ERROR {
	}
	return fmt.Errorf("%w: %s (0x%04x)", ErrDeviceCall, op, code)
}
