package max170xx

import (
	"errors"
	"fmt"
)

// ErrUnknownVariant is returned by New and ParseVariant for names or values
// outside the supported set.
var ErrUnknownVariant = errors.New("max170xx: unknown variant")

// BusError wraps a transport failure together with the exchange that hit it.
// It is the only error driver operations return.
type BusError struct {
	Op  string // "read", "write" or "write8"
	Reg byte
	Err error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("max170xx: %s reg 0x%02X: %v", e.Op, e.Reg, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }
