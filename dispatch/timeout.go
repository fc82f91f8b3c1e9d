package dispatch

import (
	"time"

	"github.com/pithecene-io/amlctl/types"
)

// Default wait budgets per device family.
const (
	TapeTimeout    = 600 * time.Second
	OpticalTimeout = 300 * time.Second
	OtherTimeout   = 3600 * time.Second
)

// DefaultTimeout returns the default wait budget for a device class.
func DefaultTimeout(class types.DeviceClass) time.Duration {
	switch class {
	case types.ClassTape:
		return TapeTimeout
	case types.ClassOptical:
		return OpticalTimeout
	default:
		return OtherTimeout
	}
}

// DefaultWait returns a bounded WaitMode using DefaultTimeout.
func DefaultWait(class types.DeviceClass) WaitMode {
	return WaitFor(DefaultTimeout(class))
}
