//go:build !cuda

package dist

import (
	"context"
	"errors"
)

// ErrNoDeviceProbe is returned when the binary was built without NVML support.
var ErrNoDeviceProbe = errors.New("device probe disabled: build with -tags cuda")

// LocalDevices reports that no device probe is compiled in.
func LocalDevices(context.Context) (int, error) {
	return 0, ErrNoDeviceProbe
}
