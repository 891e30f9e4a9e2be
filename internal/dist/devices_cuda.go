//go:build cuda

package dist

import (
	"context"
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/vk/trainconf/internal/ctxlog"
)

// LocalDevices counts the GPUs visible through NVML.
func LocalDevices(ctx context.Context) (int, error) {
	ret := nvml.Init()
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("failed to initialize NVML: %v", nvml.ErrorString(ret))
	}
	defer func() {
		if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
			ctxlog.FromContext(ctx).Warn("NVML shutdown reported an error.", "error", nvml.ErrorString(ret))
		}
	}()

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return 0, fmt.Errorf("failed to count GPU devices: %v", nvml.ErrorString(ret))
	}
	return count, nil
}
