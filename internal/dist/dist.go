package dist

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vk/trainconf/internal/config"
	"github.com/vk/trainconf/internal/ctxlog"
)

// WorldSizeEnv is the variable launchers such as torchrun export.
const WorldSizeEnv = "WORLD_SIZE"

// Static is a fixed world size.
type Static int

// WorldSize implements config.Runtime.
func (s Static) WorldSize() int {
	if s < 1 {
		return 1
	}
	return int(s)
}

// lookupFunc matches os.LookupEnv and lets tests inject an environment.
type lookupFunc func(string) (string, bool)

// FromEnv reads the world size from WORLD_SIZE. It returns false when the
// variable is unset, and an error when it is set but not a positive integer.
func FromEnv() (Static, bool, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup lookupFunc) (Static, bool, error) {
	raw, ok := lookup(WorldSizeEnv)
	if !ok || strings.TrimSpace(raw) == "" {
		return 1, false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1, true, fmt.Errorf("%s=%q must be a positive integer", WorldSizeEnv, raw)
	}
	return Static(n), true, nil
}

// Detect picks the world size for the current process: WORLD_SIZE when set,
// otherwise the number of local accelerator devices, otherwise one.
func Detect(ctx context.Context) (config.Runtime, error) {
	return detect(ctx, os.LookupEnv, LocalDevices)
}

func detect(ctx context.Context, lookup lookupFunc, devices func(context.Context) (int, error)) (config.Runtime, error) {
	logger := ctxlog.FromContext(ctx)

	if n, ok, err := fromLookup(lookup); err != nil {
		return nil, err
	} else if ok {
		logger.Debug("World size taken from environment.", "world_size", int(n))
		return n, nil
	}

	count, err := devices(ctx)
	if err != nil {
		logger.Debug("Device probe unavailable, assuming a single process.", "error", err)
		return config.SingleProcess, nil
	}
	if count > 0 {
		logger.Debug("World size taken from local devices.", "world_size", count)
		return Static(count), nil
	}
	return config.SingleProcess, nil
}
