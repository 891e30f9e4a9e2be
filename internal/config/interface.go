package config

import "context"

// Runtime is the only view this package has of the distributed environment.
type Runtime interface {
	// WorldSize returns the number of cooperating participants. Values below
	// one are treated as one.
	WorldSize() int
}

// SingleProcess is the Runtime used when no distributed context is active.
var SingleProcess Runtime = fixedWorld(1)

type fixedWorld int

func (w fixedWorld) WorldSize() int { return int(w) }

// WorldSize returns rt's world size clamped to at least one. A nil runtime
// counts as a single process.
func WorldSize(rt Runtime) int {
	if rt == nil {
		return 1
	}
	if n := rt.WorldSize(); n > 1 {
		return n
	}
	return 1
}

// ResolveFunc infers omitted fields of c from the fields that are present. It
// is invoked once per instance, before the instance's sub-configs resolve.
type ResolveFunc func(ctx context.Context, c *Config, rt Runtime) error

// ValidateFunc checks cross-field consistency of an already resolved c.
// Returned errors should wrap ErrInvalid, typically via Invalidf.
type ValidateFunc func(ctx context.Context, c *Config) error
