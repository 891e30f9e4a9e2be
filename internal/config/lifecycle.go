package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/trainconf/internal/ctxlog"
)

// Resolve infers omitted fields across the instance tree. Each instance runs
// its schema's resolver first and then resolves its sub-configs in
// declaration order, followed by sub-configs added with Register. Schemas
// without a resolver are passed through unchanged.
func (c *Config) Resolve(ctx context.Context, rt Runtime) error {
	if c.schema.resolve != nil {
		ctxlog.FromContext(ctx).Debug("Resolving config.", "schema", c.schema.name, "world_size", WorldSize(rt))
		if err := c.schema.resolve(ctx, c, rt); err != nil {
			return err
		}
	}
	for name, sub := range c.subConfigs() {
		if err := sub.Resolve(ctx, rt); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Validate resolves the tree and then checks every instance: required fields
// must be set and the schema validator must pass. An instance reports only
// its first failure, but every sub-config is visited and all failures are
// joined into the returned error.
func (c *Config) Validate(ctx context.Context, rt Runtime) error {
	if err := c.Resolve(ctx, rt); err != nil {
		return err
	}
	err := c.check(ctx)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Config validation failed.", "schema", c.schema.name, "error", err)
		return err
	}
	ctxlog.FromContext(ctx).Debug("Config validation passed.", "schema", c.schema.name)
	return nil
}

// IsValid reports whether Validate succeeds.
func (c *Config) IsValid(ctx context.Context, rt Runtime) bool {
	return c.Validate(ctx, rt) == nil
}

func (c *Config) check(ctx context.Context) error {
	var errs []error
	if err := c.checkSelf(ctx); err != nil {
		errs = append(errs, err)
	}
	for name, sub := range c.subConfigs() {
		if err := sub.check(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) checkSelf(ctx context.Context) error {
	for i, di := range c.schema.slotDecl {
		d := &c.schema.decls[di]
		if d.Kind == KindField && d.Required && c.slots[i].val.IsNull() {
			return &FieldError{Schema: c.schema.name, Field: d.Name, Msg: "is required but not set", Err: ErrRequiredField}
		}
	}
	if c.schema.validate != nil {
		return c.schema.validate(ctx, c)
	}
	return nil
}
