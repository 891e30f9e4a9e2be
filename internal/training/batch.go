package training

import (
	"context"
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/trainconf/internal/config"
	"github.com/vk/trainconf/internal/ctxlog"
)

// BatchSizes is the typed view of a resolved BatchConfig.
type BatchSizes struct {
	TrainBatchSize            int
	MicroBatchSize            int
	GradientAccumulationSteps int
	WorldSize                 int
}

// optional reads a whole-number field, reporting whether it is set.
func optional(c *config.Config, name string) (int, bool, error) {
	if !c.IsSet(name) {
		return 0, false, nil
	}
	n, err := c.Int(name)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// ResolveBatch derives the missing batch field from the two that are set.
// Values that are already set are never changed, even when inconsistent.
func ResolveBatch(ctx context.Context, c *config.Config, rt config.Runtime) error {
	batch, hasBatch, err := optional(c, FieldTrainBatchSize)
	if err != nil {
		return err
	}
	mb, hasMB, err := optional(c, FieldMicroBatchSize)
	if err != nil {
		return err
	}
	gas, hasGAS, err := optional(c, FieldGradAccumSteps)
	if err != nil {
		return err
	}

	ws := config.WorldSize(rt)
	if err := c.Set(FieldWorldSize, ws); err != nil {
		return err
	}

	set := func(name string, v int) error {
		ctxlog.FromContext(ctx).Debug("Derived batch field.", "field", name, "value", v, "world_size", ws)
		return c.Set(name, v)
	}

	// A zero divisor leaves the dependent field unset; validation reports it.
	switch {
	case hasBatch && hasMB && hasGAS:
		return nil
	case hasBatch && hasMB:
		if mb == 0 {
			return nil
		}
		return set(FieldGradAccumSteps, floorDiv(floorDiv(batch, mb), ws))
	case hasBatch && hasGAS:
		if gas == 0 {
			return nil
		}
		return set(FieldMicroBatchSize, floorDiv(floorDiv(batch, ws), gas))
	case hasMB && hasGAS:
		total, ok := product(mb, gas, ws)
		if !ok {
			return overflow(c, mb, gas, ws)
		}
		return set(FieldTrainBatchSize, total)
	case hasBatch:
		if err := set(FieldGradAccumSteps, 1); err != nil {
			return err
		}
		return set(FieldMicroBatchSize, floorDiv(batch, ws))
	case hasMB:
		total, ok := product(mb, ws)
		if !ok {
			return overflow(c, mb, 1, ws)
		}
		if err := set(FieldTrainBatchSize, total); err != nil {
			return err
		}
		return set(FieldGradAccumSteps, 1)
	}
	return nil
}

// product multiplies exactly and reports whether the result fits in an int.
func product(factors ...int) (int, bool) {
	p := cty.NumberIntVal(1)
	for _, f := range factors {
		p = p.Multiply(cty.NumberIntVal(int64(f)))
	}
	n, acc := p.AsBigFloat().Int64()
	if acc != big.Exact || int64(int(n)) != n {
		return 0, false
	}
	return int(n), true
}

func overflow(c *config.Config, mb, gas, ws int) error {
	return config.Invalidf(c.Schema().Name(), FieldTrainBatchSize, nil,
		"micro_batch_size * gradient_accumulation_steps * world_size overflows: %d * %d * %d", mb, gas, ws)
}

// floorDiv rounds toward negative infinity, unlike Go's / operator.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ValidateBatch checks that every batch field is positive and that they
// multiply out to train_batch_size.
func ValidateBatch(_ context.Context, c *config.Config) error {
	name := c.Schema().Name()
	values := make(map[string]int, 3)
	for _, field := range []string{FieldTrainBatchSize, FieldMicroBatchSize, FieldGradAccumSteps} {
		n, ok, err := optional(c, field)
		if err != nil {
			return err
		}
		if !ok {
			return &config.FieldError{Schema: name, Field: field, Msg: "null must be greater than 0", Err: config.ErrRequiredField}
		}
		if n <= 0 {
			return config.Invalidf(name, field, n, "%d must be greater than 0", n)
		}
		values[field] = n
	}

	ws, ok, err := optional(c, FieldWorldSize)
	if err != nil {
		return err
	}
	if !ok || ws < 1 {
		ws = 1
	}

	batch, mb, gas := values[FieldTrainBatchSize], values[FieldMicroBatchSize], values[FieldGradAccumSteps]
	if want, ok := product(mb, gas, ws); !ok || batch != want {
		return config.Invalidf(name, FieldTrainBatchSize, batch,
			"is not equal to micro_batch_size * gradient_accumulation_steps * world_size: %d != %d * %d * %d",
			batch, mb, gas, ws)
	}
	return nil
}

func validateFP16(_ context.Context, c *config.Config) error {
	clip, err := c.Float("clip")
	if err != nil {
		return err
	}
	if clip < 0 {
		return config.Invalidf(c.Schema().Name(), "clip", clip, "%v must not be negative", clip)
	}
	return nil
}

// Sizes returns the batch fields of a validated BatchConfig, or of the batch
// sub-config of a TrainingConfig.
func Sizes(c *config.Config) (BatchSizes, error) {
	if _, ok := c.Schema().Lookup(FieldTrainBatchSize); !ok {
		if _, ok := c.Schema().Lookup("batch"); !ok {
			return BatchSizes{}, fmt.Errorf("%w: %s has no batch settings", config.ErrInvalid, c.Schema().Name())
		}
		sub, err := c.Sub("batch")
		if err != nil {
			return BatchSizes{}, err
		}
		c = sub
	}

	var s BatchSizes
	for _, f := range []struct {
		name   string
		target *int
	}{
		{FieldTrainBatchSize, &s.TrainBatchSize},
		{FieldMicroBatchSize, &s.MicroBatchSize},
		{FieldGradAccumSteps, &s.GradientAccumulationSteps},
		{FieldWorldSize, &s.WorldSize},
	} {
		n, err := c.Int(f.name)
		if err != nil {
			return BatchSizes{}, err
		}
		*f.target = n
	}
	return s, nil
}
