package training

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/trainconf/internal/config"
	"github.com/vk/trainconf/internal/dist"
	"github.com/vk/trainconf/internal/registry"
)

func TestTrainingConfig_Defaults(t *testing.T) {
	c, err := config.New(TrainingConfig, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"batch": map[string]any{
			"train_batch_size":            nil,
			"micro_batch_size":            nil,
			"gradient_accumulation_steps": nil,
			"world_size":                  nil,
		},
		"fp16": map[string]any{
			"enabled": false,
			"clip":    int64(1),
		},
	}, c.ToDict())
}

func TestTrainingConfig_ValidateResolvesNestedBatch(t *testing.T) {
	c, err := config.New(TrainingConfig, map[string]any{
		"batch": map[string]any{"micro_batch_size": 8, "gradient_accumulation_steps": 2},
		"fp16":  map[string]any{"enabled": true},
	})
	require.NoError(t, err)
	require.NoError(t, c.Validate(context.Background(), dist.Static(4)))

	sizes, err := Sizes(c)
	require.NoError(t, err)
	assert.Equal(t, 64, sizes.TrainBatchSize)
	assert.Equal(t, 4, sizes.WorldSize)
}

func TestTrainingConfig_ErrorsNameTheSubConfig(t *testing.T) {
	c, err := config.New(TrainingConfig, map[string]any{
		"batch": map[string]any{"train_batch_size": 0, "micro_batch_size": 1, "gradient_accumulation_steps": 1},
		"fp16":  map[string]any{"clip": -1},
	})
	require.NoError(t, err)

	err = c.Validate(context.Background(), nil)
	require.ErrorIs(t, err, config.ErrInvalid)
	assert.Contains(t, err.Error(), "batch: BatchConfig.train_batch_size: 0 must be greater than 0")
	assert.Contains(t, err.Error(), "fp16: FP16Config.clip: -1 must not be negative")
}

func TestSizes_WithoutBatch(t *testing.T) {
	c, err := config.New(FP16Config, nil)
	require.NoError(t, err)
	_, err = Sizes(c)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestModule_Register(t *testing.T) {
	r := registry.NewWith(Module{})

	_, ok := r.Resolver(HookName)
	assert.True(t, ok)
	_, ok = r.Validator(HookName)
	assert.True(t, ok)
	assert.Equal(t, []string{"BatchConfig", "FP16Config", "TrainingConfig"}, r.SchemaNames())
}
