package training

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/trainconf/internal/config"
	"github.com/vk/trainconf/internal/registry"
)

// Field names shared by the hooks and by consumers.
const (
	FieldTrainBatchSize   = "train_batch_size"
	FieldMicroBatchSize   = "micro_batch_size"
	FieldGradAccumSteps   = "gradient_accumulation_steps"
	FieldWorldSize        = "world_size"
	AliasMicroBatchPerGPU = "train_micro_batch_size_per_gpu"
)

// HookName is the name the batch hooks are registered under, for manifests
// that declare their own batch-shaped schemas.
const HookName = "batch"

// BatchConfig configures the effective, per-device and accumulated batch sizes.
var BatchConfig = config.NewBuilder("BatchConfig").
	Field(FieldTrainBatchSize, cty.Number,
		config.Doc("Samples per optimizer step, aggregated over devices and accumulation steps.")).
	Field(FieldMicroBatchSize, cty.Number,
		config.Doc("Samples each device processes in one forward/backward pass.")).
	Field(FieldGradAccumSteps, cty.Number,
		config.Doc("Micro batches to accumulate before applying gradients.")).
	Alias(AliasMicroBatchPerGPU, FieldMicroBatchSize, config.Deprecated()).
	Field(FieldWorldSize, cty.Number,
		config.Doc("Participants the batch is split over. Set during resolution.")).
	Resolver(ResolveBatch).
	Validator(ValidateBatch).
	MustBuild()

// FP16Config configures mixed precision training.
var FP16Config = config.NewBuilder("FP16Config").
	Field("enabled", cty.Bool, config.Default(false)).
	Field("clip", cty.Number, config.Default(1.0), config.Doc("Gradient clipping threshold.")).
	Validator(validateFP16).
	MustBuild()

// TrainingConfig is the top-level configuration of a training run.
var TrainingConfig = config.NewBuilder("TrainingConfig").
	Sub("batch", BatchConfig).
	Sub("fp16", FP16Config).
	MustBuild()

// Module registers the training schemas and the batch hooks.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	r.RegisterResolver(HookName, ResolveBatch)
	r.RegisterValidator(HookName, ValidateBatch)
	r.RegisterSchema(BatchConfig)
	r.RegisterSchema(FP16Config)
	r.RegisterSchema(TrainingConfig)
}
