// Package training declares the schemas a training run is configured with:
// batch sizing, mixed precision and the TrainingConfig that nests them.
//
// BatchConfig is the interesting one. Any two of train_batch_size,
// micro_batch_size and gradient_accumulation_steps are enough; the resolver
// derives the third from the world size, and the validator checks that
//
//	train_batch_size == micro_batch_size * gradient_accumulation_steps * world_size
package training
