package core_behavior

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/trainconf/internal/app"
	"github.com/vk/trainconf/internal/testutil"
)

// Test for: a manifest schema nesting the built-in training schema
func TestCore_ManifestSchemaWrapsTrainingConfig(t *testing.T) {
	files := map[string]string{
		"schemas/experiment.hcl": `
schema "ExperimentConfig" {
  field "name" {
    type     = string
    required = true
  }
  field "seeds" {
    type    = list(number)
    default = [1, 2, 3]
  }
  sub "training" {
    schema = "TrainingConfig"
  }
}
`,
		"experiment.hcl": `
name = "baseline"
training = {
  batch = { train_batch_size = 64 }
  fp16  = { enabled = true }
}
`,
	}

	result := testutil.RunIntegrationTest(t, files, app.Config{
		ConfigPath:  "experiment.hcl",
		SchemaPaths: []string{"schemas"},
		Root:        "ExperimentConfig",
		WorldSize:   8,
	})

	require.NoError(t, result.Err)
	assert.Contains(t, result.Output, "ExperimentConfig = {")
	assert.Contains(t, result.Output, `"baseline"`)
	assert.Contains(t, result.Output, "[1,2,3]")
	assert.Contains(t, result.Output, "        BatchConfig = {")
	assert.Contains(t, result.Output, "world_size: 8")
}

// Test for: required manifest fields are enforced
func TestCore_ManifestRequiredField(t *testing.T) {
	files := map[string]string{
		"schemas/experiment.hcl": `
schema "ExperimentConfig" {
  field "name" {
    type     = string
    required = true
  }
}
`,
		"experiment.json": `{}`,
	}

	result := testutil.RunIntegrationTest(t, files, app.Config{
		ConfigPath:  "experiment.json",
		SchemaPaths: []string{"schemas"},
		Root:        "ExperimentConfig",
		WorldSize:   1,
	})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "ExperimentConfig.name: is required but not set")
}
