package core_behavior

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/trainconf/internal/app"
	"github.com/vk/trainconf/internal/testutil"
)

type report struct {
	WorldSize   int            `json:"world_size"`
	Fingerprint string         `json:"fingerprint"`
	Config      map[string]any `json:"config"`
}

// Test for: the same file resolves differently per world size
func TestCore_BatchScalesWithWorldSize(t *testing.T) {
	files := map[string]string{
		"train.hjson": `{
  // per-device batch and accumulation; the total follows from the world size
  batch: {
    train_micro_batch_size_per_gpu: 8
    gradient_accumulation_steps: 2
  }
}`,
	}

	fingerprints := map[string]bool{}
	for _, ws := range []int{1, 2, 4} {
		t.Run(fmt.Sprintf("world_size=%d", ws), func(t *testing.T) {
			result := testutil.RunIntegrationTest(t, files, app.Config{
				ConfigPath: "train.hjson",
				WorldSize:  ws,
				Output:     app.OutputJSON,
			})
			require.NoError(t, result.Err)

			var r report
			require.NoError(t, json.Unmarshal([]byte(result.Output), &r))
			batch := r.Config["batch"].(map[string]any)
			assert.EqualValues(t, 8*2*ws, batch["train_batch_size"])
			assert.EqualValues(t, ws, batch["world_size"])
			assert.NotContains(t, batch, "train_micro_batch_size_per_gpu", "aliases are not serialized")
			assert.Contains(t, result.LogOutput, "Config key is deprecated.")

			fingerprints[r.Fingerprint] = true
		})
	}
	assert.Len(t, fingerprints, 3, "each world size yields a different configuration")
}
