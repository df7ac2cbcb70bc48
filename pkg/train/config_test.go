package train

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.Inputs)
	assert.Equal(t, []int{4, 4, 1}, cfg.Layers)
	assert.Equal(t, "tanh", cfg.Activation)
	assert.Equal(t, 100, cfg.Iterations)
	assert.Equal(t, 0.1, cfg.LearningRate)
	assert.Equal(t, "sgd", cfg.Optimizer)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeFile(t, "run.yaml", `
inputs: 2
layers: [3, 1]
iterations: 20
optimizer: adam
learning_rate: 0.05
data:
  - {x: [0, 1], y: 1}
  - {x: [1, 1], y: -1}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Inputs)
	assert.Equal(t, []int{3, 1}, cfg.Layers)
	assert.Equal(t, 20, cfg.Iterations)
	assert.Equal(t, "adam", cfg.Optimizer)
	assert.Equal(t, 0.05, cfg.LearningRate)
	// untouched fields keep their defaults
	assert.Equal(t, "tanh", cfg.Activation)
	assert.Equal(t, uint64(42), cfg.Seed)

	samples, err := cfg.Samples()
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, []float64{1, 1}, samples[1].X)
	assert.Equal(t, -1.0, samples[1].Y)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeFile(t, "bad.yaml", "layers: [1, 2\n"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = LoadConfig(writeFile(t, "invalid.yaml", "learning_rate: -1\n"))
	assert.ErrorContains(t, err, "invalid config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no inputs", func(c *Config) { c.Inputs = 0 }, "Inputs"},
		{"no layers", func(c *Config) { c.Layers = nil }, "Layers"},
		{"empty layer", func(c *Config) { c.Layers = []int{4, 0, 1} }, "Layers[1]"},
		{"unknown activation", func(c *Config) { c.Activation = "relu" }, "Activation"},
		{"unknown optimizer", func(c *Config) { c.Optimizer = "rmsprop" }, "Optimizer"},
		{"zero learning rate", func(c *Config) { c.LearningRate = 0 }, "LearningRate"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "Workers"},
		{"wide output", func(c *Config) { c.Layers = []int{4, 2} }, "output layer must have 1 neuron"},
		{"data width", func(c *Config) {
			c.Inputs = 2
			c.Data = append(c.Data, sampleOf(1, 2, 3, 4))
		}, "data[0] has 3 inputs, want 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSamplesFromFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Inputs = 2
	cfg.DataPath = writeFile(t, "xor.txt", "0 0 0\n0 1 1\n1 0 1\n1 1 0\n")

	samples, err := cfg.Samples()
	require.NoError(t, err)
	assert.Len(t, samples, 4)

	cfg.Inputs = 3
	_, err = cfg.Samples()
	assert.ErrorContains(t, err, "sample 0 has 2 inputs, want 3")

	cfg.DataPath = filepath.Join(t.TempDir(), "missing.txt")
	_, err = cfg.Samples()
	assert.ErrorContains(t, err, "failed to load samples")
}

func TestSamplesDefault(t *testing.T) {
	samples, err := DefaultConfig().Samples()
	require.NoError(t, err)
	assert.Len(t, samples, 4)
}

func TestWorkers(t *testing.T) {
	cfg := DefaultConfig()
	assert.Positive(t, cfg.workers())
	cfg.Workers = 3
	assert.Equal(t, 3, cfg.workers())
}
