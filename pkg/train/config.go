package train

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/joelsearcy/micrograd-go/pkg/data"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config describes one training run.
type Config struct {
	// Network shape: Inputs feed Layers[0], the last layer must have a
	// single neuron.
	Inputs     int    `yaml:"inputs" validate:"required,gt=0"`
	Layers     []int  `yaml:"layers" validate:"required,min=1,dive,gt=0"`
	Activation string `yaml:"activation" validate:"required,oneof=tanh identity linear"`

	Iterations   int     `yaml:"iterations" validate:"gte=0"`
	LearningRate float64 `yaml:"learning_rate" validate:"gt=0"`
	Optimizer    string  `yaml:"optimizer" validate:"oneof=sgd adam"`
	Seed         uint64  `yaml:"seed"`

	// Workers bounds the samples evaluated concurrently; 0 means GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0"`
	// LogEvery logs progress every n iterations; 0 disables progress logs.
	LogEvery int `yaml:"log_every" validate:"gte=0"`

	// DataPath takes precedence over Data. With neither set the default
	// demo samples are used.
	DataPath string        `yaml:"data_path,omitempty"`
	Data     []data.Sample `yaml:"data,omitempty"`
}

// DefaultConfig reproduces the classic demo: 3 inputs, two hidden layers of
// 4 tanh neurons and one output, 100 iterations of gradient descent.
func DefaultConfig() Config {
	return Config{
		Inputs:       3,
		Layers:       []int{4, 4, 1},
		Activation:   "tanh",
		Iterations:   100,
		LearningRate: 0.1,
		Optimizer:    "sgd",
		Seed:         42,
		Workers:      0,
		LogEvery:     10,
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field constraints and the network shape.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if last := c.Layers[len(c.Layers)-1]; last != 1 {
		return fmt.Errorf("invalid config: output layer must have 1 neuron, got %d", last)
	}
	for i, s := range c.Data {
		if len(s.X) != c.Inputs {
			return fmt.Errorf("invalid config: data[%d] has %d inputs, want %d", i, len(s.X), c.Inputs)
		}
	}
	return nil
}

// Samples resolves the training samples and checks their width.
func (c Config) Samples() ([]data.Sample, error) {
	var samples []data.Sample
	switch {
	case c.DataPath != "":
		loaded, err := data.LoadSamples(c.DataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load samples: %w", err)
		}
		samples = loaded
	case len(c.Data) > 0:
		samples = c.Data
	default:
		samples = data.Default()
	}

	if len(samples) == 0 {
		return nil, errors.New("no training samples")
	}
	for i, s := range samples {
		if len(s.X) != c.Inputs {
			return nil, fmt.Errorf("sample %d has %d inputs, want %d", i, len(s.X), c.Inputs)
		}
	}
	return samples, nil
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
