// Package config holds the simulator's file-based configuration: region
// defaults, evaluation settings and the server/NATS endpoints. Values are
// YAML, loadable from a file and overridable by command-line flags.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full simulator configuration.
type Config struct {
	Region     RegionConfig `yaml:"region"`
	Simulation SimConfig    `yaml:"simulation"`
	NATS       NATSConfig   `yaml:"nats"`
	HTTP       HTTPConfig   `yaml:"http"`
}

// RegionConfig mirrors the sampling window parameters.
type RegionConfig struct {
	ReMin float64 `yaml:"re_min"`
	ReMax float64 `yaml:"re_max"`
	ImMin float64 `yaml:"im_min"`
	ImMax float64 `yaml:"im_max"`

	// StepSize is the canonical sampling step. The reference tooling used
	// 0.01 locally and 0.1 on its web surface; 0.01 is the canonical
	// default here and the dashboard's coarser step is an explicit
	// override (HTTPConfig.StepSize).
	StepSize float64 `yaml:"step_size"`
}

// SimConfig holds evaluation and sieve settings.
type SimConfig struct {
	Alpha         float64 `yaml:"alpha"`
	ZeroThreshold float64 `yaml:"zero_threshold"`

	// Workers bounds the local evaluation pool; 0 means all CPUs.
	Workers int `yaml:"workers"`

	// Strict aborts a run on the first point that fails to converge
	// instead of degrading it to the magnitude floor.
	Strict bool `yaml:"strict"`
}

// NATSConfig enables the distributed evaluation backend when URL is set.
type NATSConfig struct {
	URL       string `yaml:"url"`
	ChunkRows int    `yaml:"chunk_rows"`

	// ChunkTimeoutSec bounds one chunk request; a chunk that exceeds it
	// fails the run.
	ChunkTimeoutSec int `yaml:"chunk_timeout_sec"`
}

// HTTPConfig configures the dashboard server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`

	// StepSize is the dashboard's default sampling step, coarser than the
	// canonical default to keep interactive requests fast.
	StepSize float64 `yaml:"step_size"`
}

// Default returns the reference parameter set.
func Default() Config {
	return Config{
		Region: RegionConfig{
			ReMin:    0.4,
			ReMax:    0.6,
			ImMin:    0,
			ImMax:    50,
			StepSize: 0.01,
		},
		Simulation: SimConfig{
			Alpha:         1.0,
			ZeroThreshold: 0.1,
		},
		NATS: NATSConfig{
			ChunkRows:       8,
			ChunkTimeoutSec: 120,
		},
		HTTP: HTTPConfig{
			Addr:     ":8080",
			StepSize: 0.1,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as YAML to path.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
