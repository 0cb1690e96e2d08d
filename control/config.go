// control/config.go
// Author: momentics <momentics@gmail.com>
//
// YAML configuration for facade-built components.

package control

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/momentics/atomcell/api"
)

// PoolConfig configures the shared worker pool.
type PoolConfig struct {
	Size    int    `yaml:"size"`
	Name    string `yaml:"name"`
	PinCPUs bool   `yaml:"pin_cpus"`
}

// Config holds facade parameters. Capability switches apply to atoms built
// after a change; pool size and domain count are fixed at facade.New.
type Config struct {
	EnforceIsolation bool       `yaml:"enforce_isolation"` // attach the isolation runtime to new atoms
	Collector        bool       `yaml:"collector"`         // register new atoms with the heap collector
	Metrics          bool       `yaml:"metrics"`           // attach the metrics observer to new atoms
	Debug            bool       `yaml:"debug"`             // register debug probes
	Domains          int        `yaml:"domains"`           // domains started up front
	Pool             PoolConfig `yaml:"pool"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		EnforceIsolation: true,
		Collector:        false,
		Metrics:          true,
		Debug:            true,
		Domains:          0,
		Pool: PoolConfig{
			Size: 4,
			Name: "atomcell",
		},
	}
}

// ParseConfig decodes YAML over the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	if c.Pool.Size <= 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "pool.size must be positive").
			WithContext("pool.size", c.Pool.Size)
	}
	if c.Domains < 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "domains must not be negative").
			WithContext("domains", c.Domains)
	}
	return nil
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
