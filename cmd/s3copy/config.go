package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/s3copy/s3types"
)

// Config is the optional YAML configuration file of the CLI.
// Flags given on the command line override it.
type Config struct {
	Region         string `yaml:"region"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
	MaxRetries     int    `yaml:"max_retries"`
	Timeout        string `yaml:"timeout"` // Duration string, e.g. "30s"

	// ThawPolicy is the default policy; per-call overrides win field by field.
	ThawPolicy s3types.ThawPolicy `yaml:"thaw_policy"`

	timeout time.Duration
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries: 3,
	}
}

// LoadConfig reads and validates a configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
		if d < 0 {
			return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
		}
		c.timeout = d
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// mergePolicy overlays the non-nil fields of override on base.
func mergePolicy(base, override s3types.ThawPolicy) s3types.ThawPolicy {
	merged := base
	if override.GlacierFlexibleRetrievalThawDays != nil {
		merged.GlacierFlexibleRetrievalThawDays = override.GlacierFlexibleRetrievalThawDays
	}
	if override.GlacierFlexibleRetrievalThawSpeed != nil {
		merged.GlacierFlexibleRetrievalThawSpeed = override.GlacierFlexibleRetrievalThawSpeed
	}
	if override.GlacierDeepArchiveThawDays != nil {
		merged.GlacierDeepArchiveThawDays = override.GlacierDeepArchiveThawDays
	}
	if override.GlacierDeepArchiveThawSpeed != nil {
		merged.GlacierDeepArchiveThawSpeed = override.GlacierDeepArchiveThawSpeed
	}
	if override.IntelligentTieringArchiveThawDays != nil {
		merged.IntelligentTieringArchiveThawDays = override.IntelligentTieringArchiveThawDays
	}
	if override.IntelligentTieringArchiveThawSpeed != nil {
		merged.IntelligentTieringArchiveThawSpeed = override.IntelligentTieringArchiveThawSpeed
	}
	if override.IntelligentTieringDeepArchiveThawDays != nil {
		merged.IntelligentTieringDeepArchiveThawDays = override.IntelligentTieringDeepArchiveThawDays
	}
	if override.IntelligentTieringDeepArchiveThawSpeed != nil {
		merged.IntelligentTieringDeepArchiveThawSpeed = override.IntelligentTieringDeepArchiveThawSpeed
	}
	return merged
}
