// Package config reads the workbench configuration from environment
// variables.
package config

import (
	"os"
	"strconv"

	"radonlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Sampling SamplingConfig
	Output   OutputConfig
	Server   ServerConfig
}

// DataConfig holds input table settings
type DataConfig struct {
	Path           string
	GroupColumn    string
	CovariateCol   string
	ResponseColumn string
}

// SamplingConfig holds the MCMC run shape
type SamplingConfig struct {
	Chains int
	Warmup int
	Draws  int
	Seed   int64
}

// OutputConfig holds artifact destinations
type OutputConfig struct {
	ReportPath   string
	WorkbookPath string
}

// ServerConfig holds the serve surface settings
type ServerConfig struct {
	Addr string
}

// Load reads configuration from environment variables, applying
// defaults where unset.
func Load() (*Config, error) {
	cfg := &Config{
		Data: DataConfig{
			Path:           getEnv("RADON_DATA", ""),
			GroupColumn:    getEnv("RADON_GROUP_COLUMN", "county"),
			CovariateCol:   getEnv("RADON_COVARIATE_COLUMN", "floor"),
			ResponseColumn: getEnv("RADON_RESPONSE_COLUMN", "log_radon"),
		},
		Sampling: SamplingConfig{
			Chains: getEnvInt("RADON_CHAINS", 4),
			Warmup: getEnvInt("RADON_WARMUP", 1000),
			Draws:  getEnvInt("RADON_DRAWS", 1000),
			Seed:   int64(getEnvInt("RADON_SEED", 42)),
		},
		Output: OutputConfig{
			ReportPath:   getEnv("RADON_REPORT", "comparison.md"),
			WorkbookPath: getEnv("RADON_WORKBOOK", ""),
		},
		Server: ServerConfig{
			Addr: getEnv("RADON_ADDR", ":8080"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if c.Sampling.Chains < 2 {
		return errors.ConfigInvalid("at least two chains are required for convergence diagnostics")
	}
	if c.Sampling.Draws <= 0 || c.Sampling.Warmup < 0 {
		return errors.ConfigInvalid("draws must be positive and warmup non-negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
