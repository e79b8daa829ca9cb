// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"

	"github.com/okian/salespulse/internal/adapters/ingest"
)

// Missing-value policies understood by the loader.
const (
	MissingPolicyDrop = ingest.PolicyDrop
	MissingPolicyFail = ingest.PolicyFail
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// InputPath is the order-lines CSV to analyse.
	InputPath string `koanf:"input_path"`

	// TopN bounds the product revenue ranking.
	TopN int `koanf:"top_n"`

	// HeadRows is how many raw rows the sample dump prints.
	HeadRows int `koanf:"head_rows"`

	// MissingPolicy is "drop" (exclude incomplete rows) or "fail".
	MissingPolicy string `koanf:"missing_policy"`

	// Addr is the dashboard listen address, e.g. ":9080". Empty disables serving.
	Addr string `koanf:"addr"`

	// OutputDir, when set, receives the rendered PNG charts.
	OutputDir string `koanf:"output_dir"`

	// ChartWidth and ChartHeight size both charts in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		InputPath:     "ecommerce_sales.csv",
		TopN:          10,
		HeadRows:      5,
		MissingPolicy: MissingPolicyDrop,
		Addr:          ":9080",
		OutputDir:     "",
		ChartWidth:    1000,
		ChartHeight:   600,
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.InputPath == "":
		return fmt.Errorf("%w: input_path must not be empty", ErrInvalidConfig)
	case c.TopN < 1:
		return fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidConfig, c.TopN)
	case c.HeadRows < 0:
		return fmt.Errorf("%w: head_rows must not be negative, got %d", ErrInvalidConfig, c.HeadRows)
	case c.MissingPolicy != MissingPolicyDrop && c.MissingPolicy != MissingPolicyFail:
		return fmt.Errorf("%w: missing_policy must be %q or %q, got %q", ErrInvalidConfig, MissingPolicyDrop, MissingPolicyFail, c.MissingPolicy)
	case c.ChartWidth < 200 || c.ChartHeight < 150:
		return fmt.Errorf("%w: chart size %dx%d is too small", ErrInvalidConfig, c.ChartWidth, c.ChartHeight)
	}
	return nil
}
