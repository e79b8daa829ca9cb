package samplegen

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/salespulse/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0644
)

// RunConfig holds the settings of one generator invocation.
type RunConfig struct {
	Generate  Config
	Output    string        // CSV destination; empty means a timestamped name
	VerifyURL string        // service to check after writing; empty skips it
	TopN      int           // ranking size compared during verification
	Timeout   time.Duration // HTTP request timeout
}

// Run writes a sample file and, when VerifyURL is set, checks the service
// serving it.
func Run(ctx context.Context, config *RunConfig) error {
	start := time.Now()

	output := config.Output
	if output == "" {
		output = "ecommerce_sales_" + time.Now().Format("20060102_150405") + ".csv"
	}

	logger.Get().Info(ctx, "generating sample orders",
		logger.String("output", output),
		logger.Int("orders", config.Generate.Orders),
		logger.Int("days", config.Generate.Days),
		logger.Int("products", config.Generate.Products),
		logger.Float64("missingRate", config.Generate.MissingRate))

	stats, err := WriteFile(ctx, output, config.Generate)
	if err != nil {
		return fmt.Errorf("sample generation failed: %w", err)
	}

	logger.Get().Info(ctx, "sample written",
		logger.String("output", output),
		logger.Int("orders", stats.Orders),
		logger.Int("lines", stats.Lines),
		logger.Int("blankCells", stats.BlankCells),
		logger.String("duration", time.Since(start).String()))

	if config.VerifyURL == "" {
		return nil
	}

	client := NewHTTPClient(config.VerifyURL, config.Timeout)
	if err := client.checkHealth(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}
	if _, err := Verify(ctx, client, output, config.TopN); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}
	return nil
}

// WriteFile generates a sample into path, creating parent directories.
func WriteFile(ctx context.Context, path string, cfg Config) (Stats, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return Stats{}, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission) //nolint:gosec // operator-chosen path
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create file: %w", err)
	}

	stats, err := Generate(ctx, file, cfg)
	if cerr := file.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close file: %w", cerr)
	}
	return stats, err
}

// WriteHelp writes usage information for the generator to w.
func WriteHelp(w io.Writer) error {
	_, err := io.WriteString(w, `Sales Sample Generator
======================

Writes a synthetic order-lines CSV and optionally checks a running
salespulse service that was started on the same file.

Usage:
  go run ./cmd/gensales [options]

Options:
  -out string
        Output CSV file (default: ecommerce_sales_TIMESTAMP.csv)
  -orders int
        Number of orders to generate (default 1000)
  -days int
        Number of calendar days the orders span (default 30)
  -start string
        First order date, YYYY-MM-DD (default "2024-01-01")
  -products int
        Size of the product catalogue (default 50)
  -missing float
        Probability that a line gets one blank cell (default 0)
  -seed int
        Random seed; 0 picks one from the clock
  -verify string
        Base URL of a running service to verify against
  -top int
        Ranking size compared during verification (default 10)
  -timeout duration
        HTTP request timeout (default 30s)
  -help
        Show this help message

Examples:
  # Reproducible file for the pipeline
  go run ./cmd/gensales -out ecommerce_sales.csv -seed 42

  # Dirty input exercising the missing-value policy
  go run ./cmd/gensales -out dirty.csv -missing 0.05

  # Check a service started with SALES_INPUT_PATH=ecommerce_sales.csv
  go run ./cmd/gensales -out ecommerce_sales.csv -seed 42 -verify http://localhost:9080
`)
	return err
}
