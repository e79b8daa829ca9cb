package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/salespulse/internal/domain/aggregate"
	"github.com/okian/salespulse/internal/domain/model"
	"github.com/okian/salespulse/internal/samplegen"
	"github.com/okian/salespulse/pkg/logger"
)

// Default configuration constants.
const (
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	def := samplegen.DefaultConfig()
	var (
		out      = flag.String("out", "", "Output CSV file (default: ecommerce_sales_TIMESTAMP.csv)")
		orders   = flag.Int("orders", def.Orders, "Number of orders to generate")
		days     = flag.Int("days", def.Days, "Number of calendar days the orders span")
		start    = flag.String("start", def.Start.Format(model.DateLayout), "First order date (YYYY-MM-DD)")
		products = flag.Int("products", def.Products, "Size of the product catalogue")
		missing  = flag.Float64("missing", 0, "Probability that a line gets one blank cell")
		seed     = flag.Int64("seed", 0, "Random seed; 0 picks one from the clock")
		verify   = flag.String("verify", "", "Base URL of a running service to verify against")
		topN     = flag.Int("top", aggregate.DefaultTopN, "Ranking size compared during verification")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		_ = samplegen.WriteHelp(os.Stdout)
		return
	}

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	startDate, err := time.Parse(model.DateLayout, *start)
	if err != nil {
		_, _ = os.Stderr.WriteString("invalid -start: " + err.Error() + "\n")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &samplegen.RunConfig{
		Generate: samplegen.Config{
			Orders:      *orders,
			Days:        *days,
			Start:       startDate,
			Products:    *products,
			MissingRate: *missing,
			Seed:        *seed,
		},
		Output:    *out,
		VerifyURL: *verify,
		TopN:      *topN,
		Timeout:   *timeout,
	}

	if err := samplegen.Run(ctx, config); err != nil {
		_, _ = os.Stderr.WriteString("generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
