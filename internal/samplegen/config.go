// Package samplegen writes synthetic order-lines CSV files and checks a
// running service against them.
package samplegen

import "time"

// Default generation settings.
const (
	DefaultOrders   = 1000
	DefaultDays     = 30
	DefaultProducts = 50
)

// Config holds configuration for sample generation.
type Config struct {
	Orders      int       // Number of orders to generate
	Days        int       // Dates are spread over [Start, Start+Days)
	Start       time.Time // First order date
	Products    int       // Size of the product catalogue
	MissingRate float64   // Probability that a line gets one blank cell
	Seed        int64     // Non-zero makes the output reproducible
}

// DefaultConfig returns a configuration producing a month of orders.
func DefaultConfig() Config {
	return Config{
		Orders:   DefaultOrders,
		Days:     DefaultDays,
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Products: DefaultProducts,
	}
}

func (c Config) normalized() Config {
	if c.Orders < 0 {
		c.Orders = 0
	}
	if c.Days < 1 {
		c.Days = 1
	}
	if c.Products < 1 {
		c.Products = 1
	}
	if c.Start.IsZero() {
		c.Start = DefaultConfig().Start
	}
	if c.MissingRate < 0 {
		c.MissingRate = 0
	}
	if c.MissingRate > 1 {
		c.MissingRate = 1
	}
	return c
}

// Stats holds generation statistics.
type Stats struct {
	Orders     int
	Lines      int
	BlankCells int
}
