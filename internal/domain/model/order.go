// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar-date rendering.
const DateLayout = "2006-01-02"

// OrderLine is one product within one order.
type OrderLine struct {
	OrderID   string          // shared by every line of the same order
	OrderDate time.Time       // calendar date, midnight UTC
	ProductID string          // product identifier
	Price     decimal.Decimal // unit price
	Quantity  int64           // units sold
}

// Revenue returns price × quantity for the line.
func (l OrderLine) Revenue() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// DailySalesSummary aggregates all lines that share an order date.
type DailySalesSummary struct {
	OrderDate     time.Time
	TotalOrders   int             // distinct order ids
	TotalRevenue  decimal.Decimal // Σ price × quantity
	TotalQuantity int64           // Σ quantity
}

// ProductRevenueRank is one row of the product revenue ranking.
type ProductRevenueRank struct {
	Rank         int // 1-based position
	ProductID    string
	TotalRevenue decimal.Decimal
}

// Report bundles everything one pipeline run produces.
type Report struct {
	GeneratedAt  time.Time
	Source       string
	Daily        []DailySalesSummary
	TopProducts  []ProductRevenueRank
	TotalRevenue decimal.Decimal
	LineCount    int
	DroppedRows  int
}

// Day truncates t to its calendar date in UTC. The wall-clock date is kept,
// so 2025-01-01T23:00-05:00 stays on 2025-01-01.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
