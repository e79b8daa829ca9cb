// Package aggregate computes the daily sales summary and the product revenue
// ranking from a set of order lines.
//
// Both computations are pure: they read the input slice, never modify it and
// keep no state between calls, so they may run concurrently on the same input.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/salespulse/internal/domain/model"
	"github.com/shopspring/decimal"
)

// DefaultTopN is the size of the product ranking when no limit is configured.
const DefaultTopN = 10

type dayBucket struct {
	orders   map[string]struct{}
	revenue  decimal.Decimal
	quantity int64
}

// ComputeDailySummary groups lines by order date. Rows come back ordered by
// date ascending; an empty input yields an empty, non-nil slice.
func ComputeDailySummary(lines []model.OrderLine) []model.DailySalesSummary {
	buckets := make(map[time.Time]*dayBucket)
	for _, l := range lines {
		day := model.Day(l.OrderDate)
		b, ok := buckets[day]
		if !ok {
			b = &dayBucket{orders: make(map[string]struct{})}
			buckets[day] = b
		}
		b.orders[l.OrderID] = struct{}{}
		b.revenue = b.revenue.Add(l.Revenue())
		b.quantity += l.Quantity
	}

	out := make([]model.DailySalesSummary, 0, len(buckets))
	for day, b := range buckets {
		out = append(out, model.DailySalesSummary{
			OrderDate:     day,
			TotalOrders:   len(b.orders),
			TotalRevenue:  b.revenue,
			TotalQuantity: b.quantity,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OrderDate.Before(out[j].OrderDate)
	})
	return out
}

// ComputeTopProducts ranks products by total revenue across all dates and
// returns at most n rows. Equal revenues are ordered by product id ascending.
func ComputeTopProducts(lines []model.OrderLine, n int) ([]model.ProductRevenueRank, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}

	totals := make(map[string]decimal.Decimal)
	for _, l := range lines {
		totals[l.ProductID] = totals[l.ProductID].Add(l.Revenue())
	}

	ranked := make([]model.ProductRevenueRank, 0, len(totals))
	for id, rev := range totals {
		ranked = append(ranked, model.ProductRevenueRank{ProductID: id, TotalRevenue: rev})
	}
	sortRanking(ranked)

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// TotalRevenue sums price × quantity over every line.
func TotalRevenue(lines []model.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Revenue())
	}
	return total
}

// sortRanking orders by revenue DESC, then product id ASC.
func sortRanking(rows []model.ProductRevenueRank) {
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].TotalRevenue.Cmp(rows[j].TotalRevenue); c != 0 {
			return c > 0
		}
		return rows[i].ProductID < rows[j].ProductID
	})
}
