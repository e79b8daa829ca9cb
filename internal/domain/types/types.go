// Package types contains common types used across the application
package types

import "github.com/okian/salespulse/internal/domain/model"

// MoneyPlaces is the number of decimal places revenues are served with.
// Values are rounded half away from zero; aggregation itself keeps full
// precision.
const MoneyPlaces = 2

// DailyEntry is the JSON shape of one daily summary row. TotalRevenue is
// rounded to MoneyPlaces.
type DailyEntry struct {
	Date          string `json:"order_date"`
	TotalOrders   int    `json:"total_orders"`
	TotalRevenue  string `json:"total_revenue"`
	TotalQuantity int64  `json:"total_quantity"`
}

// ProductEntry is the JSON shape of one product ranking row. TotalRevenue is
// rounded to MoneyPlaces.
type ProductEntry struct {
	Rank         int    `json:"rank"`
	ProductID    string `json:"product_id"`
	TotalRevenue string `json:"total_revenue"`
}

// NewDailyEntries converts summaries to their JSON shape.
func NewDailyEntries(rows []model.DailySalesSummary) []DailyEntry {
	out := make([]DailyEntry, len(rows))
	for i, r := range rows {
		out[i] = DailyEntry{
			Date:          r.OrderDate.Format(model.DateLayout),
			TotalOrders:   r.TotalOrders,
			TotalRevenue:  r.TotalRevenue.StringFixed(MoneyPlaces),
			TotalQuantity: r.TotalQuantity,
		}
	}
	return out
}

// NewProductEntry converts one ranking row to its JSON shape.
func NewProductEntry(r model.ProductRevenueRank) ProductEntry {
	return ProductEntry{
		Rank:         r.Rank,
		ProductID:    r.ProductID,
		TotalRevenue: r.TotalRevenue.StringFixed(MoneyPlaces),
	}
}

// NewProductEntries converts ranking rows to their JSON shape.
func NewProductEntries(rows []model.ProductRevenueRank) []ProductEntry {
	out := make([]ProductEntry, len(rows))
	for i, r := range rows {
		out[i] = NewProductEntry(r)
	}
	return out
}
