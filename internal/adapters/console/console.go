// Package console prints the human-readable diagnostic dumps and result
// tables. None of this output is a contract other code depends on.
package console

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/salespulse/internal/adapters/ingest"
	"github.com/okian/salespulse/internal/domain/model"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Inspect writes the column names, the per-column missing counts and the
// first raw rows of ds.
func Inspect(w io.Writer, ds *ingest.Dataset) error {
	if _, err := fmt.Fprintf(w, "Columns: [%s]\n", strings.Join(ds.Columns, " ")); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "Missing values:"); err != nil {
		return err
	}
	tw := newTable(w)
	for _, col := range ds.Columns {
		fmt.Fprintf(tw, "%s\t%d\n", col, ds.Missing[col])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "Sample data:"); err != nil {
		return err
	}
	tw = newTable(w)
	fmt.Fprintf(tw, "\t%s\n", strings.Join(ds.Columns, "\t"))
	for i, rec := range ds.Head {
		cells := make([]string, len(ds.Columns))
		for j := range cells {
			if j < len(rec) {
				cells[j] = rec[j]
			}
		}
		fmt.Fprintf(tw, "%d\t%s\n", i, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// PrintDailySummary writes up to limit rows of the daily summary. A
// non-positive limit prints every row.
func PrintDailySummary(w io.Writer, rows []model.DailySalesSummary, limit int) error {
	if _, err := fmt.Fprintln(w, "\nDaily Sales Summary:"); err != nil {
		return err
	}
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "\torder_date\ttotal_orders\ttotal_revenue\ttotal_quantity")
	for i, r := range rows[:limit] {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\n",
			i, r.OrderDate.Format(model.DateLayout), r.TotalOrders, r.TotalRevenue.StringFixed(2), r.TotalQuantity)
	}
	return tw.Flush()
}

// PrintTopProducts writes the product revenue ranking computed with limit n.
func PrintTopProducts(w io.Writer, rows []model.ProductRevenueRank, n int) error {
	if _, err := fmt.Fprintf(w, "\nTop %d Products by Revenue:\n", n); err != nil {
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "rank\tproduct_id\ttotal_revenue")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Rank, r.ProductID, r.TotalRevenue.StringFixed(2))
	}
	return tw.Flush()
}
