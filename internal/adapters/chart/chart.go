package chart

import (
	"fmt"
	"io"
	"time"

	"github.com/fogleman/gg"

	"github.com/okian/salespulse/internal/domain/model"
	"github.com/okian/salespulse/pkg/metrics"
)

// Chart names used for metrics and routes.
const (
	DailyRevenue = "daily_revenue"
	TopProducts  = "top_products"
)

// RenderDailyRevenue draws total revenue per day as a line with point
// markers and writes it to w as PNG. Rows must be sorted by date.
func RenderDailyRevenue(w io.Writer, rows []model.DailySalesSummary, opts ...Option) error {
	if len(rows) == 0 {
		return ErrNoData
	}
	start := time.Now()

	values := make([]float64, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		values[i] = r.TotalRevenue.InexactFloat64()
		labels[i] = r.OrderDate.Format(model.DateLayout)
	}

	c := newCanvas("Daily Revenue Trend", "Date", "Revenue", opts...)
	if err := c.begin(values); err != nil {
		return err
	}
	c.frame()

	// x is proportional to the day offset from the first date so gaps in the
	// calendar show up as gaps on the axis.
	first := rows[0].OrderDate
	span := rows[len(rows)-1].OrderDate.Sub(first).Hours() / 24
	xs := make([]float64, len(rows))
	for i, r := range rows {
		if span == 0 {
			xs[i] = (c.left + c.right) / 2
			continue
		}
		pad := (c.right - c.left) * 0.03
		offset := r.OrderDate.Sub(first).Hours() / 24
		xs[i] = c.left + pad + offset/span*(c.right-c.left-2*pad)
	}

	dc := c.dc
	dc.SetColor(deep[0])
	dc.SetLineWidth(lineWidth)
	for i := range xs {
		if i == 0 {
			dc.MoveTo(xs[i], c.y(values[i]))
			continue
		}
		dc.LineTo(xs[i], c.y(values[i]))
	}
	dc.Stroke()
	for i := range xs {
		dc.DrawCircle(xs[i], c.y(values[i]), markerSize)
		dc.Fill()
	}

	c.xLabels(xs, labels)

	return encode(w, c.dc, DailyRevenue, start)
}

// RenderTopProducts draws one bar per ranked product in rank order and
// writes it to w as PNG. Negative revenue draws below the zero line.
func RenderTopProducts(w io.Writer, rows []model.ProductRevenueRank, opts ...Option) error {
	if len(rows) == 0 {
		return ErrNoData
	}
	start := time.Now()

	values := make([]float64, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		values[i] = r.TotalRevenue.InexactFloat64()
		labels[i] = r.ProductID
	}

	c := newCanvas("Top 10 Products by Revenue", "Product ID", "Revenue", opts...)
	if err := c.begin(values); err != nil {
		return err
	}
	c.frame()

	dc := c.dc
	slot := (c.right - c.left) / float64(len(rows))
	barWidth := slot * barFraction
	zero := c.y(0)
	xs := make([]float64, len(rows))
	for i, v := range values {
		xs[i] = c.left + slot*(float64(i)+0.5)
		top := c.y(v)
		y0, h := top, zero-top
		if v < 0 {
			y0, h = zero, top-zero
		}
		dc.SetColor(deep[i%len(deep)])
		dc.DrawRectangle(xs[i]-barWidth/2, y0, barWidth, h)
		dc.Fill()
	}

	dc.SetColor(axisColor)
	dc.SetLineWidth(1)
	dc.DrawLine(c.left, zero, c.right, zero)
	dc.Stroke()

	c.xLabels(xs, labels)

	return encode(w, c.dc, TopProducts, start)
}

func encode(w io.Writer, dc *gg.Context, name string, start time.Time) error {
	if err := dc.EncodePNG(w); err != nil {
		metrics.RecordErrorByComponent("chart", "encode")
		return fmt.Errorf("encode %s png: %w", name, err)
	}
	metrics.RecordChartRenderLatency(name, float64(time.Since(start).Microseconds())/1000)
	return nil
}
