// Package service composes the sales pipeline steps and implements the
// dependencies required by the HTTP API.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/salespulse/internal/adapters/chart"
	"github.com/okian/salespulse/internal/adapters/console"
	"github.com/okian/salespulse/internal/adapters/ingest"
	"github.com/okian/salespulse/internal/adapters/repository"
	"github.com/okian/salespulse/internal/domain/aggregate"
	"github.com/okian/salespulse/internal/domain/model"
	"github.com/okian/salespulse/internal/domain/types"
	"github.com/okian/salespulse/pkg/logger"
	"github.com/okian/salespulse/pkg/metrics"
)

// Charts holds the PNG bytes of one run. A nil slice means the chart had
// no data.
type Charts struct {
	DailyRevenue []byte
	TopProducts  []byte
}

// Service runs the pipeline and serves its latest results.
type Service struct {
	mu sync.RWMutex

	// Configuration
	inputPath     string
	topN          int
	headRows      int
	missingPolicy string
	chartWidth    int
	chartHeight   int
	now           func() time.Time

	// Components
	store  repository.Store
	logger logger.Logger

	// State
	charts Charts
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithInputPath sets the CSV file to analyse.
func WithInputPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.inputPath = path
		}
	}
}

// WithTopN sets the size of the product revenue ranking.
func WithTopN(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithHeadRows sets how many rows the sample and daily dumps print.
func WithHeadRows(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.headRows = n
		}
	}
}

// WithMissingPolicy selects the ingest policy for incomplete rows.
func WithMissingPolicy(policy string) Option {
	return func(s *Service) {
		if policy != "" {
			s.missingPolicy = policy
		}
	}
}

// WithChartSize sets the pixel size of both charts.
func WithChartSize(width, height int) Option {
	return func(s *Service) {
		if width > 0 && height > 0 {
			s.chartWidth = width
			s.chartHeight = height
		}
	}
}

// WithStore sets the report store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		inputPath:     "ecommerce_sales.csv",
		topN:          aggregate.DefaultTopN,
		headRows:      5,
		missingPolicy: ingest.PolicyDrop,
		chartWidth:    chart.DefaultWidth,
		chartHeight:   chart.DefaultHeight,
		now:           time.Now,
		logger:        nil, // resolved on first use
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewSnapshotStore()
	}

	return s
}

// Run executes load, inspect, aggregate, print, render and publish in
// order. Diagnostic dumps and result tables are written to out.
func (s *Service) Run(ctx context.Context, out io.Writer) (*model.Report, error) {
	ds, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.Inspect(out, ds); err != nil {
		return nil, err
	}

	daily, top, err := s.Aggregate(ctx, ds.Lines)
	if err != nil {
		return nil, err
	}

	if err := s.Print(out, daily, top); err != nil {
		return nil, err
	}

	charts := s.Render(ctx, daily, top)

	report := &model.Report{
		GeneratedAt:  s.now().UTC(),
		Source:       s.inputPath,
		Daily:        daily,
		TopProducts:  top,
		TotalRevenue: aggregate.TotalRevenue(ds.Lines),
		LineCount:    len(ds.Lines),
		DroppedRows:  ds.DroppedRows,
	}
	if err := s.Publish(ctx, report, charts); err != nil {
		return nil, err
	}

	return report, nil
}

// Load reads the configured input file.
func (s *Service) Load(ctx context.Context) (*ingest.Dataset, error) {
	s.log().Info(ctx, "loading order lines", logger.String("path", s.inputPath))

	ds, err := ingest.Load(ctx, s.inputPath,
		ingest.WithHeadRows(s.headRows),
		ingest.WithMissingPolicy(s.missingPolicy),
	)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.inputPath, err)
	}

	s.log().Info(ctx, "order lines loaded",
		logger.Int("rows", ds.RowCount),
		logger.Int("lines", len(ds.Lines)),
		logger.Int("dropped", ds.DroppedRows),
	)
	if ds.DroppedRows > 0 {
		s.log().Warn(ctx, "rows with missing values were excluded",
			logger.Int("dropped", ds.DroppedRows),
			logger.String("policy", s.missingPolicy),
		)
	}
	return ds, nil
}

// Inspect writes the column, missing-value and sample dumps.
func (s *Service) Inspect(out io.Writer, ds *ingest.Dataset) error {
	if err := console.Inspect(out, ds); err != nil {
		return fmt.Errorf("write inspection: %w", err)
	}
	return nil
}

// Aggregate computes the daily summary and the top-N ranking concurrently.
// Both only read lines.
func (s *Service) Aggregate(ctx context.Context, lines []model.OrderLine) ([]model.DailySalesSummary, []model.ProductRevenueRank, error) {
	var (
		daily []model.DailySalesSummary
		top   []model.ProductRevenueRank
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		daily = aggregate.ComputeDailySummary(lines)
		metrics.RecordAggregateLatency("daily", float64(time.Since(start).Microseconds())/1000)
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		top, err = aggregate.ComputeTopProducts(lines, s.topN)
		metrics.RecordAggregateLatency("top_products", float64(time.Since(start).Microseconds())/1000)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.RecordErrorByComponent("aggregate", "compute")
		return nil, nil, fmt.Errorf("aggregate: %w", err)
	}

	s.log().Debug(ctx, "aggregation complete",
		logger.Int("days", len(daily)),
		logger.Int("products", len(top)),
	)
	return daily, top, nil
}

// Print writes the daily summary head and the product ranking.
func (s *Service) Print(out io.Writer, daily []model.DailySalesSummary, top []model.ProductRevenueRank) error {
	if err := console.PrintDailySummary(out, daily, s.headRows); err != nil {
		return fmt.Errorf("write daily summary: %w", err)
	}
	if err := console.PrintTopProducts(out, top, s.topN); err != nil {
		return fmt.Errorf("write top products: %w", err)
	}
	return nil
}

// Render draws both charts. A chart without data is skipped with a warning;
// other render failures are logged and leave that chart empty.
func (s *Service) Render(ctx context.Context, daily []model.DailySalesSummary, top []model.ProductRevenueRank) Charts {
	size := chart.WithSize(s.chartWidth, s.chartHeight)
	var charts Charts

	var buf bytes.Buffer
	if err := chart.RenderDailyRevenue(&buf, daily, size); err != nil {
		s.renderFailed(ctx, chart.DailyRevenue, err)
	} else {
		charts.DailyRevenue = bytes.Clone(buf.Bytes())
	}

	buf.Reset()
	title := chart.WithTitle(fmt.Sprintf("Top %d Products by Revenue", s.topN))
	if err := chart.RenderTopProducts(&buf, top, size, title); err != nil {
		s.renderFailed(ctx, chart.TopProducts, err)
	} else {
		charts.TopProducts = bytes.Clone(buf.Bytes())
	}

	return charts
}

func (s *Service) renderFailed(ctx context.Context, name string, err error) {
	if errors.Is(err, chart.ErrNoData) {
		s.log().Warn(ctx, "nothing to plot", logger.String("chart", name))
		return
	}
	metrics.RecordErrorByComponent("chart", "render")
	s.log().Error(ctx, "chart render failed", logger.String("chart", name), logger.Error(err))
}

// Publish stores the report and the chart bytes for readers.
func (s *Service) Publish(ctx context.Context, report *model.Report, charts Charts) error {
	if err := s.store.Publish(ctx, report); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	s.mu.Lock()
	s.charts = charts
	s.mu.Unlock()

	s.log().Info(ctx, "report published",
		logger.Int("days", len(report.Daily)),
		logger.Int("ranked", len(report.TopProducts)),
		logger.String("total_revenue", report.TotalRevenue.StringFixed(types.MoneyPlaces)),
	)
	return nil
}

// log returns the configured logger, falling back to the global one.
func (s *Service) log() logger.Logger {
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s.logger
}

// Charts returns the chart bytes of the last run.
func (s *Service) Charts() Charts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.charts
}

// Chart returns the PNG bytes of the named chart.
// Returns an error wrapping repository.ErrNotFound when it was not rendered.
func (s *Service) Chart(_ context.Context, name string) ([]byte, error) {
	charts := s.Charts()
	var b []byte
	switch name {
	case chart.DailyRevenue:
		b = charts.DailyRevenue
	case chart.TopProducts:
		b = charts.TopProducts
	}
	if b == nil {
		return nil, fmt.Errorf("chart %s: %w", name, repository.ErrNotFound)
	}
	return b, nil
}

// DailySummary returns the published daily summary.
func (s *Service) DailySummary(ctx context.Context) ([]types.DailyEntry, error) {
	report, err := s.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return types.NewDailyEntries(report.Daily), nil
}

// TopN returns the first n rows of the published ranking.
func (s *Service) TopN(ctx context.Context, n int) ([]types.ProductEntry, error) {
	rows, err := s.store.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	return types.NewProductEntries(rows), nil
}

// Rank returns the ranking row of a product.
func (s *Service) Rank(ctx context.Context, productID string) (types.ProductEntry, error) {
	row, err := s.store.ProductRank(ctx, productID)
	if err != nil {
		return types.ProductEntry{}, err
	}
	return types.NewProductEntry(row), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	stats := map[string]interface{}{
		"source": s.inputPath,
		"top_n":  s.topN,
		"ready":  false,
	}

	report, err := s.store.Latest(ctx)
	if err != nil {
		return stats
	}
	stats["ready"] = true
	stats["generated_at"] = report.GeneratedAt.Format(time.RFC3339)
	stats["lines"] = report.LineCount
	stats["dropped_rows"] = report.DroppedRows
	stats["days"] = len(report.Daily)
	stats["ranked_products"] = s.store.Count(ctx)
	stats["total_revenue"] = report.TotalRevenue.StringFixed(types.MoneyPlaces)
	return stats
}
