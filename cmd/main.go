package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/salespulse/internal/adapters/http/api"
	"github.com/okian/salespulse/internal/adapters/http/site"
	"github.com/okian/salespulse/internal/adapters/http/swagger"
	app "github.com/okian/salespulse/internal/app"
	"github.com/okian/salespulse/internal/config"
	"github.com/okian/salespulse/pkg/logger"
	"github.com/okian/salespulse/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// Chart file names under output_dir.
const (
	dailyRevenueFile = "daily_revenue.png"
	topProductsFile  = "top_products.png"
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to load config", logger.Error(err))
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, loggerInstance.Named("pipeline"))
	if err := run(ctx, cfg, svc, os.Stdout, loggerInstance); err != nil {
		loggerInstance.Fatal(ctx, "pipeline failed", logger.Error(err))
	}
}

// newService builds the pipeline service from configuration.
func newService(cfg *config.Config, l logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(l),
		app.WithInputPath(cfg.InputPath),
		app.WithTopN(cfg.TopN),
		app.WithHeadRows(cfg.HeadRows),
		app.WithMissingPolicy(cfg.MissingPolicy),
		app.WithChartSize(cfg.ChartWidth, cfg.ChartHeight),
	)
}

// run executes the pipeline once, optionally writes the charts to disk and
// then serves the results until ctx is cancelled. An empty addr ends the
// run after the pipeline.
func run(ctx context.Context, cfg *config.Config, svc *app.Service, stdout io.Writer, l logger.Logger) error {
	if _, err := svc.Run(ctx, stdout); err != nil {
		return err
	}

	if cfg.OutputDir != "" {
		paths, err := writeCharts(cfg.OutputDir, svc.Charts())
		if err != nil {
			return err
		}
		for _, p := range paths {
			l.Info(ctx, "chart written", logger.String("path", p))
		}
	}

	if cfg.Addr == "" {
		return nil
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx, metrics.RefreshInterval())

	return serve(ctx, cfg.Addr, newMux(ctx, svc, cfg.TopN), l)
}

// newMux registers every route on a fresh mux.
func newMux(ctx context.Context, svc *app.Service, topN int) *http.ServeMux {
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	// Register report API routes with the service dependency.
	apiServer := api.NewServer(svc, svc, topN)
	apiServer.Register(ctx, mux)

	// Root redirects to the dashboard
	site.Register(ctx, mux)

	return mux
}

// serve runs an HTTP server on addr until ctx is done, then shuts it down.
func serve(ctx context.Context, addr string, handler http.Handler, l logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info(ctx, "starting HTTP server", logger.String("addr", addr), logger.String("dashboard", "/dashboard"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	// Wait for shutdown signal
	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	l.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	l.Info(ctx, "server stopped")
	return nil
}

// writeCharts saves the rendered charts into dir and returns the written
// paths. Charts without data are skipped.
func writeCharts(dir string, charts app.Charts) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{dailyRevenueFile, charts.DailyRevenue},
		{topProductsFile, charts.TopProducts},
	}

	var written []string
	for _, f := range files {
		if f.data == nil {
			continue
		}
		p := filepath.Join(dir, f.name)
		if err := os.WriteFile(p, f.data, 0o644); err != nil { //nolint:gosec // charts are public artefacts
			return written, fmt.Errorf("write %s: %w", f.name, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	// Update memory usage
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	// Update goroutine count
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// Update GC pause time
	if m.NumGC > 0 {
		// Calculate average GC pause time
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
