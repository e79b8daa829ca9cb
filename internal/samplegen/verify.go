package samplegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/salespulse/internal/adapters/ingest"
	"github.com/okian/salespulse/internal/domain/aggregate"
	"github.com/okian/salespulse/internal/domain/types"
	"github.com/okian/salespulse/pkg/logger"
)

// ErrMismatch reports that the service disagrees with the local computation.
var ErrMismatch = errors.New("service results do not match input")

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// getJSON fetches path and decodes the JSON body into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: status %d: %s", path, resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// checkHealth verifies the service is running. Any 200 from /healthz counts.
func (c *HTTPClient) checkHealth(ctx context.Context) error {
	logger.Get().Info(ctx, "checking service health", logger.String("url", c.baseURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// VerifyResult summarises a verification run.
type VerifyResult struct {
	DaysChecked     int
	ProductsChecked int
}

// Verify loads the CSV at path, computes the expected daily summary and
// top-n ranking locally and compares them with what the service serves.
func Verify(ctx context.Context, c *HTTPClient, path string, n int) (VerifyResult, error) {
	log := logger.Get()
	log.Info(ctx, "verifying service results", logger.String("input", path), logger.String("url", c.baseURL))

	ds, err := ingest.Load(ctx, path)
	if err != nil {
		return VerifyResult{}, err
	}
	wantDaily := types.NewDailyEntries(aggregate.ComputeDailySummary(ds.Lines))
	ranked, err := aggregate.ComputeTopProducts(ds.Lines, n)
	if err != nil {
		return VerifyResult{}, err
	}
	wantTop := types.NewProductEntries(ranked)

	var gotDaily []types.DailyEntry
	if err := c.getJSON(ctx, "/summary/daily", &gotDaily); err != nil {
		return VerifyResult{}, err
	}
	var gotTop []types.ProductEntry
	q := url.Values{"limit": []string{strconv.Itoa(n)}}
	if err := c.getJSON(ctx, "/products/top?"+q.Encode(), &gotTop); err != nil {
		return VerifyResult{}, err
	}

	if err := compareDaily(wantDaily, gotDaily); err != nil {
		return VerifyResult{}, err
	}
	if err := compareTop(wantTop, gotTop); err != nil {
		return VerifyResult{}, err
	}

	res := VerifyResult{DaysChecked: len(wantDaily), ProductsChecked: len(wantTop)}
	log.Info(ctx, "service results verified",
		logger.Int("days", res.DaysChecked),
		logger.Int("products", res.ProductsChecked),
	)
	return res, nil
}

func compareDaily(want, got []types.DailyEntry) error {
	if len(want) != len(got) {
		return fmt.Errorf("%w: %d days served, %d expected", ErrMismatch, len(got), len(want))
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("%w: day %s: got %+v, want %+v", ErrMismatch, want[i].Date, got[i], want[i])
		}
	}
	return nil
}

func compareTop(want, got []types.ProductEntry) error {
	if len(want) != len(got) {
		return fmt.Errorf("%w: %d products served, %d expected", ErrMismatch, len(got), len(want))
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("%w: rank %d: got %+v, want %+v", ErrMismatch, i+1, got[i], want[i])
		}
	}
	return nil
}
