package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/salespulse/internal/adapters/chart"
	"github.com/okian/salespulse/internal/adapters/http/api"
	"github.com/okian/salespulse/internal/adapters/repository"
	"github.com/okian/salespulse/internal/domain/types"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake")

// mockDependencies serves a fixed report.
type mockDependencies struct {
	daily    []types.DailyEntry
	top      []types.ProductEntry
	charts   map[string][]byte
	dailyErr error
	topNErr  error
}

func (m *mockDependencies) DailySummary(ctx context.Context) ([]types.DailyEntry, error) {
	if m.dailyErr != nil {
		return nil, m.dailyErr
	}
	return m.daily, nil
}

func (m *mockDependencies) TopN(ctx context.Context, n int) ([]types.ProductEntry, error) {
	if m.topNErr != nil {
		return nil, m.topNErr
	}
	if n > len(m.top) {
		return m.top, nil
	}
	return m.top[:n], nil
}

func (m *mockDependencies) Rank(ctx context.Context, productID string) (types.ProductEntry, error) {
	for _, e := range m.top {
		if e.ProductID == productID {
			return e, nil
		}
	}
	return types.ProductEntry{}, repository.ErrNotFound
}

func (m *mockDependencies) Chart(ctx context.Context, name string) ([]byte, error) {
	b, ok := m.charts[name]
	if !ok {
		return nil, fmt.Errorf("chart %s: %w", name, repository.ErrNotFound)
	}
	return b, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"ready": true, "top_n": 3}}, 3)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func publishedDeps() *mockDependencies {
	return &mockDependencies{
		daily: []types.DailyEntry{
			{Date: "2025-01-01", TotalOrders: 1, TotalRevenue: "25.00", TotalQuantity: 3},
			{Date: "2025-01-02", TotalOrders: 1, TotalRevenue: "10.00", TotalQuantity: 1},
		},
		top: []types.ProductEntry{
			{Rank: 1, ProductID: "A", TotalRevenue: "30.00"},
			{Rank: 2, ProductID: "B", TotalRevenue: "5.00"},
		},
		charts: map[string][]byte{
			chart.DailyRevenue: pngBytes,
			chart.TopProducts:  pngBytes,
		},
	}
}

func TestServer_Register(t *testing.T) {
	Convey("Given an API server over a published report", t, func() {
		mux := newMux(publishedDeps())

		Convey("Then the health endpoint serves metrics", func() {
			w := do(mux, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint is accessible", func() {
			w := do(mux, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["ready"], ShouldEqual, true)
		})

		Convey("And the dashboard serves HTML referencing both charts", func() {
			w := do(mux, http.MethodGet, "/dashboard")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			body := w.Body.String()
			So(body, ShouldContainSubstring, "Daily Revenue Trend")
			So(body, ShouldContainSubstring, "Products by Revenue")
			So(body, ShouldContainSubstring, "/charts/daily-revenue.png")
			So(body, ShouldContainSubstring, "/charts/top-products.png")
		})

		Convey("And unknown paths are not found", func() {
			w := do(mux, http.MethodGet, "/unknown")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestDailySummary(t *testing.T) {
	Convey("Given a published report", t, func() {
		mux := newMux(publishedDeps())

		Convey("When requesting the daily summary", func() {
			w := do(mux, http.MethodGet, "/summary/daily")

			Convey("Then every day is returned in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rows []types.DailyEntry
				So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Date, ShouldEqual, "2025-01-01")
				So(rows[0].TotalRevenue, ShouldEqual, "25.00")
			})
		})

		Convey("When using another method", func() {
			w := do(mux, http.MethodPost, "/summary/daily")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given nothing has been published", t, func() {
		mux := newMux(&mockDependencies{dailyErr: repository.ErrNotFound})
		w := do(mux, http.MethodGet, "/summary/daily")
		So(w.Code, ShouldEqual, http.StatusNotFound)
	})

	Convey("Given an upstream failure", t, func() {
		mux := newMux(&mockDependencies{dailyErr: errors.New("boom")})
		w := do(mux, http.MethodGet, "/summary/daily")
		So(w.Code, ShouldEqual, http.StatusInternalServerError)
	})
}

func TestTopProducts(t *testing.T) {
	Convey("Given a published ranking", t, func() {
		mux := newMux(publishedDeps())

		tests := []struct {
			target string
			code   int
			rows   int
			errKey string
		}{
			{target: "/products/top?limit=1", code: http.StatusOK, rows: 1},
			{target: "/products/top?limit=3", code: http.StatusOK, rows: 2},
			{target: "/products/top", code: http.StatusOK, rows: 2},
			{target: "/products/top?limit=0", code: http.StatusBadRequest, errKey: "bad_request"},
			{target: "/products/top?limit=-2", code: http.StatusBadRequest, errKey: "bad_request"},
			{target: "/products/top?limit=abc", code: http.StatusBadRequest, errKey: "bad_request"},
			{target: "/products/top?limit=4", code: http.StatusBadRequest, errKey: "limit_exceeded"},
		}

		for _, tt := range tests {
			Convey("When requesting "+tt.target, func() {
				w := do(mux, http.MethodGet, tt.target)
				So(w.Code, ShouldEqual, tt.code)

				if tt.errKey != "" {
					var resp map[string]string
					So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
					So(resp["code"], ShouldEqual, tt.errKey)
					So(resp["message"], ShouldContainSubstring, "bad request")
					return
				}
				var rows []types.ProductEntry
				So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
				So(rows, ShouldHaveLength, tt.rows)
				So(rows[0].ProductID, ShouldEqual, "A")
			})
		}
	})

	Convey("Given nothing has been published", t, func() {
		mux := newMux(&mockDependencies{topNErr: repository.ErrNotFound})
		w := do(mux, http.MethodGet, "/products/top?limit=2")
		So(w.Code, ShouldEqual, http.StatusNotFound)
	})
}

func TestProductRank(t *testing.T) {
	Convey("Given a published ranking", t, func() {
		mux := newMux(publishedDeps())

		Convey("When requesting a ranked product", func() {
			w := do(mux, http.MethodGet, "/products/rank/B")

			Convey("Then its row is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entry types.ProductEntry
				So(json.Unmarshal(w.Body.Bytes(), &entry), ShouldBeNil)
				So(entry.Rank, ShouldEqual, 2)
				So(entry.TotalRevenue, ShouldEqual, "5.00")
			})
		})

		Convey("When requesting an unranked product", func() {
			w := do(mux, http.MethodGet, "/products/rank/Z")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the id is missing or nested", func() {
			So(do(mux, http.MethodGet, "/products/rank/").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/products/rank/a/b").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestCharts(t *testing.T) {
	Convey("Given rendered charts", t, func() {
		mux := newMux(publishedDeps())

		for _, target := range []string{"/charts/daily-revenue.png", "/charts/top-products.png"} {
			Convey("When requesting "+target, func() {
				w := do(mux, http.MethodGet, target)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "image/png")
				So(w.Body.Bytes(), ShouldResemble, pngBytes)
			})
		}

		Convey("When requesting an unknown chart", func() {
			w := do(mux, http.MethodGet, "/charts/other.png")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a chart that had no data", t, func() {
		deps := publishedDeps()
		delete(deps.charts, chart.TopProducts)
		mux := newMux(deps)

		w := do(mux, http.MethodGet, "/charts/top-products.png")
		So(w.Code, ShouldEqual, http.StatusNotFound)
	})
}

func TestErrors(t *testing.T) {
	Convey("Given API errors", t, func() {
		Convey("NewKind keeps the kind", func() {
			err := api.NewKind("api.op", api.ErrBadRequest)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request")
		})

		Convey("Wrap keeps the cause", func() {
			err := api.Wrap("api.op", repository.ErrNotFound)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "api.op: ")
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
