// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/salespulse/internal/adapters/repository"
	"github.com/okian/salespulse/internal/domain/types"
)

// Dependencies bundles the report reads the HTTP handlers need.
type Dependencies interface {
	SummaryDependencies
	ProductsDependencies
	RankDependencies
	ChartDependencies
}

// DailyEntry mirrors the read shape of one daily summary row.
type DailyEntry = types.DailyEntry

// ProductEntry mirrors the read shape of one ranking row.
type ProductEntry = types.ProductEntry

// Server wires HTTP routes for the report API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	summaryHandler   *SummaryHandler
	productsHandler  *ProductsHandler
	rankHandler      *RankHandler
	chartHandler     *ChartHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// limit accepted by the top products endpoint.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		summaryHandler:   NewSummaryHandler(deps),
		productsHandler:  NewProductsHandler(deps, maxLimit),
		rankHandler:      NewRankHandler(deps),
		chartHandler:     NewChartHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", MetricsMiddleware(s.dashboardHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/summary/daily", MetricsMiddleware(s.summaryHandler.HandleGetDaily, "summary_daily"))
	mux.HandleFunc("/products/top", MetricsMiddleware(s.productsHandler.HandleGetTop, "products_top"))
	mux.HandleFunc("/products/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "products_rank"))
	mux.HandleFunc("/charts/", MetricsMiddleware(s.chartHandler.HandleGetChart, "charts"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound reports whether err means the requested resource does not
// exist yet or is not part of the published report.
func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, repository.ErrNotFound)
}
