package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/salespulse/internal/adapters/chart"
)

// chartFiles maps route file names to chart names.
var chartFiles = map[string]string{
	"daily-revenue.png": chart.DailyRevenue,
	"top-products.png":  chart.TopProducts,
}

// ChartDependencies defines the interface for rendered chart reads.
type ChartDependencies interface {
	Chart(ctx context.Context, name string) ([]byte, error)
}

// ChartHandler serves rendered charts as PNG.
type ChartHandler struct {
	deps ChartDependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps ChartDependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

// HandleGetChart handles GET /charts/{daily-revenue,top-products}.png requests.
func (h *ChartHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name, ok := chartFiles[strings.TrimPrefix(r.URL.Path, "/charts/")]
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	b, err := h.deps.Chart(r.Context(), name)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
