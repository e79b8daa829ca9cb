package api

import (
	"context"
	"net/http"
)

// SummaryDependencies defines the interface for daily summary reads.
type SummaryDependencies interface {
	DailySummary(ctx context.Context) ([]DailyEntry, error)
}

// SummaryHandler handles daily summary requests.
type SummaryHandler struct {
	deps SummaryDependencies
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies) *SummaryHandler {
	return &SummaryHandler{deps: deps}
}

// HandleGetDaily handles GET /summary/daily requests.
func (h *SummaryHandler) HandleGetDaily(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_daily_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rows, err := h.deps.DailySummary(r.Context())
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
