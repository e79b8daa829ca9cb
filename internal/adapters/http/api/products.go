package api

import (
	"context"
	"net/http"
	"strconv"
)

// ProductsDependencies defines the interface for ranking reads.
type ProductsDependencies interface {
	TopN(ctx context.Context, n int) ([]ProductEntry, error)
}

// ProductsHandler handles top products requests.
type ProductsHandler struct {
	deps     ProductsDependencies
	maxLimit int
}

// NewProductsHandler creates a new products handler.
func NewProductsHandler(deps ProductsDependencies, maxLimit int) *ProductsHandler {
	return &ProductsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetTop handles GET /products/top?limit=N requests. Without a limit
// the whole published ranking is returned.
func (h *ProductsHandler) HandleGetTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_top_products"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
