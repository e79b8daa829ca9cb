// Package site handles requests to the root path.
package site

import (
	"context"
	"net/http"
)

// DefaultLanding is where the root path sends browsers.
const DefaultLanding = "/dashboard"

// Register attaches the root handler to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/", NewRootHandler(DefaultLanding).HandleRoot)
}

// RootHandler handles root path requests
type RootHandler struct {
	landing string
}

// NewRootHandler creates a new root handler redirecting to landing.
func NewRootHandler(landing string) *RootHandler {
	return &RootHandler{landing: landing}
}

// HandleRoot redirects GET / to the landing page. Any other unmatched
// path is not found.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, h.landing, http.StatusFound)
}
