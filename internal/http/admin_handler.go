package http

import (
	"context"
	"net/http"

	"github.com/example/shower-tracker/internal/application"
)

// AdminHandler serves the maintenance endpoints.
type AdminHandler struct {
	sweeper *application.Sweeper
	ping    func(ctx context.Context) error
	resp    responder
}

// NewAdminHandler builds the handler. ping verifies store connectivity for
// the health endpoint and may be nil for backends without one.
func NewAdminHandler(sweeper *application.Sweeper, ping func(ctx context.Context) error, resp responder) *AdminHandler {
	return &AdminHandler{sweeper: sweeper, ping: ping, resp: resp}
}

// Cleanup runs a retention sweep immediately and reports what it removed.
func (h *AdminHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sweeper.Sweep(r.Context())
	if err != nil {
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	h.resp.writeJSON(r.Context(), w, http.StatusOK, stats)
}

type healthResponse struct {
	Status string `json:"status"`
}

// Healthz reports liveness, checking store connectivity when available.
func (h *AdminHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.ping != nil {
		if err := h.ping(r.Context()); err != nil {
			h.resp.writeJSON(r.Context(), w, http.StatusServiceUnavailable, healthResponse{Status: "store unreachable"})
			return
		}
	}
	h.resp.writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
}
