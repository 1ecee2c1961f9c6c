package http

import (
	"encoding/json"
	"net/http"

	"github.com/example/shower-tracker/internal/application"
	"github.com/example/shower-tracker/internal/model"
)

// StatusHandler serves occupancy reads and transitions.
type StatusHandler struct {
	status *application.StatusService
	logs   *application.LogService
	resp   responder
}

// NewStatusHandler builds the handler.
func NewStatusHandler(status *application.StatusService, logs *application.LogService, resp responder) *StatusHandler {
	return &StatusHandler{status: status, logs: logs, resp: resp}
}

type userRequest struct {
	User string `json:"user"`
}

type statusResponse struct {
	model.ShowerStatus
	// RecentShower reports whether the ?user= from the query finished a
	// shower within the last half hour. Omitted when no user was named.
	RecentShower *bool `json:"recentShower,omitempty"`
	// Warning is set on start when the shower cuts into someone's
	// upcoming reservation.
	Warning string `json:"warning,omitempty"`
}

// Get returns the current occupancy. With ?user= it also reports whether
// that user showered recently.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	status, err := h.status.Current(r.Context())
	if err != nil {
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	resp := statusResponse{ShowerStatus: status}
	if user := r.URL.Query().Get("user"); user != "" {
		recent, err := h.logs.HasRecentShower(r.Context(), user)
		if err != nil {
			h.resp.handleServiceError(r.Context(), w, err)
			return
		}
		resp.RecentShower = &recent
	}
	h.resp.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Start claims the shower for the requesting user.
func (h *StatusHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.resp.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	status, warning, err := h.status.Start(r.Context(), req.User)
	if err != nil {
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	h.resp.writeJSON(r.Context(), w, http.StatusOK, statusResponse{ShowerStatus: status, Warning: warning})
}

// Stop releases the shower and returns the logged entry.
func (h *StatusHandler) Stop(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.resp.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	entry, err := h.status.Stop(r.Context(), req.User)
	if err != nil {
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	h.resp.writeJSON(r.Context(), w, http.StatusOK, entry)
}
