package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/example/shower-tracker/internal/application"
)

var errMissingUser = errors.New("user query parameter is required")

// SlotHandler serves the reservation schedule.
type SlotHandler struct {
	slots *application.SlotService
	resp  responder
}

// NewSlotHandler builds the handler.
func NewSlotHandler(slots *application.SlotService, resp responder) *SlotHandler {
	return &SlotHandler{slots: slots, resp: resp}
}

// List returns the schedule split into today and upcoming.
func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	listing, err := h.slots.List(r.Context())
	if err != nil {
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	h.resp.writeJSON(r.Context(), w, http.StatusOK, listing)
}

// Create claims a new reservation.
func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var params application.ClaimParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.resp.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	slot, err := h.slots.Claim(r.Context(), params)
	if err != nil {
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	h.resp.writeJSON(r.Context(), w, http.StatusCreated, slot)
}

// Delete removes a reservation owned by the ?user= caller.
func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if user == "" {
		h.resp.writeError(r.Context(), w, http.StatusBadRequest, errMissingUser)
		return
	}
	if err := h.slots.Delete(r.Context(), mux.Vars(r)["id"], user); err != nil {
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	h.resp.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Extend lengthens a reservation by five minutes.
func (h *SlotHandler) Extend(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.resp.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	slot, err := h.slots.Extend(r.Context(), mux.Vars(r)["id"], req.User)
	if err != nil {
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	h.resp.writeJSON(r.Context(), w, http.StatusOK, slot)
}
