package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/store"
)

// SubscriptionHandler registers and removes push endpoints.
type SubscriptionHandler struct {
	subs store.Subscriptions
	now  func() time.Time
	resp responder
}

// NewSubscriptionHandler builds the handler.
func NewSubscriptionHandler(subs store.Subscriptions, now func() time.Time, resp responder) *SubscriptionHandler {
	if now == nil {
		now = time.Now
	}
	return &SubscriptionHandler{subs: subs, now: now, resp: resp}
}

type subscriptionRequest struct {
	User     string `json:"user"`
	Endpoint string `json:"endpoint"`
}

// Put registers or refreshes the push endpoint under the path key.
func (h *SubscriptionHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.resp.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if strings.TrimSpace(req.User) == "" || strings.TrimSpace(req.Endpoint) == "" {
		h.resp.writeError(r.Context(), w, http.StatusBadRequest, errors.New("user and endpoint are required"))
		return
	}

	sub := model.PushSubscription{
		Key:       mux.Vars(r)["key"],
		User:      strings.TrimSpace(req.User),
		Endpoint:  strings.TrimSpace(req.Endpoint),
		UpdatedAt: h.now(),
	}
	if err := h.subs.Put(r.Context(), sub); err != nil {
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	h.resp.writeJSON(r.Context(), w, http.StatusOK, sub)
}

// Delete removes the push endpoint under the path key.
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.subs.Delete(r.Context(), mux.Vars(r)["key"]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.resp.writeJSON(r.Context(), w, http.StatusNoContent, nil)
			return
		}
		h.resp.handleServiceError(r.Context(), w, err)
		return
	}
	h.resp.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
