package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/example/shower-tracker/internal/events"
)

// keepAliveInterval paces SSE comment frames so idle connections survive
// proxies with read timeouts.
const keepAliveInterval = 30 * time.Second

// EventsHandler streams change events over server-sent events.
type EventsHandler struct {
	hub  *events.Hub
	resp responder
}

// NewEventsHandler builds the handler.
func NewEventsHandler(hub *events.Hub, resp responder) *EventsHandler {
	return &EventsHandler{hub: hub, resp: resp}
}

// Stream subscribes the client and forwards events until it disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.resp.writeError(r.Context(), w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := h.hub.Subscribe()
	defer cancel()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case event, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Topic, payload)
			flusher.Flush()
		}
	}
}
