// Package events is the in-process fan-out used by the SSE endpoint.
// Services publish a change event whenever status, slots, or the log
// mutate, and each connected client holds one subscription.
package events

import (
	"sync"
	"time"
)

// Topic names the part of the data set that changed.
type Topic string

const (
	TopicStatus Topic = "status"
	TopicSlots  Topic = "slots"
	TopicLog    Topic = "log"
)

// Event is one change notification. Clients re-fetch the affected resource
// rather than reading state off the event itself.
type Event struct {
	Topic Topic     `json:"topic"`
	At    time.Time `json:"at"`
}

// subscriber buffer size. A slow client that falls this far behind drops
// events; it will catch up on its next re-fetch.
const subscriberBuffer = 16

// Hub fans published events out to all current subscribers.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
	closed bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a new listener. The returned cancel func must be
// called when the listener goes away; after cancel the channel is closed.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking. Events
// to subscribers with full buffers are dropped.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close shuts the hub down and closes all subscriber channels. Publish and
// Subscribe become no-ops afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
