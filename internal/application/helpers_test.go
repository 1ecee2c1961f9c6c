package application

import (
	"context"
	"sync"

	"github.com/example/shower-tracker/internal/notify"
)

// notifierRecorder captures notifications for assertions. Services fan out
// on goroutines, so access is mutex guarded and tests that exercise async
// paths poll with Eventually.
type notifierRecorder struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *notifierRecorder) Send(ctx context.Context, n notify.Notification) {
	r.mu.Lock()
	r.sent = append(r.sent, n)
	r.mu.Unlock()
}

func (r *notifierRecorder) all() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Notification, len(r.sent))
	copy(out, r.sent)
	return out
}

func (r *notifierRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func (r *notifierRecorder) titled(title string) []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Notification
	for _, n := range r.sent {
		if n.Title == title {
			out = append(out, n)
		}
	}
	return out
}
