// Package store defines the persistence boundary for the shower tracker.
// Implementations live under internal/store/<driver>/ (sqlite, postgres,
// memory). Core logic never talks to a database directly; services take a
// Store and the monitors work from snapshots it returns.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/shower-tracker/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
// Implementations translate their driver's miss into this sentinel.
var ErrNotFound = errors.New("store: not found")

// Store groups the per-entity persistence operations required by services.
type Store interface {
	Status() Status
	Slots() Slots
	Logs() Logs
	Subscriptions() Subscriptions
}

// Status reads and replaces the occupancy singleton. Set always writes the
// full pair so the both-or-neither invariant holds at the storage layer.
type Status interface {
	Get(ctx context.Context) (model.ShowerStatus, error)
	Set(ctx context.Context, status model.ShowerStatus) error
}

// Slots persists reservations. Create assigns the opaque slot ID.
type Slots interface {
	Create(ctx context.Context, slot model.Slot) (model.Slot, error)
	Get(ctx context.Context, id string) (model.Slot, error)
	List(ctx context.Context) ([]model.Slot, error)
	Update(ctx context.Context, slot model.Slot) error
	Delete(ctx context.Context, id string) error
	// DeleteDatedThrough removes non-recurring slots whose date is on or
	// before the given calendar day and reports how many were removed.
	// Recurring slots are never swept by date.
	DeleteDatedThrough(ctx context.Context, date string) (int, error)
}

// Logs appends and queries the two append-only shower logs.
type Logs interface {
	Append(ctx context.Context, stream model.LogStream, entry model.LogEntry) (model.LogEntry, error)
	List(ctx context.Context, stream model.LogStream) ([]model.LogEntry, error)
	// DeleteEndedBefore removes entries whose EndedAt is strictly before the
	// cutoff and reports how many were removed.
	DeleteEndedBefore(ctx context.Context, stream model.LogStream, cutoff time.Time) (int, error)
}

// Subscriptions tracks registered push endpoints for the notifier.
type Subscriptions interface {
	Put(ctx context.Context, sub model.PushSubscription) error
	List(ctx context.Context) ([]model.PushSubscription, error)
	Delete(ctx context.Context, key string) error
}
