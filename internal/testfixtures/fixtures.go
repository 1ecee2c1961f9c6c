// Package testfixtures provides deterministic clocks, identifier
// generators, and record builders shared by the service tests.
package testfixtures

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/store/memory"
)

var referenceTime = time.Date(2026, time.March, 14, 7, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures:
// a Saturday morning, 07:00 UTC.
func ReferenceTime() time.Time {
	return referenceTime
}

// SlotOption configures a generated slot fixture.
type SlotOption func(*model.Slot)

// SlotFor builds a slot for the named user starting at the reference time's
// date. Options override individual fields.
func SlotFor(user string, opts ...SlotOption) model.Slot {
	slot := model.Slot{
		User:            user,
		Date:            referenceTime.Format("2006-01-02"),
		StartTime:       referenceTime.Format("15:04"),
		DurationMinutes: 20,
	}
	for _, opt := range opts {
		opt(&slot)
	}
	return slot
}

// WithDate sets the slot's calendar day.
func WithDate(date string) SlotOption {
	return func(s *model.Slot) { s.Date = date }
}

// WithStart sets the slot's wall-clock start time.
func WithStart(clock string) SlotOption {
	return func(s *model.Slot) { s.StartTime = clock }
}

// WithDuration sets the slot's length in minutes.
func WithDuration(minutes int) SlotOption {
	return func(s *model.Slot) { s.DurationMinutes = minutes }
}

// Recurring marks the slot as repeating daily.
func Recurring() SlotOption {
	return func(s *model.Slot) { s.Recurring = true }
}

// Completed marks the slot as already taken.
func Completed() SlotOption {
	return func(s *model.Slot) { s.Completed = true }
}

// LogEntryFor builds a completed shower record ending at the given time.
func LogEntryFor(user string, endedAt time.Time, duration time.Duration) model.LogEntry {
	if duration <= 0 {
		duration = 15 * time.Minute
	}
	return model.LogEntry{
		User:            user,
		StartedAt:       endedAt.Add(-duration),
		EndedAt:         endedAt,
		DurationSeconds: int(duration / time.Second),
	}
}

// SequentialIDs returns an ID source yielding "fix-1", "fix-2" and so on,
// keeping seeded entity identifiers stable across runs.
func SequentialIDs() func() string {
	var mu sync.Mutex
	var n int
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("fix-%d", n)
	}
}

// SeededStore returns a memory store with a deterministic ID sequence and
// the provided slots already created.
func SeededStore(t *testing.T, slots ...model.Slot) *memory.Store {
	t.Helper()
	s := memory.New().WithIDGenerator(SequentialIDs())
	ctx := context.Background()
	for _, slot := range slots {
		if _, err := s.Slots().Create(ctx, slot); err != nil {
			t.Fatalf("seed slot: %v", err)
		}
	}
	return s
}
