package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/shower-tracker/internal/events"
	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/store"
	"github.com/example/shower-tracker/internal/timeslot"
)

// AutoLogMonitor records slots whose window elapsed without a manual stop,
// assuming the reserved shower happened. The resulting entry spans the
// slot's effective window exactly.
type AutoLogMonitor struct {
	store    store.Store
	hub      *events.Hub
	now      func() time.Time
	interval time.Duration
	logger   zerolog.Logger

	// handled dedupes per occurrence: a recurring slot becomes due again
	// every day, so keys carry the occurrence date.
	handled map[string]time.Time
}

// NewAutoLogMonitor builds the monitor.
func NewAutoLogMonitor(st store.Store, hub *events.Hub, interval time.Duration, now func() time.Time, logger zerolog.Logger) *AutoLogMonitor {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AutoLogMonitor{
		store:    st,
		hub:      hub,
		now:      now,
		interval: interval,
		logger:   logger.With().Str("monitor", "autolog").Logger(),
		handled:  make(map[string]time.Time),
	}
}

// Run polls until the context is cancelled.
func (m *AutoLogMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info().Msg("monitor started")
	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("monitor stopped")
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick runs one poll cycle. Exported so tests can drive cycles directly.
func (m *AutoLogMonitor) Tick(ctx context.Context) {
	now := m.now()
	m.prune(now)

	slots, err := m.store.Slots().List(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("list slots failed")
		return
	}
	entries, err := m.store.Logs().List(ctx, model.LogOperational)
	if err != nil {
		m.logger.Error().Err(err).Msg("list log failed")
		return
	}

	for _, slot := range slots {
		if !timeslot.AutoLogDue(slot, now) {
			continue
		}
		key := slot.ID + "|" + timeslot.DateOf(now)
		if _, seen := m.handled[key]; seen {
			continue
		}
		m.handled[key] = now
		if manuallyLogged(entries, slot, now) {
			continue
		}
		if err := m.record(ctx, slot, now); err != nil {
			m.logger.Error().Err(err).Str("slot", slot.ID).Msg("auto-log failed")
			delete(m.handled, key)
		}
	}
}

func (m *AutoLogMonitor) record(ctx context.Context, slot model.Slot, now time.Time) error {
	entry := model.LogEntry{
		User:            slot.User,
		StartedAt:       timeslot.EffectiveStart(slot, now),
		EndedAt:         timeslot.EffectiveEnd(slot, now),
		DurationSeconds: slot.DurationMinutes * 60,
	}
	entry, err := m.store.Logs().Append(ctx, model.LogOperational, entry)
	if err != nil {
		return err
	}
	if _, err := m.store.Logs().Append(ctx, model.LogHistory, entry); err != nil {
		return err
	}

	if !slot.Recurring {
		slot.Completed = true
		if err := m.store.Slots().Update(ctx, slot); err != nil {
			m.logger.Warn().Err(err).Str("slot", slot.ID).Msg("mark completed failed")
		}
	}

	if m.hub != nil {
		m.hub.Publish(events.Event{Topic: events.TopicLog, At: now})
		m.hub.Publish(events.Event{Topic: events.TopicSlots, At: now})
	}
	m.logger.Info().Str("slot", slot.ID).Str("user", slot.User).Msg("slot auto-logged")
	return nil
}

// manuallyLogged reports whether the slot's owner already has an entry
// ending inside the slot's padded window, meaning the shower was stopped by
// hand and must not be logged twice.
func manuallyLogged(entries []model.LogEntry, slot model.Slot, now time.Time) bool {
	start := timeslot.EffectiveStart(slot, now).Add(-timeslot.ActiveSlotMargin)
	end := timeslot.EffectiveEnd(slot, now).Add(timeslot.ActiveSlotMargin)
	for _, entry := range entries {
		if entry.User != slot.User {
			continue
		}
		if !entry.EndedAt.Before(start) && !entry.EndedAt.After(end) {
			return true
		}
	}
	return false
}

func (m *AutoLogMonitor) prune(now time.Time) {
	for key, at := range m.handled {
		if now.Sub(at) > 24*time.Hour {
			delete(m.handled, key)
		}
	}
}
