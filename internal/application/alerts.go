package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/shower-tracker/internal/notify"
	"github.com/example/shower-tracker/internal/store"
	"github.com/example/shower-tracker/internal/timeslot"
)

// alertLead is how far before a slot's start the reminder fires.
const alertLead = 10 * time.Minute

// Alert trigger names, also used in dedupe keys.
const (
	triggerOwnerLead  = "owner-lead"
	triggerOwnerStart = "owner-start"
	triggerHouseLead  = "house-lead"
	triggerHouseStart = "house-start"
)

// AlertMonitor fires the slot-time notifications: a reminder to the owner
// ten minutes out and at start, and a vacate nudge to the rest of the
// household at the same two moments.
type AlertMonitor struct {
	store     store.Store
	notifier  notify.Notifier
	now       func() time.Time
	interval  time.Duration
	tolerance time.Duration
	logger    zerolog.Logger

	// sent dedupes per occurrence so a trigger fires at most once even
	// though the poll revisits the same window several times.
	sent map[string]time.Time
}

// NewAlertMonitor builds the monitor. tolerance is how far past a trigger
// instant a poll may still fire it, covering missed cycles.
func NewAlertMonitor(st store.Store, notifier notify.Notifier, interval, tolerance time.Duration, now func() time.Time, logger zerolog.Logger) *AlertMonitor {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if tolerance <= 0 {
		tolerance = 90 * time.Second
	}
	return &AlertMonitor{
		store:     st,
		notifier:  notifier,
		now:       now,
		interval:  interval,
		tolerance: tolerance,
		logger:    logger.With().Str("monitor", "alerts").Logger(),
		sent:      make(map[string]time.Time),
	}
}

// Run polls until the context is cancelled.
func (m *AlertMonitor) Run(ctx context.Context) {
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
func (m *AlertMonitor) Tick(ctx context.Context) {
	now := m.now()
	m.prune(now)

	slots, err := m.store.Slots().List(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("list slots failed")
		return
	}

	for _, slot := range slots {
		if slot.Completed || !timeslot.IsForToday(slot, now) {
			continue
		}
		start := timeslot.EffectiveStart(slot, now)
		lead := start.Add(-alertLead)

		if m.due(lead, now) {
			m.fire(ctx, slot.ID, triggerOwnerLead, now, notify.Notification{
				Title:       "Shower slot soon",
				Body:        "Your shower slot starts in 10 minutes",
				TargetUsers: []string{slot.User},
			})
			m.fire(ctx, slot.ID, triggerHouseLead, now, notify.Notification{
				Title:       "Shower reserved soon",
				Body:        fmt.Sprintf("%s's slot starts in 10 minutes, wrap up if you're in there", slot.User),
				ExcludeUser: slot.User,
			})
		}
		if m.due(start, now) {
			m.fire(ctx, slot.ID, triggerOwnerStart, now, notify.Notification{
				Title:       "Shower slot started",
				Body:        "Your shower slot is starting now",
				TargetUsers: []string{slot.User},
			})
			m.fire(ctx, slot.ID, triggerHouseStart, now, notify.Notification{
				Title:       "Shower reserved",
				Body:        fmt.Sprintf("%s's slot is starting now", slot.User),
				ExcludeUser: slot.User,
			})
		}
	}
}

// due reports whether the trigger instant is in the past but still within
// tolerance.
func (m *AlertMonitor) due(at, now time.Time) bool {
	return !now.Before(at) && now.Sub(at) <= m.tolerance
}

// fire dispatches on a goroutine so a slow webhook fan-out cannot stall the
// remaining triggers of the cycle.
func (m *AlertMonitor) fire(ctx context.Context, slotID, trigger string, now time.Time, n notify.Notification) {
	key := fmt.Sprintf("%s:%s:%s", slotID, trigger, timeslot.DateOf(now))
	if _, seen := m.sent[key]; seen {
		return
	}
	m.sent[key] = now
	go m.notifier.Send(context.WithoutCancel(ctx), n)
	m.logger.Debug().Str("slot", slotID).Str("trigger", trigger).Msg("alert sent")
}

func (m *AlertMonitor) prune(now time.Time) {
	for key, at := range m.sent {
		if now.Sub(at) > 24*time.Hour {
			delete(m.sent, key)
		}
	}
}
