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

// SweepStats counts what one retention pass removed.
type SweepStats struct {
	LogEntries     int `json:"logEntries"`
	HistoryEntries int `json:"historyEntries"`
	Slots          int `json:"slots"`
}

// Total is the number of records removed across all categories.
func (s SweepStats) Total() int {
	return s.LogEntries + s.HistoryEntries + s.Slots
}

// Sweeper enforces retention: short-lived operational log entries, the
// longer analytics history, and dated slots from previous days.
type Sweeper struct {
	store            store.Store
	hub              *events.Hub
	now              func() time.Time
	interval         time.Duration
	logRetention     time.Duration
	historyRetention time.Duration
	logger           zerolog.Logger
}

// NewSweeper builds the sweeper.
func NewSweeper(st store.Store, hub *events.Hub, interval, logRetention, historyRetention time.Duration, now func() time.Time, logger zerolog.Logger) *Sweeper {
	if now == nil {
		now = time.Now
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		store:            st,
		hub:              hub,
		now:              now,
		interval:         interval,
		logRetention:     logRetention,
		historyRetention: historyRetention,
		logger:           logger.With().Str("monitor", "sweeper").Logger(),
	}
}

// Run sweeps once immediately and then on every interval until the context
// is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("sweeper started")
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial sweep failed")
	}
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

// Sweep runs one retention pass and reports what it removed. The cleanup
// endpoint calls this directly for on-demand sweeps.
func (s *Sweeper) Sweep(ctx context.Context) (SweepStats, error) {
	now := s.now()
	stats := SweepStats{}

	removed, err := s.store.Logs().DeleteEndedBefore(ctx, model.LogOperational, now.Add(-s.logRetention))
	if err != nil {
		return stats, err
	}
	stats.LogEntries = removed

	removed, err = s.store.Logs().DeleteEndedBefore(ctx, model.LogHistory, now.Add(-s.historyRetention))
	if err != nil {
		return stats, err
	}
	stats.HistoryEntries = removed

	yesterday := timeslot.DateOf(now.AddDate(0, 0, -1))
	removed, err = s.store.Slots().DeleteDatedThrough(ctx, yesterday)
	if err != nil {
		return stats, err
	}
	stats.Slots = removed

	if stats.Total() > 0 {
		s.logger.Info().
			Int("log_entries", stats.LogEntries).
			Int("history_entries", stats.HistoryEntries).
			Int("slots", stats.Slots).
			Msg("retention sweep removed records")
		if s.hub != nil {
			if stats.Slots > 0 {
				s.hub.Publish(events.Event{Topic: events.TopicSlots, At: now})
			}
			if stats.LogEntries > 0 || stats.HistoryEntries > 0 {
				s.hub.Publish(events.Event{Topic: events.TopicLog, At: now})
			}
		}
	}
	return stats, nil
}
