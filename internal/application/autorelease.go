package application

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AutoReleaseMonitor frees the shower when an occupancy outlives the
// configured maximum, covering the phone-left-in-the-other-room case where
// nobody taps stop.
type AutoReleaseMonitor struct {
	status   *StatusService
	maxAge   time.Duration
	interval time.Duration
	logger   zerolog.Logger
}

// NewAutoReleaseMonitor builds the monitor. maxAge is the occupancy age
// past which the shower is force released.
func NewAutoReleaseMonitor(status *StatusService, maxAge, interval time.Duration, logger zerolog.Logger) *AutoReleaseMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &AutoReleaseMonitor{
		status:   status,
		maxAge:   maxAge,
		interval: interval,
		logger:   logger.With().Str("monitor", "autorelease").Logger(),
	}
}

// Run polls until the context is cancelled.
func (m *AutoReleaseMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info().Dur("max_age", m.maxAge).Msg("monitor started")
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
func (m *AutoReleaseMonitor) Tick(ctx context.Context) {
	released, err := m.status.ReleaseIfStale(ctx, m.maxAge)
	if err != nil {
		m.logger.Error().Err(err).Msg("release check failed")
		return
	}
	if released {
		m.logger.Info().Msg("stale occupancy released")
	}
}
