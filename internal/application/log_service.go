package application

import (
	"context"
	"time"

	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/store"
)

// RecentShowerWindow is how long after a shower a user still counts as
// freshly showered.
const RecentShowerWindow = 30 * time.Minute

// LogService reads the two shower logs.
type LogService struct {
	store     store.Store
	now       func() time.Time
	retention time.Duration
}

// NewLogService wires dependencies for log queries. retention bounds what
// Recent returns; entries past it may still exist until the next sweep.
func NewLogService(st store.Store, retention time.Duration, now func() time.Time) *LogService {
	if now == nil {
		now = time.Now
	}
	return &LogService{store: st, now: now, retention: retention}
}

// Recent returns the operational log newest first, filtered to the
// retention window so entries the sweeper has not removed yet stay hidden.
func (s *LogService) Recent(ctx context.Context) ([]model.LogEntry, error) {
	entries, err := s.store.Logs().List(ctx, model.LogOperational)
	if err != nil {
		return nil, err
	}
	cutoff := s.now().Add(-s.retention)
	visible := make([]model.LogEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.EndedAt.After(cutoff) {
			visible = append(visible, entry)
		}
	}
	return visible, nil
}

// History returns the long-retention log newest first.
func (s *LogService) History(ctx context.Context) ([]model.LogEntry, error) {
	return s.store.Logs().List(ctx, model.LogHistory)
}

// HasRecentShower reports whether the user finished a shower within the
// recent-shower window.
func (s *LogService) HasRecentShower(ctx context.Context, user string) (bool, error) {
	entries, err := s.store.Logs().List(ctx, model.LogOperational)
	if err != nil {
		return false, err
	}
	cutoff := s.now().Add(-RecentShowerWindow)
	for _, entry := range entries {
		if entry.User == user && entry.EndedAt.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}
