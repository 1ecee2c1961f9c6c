package application

import (
	"context"
	"time"

	"github.com/example/shower-tracker/internal/analytics"
	"github.com/example/shower-tracker/internal/model"
	"github.com/example/shower-tracker/internal/store"
)

// reportTTL bounds how stale a cached analytics report may be.
const reportTTL = 30 * time.Second

// AnalyticsService computes household statistics from the history log,
// caching the derived report briefly.
type AnalyticsService struct {
	store store.Store
	now   func() time.Time
	cache *reportCache
}

// NewAnalyticsService wires dependencies for the analytics endpoint.
func NewAnalyticsService(st store.Store, now func() time.Time) *AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{
		store: st,
		now:   now,
		cache: newReportCache(reportTTL, now),
	}
}

// Report returns the full derived statistics view, recomputing when the
// cached copy has expired.
func (s *AnalyticsService) Report(ctx context.Context) (analytics.Report, error) {
	if report, ok := s.cache.Get(); ok {
		return report, nil
	}
	entries, err := s.store.Logs().List(ctx, model.LogHistory)
	if err != nil {
		return analytics.Report{}, err
	}
	report := analytics.BuildReport(entries, s.now())
	s.cache.Store(report)
	return report, nil
}

// Invalidate drops the cached report. Callers that just appended to the
// history log use it to surface fresh numbers immediately.
func (s *AnalyticsService) Invalidate() {
	s.cache.Invalidate()
}
