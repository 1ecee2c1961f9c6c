package application

import (
	"sync"
	"time"

	"github.com/example/shower-tracker/internal/analytics"
)

// reportCache stores the most recently computed analytics report so bursts
// of dashboard loads do not rescan the whole history each time.
type reportCache struct {
	mu  sync.RWMutex
	now func() time.Time
	ttl time.Duration

	report    analytics.Report
	computed  bool
	expiresAt time.Time
}

func newReportCache(ttl time.Duration, now func() time.Time) *reportCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &reportCache{now: now, ttl: ttl}
}

func (c *reportCache) Get() (analytics.Report, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.computed || c.now().After(c.expiresAt) {
		return analytics.Report{}, false
	}
	return c.report, true
}

func (c *reportCache) Store(report analytics.Report) {
	c.mu.Lock()
	c.report = report
	c.computed = true
	c.expiresAt = c.now().Add(c.ttl)
	c.mu.Unlock()
}

func (c *reportCache) Invalidate() {
	c.mu.Lock()
	c.computed = false
	c.mu.Unlock()
}
