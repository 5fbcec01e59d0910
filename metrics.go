package adscan

import "time"

// Metrics receives crawl observations. The engine reports through this
// interface so instrumentation backends stay out of the core.
type Metrics interface {
	// ObserveTask records a completed task with its outcome and duration.
	// code is empty for non-error outcomes.
	ObserveTask(status TaskStatus, code string, d time.Duration)

	// SetBlockedDomains records the current number of blocked domains.
	SetBlockedDomains(n int)

	// ObserveCache records cache occupancy and hit rate.
	ObserveCache(stats CacheStats)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

var _ Metrics = (*NopMetrics)(nil)

func (NopMetrics) ObserveTask(TaskStatus, string, time.Duration) {}
func (NopMetrics) SetBlockedDomains(int)                         {}
func (NopMetrics) ObserveCache(CacheStats)                       {}
