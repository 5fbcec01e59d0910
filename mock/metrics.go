package mock

import (
	"time"

	"github.com/fwojciec/adscan"
)

var _ adscan.Metrics = (*Metrics)(nil)

// Metrics is a mock implementation of adscan.Metrics. Nil function fields
// behave as no-ops.
type Metrics struct {
	ObserveTaskFn       func(status adscan.TaskStatus, code string, d time.Duration)
	SetBlockedDomainsFn func(n int)
	ObserveCacheFn      func(stats adscan.CacheStats)
}

func (m *Metrics) ObserveTask(status adscan.TaskStatus, code string, d time.Duration) {
	if m.ObserveTaskFn != nil {
		m.ObserveTaskFn(status, code, d)
	}
}

func (m *Metrics) SetBlockedDomains(n int) {
	if m.SetBlockedDomainsFn != nil {
		m.SetBlockedDomainsFn(n)
	}
}

func (m *Metrics) ObserveCache(stats adscan.CacheStats) {
	if m.ObserveCacheFn != nil {
		m.ObserveCacheFn(stats)
	}
}
