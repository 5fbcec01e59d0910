package mock

import (
	"time"

	"github.com/fwojciec/adscan"
)

var _ adscan.HealthTracker = (*HealthTracker)(nil)

// HealthTracker is a mock implementation of adscan.HealthTracker. Nil
// function fields behave as no-ops.
type HealthTracker struct {
	RecordSuccessFn func(url string, latency time.Duration)
	RecordFailureFn func(url string, taskErr *adscan.TaskError)
	ShouldSkipFn    func(url string) bool
	SnapshotFn      func() []adscan.DomainHealthRecord
}

func (h *HealthTracker) RecordSuccess(url string, latency time.Duration) {
	if h.RecordSuccessFn != nil {
		h.RecordSuccessFn(url, latency)
	}
}

func (h *HealthTracker) RecordFailure(url string, taskErr *adscan.TaskError) {
	if h.RecordFailureFn != nil {
		h.RecordFailureFn(url, taskErr)
	}
}

func (h *HealthTracker) ShouldSkip(url string) bool {
	if h.ShouldSkipFn == nil {
		return false
	}
	return h.ShouldSkipFn(url)
}

func (h *HealthTracker) Snapshot() []adscan.DomainHealthRecord {
	if h.SnapshotFn == nil {
		return nil
	}
	return h.SnapshotFn()
}
