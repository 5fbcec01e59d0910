package adscan

import "time"

// DomainState is the circuit-breaker state for a domain.
type DomainState string

// Domain states. Healthy domains are scheduled normally, Degraded domains are
// scheduled but flagged, Blocked domains are skipped until cooldown elapses.
const (
	DomainHealthy  DomainState = "healthy"
	DomainDegraded DomainState = "degraded"
	DomainBlocked  DomainState = "blocked"
)

// DomainHealthRecord holds per-domain success/failure statistics and circuit
// state. Records are created lazily on first observation for a domain.
type DomainHealthRecord struct {
	Domain              string
	ConsecutiveFailures int
	TotalSuccesses      int
	TotalFailures       int
	State               DomainState
	LastFailureAt       time.Time
	CooldownUntil       time.Time
}

// HealthTracker tracks per-domain health and shapes scheduling decisions.
// Implementations must support safe concurrent mutation: every task
// completion records an observation.
type HealthTracker interface {
	// RecordSuccess resets the domain's failure streak and returns it to
	// DomainHealthy from any state.
	RecordSuccess(url string, latency time.Duration)

	// RecordFailure increments the domain's failure streak and advances the
	// circuit state when thresholds are crossed.
	RecordFailure(url string, taskErr *TaskError)

	// ShouldSkip reports whether scheduling work against the URL's domain
	// should be avoided (blocked and still cooling down).
	ShouldSkip(url string) bool

	// Snapshot returns a copy of all domain records for reporting.
	Snapshot() []DomainHealthRecord
}
