// Package crawl provides the crawl orchestration and resilience engine:
// domain health tracking, preflight probing, range/chunk selection, the
// execution dispatcher with strategy fallback, and the timeout retry pass.
package crawl

import (
	"sync"
	"time"

	"github.com/fwojciec/adscan"
	"golang.org/x/net/publicsuffix"
)

// Compile-time interface verification.
var _ adscan.HealthTracker = (*HealthTracker)(nil)

// Circuit thresholds and cooldown bounds.
const (
	// DefaultDegradedThreshold is the consecutive-failure count at which a
	// domain is flagged Degraded (still scheduled).
	DefaultDegradedThreshold = 3

	// DefaultBlockedThreshold is the consecutive-failure count at which a
	// domain stops being scheduled.
	DefaultBlockedThreshold = 5

	// baseCooldown is the cooldown applied when a domain first blocks;
	// each further failure doubles it up to maxCooldown.
	baseCooldown = 30 * time.Second
	maxCooldown  = 1 * time.Hour
)

// HealthTracker tracks per-domain success/failure statistics and circuit
// state. Records are created lazily on first observation. Safe for
// concurrent use; every task completion records an observation.
type HealthTracker struct {
	mu                sync.Mutex
	domains           map[string]*adscan.DomainHealthRecord
	degradedThreshold int
	blockedThreshold  int

	// now is replaceable in tests.
	now func() time.Time
}

// HealthOption configures a HealthTracker.
type HealthOption func(*HealthTracker)

// WithThresholds overrides the degraded and blocked consecutive-failure
// thresholds.
func WithThresholds(degraded, blocked int) HealthOption {
	return func(h *HealthTracker) {
		h.degradedThreshold = degraded
		h.blockedThreshold = blocked
	}
}

// WithHealthClock replaces the time source, used in tests to control
// cooldown expiry.
func WithHealthClock(now func() time.Time) HealthOption {
	return func(h *HealthTracker) { h.now = now }
}

// NewHealthTracker creates a HealthTracker with default thresholds.
func NewHealthTracker(opts ...HealthOption) *HealthTracker {
	h := &HealthTracker{
		domains:           make(map[string]*adscan.DomainHealthRecord),
		degradedThreshold: DefaultDegradedThreshold,
		blockedThreshold:  DefaultBlockedThreshold,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// registeredDomain maps a URL to its registrable domain (eTLD+1) so that
// sub1.example.com and sub2.example.com share one circuit. Falls back to the
// raw host when the public suffix list cannot resolve it.
func registeredDomain(url string) string {
	host := adscan.Host(url)
	if host == "" {
		return url
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// RecordSuccess resets the domain's failure streak and returns it to Healthy
// from any state.
func (h *HealthTracker) RecordSuccess(url string, latency time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec := h.record(url)
	rec.ConsecutiveFailures = 0
	rec.TotalSuccesses++
	rec.State = adscan.DomainHealthy
	rec.CooldownUntil = time.Time{}
}

// RecordFailure increments the domain's failure streak. Crossing the low
// threshold flags the domain Degraded; crossing the high threshold sets
// Blocked with an exponentially backed-off cooldown.
func (h *HealthTracker) RecordFailure(url string, taskErr *adscan.TaskError) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec := h.record(url)
	rec.ConsecutiveFailures++
	rec.TotalFailures++
	rec.LastFailureAt = h.now()

	switch {
	case rec.ConsecutiveFailures >= h.blockedThreshold:
		rec.State = adscan.DomainBlocked
		rec.CooldownUntil = h.now().Add(h.cooldown(rec.ConsecutiveFailures))
	case rec.ConsecutiveFailures >= h.degradedThreshold:
		rec.State = adscan.DomainDegraded
	}
}

// cooldown computes the exponential backoff for a domain's failure streak.
func (h *HealthTracker) cooldown(streak int) time.Duration {
	d := baseCooldown
	for i := h.blockedThreshold; i < streak; i++ {
		d *= 2
		if d >= maxCooldown {
			return maxCooldown
		}
	}
	return d
}

// ShouldSkip reports whether the URL's domain is Blocked and still cooling
// down. After cooldown elapses the domain is scheduled again as a probe; a
// success then returns it to Healthy.
func (h *HealthTracker) ShouldSkip(url string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, ok := h.domains[registeredDomain(url)]
	if !ok || rec.State != adscan.DomainBlocked {
		return false
	}
	return h.now().Before(rec.CooldownUntil)
}

// State returns the current circuit state for the URL's domain.
func (h *HealthTracker) State(url string) adscan.DomainState {
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, ok := h.domains[registeredDomain(url)]
	if !ok {
		return adscan.DomainHealthy
	}
	return rec.State
}

// BlockedCount returns the number of currently blocked domains.
func (h *HealthTracker) BlockedCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	var n int
	for _, rec := range h.domains {
		if rec.State == adscan.DomainBlocked {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of all domain records for reporting.
func (h *HealthTracker) Snapshot() []adscan.DomainHealthRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]adscan.DomainHealthRecord, 0, len(h.domains))
	for _, rec := range h.domains {
		out = append(out, *rec)
	}
	return out
}

// record returns the record for the URL's domain, creating it lazily.
// Must be called with mu held.
func (h *HealthTracker) record(url string) *adscan.DomainHealthRecord {
	domain := registeredDomain(url)
	rec, ok := h.domains[domain]
	if !ok {
		rec = &adscan.DomainHealthRecord{
			Domain: domain,
			State:  adscan.DomainHealthy,
		}
		h.domains[domain] = rec
	}
	return rec
}
