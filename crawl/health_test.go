package crawl_test

import (
	"testing"
	"time"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/crawl"
	"github.com/stretchr/testify/assert"
)

func dnsErr() *adscan.TaskError {
	return &adscan.TaskError{
		Code:     adscan.CodeDNSResolutionFailed,
		Category: adscan.CategoryNetwork,
		Phase:    adscan.PhaseDNS,
	}
}

func TestHealthTracker_new_domain_is_healthy(t *testing.T) {
	t.Parallel()

	h := crawl.NewHealthTracker()

	assert.Equal(t, adscan.DomainHealthy, h.State("https://example.com/page"))
	assert.False(t, h.ShouldSkip("https://example.com/page"))
}

func TestHealthTracker_degrades_after_low_threshold(t *testing.T) {
	t.Parallel()

	h := crawl.NewHealthTracker(crawl.WithThresholds(3, 5))

	for i := 0; i < 3; i++ {
		h.RecordFailure("https://example.com/page", dnsErr())
	}

	assert.Equal(t, adscan.DomainDegraded, h.State("https://example.com/page"))
	assert.False(t, h.ShouldSkip("https://example.com/page"), "degraded domains are still scheduled")
}

func TestHealthTracker_blocks_after_high_threshold(t *testing.T) {
	t.Parallel()

	h := crawl.NewHealthTracker(crawl.WithThresholds(3, 5))

	for i := 0; i < 5; i++ {
		h.RecordFailure("https://example.com/a", dnsErr())
	}

	assert.Equal(t, adscan.DomainBlocked, h.State("https://example.com/a"))
	assert.True(t, h.ShouldSkip("https://example.com/b"), "all URLs on the domain are skipped")
	assert.Equal(t, 1, h.BlockedCount())
}

func TestHealthTracker_success_returns_domain_to_healthy(t *testing.T) {
	t.Parallel()

	h := crawl.NewHealthTracker(crawl.WithThresholds(3, 5))

	for i := 0; i < 5; i++ {
		h.RecordFailure("https://example.com/a", dnsErr())
	}
	assert.Equal(t, adscan.DomainBlocked, h.State("https://example.com/a"))

	h.RecordSuccess("https://example.com/a", 100*time.Millisecond)

	assert.Equal(t, adscan.DomainHealthy, h.State("https://example.com/a"))
	assert.False(t, h.ShouldSkip("https://example.com/a"))
}

func TestHealthTracker_cooldown_expiry_allows_probe(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := func() time.Time { return now }
	h := crawl.NewHealthTracker(crawl.WithThresholds(3, 5), crawl.WithHealthClock(clock))

	for i := 0; i < 5; i++ {
		h.RecordFailure("https://example.com/a", dnsErr())
	}
	assert.True(t, h.ShouldSkip("https://example.com/a"))

	// Advance past the cooldown: the domain stays Blocked but becomes
	// schedulable again.
	now = now.Add(2 * time.Hour)
	assert.False(t, h.ShouldSkip("https://example.com/a"))
	assert.Equal(t, adscan.DomainBlocked, h.State("https://example.com/a"))
}

func TestHealthTracker_cooldown_grows_with_failure_streak(t *testing.T) {
	t.Parallel()

	now := time.Now()
	clock := func() time.Time { return now }
	h := crawl.NewHealthTracker(crawl.WithThresholds(3, 5), crawl.WithHealthClock(clock))

	for i := 0; i < 8; i++ {
		h.RecordFailure("https://example.com/a", dnsErr())
	}

	var rec adscan.DomainHealthRecord
	for _, r := range h.Snapshot() {
		if r.Domain == "example.com" {
			rec = r
		}
	}
	// 3 failures past the blocking threshold double the base cooldown 3 times.
	assert.Equal(t, now.Add(4*time.Minute), rec.CooldownUntil)
}

func TestHealthTracker_groups_subdomains_by_registered_domain(t *testing.T) {
	t.Parallel()

	h := crawl.NewHealthTracker(crawl.WithThresholds(3, 5))

	for i := 0; i < 5; i++ {
		h.RecordFailure("https://cdn.example.com/x", dnsErr())
	}

	assert.True(t, h.ShouldSkip("https://www.example.com/y"),
		"subdomains share the registered domain's circuit")
	assert.False(t, h.ShouldSkip("https://example.org/y"))
}

func TestHealthTracker_snapshot_counts_totals(t *testing.T) {
	t.Parallel()

	h := crawl.NewHealthTracker()

	h.RecordSuccess("https://example.com/a", time.Millisecond)
	h.RecordFailure("https://example.com/a", dnsErr())
	h.RecordFailure("https://example.com/a", dnsErr())

	snap := h.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, 1, snap[0].TotalSuccesses)
	assert.Equal(t, 2, snap[0].TotalFailures)
	assert.Equal(t, 2, snap[0].ConsecutiveFailures)
}
