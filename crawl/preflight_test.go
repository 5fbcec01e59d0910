package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passAll(context.Context, string) error { return nil }

func TestPreflightChecker_passes_reachable_URLs(t *testing.T) {
	t.Parallel()

	c := crawl.NewPreflightChecker(nil, crawl.WithProbes(passAll, passAll))

	urls := []string{"https://example.com/a", "https://example.org/b"}
	results := c.CheckURLs(context.Background(), urls, adscan.PreflightOptions{
		CheckDNS: true,
		CheckSSL: true,
	})

	require.Len(t, results, 2)
	for _, u := range urls {
		r := results[u]
		assert.True(t, r.PassedDNS, u)
		assert.True(t, r.PassedSSL, u)
		assert.True(t, r.Reachable(), u)
		assert.Empty(t, r.SkipReason, u)
	}
}

func TestPreflightChecker_records_DNS_failures_without_raising(t *testing.T) {
	t.Parallel()

	failDNS := func(_ context.Context, host string) error {
		if host == "dead.example.com" {
			return errors.New("lookup dead.example.com: no such host")
		}
		return nil
	}
	c := crawl.NewPreflightChecker(nil, crawl.WithProbes(failDNS, passAll))

	results := c.CheckURLs(context.Background(), []string{
		"https://dead.example.com/x",
		"https://live.example.com/y",
	}, adscan.PreflightOptions{CheckDNS: true, CheckSSL: true})

	dead := results["https://dead.example.com/x"]
	assert.False(t, dead.PassedDNS)
	assert.Contains(t, dead.SkipReason, "DNS resolution failed")
	assert.False(t, dead.Reachable())

	live := results["https://live.example.com/y"]
	assert.True(t, live.Reachable())
}

func TestPreflightChecker_skips_SSL_probe_after_DNS_failure(t *testing.T) {
	t.Parallel()

	var sslCalls atomic.Int64
	failDNS := func(context.Context, string) error { return errors.New("no such host") }
	countSSL := func(context.Context, string) error {
		sslCalls.Add(1)
		return nil
	}
	c := crawl.NewPreflightChecker(nil, crawl.WithProbes(failDNS, countSSL))

	c.CheckURLs(context.Background(), []string{"https://dead.example.com/x"},
		adscan.PreflightOptions{CheckDNS: true, CheckSSL: true})

	assert.Equal(t, int64(0), sslCalls.Load(), "a handshake against an unresolvable host cannot succeed")
}

func TestPreflightChecker_records_SSL_failures(t *testing.T) {
	t.Parallel()

	failSSL := func(context.Context, string) error {
		return errors.New("x509: certificate signed by unknown authority")
	}
	c := crawl.NewPreflightChecker(nil, crawl.WithProbes(passAll, failSSL))

	results := c.CheckURLs(context.Background(), []string{"https://badcert.example.com/x"},
		adscan.PreflightOptions{CheckDNS: true, CheckSSL: true})

	r := results["https://badcert.example.com/x"]
	assert.True(t, r.PassedDNS)
	assert.False(t, r.PassedSSL)
	assert.Contains(t, r.SkipReason, "SSL handshake failed")
}

func TestPreflightChecker_disabled_probes_do_not_run(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	count := func(context.Context, string) error {
		calls.Add(1)
		return nil
	}
	c := crawl.NewPreflightChecker(nil, crawl.WithProbes(count, count))

	results := c.CheckURLs(context.Background(), []string{"https://example.com/a"},
		adscan.PreflightOptions{})

	assert.Equal(t, int64(0), calls.Load())
	assert.True(t, results["https://example.com/a"].Reachable())
}

func TestPreflightChecker_skips_blocked_domains_when_health_enabled(t *testing.T) {
	t.Parallel()

	h := crawl.NewHealthTracker(crawl.WithThresholds(1, 2))
	h.RecordFailure("https://blocked.example.com/x", dnsErr())
	h.RecordFailure("https://blocked.example.com/x", dnsErr())

	var probes atomic.Int64
	count := func(context.Context, string) error {
		probes.Add(1)
		return nil
	}
	c := crawl.NewPreflightChecker(nil, crawl.WithProbes(count, count), crawl.WithHealth(h))

	results := c.CheckURLs(context.Background(), []string{"https://blocked.example.com/x"},
		adscan.PreflightOptions{CheckDNS: true, CheckSSL: true, CheckHealth: true})

	r := results["https://blocked.example.com/x"]
	assert.False(t, r.Reachable())
	assert.True(t, r.Blocked, "a circuit skip is not a probe failure")
	assert.Contains(t, r.SkipReason, "circuit blocked")
	assert.Equal(t, int64(0), probes.Load(), "blocked domains are not probed")
}

func TestPreflightChecker_retries_transient_probe_failures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	flaky := func(context.Context, string) error {
		if calls.Add(1) == 1 {
			return errors.New("lookup flaky.example.com: i/o timeout")
		}
		return nil
	}
	c := crawl.NewPreflightChecker(nil,
		crawl.WithProbes(flaky, passAll),
		crawl.WithRetryPolicy(crawl.Policy{
			MaxAttempts: 2,
			Retryable: func(err error) bool {
				taskErr := adscan.ClassifyError(err)
				return taskErr != nil && taskErr.Retryable
			},
		}),
	)

	results := c.CheckURLs(context.Background(), []string{"https://flaky.example.com/x"},
		adscan.PreflightOptions{CheckDNS: true})

	assert.True(t, results["https://flaky.example.com/x"].Reachable())
	assert.Equal(t, int64(2), calls.Load())
}

func TestPreflightChecker_does_not_retry_permanent_probe_failures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	nxdomain := func(context.Context, string) error {
		calls.Add(1)
		return errors.New("lookup dead.example.com: no such host")
	}
	c := crawl.NewPreflightChecker(nil,
		crawl.WithProbes(nxdomain, passAll),
		crawl.WithRetryPolicy(crawl.DefaultPolicy()),
	)

	results := c.CheckURLs(context.Background(), []string{"https://dead.example.com/x"},
		adscan.PreflightOptions{CheckDNS: true})

	assert.False(t, results["https://dead.example.com/x"].PassedDNS)
	assert.Equal(t, int64(1), calls.Load(), "NXDOMAIN does not heal on retry")
}

func TestPreflightChecker_probe_failures_feed_health_tracker(t *testing.T) {
	t.Parallel()

	h := crawl.NewHealthTracker(crawl.WithThresholds(1, 3))
	failDNS := func(context.Context, string) error { return errors.New("no such host") }
	c := crawl.NewPreflightChecker(nil, crawl.WithProbes(failDNS, passAll), crawl.WithHealth(h))

	c.CheckURLs(context.Background(), []string{"https://dead.example.com/x"},
		adscan.PreflightOptions{CheckDNS: true})

	assert.Equal(t, adscan.DomainDegraded, h.State("https://dead.example.com/x"))
}

func TestPreflightChecker_bounds_probe_concurrency(t *testing.T) {
	t.Parallel()

	const limit = 3
	var mu sync.Mutex
	var inFlight, peak int

	probe := func(context.Context, string) error {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil
	}
	c := crawl.NewPreflightChecker(nil, crawl.WithProbes(probe, probe))

	urls := make([]string, 50)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example%d.com/x", i)
	}
	c.CheckURLs(context.Background(), urls, adscan.PreflightOptions{
		CheckDNS:       true,
		DNSConcurrency: limit,
	})

	assert.LessOrEqual(t, peak, limit)
}
