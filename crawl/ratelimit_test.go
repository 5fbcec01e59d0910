package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/adscan/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainLimiter_paces_requests_within_a_domain(t *testing.T) {
	t.Parallel()

	// 10 rps, burst 1: three requests need ~200ms.
	l := crawl.NewDomainLimiter(10, 1)

	start := time.Now()
	for range 3 {
		require.NoError(t, l.Wait(context.Background(), "https://example.com/page"))
	}
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
}

func TestDomainLimiter_domains_do_not_share_budgets(t *testing.T) {
	t.Parallel()

	l := crawl.NewDomainLimiter(1, 1)

	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), "https://a.example.com/"))
	require.NoError(t, l.Wait(context.Background(), "https://b.other.org/"))
	elapsed := time.Since(start)

	// Different registered domains draw from different buckets, so neither
	// wait should block.
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestDomainLimiter_subdomains_share_one_budget(t *testing.T) {
	t.Parallel()

	l := crawl.NewDomainLimiter(10, 1)

	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), "https://www.example.com/"))
	require.NoError(t, l.Wait(context.Background(), "https://cdn.example.com/"))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

func TestDomainLimiter_wait_honors_cancellation(t *testing.T) {
	t.Parallel()

	l := crawl.NewDomainLimiter(0.001, 1)
	require.NoError(t, l.Wait(context.Background(), "https://example.com/"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, "https://example.com/")
	require.Error(t, err)
}
