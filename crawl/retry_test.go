package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeoutResult(url string) *adscan.TaskResult {
	return adscan.ErrorResult(url, &adscan.TaskError{
		Code:      adscan.CodeNavigationTimeout,
		Category:  adscan.CategoryNavigation,
		Phase:     adscan.PhaseTimeout,
		Retryable: true,
	}, time.Second)
}

func dnsResult(url string) *adscan.TaskResult {
	return adscan.ErrorResult(url, &adscan.TaskError{
		Code:     adscan.CodeDNSResolutionFailed,
		Category: adscan.CategoryNetwork,
		Phase:    adscan.PhaseDNS,
	}, time.Second)
}

func TestPolicy_Do(t *testing.T) {
	t.Parallel()

	t.Run("returns nil on first success", func(t *testing.T) {
		t.Parallel()

		p := crawl.Policy{MaxAttempts: 3}
		var calls int
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries up to the attempt budget", func(t *testing.T) {
		t.Parallel()

		p := crawl.Policy{MaxAttempts: 3}
		var calls int
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return errors.New("timeout")
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non-retryable errors", func(t *testing.T) {
		t.Parallel()

		p := crawl.Policy{
			MaxAttempts: 5,
			Retryable:   func(err error) bool { return false },
		}
		var calls int
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			return errors.New("net::ERR_NAME_NOT_RESOLVED")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		t.Parallel()

		p := crawl.Policy{MaxAttempts: 3}
		var calls int
		err := p.Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("timeout")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("respects context cancellation between attempts", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		p := crawl.Policy{MaxAttempts: 10, BaseDelay: time.Hour}
		var calls int
		go cancel()
		err := p.Do(ctx, func(context.Context) error {
			calls++
			return errors.New("timeout")
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDefaultPolicy_classifies_via_taxonomy(t *testing.T) {
	t.Parallel()

	p := crawl.DefaultPolicy()
	p.BaseDelay = 0 // no real delays in tests

	var calls int
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("page load: net::ERR_NAME_NOT_RESOLVED")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "permanent navigation errors must never retry")

	calls = 0
	err = p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("navigation: context deadline exceeded")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls, "timeouts retry up to the budget")
}

func TestPartitionTimeouts_selects_only_timeout_errors(t *testing.T) {
	t.Parallel()

	results := []*adscan.TaskResult{
		timeoutResult("https://example.com/slow"),
		dnsResult("https://example.com/dead"),
		adscan.NoDataResult("https://example.com/clean", time.Second),
	}

	timeouts, rest := crawl.PartitionTimeouts(results)

	require.Len(t, timeouts, 1)
	assert.Equal(t, "https://example.com/slow", timeouts[0].URL)
	assert.Len(t, rest, 2)
}

func TestRelaxedOptions_increases_timeout_and_lowers_concurrency(t *testing.T) {
	t.Parallel()

	opts := adscan.Options{MaxConcurrency: 8, NavigationTimeout: 30 * time.Second}
	relaxed := crawl.RelaxedOptions(opts)

	assert.Equal(t, 60*time.Second, relaxed.NavigationTimeout)
	assert.Equal(t, 4, relaxed.MaxConcurrency)

	// Concurrency never drops below one.
	relaxed = crawl.RelaxedOptions(adscan.Options{MaxConcurrency: 1})
	assert.Equal(t, 1, relaxed.MaxConcurrency)
}

func TestMergeRetryResults_preserves_original_on_retry_failure(t *testing.T) {
	t.Parallel()

	original := timeoutResult("https://example.com/slow")
	retryFailed := dnsResult("https://example.com/slow")

	merged := crawl.MergeRetryResults(
		[]*adscan.TaskResult{original},
		[]*adscan.TaskResult{retryFailed},
	)

	require.Len(t, merged, 1)
	assert.Same(t, original, merged[0], "a failed retry must not replace the original error")
}

func TestMergeRetryResults_takes_successful_retries(t *testing.T) {
	t.Parallel()

	original := timeoutResult("https://example.com/slow")
	retried := adscan.SuccessResult("https://example.com/slow", &adscan.PageData{}, time.Second)

	merged := crawl.MergeRetryResults(
		[]*adscan.TaskResult{original},
		[]*adscan.TaskResult{retried},
	)

	require.Len(t, merged, 1)
	assert.Equal(t, adscan.StatusSuccess, merged[0].Status)
}
