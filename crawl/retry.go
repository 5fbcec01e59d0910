package crawl

import (
	"context"
	"math/rand"
	"time"

	"github.com/fwojciec/adscan"
)

// Policy is a reusable retry policy: classify the error, back off with
// jitter, stop after a bounded number of attempts. Preflight probes use it
// for transient failures; anything retrying a fallible operation inline
// should use it rather than growing its own loop.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the first retry; each further retry
	// doubles it up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Jitter is the fraction of the delay randomized away (0 to 1).
	Jitter float64

	// Retryable classifies whether an error is worth retrying. A nil
	// classifier retries everything.
	Retryable func(error) bool
}

// DefaultPolicy is the transient-failure retry policy: 3 attempts, 1s base
// delay, retrying only errors classified as retryable. Timeout-classified
// page results are deliberately outside its reach; those get the end-of-run
// pass with relaxed options instead of inline repeats.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    8 * time.Second,
		Jitter:      0.2,
		Retryable: func(err error) bool {
			taskErr := adscan.ClassifyError(err)
			return taskErr != nil && taskErr.Retryable
		},
	}
}

// Do runs fn until it succeeds, exhausts the attempt budget, hits a
// non-retryable error, or the context is canceled. The last error is
// returned.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt >= attempts-1 {
			break
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff(attempt)):
		}
	}
	return lastErr
}

// backoff computes the jittered exponential delay for a retry attempt.
func (p Policy) backoff(attempt int) time.Duration {
	d := p.BaseDelay
	if d <= 0 {
		return 0
	}
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			d = p.MaxDelay
			break
		}
	}
	if p.Jitter > 0 {
		d -= time.Duration(rand.Float64() * p.Jitter * float64(d))
	}
	return d
}

// PartitionTimeouts splits a result set into the timeout-classified errors,
// the only class eligible for the second pass, and everything else.
func PartitionTimeouts(results []*adscan.TaskResult) (timeouts, rest []*adscan.TaskResult) {
	for _, r := range results {
		if r.IsTimeout() {
			timeouts = append(timeouts, r)
		} else {
			rest = append(rest, r)
		}
	}
	return timeouts, rest
}

// RelaxedOptions derives the second-pass options from the first pass:
// strictly larger timeouts and lower concurrency, to reduce
// contention-induced timeouts.
func RelaxedOptions(opts adscan.Options) adscan.Options {
	relaxed := opts
	relaxed.NavigationTimeout = 2 * opts.NavTimeout()
	relaxed.MaxConcurrency = max(1, opts.Concurrency()/2)
	return relaxed
}

// MergeRetryResults folds second-pass results into the original timeout
// subset. A retry that itself failed is discarded in favor of the original
// error result, so a retry never makes the record less informative.
func MergeRetryResults(originals, retried []*adscan.TaskResult) []*adscan.TaskResult {
	byURL := make(map[string]*adscan.TaskResult, len(retried))
	for _, r := range retried {
		byURL[r.URL] = r
	}

	merged := make([]*adscan.TaskResult, 0, len(originals))
	for _, orig := range originals {
		if r, ok := byURL[orig.URL]; ok && r.Status != adscan.StatusError {
			merged = append(merged, r)
			continue
		}
		merged = append(merged, orig)
	}
	return merged
}
