// Package crawl implements the crawl orchestration engine: range selection,
// ledger filtering, preflight probes, dispatch with strategy fallback, and
// the end-of-run timeout retry pass.
package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adscan"
	"github.com/fwojciec/adscan/bloom"
)

// Summary reports what a run did. It is produced even when parts of the run
// failed, so operators always learn how far the run got.
type Summary struct {
	// Input accounting.
	InputURLs  int
	Deduped    int
	InRange    int
	LedgerSkip int
	Preflight  int

	// Outcome accounting over dispatched URLs.
	Dispatched int
	Succeeded  int
	NoData     int
	Failed     int

	// Retry pass accounting.
	TimeoutsRetried  int
	RetriesRecovered int

	Warnings []string
	Duration time.Duration
}

// Crawler is the orchestrator: it owns the run pipeline from raw input list
// to persisted results. Components are injected; nil optional components
// (preflight, error log, cache, metrics) disable their stage.
type Crawler struct {
	Dispatcher *Dispatcher
	Tracker    adscan.Tracker
	Health     adscan.HealthTracker
	Preflight  *PreflightChecker
	Writer     adscan.ResultWriter
	ErrorLog   adscan.ErrorLogger
	Cache      adscan.ContentCache
	Metrics    adscan.Metrics
	Logger     *slog.Logger

	// Progress receives dispatch progress callbacks. Optional.
	Progress ProgressFunc
}

// Run executes the full pipeline over urls and returns a summary plus the
// final result set, one result per dispatched URL. The summary is returned
// even on error.
func (c *Crawler) Run(ctx context.Context, urls []string, opts adscan.Options) (*Summary, []*adscan.TaskResult, error) {
	start := time.Now()
	summary := &Summary{InputURLs: len(urls)}
	defer func() { summary.Duration = time.Since(start) }()

	if opts.ResetTracking && c.Tracker != nil {
		if err := c.Tracker.Reset(ctx); err != nil {
			return summary, nil, err
		}
	}

	// Input dedup. The list sources are messy exports; repeated URLs are the
	// norm, not the exception.
	deduped := bloom.Dedupe(urls)
	summary.Deduped = len(urls) - len(deduped)

	// Range selection before ledger filtering, so the range indexes the list
	// the operator sees.
	selected, warnings := ApplyRange(deduped, opts.Range)
	summary.InRange = len(selected)
	summary.Warnings = append(summary.Warnings, warnings...)
	for _, w := range warnings {
		c.logger().Warn("range", "warning", w)
	}

	selected, err := c.filterProcessed(ctx, selected, opts)
	if err != nil {
		return summary, nil, err
	}
	summary.LedgerSkip = summary.InRange - len(selected)

	var preflightResults []*adscan.TaskResult
	selected, preflightResults = c.preflight(ctx, selected, opts)
	summary.Preflight = len(preflightResults)

	results, dispatchErr := c.dispatch(ctx, selected, opts, summary)
	results = append(results, preflightResults...)

	c.logErrors(results)
	c.observe()

	for _, r := range results {
		switch r.Status {
		case adscan.StatusSuccess:
			summary.Succeeded++
		case adscan.StatusNoData:
			summary.NoData++
		case adscan.StatusError:
			summary.Failed++
		}
	}

	if c.Writer != nil && len(results) > 0 {
		if err := c.Writer.WriteResults(context.WithoutCancel(ctx), results); err != nil {
			c.logger().Error("writing results failed", "err", err)
			if dispatchErr == nil {
				dispatchErr = err
			}
		}
	}

	return summary, results, dispatchErr
}

// filterProcessed removes URLs the ledger already records with a terminal
// outcome. Ledger read failures are fail-open: the URLs stay in the run.
func (c *Crawler) filterProcessed(ctx context.Context, urls []string, opts adscan.Options) ([]string, error) {
	if c.Tracker == nil || opts.ForceReprocess || !opts.SkipProcessed {
		return urls, nil
	}
	filtered, err := c.Tracker.FilterUnprocessed(ctx, urls)
	if err != nil {
		c.logger().Warn("ledger filter failed, processing full selection", "err", err)
		return urls, nil
	}
	return filtered, nil
}

// preflight probes the selection and splits out the URLs excluded by probe
// failures, returning them as error results so no selected URL goes
// unaccounted.
func (c *Crawler) preflight(ctx context.Context, urls []string, opts adscan.Options) ([]string, []*adscan.TaskResult) {
	if c.Preflight == nil || !opts.PreflightCheck || len(urls) == 0 {
		return urls, nil
	}

	checked := c.Preflight.CheckURLs(ctx, urls, adscan.PreflightOptions{
		CheckDNS:    true,
		CheckSSL:    true,
		CheckHealth: c.Health != nil,
	})

	var keep []string
	var excluded []*adscan.TaskResult
	for _, u := range urls {
		r := checked[u]
		for _, w := range r.Warnings {
			c.logger().Debug("preflight", "url", u, "warning", w)
		}

		switch {
		case r.Blocked:
			excluded = append(excluded, adscan.ErrorResult(u, &adscan.TaskError{
				Code:     adscan.CodeDomainBlocked,
				Category: adscan.CategoryNetwork,
				Phase:    adscan.PhaseHealth,
				Message:  r.SkipReason,
			}, 0))
		case !r.PassedDNS && opts.SkipDNSFailed:
			excluded = append(excluded, adscan.ErrorResult(u, &adscan.TaskError{
				Code:     adscan.CodeDNSResolutionFailed,
				Category: adscan.CategoryNetwork,
				Phase:    adscan.PhaseDNS,
				Message:  r.SkipReason,
			}, 0))
		case r.PassedDNS && !r.PassedSSL && opts.SkipSSLFailed:
			excluded = append(excluded, adscan.ErrorResult(u, &adscan.TaskError{
				Code:     adscan.CodeSSLValidationFailed,
				Category: adscan.CategorySSL,
				Phase:    adscan.PhaseValidation,
				Message:  r.SkipReason,
			}, 0))
		default:
			keep = append(keep, u)
		}
	}

	for _, r := range excluded {
		if c.Tracker != nil {
			if err := c.Tracker.MarkProcessed(ctx, r.URL, r.Status); err != nil {
				c.logger().Warn("ledger write failed", "url", r.URL, "err", err)
			}
		}
	}

	return keep, excluded
}

// dispatch runs the selection chunk by chunk, then gives timeout failures one
// more pass with relaxed options.
func (c *Crawler) dispatch(ctx context.Context, urls []string, opts adscan.Options, summary *Summary) ([]*adscan.TaskResult, error) {
	summary.Dispatched = len(urls)
	if len(urls) == 0 {
		return nil, nil
	}

	var results []*adscan.TaskResult
	var runErr error
	for _, chunk := range Chunk(urls, opts.ChunkSize) {
		chunkResults, err := c.Dispatcher.Process(ctx, chunk, opts, c.Progress)
		results = append(results, chunkResults...)
		if err != nil {
			runErr = err
			if ctx.Err() != nil {
				return results, runErr
			}
		}
	}

	// Second pass: timeouts only. Slower pages get longer deadlines and less
	// contention; everything else already has its final answer.
	timeouts, rest := PartitionTimeouts(results)
	if len(timeouts) == 0 {
		return results, runErr
	}
	summary.TimeoutsRetried = len(timeouts)

	retryURLs := make([]string, len(timeouts))
	for i, r := range timeouts {
		retryURLs[i] = r.URL
	}
	c.logger().Info("retrying timeouts with relaxed options", "count", len(retryURLs))

	retried, err := c.Dispatcher.Process(ctx, retryURLs, RelaxedOptions(opts), c.Progress)
	if err != nil {
		c.logger().Warn("timeout retry pass failed", "err", err)
	}

	merged := MergeRetryResults(timeouts, retried)
	for i, r := range merged {
		if r != timeouts[i] {
			summary.RetriesRecovered++
		}
	}

	return append(rest, merged...), runErr
}

// logErrors hands every error result to the error log. Logging failures only
// warn; artifacts are reporting output, not run state.
func (c *Crawler) logErrors(results []*adscan.TaskResult) {
	if c.ErrorLog == nil {
		return
	}
	for _, r := range results {
		if r.Status != adscan.StatusError {
			continue
		}
		if err := c.ErrorLog.LogError(r); err != nil {
			c.logger().Warn("error log write failed", "url", r.URL, "err", err)
		}
	}
}

// observe pushes end-of-run gauge readings to the metrics backend.
func (c *Crawler) observe() {
	if c.Metrics == nil {
		return
	}
	if c.Health != nil {
		var blocked int
		for _, rec := range c.Health.Snapshot() {
			if rec.State == adscan.DomainBlocked {
				blocked++
			}
		}
		c.Metrics.SetBlockedDomains(blocked)
	}
	if c.Cache != nil {
		c.Metrics.ObserveCache(c.Cache.Stats())
	}
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
